package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveUpload(t *testing.T) {
	before := testutil.ToFloat64(uploadsProcessed.WithLabelValues("success", "csv"))
	ObserveUpload("success", "csv", 150*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(uploadsProcessed.WithLabelValues("success", "csv")))
}

func TestObserveAlertAndDropped(t *testing.T) {
	ObserveAlert("TOTAL_RA", 3)
	ObserveAlert("TOTAL_RA", 2)
	assert.Equal(t, 5.0, testutil.ToFloat64(conversionAlerts.WithLabelValues("TOTAL_RA")))

	before := testutil.ToFloat64(droppedRows)
	ObserveDropped(4)
	assert.Equal(t, before+4, testutil.ToFloat64(droppedRows))
}

func TestHandlerExposesMetrics(t *testing.T) {
	Init()
	Init()
	ObserveUpload("parse_error", "xlsx", time.Second)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "relatorio_uploads_total")
	assert.Contains(t, rec.Body.String(), `format="xlsx"`)
}
