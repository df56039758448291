package responses

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/relatorio", nil)
	c.Set(RequestIDKey, "req-123")
	return c, rec
}

func TestSuccess(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	c, rec := newContext(t)
	Success(c, map[string]int{"registros": 3}, "ok")

	require.Equal(t, http.StatusOK, rec.Code)
	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "ok", body.Message)
	assert.Equal(t, "req-123", body.RequestID)

	entries := logs.FilterMessage("API success").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
}

func TestError(t *testing.T) {
	c, rec := newContext(t)
	Error(c, http.StatusUnprocessableEntity, "Erro ao processar o arquivo", "coluna ausente")

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.True(t, c.IsAborted())
	var body APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, []string{"coluna ausente"}, body.Errors)
}

func TestCSV(t *testing.T) {
	c, rec := newContext(t)
	CSV(c, "dados_filtrados.csv", []byte("a,b\n"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=dados_filtrados.csv", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "a,b\n", rec.Body.String())
}

func TestInitLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	l, err := InitLogger("debug")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.Same(t, l, Logger())

	_, err = InitLogger("verbose")
	assert.Error(t, err)
}
