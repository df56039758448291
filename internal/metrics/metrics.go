package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	uploadsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relatorio_uploads_total",
			Help: "Quantidade de arquivos processados, por status e formato.",
		},
		[]string{"status", "format"}, // status: success|invalid_input|parse_error
	)

	uploadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relatorio_process_duration_seconds",
			Help:    "Tempo de processamento de cada arquivo em segundos.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status", "format"},
	)

	conversionAlerts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relatorio_conversion_alerts_total",
			Help: "Valores convertidos para nulo na normalização, por campo.",
		},
		[]string{"field"},
	)

	droppedRows = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "relatorio_dropped_rows_total",
			Help: "Linhas de cadastro descartadas na normalização.",
		},
	)

	registerOnce sync.Once
)

// Init registra as métricas no registry global.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(uploadsProcessed, uploadDuration, conversionAlerts, droppedRows)
	})
}

// ObserveUpload registra o resultado de um arquivo processado.
func ObserveUpload(status, format string, d time.Duration) {
	labels := prometheus.Labels{
		"status": status,
		"format": format,
	}
	uploadsProcessed.With(labels).Inc()
	uploadDuration.With(labels).Observe(d.Seconds())
}

// ObserveAlert soma os valores anulados de um campo.
func ObserveAlert(field string, count int) {
	conversionAlerts.WithLabelValues(field).Add(float64(count))
}

// ObserveDropped soma as linhas descartadas.
func ObserveDropped(n int) {
	droppedRows.Add(float64(n))
}

// Handler expõe as métricas no formato do Prometheus.
func Handler() http.Handler {
	return promhttp.Handler()
}
