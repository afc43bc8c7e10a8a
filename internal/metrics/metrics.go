package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cafepos_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cafepos_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	orderOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cafepos_order_operations_total",
			Help: "Total number of order operations",
		},
		[]string{"operation", "status"},
	)

	ledgerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cafepos_inventory_transactions_total",
			Help: "Total number of inventory ledger transactions",
		},
		[]string{"type", "status"},
	)
)

// Middleware: HTTP istek sayacı ve süre histogramı.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		status := strconv.Itoa(c.Response().StatusCode())

		httpRequestsTotal.WithLabelValues(c.Method(), path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), path, status).Observe(time.Since(start).Seconds())

		return err
	}
}

// RecordOrderOperation: Sipariş operasyon metriği (create/status_update/edit_item).
func RecordOrderOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	orderOperations.WithLabelValues(operation, status).Inc()
}

// RecordLedgerTransaction: Envanter defteri işlem metriği (tip bazında).
func RecordLedgerTransaction(txType string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	ledgerOperations.WithLabelValues(txType, status).Inc()
}
