package exporter

import (
	"github.com/gin-gonic/gin"
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type LFSBatchCollector struct {
	// BatchRequests is labelled by operation and answered status code.
	BatchRequests  metrics.Counter
	ObjectsPresent metrics.Counter
	ObjectsMissing metrics.Counter
	// AuthDenied is labelled by denial reason.
	AuthDenied metrics.Counter
}

// NewCollector registers the service counters on reg. Tests pass their own
// registry so collectors can be built more than once.
func NewCollector(reg stdprometheus.Registerer) *LFSBatchCollector {
	return &LFSBatchCollector{
		BatchRequests: newCounter(reg, stdprometheus.CounterOpts{
			Namespace: "lfsbatch",
			Name:      "batch_requests_total",
			Help:      "Batch requests by operation and status",
		}, "operation", "status"),
		ObjectsPresent: newCounter(reg, stdprometheus.CounterOpts{
			Namespace: "lfsbatch",
			Name:      "objects_present_total",
			Help:      "Requested objects already in the store",
		}, "operation"),
		ObjectsMissing: newCounter(reg, stdprometheus.CounterOpts{
			Namespace: "lfsbatch",
			Name:      "objects_missing_total",
			Help:      "Requested objects not in the store",
		}, "operation"),
		AuthDenied: newCounter(reg, stdprometheus.CounterOpts{
			Namespace: "lfsbatch",
			Name:      "auth_denied_total",
			Help:      "Denied authorization attempts by reason",
		}, "reason"),
	}
}

func newCounter(reg stdprometheus.Registerer, opts stdprometheus.CounterOpts, labelNames ...string) metrics.Counter {
	cv := stdprometheus.NewCounterVec(opts, labelNames)
	reg.MustRegister(cv)
	return prometheus.NewCounter(cv)
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()

	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
