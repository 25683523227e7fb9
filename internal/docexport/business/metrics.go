package business

import (
	"context"
	"errors"
	"time"

	"github.com/aisa-it/docexport/internal/docexport/apierrors"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	exportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "docexport",
		Name:      "exports_total",
		Help:      "Number of document exports by format and status",
	}, []string{"format", "status"})

	exportDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "docexport",
		Name:      "export_duration_seconds",
		Help:      "Document export duration",
		Buckets:   []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"format"})
)

func init() {
	prometheus.MustRegister(exportsTotal, exportDuration)
}

func observeExport(format Format, err error, d time.Duration) {
	exportsTotal.WithLabelValues(string(format), exportStatus(err)).Inc()
	if err == nil {
		exportDuration.WithLabelValues(string(format)).Observe(d.Seconds())
	}
}

func exportStatus(err error) string {
	var defined apierrors.DefinedError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.As(err, &defined) && defined.StatusCode < 500:
		return "rejected"
	}
	return "failed"
}
