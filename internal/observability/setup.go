package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Hemantgithubpro/rewear-1/internal/config"
	"github.com/Hemantgithubpro/rewear-1/internal/infrastructure/observability"
)

// Setup configures logging, metrics and tracing from cfg. It returns the tracer
// shutdown func and the handler serving the registered metrics.
func Setup(ctx context.Context, cfg *config.Config) (func(context.Context) error, http.Handler, error) {
	observability.InitLogger(cfg.Log.Level, cfg.Log.Format)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	observability.InitMetrics(reg)

	shutdown, err := observability.InitTracing(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.Enabled)
	if err != nil {
		return nil, nil, err
	}
	return shutdown, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}), nil
}
