package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/webotron/webotron/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/multierr"
)

// ShutdownFunc flushes pending metrics and stops the metrics server.
type ShutdownFunc func(context.Context) error

// Start installs the global meter provider and, for the prometheus exporter,
// starts the metrics server in the background. Commands are short lived, so
// the returned ShutdownFunc must be called before exiting to flush metrics.
func Start(ctx context.Context) (ShutdownFunc, error) {
	logger := log.With().Str("component", "telemetry").Logger()
	ctx = logger.WithContext(ctx)

	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithProcess(),
		resource.WithOS(),
		resource.WithHost(),
		resource.WithAttributes(
			attribute.String("service", "webotron"),
			attribute.String("version", config.Version),
		),
	)
	if err != nil {
		return nil, err
	}

	meterProvider, err := newMeterProvider(config.TelemetryMetricsExporter.String(), res)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("Error creating meter provider")
		return nil, err
	}
	otel.SetMeterProvider(meterProvider)

	var server *http.Server

	if config.TelemetryMetricsExporter.String() == "prometheus" {
		server = newPrometheusServer(ctx)

		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().
					Err(err).
					Msg("Error in telemetry server")
			}
		}()
	}

	return func(ctx context.Context) error {
		var merr error

		if server != nil {
			merr = multierr.Append(merr, server.Shutdown(ctx))
		}

		if err := meterProvider.Shutdown(ctx); err != nil {
			logger.Error().
				Err(err).
				Msg("Error shutting down meter provider")
			merr = multierr.Append(merr, err)
		}

		return merr
	}, nil
}

// newMeterProvider creates a new meter provider for the given metrics exporter.
func newMeterProvider(exporterName string, res *resource.Resource) (*metric.MeterProvider, error) {
	switch exporterName {
	case "prometheus":
		exporter, err := prometheus.New(prometheus.WithNamespace("webotron"))
		if err != nil {
			return nil, err
		}
		return metric.NewMeterProvider(metric.WithReader(exporter), metric.WithResource(res)), nil
	case "stdout":
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, err
		}
		return metric.NewMeterProvider(
			metric.WithReader(
				metric.NewPeriodicReader(exporter,
					metric.WithInterval(config.TelemetryMetricsStdoutInterval.Duration()))),
			metric.WithResource(res)), nil
	}

	return nil, fmt.Errorf("unknown metrics exporter: %s", exporterName)
}
