package config

var (
	// region Telemetry.

	// TelemetryEnabled turns on metrics for uploads and bucket operations.
	TelemetryEnabled = NewKey("telemetry.enabled",
		WithDefaultValue(false),
		WithValidBool())

	// TelemetryMetricsExporter selects where metrics go. Commands exit quickly,
	// so "stdout" is the default and "prometheus" is meant for long syncs that
	// are scraped while they run.
	TelemetryMetricsExporter = NewKey("telemetry.metrics.exporter",
		WithDefaultValue("stdout"),
		WithAllowedStrings([]string{"prometheus", "stdout"}))

	// TelemetryMetricsPrometheusAddress is the listen address of the metrics server.
	TelemetryMetricsPrometheusAddress = NewKey("telemetry.metrics.prometheus.address",
		WithDefaultValue("127.0.0.1:9464"),
		WithValidNetHostPort())

	// TelemetryMetricsPrometheusPath is the path metrics are served at.
	TelemetryMetricsPrometheusPath = NewKey("telemetry.metrics.prometheus.path",
		WithDefaultValue("/metrics"),
		WithValidURI())

	// TelemetryMetricsStdoutInterval is how often metrics are printed. A final
	// export always happens on shutdown.
	TelemetryMetricsStdoutInterval = NewKey("telemetry.metrics.stdout.interval",
		WithDefaultValue("30s"),
		WithValidDuration())
	// endregion.
)
