package telemetry

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("webotron")

var UploadedFiles = must(meter.Int64Counter("uploaded_files",
	metric.WithDescription("Total number of files uploaded"),
))

var UploadedBytes = must(meter.Int64Counter("uploaded_bytes",
	metric.WithDescription("Total number of bytes uploaded"),
	metric.WithUnit("By"),
))

var UploadErrors = must(meter.Int64Counter("upload_errors",
	metric.WithDescription("Total number of failed uploads"),
))

var SkippedEntries = must(meter.Int64Counter("skipped_entries",
	metric.WithDescription("Total number of local entries skipped during sync"),
))

var BucketOperations = must(meter.Int64Counter("bucket_operations",
	metric.WithDescription("Total number of bucket operations, by operation and status"),
))

var SyncDuration = must(meter.Float64Histogram("sync_duration",
	metric.WithDescription("Duration of directory syncs"),
	metric.WithUnit("s"),
))

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
