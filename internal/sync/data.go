package sync

import (
	"context"
	"io"

	"github.com/webotron/webotron/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// byteCounter records the bytes read from an upload body as they are sent.
// Seeking is passed through so the uploader can still size the body.
type byteCounter struct {
	ctx    context.Context
	f      io.ReadSeeker
	bucket string
	n      int64
}

func (c *byteCounter) Read(p []byte) (int, error) {
	n, err := c.f.Read(p)

	if n > 0 {
		c.n += int64(n)

		telemetry.UploadedBytes.Add(c.ctx, int64(n),
			metric.WithAttributes(
				attribute.KeyValue{
					Key:   "bucket",
					Value: attribute.StringValue(c.bucket),
				},
			),
		)
	}

	return n, err
}

func (c *byteCounter) Seek(offset int64, whence int) (int64, error) {
	return c.f.Seek(offset, whence)
}
