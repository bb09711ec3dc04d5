package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
	"github.com/webotron/webotron/config"
)

// NewLogger builds a *zerolog.Logger from the logging configuration. The
// returned closer flushes buffered messages and must be called before exit.
func NewLogger() (*zerolog.Logger, io.Closer) {
	zerolog.DurationFieldUnit = time.Millisecond
	zerolog.TimeFieldFormat = time.RFC3339

	output := newLogWriter(config.LoggingOutput.String(), config.LoggingFormat.String())

	// Uploads log from several goroutines; the diode keeps them from
	// blocking on a slow terminal.
	wr := diode.NewWriter(writerOnly{output}, 1000, 10*time.Millisecond, func(missed int) {
		fmt.Fprintf(os.Stderr, "dropped %d log messages\n", missed)
	})

	logger := zerolog.New(zerolog.MultiLevelWriter(wr)).With().Timestamp().Logger()

	if lvl, err := zerolog.ParseLevel(strings.ToLower(config.LoggingLevel.String())); err == nil {
		logger = logger.Level(lvl)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	return &logger, wr
}

// writerOnly hides Close so closing the diode never closes stdout or stderr.
type writerOnly struct {
	io.Writer
}
