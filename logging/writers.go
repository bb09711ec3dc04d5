package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/webotron/webotron/config"
)

// newLogWriter selects an [io.Writer] for the given output ("stdout",
// "stderr" or a file path) and format ("json" or "text"). Text sent to a
// terminal stream is rendered with a [zerolog.ConsoleWriter]; text sent to a
// file is written as JSON lines, like the json format.
func newLogWriter(output string, format string) io.Writer {
	var out io.Writer

	switch output {
	case "", "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "[ERROR] Failed to open log file:", err)
			fmt.Fprintln(os.Stderr, "[WARN] Defaulting to stderr")

			out = os.Stderr
			break
		}

		return f
	}

	switch format {
	case "json":
		return out
	case "text":
		return consoleWriter(out)
	}

	fmt.Fprintln(os.Stderr, "[WARN] Unknown log format, defaulting to text")

	return consoleWriter(out)
}

// consoleWriter creates and returns a [zerolog.ConsoleWriter] that formats log
// messages for display in console environments.
func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	writer := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: config.LoggingTimeFormat.String(),
		NoColor:    !config.LoggingColors.Bool(),
	}

	writer.PartsOrder = []string{
		zerolog.TimestampFieldName,
		zerolog.LevelFieldName,
		zerolog.MessageFieldName,
	}

	return writer
}
