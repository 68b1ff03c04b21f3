// Logging helpers shared by all commands.
//
// Commands log through charmbracelet/log. The root command attaches the CLI
// logger to every command context; the server derives a per-request logger
// carrying the request id.

package cli

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/locuszoom/pkg/errors"
)

// Log output formats accepted in [log] format.
const (
	logFormatText   = "text"
	logFormatJSON   = "json"
	logFormatLogfmt = "logfmt"
)

// newLogger creates a text logger writing to w at level, with timestamps
// such as "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// parseFormatter maps a [log] format name to a formatter. Empty is text.
func parseFormatter(name string) (log.Formatter, error) {
	switch strings.ToLower(name) {
	case "", logFormatText:
		return log.TextFormatter, nil
	case logFormatJSON:
		return log.JSONFormatter, nil
	case logFormatLogfmt:
		return log.LogfmtFormatter, nil
	}
	return 0, errors.New(errors.ErrCodeConfig, "unknown log format %q (want text, json or logfmt)", name)
}

// applyLogConfig configures c.Logger from cfg. A level set on the command
// line (--verbose) is kept.
func (c *CLI) applyLogConfig(cfg LogConfig) error {
	formatter, err := parseFormatter(cfg.Format)
	if err != nil {
		return err
	}
	c.Logger.SetFormatter(formatter)
	if cfg.Level == "" || c.Logger.GetLevel() != LogInfo {
		return nil
	}
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfig, err, "invalid log level %q", cfg.Level)
	}
	c.Logger.SetLevel(level)
	return nil
}

// stopwatch logs a completed step with its elapsed time.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
}

func startStopwatch(l *log.Logger) stopwatch {
	return stopwatch{logger: l, start: time.Now()}
}

// done logs msg at info with an "elapsed" key rounded to the millisecond.
func (s stopwatch) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(s.start).Round(time.Millisecond))
	s.logger.Info(msg, keyvals...)
}

// requestLogger returns base tagged with the request id, method and path.
func requestLogger(base *log.Logger, id string, r *http.Request) *log.Logger {
	return base.With("request_id", id, "method", r.Method, "path", r.URL.Path)
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
