package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at level, with the same
// timestamp formatting the CLI uses throughout.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// ctxKey is a distinct type for this package's context keys, avoiding
// collisions with other packages' context values.
type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the attached logger, or log.Default() if
// none was attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// progress tracks the start time of one driver phase and logs its
// completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress starts timing a phase. The returned progress should call
// done once that phase completes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since newProgress, rounded
// to the nearest millisecond.
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
