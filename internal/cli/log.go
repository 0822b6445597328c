// Package cli implements the floorplanner command-line interface.
//
// This package provides commands for building slicing trees from module
// lists, running net migration and distance reduction, rendering layouts
// and serving the HTTP API. The CLI is built using cobra and logs through
// the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - build: Build the slicing tree and report its shape
//   - migrate: Pull the net toward a target point
//   - reduce: Bring two modules next to each other
//   - render: Draw a saved JSON layout as SVG, PDF or PNG
//   - tree: Draw the slicing tree itself with Graphviz
//   - generate: Write a random sliceable module list
//   - serve: Run the HTTP API
//   - cache, config: Manage the result cache and the configuration file
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// routes pipeline, cache and HTTP events to the log. Loggers are passed
// through context.Context.
//
// # Example
//
//	import "github.com/matzehuels/floorplanner/internal/cli"
//
//	func main() {
//	    if err := cli.Execute(context.Background()); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/floorplanner/pkg/pipeline"
)

// logTimeFormat prints hundredths of a second, e.g. "14:32:01.45".
const logTimeFormat = "15:04:05.00"

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
		Level:           level,
	})
}

// progress times one command run.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with the elapsed time, rounded to the
// millisecond, appended to keyvals.
func (p *progress) done(msg string, keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

// stages logs the per-stage timings of a pipeline run at debug level.
// Stages served from the cache are marked.
func (p *progress) stages(s pipeline.Stats, ci pipeline.CacheInfo) {
	p.logger.Debug("stage timings",
		"parse", s.ParseTime.Round(time.Microsecond),
		"layout", s.LayoutTime.Round(time.Microsecond),
		"render", s.RenderTime.Round(time.Microsecond),
		"layout_cached", ci.LayoutHit,
		"render_cached", ci.RenderHit,
	)
}

type ctxKey struct{}

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() for a context that never went through preRun.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
