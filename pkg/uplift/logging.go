package uplift

import (
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// levelFor maps the verbose setting onto a slog level:
// 1 = warnings only, 2 = useful info, 3 = everything.
func levelFor(verbose int) slog.Level {
	switch {
	case verbose <= 1:
		return slog.LevelWarn
	case verbose == 2:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// newLogger returns the session logger tagged with a fresh run id. A caller
// supplied logger is used as is; otherwise verbose 0 discards everything.
func newLogger(cfg Config) (*slog.Logger, string) {
	runID := uuid.NewString()
	l := cfg.Logger
	if l == nil {
		var w io.Writer = os.Stderr
		if cfg.Verbose == 0 {
			w = io.Discard
		}
		l = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: levelFor(cfg.Verbose)}))
	}
	return l.With("component", "causallift", "run_id", runID), runID
}
