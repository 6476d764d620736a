// Package slogobs logs repair events through log/slog with localized
// messages.
package slogobs

import (
	"context"
	"log/slog"
	"strconv"

	jsonmend "github.com/reoring/jsonmend"
	"github.com/reoring/jsonmend/i18n"
)

// Observer implements jsonmend.Observer on a *slog.Logger.
type Observer struct {
	logger *slog.Logger
}

var _ jsonmend.Observer = (*Observer)(nil)

// New creates a slog-based observer; nil uses slog.Default().
func New(logger *slog.Logger) *Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Observer{logger: logger}
}

// Level is the level an event is logged at: failures at Error, the
// recursion bookkeeping at Debug, everything else at Info.
func Level(ev jsonmend.Event) slog.Level {
	switch ev.Stage {
	case jsonmend.StageFailing:
		return slog.LevelError
	case jsonmend.StageReparsing, jsonmend.StageRecursing:
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func (o *Observer) Observe(ctx context.Context, ev jsonmend.Event) {
	level := Level(ev)
	if !o.logger.Enabled(ctx, level) {
		return
	}
	data := map[string]string{
		"depth":  strconv.Itoa(ev.Depth),
		"kind":   ev.Kind.String(),
		"fix":    string(ev.Fix),
		"status": ev.Status.String(),
		"offset": strconv.FormatInt(ev.Offset, 10),
		"window": ev.Window,
	}
	attrs := []slog.Attr{
		slog.String("stage", ev.Stage.String()),
		slog.Int("depth", ev.Depth),
	}
	switch ev.Stage {
	case jsonmend.StageDiagnosing:
		if ev.Offset < 0 {
			// nothing to point at
			return
		}
		attrs = append(attrs, slog.Int64("offset", ev.Offset), slog.String("window", ev.Window))
	case jsonmend.StageDispatching:
		attrs = append(attrs, slog.String("kind", ev.Kind.String()))
	case jsonmend.StageFixing, jsonmend.StageReparsing, jsonmend.StageRecursing:
		attrs = append(attrs, slog.String("kind", ev.Kind.String()), slog.String("fix", string(ev.Fix)))
		if ev.Stage == jsonmend.StageRecursing {
			// the message names the level retried at
			data["depth"] = strconv.Itoa(ev.Depth + 1)
		}
	case jsonmend.StageSuccess, jsonmend.StageFailing:
		attrs = append(attrs,
			slog.String("kind", ev.Kind.String()),
			slog.String("status", ev.Status.String()),
			slog.Int("attempts", ev.Attempts),
		)
		if ev.Fix != jsonmend.FixNone {
			attrs = append(attrs, slog.String("fix", string(ev.Fix)))
		}
		if ev.Status != jsonmend.StatusRecovered {
			data["status"] = i18n.T(ev.Status.String(), nil)
		}
	}
	if ev.Err != nil {
		attrs = append(attrs, slog.String("error", ev.Err.Error()))
	}
	o.logger.LogAttrs(ctx, level, i18n.T(ev.Stage.String(), data), attrs...)
}
