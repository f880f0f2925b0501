// Package source produces telemetry snapshots for the pipeline.
package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ets2dash/tdashboard/internal/api"
	"github.com/ets2dash/tdashboard/internal/config"
	"github.com/ets2dash/tdashboard/pkg/core"
)

// Source types accepted by New.
const (
	TypeSignalR = "signalr"
	TypePoll    = "poll"
	TypeReplay  = "replay"
)

// Source yields one snapshot per call. Next blocks until a snapshot is
// available, ctx is done or the source is exhausted (io.EOF).
type Source interface {
	Next(ctx context.Context) (*core.Snapshot, error)
	Name() string
	Close() error
}

// New builds the source described by cfg.
func New(cfg config.SourceConfig, logger *slog.Logger) (Source, error) {
	switch cfg.Type {
	case TypeSignalR, "":
		return NewSignalR(api.New(cfg.URL), logger), nil
	case TypePoll:
		return NewPush(api.New(cfg.URL), logger), nil
	case TypeReplay:
		if cfg.ReplayFile == "" {
			return nil, fmt.Errorf("replay source requires source.replayFile")
		}
		return OpenReplay(cfg.ReplayFile, cfg.ReplayLoop)
	default:
		return nil, fmt.Errorf("unknown source type: %s", cfg.Type)
	}
}
