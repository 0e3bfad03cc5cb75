package provider

import (
	"context"
	"errors"
	"log/slog"

	"github.com/san-kum/pathreplay/internal/grid"
	"github.com/san-kum/pathreplay/internal/replay"
)

// Loader fetches traces into an engine. A provider outage leaves the engine
// untouched; an empty or malformed payload loads a blank grid with no trace.
type Loader struct {
	provider Provider
	engine   *replay.Engine
	gridSize int
	logger   *slog.Logger
}

func NewLoader(p Provider, e *replay.Engine, gridSize int, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		provider: p,
		engine:   e,
		gridSize: gridSize,
		logger:   logger.With(slog.String("component", "loader")),
	}
}

// Regenerate requests a new grid and trace and loads them.
func (l *Loader) Regenerate(ctx context.Context, alg Algorithm, obstacleCount int) error {
	g, t, err := l.provider.RequestTrace(ctx, alg, obstacleCount)
	switch {
	case errors.Is(err, ErrEmptyMap):
		l.logger.Warn("empty map from provider, falling back to a blank grid", slog.Any("error", err))
		if ferr := l.Empty(); ferr != nil {
			return errors.Join(err, ferr)
		}
		return err
	case err != nil:
		l.logger.Warn("keeping current trace", slog.Any("error", err))
		return err
	}

	if err := l.engine.Load(g, t); err != nil {
		return err
	}
	l.gridSize = g.Size()
	return nil
}

// Empty loads a blank grid with no trace.
func (l *Loader) Empty() error {
	g, err := grid.New(l.gridSize, nil)
	if err != nil {
		return err
	}
	return l.engine.Load(g, nil)
}

func (l *Loader) GridSize() int { return l.gridSize }
