package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/san-kum/pathreplay/internal/grid"
	"github.com/san-kum/pathreplay/internal/metrics"
	"github.com/san-kum/pathreplay/internal/trace"
)

// maxResponseBytes bounds a 50x50 map plus a full trace with headroom.
const maxResponseBytes = 32 << 20

type HTTPProvider struct {
	url      string
	client   *http.Client
	logger   *slog.Logger
	maxBytes int64
}

type HTTPOption func(*HTTPProvider)

func WithClient(c *http.Client) HTTPOption {
	return func(p *HTTPProvider) { p.client = c }
}

func WithLogger(l *slog.Logger) HTTPOption {
	return func(p *HTTPProvider) { p.logger = l }
}

// WithMaxResponseBytes caps the accepted response body size.
func WithMaxResponseBytes(n int64) HTTPOption {
	return func(p *HTTPProvider) { p.maxBytes = n }
}

func NewHTTP(url string, timeout time.Duration, opts ...HTTPOption) *HTTPProvider {
	p := &HTTPProvider{
		url:      url,
		client:   &http.Client{Timeout: timeout},
		logger:   slog.Default(),
		maxBytes: maxResponseBytes,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(slog.String("component", "provider"))
	return p
}

func (p *HTTPProvider) RequestTrace(ctx context.Context, alg Algorithm, obstacleCount int) (g *grid.Grid, t trace.Trace, err error) {
	if !alg.Valid() {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(alg))
	}

	start := time.Now()
	defer func() {
		outcome := "ok"
		switch {
		case errors.Is(err, ErrResponseTooLarge):
			outcome = "too_large"
		case errors.Is(err, ErrProviderUnavailable):
			outcome = "unavailable"
		case errors.Is(err, ErrEmptyMap):
			outcome = "empty"
		case err != nil:
			outcome = "error"
		}
		metrics.ObserveProviderRequest(alg.String(), outcome, time.Since(start))
	}()

	body, err := json.Marshal(Request{Algorithm: int(alg), ObstacleCount: obstacleCount})
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warn("trace request failed", slog.String("url", p.url), slog.Any("error", err))
		return nil, nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes+1))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading response: %w", ErrProviderUnavailable, err)
	}
	if int64(len(data)) > p.maxBytes {
		p.logger.Warn("trace response too large", slog.Int64("limit", p.maxBytes))
		return nil, nil, fmt.Errorf("%w: %w: over %d bytes", ErrProviderUnavailable, ErrResponseTooLarge, p.maxBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.logger.Warn("trace service returned an error",
			slog.Int("status", resp.StatusCode),
			slog.String("algorithm", alg.String()))
		return nil, nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	g, t, err = Decode(data)
	if err != nil {
		p.logger.Warn("trace payload rejected", slog.Any("error", err))
		return nil, nil, err
	}

	p.logger.Debug("trace received",
		slog.String("algorithm", alg.String()),
		slog.Int("obstacles", obstacleCount),
		slog.Int("size", g.Size()),
		slog.Int("steps", t.Len()),
		slog.Duration("elapsed", time.Since(start)))
	return g, t, nil
}
