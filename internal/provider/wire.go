package provider

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/san-kum/pathreplay/internal/grid"
	"github.com/san-kum/pathreplay/internal/trace"
)

// Request is the body posted to the trace service.
type Request struct {
	Algorithm     int `json:"algorithm"`
	ObstacleCount int `json:"obstacleCount"`
}

// Response is the trace service payload. ShortestPath is optional; when
// present and the trace carries no finalPath record it becomes the final
// step.
type Response struct {
	Map             [][]int           `json:"map"`
	PathInformation []json.RawMessage `json:"pathInformation"`
	ShortestPath    json.RawMessage   `json:"shortestPath,omitempty"`
}

// envelope is the API gateway proxy shape, with the payload as a JSON string.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Body       json.RawMessage `json:"body"`
}

type errorBody struct {
	Error string `json:"error"`
}

// Decode maps a raw service payload onto a grid and trace.
func Decode(data []byte) (*grid.Grid, trace.Trace, error) {
	payload, err := unwrap(data)
	if err != nil {
		return nil, nil, err
	}

	var resp Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrEmptyMap, err)
	}
	if len(resp.Map) == 0 {
		var eb errorBody
		if json.Unmarshal(payload, &eb) == nil && eb.Error != "" {
			return nil, nil, fmt.Errorf("%w: %s", ErrProviderUnavailable, eb.Error)
		}
		return nil, nil, ErrEmptyMap
	}

	g, err := grid.FromCodes(resp.Map)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrEmptyMap, err)
	}

	t, err := trace.Parse(resp.PathInformation)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrEmptyMap, err)
	}
	path, err := trace.ParsePath(resp.ShortestPath)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrEmptyMap, err)
	}
	t = trace.WithShortestPath(t, path)

	if err := t.CheckBounds(g.Size()); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrEmptyMap, err)
	}
	return g, t, nil
}

// unwrap strips an API gateway envelope if there is one.
func unwrap(data []byte) ([]byte, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyMap
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil || env.StatusCode == 0 || len(env.Body) == 0 {
		return data, nil
	}

	body := env.Body
	var s string
	if json.Unmarshal(body, &s) == nil {
		body = []byte(s)
	}
	if env.StatusCode < 200 || env.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(body, &eb)
		return nil, fmt.Errorf("%w: status %d: %s", ErrProviderUnavailable, env.StatusCode, eb.Error)
	}
	return body, nil
}
