package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/pathreplay/internal/grid"
)

const finalPathKey = "finalPath"

// Parse converts raw provider step records into a validated Trace.
//
// A record is either an object keyed by "row,col" whose values are arrays of
// [row, col] neighbor pairs, or an object with a single finalPath array.
func Parse(raw []json.RawMessage) (Trace, error) {
	t := make(Trace, 0, len(raw))
	for i, rec := range raw {
		s, err := parseStep(rec)
		if err != nil {
			return nil, &StepError{Index: i, Wrapped: err}
		}
		t = append(t, s)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func parseStep(rec json.RawMessage) (Step, error) {
	dec := json.NewDecoder(bytes.NewReader(rec))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: expected object, got %v", ErrMalformed, tok)
	}

	var (
		entries []Expansion
		final   *FinalPathStep
	)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		key := keyTok.(string)

		var pairs []any
		if err := dec.Decode(&pairs); err != nil {
			return nil, fmt.Errorf("%w: value of %q: %v", ErrMalformed, key, err)
		}
		coords, err := parsePairs(pairs)
		if err != nil {
			return nil, fmt.Errorf("%w: value of %q: %v", ErrMalformed, key, err)
		}

		if key == finalPathKey {
			final = &FinalPathStep{Path: coords}
			continue
		}
		from, err := ParseKey(key)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Expansion{From: from, Neighbors: coords})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	switch {
	case final != nil && len(entries) > 0:
		return nil, fmt.Errorf("%w: record mixes finalPath with frontier entries", ErrMalformed)
	case final != nil:
		return *final, nil
	case len(entries) == 0:
		return nil, fmt.Errorf("%w: empty record", ErrMalformed)
	}
	return FrontierStep{Entries: entries}, nil
}

// ParseKey reads a "row,col" coordinate key.
func ParseKey(key string) (grid.Coord, error) {
	rs, cs, ok := strings.Cut(key, ",")
	if !ok {
		return grid.Coord{}, fmt.Errorf("%w: key %q is not row,col", ErrMalformed, key)
	}
	r, err := strconv.Atoi(strings.TrimSpace(rs))
	if err != nil {
		return grid.Coord{}, fmt.Errorf("%w: key %q: non-numeric row", ErrMalformed, key)
	}
	c, err := strconv.Atoi(strings.TrimSpace(cs))
	if err != nil {
		return grid.Coord{}, fmt.Errorf("%w: key %q: non-numeric col", ErrMalformed, key)
	}
	return grid.Coord{Row: r, Col: c}, nil
}

func parsePairs(pairs []any) ([]grid.Coord, error) {
	out := make([]grid.Coord, 0, len(pairs))
	for _, p := range pairs {
		c, err := parsePair(p)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// parsePair reads a decoded [row, col] JSON array.
func parsePair(v any) (grid.Coord, error) {
	arr, ok := v.([]any)
	if !ok || len(arr) != 2 {
		return grid.Coord{}, fmt.Errorf("expected [row, col] pair, got %v", v)
	}
	r, err := toInt(arr[0])
	if err != nil {
		return grid.Coord{}, err
	}
	c, err := toInt(arr[1])
	if err != nil {
		return grid.Coord{}, err
	}
	return grid.Coord{Row: r, Col: c}, nil
}

func toInt(v any) (int, error) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("non-numeric coordinate %v", v)
	}
	i, err := strconv.Atoi(n.String())
	if err != nil {
		return 0, fmt.Errorf("non-integer coordinate %s", n)
	}
	return i, nil
}

// ParsePath reads an array of [row, col] pairs, as used for shortestPath.
func ParsePath(raw json.RawMessage) ([]grid.Coord, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var pairs []any
	if err := dec.Decode(&pairs); err != nil {
		return nil, fmt.Errorf("%w: path: %v", ErrMalformed, err)
	}
	coords, err := parsePairs(pairs)
	if err != nil {
		return nil, fmt.Errorf("%w: path: %v", ErrMalformed, err)
	}
	return coords, nil
}

// Encode renders t back into provider step records.
func Encode(t Trace) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(t))
	for i, s := range t {
		var b bytes.Buffer
		b.WriteByte('{')
		switch s := s.(type) {
		case FrontierStep:
			for j, e := range s.Entries {
				if j > 0 {
					b.WriteByte(',')
				}
				b.WriteString(strconv.Quote(e.From.String()))
				b.WriteByte(':')
				writePairs(&b, e.Neighbors)
			}
		case FinalPathStep:
			b.WriteString(strconv.Quote(finalPathKey))
			b.WriteByte(':')
			writePairs(&b, s.Path)
		default:
			return nil, &StepError{Index: i, Wrapped: fmt.Errorf("%w: unknown step type %T", ErrMalformed, s)}
		}
		b.WriteByte('}')
		out = append(out, json.RawMessage(b.Bytes()))
	}
	return out, nil
}

func writePairs(b *bytes.Buffer, coords []grid.Coord) {
	b.WriteByte('[')
	for i, c := range coords {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(b, "[%d,%d]", c.Row, c.Col)
	}
	b.WriteByte(']')
}
