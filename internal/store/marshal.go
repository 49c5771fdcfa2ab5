package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mereki/gambit/internal/core"
)

// marshalPayload converts an event's variant payload to canonical JSON TEXT.
// RFC 8785 canonicalization keeps the stored text byte-identical to the text
// that was hashed into the event id.
func marshalPayload(ev core.Event) (string, error) {
	data, err := core.MarshalCanonical(core.Payload(ev))
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

// unmarshalPayload parses canonical JSON TEXT back to a payload map.
// Decodes with json.Number and normalizes every number to int64 so that
// large sequence values never pass through float64, and re-marshaling the
// result reproduces the stored bytes.
func unmarshalPayload(data string) (map[string]any, error) {
	if data == "" || data == "{}" {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	normalized, err := normalizeValue(raw)
	if err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return normalized.(map[string]any), nil
}

// normalizeValue rewrites json.Number leaves to int64 recursively. Floats
// are rejected: the payload vocabulary is integer-only.
func normalizeValue(v any) (any, error) {
	switch val := v.(type) {
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("non-integer number %q", val.String())
		}
		return n, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			nv, err := normalizeValue(inner)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			nv, err := normalizeValue(inner)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	default:
		return v, nil
	}
}
