package capability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/adrianliechti/docagent/pkg/document"
	"github.com/adrianliechti/docagent/pkg/locale"
	"github.com/adrianliechti/docagent/pkg/schema"
)

const errorLimit = 200

// normalize reports parse and schema failures as data so the model can retry.
func (r *Registry) normalize(ctx context.Context, state *document.State, call Call) (Output, document.Delta, error) {
	c, ok := call.(NormalizeCall)

	if !ok {
		return nil, document.Delta{}, fmt.Errorf("%w: unexpected call %T", ErrUnknown, call)
	}

	candidate, err := parseCandidate(c.RawJSON)

	if err != nil {
		return failure(fmt.Errorf("invalid json: %w", err), nil), document.Delta{}, nil
	}

	record, ok := candidate.(map[string]any)

	if !ok {
		return failure(errors.New("invalid json: expected an object"), candidate), document.Delta{}, nil
	}

	locale.NormalizeRecord(record)

	if err := schema.Validate(record); err != nil {
		return failure(err, record), document.Delta{}, nil
	}

	result, err := document.DecodeRecord(record)

	if err != nil {
		return failure(err, record), document.Delta{}, nil
	}

	return Output{"ok": true}, document.Delta{Result: result}, nil
}

func failure(err error, partial any) Output {
	output := Output{
		"ok":    false,
		"error": truncate(err.Error(), errorLimit),
	}

	if partial != nil {
		output["partial"] = partial
	}

	return output
}

// parseCandidate falls back to the outermost braces for models that wrap JSON in prose.
func parseCandidate(raw string) (any, error) {
	var v any

	err := json.Unmarshal([]byte(raw), &v)

	if err == nil {
		return v, nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")

	if start < 0 || end <= start {
		return nil, err
	}

	if err := json.Unmarshal([]byte(raw[start:end+1]), &v); err != nil {
		return nil, err
	}

	return v, nil
}
