package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var compiled = sync.OnceValues(func() (*jsonschema.Schema, error) {
	data, err := json.Marshal(Document())

	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource(documentURL, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}

	return compiler.Compile(documentURL)
})

type Violation struct {
	Path    string
	Message string
}

func (v Violation) String() string {
	path := v.Path

	if path == "" {
		path = "/"
	}

	return path + ": " + v.Message
}

// Error lists every violation found in a candidate record.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	var parts []string

	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}

	return "schema violation: " + strings.Join(parts, "; ")
}

// Validate checks a decoded JSON value against the document schema.
// It returns an *Error describing the offending paths on failure.
func Validate(v any) error {
	schema, err := compiled()

	if err != nil {
		return err
	}

	err = schema.Validate(v)

	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError

	if !errors.As(err, &verr) {
		return err
	}

	result := &Error{}
	collect(verr, &result.Violations)

	if len(result.Violations) == 0 {
		result.Violations = append(result.Violations, Violation{
			Path:    verr.InstanceLocation,
			Message: verr.Message,
		})
	}

	return result
}

func collect(err *jsonschema.ValidationError, violations *[]Violation) {
	if len(err.Causes) == 0 {
		*violations = append(*violations, Violation{
			Path:    err.InstanceLocation,
			Message: err.Message,
		})

		return
	}

	for _, cause := range err.Causes {
		collect(cause, violations)
	}
}
