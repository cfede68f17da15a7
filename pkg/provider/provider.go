package provider

import (
	"errors"
)

var (
	// ErrRemote wraps transport failures and non-success responses of an inference service.
	ErrRemote = errors.New("remote service failure")

	// ErrMalformed marks a response envelope without a usable choice.
	ErrMalformed = errors.New("malformed response")
)

type File struct {
	Name string

	Content     []byte
	ContentType string
}

type Tool struct {
	Name        string
	Description string

	Strict *bool

	Parameters map[string]any
}

type ToolResult struct {
	ID string

	Data string
}

type Schema struct {
	Name        string
	Description string

	Strict *bool

	Schema map[string]any
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}
