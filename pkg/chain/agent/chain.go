package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/adrianliechti/docagent/pkg/capability"
	"github.com/adrianliechti/docagent/pkg/document"
	"github.com/adrianliechti/docagent/pkg/provider"

	"github.com/google/uuid"
)

const DefaultMaxTurns = 12

var (
	ErrTurnLimit = errors.New("turn limit exceeded")
)

type Status string

const (
	StatusCompleted              Status = "completed"
	StatusCompletedWithoutResult Status = "completed_without_result"
	StatusAborted                Status = "aborted"
)

type Result struct {
	ID     string
	Status Status

	Record *document.Record

	Turns int
	Calls []capability.Name

	Usage provider.Usage
}

type Chain struct {
	model string

	completer    provider.Completer
	capabilities capability.Provider

	messages []provider.Message

	maxTurns    int
	temperature *float32
}

type Option func(*Chain)

func New(model string, options ...Option) (*Chain, error) {
	temperature := float32(0)

	c := &Chain{
		model: model,

		maxTurns:    DefaultMaxTurns,
		temperature: &temperature,
	}

	for _, option := range options {
		option(c)
	}

	if c.completer == nil {
		return nil, errors.New("missing completer provider")
	}

	if c.capabilities == nil {
		return nil, errors.New("missing capability provider")
	}

	if c.maxTurns < 1 {
		return nil, errors.New("max turns must be positive")
	}

	return c, nil
}

func WithCompleter(completer provider.Completer) Option {
	return func(c *Chain) {
		c.completer = completer
	}
}

func WithCapabilities(capabilities capability.Provider) Option {
	return func(c *Chain) {
		c.capabilities = capabilities
	}
}

// WithMessages replaces the default system prompt.
func WithMessages(messages ...provider.Message) Option {
	return func(c *Chain) {
		c.messages = messages
	}
}

func WithMaxTurns(turns int) Option {
	return func(c *Chain) {
		c.maxTurns = turns
	}
}

func WithTemperature(temperature float32) Option {
	return func(c *Chain) {
		c.temperature = &temperature
	}
}

// Run drives the decision model until it stops calling capabilities,
// a result was validated, or the turn limit is reached.
// The returned error is non nil exactly when the status is StatusAborted.
func (c *Chain) Run(ctx context.Context, state *document.State) (*Result, error) {
	result := &Result{
		ID: uuid.NewString(),
	}

	logger := slog.With("run", result.ID, "model", c.model)

	abort := func(err error) (*Result, error) {
		result.Status = StatusAborted

		logger.ErrorContext(ctx, "agent.aborted", "turns", result.Turns, "error", err)
		return result, err
	}

	tools, err := c.capabilities.Tools(ctx)

	if err != nil {
		return abort(err)
	}

	input := c.initialMessages(state)

	options := &provider.CompleteOptions{
		Tools:       tools,
		Temperature: c.temperature,
	}

	for result.Turns < c.maxTurns {
		result.Turns++

		completion, err := c.completer.Complete(ctx, input, options)

		if err != nil {
			return abort(fmt.Errorf("turn %d: %w", result.Turns, err))
		}

		if completion.Usage != nil {
			result.Usage.InputTokens += completion.Usage.InputTokens
			result.Usage.OutputTokens += completion.Usage.OutputTokens
		}

		if completion.Message == nil {
			break
		}

		message := *completion.Message
		message.Content = slices.Clone(message.Content)

		calls := assignCallIDs(message.Content)

		logger.DebugContext(ctx, "agent.turn", "turn", result.Turns, "calls", len(calls))

		if len(calls) == 0 {
			break
		}

		input = append(input, message)

		for _, call := range calls {
			data, err := c.execute(ctx, logger, state, call)

			if err != nil {
				return abort(fmt.Errorf("turn %d: %s: %w", result.Turns, call.Name, err))
			}

			result.Calls = append(result.Calls, capability.Name(call.Name))
			input = append(input, provider.ToolMessage(call.ID, data))
		}

		if state.Result != nil {
			break
		}

		if result.Turns == c.maxTurns {
			return abort(fmt.Errorf("%w: %d turns", ErrTurnLimit, c.maxTurns))
		}
	}

	result.Record = state.Result
	result.Status = StatusCompletedWithoutResult

	if result.Record != nil {
		result.Status = StatusCompleted
	}

	logger.InfoContext(ctx, "agent.finished", "status", result.Status, "turns", result.Turns, "calls", len(result.Calls))

	return result, nil
}

// execute runs one capability call and returns the serialized tool result.
// Inputs of the analysis capabilities always come from the document state.
func (c *Chain) execute(ctx context.Context, logger *slog.Logger, state *document.State, tc provider.ToolCall) (string, error) {
	call, err := capability.Decode(tc.Name, tc.Arguments)

	if errors.Is(err, capability.ErrUnknown) {
		logger.WarnContext(ctx, "agent.call.unknown", "tool", tc.Name)
		return marshal(capability.Output{"error": "unknown tool " + tc.Name})
	}

	if err != nil {
		return "", err
	}

	switch call.(type) {
	case capability.TextAnalyzeCall:
		if state.Text == nil || strings.TrimSpace(*state.Text) == "" {
			return "", fmt.Errorf("%w: text not prepared", capability.ErrPrecondition)
		}

		call = capability.TextAnalyzeCall{Text: *state.Text}

	case capability.VisionAnalyzeCall:
		if len(state.Images) == 0 {
			return "", fmt.Errorf("%w: images not prepared", capability.ErrPrecondition)
		}

		call = capability.VisionAnalyzeCall{Images: slices.Clone(state.Images)}
	}

	logger.InfoContext(ctx, "agent.call", "tool", tc.Name, "id", tc.ID)

	output, delta, err := c.capabilities.Execute(ctx, state, call)

	if err != nil {
		return "", err
	}

	state.Apply(delta)

	return marshal(output)
}

func (c *Chain) initialMessages(state *document.State) []provider.Message {
	messages := slices.Clone(c.messages)

	if len(messages) == 0 {
		messages = []provider.Message{
			provider.SystemMessage(capability.SystemPrompt),
		}
	}

	instruction := capability.Instruction

	if state.IsPDF {
		instruction += "\n" + fmt.Sprintf(capability.PDFHint, state.Size())
	} else {
		instruction += "\n" + capability.ImageHint
	}

	return append(messages, provider.UserMessage(instruction))
}

// assignCallIDs fills in ids that some local servers omit and returns the calls.
func assignCallIDs(content []provider.Content) []provider.ToolCall {
	var calls []provider.ToolCall

	for i, c := range content {
		if c.ToolCall == nil {
			continue
		}

		call := *c.ToolCall

		if call.ID == "" {
			call.ID = "call_" + uuid.NewString()
		}

		content[i].ToolCall = &call
		calls = append(calls, call)
	}

	return calls
}

func marshal(v any) (string, error) {
	data, err := json.Marshal(v)

	if err != nil {
		return "", err
	}

	return string(data), nil
}
