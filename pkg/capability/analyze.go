package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adrianliechti/docagent/pkg/document"
	"github.com/adrianliechti/docagent/pkg/provider"
	"github.com/adrianliechti/docagent/pkg/schema"

	"github.com/vincent-petithory/dataurl"
)

const SystemPrompt = `You are an extraction agent. Your goal is to return ONLY a strict JSON object for Croatian invoices/quotes with fields:
documentType, documentNumber, date, dueDate, currency,
supplier{name,address,oib,iban}, buyer{name,address,oib,iban},
items[{position,code,description,quantity,unit,unitPrice,discountPercent,totalPrice}],
totals{subtotal,vatAmount,totalAmount}.
Use tools when needed. If you have images, analyze them. If you have text, analyze it.
Always end by calling normalize_and_validate with the full JSON string.`

// Instruction opens every run and names the two extraction paths.
const Instruction = "You will be given a PDF or image via tools. Decide the best path: probe_pdf -> (extract_pdf_text->text_analyze) OR (rasterize_pdf_pages->vision_analyze_images). Finish with normalize_and_validate."

const (
	PDFHint   = "The upload is a PDF (%d bytes)."
	ImageHint = "The upload is an image and its page image is already prepared: call vision_analyze_images directly."
)

const analyzeTextPrompt = "Extract the JSON described by the schema below from the following text (Croatian formats); return ONLY JSON."

const analyzeVisionPrompt = "Extract the JSON described by the schema below from these images; return ONLY JSON."

func schemaInstructions() string {
	data, _ := json.Marshal(schema.Document())
	return "Schema:\n" + string(data)
}

func (r *Registry) textAnalyze(ctx context.Context, state *document.State, call Call) (Output, document.Delta, error) {
	c, ok := call.(TextAnalyzeCall)

	if !ok {
		return nil, document.Delta{}, fmt.Errorf("%w: unexpected call %T", ErrUnknown, call)
	}

	if strings.TrimSpace(c.Text) == "" {
		return nil, document.Delta{}, fmt.Errorf("%w: text not prepared", ErrPrecondition)
	}

	text := truncate(c.Text, r.textLimit)

	messages := []provider.Message{
		provider.SystemMessage(SystemPrompt),
		provider.UserMessage(analyzeTextPrompt + "\n" + schemaInstructions() + "\n\nText:\n" + text),
	}

	return r.analyze(ctx, r.text, messages)
}

func (r *Registry) visionAnalyze(ctx context.Context, state *document.State, call Call) (Output, document.Delta, error) {
	c, ok := call.(VisionAnalyzeCall)

	if !ok {
		return nil, document.Delta{}, fmt.Errorf("%w: unexpected call %T", ErrUnknown, call)
	}

	if len(c.Images) == 0 {
		return nil, document.Delta{}, fmt.Errorf("%w: images not prepared", ErrPrecondition)
	}

	content := []provider.Content{
		provider.TextContent(analyzeVisionPrompt + "\n" + schemaInstructions()),
	}

	for i, url := range c.Images {
		data, err := dataurl.DecodeString(url)

		if err != nil {
			return nil, document.Delta{}, fmt.Errorf("%w: image %d is not a data url: %w", ErrPrecondition, i+1, err)
		}

		content = append(content, provider.FileContent(&provider.File{
			Name: fmt.Sprintf("page-%d", i+1),

			Content:     data.Data,
			ContentType: data.ContentType(),
		}))
	}

	messages := []provider.Message{
		provider.SystemMessage(SystemPrompt),
		{
			Role:    provider.MessageRoleUser,
			Content: content,
		},
	}

	return r.analyze(ctx, r.vision, messages)
}

// analyze returns the model output verbatim; parsing happens in normalize_and_validate.
func (r *Registry) analyze(ctx context.Context, completer provider.Completer, messages []provider.Message) (Output, document.Delta, error) {
	temperature := r.temperature

	options := &provider.CompleteOptions{
		Temperature: &temperature,
		Format:      provider.CompletionFormatJSON,
	}

	if r.structured {
		options.Schema = &provider.Schema{
			Name:        "document",
			Description: "Invoice or quote record",

			Schema: schema.Document(),
		}
	}

	if r.maxTokens > 0 {
		tokens := r.maxTokens
		options.MaxTokens = &tokens
	}

	completion, err := completer.Complete(ctx, messages, options)

	if err != nil {
		return nil, document.Delta{}, err
	}

	var content string

	if completion.Message != nil {
		content = completion.Message.Text()
	}

	return Output{"raw_json": content}, document.Delta{}, nil
}

func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}

	runes := []rune(s)

	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}
