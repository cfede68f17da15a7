package capability

import (
	"encoding/json"
	"strconv"

	"github.com/adrianliechti/docagent/pkg/tool"

	"github.com/google/jsonschema-go/jsonschema"
)

func number(v float64) *float64 {
	return &v
}

func bounded(description string, lo, hi, def int) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "integer",
		Description: description,

		Minimum: number(float64(lo)),
		Maximum: number(float64(hi)),

		Default: json.RawMessage(strconv.Itoa(def)),
	}
}

// closed rejects properties that are not declared.
func closed(properties map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	if properties == nil {
		properties = map[string]*jsonschema.Schema{}
	}

	return &jsonschema.Schema{
		Type: "object",

		Properties: properties,
		Required:   required,

		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}
}

var definitions = []tool.Tool{
	tool.New(string(Probe),
		"Inspect PDF to get page count and check if it contains extractable text.",
		closed(nil),
	),

	tool.New(string(ExtractText),
		"Extract text from all pages of the PDF.",
		closed(nil),
	),

	tool.New(string(Rasterize),
		"Render first N PDF pages to JPEG data URLs.",
		closed(map[string]*jsonschema.Schema{
			"max_pages": bounded("Number of pages to render", MinPages, MaxPages, DefaultPages),
			"dpi":       bounded("Render resolution", MinDPI, MaxDPI, DefaultDPI),
			"width":     bounded("Target image width in pixels", MinWidth, MaxWidth, DefaultWidth),
		}),
	),

	tool.New(string(VisionAnalyze),
		"Call VLM on provided images and return structured JSON for invoice/quote.",
		closed(map[string]*jsonschema.Schema{
			"images": {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
		}, "images"),
	),

	tool.New(string(TextAnalyze),
		"Call TEXT LLM on plain text and return structured JSON for invoice/quote.",
		closed(map[string]*jsonschema.Schema{
			"text": {Type: "string"},
		}, "text"),
	),

	tool.New(string(NormalizeAndValidate),
		"Normalize HR numbers/dates and validate final JSON against schema.",
		closed(map[string]*jsonschema.Schema{
			"raw_json": {Type: "string"},
		}, "raw_json"),
	),
}
