package capability

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Name string

const (
	Probe                Name = "probe_pdf"
	ExtractText          Name = "extract_pdf_text"
	Rasterize            Name = "rasterize_pdf_pages"
	TextAnalyze          Name = "text_analyze"
	VisionAnalyze        Name = "vision_analyze_images"
	NormalizeAndValidate Name = "normalize_and_validate"
)

var Names = []Name{
	Probe,
	ExtractText,
	Rasterize,
	TextAnalyze,
	VisionAnalyze,
	NormalizeAndValidate,
}

var (
	ErrUnknown = errors.New("unknown tool")

	// ErrPrecondition is returned when a capability needs state that has not been prepared yet.
	ErrPrecondition = errors.New("capability precondition violated")
)

// Call is one decoded capability request. The set of implementations is closed.
type Call interface {
	Name() Name
	isCall()
}

type ProbeCall struct{}

type ExtractTextCall struct{}

type RasterizeCall struct {
	MaxPages int
	DPI      int
	Width    int
}

type TextAnalyzeCall struct {
	Text string
}

type VisionAnalyzeCall struct {
	Images []string
}

type NormalizeCall struct {
	RawJSON string
}

func (ProbeCall) Name() Name         { return Probe }
func (ExtractTextCall) Name() Name   { return ExtractText }
func (RasterizeCall) Name() Name     { return Rasterize }
func (TextAnalyzeCall) Name() Name   { return TextAnalyze }
func (VisionAnalyzeCall) Name() Name { return VisionAnalyze }
func (NormalizeCall) Name() Name     { return NormalizeAndValidate }

func (ProbeCall) isCall()         {}
func (ExtractTextCall) isCall()   {}
func (RasterizeCall) isCall()     {}
func (TextAnalyzeCall) isCall()   {}
func (VisionAnalyzeCall) isCall() {}
func (NormalizeCall) isCall()     {}

const (
	MinPages, MaxPages, DefaultPages = 1, 10, 3
	MinDPI, MaxDPI, DefaultDPI       = 72, 300, 144
	MinWidth, MaxWidth, DefaultWidth = 512, 2048, 1024
)

// Decode turns a tool call of the decision model into a Call.
// Arguments that are not valid JSON are treated as empty; unknown names yield ErrUnknown.
func Decode(name, arguments string) (Call, error) {
	var args map[string]any

	if s := strings.TrimSpace(arguments); s != "" {
		if err := json.Unmarshal([]byte(s), &args); err != nil {
			args = nil
		}
	}

	switch Name(name) {
	case Probe:
		return ProbeCall{}, nil

	case ExtractText:
		return ExtractTextCall{}, nil

	case Rasterize:
		return RasterizeCall{
			MaxPages: intArg(args, "max_pages", DefaultPages, MinPages, MaxPages),
			DPI:      intArg(args, "dpi", DefaultDPI, MinDPI, MaxDPI),
			Width:    intArg(args, "width", DefaultWidth, MinWidth, MaxWidth),
		}, nil

	case TextAnalyze:
		text, _ := args["text"].(string)
		return TextAnalyzeCall{Text: text}, nil

	case VisionAnalyze:
		var images []string

		if values, ok := args["images"].([]any); ok {
			for _, v := range values {
				if s, ok := v.(string); ok {
					images = append(images, s)
				}
			}
		}

		return VisionAnalyzeCall{Images: images}, nil

	case NormalizeAndValidate:
		return NormalizeCall{RawJSON: rawJSONArg(args["raw_json"])}, nil
	}

	return nil, fmt.Errorf("%w %s", ErrUnknown, name)
}

// intArg reads an integer argument and clamps it into [lo, hi].
// Clamping happens before the conversion so huge values cannot overflow.
func intArg(args map[string]any, key string, def, lo, hi int) int {
	var v float64

	switch arg := args[key].(type) {
	case float64:
		v = arg

	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)

		if err != nil {
			return clamp(def, lo, hi)
		}

		v = n

	default:
		return clamp(def, lo, hi)
	}

	if math.IsNaN(v) {
		return clamp(def, lo, hi)
	}

	v = math.Max(float64(lo), math.Min(float64(hi), v))

	return clamp(int(math.Round(v)), lo, hi)
}

func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}

	if val > hi {
		return hi
	}

	return val
}

// models sometimes pass the record as an object instead of a string
func rawJSONArg(v any) string {
	switch v := v.(type) {
	case nil:
		return ""

	case string:
		return v

	default:
		data, err := json.Marshal(v)

		if err != nil {
			return ""
		}

		return string(data)
	}
}
