package document

import (
	"bytes"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/vincent-petithory/dataurl"
)

const DefaultMaxPages = 3

// State is the per request processing context of one uploaded document.
// It is owned by a single orchestration run and only changes through Apply.
type State struct {
	Name        string
	ContentType string

	content []byte

	IsPDF bool

	PageCount *int
	HasText   *bool

	Text   *string
	Images []string

	Result *Record

	// MaxPages bounds how many pages may be rasterized.
	MaxPages int
}

type Option func(*State)

func WithName(name string) Option {
	return func(s *State) {
		s.Name = name
	}
}

func WithContentType(contentType string) Option {
	return func(s *State) {
		s.ContentType = contentType
	}
}

func WithMaxPages(pages int) Option {
	return func(s *State) {
		s.MaxPages = pages
	}
}

// New creates the state for an upload. Uploads that are not PDFs are treated
// as images and start out with the upload itself as the only rendered page.
func New(content []byte, options ...Option) *State {
	s := &State{
		content: content,

		MaxPages: DefaultMaxPages,
	}

	for _, option := range options {
		option(s)
	}

	if s.MaxPages < 1 {
		s.MaxPages = DefaultMaxPages
	}

	if s.ContentType == "" || s.ContentType == "application/octet-stream" {
		s.ContentType = mimetype.Detect(content).String()
	}

	s.IsPDF = detectPDF(s.Name, s.ContentType, content)

	if !s.IsPDF {
		s.Images = []string{encodeImage(content, s.ContentType)}
	}

	return s
}

// Content returns a copy of the raw upload.
func (s *State) Content() []byte {
	return append([]byte(nil), s.content...)
}

func (s *State) Size() int {
	return len(s.content)
}

// Apply merges a delta produced by a capability. A result is only ever set once.
func (s *State) Apply(d Delta) {
	if d.PageCount != nil {
		s.PageCount = d.PageCount
	}

	if d.HasText != nil {
		s.HasText = d.HasText
	}

	if d.Text != nil {
		s.Text = d.Text
	}

	if d.Images != nil {
		s.Images = d.Images
	}

	if d.Result != nil && s.Result == nil {
		s.Result = d.Result
	}
}

// Delta describes the state changes of one capability invocation.
// Nil fields leave the state untouched.
type Delta struct {
	PageCount *int
	HasText   *bool

	Text   *string
	Images []string

	Result *Record
}

func (d Delta) Empty() bool {
	return d.PageCount == nil && d.HasText == nil && d.Text == nil && d.Images == nil && d.Result == nil
}

func detectPDF(name, contentType string, content []byte) bool {
	if strings.EqualFold(path.Ext(name), ".pdf") {
		return true
	}

	mime := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))

	if mime == "application/pdf" {
		return true
	}

	return mimetype.Detect(content).Is("application/pdf")
}

// encodeImage passes formats vision models accept through as is and
// converts everything else (tiff, bmp) to jpeg.
func encodeImage(content []byte, contentType string) string {
	mime := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))

	switch mime {
	case "image/png", "image/jpeg", "image/webp", "image/gif":
		return dataurl.New(content, mime).String()
	}

	img, err := imaging.Decode(bytes.NewReader(content), imaging.AutoOrientation(true))

	if err != nil {
		return dataurl.New(content, "image/jpeg").String()
	}

	var buf bytes.Buffer

	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return dataurl.New(content, "image/jpeg").String()
	}

	return dataurl.New(buf.Bytes(), "image/jpeg").String()
}
