package poppler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/adrianliechti/docagent/pkg/rasterizer"

	"github.com/disintegration/imaging"
	"github.com/vincent-petithory/dataurl"
)

var _ rasterizer.Provider = &Rasterizer{}

const (
	DefaultMaxPages = 3
	DefaultDPI      = 144
	DefaultWidth    = 1024
	DefaultQuality  = 80
)

// Rasterizer renders PDF pages with pdftoppm and re-encodes them as JPEG data URLs.
type Rasterizer struct {
	path    string
	quality int

	runner Runner
}

type Option func(*Rasterizer)

func New(options ...Option) (*Rasterizer, error) {
	r := &Rasterizer{
		path:    "pdftoppm",
		quality: DefaultQuality,

		runner: execRunner{},
	}

	for _, option := range options {
		option(r)
	}

	if r.quality < 1 || r.quality > 100 {
		return nil, errors.New("invalid jpeg quality")
	}

	return r, nil
}

func WithPath(path string) Option {
	return func(r *Rasterizer) {
		r.path = path
	}
}

func WithQuality(quality int) Option {
	return func(r *Rasterizer) {
		r.quality = quality
	}
}

func WithRunner(runner Runner) Option {
	return func(r *Rasterizer) {
		r.runner = runner
	}
}

func (r *Rasterizer) Rasterize(ctx context.Context, input rasterizer.File, options *rasterizer.RasterizeOptions) ([]rasterizer.Image, error) {
	if options == nil {
		options = new(rasterizer.RasterizeOptions)
	}

	maxPages := options.MaxPages
	dpi := options.DPI
	width := options.Width

	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	if dpi <= 0 {
		dpi = DefaultDPI
	}

	if width <= 0 {
		width = DefaultWidth
	}

	if len(input.Content) == 0 {
		return nil, rasterizer.ErrUnsupported
	}

	tmpDir, err := os.MkdirTemp("", "docagent-pp-*")

	if err != nil {
		return nil, err
	}

	defer os.RemoveAll(tmpDir)

	path := filepath.Join(tmpDir, "input.pdf")

	if err := os.WriteFile(path, input.Content, 0600); err != nil {
		return nil, err
	}

	prefix := filepath.Join(tmpDir, "page")

	// pdftoppm -r <dpi> -f 1 -l <n> -png <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.path,
		"-r", strconv.Itoa(dpi),
		"-f", "1",
		"-l", strconv.Itoa(maxPages),
		"-png",
		path, prefix,
	)

	if err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 200))
	}

	// prefix-1.png or prefix-01.png depending on the page count
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)

	if len(matches) > maxPages {
		matches = matches[:maxPages]
	}

	if len(matches) == 0 {
		return nil, errors.New("pdftoppm produced no images")
	}

	var result []rasterizer.Image

	for i, m := range matches {
		image, err := r.encodePage(m, width)

		if err != nil {
			return nil, err
		}

		image.Page = i + 1
		result = append(result, *image)
	}

	return result, nil
}

func (r *Rasterizer) encodePage(path string, width int) (*rasterizer.Image, error) {
	img, err := imaging.Open(path)

	if err != nil {
		return nil, err
	}

	if img.Bounds().Dx() != width {
		img = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer

	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(r.quality)); err != nil {
		return nil, err
	}

	bounds := img.Bounds()

	return &rasterizer.Image{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),

		URL: dataurl.New(buf.Bytes(), "image/jpeg").String(),
	}, nil
}
