// Package qrcode draws PIX payment codes as scannable QR symbols.
package qrcode

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	goqr "github.com/skip2/go-qrcode"
	"golang.org/x/image/draw"

	"github.com/vakinha/checkout/internal/domain"
)

// PNG sizes accepted by the HTTP endpoint.
const (
	MinSize     = 64
	MaxSize     = 1024
	DefaultSize = 256
)

var errNoSurface = errors.New("no drawable surface")

// Options tunes the encoding.
type Options struct {
	Level         goqr.RecoveryLevel
	DisableBorder bool
}

// Renderer encodes codes with a fixed set of options.
type Renderer struct {
	opts Options
}

// NewRenderer returns a renderer. The zero Options select Medium recovery
// with the standard quiet zone.
func NewRenderer(opts Options) *Renderer {
	if opts == (Options{}) {
		opts.Level = goqr.Medium
	}
	return &Renderer{opts: opts}
}

func (r *Renderer) encode(code string) (*goqr.QRCode, error) {
	q, err := goqr.New(code, r.opts.Level)
	if err != nil {
		return nil, &domain.RenderingError{Err: err}
	}
	q.DisableBorder = r.opts.DisableBorder
	return q, nil
}

// Render draws code scaled to fill surface.
func (r *Renderer) Render(code string, surface draw.Image) error {
	if surface == nil || surface.Bounds().Empty() {
		return &domain.RenderingError{Err: errNoSurface}
	}
	q, err := r.encode(code)
	if err != nil {
		return err
	}
	src := q.Image(-1)
	draw.NearestNeighbor.Scale(surface, surface.Bounds(), src, src.Bounds(), draw.Src, nil)
	return nil
}

// PNG encodes code as a size x size PNG image. size is clamped to
// [MinSize, MaxSize].
func (r *Renderer) PNG(code string, size int) ([]byte, error) {
	if size < MinSize {
		size = MinSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	q, err := r.encode(code)
	if err != nil {
		return nil, err
	}
	b, err := q.PNG(size)
	if err != nil {
		return nil, &domain.RenderingError{Err: fmt.Errorf("png: %w", err)}
	}
	return b, nil
}

// Modules returns the side of the encoded symbol in modules, quiet zone
// included. A surface of that size draws the symbol one pixel per module.
func (r *Renderer) Modules(code string) (int, error) {
	q, err := r.encode(code)
	if err != nil {
		return 0, err
	}
	return q.Image(-1).Bounds().Dx(), nil
}

// Terminal renders code with Unicode half blocks, one module per column
// and two per row.
func (r *Renderer) Terminal(code string) (string, error) {
	q, err := r.encode(code)
	if err != nil {
		return "", err
	}
	return HalfBlocks(q.Image(-1)), nil
}

// HalfBlocks renders img as text, two pixel rows per line. Dark pixels are
// drawn as ink.
func HalfBlocks(img image.Image) string {
	b := img.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x++ {
			top := dark(img.At(x, y))
			bottom := y+1 < b.Max.Y && dark(img.At(x, y+1))
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func dark(c color.Color) bool {
	return color.GrayModel.Convert(c).(color.Gray).Y < 128
}
