package canvas

import (
	"image/color"

	"github.com/gogpu/gg"
)

// Context is the part of *gg.Context the renderers paint through.
type Context interface {
	SetRGBA(r, g, b, a float64)
	SetLineWidth(width float64)
	SetLineCap(lineCap gg.LineCap)
	SetLineJoin(join gg.LineJoin)
	MoveTo(x, y float64)
	LineTo(x, y float64)
	ClosePath()
	DrawLine(x1, y1, x2, y2 float64)
	DrawRectangle(x, y, w, h float64)
	DrawCircle(x, y, r float64)
	Stroke() error
	Fill() error
}

var _ Context = (*gg.Context)(nil)

// StrokeStyle is the complete style of one stroke. It is computed when the
// stroke starts and passed to every PaintSegment call of that stroke.
type StrokeStyle struct {
	Brush   Brush
	Ink     color.NRGBA
	Size    float64
	Opacity float64
	Cap     gg.LineCap
	Join    gg.LineJoin
}

// NewStrokeStyle combines a brush preset with the user's color, size and opacity.
// The eraser paints with background instead of ink.
func NewStrokeStyle(b Brush, ink color.NRGBA, size, opacity float64, background color.NRGBA) StrokeStyle {
	p := Preset(b)
	if b == BrushEraser {
		ink = background
	}
	return StrokeStyle{
		Brush:   b,
		Ink:     ink,
		Size:    size,
		Opacity: opacity * p.OpacityMultiplier,
		Cap:     p.LineCap,
		Join:    p.LineJoin,
	}
}

func (s StrokeStyle) apply(dc Context) {
	setInk(dc, s.Ink, s.Opacity)
	dc.SetLineWidth(s.Size)
	dc.SetLineCap(s.Cap)
	dc.SetLineJoin(s.Join)
}

func setInk(dc Context, c color.NRGBA, opacity float64) {
	dc.SetRGBA(
		float64(c.R)/255,
		float64(c.G)/255,
		float64(c.B)/255,
		float64(c.A)/255*opacity,
	)
}
