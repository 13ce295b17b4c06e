package canvas

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gg"
)

var (
	ErrUnknownBrush = errors.New("unknown brush")
	ErrUnknownShape = errors.New("unknown shape")
)

// Mode selects what a pointer gesture does.
type Mode int

const (
	ModeDraw Mode = iota
	ModeShape
)

func (m Mode) String() string {
	if m == ModeShape {
		return "shape"
	}
	return "draw"
}

// Brush identifies one of the fixed brush physics.
type Brush int

const (
	BrushPen Brush = iota
	BrushBrush
	BrushMarker
	BrushPencil
	BrushCalligraphy
	BrushSpray
	BrushEraser
)

var brushNames = [...]string{
	BrushPen:         "pen",
	BrushBrush:       "brush",
	BrushMarker:      "marker",
	BrushPencil:      "pencil",
	BrushCalligraphy: "calligraphy",
	BrushSpray:       "spray",
	BrushEraser:      "eraser",
}

func (b Brush) String() string {
	if b < 0 || int(b) >= len(brushNames) {
		return fmt.Sprintf("brush(%d)", int(b))
	}
	return brushNames[b]
}

// Brushes lists every brush in toolbar order.
func Brushes() []Brush {
	return []Brush{BrushPen, BrushBrush, BrushMarker, BrushPencil, BrushCalligraphy, BrushSpray, BrushEraser}
}

// ParseBrush maps a toolbar name to its Brush.
func ParseBrush(name string) (Brush, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range brushNames {
		if s == n {
			return Brush(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBrush, name)
}

// BrushSpec is the immutable rendering preset of a brush.
type BrushSpec struct {
	Brush             Brush
	BaseSize          float64
	OpacityMultiplier float64
	LineCap           gg.LineCap
	LineJoin          gg.LineJoin
}

var presets = [...]BrushSpec{
	BrushPen:         {BrushPen, 2, 1.0, gg.LineCapRound, gg.LineJoinRound},
	BrushBrush:       {BrushBrush, 8, 0.8, gg.LineCapRound, gg.LineJoinRound},
	BrushMarker:      {BrushMarker, 12, 0.5, gg.LineCapSquare, gg.LineJoinMiter},
	BrushPencil:      {BrushPencil, 1, 0.9, gg.LineCapButt, gg.LineJoinMiter},
	BrushCalligraphy: {BrushCalligraphy, 6, 1.0, gg.LineCapButt, gg.LineJoinBevel},
	BrushSpray:       {BrushSpray, 10, 0.7, gg.LineCapRound, gg.LineJoinRound},
	BrushEraser:      {BrushEraser, 20, 1.0, gg.LineCapRound, gg.LineJoinRound},
}

// Preset returns the spec for b. It panics on a value outside the enum,
// which only a programming error can produce.
func Preset(b Brush) BrushSpec {
	if b < 0 || int(b) >= len(presets) {
		panic(fmt.Sprintf("canvas: no preset for %v", b))
	}
	return presets[b]
}

// ShapeKind identifies a vector overlay primitive.
type ShapeKind int

const (
	ShapeRectangle ShapeKind = iota
	ShapeCircle
	ShapeLine
	ShapeArrow
)

var shapeNames = [...]string{
	ShapeRectangle: "rectangle",
	ShapeCircle:    "circle",
	ShapeLine:      "line",
	ShapeArrow:     "arrow",
}

func (k ShapeKind) String() string {
	if k < 0 || int(k) >= len(shapeNames) {
		return fmt.Sprintf("shape(%d)", int(k))
	}
	return shapeNames[k]
}

// ParseShape maps a toolbar name to its ShapeKind.
func ParseShape(name string) (ShapeKind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, s := range shapeNames {
		if s == n {
			return ShapeKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownShape, name)
}
