package canvas

import (
	"fmt"
	"image/color"

	"github.com/gogpu/gg"
)

// ShapeRecord is a vector primitive spanned by a drag from Start to End.
type ShapeRecord struct {
	Kind  ShapeKind   `json:"kind"`
	Start Point       `json:"start"`
	End   Point       `json:"end"`
	Color color.NRGBA `json:"color"`
	Size  float64     `json:"size"`
}

// PaintShape strokes rec onto dc. It never touches history.
func PaintShape(dc Context, rec ShapeRecord) error {
	setInk(dc, rec.Color, 1)
	dc.SetLineWidth(rec.Size)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinMiter)

	switch rec.Kind {
	case ShapeRectangle:
		dc.DrawRectangle(rec.Start.X, rec.Start.Y, rec.End.X-rec.Start.X, rec.End.Y-rec.Start.Y)
	case ShapeCircle:
		center, r := CircleFromBox(rec.Start, rec.End)
		dc.DrawCircle(center.X, center.Y, r)
	case ShapeLine:
		dc.DrawLine(rec.Start.X, rec.Start.Y, rec.End.X, rec.End.Y)
	case ShapeArrow:
		left, right := ArrowHead(rec.Start, rec.End, rec.Size)
		dc.DrawLine(rec.Start.X, rec.Start.Y, rec.End.X, rec.End.Y)
		dc.DrawLine(rec.End.X, rec.End.Y, left.X, left.Y)
		dc.DrawLine(rec.End.X, rec.End.Y, right.X, right.Y)
	default:
		return fmt.Errorf("paint shape: %w: %v", ErrUnknownShape, rec.Kind)
	}
	return dc.Stroke()
}
