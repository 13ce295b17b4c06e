package canvas

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// PaintSegment paints one motion sample of a stroke from prev to cur.
// A nil prev marks the first sample of a stroke and paints nothing.
func PaintSegment(dc Context, style StrokeStyle, prev *Point, cur Point, rng *rand.Rand) error {
	if prev == nil {
		return nil
	}
	style.apply(dc)

	switch style.Brush {
	case BrushPen, BrushPencil, BrushEraser:
		return strokeLine(dc, *prev, cur)

	case BrushBrush, BrushMarker:
		if err := strokeLine(dc, *prev, cur); err != nil {
			return err
		}
		dc.DrawCircle(cur.X, cur.Y, style.Size/3)
		return dc.Fill()

	case BrushCalligraphy:
		o := nibOffset(*prev, cur, style.Size)
		dc.MoveTo(prev.X+o.X, prev.Y+o.Y)
		dc.LineTo(cur.X+o.X, cur.Y+o.Y)
		dc.LineTo(cur.X-o.X, cur.Y-o.Y)
		dc.LineTo(prev.X-o.X, prev.Y-o.Y)
		dc.ClosePath()
		return dc.Fill()

	case BrushSpray:
		return sprayAt(dc, style, cur, rng)
	}
	return fmt.Errorf("paint segment: %w: %v", ErrUnknownBrush, style.Brush)
}

func strokeLine(dc Context, from, to Point) error {
	dc.DrawLine(from.X, from.Y, to.X, to.Y)
	return dc.Stroke()
}

// sprayAt scatters size×2 dots of radius size/6 within distance size of at.
func sprayAt(dc Context, style StrokeStyle, at Point, rng *rand.Rand) error {
	dots := int(style.Size * 2)
	radius := style.Size / 6
	for range dots {
		angle := rng.Float64() * 2 * math.Pi
		dist := rng.Float64() * style.Size
		dc.DrawCircle(at.X+math.Cos(angle)*dist, at.Y+math.Sin(angle)*dist, radius)
	}
	if dots == 0 {
		return nil
	}
	return dc.Fill()
}
