package canvas

import (
	"math"
	"time"
)

const (
	DefaultWidth  = 800
	DefaultHeight = 600

	MinWidth  = 300
	MinHeight = 200

	// MaxWidth and MaxHeight bound the buffer at 256 MiB of RGBA.
	MaxWidth  = 8192
	MaxHeight = 8192

	DefaultSprayInterval = 50 * time.Millisecond

	// arrowHeadAngle is the angle between the shaft and each head segment.
	arrowHeadAngle = math.Pi / 6
	// arrowHeadScale multiplies the stroke size to get the head length.
	arrowHeadScale = 3
)

// Point is a position in buffer pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Mid returns the midpoint of p and q.
func (p Point) Mid(q Point) Point {
	return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// CircleFromBox derives the circle for a drag from start to end: centered on the
// box midpoint with a radius of half the box diagonal.
func CircleFromBox(start, end Point) (center Point, radius float64) {
	return start.Mid(end), start.Dist(end) / 2
}

// ArrowHead returns the two endpoints of the head segments drawn at end.
func ArrowHead(start, end Point, size float64) (left, right Point) {
	angle := math.Atan2(end.Y-start.Y, end.X-start.X)
	length := size * arrowHeadScale
	left = Point{
		X: end.X - length*math.Cos(angle-arrowHeadAngle),
		Y: end.Y - length*math.Sin(angle-arrowHeadAngle),
	}
	right = Point{
		X: end.X - length*math.Cos(angle+arrowHeadAngle),
		Y: end.Y - length*math.Sin(angle+arrowHeadAngle),
	}
	return left, right
}

// nibOffset is the vector perpendicular to the motion prev→cur with length size/2.
// A zero-length motion yields a vertical nib.
func nibOffset(prev, cur Point, size float64) Point {
	angle := math.Atan2(cur.Y-prev.Y, cur.X-prev.X)
	half := size / 2
	return Point{X: -math.Sin(angle) * half, Y: math.Cos(angle) * half}
}

// FitWithin scales w×h down to fit maxW×maxH keeping the aspect ratio.
// Images that already fit are returned unchanged.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return maxW, maxH
	}
	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	if scale >= 1 {
		return w, h
	}
	fw := int(math.Round(float64(w) * scale))
	fh := int(math.Round(float64(h) * scale))
	return max(fw, 1), max(fh, 1)
}

// ClampSize bounds a requested canvas size to MinWidth×MinHeight ..
// MaxWidth×MaxHeight.
func ClampSize(w, h int) (int, int) {
	return min(max(w, MinWidth), MaxWidth), min(max(h, MinHeight), MaxHeight)
}
