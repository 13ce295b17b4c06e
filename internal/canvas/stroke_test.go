package canvas_test

import (
	"image/color"
	"math"
	"math/rand/v2"
	"testing"

	"stylusnotes/internal/canvas"

	"github.com/gogpu/gg"
)

// recorder is a canvas.Context that records calls instead of painting.
type recorder struct {
	rgba     [4]float64
	width    float64
	lineCap  gg.LineCap
	lineJoin gg.LineJoin
	lines    [][4]float64
	circles  [][3]float64
	rects    [][4]float64
	path     []canvas.Point
	closed   bool
	strokes  int
	fills    int
}

func (r *recorder) SetRGBA(cr, cg, cb, ca float64) { r.rgba = [4]float64{cr, cg, cb, ca} }
func (r *recorder) SetLineWidth(w float64)         { r.width = w }
func (r *recorder) SetLineCap(c gg.LineCap)        { r.lineCap = c }
func (r *recorder) SetLineJoin(j gg.LineJoin)      { r.lineJoin = j }
func (r *recorder) MoveTo(x, y float64)            { r.path = append(r.path, canvas.Point{X: x, Y: y}) }
func (r *recorder) LineTo(x, y float64)            { r.path = append(r.path, canvas.Point{X: x, Y: y}) }
func (r *recorder) ClosePath()                     { r.closed = true }
func (r *recorder) DrawLine(x1, y1, x2, y2 float64) {
	r.lines = append(r.lines, [4]float64{x1, y1, x2, y2})
}
func (r *recorder) DrawRectangle(x, y, w, h float64) {
	r.rects = append(r.rects, [4]float64{x, y, w, h})
}
func (r *recorder) DrawCircle(x, y, rad float64) {
	r.circles = append(r.circles, [3]float64{x, y, rad})
}
func (r *recorder) Stroke() error { r.strokes++; return nil }
func (r *recorder) Fill() error   { r.fills++; return nil }

var red = color.NRGBA{R: 0xff, A: 0xff}

func seeded() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

// ─────────────────────────────────────────────────────────────
// PaintSegment
// ─────────────────────────────────────────────────────────────

func TestPaintSegment_FirstSampleIsNoop(t *testing.T) {
	rec := &recorder{}
	style := canvas.NewStrokeStyle(canvas.BrushPen, red, 2, 1, canvas.DefaultBackground)
	if err := canvas.PaintSegment(rec, style, nil, canvas.Point{X: 5, Y: 5}, seeded()); err != nil {
		t.Fatal(err)
	}
	if rec.strokes+rec.fills != 0 || len(rec.lines) != 0 {
		t.Errorf("expected no painting, got %+v", rec)
	}
}

func TestPaintSegment_PenDrawsOneLine(t *testing.T) {
	rec := &recorder{}
	style := canvas.NewStrokeStyle(canvas.BrushPen, red, 3, 0.5, canvas.DefaultBackground)
	prev := canvas.Point{X: 1, Y: 2}
	if err := canvas.PaintSegment(rec, style, &prev, canvas.Point{X: 10, Y: 20}, seeded()); err != nil {
		t.Fatal(err)
	}
	if len(rec.lines) != 1 || rec.lines[0] != [4]float64{1, 2, 10, 20} {
		t.Errorf("lines = %v, want one segment 1,2→10,20", rec.lines)
	}
	if rec.strokes != 1 || rec.fills != 0 {
		t.Errorf("strokes=%d fills=%d, want 1/0", rec.strokes, rec.fills)
	}
	if rec.width != 3 || rec.lineCap != gg.LineCapRound {
		t.Errorf("width=%v cap=%v", rec.width, rec.lineCap)
	}
	if rec.rgba != [4]float64{1, 0, 0, 0.5} {
		t.Errorf("ink = %v, want red at 0.5", rec.rgba)
	}
}

func TestPaintSegment_EraserPaintsBackground(t *testing.T) {
	rec := &recorder{}
	bg := color.NRGBA{R: 0x1f, G: 0x29, B: 0x37, A: 0xff}
	style := canvas.NewStrokeStyle(canvas.BrushEraser, red, 20, 1, bg)
	prev := canvas.Point{}
	if err := canvas.PaintSegment(rec, style, &prev, canvas.Point{X: 5}, seeded()); err != nil {
		t.Fatal(err)
	}
	want := [4]float64{float64(bg.R) / 255, float64(bg.G) / 255, float64(bg.B) / 255, 1}
	if rec.rgba != want {
		t.Errorf("eraser ink = %v, want background %v", rec.rgba, want)
	}
	if len(rec.lines) != 1 {
		t.Errorf("eraser lines = %d, want 1", len(rec.lines))
	}
}

func TestPaintSegment_BrushAndMarkerStampDab(t *testing.T) {
	for _, b := range []canvas.Brush{canvas.BrushBrush, canvas.BrushMarker} {
		rec := &recorder{}
		style := canvas.NewStrokeStyle(b, red, 9, 1, canvas.DefaultBackground)
		prev := canvas.Point{}
		cur := canvas.Point{X: 30, Y: 40}
		if err := canvas.PaintSegment(rec, style, &prev, cur, seeded()); err != nil {
			t.Fatal(err)
		}
		if len(rec.lines) != 1 || rec.strokes != 1 {
			t.Errorf("%v: want one stroked line, got lines=%d strokes=%d", b, len(rec.lines), rec.strokes)
		}
		if len(rec.circles) != 1 || rec.circles[0] != [3]float64{30, 40, 3} {
			t.Errorf("%v: dab = %v, want circle at (30,40) r=3", b, rec.circles)
		}
		if rec.fills != 1 {
			t.Errorf("%v: fills = %d, want 1", b, rec.fills)
		}
	}
}

func TestPaintSegment_CalligraphyFillsQuad(t *testing.T) {
	rec := &recorder{}
	style := canvas.NewStrokeStyle(canvas.BrushCalligraphy, red, 6, 1, canvas.DefaultBackground)
	prev := canvas.Point{X: 0, Y: 0}
	cur := canvas.Point{X: 10, Y: 0}
	if err := canvas.PaintSegment(rec, style, &prev, cur, seeded()); err != nil {
		t.Fatal(err)
	}
	// Horizontal motion: the nib offset is vertical with length size/2.
	want := []canvas.Point{{X: 0, Y: 3}, {X: 10, Y: 3}, {X: 10, Y: -3}, {X: 0, Y: -3}}
	if len(rec.path) != len(want) {
		t.Fatalf("path = %v, want 4 points", rec.path)
	}
	for i, p := range rec.path {
		if !near(p.X, want[i].X) || !near(p.Y, want[i].Y) {
			t.Errorf("path[%d] = %+v, want %+v", i, p, want[i])
		}
	}
	if !rec.closed || rec.fills != 1 || rec.strokes != 0 {
		t.Errorf("want closed filled polygon, got closed=%v fills=%d strokes=%d", rec.closed, rec.fills, rec.strokes)
	}
}

func TestPaintSegment_SprayDotBound(t *testing.T) {
	rng := seeded()
	for _, size := range []float64{1, 4, 10, 25} {
		rec := &recorder{}
		style := canvas.NewStrokeStyle(canvas.BrushSpray, red, size, 1, canvas.DefaultBackground)
		at := canvas.Point{X: 100, Y: 80}
		if err := canvas.PaintSegment(rec, style, &at, at, rng); err != nil {
			t.Fatal(err)
		}
		if len(rec.circles) != int(size*2) {
			t.Errorf("size %v: dots = %d, want %d", size, len(rec.circles), int(size*2))
		}
		for _, c := range rec.circles {
			if d := math.Hypot(c[0]-at.X, c[1]-at.Y); d > size+1e-9 {
				t.Errorf("size %v: dot at distance %v exceeds %v", size, d, size)
			}
			if !near(c[2], size/6) {
				t.Errorf("size %v: dot radius %v, want %v", size, c[2], size/6)
			}
		}
	}
}

func TestNewStrokeStyle_AppliesOpacityMultiplier(t *testing.T) {
	style := canvas.NewStrokeStyle(canvas.BrushMarker, red, 12, 0.8, canvas.DefaultBackground)
	want := 0.8 * canvas.Preset(canvas.BrushMarker).OpacityMultiplier
	if !near(style.Opacity, want) {
		t.Errorf("opacity = %v, want %v", style.Opacity, want)
	}
	if style.Cap != canvas.Preset(canvas.BrushMarker).LineCap {
		t.Errorf("cap = %v, want preset cap", style.Cap)
	}
}

// ─────────────────────────────────────────────────────────────
// PaintShape
// ─────────────────────────────────────────────────────────────

func TestPaintShape_RectangleNegativeExtents(t *testing.T) {
	rec := &recorder{}
	err := canvas.PaintShape(rec, canvas.ShapeRecord{
		Kind: canvas.ShapeRectangle, Start: canvas.Point{X: 50, Y: 60}, End: canvas.Point{X: 10, Y: 20}, Color: red, Size: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.rects) != 1 || rec.rects[0] != [4]float64{50, 60, -40, -40} {
		t.Errorf("rects = %v, want 50,60 -40x-40", rec.rects)
	}
	if rec.strokes != 1 {
		t.Errorf("strokes = %d, want 1", rec.strokes)
	}
}

func TestPaintShape_Circle(t *testing.T) {
	rec := &recorder{}
	err := canvas.PaintShape(rec, canvas.ShapeRecord{
		Kind: canvas.ShapeCircle, Start: canvas.Point{}, End: canvas.Point{X: 30, Y: 40}, Color: red, Size: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.circles) != 1 || rec.circles[0] != [3]float64{15, 20, 25} {
		t.Errorf("circles = %v, want (15,20) r=25", rec.circles)
	}
}

func TestPaintShape_ArrowHasShaftAndHead(t *testing.T) {
	rec := &recorder{}
	start, end := canvas.Point{}, canvas.Point{X: 100}
	err := canvas.PaintShape(rec, canvas.ShapeRecord{Kind: canvas.ShapeArrow, Start: start, End: end, Color: red, Size: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.lines) != 3 {
		t.Fatalf("lines = %d, want shaft + 2 head segments", len(rec.lines))
	}
	left, right := canvas.ArrowHead(start, end, 2)
	if rec.lines[1] != [4]float64{100, 0, left.X, left.Y} || rec.lines[2] != [4]float64{100, 0, right.X, right.Y} {
		t.Errorf("head segments = %v", rec.lines[1:])
	}
}

func TestPaintShape_UnknownKind(t *testing.T) {
	if err := canvas.PaintShape(&recorder{}, canvas.ShapeRecord{Kind: canvas.ShapeKind(42)}); err == nil {
		t.Error("expected error for unknown shape kind")
	}
}
