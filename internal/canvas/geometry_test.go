package canvas_test

import (
	"errors"
	"math"
	"testing"

	"stylusnotes/internal/canvas"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

// ─────────────────────────────────────────────────────────────
// Shape geometry
// ─────────────────────────────────────────────────────────────

func TestCircleFromBox_FlatBox(t *testing.T) {
	center, r := canvas.CircleFromBox(canvas.Point{X: 0, Y: 0}, canvas.Point{X: 40, Y: 0})
	if r != 20 {
		t.Errorf("radius = %v, want 20", r)
	}
	if center != (canvas.Point{X: 20, Y: 0}) {
		t.Errorf("center = %+v, want (20,0)", center)
	}
}

func TestCircleFromBox_UsesHalfDiagonal(t *testing.T) {
	center, r := canvas.CircleFromBox(canvas.Point{X: 0, Y: 0}, canvas.Point{X: 30, Y: 40})
	if math.Abs(r-25) > eps {
		t.Errorf("radius = %v, want 25", r)
	}
	if center != (canvas.Point{X: 15, Y: 20}) {
		t.Errorf("center = %+v, want (15,20)", center)
	}
}

func TestArrowHead_HorizontalShaft(t *testing.T) {
	start := canvas.Point{X: 0, Y: 0}
	end := canvas.Point{X: 100, Y: 0}
	left, right := canvas.ArrowHead(start, end, 2)

	headLen := 6.0
	wantX := 100 - headLen*math.Cos(math.Pi/6)
	wantY := headLen * math.Sin(math.Pi/6)

	if !near(left.X, wantX) || !near(left.Y, wantY) {
		t.Errorf("left = %+v, want (%v,%v)", left, wantX, wantY)
	}
	if !near(right.X, wantX) || !near(right.Y, -wantY) {
		t.Errorf("right = %+v, want (%v,%v)", right, wantX, -wantY)
	}

	for _, p := range []canvas.Point{left, right} {
		if d := p.Dist(end); !near(d, headLen) {
			t.Errorf("head segment length = %v, want %v", d, headLen)
		}
		// Angle between the reversed shaft (pointing at -x) and the head segment.
		angle := math.Abs(math.Atan2(p.Y-end.Y, -(p.X - end.X)))
		if !near(angle, math.Pi/6) {
			t.Errorf("head angle = %v, want π/6", angle)
		}
	}
}

func TestArrowHead_ScalesWithSize(t *testing.T) {
	end := canvas.Point{X: 0, Y: 50}
	left, _ := canvas.ArrowHead(canvas.Point{}, end, 5)
	if d := left.Dist(end); !near(d, 15) {
		t.Errorf("head length = %v, want 15", d)
	}
}

// ─────────────────────────────────────────────────────────────
// Sizing
// ─────────────────────────────────────────────────────────────

func TestFitWithin(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"width bound", 1600, 800, 800, 400},
		{"height bound", 400, 1000, 240, 600},
		{"already fits", 640, 480, 640, 480},
		{"never upscales", 100, 50, 100, 50},
		{"exact viewport", 800, 600, 800, 600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := canvas.FitWithin(tt.w, tt.h, 800, 600)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("FitWithin(%d,%d) = %dx%d, want %dx%d", tt.w, tt.h, w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestClampSize(t *testing.T) {
	w, h := canvas.ClampSize(120, -40)
	if w != canvas.MinWidth || h != canvas.MinHeight {
		t.Errorf("ClampSize = %dx%d, want %dx%d", w, h, canvas.MinWidth, canvas.MinHeight)
	}
	w, h = canvas.ClampSize(301, 201)
	if w != 301 || h != 201 {
		t.Errorf("ClampSize kept %dx%d, want 301x201", w, h)
	}
	w, h = canvas.ClampSize(1<<31, 1<<40)
	if w != canvas.MaxWidth || h != canvas.MaxHeight {
		t.Errorf("ClampSize = %dx%d, want %dx%d", w, h, canvas.MaxWidth, canvas.MaxHeight)
	}
}

// ─────────────────────────────────────────────────────────────
// Presets and parsing
// ─────────────────────────────────────────────────────────────

func TestParseBrush(t *testing.T) {
	for _, b := range canvas.Brushes() {
		got, err := canvas.ParseBrush(b.String())
		if err != nil || got != b {
			t.Errorf("ParseBrush(%q) = %v, %v", b.String(), got, err)
		}
	}
	if _, err := canvas.ParseBrush("crayon"); !errors.Is(err, canvas.ErrUnknownBrush) {
		t.Errorf("ParseBrush(crayon) err = %v, want ErrUnknownBrush", err)
	}
}

func TestParseShape(t *testing.T) {
	got, err := canvas.ParseShape(" Arrow ")
	if err != nil || got != canvas.ShapeArrow {
		t.Errorf("ParseShape(Arrow) = %v, %v", got, err)
	}
	if _, err := canvas.ParseShape("hexagon"); !errors.Is(err, canvas.ErrUnknownShape) {
		t.Errorf("ParseShape(hexagon) err = %v, want ErrUnknownShape", err)
	}
}

func TestPreset_EveryBrushHasPositiveSize(t *testing.T) {
	for _, b := range canvas.Brushes() {
		spec := canvas.Preset(b)
		if spec.Brush != b {
			t.Errorf("Preset(%v).Brush = %v", b, spec.Brush)
		}
		if spec.BaseSize <= 0 || spec.OpacityMultiplier <= 0 || spec.OpacityMultiplier > 1 {
			t.Errorf("Preset(%v) = %+v has out-of-range values", b, spec)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"#ff0000", "#ff0000"},
		{"#0f0", "#00ff00"},
		{"#11223380", "#11223380"},
		{"steelblue", "#4682b4"},
	}
	for _, tt := range tests {
		c, err := canvas.ParseColor(tt.in)
		if err != nil {
			t.Errorf("ParseColor(%q): %v", tt.in, err)
			continue
		}
		if got := canvas.FormatColor(c); got != tt.want {
			t.Errorf("ParseColor(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
	for _, bad := range []string{"#12", "#zzzzzz", "notacolor"} {
		if _, err := canvas.ParseColor(bad); err == nil {
			t.Errorf("ParseColor(%q) expected error", bad)
		}
	}
}
