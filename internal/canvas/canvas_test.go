package canvas_test

import (
	"bytes"
	"testing"

	"stylusnotes/internal/canvas"
)

func newTestCanvas(t *testing.T, opts ...canvas.Option) (*canvas.Canvas, *canvas.ManualScheduler) {
	t.Helper()
	sched := &canvas.ManualScheduler{}
	opts = append([]canvas.Option{canvas.WithScheduler(sched), canvas.WithRand(seeded())}, opts...)
	c := canvas.New(opts...)
	t.Cleanup(func() { c.Close() })
	return c, sched
}

func pix(c *canvas.Canvas) []byte { return c.Image().Pix }

func stroke(c *canvas.Canvas, pts ...canvas.Point) {
	c.PointerDown(pts[0])
	for _, p := range pts[1:] {
		c.PointerMove(p)
	}
	c.PointerUp()
}

func drag(c *canvas.Canvas, from, to canvas.Point) {
	c.PointerDown(from)
	c.PointerMove(from.Mid(to))
	c.PointerMove(to)
	c.PointerUp()
}

// ─────────────────────────────────────────────────────────────
// Construction and tool state
// ─────────────────────────────────────────────────────────────

func TestNew_BlankDefaultSize(t *testing.T) {
	c, _ := newTestCanvas(t)
	if w, h := c.Size(); w != canvas.DefaultWidth || h != canvas.DefaultHeight {
		t.Errorf("size = %dx%d, want %dx%d", w, h, canvas.DefaultWidth, canvas.DefaultHeight)
	}
	if !c.Blank() {
		t.Error("new canvas is not blank")
	}
	st := c.ToolState()
	if st.Mode != "draw" || st.Brush != "pen" || st.CanUndo || st.CanRedo || st.Gesture != "idle" {
		t.Errorf("unexpected initial tool state %+v", st)
	}
}

func TestSetBrush_LoadsBaseSizeAndDrawMode(t *testing.T) {
	c, _ := newTestCanvas(t)
	if err := c.SetShape(canvas.ShapeCircle); err != nil {
		t.Fatal(err)
	}
	if err := c.SetBrush(canvas.BrushMarker); err != nil {
		t.Fatal(err)
	}
	st := c.ToolState()
	if st.Mode != "draw" || st.Brush != "marker" || st.Size != canvas.Preset(canvas.BrushMarker).BaseSize {
		t.Errorf("tool state after SetBrush = %+v", st)
	}
}

func TestSetBrush_RejectsUnknown(t *testing.T) {
	c, _ := newTestCanvas(t)
	if err := c.SetBrush(canvas.Brush(99)); err == nil {
		t.Error("expected error for unknown brush")
	}
	if c.ToolState().Brush != "pen" {
		t.Error("unknown brush changed the selection")
	}
}

func TestSetSizeAndOpacity_Clamp(t *testing.T) {
	c, _ := newTestCanvas(t)
	c.SetSize(500)
	c.SetOpacity(0)
	st := c.ToolState()
	if st.Size != canvas.MaxBrushSize || st.Opacity != canvas.MinOpacity {
		t.Errorf("size=%v opacity=%v, want %v/%v", st.Size, st.Opacity, canvas.MaxBrushSize, canvas.MinOpacity)
	}
}

// ─────────────────────────────────────────────────────────────
// Strokes, shapes and history
// ─────────────────────────────────────────────────────────────

func TestStroke_PaintsAndSnapshotsOnce(t *testing.T) {
	c, _ := newTestCanvas(t)
	blank := pix(c)
	stroke(c, canvas.Point{X: 50, Y: 50}, canvas.Point{X: 100, Y: 50}, canvas.Point{X: 150, Y: 60})

	if bytes.Equal(blank, pix(c)) {
		t.Fatal("stroke did not change the buffer")
	}
	c.Undo()
	if !bytes.Equal(blank, pix(c)) {
		t.Error("one undo did not restore the pre-stroke buffer")
	}
	if c.ToolState().CanUndo {
		t.Error("a single stroke produced more than one snapshot")
	}
}

func TestUndoRedo_InverseLaw(t *testing.T) {
	c, _ := newTestCanvas(t)
	stroke(c, canvas.Point{X: 20, Y: 20}, canvas.Point{X: 120, Y: 40})
	if err := c.SetBrush(canvas.BrushCalligraphy); err != nil {
		t.Fatal(err)
	}
	stroke(c, canvas.Point{X: 40, Y: 200}, canvas.Point{X: 90, Y: 260}, canvas.Point{X: 200, Y: 240})
	if err := c.SetShape(canvas.ShapeArrow); err != nil {
		t.Fatal(err)
	}
	drag(c, canvas.Point{X: 300, Y: 300}, canvas.Point{X: 500, Y: 350})
	c.Clear()
	if err := c.SetBrush(canvas.BrushMarker); err != nil {
		t.Fatal(err)
	}
	stroke(c, canvas.Point{X: 10, Y: 500}, canvas.Point{X: 700, Y: 520})

	const gestures = 5
	final := pix(c)
	finalShapes := c.Shapes()

	for range gestures {
		c.Undo()
	}
	if !c.Blank() {
		t.Error("undoing every gesture did not return to a blank buffer")
	}
	for range gestures {
		c.Redo()
	}
	if !bytes.Equal(final, pix(c)) {
		t.Error("redo after undo is not pixel-identical to the final buffer")
	}
	if len(c.Shapes()) != len(finalShapes) {
		t.Errorf("shapes = %d after redo, want %d", len(c.Shapes()), len(finalShapes))
	}
}

func TestRedo_InvalidatedByNewGesture(t *testing.T) {
	c, _ := newTestCanvas(t)
	stroke(c, canvas.Point{X: 10, Y: 10}, canvas.Point{X: 60, Y: 10})
	stroke(c, canvas.Point{X: 10, Y: 80}, canvas.Point{X: 60, Y: 80})
	c.Undo()
	if !c.ToolState().CanRedo {
		t.Fatal("expected redo to be available after undo")
	}

	stroke(c, canvas.Point{X: 200, Y: 200}, canvas.Point{X: 260, Y: 220})
	if c.ToolState().CanRedo {
		t.Fatal("new gesture did not clear redo")
	}
	before := pix(c)
	c.Redo()
	if !bytes.Equal(before, pix(c)) {
		t.Error("redo after invalidation changed the buffer")
	}
}

func TestUndoRedo_EmptyStacksAreNoops(t *testing.T) {
	c, _ := newTestCanvas(t)
	before := pix(c)
	c.Undo()
	c.Redo()
	if !bytes.Equal(before, pix(c)) {
		t.Error("undo/redo on empty history changed the buffer")
	}
}

func TestPointerDown_IgnoredWhileDrawing(t *testing.T) {
	c, _ := newTestCanvas(t)
	c.PointerDown(canvas.Point{X: 10, Y: 10})
	c.PointerMove(canvas.Point{X: 40, Y: 10})
	c.PointerDown(canvas.Point{X: 400, Y: 400})
	if c.State() != canvas.StateDrawing {
		t.Fatalf("state = %v, want drawing", c.State())
	}
	c.PointerMove(canvas.Point{X: 80, Y: 10})
	c.PointerUp()

	c.Undo()
	if c.ToolState().CanUndo {
		t.Error("ignored pointerDown pushed an extra snapshot")
	}
}

func TestShape_CommitAndUndo(t *testing.T) {
	c, _ := newTestCanvas(t)
	if err := c.SetShape(canvas.ShapeRectangle); err != nil {
		t.Fatal(err)
	}
	c.PointerDown(canvas.Point{X: 300, Y: 300})
	if c.State() != canvas.StateShapePending {
		t.Fatalf("state = %v, want shape-pending", c.State())
	}
	c.PointerMove(canvas.Point{X: 250, Y: 250})
	c.PointerMove(canvas.Point{X: 100, Y: 120})
	c.PointerUp()

	shapes := c.Shapes()
	if len(shapes) != 1 {
		t.Fatalf("shapes = %d, want 1", len(shapes))
	}
	if shapes[0].End != (canvas.Point{X: 100, Y: 120}) || shapes[0].Kind != canvas.ShapeRectangle {
		t.Errorf("committed shape = %+v", shapes[0])
	}
	if c.Blank() {
		t.Error("committed rectangle left the buffer blank")
	}

	c.Undo()
	if len(c.Shapes()) != 0 || !c.Blank() {
		t.Error("undo did not remove the shape")
	}
}

func TestShape_PreviewLeavesNoTrail(t *testing.T) {
	c, _ := newTestCanvas(t)
	if err := c.SetShape(canvas.ShapeLine); err != nil {
		t.Fatal(err)
	}
	c.PointerDown(canvas.Point{X: 100, Y: 100})
	c.PointerMove(canvas.Point{X: 700, Y: 500})
	c.PointerMove(canvas.Point{X: 150, Y: 100})
	c.PointerUp()

	// Only the final short line must remain; the long preview line crossed (400,300).
	if px := c.Image().RGBAAt(400, 300); px.R != 0xff || px.G != 0xff || px.B != 0xff {
		t.Errorf("preview trail left pixel %+v at (400,300)", px)
	}
}

func TestShape_PointerLeaveCommits(t *testing.T) {
	c, _ := newTestCanvas(t)
	if err := c.SetShape(canvas.ShapeCircle); err != nil {
		t.Fatal(err)
	}
	c.PointerDown(canvas.Point{X: 100, Y: 100})
	c.PointerMove(canvas.Point{X: 160, Y: 180})
	c.PointerLeave()
	if c.State() != canvas.StateIdle || len(c.Shapes()) != 1 {
		t.Errorf("state=%v shapes=%d after leave", c.State(), len(c.Shapes()))
	}
}

func TestClear_IsUndoable(t *testing.T) {
	c, _ := newTestCanvas(t)
	stroke(c, canvas.Point{X: 10, Y: 10}, canvas.Point{X: 300, Y: 300})
	drawn := pix(c)
	c.Clear()
	if !c.Blank() {
		t.Fatal("clear left ink behind")
	}
	c.Undo()
	if !bytes.Equal(drawn, pix(c)) {
		t.Error("undo after clear did not restore the drawing")
	}
}

// ─────────────────────────────────────────────────────────────
// Spray task
// ─────────────────────────────────────────────────────────────

func TestSpray_TimerAccumulatesWhileHeld(t *testing.T) {
	c, sched := newTestCanvas(t)
	if err := c.SetBrush(canvas.BrushSpray); err != nil {
		t.Fatal(err)
	}
	c.PointerDown(canvas.Point{X: 200, Y: 200})
	if sched.Active() != 1 {
		t.Fatalf("active tasks = %d, want 1", sched.Active())
	}
	before := pix(c)
	sched.Tick()
	if bytes.Equal(before, pix(c)) {
		t.Error("spray tick without movement painted nothing")
	}

	c.PointerUp()
	if sched.Active() != 0 {
		t.Errorf("active tasks after pointerUp = %d, want 0", sched.Active())
	}
}

func TestSpray_PointerLeaveCancels(t *testing.T) {
	c, sched := newTestCanvas(t)
	if err := c.SetBrush(canvas.BrushSpray); err != nil {
		t.Fatal(err)
	}
	c.PointerDown(canvas.Point{X: 200, Y: 200})
	c.PointerMove(canvas.Point{X: 210, Y: 205})
	c.PointerLeave()
	if sched.Active() != 0 {
		t.Errorf("active tasks after pointerLeave = %d, want 0", sched.Active())
	}
}

func TestSpray_StaleTickDoesNotPaint(t *testing.T) {
	c, sched := newTestCanvas(t)
	if err := c.SetBrush(canvas.BrushSpray); err != nil {
		t.Fatal(err)
	}
	c.PointerDown(canvas.Point{X: 200, Y: 200})
	c.PointerUp()
	after := pix(c)

	sched.Fire()
	if !bytes.Equal(after, pix(c)) {
		t.Error("a cancelled spray task painted after pointerUp")
	}
}

func TestSpray_NonSprayBrushHasNoTimer(t *testing.T) {
	c, sched := newTestCanvas(t)
	c.PointerDown(canvas.Point{X: 5, Y: 5})
	if sched.Active() != 0 {
		t.Errorf("pen stroke started %d periodic tasks", sched.Active())
	}
	c.PointerUp()
}
