// Package canvas is the freehand drawing engine behind stylus notes: a raster
// buffer painted by brush physics and vector shapes, with full-frame undo and
// redo, live resizing and PNG export.
//
// A Canvas serializes every call on one mutex, including spray timer ticks,
// so each pointer or timer event runs to completion before the next.
package canvas

import (
	"image"
	"image/color"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gogpu/gg"
)

const (
	MinBrushSize = 1
	MaxBrushSize = 50
	MinOpacity   = 0.1
	MaxOpacity   = 1
)

// GestureState is the interaction state of a canvas.
type GestureState int

const (
	StateIdle GestureState = iota
	StateDrawing
	StateShapePending
)

func (s GestureState) String() string {
	switch s {
	case StateDrawing:
		return "drawing"
	case StateShapePending:
		return "shape-pending"
	default:
		return "idle"
	}
}

// Canvas owns one pixel buffer, its history and the pointer state machine.
type Canvas struct {
	mu sync.Mutex
	dc *gg.Context

	history *History
	shapes  []ShapeRecord

	// viewport bounds fresh canvases and image fitting
	viewW, viewH int

	// tool selection
	mode       Mode
	brush      Brush
	shape      ShapeKind
	ink        color.NRGBA
	size       float64
	opacity    float64
	background color.NRGBA

	// gesture
	state   GestureState
	last    Point
	stroke  StrokeStyle
	pending ShapeRecord
	spray   *sprayTask

	// resize drag
	resizing    bool
	resizeStart Snapshot

	resizePolicy  ResizePolicy
	scheduler     Scheduler
	sprayInterval time.Duration
	rng           *rand.Rand
}

type sprayTask struct {
	cancel func()
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithSize sets the blank canvas size and the viewport loaded images are fitted into.
func WithSize(w, h int) Option {
	return func(c *Canvas) {
		c.viewW, c.viewH = ClampSize(w, h)
	}
}

func WithBackground(col color.NRGBA) Option {
	return func(c *Canvas) { c.background = col }
}

// WithHistoryDepth caps the undo stack. Zero keeps it unbounded.
func WithHistoryDepth(n int) Option {
	return func(c *Canvas) { c.history = NewHistory(n) }
}

func WithResizePolicy(p ResizePolicy) Option {
	return func(c *Canvas) { c.resizePolicy = p }
}

// WithScheduler replaces the ticker that drives the spray brush.
func WithScheduler(s Scheduler) Option {
	return func(c *Canvas) { c.scheduler = s }
}

func WithSprayInterval(d time.Duration) Option {
	return func(c *Canvas) {
		if d > 0 {
			c.sprayInterval = d
		}
	}
}

// WithRand seeds spray scatter, mostly for reproducible tests.
func WithRand(r *rand.Rand) Option {
	return func(c *Canvas) { c.rng = r }
}

// New creates a blank canvas filled with the background color, with the pen selected.
func New(opts ...Option) *Canvas {
	c := &Canvas{
		history:       NewHistory(0),
		viewW:         DefaultWidth,
		viewH:         DefaultHeight,
		mode:          ModeDraw,
		brush:         BrushPen,
		ink:           DefaultInk,
		size:          Preset(BrushPen).BaseSize,
		opacity:       1,
		background:    DefaultBackground,
		scheduler:     TickerScheduler{},
		sprayInterval: DefaultSprayInterval,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	}
	c.dc = gg.NewContext(c.viewW, c.viewH)
	c.fillBackground()
	return c
}

// Close cancels any running spray task and releases the buffer.
func (c *Canvas) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopSpray()
	c.state = StateIdle
	return c.dc.Close()
}

// ── Tool selection ───────────────────────────────────────────

// SetBrush selects b, switches to draw mode and loads the brush's base size.
func (c *Canvas) SetBrush(b Brush) error {
	if b < 0 || int(b) >= len(presets) {
		return ErrUnknownBrush
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.brush = b
	c.mode = ModeDraw
	c.size = Preset(b).BaseSize
	return nil
}

// SetShape selects k and switches to shape mode.
func (c *Canvas) SetShape(k ShapeKind) error {
	if k < 0 || int(k) >= len(shapeNames) {
		return ErrUnknownShape
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shape = k
	c.mode = ModeShape
	return nil
}

func (c *Canvas) SetColor(col color.NRGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ink = col
}

// SetSize clamps size into [MinBrushSize, MaxBrushSize].
func (c *Canvas) SetSize(size float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.size = min(max(size, MinBrushSize), MaxBrushSize)
}

// SetOpacity clamps opacity into [MinOpacity, MaxOpacity].
func (c *Canvas) SetOpacity(opacity float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opacity = min(max(opacity, MinOpacity), MaxOpacity)
}

// SetBackground changes the color used by clears, new buffers and the eraser.
// Pixels already painted keep their color.
func (c *Canvas) SetBackground(col color.NRGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.background = col
}

// ── Pointer state machine ────────────────────────────────────

// PointerDown starts a stroke or a shape depending on the mode.
// It is ignored while another gesture or a resize drag is in progress.
func (c *Canvas) PointerDown(p Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy() {
		return
	}

	c.history.Push(c.capture())
	switch c.mode {
	case ModeShape:
		c.pending = ShapeRecord{Kind: c.shape, Start: p, End: p, Color: c.ink, Size: c.size}
		c.state = StateShapePending
	default:
		c.stroke = NewStrokeStyle(c.brush, c.ink, c.size, c.opacity, c.background)
		c.last = p
		c.state = StateDrawing
		if c.brush == BrushSpray {
			c.startSpray()
		}
	}
}

// PointerMove paints one stroke segment or updates the shape preview.
func (c *Canvas) PointerMove(p Point) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.state {
	case StateDrawing:
		prev := c.last
		if err := PaintSegment(c.dc, c.stroke, &prev, p, c.rng); err != nil {
			log.Printf("canvas: paint segment: %v", err)
		}
		c.last = p
	case StateShapePending:
		c.pending.End = p
		c.paintPreview()
	}
}

// PointerUp ends the current stroke or commits the pending shape.
func (c *Canvas) PointerUp() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endGesture()
}

// PointerLeave behaves like PointerUp. A stroke is kept, not rolled back.
func (c *Canvas) PointerLeave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endGesture()
}

// State returns the current gesture state.
func (c *Canvas) State() GestureState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Canvas) endGesture() {
	switch c.state {
	case StateDrawing:
		c.stopSpray()
	case StateShapePending:
		c.paintPreview()
		c.shapes = append(c.shapes, c.pending)
		c.pending = ShapeRecord{}
	}
	c.state = StateIdle
}

func (c *Canvas) busy() bool {
	return c.state != StateIdle || c.resizing
}

// paintPreview repaints the committed base and draws the pending shape on top.
// The base is the snapshot taken when the shape gesture began; without one it
// is rebuilt by replaying every committed shape onto a cleared buffer.
func (c *Canvas) paintPreview() {
	if base, ok := c.history.Top(); ok {
		c.restore(base)
	} else {
		c.fillBackground()
		c.replayShapes()
	}
	if err := PaintShape(c.dc, c.pending); err != nil {
		log.Printf("canvas: paint shape: %v", err)
	}
}

func (c *Canvas) startSpray() {
	task := &sprayTask{}
	task.cancel = c.scheduler.Every(c.sprayInterval, func() { c.sprayTick(task) })
	c.spray = task
}

func (c *Canvas) stopSpray() {
	if c.spray != nil {
		c.spray.cancel()
		c.spray = nil
	}
}

// sprayTick re-scatters at the last pointer position so density grows with dwell time.
func (c *Canvas) sprayTick(task *sprayTask) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.spray != task || c.state != StateDrawing {
		return
	}
	at := c.last
	if err := PaintSegment(c.dc, c.stroke, &at, at, c.rng); err != nil {
		log.Printf("canvas: spray tick: %v", err)
	}
}

// ── History commands ─────────────────────────────────────────

// Undo reverts the last gesture, clear or resize. It does nothing when the
// undo stack is empty or a gesture is in progress.
func (c *Canvas) Undo() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy() {
		return
	}
	if prev, ok := c.history.Undo(c.capture()); ok {
		c.restore(prev)
	}
}

// Redo reapplies the last undone state. It does nothing when the redo stack
// is empty or a gesture is in progress.
func (c *Canvas) Redo() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy() {
		return
	}
	if next, ok := c.history.Redo(c.capture()); ok {
		c.restore(next)
	}
}

// Clear fills the buffer with the background and drops committed shapes.
// It is undoable.
func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy() {
		return
	}
	c.history.Push(c.capture())
	c.fillBackground()
	c.shapes = nil
}

// ── Inspection ───────────────────────────────────────────────

// ToolState describes the toolbar: selection, style, history availability and size.
type ToolState struct {
	Mode       string  `json:"mode"`
	Brush      string  `json:"brush"`
	Shape      string  `json:"shape"`
	Color      string  `json:"color"`
	Size       float64 `json:"size"`
	Opacity    float64 `json:"opacity"`
	Background string  `json:"background"`
	CanUndo    bool    `json:"canUndo"`
	CanRedo    bool    `json:"canRedo"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Gesture    string  `json:"gesture"`
	Resizing   bool    `json:"resizing"`
}

func (c *Canvas) ToolState() ToolState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ToolState{
		Mode:       c.mode.String(),
		Brush:      c.brush.String(),
		Shape:      c.shape.String(),
		Color:      FormatColor(c.ink),
		Size:       c.size,
		Opacity:    c.opacity,
		Background: FormatColor(c.background),
		CanUndo:    c.history.CanUndo(),
		CanRedo:    c.history.CanRedo(),
		Width:      c.dc.Width(),
		Height:     c.dc.Height(),
		Gesture:    c.state.String(),
		Resizing:   c.resizing,
	}
}

// Size returns the buffer dimensions.
func (c *Canvas) Size() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dc.Width(), c.dc.Height()
}

// Shapes returns a copy of the committed shapes.
func (c *Canvas) Shapes() []ShapeRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ShapeRecord, len(c.shapes))
	copy(out, c.shapes)
	return out
}

// Blank reports whether the buffer holds nothing but background.
func (c *Canvas) Blank() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.solid(c.background)
}

// Image returns a copy of the current frame.
func (c *Canvas) Image() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dc.ResizeTarget().ToImage()
}
