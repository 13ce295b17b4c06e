package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"stylusnotes/internal/canvas"
)

// ── Tool selection ─────────────────────────────────────────

func (s *Server) registerToolTools() {
	s.mcp.AddTool(mcp.NewTool("get_tool_state",
		mcp.WithDescription("Get the current toolbar state: mode, brush, shape, color, size, opacity, background, undo/redo availability and canvas size"),
	), s.handleGetToolState)

	s.mcp.AddTool(mcp.NewTool("set_brush",
		mcp.WithDescription("Select a freehand brush. Switches to draw mode and loads the brush's base size."),
		mcp.WithString("brush",
			mcp.Description("Brush: pen, brush, marker, pencil, calligraphy, spray, eraser"),
			mcp.Required(),
		),
	), s.handleSetBrush)

	s.mcp.AddTool(mcp.NewTool("set_shape",
		mcp.WithDescription("Select a shape tool. Switches to shape mode."),
		mcp.WithString("shape",
			mcp.Description("Shape: rectangle, circle, line, arrow"),
			mcp.Required(),
		),
	), s.handleSetShape)

	s.mcp.AddTool(mcp.NewTool("set_style",
		mcp.WithDescription("Change ink color, size, opacity or background. Omitted fields are left unchanged."),
		mcp.WithString("color", mcp.Description("Ink color as #rgb, #rrggbb, #rrggbbaa or a CSS color name")),
		mcp.WithNumber("size", mcp.Description("Brush size, clamped to 1..50")),
		mcp.WithNumber("opacity", mcp.Description("Opacity, clamped to 0.1..1")),
		mcp.WithString("background", mcp.Description("Background color used by clear, resize and the eraser")),
	), s.handleSetStyle)
}

func (s *Server) handleGetToolState(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.stylus.Canvas().ToolState())
}

func (s *Server) handleSetBrush(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := requireString(req.GetArguments(), "brush")
	if err != nil {
		return nil, err
	}
	b, err := canvas.ParseBrush(name)
	if err != nil {
		return nil, err
	}
	state, err := s.stylus.Do(ctx, func(cv *canvas.Canvas) error { return cv.SetBrush(b) })
	if err != nil {
		return nil, fmt.Errorf("set brush: %w", err)
	}
	return jsonResult(state)
}

func (s *Server) handleSetShape(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := requireString(req.GetArguments(), "shape")
	if err != nil {
		return nil, err
	}
	k, err := canvas.ParseShape(name)
	if err != nil {
		return nil, err
	}
	state, err := s.stylus.Do(ctx, func(cv *canvas.Canvas) error { return cv.SetShape(k) })
	if err != nil {
		return nil, fmt.Errorf("set shape: %w", err)
	}
	return jsonResult(state)
}

func (s *Server) handleSetStyle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	// parse everything first so a bad value changes nothing
	var (
		setInk, setBg bool
		inkCol        = canvas.DefaultInk
		bgCol         = canvas.DefaultBackground
	)
	if v := stringArg(args, "color"); v != "" {
		c, err := canvas.ParseColor(v)
		if err != nil {
			return nil, err
		}
		inkCol, setInk = c, true
	}
	if v := stringArg(args, "background"); v != "" {
		c, err := canvas.ParseColor(v)
		if err != nil {
			return nil, err
		}
		bgCol, setBg = c, true
	}
	size, setSize := numberArg(args, "size")
	opacity, setOpacity := numberArg(args, "opacity")

	state, _ := s.stylus.Do(ctx, func(cv *canvas.Canvas) error {
		if setInk {
			cv.SetColor(inkCol)
		}
		if setSize {
			cv.SetSize(size)
		}
		if setOpacity {
			cv.SetOpacity(opacity)
		}
		if setBg {
			cv.SetBackground(bgCol)
		}
		return nil
	})
	return jsonResult(state)
}

// ── Drawing ────────────────────────────────────────────────

func (s *Server) registerDrawTools() {
	s.mcp.AddTool(mcp.NewTool("draw_stroke",
		mcp.WithDescription("Draw a freehand stroke with the current brush by pressing at the first point, moving through the rest and releasing. In shape mode the first and last points define the shape."),
		mcp.WithArray("points",
			mcp.Description("Stroke path as [[x, y], ...] or [{x, y}, ...] in canvas pixels"),
			mcp.Required(),
			mcp.Items(map[string]any{"type": "array", "items": map[string]any{"type": "number"}}),
		),
		mcp.WithNumber("dwellMs", mcp.Description("Pause at every point in milliseconds so the spray brush keeps emitting (max 5000)")),
	), s.handleDrawStroke)

	s.mcp.AddTool(mcp.NewTool("draw_shape",
		mcp.WithDescription("Drag out a shape from (x1, y1) to (x2, y2). Selects the shape tool first."),
		mcp.WithString("shape", mcp.Description("Shape: rectangle, circle, line, arrow"), mcp.Required()),
		mcp.WithNumber("x1", mcp.Description("Start X"), mcp.Required()),
		mcp.WithNumber("y1", mcp.Description("Start Y"), mcp.Required()),
		mcp.WithNumber("x2", mcp.Description("End X"), mcp.Required()),
		mcp.WithNumber("y2", mcp.Description("End Y"), mcp.Required()),
	), s.handleDrawShape)
}

func (s *Server) handleDrawStroke(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pts, err := parsePoints(args["points"])
	if err != nil {
		return nil, err
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("points must not be empty")
	}
	var dwell time.Duration
	if ms, ok := numberArg(args, "dwellMs"); ok && ms > 0 {
		dwell = min(time.Duration(ms)*time.Millisecond, maxDwell)
	}

	state, err := s.stylus.Do(ctx, func(cv *canvas.Canvas) error {
		cv.PointerDown(pts[0])
		defer cv.PointerUp()
		for _, p := range pts[1:] {
			if err := ctx.Err(); err != nil {
				return err
			}
			if dwell > 0 {
				s.sleep(dwell)
			}
			cv.PointerMove(p)
		}
		if dwell > 0 {
			s.sleep(dwell)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("draw stroke: %w", err)
	}
	return jsonResult(state)
}

func (s *Server) handleDrawShape(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, err := requireString(args, "shape")
	if err != nil {
		return nil, err
	}
	k, err := canvas.ParseShape(name)
	if err != nil {
		return nil, err
	}
	var coords [4]float64
	for i, key := range []string{"x1", "y1", "x2", "y2"} {
		if coords[i], err = requireNumber(args, key); err != nil {
			return nil, err
		}
	}

	state, err := s.stylus.Do(ctx, func(cv *canvas.Canvas) error {
		if err := cv.SetShape(k); err != nil {
			return err
		}
		cv.PointerDown(canvas.Point{X: coords[0], Y: coords[1]})
		cv.PointerMove(canvas.Point{X: coords[2], Y: coords[3]})
		cv.PointerUp()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("draw shape: %w", err)
	}
	return jsonResult(state)
}

// ── History & canvas ───────────────────────────────────────

func (s *Server) registerCanvasTools() {
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last stroke, shape, clear or resize. No-op when there is nothing to undo."),
	), s.handleUndo)

	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the last undone action. No-op when there is nothing to redo."),
	), s.handleRedo)

	s.mcp.AddTool(mcp.NewTool("clear",
		mcp.WithDescription("Fill the canvas with the background color. Undoable."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleClear)

	s.mcp.AddTool(mcp.NewTool("resize_canvas",
		mcp.WithDescription("Resize the canvas. Pass width and height for a one-shot resize, or phase begin/drag/end with dx, dy to emulate the corner handle. Sizes are clamped to 300x200 .. 8192x8192."),
		mcp.WithNumber("width", mcp.Description("New width (one-shot)")),
		mcp.WithNumber("height", mcp.Description("New height (one-shot)")),
		mcp.WithString("phase", mcp.Description("Handle drag phase: begin, drag or end")),
		mcp.WithNumber("dx", mcp.Description("Horizontal offset from the drag start (drag phase)")),
		mcp.WithNumber("dy", mcp.Description("Vertical offset from the drag start (drag phase)")),
	), s.handleResizeCanvas)
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, _ := s.stylus.Do(ctx, func(cv *canvas.Canvas) error { cv.Undo(); return nil })
	return jsonResult(state)
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, _ := s.stylus.Do(ctx, func(cv *canvas.Canvas) error { cv.Redo(); return nil })
	return jsonResult(state)
}

func (s *Server) handleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, _ := s.stylus.Do(ctx, func(cv *canvas.Canvas) error { cv.Clear(); return nil })
	return jsonResult(state)
}

func (s *Server) handleResizeCanvas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	w, hasW := numberArg(args, "width")
	h, hasH := numberArg(args, "height")
	phase := stringArg(args, "phase")

	var fn func(cv *canvas.Canvas) error
	switch {
	case hasW || hasH:
		fn = func(cv *canvas.Canvas) error {
			cw, ch := cv.Size()
			if !hasW {
				w = float64(cw)
			}
			if !hasH {
				h = float64(ch)
			}
			return cv.Resize(pixels(w, canvas.MaxWidth), pixels(h, canvas.MaxHeight))
		}
	case phase == "begin":
		fn = func(cv *canvas.Canvas) error { cv.BeginResize(); return nil }
	case phase == "drag":
		dx, _ := numberArg(args, "dx")
		dy, _ := numberArg(args, "dy")
		fn = func(cv *canvas.Canvas) error {
			return cv.ResizeBy(pixels(dx, canvas.MaxWidth), pixels(dy, canvas.MaxHeight))
		}
	case phase == "end":
		fn = func(cv *canvas.Canvas) error { cv.EndResize(); return nil }
	default:
		return nil, fmt.Errorf("pass width/height or phase begin, drag or end")
	}

	state, err := s.stylus.Do(ctx, fn)
	if err != nil {
		return nil, fmt.Errorf("resize canvas: %w", err)
	}
	return jsonResult(state)
}
