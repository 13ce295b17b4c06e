package canvas

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"

	"stylusnotes/internal/domain"
)

var (
	ErrImageNotFound = errors.New("image not found")
	ErrImageDecode   = errors.New("image decode failed")
)

// ImageLoader fetches a previously stored frame. Implementations wrap
// ErrImageNotFound or ErrImageDecode so callers can tell the failures apart.
type ImageLoader interface {
	LoadImage(ctx context.Context, ref string) (image.Image, error)
}

// Frame is an encoded PNG of the buffer plus its dimensions.
type Frame struct {
	PNG    []byte
	Width  int
	Height int
}

// Persister stores a finished frame. An empty meta.NoteID creates a note and
// the new id is returned; otherwise the note is updated in place.
type Persister interface {
	Persist(ctx context.Context, frame Frame, meta domain.NoteMetadata) (string, error)
}

// ── Mount ────────────────────────────────────────────────────

// Mount resets the canvas and loads ref as its starting image, shrunk to fit
// the viewport when larger. On failure the canvas is left blank at the
// viewport size and the loader's error is returned.
func (c *Canvas) Mount(ctx context.Context, loader ImageLoader, ref string) error {
	img, loadErr := loader.LoadImage(ctx, ref)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.resetLocked(); err != nil {
		return err
	}
	if loadErr != nil {
		return fmt.Errorf("mount canvas: %w", loadErr)
	}

	b := img.Bounds()
	w, h := FitWithin(b.Dx(), b.Dy(), c.viewW, c.viewH)
	if err := c.dc.Resize(w, h); err != nil {
		return fmt.Errorf("mount canvas: %w", err)
	}
	c.fillBackground()
	c.drawFitted(img, w, h)
	return nil
}

// Reset returns the canvas to a blank viewport-sized buffer with empty history.
// Tool selection is kept.
func (c *Canvas) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resetLocked()
}

func (c *Canvas) resetLocked() error {
	c.stopSpray()
	c.state = StateIdle
	c.pending = ShapeRecord{}
	c.resizing = false
	c.resizeStart = Snapshot{}
	c.history.Reset()
	c.shapes = nil
	if err := c.dc.Resize(c.viewW, c.viewH); err != nil {
		return fmt.Errorf("reset canvas: %w", err)
	}
	c.fillBackground()
	return nil
}

// ── Save ─────────────────────────────────────────────────────

// EncodePNG writes the current frame as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dc.EncodePNG(w)
}

// Frame encodes the current buffer.
func (c *Canvas) Frame() (Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var buf bytes.Buffer
	if err := c.dc.EncodePNG(&buf); err != nil {
		return Frame{}, fmt.Errorf("encode frame: %w", err)
	}
	return Frame{PNG: buf.Bytes(), Width: c.dc.Width(), Height: c.dc.Height()}, nil
}

// Save hands the current frame to p. A successful create resets the canvas
// for the next note; an update leaves it as is. A persist error is returned
// unchanged and the canvas is not touched.
func (c *Canvas) Save(ctx context.Context, p Persister, meta domain.NoteMetadata) (string, error) {
	frame, err := c.Frame()
	if err != nil {
		return "", err
	}

	id, err := p.Persist(ctx, frame, meta)
	if err != nil {
		return "", err
	}

	if meta.IsCreate() {
		if err := c.Reset(); err != nil {
			return id, err
		}
	}
	return id, nil
}

// ── Resize ───────────────────────────────────────────────────

// BeginResize starts a resize drag. It is ignored during a gesture.
func (c *Canvas) BeginResize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy() {
		return
	}
	c.resizing = true
	c.resizeStart = c.capture()
}

// ResizeBy sets the size to the drag-start size plus (dx, dy), clamped to
// the size bounds. Each call reallocates the buffer from the drag-start frame.
func (c *Canvas) ResizeBy(dx, dy int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.resizing {
		if c.state != StateIdle {
			return nil
		}
		c.resizing = true
		c.resizeStart = c.capture()
	}
	w, h := ClampSize(c.resizeStart.Width+dx, c.resizeStart.Height+dy)
	if w == c.dc.Width() && h == c.dc.Height() {
		return nil
	}
	return c.reallocate(w, h, c.resizeStart)
}

// EndResize finishes the drag. The drag-start frame goes on the undo stack
// once, and only if the size actually changed.
func (c *Canvas) EndResize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.resizing {
		return
	}
	start := c.resizeStart
	c.resizing = false
	c.resizeStart = Snapshot{}
	if start.Width != c.dc.Width() || start.Height != c.dc.Height() {
		c.history.Push(start)
	}
}

// Resize sets an absolute size in one step, with the same clamping and
// history behavior as a drag. It is ignored during a gesture or drag.
func (c *Canvas) Resize(w, h int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy() {
		return nil
	}
	w, h = ClampSize(w, h)
	if w == c.dc.Width() && h == c.dc.Height() {
		return nil
	}
	start := c.capture()
	if err := c.reallocate(w, h, start); err != nil {
		return err
	}
	c.history.Push(start)
	return nil
}
