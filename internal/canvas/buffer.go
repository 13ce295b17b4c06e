package canvas

import (
	"fmt"
	"image"
	"image/color"
	"log"
	"slices"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
)

// ResizePolicy decides what a reallocated buffer starts with.
type ResizePolicy int

const (
	// ResizePreservePixels copies the overlapping region of the old frame.
	ResizePreservePixels ResizePolicy = iota
	// ResizeRepaintShapes starts from background and replays committed shapes.
	ResizeRepaintShapes
)

// ParseResizePolicy accepts "preserve" or "repaint".
func ParseResizePolicy(s string) (ResizePolicy, error) {
	switch s {
	case "", "preserve":
		return ResizePreservePixels, nil
	case "repaint":
		return ResizeRepaintShapes, nil
	}
	return 0, fmt.Errorf("unknown resize policy %q", s)
}

// ── Buffer primitives (callers hold c.mu) ────────────────────

func (c *Canvas) capture() Snapshot {
	return Snapshot{
		Width:  c.dc.Width(),
		Height: c.dc.Height(),
		pix:    slices.Clone(c.dc.ResizeTarget().Data()),
		shapes: slices.Clone(c.shapes),
	}
}

func (c *Canvas) restore(s Snapshot) {
	if err := c.dc.Resize(s.Width, s.Height); err != nil {
		log.Printf("canvas: restore resize: %v", err)
		return
	}
	copy(c.dc.ResizeTarget().Data(), s.pix)
	c.shapes = slices.Clone(s.shapes)
}

func (c *Canvas) fillBackground() {
	c.dc.ClearWithColor(gg.FromColor(c.background))
}

func (c *Canvas) replayShapes() {
	for _, rec := range c.shapes {
		if err := PaintShape(c.dc, rec); err != nil {
			log.Printf("canvas: replay shape: %v", err)
		}
	}
}

// reallocate gives the buffer a new size and seeds it from src according to
// the resize policy.
func (c *Canvas) reallocate(w, h int, src Snapshot) error {
	if err := c.dc.Resize(w, h); err != nil {
		return fmt.Errorf("resize buffer: %w", err)
	}
	c.fillBackground()
	switch c.resizePolicy {
	case ResizeRepaintShapes:
		c.replayShapes()
	default:
		copyOverlap(c.dc.ResizeTarget().Data(), w, h, src.pix, src.Width, src.Height)
	}
	return nil
}

// copyOverlap copies the top-left region shared by two RGBA frames.
func copyOverlap(dst []byte, dw, dh int, src []byte, sw, sh int) {
	rowBytes := min(dw, sw) * 4
	for y := range min(dh, sh) {
		copy(dst[y*dw*4:y*dw*4+rowBytes], src[y*sw*4:y*sw*4+rowBytes])
	}
}

// drawFitted scales img to w×h and draws it at the origin.
func (c *Canvas) drawFitted(img image.Image, w, h int) {
	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	c.dc.DrawImage(gg.ImageBufFromImage(scaled), 0, 0)
}

// solid reports whether every pixel of the buffer equals col.
func (c *Canvas) solid(col color.NRGBA) bool {
	want := gg.FromColor(col)
	pm := c.dc.ResizeTarget()
	for y := range pm.Height() {
		for x := range pm.Width() {
			if pm.GetPixel(x, y) != want {
				return false
			}
		}
	}
	return true
}
