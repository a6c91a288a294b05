package board

// FitMode selects how board content is scaled into the viewport.
type FitMode int

const (
	// FitNone renders at 1:1 scale and relies on scrolling.
	FitNone FitMode = iota
	// FitWidth scales the board down so its full width is visible. The
	// scale factor never exceeds 1; small boards are not upscaled.
	FitWidth
)

// Viewport owns the scroll offset and the optional fit-to-width scale.
// All pointer coordinates pass through ToBoard before any hit test, so
// the rest of the engine never reasons in screen pixels.
type Viewport struct {
	Width   float64
	Height  float64
	ScrollX float64
	ScrollY float64
	Fit     FitMode
}

// SetSize records the new viewport size and re-clamps the scroll offset
// against the given content extents.
func (v *Viewport) SetSize(w, h, contentW, contentH float64) {
	v.Width = w
	v.Height = h
	v.ClampScroll(contentW, contentH)
}

// Scale returns the uniform scale factor for the given content width:
// min(viewportWidth/contentWidth, 1) in fit-width mode, 1 otherwise.
func (v *Viewport) Scale(contentW float64) float64 {
	if v.Fit != FitWidth || contentW <= 0 || v.Width <= 0 {
		return 1
	}
	s := v.Width / contentW
	if s > 1 {
		return 1
	}
	return s
}

// ScrollBy moves the scroll offset by (dx, dy) and clamps it.
func (v *Viewport) ScrollBy(dx, dy, contentW, contentH float64) {
	v.ScrollX += dx
	v.ScrollY += dy
	v.ClampScroll(contentW, contentH)
}

// SetScroll sets the scroll offset and clamps it.
func (v *Viewport) SetScroll(x, y, contentW, contentH float64) {
	v.ScrollX = x
	v.ScrollY = y
	v.ClampScroll(contentW, contentH)
}

// ClampScroll clamps each axis independently to
// [0, max(0, contentExtent-viewportExtent)]. Scroll lives in board
// units, so the viewport extent is divided by the current scale before
// comparing against content.
func (v *Viewport) ClampScroll(contentW, contentH float64) {
	scale := v.Scale(contentW)
	v.ScrollX = clampAxis(v.ScrollX, contentW, v.Width/scale)
	v.ScrollY = clampAxis(v.ScrollY, contentH, v.Height/scale)
}

func clampAxis(offset, content, viewport float64) float64 {
	max := content - viewport
	if max < 0 {
		max = 0
	}
	if offset < 0 {
		return 0
	}
	if offset > max {
		return max
	}
	return offset
}

// ToBoard converts a screen-space point into board coordinates by undoing
// the current scale and scroll offset: board = screen/scale + scroll.
func (v *Viewport) ToBoard(screen Point, contentW float64) Point {
	scale := v.Scale(contentW)
	return Point{
		X: screen.X/scale + v.ScrollX,
		Y: screen.Y/scale + v.ScrollY,
	}
}
