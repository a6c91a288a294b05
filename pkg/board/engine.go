package board

import (
	"image"
	"io"
	"sync"
	"time"

	"github.com/tiohsa/flowboard/pkg/debug"
	"github.com/tiohsa/flowboard/pkg/model"
)

// Engine ties the board pipeline together: it owns the current state,
// layout, rect map, viewport, and interaction machine, and keeps them
// consistent as snapshots, view flags, and pointer events arrive.
// Repaints are coalesced: mutations mark the engine dirty, and the next
// Paint call rebuilds whatever is stale.
//
// All methods are safe for concurrent use; the snapshot watcher feeds
// SetSnapshot from its own goroutine while the event loop drives the
// pointer methods.
type Engine struct {
	mu sync.Mutex

	renderer    *Renderer
	metrics     Metrics
	flags       ViewFlags
	state       *BoardState
	layout      *Layout
	rects       *RectMap
	viewport    Viewport
	interaction *Interaction

	needsPaint  bool
	layoutStale bool
}

// NewEngine builds an engine around an empty board. Commands emitted by
// pointer gestures are delivered to sink; a nil sink discards them.
func NewEngine(renderer *Renderer, metrics Metrics, flags ViewFlags, sink CommandSink) *Engine {
	e := &Engine{
		renderer:    renderer,
		metrics:     metrics,
		flags:       flags,
		state:       BuildState(&model.BoardSnapshot{}),
		interaction: NewInteraction(metrics.DragThreshold, sink),
		needsPaint:  true,
		layoutStale: true,
	}
	if flags.FitWidth {
		e.viewport.Fit = FitWidth
	}
	return e
}

// SetSnapshot replaces the board contents. An in-flight drag whose card
// no longer exists is cancelled; scroll is re-clamped against the new
// content extents.
func (e *Engine) SetSnapshot(snap *model.BoardSnapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	e.state = BuildState(snap)
	e.layoutStale = true
	e.reflowLocked()

	if drag, ok := e.interaction.Drag(); ok && e.state.Card(drag.IssueID) == nil {
		debug.Log("engine: dragged card #%d gone after snapshot swap, cancelling", drag.IssueID)
		e.interaction.Cancel()
	}
	e.viewport.ClampScroll(e.layout.BoardWidth, e.layout.BoardHeight)
	e.needsPaint = true
	debug.LogTiming("engine.SetSnapshot", time.Since(start))
	return nil
}

// SetFlags changes the view flags. Toggling sub-item visibility changes
// card heights, so the layout is recomputed.
func (e *Engine) SetFlags(flags ViewFlags) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if flags == e.flags {
		return
	}
	e.flags = flags
	if flags.FitWidth {
		e.viewport.Fit = FitWidth
	} else {
		e.viewport.Fit = FitNone
	}
	e.layoutStale = true
	e.reflowLocked()
	e.viewport.ClampScroll(e.layout.BoardWidth, e.layout.BoardHeight)
	e.needsPaint = true
}

// Resize updates the viewport dimensions in screen pixels.
func (e *Engine) Resize(w, h float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reflowLocked()
	e.viewport.SetSize(w, h, e.layout.BoardWidth, e.layout.BoardHeight)
	e.needsPaint = true
}

// Wheel scrolls the viewport by a screen-space delta, converted to board
// units at the current scale.
func (e *Engine) Wheel(dx, dy float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reflowLocked()
	scale := e.viewport.Scale(e.layout.BoardWidth)
	e.viewport.ScrollBy(dx/scale, dy/scale, e.layout.BoardWidth, e.layout.BoardHeight)
	e.needsPaint = true
}

// PointerDown forwards a press at screen coordinates to the interaction
// machine.
func (e *Engine) PointerDown(screen Point) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reflowLocked()
	p := e.viewport.ToBoard(screen, e.layout.BoardWidth)
	e.interaction.PointerDown(p, e.state, e.rects)
	e.needsPaint = true
}

// PointerMove forwards pointer motion. Only drags repaint; hover is not
// tracked.
func (e *Engine) PointerMove(screen Point) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reflowLocked()
	p := e.viewport.ToBoard(screen, e.layout.BoardWidth)
	e.interaction.PointerMove(p, e.rects)
	if e.interaction.Dragging() {
		e.needsPaint = true
	}
}

// PointerUp completes the gesture, emitting at most one command.
func (e *Engine) PointerUp(screen Point) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reflowLocked()
	p := e.viewport.ToBoard(screen, e.layout.BoardWidth)
	e.interaction.PointerUp(p, e.state, e.rects)
	e.needsPaint = true
}

// PointerCancel aborts any gesture in progress without emitting a
// command.
func (e *Engine) PointerCancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.interaction.Cancel()
	e.needsPaint = true
}

// NeedsPaint reports whether anything changed since the last Paint or
// PaintSVG call.
func (e *Engine) NeedsPaint() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.needsPaint
}

// Paint renders the current board into a raster image and clears the
// dirty flag.
func (e *Engine) Paint() image.Image {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reflowLocked()
	drag := e.dragLocked()
	img := e.renderer.RenderImage(e.state, e.layout, e.rects, drag, &e.viewport)
	e.needsPaint = false
	return img
}

// PaintSVG renders the current board as SVG and clears the dirty flag.
func (e *Engine) PaintSVG(w io.Writer) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reflowLocked()
	drag := e.dragLocked()
	err := e.renderer.RenderSVG(w, e.state, e.layout, e.rects, drag, &e.viewport)
	if err == nil {
		e.needsPaint = false
	}
	return err
}

// Layout exposes the current layout, recomputing it if stale.
func (e *Engine) Layout() *Layout {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reflowLocked()
	return e.layout
}

// Rects exposes the current rect map, recomputing it if stale.
func (e *Engine) Rects() *RectMap {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reflowLocked()
	return e.rects
}

// State exposes the current board state.
func (e *Engine) State() *BoardState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Viewport returns a copy of the current viewport.
func (e *Engine) Viewport() Viewport {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewport
}

// Dragging reports whether a drag is in progress.
func (e *Engine) Dragging() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.interaction.Dragging()
}

// reflowLocked recomputes layout and rect map if a mutation marked them
// stale. Callers must hold e.mu.
func (e *Engine) reflowLocked() {
	if !e.layoutStale && e.layout != nil {
		return
	}
	e.layout = ComputeLayout(e.state, e.metrics, e.flags)
	e.rects = e.renderer.BuildRects(e.state, e.layout)
	e.layoutStale = false
}

func (e *Engine) dragLocked() *DragState {
	if drag, ok := e.interaction.Drag(); ok {
		return &drag
	}
	return nil
}
