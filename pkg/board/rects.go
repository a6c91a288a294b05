// Package board implements the flowboard layout, hit-testing,
// interaction-state, and rendering engine. It turns an immutable
// BoardSnapshot into pixels on a single 2D surface and turns pointer
// coordinates back into semantic board commands.
//
// All geometry inside this package is expressed in board coordinates:
// unscrolled, unscaled pixels with the origin at the board's top-left.
// The Viewport owns the one conversion between screen and board space.
package board

import (
	"fmt"
	"strings"
)

// Point is a position in board coordinates.
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned rectangle in board coordinates.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Contains reports whether p lies inside the rectangle. The top and left
// edges are inclusive, the bottom and right edges exclusive, so adjacent
// rectangles never both claim a point.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Inset returns the rectangle shrunk by d on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X + d, Y: r.Y + d, W: r.W - 2*d, H: r.H - 2*d}
}

// CellKey identifies the intersection of one column and one lane.
type CellKey string

// NewCellKey builds the canonical "columnID:laneID" cell key.
func NewCellKey(columnID, laneID string) CellKey {
	return CellKey(columnID + ":" + laneID)
}

// Split returns the column and lane components of the key.
func (k CellKey) Split() (columnID, laneID string) {
	s := string(k)
	i := strings.IndexByte(s, ':')
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}

func (k CellKey) String() string { return string(k) }

// RectMap holds every hit-testable rectangle of one render pass, grouped
// by category and keyed by the id of the thing it belongs to. It is
// rebuilt from scratch on every pass; entries from a previous frame are
// never consulted.
type RectMap struct {
	Cards         map[int]Rect     // card body, keyed by card id
	SubjectLabels map[int]Rect     // card subject text, keyed by card id
	EditButtons   map[int]Rect     // keyed by card id
	DeleteButtons map[int]Rect     // keyed by card id
	InfoButtons   map[int]Rect     // keyed by card id
	SubitemChecks map[int]Rect     // checkbox glyph, keyed by sub-item id
	SubitemLabels map[int]Rect     // sub-item text, keyed by sub-item id
	AddButtons    map[string]Rect  // lane add affordance, keyed by lane id
	Cells         map[CellKey]Rect // cell background
	Headers       map[string]Rect  // column header, keyed by column id
	LaneLabels    map[string]Rect  // lane label band, keyed by lane id

	// subitemOwner maps a sub-item id back to its parent card so intents
	// fired from a sub-item tap can carry card context.
	subitemOwner map[int]int
}

// NewRectMap returns an empty rect map with all categories allocated.
func NewRectMap() *RectMap {
	return &RectMap{
		Cards:         make(map[int]Rect),
		SubjectLabels: make(map[int]Rect),
		EditButtons:   make(map[int]Rect),
		DeleteButtons: make(map[int]Rect),
		InfoButtons:   make(map[int]Rect),
		SubitemChecks: make(map[int]Rect),
		SubitemLabels: make(map[int]Rect),
		AddButtons:    make(map[string]Rect),
		Cells:         make(map[CellKey]Rect),
		Headers:       make(map[string]Rect),
		LaneLabels:    make(map[string]Rect),
		subitemOwner:  make(map[int]int),
	}
}

// OwnerOfSubitem returns the card id owning the given sub-item, or 0.
func (m *RectMap) OwnerOfSubitem(subitemID int) int {
	return m.subitemOwner[subitemID]
}

// CellAt returns the key of the cell containing p, or "" when p lies
// outside every cell.
func (m *RectMap) CellAt(p Point) CellKey {
	for key, r := range m.Cells {
		if r.Contains(p) {
			return key
		}
	}
	return ""
}

func (r Rect) String() string {
	return fmt.Sprintf("(%.0f,%.0f %.0fx%.0f)", r.X, r.Y, r.W, r.H)
}
