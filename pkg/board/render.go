package board

import (
	"image"
	"image/color"
	"math"
	"strconv"
	"time"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/tiohsa/flowboard/pkg/model"
)

// Renderer paints a board state onto a 2D surface and registers every
// hit-testable rectangle while doing so. Rendering is idempotent:
// identical inputs produce an identical rect map and identical pixels.
type Renderer struct {
	Theme Theme
	Aging AgingTiers

	// Now supplies the clock for age and due-date badges. Injectable so
	// renders are reproducible under test.
	Now func() time.Time
}

// NewRenderer creates a renderer with the given theme, fixed aging
// tiers, and the wall clock.
func NewRenderer(theme Theme) *Renderer {
	return &Renderer{
		Theme: theme,
		Aging: FixedAgingTiers(),
		Now:   time.Now,
	}
}

// --- rect map construction -------------------------------------------------

// BuildRects registers every hit-testable rectangle for one render pass,
// from scratch, in board coordinates. The per-card interactive
// sub-regions are registered alongside their card; hit-test priority is
// enforced by the fixed category order in RectMap.HitTest, not by
// insertion order.
func (r *Renderer) BuildRects(s *BoardState, l *Layout) *RectMap {
	m := l.Metrics()
	flags := l.Flags()
	caps := s.Capabilities()
	rects := NewRectMap()

	for i, colID := range s.ColumnOrder {
		rects.Headers[colID] = Rect{X: l.ColumnX(i), Y: 0, W: m.ColumnWidth, H: l.HeaderHeight}
	}

	lanesEnabled := s.Snapshot.LanesEnabled()
	for _, band := range l.Lanes {
		if lanesEnabled {
			rects.LaneLabels[band.LaneID] = Rect{X: 0, Y: band.Y, W: m.LaneLabelWidth, H: band.Height}
			if caps.CanCreate {
				rects.AddButtons[band.LaneID] = Rect{
					X: m.LaneLabelWidth - m.ButtonSize - 8,
					Y: band.Y + 8,
					W: m.ButtonSize,
					H: m.ButtonSize,
				}
			}
		} else if caps.CanCreate {
			// No lane label column to host the affordance; park it at the
			// right edge of the header row.
			rects.AddButtons[band.LaneID] = Rect{
				X: l.BoardWidth - m.ButtonSize - 8,
				Y: (l.HeaderHeight - m.ButtonSize) / 2,
				W: m.ButtonSize,
				H: m.ButtonSize,
			}
		}

		for i, colID := range s.ColumnOrder {
			key := NewCellKey(colID, band.LaneID)
			cell := Rect{X: l.ColumnX(i), Y: band.Y, W: m.ColumnWidth, H: band.Height}
			rects.Cells[key] = cell

			cardY := band.Y + m.CellPadding
			for _, id := range s.CellCards(key) {
				card := s.Card(id)
				if card == nil {
					continue
				}
				h := CardHeight(m, flags, len(card.Subitems))
				cardRect := Rect{
					X: cell.X + m.CellPadding,
					Y: cardY,
					W: m.ColumnWidth - 2*m.CellPadding,
					H: h,
				}
				r.registerCard(rects, s, m, flags, card, cardRect)
				cardY += h + m.CardGap
			}
		}
	}

	return rects
}

// registerCard records the card body and its interactive sub-regions.
func (r *Renderer) registerCard(rects *RectMap, s *BoardState, m Metrics, flags ViewFlags, card *model.Card, cr Rect) {
	caps := s.Capabilities()
	rects.Cards[card.ID] = cr

	// Icon row, right-aligned: info, edit, delete.
	bx := cr.X + cr.W - m.ButtonSize - 4
	if caps.CanDelete && card.Deletable {
		rects.DeleteButtons[card.ID] = Rect{X: bx, Y: cr.Y + 4, W: m.ButtonSize, H: m.ButtonSize}
		bx -= m.ButtonSize + 4
	}
	if card.Editable {
		rects.EditButtons[card.ID] = Rect{X: bx, Y: cr.Y + 4, W: m.ButtonSize, H: m.ButtonSize}
		bx -= m.ButtonSize + 4
	}
	rects.InfoButtons[card.ID] = Rect{X: bx, Y: cr.Y + 4, W: m.ButtonSize, H: m.ButtonSize}

	rects.SubjectLabels[card.ID] = Rect{X: cr.X + 8, Y: cr.Y + 4, W: bx - cr.X - 12, H: 16}

	if flags.ShowSubtasks && len(card.Subitems) > 0 {
		rowY := cr.Y + m.CardBaseHeight + m.SubitemPadding
		for _, sub := range card.Subitems {
			rects.SubitemChecks[sub.ID] = Rect{X: cr.X + 8, Y: rowY + (m.SubitemRowHeight-12)/2, W: 12, H: 12}
			rects.SubitemLabels[sub.ID] = Rect{X: cr.X + 26, Y: rowY, W: cr.W - 34, H: m.SubitemRowHeight}
			rects.subitemOwner[sub.ID] = card.ID
			rowY += m.SubitemRowHeight
		}
	}
}

// --- raster painting -------------------------------------------------------

// RenderImage paints the board into a viewport-sized raster image,
// applying the viewport's combined scale+translate transform so the rect
// map stays expressed in board coordinates throughout.
func (r *Renderer) RenderImage(s *BoardState, l *Layout, rects *RectMap, drag *DragState, vp *Viewport) image.Image {
	w, h := int(vp.Width), int(vp.Height)
	if w <= 0 {
		w = int(l.BoardWidth)
	}
	if h <= 0 {
		h = int(l.BoardHeight)
	}
	dc := gg.NewContext(w, h)
	dc.SetColor(r.Theme.Background)
	dc.Clear()

	scale := vp.Scale(l.BoardWidth)
	dc.Scale(scale, scale)
	dc.Translate(-vp.ScrollX, -vp.ScrollY)

	r.Paint(dc, s, l, rects, drag)
	return dc.Image()
}

// Paint draws the whole board onto an already-transformed context, in a
// fixed order: headers, lane labels, cells and grid, cards, then the
// floating drag overlay.
func (r *Renderer) Paint(dc *gg.Context, s *BoardState, l *Layout, rects *RectMap, drag *DragState) {
	dc.SetFontFace(basicfont.Face7x13)

	r.paintHeaders(dc, s, l)
	r.paintLanes(dc, s, l, rects, drag)
	r.paintCards(dc, s, l, rects)
	r.paintDragOverlay(dc, s, l, rects, drag)
}

func (r *Renderer) paintHeaders(dc *gg.Context, s *BoardState, l *Layout) {
	t := r.Theme
	m := l.Metrics()

	dc.SetColor(t.HeaderBG)
	dc.DrawRectangle(0, 0, l.BoardWidth, l.HeaderHeight)
	dc.Fill()

	for i, colID := range s.ColumnOrder {
		col, ok := s.Column(colID)
		if !ok {
			continue
		}
		x := l.ColumnX(i)

		dc.SetColor(t.GridLine)
		dc.SetLineWidth(1)
		dc.DrawLine(x, 0, x, l.HeaderHeight)
		dc.Stroke()

		dc.SetColor(t.HeaderText)
		name := fitText(col.Name, m.ColumnWidth-70)
		dc.DrawStringAnchored(name, x+10, l.HeaderHeight/2, 0, 0.35)

		if col.WIPLimit > 0 {
			badge := wipBadgeText(col)
			dc.SetColor(t.WIPColor(col.Count, col.WIPLimit))
			dc.DrawStringAnchored(badge, x+m.ColumnWidth-10, l.HeaderHeight/2, 1, 0.35)
		}
	}
}

func (r *Renderer) paintLanes(dc *gg.Context, s *BoardState, l *Layout, rects *RectMap, drag *DragState) {
	t := r.Theme
	m := l.Metrics()
	lanesEnabled := s.Snapshot.LanesEnabled()

	for _, band := range l.Lanes {
		if lanesEnabled {
			lane, _ := s.Lane(band.LaneID)
			dc.SetColor(t.LaneBG)
			dc.DrawRectangle(0, band.Y, m.LaneLabelWidth, band.Height)
			dc.Fill()
			dc.SetColor(t.LaneText)
			dc.DrawStringAnchored(fitText(lane.Name, m.LaneLabelWidth-30), 8, band.Y+16, 0, 0.35)
		}

		for _, colID := range s.ColumnOrder {
			key := NewCellKey(colID, band.LaneID)
			cell := rects.Cells[key]

			bg := t.CellBG
			if drag != nil && drag.Dragging && drag.TargetCell == key {
				bg = t.DropTarget
			}
			dc.SetColor(bg)
			dc.DrawRectangle(cell.X, cell.Y, cell.W, cell.H)
			dc.Fill()

			dc.SetColor(t.GridLine)
			dc.SetLineWidth(1)
			dc.DrawRectangle(cell.X, cell.Y, cell.W, cell.H)
			dc.Stroke()
		}

		if add, ok := rects.AddButtons[band.LaneID]; ok {
			r.paintAddButton(dc, add)
		}
	}
}

func (r *Renderer) paintAddButton(dc *gg.Context, b Rect) {
	t := r.Theme
	dc.SetColor(t.Accent)
	dc.DrawRoundedRectangle(b.X, b.Y, b.W, b.H, 3)
	dc.Fill()
	dc.SetColor(t.CellBG)
	dc.DrawStringAnchored("+", b.X+b.W/2, b.Y+b.H/2, 0.5, 0.35)
}

func (r *Renderer) paintCards(dc *gg.Context, s *BoardState, l *Layout, rects *RectMap) {
	for _, band := range l.Lanes {
		for _, colID := range s.ColumnOrder {
			for _, id := range s.CellCards(NewCellKey(colID, band.LaneID)) {
				card := s.Card(id)
				if card == nil {
					continue
				}
				if cr, ok := rects.Cards[id]; ok {
					r.paintCard(dc, s, l, rects, card, cr)
				}
			}
		}
	}
}

func (r *Renderer) paintCard(dc *gg.Context, s *BoardState, l *Layout, rects *RectMap, card *model.Card, cr Rect) {
	t := r.Theme
	m := l.Metrics()
	now := r.Now()

	dc.SetColor(t.CategoryColor(card.Category))
	dc.DrawRoundedRectangle(cr.X, cr.Y, cr.W, cr.H, 6)
	dc.Fill()
	dc.SetColor(t.CardBorder)
	dc.SetLineWidth(1.2)
	dc.DrawRoundedRectangle(cr.X, cr.Y, cr.W, cr.H, 6)
	dc.Stroke()

	// Subject, truncated to the label rect.
	if sr, ok := rects.SubjectLabels[card.ID]; ok {
		dc.SetColor(t.CardText)
		dc.DrawStringAnchored(fitText(card.Subject, sr.W), sr.X, sr.Y+8, 0, 0.35)
	}

	// Icon row.
	if br, ok := rects.InfoButtons[card.ID]; ok {
		r.paintIcon(dc, br, "i")
	}
	if br, ok := rects.EditButtons[card.ID]; ok {
		r.paintIcon(dc, br, "e")
	}
	if br, ok := rects.DeleteButtons[card.ID]; ok {
		r.paintIcon(dc, br, "x")
	}

	// Metadata row: assignee and project.
	meta := card.AssignedIdentity
	if card.Project != "" {
		if meta != "" {
			meta += " / "
		}
		meta += card.Project
	}
	if meta != "" {
		dc.SetColor(t.Subtle)
		dc.DrawStringAnchored(fitText(meta, cr.W-44), cr.X+8, cr.Y+34, 0, 0.35)
	}

	// Badge row: priority, due date, aging.
	bx := cr.X + 8
	by := cr.Y + m.CardBaseHeight - 16
	if card.Priority <= model.PriorityHigh {
		bx = r.paintBadge(dc, bx, by, priorityBadgeText(card.Priority), t.Accent)
	}
	if card.DueDate != nil {
		bx = r.paintBadge(dc, bx, by, formatDue(*card.DueDate, now), dueColor(t, *card.DueDate, now))
	}
	if age := now.Sub(card.UpdatedAt); !card.UpdatedAt.IsZero() && age >= r.Aging.WarnAfter {
		r.paintBadge(dc, bx, by, formatAge(age), r.Aging.Color(t, age))
	}

	// Completion ring at bottom right.
	r.paintProgressRing(dc, cr.X+cr.W-16, cr.Y+m.CardBaseHeight-16, 8, card.DoneRatio)

	// Sub-item rows.
	if l.Flags().ShowSubtasks && len(card.Subitems) > 0 {
		sepY := cr.Y + m.CardBaseHeight
		dc.SetColor(t.GridLine)
		dc.SetLineWidth(1)
		dc.DrawLine(cr.X+4, sepY, cr.X+cr.W-4, sepY)
		dc.Stroke()

		for _, sub := range card.Subitems {
			check := rects.SubitemChecks[sub.ID]
			label := rects.SubitemLabels[sub.ID]
			r.paintCheckbox(dc, check, sub.Closed)

			dc.SetColor(t.CardText)
			if sub.Closed {
				dc.SetColor(t.Subtle)
			}
			text := fitText(sub.Subject, label.W)
			ty := label.Y + label.H/2
			dc.DrawStringAnchored(text, label.X, ty, 0, 0.35)
			if sub.Closed {
				// Strike-through.
				tw, _ := dc.MeasureString(text)
				dc.DrawLine(label.X, ty, label.X+tw, ty)
				dc.Stroke()
			}
		}
	}
}

func (r *Renderer) paintIcon(dc *gg.Context, b Rect, glyph string) {
	t := r.Theme
	dc.SetColor(t.Subtle)
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(b.X, b.Y, b.W, b.H, 3)
	dc.Stroke()
	dc.DrawStringAnchored(glyph, b.X+b.W/2, b.Y+b.H/2, 0.5, 0.35)
}

// paintBadge draws one pill badge and returns the x where the next badge
// starts.
func (r *Renderer) paintBadge(dc *gg.Context, x, y float64, text string, c color.RGBA) float64 {
	w := float64(len(text))*approxCharWidth + 10
	dc.SetColor(c)
	dc.DrawRoundedRectangle(x, y-7, w, 14, 7)
	dc.Fill()
	dc.SetColor(r.Theme.CellBG)
	dc.DrawStringAnchored(text, x+w/2, y, 0.5, 0.35)
	return x + w + 6
}

func (r *Renderer) paintProgressRing(dc *gg.Context, cx, cy, radius float64, doneRatio int) {
	t := r.Theme
	dc.SetLineWidth(3)
	dc.SetColor(t.ProgressTrack)
	dc.DrawCircle(cx, cy, radius)
	dc.Stroke()

	if doneRatio <= 0 {
		return
	}
	if doneRatio > 100 {
		doneRatio = 100
	}
	dc.SetColor(t.ProgressRing)
	start := -math.Pi / 2
	dc.DrawArc(cx, cy, radius, start, start+2*math.Pi*float64(doneRatio)/100)
	dc.Stroke()
}

func (r *Renderer) paintCheckbox(dc *gg.Context, b Rect, closed bool) {
	t := r.Theme
	if closed {
		dc.SetColor(t.CheckboxDone)
		dc.DrawRoundedRectangle(b.X, b.Y, b.W, b.H, 2)
		dc.Fill()
		dc.SetColor(t.CellBG)
		dc.SetLineWidth(1.5)
		dc.DrawLine(b.X+2, b.Y+b.H/2, b.X+b.W/2-1, b.Y+b.H-3)
		dc.DrawLine(b.X+b.W/2-1, b.Y+b.H-3, b.X+b.W-2, b.Y+2)
		dc.Stroke()
	} else {
		dc.SetColor(t.CheckboxOpen)
		dc.SetLineWidth(1.2)
		dc.DrawRoundedRectangle(b.X, b.Y, b.W, b.H, 2)
		dc.Stroke()
	}
}

// paintDragOverlay draws the semi-transparent floating copy of the
// dragged card, displaced from its home position by the pointer delta.
func (r *Renderer) paintDragOverlay(dc *gg.Context, s *BoardState, l *Layout, rects *RectMap, drag *DragState) {
	if drag == nil || !drag.Dragging {
		return
	}
	card := s.Card(drag.IssueID)
	if card == nil {
		return
	}
	home, ok := rects.Cards[drag.IssueID]
	if !ok {
		return
	}
	t := r.Theme

	pos := Rect{
		X: home.X + drag.Current.X - drag.Start.X,
		Y: home.Y + drag.Current.Y - drag.Start.Y,
		W: home.W,
		H: home.H,
	}
	dc.SetColor(withAlpha(t.CategoryColor(card.Category), t.OverlayAlpha))
	dc.DrawRoundedRectangle(pos.X, pos.Y, pos.W, pos.H, 6)
	dc.Fill()
	dc.SetColor(withAlpha(t.CardBorder, t.OverlayAlpha))
	dc.SetLineWidth(1.5)
	dc.DrawRoundedRectangle(pos.X, pos.Y, pos.W, pos.H, 6)
	dc.Stroke()
	dc.SetColor(withAlpha(t.CardText, t.OverlayAlpha))
	dc.DrawStringAnchored(fitText(card.Subject, pos.W-16), pos.X+8, pos.Y+12, 0, 0.35)
}

func wipBadgeText(col model.Column) string {
	return strconv.Itoa(col.Count) + " / " + strconv.Itoa(col.WIPLimit)
}

func priorityBadgeText(p model.Priority) string {
	return "P" + strconv.Itoa(int(p))
}
