package board

import (
	"fmt"
	"image/color"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"github.com/tiohsa/flowboard/pkg/model"
)

// RenderSVG writes the board as a standalone SVG document. It paints the
// same scene as the raster path, from the same rect map, so the two
// outputs agree on every position. The viewport transform is expressed
// as a single <g> wrapping the board.
func (r *Renderer) RenderSVG(w io.Writer, s *BoardState, l *Layout, rects *RectMap, drag *DragState, vp *Viewport) error {
	width, height := int(vp.Width), int(vp.Height)
	if width <= 0 {
		width = int(l.BoardWidth)
	}
	if height <= 0 {
		height = int(l.BoardHeight)
	}

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, fill(r.Theme.Background))

	scale := vp.Scale(l.BoardWidth)
	canvas.Gtransform(fmt.Sprintf("scale(%.4f) translate(%.2f,%.2f)", scale, -vp.ScrollX, -vp.ScrollY))

	r.svgHeaders(canvas, s, l)
	r.svgLanes(canvas, s, l, rects, drag)
	r.svgCards(canvas, s, l, rects)
	r.svgDragOverlay(canvas, s, rects, drag)

	canvas.Gend()
	canvas.End()
	return nil
}

func (r *Renderer) svgHeaders(canvas *svg.SVG, s *BoardState, l *Layout) {
	t := r.Theme
	m := l.Metrics()

	canvas.Rect(0, 0, int(l.BoardWidth), int(l.HeaderHeight), fill(t.HeaderBG))

	for i, colID := range s.ColumnOrder {
		col, ok := s.Column(colID)
		if !ok {
			continue
		}
		x := int(l.ColumnX(i))
		midY := int(l.HeaderHeight/2) + 4

		canvas.Line(x, 0, x, int(l.HeaderHeight), stroke(t.GridLine, 1))
		canvas.Text(x+10, midY, fitText(col.Name, m.ColumnWidth-70), textStyle(t.HeaderText, 13, "bold"))

		if col.WIPLimit > 0 {
			canvas.Text(x+int(m.ColumnWidth)-10, midY, wipBadgeText(col),
				textStyle(t.WIPColor(col.Count, col.WIPLimit), 13, "bold")+";text-anchor:end")
		}
	}
}

func (r *Renderer) svgLanes(canvas *svg.SVG, s *BoardState, l *Layout, rects *RectMap, drag *DragState) {
	t := r.Theme
	m := l.Metrics()
	lanesEnabled := s.Snapshot.LanesEnabled()

	for _, band := range l.Lanes {
		if lanesEnabled {
			lane, _ := s.Lane(band.LaneID)
			canvas.Rect(0, int(band.Y), int(m.LaneLabelWidth), int(band.Height), fill(t.LaneBG))
			canvas.Text(8, int(band.Y)+20, fitText(lane.Name, m.LaneLabelWidth-30), textStyle(t.LaneText, 12, ""))
		}

		for _, colID := range s.ColumnOrder {
			key := NewCellKey(colID, band.LaneID)
			cell := rects.Cells[key]

			bg := t.CellBG
			if drag != nil && drag.Dragging && drag.TargetCell == key {
				bg = t.DropTarget
			}
			canvas.Rect(int(cell.X), int(cell.Y), int(cell.W), int(cell.H),
				fmt.Sprintf("%s;%s", fill(bg), stroke(t.GridLine, 1)))
		}

		if add, ok := rects.AddButtons[band.LaneID]; ok {
			canvas.Roundrect(int(add.X), int(add.Y), int(add.W), int(add.H), 3, 3, fill(t.Accent))
			canvas.Text(int(add.X+add.W/2), int(add.Y+add.H/2)+4, "+", textStyle(t.CellBG, 12, "bold")+";text-anchor:middle")
		}
	}
}

func (r *Renderer) svgCards(canvas *svg.SVG, s *BoardState, l *Layout, rects *RectMap) {
	for _, band := range l.Lanes {
		for _, colID := range s.ColumnOrder {
			for _, id := range s.CellCards(NewCellKey(colID, band.LaneID)) {
				card := s.Card(id)
				if card == nil {
					continue
				}
				if cr, ok := rects.Cards[id]; ok {
					r.svgCard(canvas, l, rects, card, cr)
				}
			}
		}
	}
}

func (r *Renderer) svgCard(canvas *svg.SVG, l *Layout, rects *RectMap, card *model.Card, cr Rect) {
	t := r.Theme
	m := l.Metrics()
	now := r.Now()

	canvas.Roundrect(int(cr.X), int(cr.Y), int(cr.W), int(cr.H), 6, 6,
		fmt.Sprintf("%s;%s", fill(t.CategoryColor(card.Category)), stroke(t.CardBorder, 1.2)))

	if sr, ok := rects.SubjectLabels[card.ID]; ok {
		canvas.Text(int(sr.X), int(sr.Y)+12, fitText(card.Subject, sr.W), textStyle(t.CardText, 12, "bold"))
	}

	if br, ok := rects.InfoButtons[card.ID]; ok {
		r.svgIcon(canvas, br, "i")
	}
	if br, ok := rects.EditButtons[card.ID]; ok {
		r.svgIcon(canvas, br, "e")
	}
	if br, ok := rects.DeleteButtons[card.ID]; ok {
		r.svgIcon(canvas, br, "x")
	}

	meta := card.AssignedIdentity
	if card.Project != "" {
		if meta != "" {
			meta += " / "
		}
		meta += card.Project
	}
	if meta != "" {
		canvas.Text(int(cr.X)+8, int(cr.Y)+38, fitText(meta, cr.W-44), textStyle(t.Subtle, 11, ""))
	}

	bx := cr.X + 8
	by := cr.Y + m.CardBaseHeight - 16
	if card.Priority <= model.PriorityHigh {
		bx = r.svgBadge(canvas, bx, by, priorityBadgeText(card.Priority), t.Accent)
	}
	if card.DueDate != nil {
		bx = r.svgBadge(canvas, bx, by, formatDue(*card.DueDate, now), dueColor(t, *card.DueDate, now))
	}
	if age := now.Sub(card.UpdatedAt); !card.UpdatedAt.IsZero() && age >= r.Aging.WarnAfter {
		r.svgBadge(canvas, bx, by, formatAge(age), r.Aging.Color(t, age))
	}

	r.svgProgressRing(canvas, cr.X+cr.W-16, cr.Y+m.CardBaseHeight-16, 8, card.DoneRatio)

	if l.Flags().ShowSubtasks && len(card.Subitems) > 0 {
		sepY := int(cr.Y + m.CardBaseHeight)
		canvas.Line(int(cr.X)+4, sepY, int(cr.X+cr.W)-4, sepY, stroke(t.GridLine, 1))

		for _, sub := range card.Subitems {
			check := rects.SubitemChecks[sub.ID]
			label := rects.SubitemLabels[sub.ID]
			r.svgCheckbox(canvas, check, sub.Closed)

			c := t.CardText
			if sub.Closed {
				c = t.Subtle
			}
			text := fitText(sub.Subject, label.W)
			ty := int(label.Y + label.H/2)
			style := textStyle(c, 11, "")
			if sub.Closed {
				style += ";text-decoration:line-through"
			}
			canvas.Text(int(label.X), ty+4, text, style)
		}
	}
}

func (r *Renderer) svgIcon(canvas *svg.SVG, b Rect, glyph string) {
	t := r.Theme
	canvas.Roundrect(int(b.X), int(b.Y), int(b.W), int(b.H), 3, 3,
		fmt.Sprintf("fill:none;%s", stroke(t.Subtle, 1)))
	canvas.Text(int(b.X+b.W/2), int(b.Y+b.H/2)+4, glyph, textStyle(t.Subtle, 10, "")+";text-anchor:middle")
}

func (r *Renderer) svgBadge(canvas *svg.SVG, x, y float64, text string, c color.RGBA) float64 {
	w := float64(len(text))*approxCharWidth + 10
	canvas.Roundrect(int(x), int(y)-7, int(w), 14, 7, 7, fill(c))
	canvas.Text(int(x+w/2), int(y)+4, text, textStyle(r.Theme.CellBG, 10, "bold")+";text-anchor:middle")
	return x + w + 6
}

func (r *Renderer) svgProgressRing(canvas *svg.SVG, cx, cy, radius float64, doneRatio int) {
	t := r.Theme
	canvas.Circle(int(cx), int(cy), int(radius), fmt.Sprintf("fill:none;%s", stroke(t.ProgressTrack, 3)))

	if doneRatio <= 0 {
		return
	}
	if doneRatio > 100 {
		doneRatio = 100
	}
	if doneRatio == 100 {
		canvas.Circle(int(cx), int(cy), int(radius), fmt.Sprintf("fill:none;%s", stroke(t.ProgressRing, 3)))
		return
	}
	// Arc from 12 o'clock, clockwise.
	frac := float64(doneRatio) / 100
	theta := -math.Pi/2 + 2*math.Pi*frac
	x1, y1 := cx, cy-radius
	x2, y2 := cx+radius*math.Cos(theta), cy+radius*math.Sin(theta)
	large := 0
	if frac > 0.5 {
		large = 1
	}
	canvas.Path(fmt.Sprintf("M %.1f %.1f A %.1f %.1f 0 %d 1 %.1f %.1f", x1, y1, radius, radius, large, x2, y2),
		fmt.Sprintf("fill:none;%s", stroke(t.ProgressRing, 3)))
}

func (r *Renderer) svgCheckbox(canvas *svg.SVG, b Rect, closed bool) {
	t := r.Theme
	if closed {
		canvas.Roundrect(int(b.X), int(b.Y), int(b.W), int(b.H), 2, 2, fill(t.CheckboxDone))
		canvas.Polyline(
			[]int{int(b.X) + 2, int(b.X+b.W/2) - 1, int(b.X+b.W) - 2},
			[]int{int(b.Y + b.H/2), int(b.Y+b.H) - 3, int(b.Y) + 2},
			fmt.Sprintf("fill:none;%s", stroke(t.CellBG, 1.5)),
		)
	} else {
		canvas.Roundrect(int(b.X), int(b.Y), int(b.W), int(b.H), 2, 2,
			fmt.Sprintf("fill:none;%s", stroke(t.CheckboxOpen, 1.2)))
	}
}

func (r *Renderer) svgDragOverlay(canvas *svg.SVG, s *BoardState, rects *RectMap, drag *DragState) {
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

	x := int(home.X + drag.Current.X - drag.Start.X)
	y := int(home.Y + drag.Current.Y - drag.Start.Y)
	opacity := float64(t.OverlayAlpha) / 255

	canvas.Roundrect(x, y, int(home.W), int(home.H), 6, 6,
		fmt.Sprintf("%s;%s;opacity:%.2f", fill(t.CategoryColor(card.Category)), stroke(t.CardBorder, 1.5), opacity))
	canvas.Text(x+8, y+16, fitText(card.Subject, home.W-16),
		textStyle(t.CardText, 12, "bold")+fmt.Sprintf(";opacity:%.2f", opacity))
}

func fill(c color.RGBA) string {
	return fmt.Sprintf("fill:%s", css(c))
}

func stroke(c color.RGBA, w float64) string {
	return fmt.Sprintf("stroke:%s;stroke-width:%.1f", css(c), w)
}

func textStyle(c color.RGBA, size int, weight string) string {
	s := fmt.Sprintf("fill:%s;font-size:%dpx;font-family:monospace", css(c), size)
	if weight != "" {
		s += ";font-weight:" + weight
	}
	return s
}
