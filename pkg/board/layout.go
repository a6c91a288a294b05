package board

// Metrics are the fixed pixel dimensions the layout engine works with.
// Column width is fixed; lane height is the only variable vertical
// dimension, driven entirely by card stacking.
type Metrics struct {
	ColumnWidth      float64
	HeaderHeight     float64
	LaneLabelWidth   float64
	CellPadding      float64
	CardGap          float64
	CardBaseHeight   float64
	SubitemRowHeight float64
	SubitemPadding   float64
	ButtonSize       float64
	DragThreshold    float64
}

// DefaultMetrics returns the standard board dimensions.
func DefaultMetrics() Metrics {
	return Metrics{
		ColumnWidth:      220,
		HeaderHeight:     40,
		LaneLabelWidth:   140,
		CellPadding:      8,
		CardGap:          8,
		CardBaseHeight:   72,
		SubitemRowHeight: 18,
		SubitemPadding:   6,
		ButtonSize:       16,
		DragThreshold:    4,
	}
}

// ViewFlags are the view options that influence geometry.
type ViewFlags struct {
	ShowSubtasks bool
	FitWidth     bool
}

// LaneBand is the computed vertical extent of one lane.
type LaneBand struct {
	LaneID string
	Y      float64
	Height float64
}

// Layout is the complete pixel geometry of one board state under one set
// of metrics and flags. It is the output of a pure function and safe to
// share; nothing mutates a Layout after ComputeLayout returns.
type Layout struct {
	HeaderHeight float64
	GridStartX   float64 // 0 when lanes are disabled
	Lanes        []LaneBand
	BoardWidth   float64
	BoardHeight  float64

	metrics Metrics
	flags   ViewFlags
}

// Metrics returns the metrics the layout was computed with.
func (l *Layout) Metrics() Metrics { return l.metrics }

// Flags returns the view flags the layout was computed with.
func (l *Layout) Flags() ViewFlags { return l.flags }

// CardHeight is the pure card sizing function: base height plus one row
// per visible sub-item and a separator padding when any exist.
func CardHeight(m Metrics, flags ViewFlags, subitemCount int) float64 {
	h := m.CardBaseHeight
	if flags.ShowSubtasks && subitemCount > 0 {
		h += m.SubitemPadding + float64(subitemCount)*m.SubitemRowHeight
	}
	return h
}

// stackHeight is the height of the card stack in one cell: card heights
// plus inter-card gaps. An empty cell stacks to zero.
func stackHeight(s *BoardState, m Metrics, flags ViewFlags, key CellKey) float64 {
	ids := s.CellCards(key)
	if len(ids) == 0 {
		return 0
	}
	var h float64
	for i, id := range ids {
		card := s.Card(id)
		if card == nil {
			continue
		}
		if i > 0 {
			h += m.CardGap
		}
		h += CardHeight(m, flags, len(card.Subitems))
	}
	return h
}

// ComputeLayout computes the full board geometry. It is deterministic and
// side-effect free so callers may memoize it on input identity. Lane
// height is the max over all columns of that lane's stacked card heights
// plus 2x cell padding; an all-empty lane still reserves the padding.
func ComputeLayout(s *BoardState, m Metrics, flags ViewFlags) *Layout {
	l := &Layout{
		HeaderHeight: m.HeaderHeight,
		metrics:      m,
		flags:        flags,
	}
	if s.Snapshot.LanesEnabled() {
		l.GridStartX = m.LaneLabelWidth
	}

	y := m.HeaderHeight
	l.Lanes = make([]LaneBand, 0, len(s.LaneOrder))
	for _, laneID := range s.LaneOrder {
		height := 2 * m.CellPadding
		for _, colID := range s.ColumnOrder {
			h := stackHeight(s, m, flags, NewCellKey(colID, laneID)) + 2*m.CellPadding
			if h > height {
				height = h
			}
		}
		l.Lanes = append(l.Lanes, LaneBand{LaneID: laneID, Y: y, Height: height})
		y += height
	}

	l.BoardWidth = l.GridStartX + float64(len(s.ColumnOrder))*m.ColumnWidth
	l.BoardHeight = y
	return l
}

// LaneBandFor returns the band for the given lane id, or false when the
// lane is not part of the layout (e.g. a sentinel cell with no lane row).
func (l *Layout) LaneBandFor(laneID string) (LaneBand, bool) {
	for _, band := range l.Lanes {
		if band.LaneID == laneID {
			return band, true
		}
	}
	return LaneBand{}, false
}

// ColumnX returns the left edge of the column at the given order index.
func (l *Layout) ColumnX(index int) float64 {
	return l.GridStartX + float64(index)*l.metrics.ColumnWidth
}
