package board

import (
	"github.com/tiohsa/flowboard/pkg/model"
)

// BoardState is the derived, render-ready form of one BoardSnapshot:
// stable orderings plus per-cell card-id lists. Like the snapshot it is
// immutable once built; a new snapshot produces a whole new state.
type BoardState struct {
	Snapshot *model.BoardSnapshot

	ColumnOrder []string
	LaneOrder   []string

	Columns   map[string]model.Column
	Lanes     map[string]model.Lane
	CardsByID map[int]*model.Card

	// CardsByCell maps "columnID:laneID" to card ids in snapshot order.
	// Every id in a cell list exists in CardsByID, and every card appears
	// in exactly one cell list.
	CardsByCell map[CellKey][]int

	// identityLane maps an assignee identity to its lane id for
	// lane-grouping-by-identity mode.
	identityLane map[string]string
}

// BuildState derives a BoardState from a snapshot in a single pass over
// the cards. The builder performs no sorting; the owner already ordered
// the snapshot.
func BuildState(snap *model.BoardSnapshot) *BoardState {
	if snap == nil {
		snap = &model.BoardSnapshot{}
	}

	s := &BoardState{
		Snapshot:     snap,
		ColumnOrder:  make([]string, 0, len(snap.Columns)),
		LaneOrder:    make([]string, 0, len(snap.Lanes)),
		Columns:      make(map[string]model.Column, len(snap.Columns)),
		Lanes:        make(map[string]model.Lane, len(snap.Lanes)),
		CardsByID:    make(map[int]*model.Card, len(snap.Cards)),
		CardsByCell:  make(map[CellKey][]int),
		identityLane: make(map[string]string, len(snap.Lanes)),
	}

	for i := range snap.Columns {
		col := snap.Columns[i]
		s.ColumnOrder = append(s.ColumnOrder, col.ID)
		s.Columns[col.ID] = col
	}

	if snap.LanesEnabled() {
		for i := range snap.Lanes {
			lane := snap.Lanes[i]
			s.LaneOrder = append(s.LaneOrder, lane.ID)
			s.Lanes[lane.ID] = lane
			if lane.Identity != "" {
				s.identityLane[lane.Identity] = lane.ID
			}
		}
	} else {
		// Lane grouping disabled: one synthetic lane spans the board.
		s.LaneOrder = append(s.LaneOrder, model.LaneNone)
		s.Lanes[model.LaneNone] = model.Lane{ID: model.LaneNone}
	}

	for i := range snap.Cards {
		card := &snap.Cards[i]
		s.CardsByID[card.ID] = card
		key := NewCellKey(card.ColumnID, s.LaneForCard(card))
		s.CardsByCell[key] = append(s.CardsByCell[key], card.ID)
	}

	return s
}

// LaneForCard resolves the lane id a card belongs to. With lane grouping
// disabled every card lands in the synthetic "none" lane; otherwise the
// card's assigned identity is matched exactly against the known lanes and
// falls back to the "unassigned" sentinel bucket. Cards may therefore
// resolve to a lane id that is absent from LaneOrder; the layout engine
// tolerates those cells by never rendering them.
func (s *BoardState) LaneForCard(card *model.Card) string {
	if len(s.identityLane) == 0 && len(s.LaneOrder) == 1 && s.LaneOrder[0] == model.LaneNone {
		return model.LaneNone
	}
	if card.AssignedIdentity != "" {
		if laneID, ok := s.identityLane[card.AssignedIdentity]; ok {
			return laneID
		}
	}
	return model.LaneUnassigned
}

// CellCards returns the card ids stacked in the given cell, in snapshot
// order. A missing cell yields an empty list, never a panic.
func (s *BoardState) CellCards(key CellKey) []int {
	return s.CardsByCell[key]
}

// Card returns the card with the given id, or nil.
func (s *BoardState) Card(id int) *model.Card {
	return s.CardsByID[id]
}

// Lane returns the lane with the given id and whether it exists.
func (s *BoardState) Lane(id string) (model.Lane, bool) {
	l, ok := s.Lanes[id]
	return l, ok
}

// Column returns the column with the given id and whether it exists.
func (s *BoardState) Column(id string) (model.Column, bool) {
	c, ok := s.Columns[id]
	return c, ok
}

// FirstColumn returns the id of the leftmost column, or "".
func (s *BoardState) FirstColumn() string {
	if len(s.ColumnOrder) == 0 {
		return ""
	}
	return s.ColumnOrder[0]
}

// Capabilities returns the snapshot's permission flags.
func (s *BoardState) Capabilities() model.Capabilities {
	return s.Snapshot.Capabilities
}

// CardCount returns the total number of cards on the board.
func (s *BoardState) CardCount() int {
	return len(s.CardsByID)
}
