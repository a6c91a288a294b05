package board_test

import (
	"testing"

	"github.com/tiohsa/flowboard/pkg/board"
	"github.com/tiohsa/flowboard/pkg/model"
)

func TestBuildState_CellAssignment(t *testing.T) {
	s := board.BuildState(testSnapshot())

	tests := []struct {
		cell board.CellKey
		want []int
	}{
		{board.NewCellKey("todo", "lane-alice"), []int{1}},
		{board.NewCellKey("doing", "lane-alice"), []int{2}},
		{board.NewCellKey("doing", "lane-bob"), []int{3}},
		{board.NewCellKey("done", "lane-bob"), []int{4}},
		{board.NewCellKey("todo", "lane-bob"), nil},
	}
	for _, tt := range tests {
		got := s.CellCards(tt.cell)
		if len(got) != len(tt.want) {
			t.Errorf("cell %s: got %v, want %v", tt.cell, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("cell %s: got %v, want %v", tt.cell, got, tt.want)
			}
		}
	}
}

func TestBuildState_OrderFollowsSnapshot(t *testing.T) {
	s := board.BuildState(testSnapshot())

	wantCols := []string{"todo", "doing", "done"}
	if len(s.ColumnOrder) != len(wantCols) {
		t.Fatalf("got %d columns, want %d", len(s.ColumnOrder), len(wantCols))
	}
	for i, id := range wantCols {
		if s.ColumnOrder[i] != id {
			t.Errorf("column %d: got %s, want %s", i, s.ColumnOrder[i], id)
		}
	}

	wantLanes := []string{"lane-alice", "lane-bob"}
	for i, id := range wantLanes {
		if s.LaneOrder[i] != id {
			t.Errorf("lane %d: got %s, want %s", i, s.LaneOrder[i], id)
		}
	}
}

func TestBuildState_LanesDisabled(t *testing.T) {
	s := board.BuildState(flatSnapshot())

	if len(s.LaneOrder) != 1 || s.LaneOrder[0] != model.LaneNone {
		t.Fatalf("expected single synthetic lane, got %v", s.LaneOrder)
	}
	// Every card lands in the synthetic lane regardless of identity.
	for _, id := range []int{1, 2, 3, 4} {
		card := s.Card(id)
		if card == nil {
			t.Fatalf("card %d missing", id)
		}
		if lane := s.LaneForCard(card); lane != model.LaneNone {
			t.Errorf("card %d: lane %s, want %s", id, lane, model.LaneNone)
		}
	}
}

func TestLaneForCard_UnmatchedIdentity(t *testing.T) {
	snap := testSnapshot()
	snap.Cards = append(snap.Cards, model.Card{
		ID: 5, Subject: "Orphan", ColumnID: "todo", AssignedIdentity: "mallory",
	})
	s := board.BuildState(snap)

	card := s.Card(5)
	if lane := s.LaneForCard(card); lane != model.LaneUnassigned {
		t.Errorf("unmatched identity resolved to %s, want %s", lane, model.LaneUnassigned)
	}
	// The sentinel bucket holds the card even though no lane row renders it.
	got := s.CellCards(board.NewCellKey("todo", model.LaneUnassigned))
	if len(got) != 1 || got[0] != 5 {
		t.Errorf("sentinel cell: got %v, want [5]", got)
	}
}

func TestLaneForCard_EmptyIdentity(t *testing.T) {
	snap := testSnapshot()
	snap.Cards = append(snap.Cards, model.Card{ID: 6, Subject: "Nobody's", ColumnID: "done"})
	s := board.BuildState(snap)

	if lane := s.LaneForCard(s.Card(6)); lane != model.LaneUnassigned {
		t.Errorf("empty identity resolved to %s, want %s", lane, model.LaneUnassigned)
	}
}

func TestBoardState_Accessors(t *testing.T) {
	s := board.BuildState(testSnapshot())

	if s.FirstColumn() != "todo" {
		t.Errorf("FirstColumn = %s, want todo", s.FirstColumn())
	}
	if s.CardCount() != 4 {
		t.Errorf("CardCount = %d, want 4", s.CardCount())
	}
	if !s.Capabilities().CanMove {
		t.Error("expected CanMove capability")
	}
	if _, ok := s.Column("doing"); !ok {
		t.Error("expected column doing")
	}
	if _, ok := s.Lane("lane-bob"); !ok {
		t.Error("expected lane lane-bob")
	}
	if s.Card(99) != nil {
		t.Error("expected nil for unknown card")
	}
}

func TestBuildState_NilSnapshot(t *testing.T) {
	s := board.BuildState(nil)
	if s.CardCount() != 0 {
		t.Errorf("expected empty state, got %d cards", s.CardCount())
	}
	if s.FirstColumn() != "" {
		t.Errorf("expected no first column, got %q", s.FirstColumn())
	}
}
