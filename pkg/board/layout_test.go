package board_test

import (
	"reflect"
	"testing"

	"pgregory.net/rapid"

	"github.com/tiohsa/flowboard/pkg/board"
	"github.com/tiohsa/flowboard/pkg/model"
)

func TestComputeLayout_Deterministic(t *testing.T) {
	s := board.BuildState(testSnapshot())
	m := board.DefaultMetrics()
	flags := board.ViewFlags{ShowSubtasks: true}

	a := board.ComputeLayout(s, m, flags)
	b := board.ComputeLayout(s, m, flags)

	if !reflect.DeepEqual(a, b) {
		t.Error("two layouts of the same state differ")
	}
}

func TestCardHeight_SubitemsGrowCard(t *testing.T) {
	m := board.DefaultMetrics()

	base := board.CardHeight(m, board.ViewFlags{ShowSubtasks: true}, 0)
	if base != m.CardBaseHeight {
		t.Errorf("no sub-items: height %f, want %f", base, m.CardBaseHeight)
	}

	two := board.CardHeight(m, board.ViewFlags{ShowSubtasks: true}, 2)
	want := m.CardBaseHeight + m.SubitemPadding + 2*m.SubitemRowHeight
	if two != want {
		t.Errorf("two sub-items: height %f, want %f", two, want)
	}

	// Hidden sub-items never affect height.
	hidden := board.CardHeight(m, board.ViewFlags{}, 5)
	if hidden != m.CardBaseHeight {
		t.Errorf("hidden sub-items: height %f, want %f", hidden, m.CardBaseHeight)
	}
}

func TestCardHeight_Monotonic(t *testing.T) {
	m := board.DefaultMetrics()
	flags := board.ViewFlags{ShowSubtasks: true}

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 50).Draw(t, "n")
		extra := rapid.IntRange(1, 50).Draw(t, "extra")

		h1 := board.CardHeight(m, flags, n)
		h2 := board.CardHeight(m, flags, n+extra)
		if h2 <= h1 {
			t.Fatalf("height not monotonic: %d sub-items -> %f, %d -> %f", n, h1, n+extra, h2)
		}
	})
}

func TestComputeLayout_LaneHeightIsTallestColumn(t *testing.T) {
	s := board.BuildState(testSnapshot())
	m := board.DefaultMetrics()
	flags := board.ViewFlags{ShowSubtasks: true}
	l := board.ComputeLayout(s, m, flags)

	// Alice's lane: todo holds card #1 with two sub-items, doing holds a
	// bare card. The sub-item card is taller and sets the lane height.
	band, ok := l.LaneBandFor("lane-alice")
	if !ok {
		t.Fatal("lane-alice missing from layout")
	}
	want := board.CardHeight(m, flags, 2) + 2*m.CellPadding
	if band.Height != want {
		t.Errorf("lane height %f, want %f", band.Height, want)
	}
}

func TestComputeLayout_EmptyLaneReservesPadding(t *testing.T) {
	snap := testSnapshot()
	snap.Lanes = append(snap.Lanes, model.Lane{ID: "lane-carol", Name: "Carol", Identity: "carol"})
	s := board.BuildState(snap)
	m := board.DefaultMetrics()
	l := board.ComputeLayout(s, m, board.ViewFlags{ShowSubtasks: true})

	band, ok := l.LaneBandFor("lane-carol")
	if !ok {
		t.Fatal("empty lane missing from layout")
	}
	if band.Height != 2*m.CellPadding {
		t.Errorf("empty lane height %f, want %f", band.Height, 2*m.CellPadding)
	}
}

func TestComputeLayout_BandsAreContiguous(t *testing.T) {
	s := board.BuildState(testSnapshot())
	m := board.DefaultMetrics()
	l := board.ComputeLayout(s, m, board.ViewFlags{ShowSubtasks: true})

	y := m.HeaderHeight
	for _, band := range l.Lanes {
		if band.Y != y {
			t.Errorf("lane %s starts at %f, want %f", band.LaneID, band.Y, y)
		}
		y += band.Height
	}
	if l.BoardHeight != y {
		t.Errorf("board height %f, want %f", l.BoardHeight, y)
	}
}

func TestComputeLayout_GridStartX(t *testing.T) {
	m := board.DefaultMetrics()

	withLanes := board.ComputeLayout(board.BuildState(testSnapshot()), m, board.ViewFlags{})
	if withLanes.GridStartX != m.LaneLabelWidth {
		t.Errorf("lanes enabled: grid start %f, want %f", withLanes.GridStartX, m.LaneLabelWidth)
	}

	flat := board.ComputeLayout(board.BuildState(flatSnapshot()), m, board.ViewFlags{})
	if flat.GridStartX != 0 {
		t.Errorf("lanes disabled: grid start %f, want 0", flat.GridStartX)
	}
	if len(flat.Lanes) != 1 {
		t.Fatalf("lanes disabled: %d bands, want 1", len(flat.Lanes))
	}

	wantWidth := 3 * m.ColumnWidth
	if flat.BoardWidth != wantWidth {
		t.Errorf("flat board width %f, want %f", flat.BoardWidth, wantWidth)
	}
}

func TestComputeLayout_GrowingBoardNeverShrinks(t *testing.T) {
	m := board.DefaultMetrics()
	flags := board.ViewFlags{ShowSubtasks: true}

	rapid.Check(t, func(t *rapid.T) {
		nCards := rapid.IntRange(0, 20).Draw(t, "cards")
		snap := &model.BoardSnapshot{
			Columns: []model.Column{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}},
		}
		for i := 0; i < nCards; i++ {
			col := "a"
			if rapid.Bool().Draw(t, "col") {
				col = "b"
			}
			snap.Cards = append(snap.Cards, model.Card{ID: i + 1, Subject: "c", ColumnID: col})
		}

		before := board.ComputeLayout(board.BuildState(snap), m, flags)

		extra := snap.Cards
		extra = append(extra, model.Card{ID: nCards + 1, Subject: "x", ColumnID: "a"})
		snap2 := &model.BoardSnapshot{Columns: snap.Columns, Cards: extra}
		after := board.ComputeLayout(board.BuildState(snap2), m, flags)

		if after.BoardHeight < before.BoardHeight {
			t.Fatalf("adding a card shrank the board: %f -> %f", before.BoardHeight, after.BoardHeight)
		}
	})
}
