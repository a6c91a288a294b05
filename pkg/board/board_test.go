package board_test

import (
	"time"

	"github.com/tiohsa/flowboard/pkg/board"
	"github.com/tiohsa/flowboard/pkg/model"
)

// fixedNow anchors every age and due-date computation in the tests.
var fixedNow = time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)

// testSnapshot builds a three-column, two-lane board:
//
//	         todo        doing       done
//	alice    #1 (2 sub)  #2
//	bob                  #3          #4
//
// All capabilities enabled.
func testSnapshot() *model.BoardSnapshot {
	return &model.BoardSnapshot{
		Columns: []model.Column{
			{ID: "todo", Name: "Todo", Count: 1},
			{ID: "doing", Name: "Doing", WIPLimit: 2, Count: 2},
			{ID: "done", Name: "Done", Closed: true, Count: 1},
		},
		Lanes: []model.Lane{
			{ID: "lane-alice", Name: "Alice", Identity: "alice"},
			{ID: "lane-bob", Name: "Bob", Identity: "bob"},
		},
		Cards: []model.Card{
			{
				ID: 1, Subject: "Wire up login form", ColumnID: "todo",
				AssignedIdentity: "alice", Category: "Feature",
				Priority: model.PriorityNormal, UpdatedAt: fixedNow.Add(-24 * time.Hour),
				Editable: true, Deletable: true, URL: "https://tracker.example/issues/1",
				Subitems: []model.Subitem{
					{ID: 101, Subject: "Markup", Closed: true},
					{ID: 102, Subject: "Validation"},
				},
			},
			{
				ID: 2, Subject: "Refactor session store", ColumnID: "doing",
				AssignedIdentity: "alice", Category: "Chore",
				Priority: model.PriorityHigh, UpdatedAt: fixedNow.Add(-10 * 24 * time.Hour),
				Editable: true,
			},
			{
				ID: 3, Subject: "Fix pagination off-by-one", ColumnID: "doing",
				AssignedIdentity: "bob", Category: "Bug",
				Priority: model.PriorityCritical, UpdatedAt: fixedNow.Add(-2 * time.Hour),
				Editable: true, Deletable: true,
			},
			{
				ID: 4, Subject: "Ship release notes", ColumnID: "done",
				AssignedIdentity: "bob", DoneRatio: 100,
				Priority: model.PriorityLow, UpdatedAt: fixedNow.Add(-40 * 24 * time.Hour),
			},
		},
		Capabilities: model.Capabilities{CanMove: true, CanCreate: true, CanDelete: true},
		GeneratedAt:  fixedNow,
	}
}

// flatSnapshot is a single-lane (lanes disabled) board.
func flatSnapshot() *model.BoardSnapshot {
	snap := testSnapshot()
	snap.Lanes = nil
	return snap
}

// testRenderer returns a renderer with a deterministic clock.
func testRenderer() *board.Renderer {
	r := board.NewRenderer(board.DefaultTheme())
	r.Now = func() time.Time { return fixedNow }
	return r
}

// buildAll derives state, layout, and rect map for a snapshot with
// sub-items visible.
func buildAll(snap *model.BoardSnapshot) (*board.BoardState, *board.Layout, *board.RectMap) {
	s := board.BuildState(snap)
	l := board.ComputeLayout(s, board.DefaultMetrics(), board.ViewFlags{ShowSubtasks: true})
	rects := testRenderer().BuildRects(s, l)
	return s, l, rects
}
