package board

import (
	"math"
	"strconv"

	"github.com/tiohsa/flowboard/pkg/debug"
)

// CommandType names the semantic actions the engine can emit.
type CommandType string

const (
	CommandMoveIssue     CommandType = "move_issue"
	CommandOpenCard      CommandType = "open_card"
	CommandCreateRequest CommandType = "create_request"
	CommandDeleteRequest CommandType = "delete_request"
	CommandEditRequest   CommandType = "edit_request"
	CommandToggleSubitem CommandType = "toggle_subitem"
)

// Command is one outgoing board command. move_issue is the only
// mutation; every other type is an intent carrying just an id or
// context, leaving persistence entirely to the owner.
type Command struct {
	Type             CommandType `json:"type"`
	IssueID          int         `json:"issue_id,omitempty"`
	ColumnID         string      `json:"column_id,omitempty"`
	LaneID           string      `json:"lane_id,omitempty"`
	AssignedIdentity string      `json:"assigned_identity,omitempty"`
	SubitemID        int         `json:"subitem_id,omitempty"`
	SubitemClosed    bool        `json:"subitem_closed,omitempty"`
	Target           string      `json:"target,omitempty"` // url-or-id for edit_request
}

// CommandSink receives commands fire-and-forget. The sink owns retry and
// rollback semantics; the engine never waits on it.
type CommandSink func(Command)

type interactionPhase int

const (
	phaseIdle interactionPhase = iota
	phasePressed
	phaseDragging
)

// DragState tracks the single in-flight press or drag. At most one card
// can be pressed at a time (single-pointer model).
type DragState struct {
	IssueID    int
	Start      Point
	Current    Point
	Origin     CellKey
	Dragging   bool
	TargetCell CellKey
}

// Interaction is the press -> maybe-drag -> release state machine. It
// reasons exclusively in board coordinates; callers convert screen
// points through the Viewport first.
type Interaction struct {
	phase     interactionPhase
	drag      DragState
	threshold float64
	sink      CommandSink
}

// NewInteraction creates a state machine with the given drag threshold
// in board pixels. A nil sink discards commands.
func NewInteraction(threshold float64, sink CommandSink) *Interaction {
	if sink == nil {
		sink = func(Command) {}
	}
	return &Interaction{threshold: threshold, sink: sink}
}

// Drag returns the current drag state and whether a press or drag is in
// flight. The renderer uses this to paint the floating overlay copy.
func (in *Interaction) Drag() (DragState, bool) {
	return in.drag, in.phase != phaseIdle
}

// Dragging reports whether the press has been promoted to a drag.
func (in *Interaction) Dragging() bool {
	return in.phase == phaseDragging
}

// Cancel unconditionally drops any in-flight press or drag without
// emitting a command. Used for pointer-leave, pointer-cancel, and for a
// snapshot swap that removed the pressed card.
func (in *Interaction) Cancel() {
	if in.phase != phaseIdle {
		debug.Log("interaction: cancel (card %d)", in.drag.IssueID)
	}
	in.phase = phaseIdle
	in.drag = DragState{}
}

// PressedCard returns the id of the card currently pressed or dragged,
// or 0 when idle.
func (in *Interaction) PressedCard() int {
	if in.phase == phaseIdle {
		return 0
	}
	return in.drag.IssueID
}

// PointerDown feeds a press. A press over a card body enters the pressed
// state; a press over any tap affordance (button, checkbox, label) fires
// its intent immediately and stays idle. This is what distinguishes
// draggable affordances from tap affordances.
func (in *Interaction) PointerDown(p Point, s *BoardState, rects *RectMap) {
	if in.phase != phaseIdle {
		// Defensive: a second press while one is in flight cancels the
		// first rather than corrupting it.
		in.Cancel()
	}

	hit := rects.HitTest(p)
	switch hit.Kind {
	case HitCardBody:
		card := s.Card(hit.CardID)
		if card == nil {
			return
		}
		in.phase = phasePressed
		in.drag = DragState{
			IssueID: hit.CardID,
			Start:   p,
			Current: p,
			Origin:  NewCellKey(card.ColumnID, s.LaneForCard(card)),
		}

	case HitSubitemCheck:
		card := s.Card(hit.CardID)
		if card == nil {
			return
		}
		for _, sub := range card.Subitems {
			if sub.ID == hit.SubitemID {
				in.sink(Command{Type: CommandToggleSubitem, IssueID: card.ID, SubitemID: sub.ID, SubitemClosed: sub.Closed})
				return
			}
		}

	case HitSubitemLabel:
		// A sub-item label opens the sub-item itself.
		in.sink(Command{Type: CommandOpenCard, IssueID: hit.SubitemID})

	case HitSubjectLabel:
		in.sink(Command{Type: CommandOpenCard, IssueID: hit.CardID})

	case HitEditButton, HitInfoButton:
		card := s.Card(hit.CardID)
		if card == nil {
			return
		}
		target := card.URL
		if target == "" {
			target = strconv.Itoa(card.ID)
		}
		in.sink(Command{Type: CommandEditRequest, IssueID: card.ID, Target: target})

	case HitDeleteButton:
		if s.Card(hit.CardID) == nil {
			return
		}
		in.sink(Command{Type: CommandDeleteRequest, IssueID: hit.CardID})

	case HitAddButton:
		in.sink(Command{Type: CommandCreateRequest, ColumnID: s.FirstColumn(), LaneID: hit.LaneID})
	}
}

// PointerMove feeds a move. Below the threshold the press just tracks
// the pointer; at or beyond it the press is promoted to a drag, and the
// drop target cell is recomputed on every subsequent move.
func (in *Interaction) PointerMove(p Point, rects *RectMap) {
	switch in.phase {
	case phaseIdle:
		return
	case phasePressed:
		in.drag.Current = p
		if displacement(in.drag.Start, p) >= in.threshold {
			in.phase = phaseDragging
			in.drag.Dragging = true
			in.drag.TargetCell = rects.CellAt(p)
			debug.Log("interaction: drag start card %d from %s", in.drag.IssueID, in.drag.Origin)
		}
	case phaseDragging:
		in.drag.Current = p
		in.drag.TargetCell = rects.CellAt(p)
	}
}

// PointerUp feeds a release. A released press is a click and emits
// open_card; a released drag emits exactly one move_issue, provided the
// snapshot allows moving, the card still exists, and the drop landed on
// a cell. Otherwise the drop is silently discarded and the card snaps
// back when the next snapshot arrives.
func (in *Interaction) PointerUp(p Point, s *BoardState, rects *RectMap) {
	defer in.Cancel()

	switch in.phase {
	case phasePressed:
		if s.Card(in.drag.IssueID) != nil {
			in.sink(Command{Type: CommandOpenCard, IssueID: in.drag.IssueID})
		}

	case phaseDragging:
		in.drag.TargetCell = rects.CellAt(p)
		if in.drag.TargetCell == "" || in.drag.TargetCell == in.drag.Origin {
			return
		}
		if !s.Capabilities().CanMove {
			debug.Log("interaction: drop discarded, move not permitted")
			return
		}
		if s.Card(in.drag.IssueID) == nil {
			// Never emit a command for a card id no longer in the state.
			return
		}
		colID, laneID := in.drag.TargetCell.Split()
		identity := ""
		if lane, ok := s.Lane(laneID); ok {
			identity = lane.Identity
		}
		in.sink(Command{
			Type:             CommandMoveIssue,
			IssueID:          in.drag.IssueID,
			ColumnID:         colID,
			LaneID:           laneID,
			AssignedIdentity: identity,
		})
	}
}

func displacement(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
