package board

// HitKind classifies what a board-space point landed on.
type HitKind int

const (
	HitNone HitKind = iota
	HitSubitemCheck
	HitSubitemLabel
	HitSubjectLabel
	HitEditButton
	HitDeleteButton
	HitInfoButton
	HitCardBody
	HitAddButton
	HitCell
	HitHeader
	HitLaneLabel
)

func (k HitKind) String() string {
	switch k {
	case HitSubitemCheck:
		return "subitem_check"
	case HitSubitemLabel:
		return "subitem_label"
	case HitSubjectLabel:
		return "subject_label"
	case HitEditButton:
		return "edit_button"
	case HitDeleteButton:
		return "delete_button"
	case HitInfoButton:
		return "info_button"
	case HitCardBody:
		return "card_body"
	case HitAddButton:
		return "add_button"
	case HitCell:
		return "cell"
	case HitHeader:
		return "header"
	case HitLaneLabel:
		return "lane_label"
	default:
		return "none"
	}
}

// Hit is the result of one hit test. Only the fields relevant to Kind
// are populated.
type Hit struct {
	Kind      HitKind
	CardID    int
	SubitemID int
	LaneID    string
	ColumnID  string
	Cell      CellKey
}

// HitTest resolves a board-space point against the rect map. Categories
// are consulted from most to least specific, so a point inside both a
// sub-item checkbox and its containing card always resolves to the
// checkbox, and a card always beats its cell. This fixed order is the
// tie-break rule; within one category keys never overlap.
func (m *RectMap) HitTest(p Point) Hit {
	for id, r := range m.SubitemChecks {
		if r.Contains(p) {
			return Hit{Kind: HitSubitemCheck, SubitemID: id, CardID: m.subitemOwner[id]}
		}
	}
	for id, r := range m.SubitemLabels {
		if r.Contains(p) {
			return Hit{Kind: HitSubitemLabel, SubitemID: id, CardID: m.subitemOwner[id]}
		}
	}
	for id, r := range m.EditButtons {
		if r.Contains(p) {
			return Hit{Kind: HitEditButton, CardID: id}
		}
	}
	for id, r := range m.DeleteButtons {
		if r.Contains(p) {
			return Hit{Kind: HitDeleteButton, CardID: id}
		}
	}
	for id, r := range m.InfoButtons {
		if r.Contains(p) {
			return Hit{Kind: HitInfoButton, CardID: id}
		}
	}
	for id, r := range m.SubjectLabels {
		if r.Contains(p) {
			return Hit{Kind: HitSubjectLabel, CardID: id}
		}
	}
	for id, r := range m.Cards {
		if r.Contains(p) {
			return Hit{Kind: HitCardBody, CardID: id}
		}
	}
	for laneID, r := range m.AddButtons {
		if r.Contains(p) {
			return Hit{Kind: HitAddButton, LaneID: laneID}
		}
	}
	for key, r := range m.Cells {
		if r.Contains(p) {
			col, lane := key.Split()
			return Hit{Kind: HitCell, Cell: key, ColumnID: col, LaneID: lane}
		}
	}
	for colID, r := range m.Headers {
		if r.Contains(p) {
			return Hit{Kind: HitHeader, ColumnID: colID}
		}
	}
	for laneID, r := range m.LaneLabels {
		if r.Contains(p) {
			return Hit{Kind: HitLaneLabel, LaneID: laneID}
		}
	}
	return Hit{Kind: HitNone}
}
