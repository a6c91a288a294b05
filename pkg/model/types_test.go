package model

import (
	"testing"
	"time"
)

func TestColumn_OverLimit(t *testing.T) {
	tests := []struct {
		name string
		col  Column
		want bool
	}{
		{"under limit", Column{WIPLimit: 3, Count: 2}, false},
		{"exactly at limit", Column{WIPLimit: 3, Count: 3}, false},
		{"strictly over", Column{WIPLimit: 3, Count: 4}, true},
		{"unlimited", Column{WIPLimit: 0, Count: 50}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.col.OverLimit(); got != tt.want {
				t.Errorf("OverLimit() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCard_Validate(t *testing.T) {
	valid := Card{ID: 1, Subject: "s", ColumnID: "todo"}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid card rejected: %v", err)
	}

	tests := []struct {
		name string
		card Card
	}{
		{"zero id", Card{Subject: "s", ColumnID: "todo"}},
		{"negative id", Card{ID: -1, Subject: "s", ColumnID: "todo"}},
		{"empty subject", Card{ID: 1, ColumnID: "todo"}},
		{"empty column", Card{ID: 1, Subject: "s"}},
		{"done ratio over 100", Card{ID: 1, Subject: "s", ColumnID: "todo", DoneRatio: 101}},
		{"negative done ratio", Card{ID: 1, Subject: "s", ColumnID: "todo", DoneRatio: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.card.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestColumn_Validate(t *testing.T) {
	if err := (&Column{ID: "todo", Name: "Todo"}).Validate(); err != nil {
		t.Errorf("valid column rejected: %v", err)
	}
	for _, col := range []Column{
		{Name: "Todo"},
		{ID: "todo"},
		{ID: "todo", Name: "Todo", WIPLimit: -1},
	} {
		if err := col.Validate(); err == nil {
			t.Errorf("column %+v passed validation", col)
		}
	}
}

func TestSnapshot_Validate(t *testing.T) {
	snap := &BoardSnapshot{
		Columns: []Column{{ID: "todo", Name: "Todo"}},
		Cards:   []Card{{ID: 1, Subject: "s", ColumnID: "todo"}},
	}
	if err := snap.Validate(); err != nil {
		t.Errorf("valid snapshot rejected: %v", err)
	}

	if err := (&BoardSnapshot{}).Validate(); err == nil {
		t.Error("snapshot without columns passed validation")
	}

	dup := &BoardSnapshot{Columns: []Column{
		{ID: "todo", Name: "Todo"},
		{ID: "todo", Name: "Again"},
	}}
	if err := dup.Validate(); err == nil {
		t.Error("duplicate column ids passed validation")
	}

	// Lane membership is intentionally not validated; an identity with no
	// matching lane falls into the unassigned bucket.
	orphan := &BoardSnapshot{
		Columns: []Column{{ID: "todo", Name: "Todo"}},
		Lanes:   []Lane{{ID: "l1", Name: "Alice", Identity: "alice"}},
		Cards:   []Card{{ID: 1, Subject: "s", ColumnID: "todo", AssignedIdentity: "nobody"}},
	}
	if err := orphan.Validate(); err != nil {
		t.Errorf("unmatched identity rejected: %v", err)
	}
}

func TestCard_Clone(t *testing.T) {
	parent := 7
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	orig := Card{
		ID:       1,
		Subject:  "s",
		ColumnID: "todo",
		ParentID: &parent,
		DueDate:  &due,
		Subitems: []Subitem{{ID: 10, Subject: "a"}, {ID: 11, Subject: "b", Closed: true}},
	}

	clone := orig.Clone()
	*clone.ParentID = 99
	*clone.DueDate = due.AddDate(0, 1, 0)
	clone.Subitems[0].Closed = true

	if *orig.ParentID != 7 {
		t.Error("clone shares ParentID pointer")
	}
	if !orig.DueDate.Equal(due) {
		t.Error("clone shares DueDate pointer")
	}
	if orig.Subitems[0].Closed {
		t.Error("clone shares Subitems backing array")
	}
}

func TestCard_OpenSubitems(t *testing.T) {
	c := Card{Subitems: []Subitem{
		{ID: 1, Closed: true},
		{ID: 2},
		{ID: 3},
	}}
	if got := c.OpenSubitems(); got != 2 {
		t.Errorf("OpenSubitems() = %d, want 2", got)
	}
	if got := (&Card{}).OpenSubitems(); got != 0 {
		t.Errorf("no subitems: got %d, want 0", got)
	}
}

func TestPriority(t *testing.T) {
	for p, want := range map[Priority]string{
		PriorityCritical: "critical",
		PriorityHigh:     "high",
		PriorityNormal:   "normal",
		PriorityLow:      "low",
	} {
		if p.String() != want {
			t.Errorf("%d.String() = %q, want %q", int(p), p.String(), want)
		}
		if !p.IsValid() {
			t.Errorf("%q should be valid", want)
		}
	}
	if Priority(9).IsValid() || Priority(-1).IsValid() {
		t.Error("out-of-range priorities reported valid")
	}
	if Priority(9).String() != "priority(9)" {
		t.Errorf("unknown priority string = %q", Priority(9).String())
	}
}

func TestSnapshot_CardByID(t *testing.T) {
	snap := &BoardSnapshot{
		Columns: []Column{{ID: "todo", Name: "Todo"}},
		Cards:   []Card{{ID: 1, Subject: "a", ColumnID: "todo"}, {ID: 2, Subject: "b", ColumnID: "todo"}},
	}
	if c := snap.CardByID(2); c == nil || c.Subject != "b" {
		t.Errorf("CardByID(2) = %+v", c)
	}
	if c := snap.CardByID(99); c != nil {
		t.Errorf("CardByID(99) = %+v, want nil", c)
	}
}

func TestSnapshot_LanesEnabled(t *testing.T) {
	if (&BoardSnapshot{}).LanesEnabled() {
		t.Error("no lanes should disable lane grouping")
	}
	withLanes := &BoardSnapshot{Lanes: []Lane{{ID: "l", Name: "L"}}}
	if !withLanes.LanesEnabled() {
		t.Error("lanes present should enable lane grouping")
	}
}
