package model

import (
	"fmt"
	"time"
)

// Card represents one unit of work on the board. A card lives in exactly
// one column and resolves to exactly one lane; it may carry an ordered
// list of sub-items that grow its rendered height.
type Card struct {
	ID               int        `json:"id"`
	ParentID         *int       `json:"parent_id,omitempty"`
	Subject          string     `json:"subject"`
	ColumnID         string     `json:"column_id"`
	AssignedIdentity string     `json:"assigned_identity,omitempty"`
	Project          string     `json:"project,omitempty"`
	Category         string     `json:"category,omitempty"`
	Priority         Priority   `json:"priority"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at"`
	DoneRatio        int        `json:"done_ratio"` // 0-100
	URL              string     `json:"url,omitempty"`
	Subitems         []Subitem  `json:"subitems,omitempty"`
	Editable         bool       `json:"editable"`
	Deletable        bool       `json:"deletable"`
}

// Subitem is a nested work item rendered as one row inside its parent card.
type Subitem struct {
	ID      int    `json:"id"`
	Subject string `json:"subject"`
	Closed  bool   `json:"closed"`
}

// OpenSubitems returns the number of sub-items not yet closed.
func (c *Card) OpenSubitems() int {
	n := 0
	for _, s := range c.Subitems {
		if !s.Closed {
			n++
		}
	}
	return n
}

// Clone creates a deep copy of the card.
func (c Card) Clone() Card {
	clone := c
	if c.ParentID != nil {
		v := *c.ParentID
		clone.ParentID = &v
	}
	if c.DueDate != nil {
		v := *c.DueDate
		clone.DueDate = &v
	}
	if c.Subitems != nil {
		clone.Subitems = make([]Subitem, len(c.Subitems))
		copy(clone.Subitems, c.Subitems)
	}
	return clone
}

// Validate checks if the card data is logically valid.
func (c *Card) Validate() error {
	if c.ID <= 0 {
		return fmt.Errorf("card ID must be positive, got %d", c.ID)
	}
	if c.Subject == "" {
		return fmt.Errorf("card %d: subject cannot be empty", c.ID)
	}
	if c.ColumnID == "" {
		return fmt.Errorf("card %d: column_id cannot be empty", c.ID)
	}
	if c.DoneRatio < 0 || c.DoneRatio > 100 {
		return fmt.Errorf("card %d: done_ratio %d out of range [0,100]", c.ID, c.DoneRatio)
	}
	return nil
}

// Age returns how long ago the card was last updated.
func (c *Card) Age() time.Duration {
	if c.UpdatedAt.IsZero() {
		return 0
	}
	return time.Since(c.UpdatedAt)
}

// Priority is the urgency rank of a card. Lower is more urgent, matching
// the P0..P4 convention.
type Priority int

const (
	PriorityCritical Priority = iota
	PriorityHigh
	PriorityNormal
	PriorityLow
)

// IsValid returns true if the priority is a recognized value.
func (p Priority) IsValid() bool {
	return p >= PriorityCritical && p <= PriorityLow
}

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// Column is a workflow stage, the vertical grouping dimension.
type Column struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Closed   bool   `json:"closed"`
	WIPLimit int    `json:"wip_limit,omitempty"` // 0 means unlimited
	Count    int    `json:"count"`
}

// OverLimit reports whether the column count strictly exceeds its WIP
// limit. A count equal to the limit is at capacity, not over it.
func (c Column) OverLimit() bool {
	return c.WIPLimit > 0 && c.Count > c.WIPLimit
}

// Validate checks if the column data is logically valid.
func (c *Column) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("column ID cannot be empty")
	}
	if c.Name == "" {
		return fmt.Errorf("column %s: name cannot be empty", c.ID)
	}
	if c.WIPLimit < 0 {
		return fmt.Errorf("column %s: wip_limit cannot be negative", c.ID)
	}
	return nil
}

// LaneNone is the single synthetic lane used when lane grouping is
// disabled. LaneUnassigned is the sentinel bucket for cards whose
// identity matches no known lane.
const (
	LaneNone       = "none"
	LaneUnassigned = "unassigned"
)

// Lane is the secondary grouping dimension, a horizontal band. Identity
// carries the assignee identity used to resolve drop targets; it is empty
// for the unassigned sentinel.
type Lane struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Identity string `json:"identity,omitempty"`
}

// Capabilities are the permission flags attached to a snapshot.
type Capabilities struct {
	CanMove   bool `json:"can_move"`
	CanCreate bool `json:"can_create"`
	CanDelete bool `json:"can_delete"`
}

// BoardSnapshot is an immutable description of the whole board: ordered
// columns, ordered lanes, cards in owner-chosen order, and capability
// flags. A snapshot fully replaces its predecessor; the engine never
// patches one in place.
type BoardSnapshot struct {
	Columns      []Column     `json:"columns"`
	Lanes        []Lane       `json:"lanes,omitempty"`
	Cards        []Card       `json:"cards"`
	Capabilities Capabilities `json:"capabilities"`
	GeneratedAt  time.Time    `json:"generated_at,omitempty"`
}

// LanesEnabled reports whether the snapshot groups cards by lane.
func (s *BoardSnapshot) LanesEnabled() bool {
	return len(s.Lanes) > 0
}

// Validate checks columns and cards for logical consistency. Lane
// membership is deliberately not validated here: a card whose identity
// matches no lane is legal and falls into the unassigned bucket.
func (s *BoardSnapshot) Validate() error {
	if len(s.Columns) == 0 {
		return fmt.Errorf("snapshot has no columns")
	}
	seen := make(map[string]bool, len(s.Columns))
	for i := range s.Columns {
		if err := s.Columns[i].Validate(); err != nil {
			return err
		}
		if seen[s.Columns[i].ID] {
			return fmt.Errorf("duplicate column ID %q", s.Columns[i].ID)
		}
		seen[s.Columns[i].ID] = true
	}
	for i := range s.Cards {
		if err := s.Cards[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// CardByID returns the card with the given id, or nil if absent.
func (s *BoardSnapshot) CardByID(id int) *Card {
	for i := range s.Cards {
		if s.Cards[i].ID == id {
			return &s.Cards[i]
		}
	}
	return nil
}
