package datasource

import (
	"fmt"

	"github.com/tiohsa/flowboard/pkg/model"
)

// SourceDiff represents differences between two data sources
type SourceDiff struct {
	// SourceA is the path of the first source
	SourceA string
	// SourceB is the path of the second source
	SourceB string
	// MissingInA contains card IDs present in B but not in A
	MissingInA []int
	// MissingInB contains card IDs present in A but not in B
	MissingInB []int
	// ColumnMismatch contains cards placed in different columns
	ColumnMismatch []ColumnDifference
	// CountA is the number of cards in source A
	CountA int
	// CountB is the number of cards in source B
	CountB int
}

// ColumnDifference represents a column placement mismatch for one card
type ColumnDifference struct {
	ID      int    `json:"id"`
	ColumnA string `json:"column_a"`
	ColumnB string `json:"column_b"`
}

// HasInconsistencies returns true if there are any differences between sources
func (d SourceDiff) HasInconsistencies() bool {
	return len(d.MissingInA) > 0 || len(d.MissingInB) > 0 || len(d.ColumnMismatch) > 0
}

// Summary returns a human-readable summary of the differences
func (d SourceDiff) Summary() string {
	if !d.HasInconsistencies() {
		return fmt.Sprintf("Sources match (%d cards each)", d.CountA)
	}

	summary := fmt.Sprintf("Inconsistencies found between %s and %s:\n", d.SourceA, d.SourceB)

	if d.CountA != d.CountB {
		summary += fmt.Sprintf("  - Count mismatch: %d vs %d\n", d.CountA, d.CountB)
	}

	if len(d.MissingInA) > 0 {
		summary += fmt.Sprintf("  - %d cards in %s but not %s\n", len(d.MissingInA), d.SourceB, d.SourceA)
		if len(d.MissingInA) <= 5 {
			for _, id := range d.MissingInA {
				summary += fmt.Sprintf("    - #%d\n", id)
			}
		}
	}

	if len(d.MissingInB) > 0 {
		summary += fmt.Sprintf("  - %d cards in %s but not %s\n", len(d.MissingInB), d.SourceA, d.SourceB)
		if len(d.MissingInB) <= 5 {
			for _, id := range d.MissingInB {
				summary += fmt.Sprintf("    - #%d\n", id)
			}
		}
	}

	if len(d.ColumnMismatch) > 0 {
		summary += fmt.Sprintf("  - %d cards in different columns\n", len(d.ColumnMismatch))
		if len(d.ColumnMismatch) <= 5 {
			for _, m := range d.ColumnMismatch {
				summary += fmt.Sprintf("    - #%d: %s vs %s\n", m.ID, m.ColumnA, m.ColumnB)
			}
		}
	}

	return summary
}

// DiffOptions configures the diff operation
type DiffOptions struct {
	// MaxDifferences limits the number of differences tracked (0 = unlimited)
	MaxDifferences int
}

// DefaultDiffOptions returns sensible default diff options
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{
		MaxDifferences: 100,
	}
}

// DetectInconsistencies compares two snapshots and returns differences
func DetectInconsistencies(snapA, snapB *model.BoardSnapshot, sourceA, sourceB string, opts DiffOptions) SourceDiff {
	diff := SourceDiff{
		SourceA: sourceA,
		SourceB: sourceB,
	}

	mapA := make(map[int]*model.Card)
	for i := range snapA.Cards {
		mapA[snapA.Cards[i].ID] = &snapA.Cards[i]
	}
	mapB := make(map[int]*model.Card)
	for i := range snapB.Cards {
		mapB[snapB.Cards[i].ID] = &snapB.Cards[i]
	}

	diff.CountA = len(mapA)
	diff.CountB = len(mapB)

	// Find cards in A but not in B
	for id := range mapA {
		if _, exists := mapB[id]; !exists {
			if opts.MaxDifferences == 0 || len(diff.MissingInB) < opts.MaxDifferences {
				diff.MissingInB = append(diff.MissingInB, id)
			}
		}
	}

	// Find cards in B but not in A, and column mismatches
	for id, cardB := range mapB {
		cardA, exists := mapA[id]
		if !exists {
			if opts.MaxDifferences == 0 || len(diff.MissingInA) < opts.MaxDifferences {
				diff.MissingInA = append(diff.MissingInA, id)
			}
		} else if cardA.ColumnID != cardB.ColumnID {
			if opts.MaxDifferences == 0 || len(diff.ColumnMismatch) < opts.MaxDifferences {
				diff.ColumnMismatch = append(diff.ColumnMismatch, ColumnDifference{
					ID:      id,
					ColumnA: cardA.ColumnID,
					ColumnB: cardB.ColumnID,
				})
			}
		}
	}

	return diff
}

// CompareSources loads and compares two data sources
func CompareSources(sourceA, sourceB DataSource, opts DiffOptions) (*SourceDiff, error) {
	snapA, err := LoadFromSource(sourceA)
	if err != nil {
		return nil, fmt.Errorf("failed to load source A (%s): %w", sourceA.Path, err)
	}

	snapB, err := LoadFromSource(sourceB)
	if err != nil {
		return nil, fmt.Errorf("failed to load source B (%s): %w", sourceB.Path, err)
	}

	diff := DetectInconsistencies(snapA, snapB, sourceA.Path, sourceB.Path, opts)
	return &diff, nil
}

// CheckAllSourcesConsistent compares all sources and reports any inconsistencies
func CheckAllSourcesConsistent(sources []DataSource, opts DiffOptions) ([]SourceDiff, error) {
	var diffs []SourceDiff

	// Compare each valid source with every other valid source
	for i := 0; i < len(sources); i++ {
		if !sources[i].Valid {
			continue
		}
		for j := i + 1; j < len(sources); j++ {
			if !sources[j].Valid {
				continue
			}

			diff, err := CompareSources(sources[i], sources[j], opts)
			if err != nil {
				continue
			}

			if diff.HasInconsistencies() {
				diffs = append(diffs, *diff)
			}
		}
	}

	return diffs, nil
}
