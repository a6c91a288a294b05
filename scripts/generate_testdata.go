//go:build ignore

// generate_testdata.go creates standard board snapshots for benchmarking
// and demos.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//   tests/testdata/benchmark/small.json   (50 cards)
//   tests/testdata/benchmark/medium.json  (500 cards)
//   tests/testdata/benchmark/large.json   (5000 cards)
package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tiohsa/flowboard/pkg/model"
)

type datasetSpec struct {
	name  string
	cards int
	lanes int
}

var datasets = []datasetSpec{
	{"small", 50, 0},
	{"medium", 500, 5},
	{"large", 5000, 20},
}

var columns = []model.Column{
	{ID: "backlog", Name: "Backlog"},
	{ID: "todo", Name: "Todo", WIPLimit: 10},
	{ID: "doing", Name: "Doing", WIPLimit: 5},
	{ID: "review", Name: "Review", WIPLimit: 5},
	{ID: "done", Name: "Done", Closed: true},
}

var subjects = []string{
	"Implement authentication flow",
	"Fix memory leak in cache",
	"Add API rate limiting",
	"Refactor database queries",
	"Update documentation",
	"Add unit tests for parser",
	"Optimize board reflow",
	"Fix race condition in worker",
	"Add metrics dashboard",
	"Implement retry logic",
}

var categories = []string{"bug", "feature", "task", "chore"}

func main() {
	outputDir := "tests/testdata/benchmark"
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		fmt.Printf("Generating %s snapshot (%d cards)...\n", ds.name, ds.cards)

		snap := generate(ds)
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal %s: %v\n", ds.name, err)
			os.Exit(1)
		}

		outputPath := filepath.Join(outputDir, ds.name+".json")
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}

		fmt.Printf("  Written %s (%d bytes)\n", outputPath, len(data))
	}

	fmt.Println("\nDone! Test snapshots created in", outputDir)
}

func generate(ds datasetSpec) *model.BoardSnapshot {
	// Reproducible per-size.
	rng := rand.New(rand.NewSource(int64(ds.cards)))
	now := time.Now().UTC()

	snap := &model.BoardSnapshot{
		Columns:      append([]model.Column(nil), columns...),
		Capabilities: model.Capabilities{CanMove: true, CanCreate: true, CanDelete: true},
		GeneratedAt:  now,
	}

	var identities []string
	for i := 0; i < ds.lanes; i++ {
		id := fmt.Sprintf("dev-%02d", i)
		snap.Lanes = append(snap.Lanes, model.Lane{
			ID:       "lane-" + id,
			Name:     fmt.Sprintf("Developer %02d", i),
			Identity: id,
		})
		identities = append(identities, id)
	}

	counts := make(map[string]int, len(columns))
	nextSub := ds.cards + 1
	for i := 1; i <= ds.cards; i++ {
		col := columns[rng.Intn(len(columns))]
		counts[col.ID]++

		card := model.Card{
			ID:        i,
			Subject:   fmt.Sprintf("%s #%d", subjects[rng.Intn(len(subjects))], i),
			ColumnID:  col.ID,
			Category:  categories[rng.Intn(len(categories))],
			Priority:  model.Priority(rng.Intn(4)),
			UpdatedAt: now.Add(-time.Duration(rng.Intn(60*24)) * time.Hour),
			DoneRatio: rng.Intn(101),
			Editable:  true,
			Deletable: rng.Intn(4) > 0,
		}
		if len(identities) > 0 && rng.Intn(10) > 0 {
			card.AssignedIdentity = identities[rng.Intn(len(identities))]
		}
		if rng.Intn(5) == 0 {
			due := now.Add(time.Duration(rng.Intn(21)-7) * 24 * time.Hour)
			card.DueDate = &due
		}
		for s := rng.Intn(4); s > 0; s-- {
			card.Subitems = append(card.Subitems, model.Subitem{
				ID:      nextSub,
				Subject: fmt.Sprintf("Step %d", len(card.Subitems)+1),
				Closed:  rng.Intn(2) == 0,
			})
			nextSub++
		}
		snap.Cards = append(snap.Cards, card)
	}

	for i := range snap.Columns {
		snap.Columns[i].Count = counts[snap.Columns[i].ID]
	}
	return snap
}
