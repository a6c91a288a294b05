package main_test

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// threeColumnBoard builds a flat Todo/Doing/Done board: one card in
// Todo, two in Doing with a WIP limit of 1, and an empty Done column.
// Cards are dated a day back so no aging badge reaches the late tier,
// whose color coincides with the over-WIP badge color.
func threeColumnBoard() string {
	updated := time.Now().UTC().Add(-24 * time.Hour).Format(time.RFC3339)
	return `{
  "columns": [
    {"id": "todo", "name": "Todo", "count": 1},
    {"id": "doing", "name": "Doing", "wip_limit": 1, "count": 2},
    {"id": "done", "name": "Done", "closed": true, "count": 0}
  ],
  "cards": [
    {"id": 1, "subject": "Draft proposal", "column_id": "todo", "priority": 2, "updated_at": "` + updated + `"},
    {"id": 2, "subject": "Review queue", "column_id": "doing", "priority": 2, "updated_at": "` + updated + `"},
    {"id": 3, "subject": "Hotfix deploy", "column_id": "doing", "priority": 0, "updated_at": "` + updated + `"}
  ],
  "capabilities": {"can_move": true, "can_create": true, "can_delete": true}
}`
}

func writeBoard(t *testing.T, dir string) (string, string) {
	t.Helper()
	content := threeColumnBoard()
	path := filepath.Join(dir, "board.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write board.json: %v", err)
	}
	return path, content
}

func writeEvents(t *testing.T, dir string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, "events.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("write events.jsonl: %v", err)
	}
	return path
}

// parseCommands splits stdout into one decoded command per line.
func parseCommands(t *testing.T, out []byte) []map[string]any {
	t.Helper()
	var cmds []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var cmd map[string]any
		if err := json.Unmarshal([]byte(line), &cmd); err != nil {
			t.Fatalf("stdout line %q is not a command: %v", line, err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

// TestDragCardAcrossColumns replays a press-drag-release trace that picks
// up the Todo card and drops it on the Done column. Exactly one
// move_issue command must come out; the board data itself stays
// untouched because persistence belongs to the snapshot owner.
//
// With default metrics the Todo card body sits at roughly (8..212,
// 48..120); the Done cell spans x 440..660 in the same band.
func TestDragCardAcrossColumns(t *testing.T) {
	dir := t.TempDir()
	board, original := writeBoard(t, dir)
	events := writeEvents(t, dir,
		`{"type": "down", "x": 110, "y": 84}`,
		`{"type": "move", "x": 130, "y": 84}`,
		`{"type": "move", "x": 550, "y": 84}`,
		`{"type": "up", "x": 550, "y": 84}`,
	)

	out, err := exec.Command(flowboardBinary(t),
		"-snapshot", board,
		"-events", events,
		"-out", filepath.Join(dir, "board.png"),
	).CombinedOutput()
	if err != nil {
		t.Fatalf("flowboard failed: %v\n%s", err, out)
	}

	cmds := parseCommands(t, out)
	if len(cmds) != 1 {
		t.Fatalf("got %d commands, want exactly one move_issue:\n%s", len(cmds), out)
	}
	cmd := cmds[0]
	if cmd["type"] != "move_issue" {
		t.Errorf("command type %v, want move_issue", cmd["type"])
	}
	if cmd["issue_id"] != float64(1) {
		t.Errorf("issue_id %v, want 1", cmd["issue_id"])
	}
	if cmd["column_id"] != "done" {
		t.Errorf("column_id %v, want done", cmd["column_id"])
	}

	// The snapshot file is input, never output.
	data, err := os.ReadFile(board)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != original {
		t.Error("snapshot file was modified by the render")
	}
}

// TestClickWithoutDragOpensCard verifies that a press and release without
// crossing the drag threshold is a click, not a zero-distance move.
func TestClickWithoutDragOpensCard(t *testing.T) {
	dir := t.TempDir()
	board, _ := writeBoard(t, dir)
	events := writeEvents(t, dir,
		`{"type": "down", "x": 110, "y": 110}`,
		`{"type": "move", "x": 112, "y": 111}`,
		`{"type": "up", "x": 112, "y": 111}`,
	)

	out, err := exec.Command(flowboardBinary(t),
		"-snapshot", board,
		"-events", events,
		"-out", filepath.Join(dir, "board.png"),
	).CombinedOutput()
	if err != nil {
		t.Fatalf("flowboard failed: %v\n%s", err, out)
	}

	cmds := parseCommands(t, out)
	if len(cmds) != 1 {
		t.Fatalf("got %d commands, want one open_card:\n%s", len(cmds), out)
	}
	if cmds[0]["type"] != "open_card" || cmds[0]["issue_id"] != float64(1) {
		t.Errorf("got %v, want open_card for card 1", cmds[0])
	}
}

// TestCancelledDragEmitsNothing replays a drag that is cancelled mid-air.
func TestCancelledDragEmitsNothing(t *testing.T) {
	dir := t.TempDir()
	board, _ := writeBoard(t, dir)
	events := writeEvents(t, dir,
		`{"type": "down", "x": 110, "y": 84}`,
		`{"type": "move", "x": 550, "y": 84}`,
		`{"type": "cancel"}`,
		`{"type": "up", "x": 550, "y": 84}`,
	)

	out, err := exec.Command(flowboardBinary(t),
		"-snapshot", board,
		"-events", events,
		"-out", filepath.Join(dir, "board.png"),
	).CombinedOutput()
	if err != nil {
		t.Fatalf("flowboard failed: %v\n%s", err, out)
	}
	if cmds := parseCommands(t, out); len(cmds) != 0 {
		t.Errorf("cancelled drag emitted %v, want nothing", cmds)
	}
}

// TestWIPBadgeOverLimit renders to SVG and checks the WIP badge: the
// Doing column holds 2 cards against a limit of 1 and must use the
// over-limit color. A column at or under its limit must not.
func TestWIPBadgeOverLimit(t *testing.T) {
	dir := t.TempDir()
	board, _ := writeBoard(t, dir)
	svgPath := filepath.Join(dir, "board.svg")

	out, err := exec.Command(flowboardBinary(t),
		"-snapshot", board,
		"-out", svgPath,
	).CombinedOutput()
	if err != nil {
		t.Fatalf("flowboard failed: %v\n%s", err, out)
	}

	data, err := os.ReadFile(svgPath)
	if err != nil {
		t.Fatal(err)
	}
	svg := string(data)

	if !strings.Contains(svg, "2 / 1") {
		t.Error("svg missing the 2 / 1 WIP badge")
	}
	if !strings.Contains(svg, "#c62828") {
		t.Error("svg missing the over-limit badge color")
	}
}

// TestWIPBadgeAtLimitStaysGreen renders a column exactly at its limit,
// which is at capacity but not over it.
func TestWIPBadgeAtLimitStaysGreen(t *testing.T) {
	dir := t.TempDir()
	atLimit := strings.Replace(threeColumnBoard(), `"wip_limit": 1, "count": 2`, `"wip_limit": 2, "count": 2`, 1)
	board := filepath.Join(dir, "board.json")
	if err := os.WriteFile(board, []byte(atLimit), 0o644); err != nil {
		t.Fatal(err)
	}
	svgPath := filepath.Join(dir, "board.svg")

	out, err := exec.Command(flowboardBinary(t),
		"-snapshot", board,
		"-out", svgPath,
	).CombinedOutput()
	if err != nil {
		t.Fatalf("flowboard failed: %v\n%s", err, out)
	}

	data, err := os.ReadFile(svgPath)
	if err != nil {
		t.Fatal(err)
	}
	svg := string(data)
	if !strings.Contains(svg, "2 / 2") {
		t.Error("svg missing the 2 / 2 WIP badge")
	}
	if strings.Contains(svg, "#c62828") {
		t.Error("at-limit column painted with the over-limit color")
	}
}

// TestRenderPNGProducesImage smoke-tests the raster path.
func TestRenderPNGProducesImage(t *testing.T) {
	dir := t.TempDir()
	board, _ := writeBoard(t, dir)
	pngPath := filepath.Join(dir, "board.png")

	out, err := exec.Command(flowboardBinary(t),
		"-snapshot", board,
		"-out", pngPath,
	).CombinedOutput()
	if err != nil {
		t.Fatalf("flowboard failed: %v\n%s", err, out)
	}

	data, err := os.ReadFile(pngPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 8 || string(data[1:4]) != "PNG" {
		t.Error("output is not a png file")
	}
}

// TestVersionFlag checks the version wiring.
func TestVersionFlag(t *testing.T) {
	out, err := exec.Command(flowboardBinary(t), "-version").CombinedOutput()
	if err != nil {
		t.Fatalf("flowboard -version failed: %v\n%s", err, out)
	}
	if !strings.HasPrefix(string(out), "flowboard ") {
		t.Errorf("version output %q", out)
	}
}
