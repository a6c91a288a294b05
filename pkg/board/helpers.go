package board

import (
	"fmt"
	"time"

	"github.com/mattn/go-runewidth"
)

// approxCharWidth is the advance width of the basicfont face the raster
// painter draws with. Truncation budgets are expressed in these cells.
const approxCharWidth = 7.0

// truncateWidth truncates s to maxWidth display cells, appending "..."
// when anything was cut. Wide (CJK) runes count as two cells. The suffix
// stays ASCII so the raster font can draw it.
func truncateWidth(s string, maxWidth int) string {
	return truncateWithSuffix(s, maxWidth, "...")
}

func truncateWithSuffix(s string, maxWidth int, suffix string) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	suffixWidth := runewidth.StringWidth(suffix)
	if suffixWidth > maxWidth {
		return runewidth.Truncate(suffix, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth-suffixWidth, "") + suffix
}

// fitText truncates s to fit a pixel budget under the raster font.
func fitText(s string, pixels float64) string {
	cells := int(pixels / approxCharWidth)
	return truncateWidth(s, cells)
}

// formatAge formats a duration for badge display: <1d, Nd, Nw, Nmo.
func formatAge(d time.Duration) string {
	days := int(d.Hours() / 24)
	switch {
	case days <= 0:
		return "<1d"
	case days < 7:
		return fmt.Sprintf("%dd", days)
	case days < 30:
		return fmt.Sprintf("%dw", days/7)
	default:
		return fmt.Sprintf("%dmo", days/30)
	}
}

// formatDue formats a due date relative to now: "due 3d", "due today",
// or "over Nd" when past due.
func formatDue(due, now time.Time) string {
	d := due.Sub(now)
	days := int(d.Hours() / 24)
	switch {
	case d < 0:
		over := int((-d).Hours() / 24)
		if over == 0 {
			over = 1
		}
		return fmt.Sprintf("over %dd", over)
	case days == 0:
		return "due today"
	default:
		return fmt.Sprintf("due %dd", days)
	}
}
