package board

import (
	"image/color"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/tiohsa/flowboard/pkg/model"
)

// AgingTiers are the badge severity thresholds for a card's age (time
// since last update). Ages below WarnAfter are fine, ages in
// [WarnAfter, LateAfter) warn, and ages at or beyond LateAfter are late.
type AgingTiers struct {
	WarnAfter time.Duration
	LateAfter time.Duration
}

// FixedAgingTiers returns the default day-count thresholds.
func FixedAgingTiers() AgingTiers {
	return AgingTiers{
		WarnAfter: 7 * 24 * time.Hour,
		LateAfter: 30 * 24 * time.Hour,
	}
}

// AdaptiveAgingTiers derives thresholds from the board-wide age
// distribution instead of fixed day counts: warn at the median age and
// late at the 90th percentile. Boards with fewer than four cards fall
// back to the fixed tiers, where quantiles are too noisy to mean much.
func AdaptiveAgingTiers(cards []model.Card, now time.Time) AgingTiers {
	ages := make([]float64, 0, len(cards))
	for i := range cards {
		if cards[i].UpdatedAt.IsZero() {
			continue
		}
		age := now.Sub(cards[i].UpdatedAt)
		if age < 0 {
			age = 0
		}
		ages = append(ages, age.Seconds())
	}
	if len(ages) < 4 {
		return FixedAgingTiers()
	}

	sort.Float64s(ages)
	warn := stat.Quantile(0.5, stat.Empirical, ages, nil)
	late := stat.Quantile(0.9, stat.Empirical, ages, nil)
	if late <= warn {
		late = warn + 1
	}
	return AgingTiers{
		WarnAfter: time.Duration(warn * float64(time.Second)),
		LateAfter: time.Duration(late * float64(time.Second)),
	}
}

// Color maps an age onto the theme's severity tier colors.
func (t AgingTiers) Color(theme Theme, age time.Duration) color.RGBA {
	switch {
	case age >= t.LateAfter:
		return theme.SeverityLate
	case age >= t.WarnAfter:
		return theme.SeverityWarn
	default:
		return theme.SeverityOK
	}
}

// dueColor maps a due date onto severity tiers: past due is late, due
// within two days warns, anything further out is fine.
func dueColor(theme Theme, due, now time.Time) color.RGBA {
	switch {
	case due.Before(now):
		return theme.SeverityLate
	case due.Sub(now) <= 48*time.Hour:
		return theme.SeverityWarn
	default:
		return theme.SeverityOK
	}
}
