package board

import (
	"fmt"
	"image/color"
)

// Theme is the explicit color vocabulary the renderer paints with. It is
// a plain value object passed into rendering, never ambient state, so
// two renders with the same theme are pixel-identical.
type Theme struct {
	Background color.RGBA
	HeaderBG   color.RGBA
	HeaderText color.RGBA
	LaneBG     color.RGBA
	LaneText   color.RGBA
	CellBG     color.RGBA
	GridLine   color.RGBA
	DropTarget color.RGBA

	CardFill   color.RGBA
	CardBorder color.RGBA
	CardText   color.RGBA
	Subtle     color.RGBA

	// Category fills keyed by card category; CardFill is the fallback.
	Categories map[string]color.RGBA

	// WIP badge colors: within limit vs strictly over it.
	WIPOK   color.RGBA
	WIPOver color.RGBA

	// Badge severity tiers shared by due-date and aging badges.
	SeverityOK   color.RGBA
	SeverityWarn color.RGBA
	SeverityLate color.RGBA

	Accent        color.RGBA
	ProgressRing  color.RGBA
	ProgressTrack color.RGBA
	CheckboxDone  color.RGBA
	CheckboxOpen  color.RGBA

	// OverlayAlpha is the opacity of the floating drag copy (0-255).
	OverlayAlpha uint8
}

// DefaultTheme returns the standard light board palette.
func DefaultTheme() Theme {
	return Theme{
		Background: color.RGBA{0xf9, 0xfa, 0xfb, 0xff},
		HeaderBG:   color.RGBA{0xf3, 0xf4, 0xf6, 0xff},
		HeaderText: color.RGBA{0x11, 0x11, 0x11, 0xff},
		LaneBG:     color.RGBA{0xee, 0xee, 0xee, 0xff},
		LaneText:   color.RGBA{0x33, 0x33, 0x33, 0xff},
		CellBG:     color.RGBA{0xff, 0xff, 0xff, 0xff},
		GridLine:   color.RGBA{0xd0, 0xd4, 0xda, 0xff},
		DropTarget: color.RGBA{0xdb, 0xea, 0xfe, 0xff},

		CardFill:   color.RGBA{0xff, 0xff, 0xff, 0xff},
		CardBorder: color.RGBA{0x22, 0x22, 0x22, 0xff},
		CardText:   color.RGBA{0x11, 0x11, 0x11, 0xff},
		Subtle:     color.RGBA{0x66, 0x66, 0x66, 0xff},

		Categories: map[string]color.RGBA{
			"bug":     {0xff, 0xcd, 0xd2, 0xff},
			"feature": {0xc8, 0xe6, 0xc9, 0xff},
			"task":    {0xe3, 0xf2, 0xfd, 0xff},
			"chore":   {0xff, 0xf3, 0xe0, 0xff},
		},

		WIPOK:   color.RGBA{0x2e, 0x7d, 0x32, 0xff},
		WIPOver: color.RGBA{0xc6, 0x28, 0x28, 0xff},

		SeverityOK:   color.RGBA{0x2e, 0x7d, 0x32, 0xff},
		SeverityWarn: color.RGBA{0xf5, 0x7c, 0x00, 0xff},
		SeverityLate: color.RGBA{0xc6, 0x28, 0x28, 0xff},

		Accent:        color.RGBA{0x6b, 0x80, 0xbf, 0xff},
		ProgressRing:  color.RGBA{0x2e, 0x7d, 0x32, 0xff},
		ProgressTrack: color.RGBA{0xdd, 0xdd, 0xdd, 0xff},
		CheckboxDone:  color.RGBA{0x2e, 0x7d, 0x32, 0xff},
		CheckboxOpen:  color.RGBA{0x88, 0x88, 0x88, 0xff},

		OverlayAlpha: 0xb0,
	}
}

// CategoryColor returns the fill for a card category, falling back to
// the default card fill for unknown categories.
func (t Theme) CategoryColor(category string) color.RGBA {
	if c, ok := t.Categories[category]; ok {
		return c
	}
	return t.CardFill
}

// WIPColor returns the badge color for a column's WIP state. The over
// color applies only when the count strictly exceeds the limit; a column
// exactly at its limit is still within it.
func (t Theme) WIPColor(count, limit int) color.RGBA {
	if limit > 0 && count > limit {
		return t.WIPOver
	}
	return t.WIPOK
}

// ParseHex parses "#rrggbb" (or "rrggbb") into an RGBA color.
func ParseHex(s string) (color.RGBA, error) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.RGBA{r, g, b, 0xff}, nil
}

// css renders a color as a #rrggbb CSS literal for the SVG painter.
func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// withAlpha returns the color with its alpha channel replaced.
func withAlpha(c color.RGBA, a uint8) color.RGBA {
	c.A = a
	return c
}
