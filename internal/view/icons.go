package view

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Icon constants
const (
	IconCheck     = "✔" // U+2714
	IconCross     = "❌" // U+274C
	IconWarning   = "⚠" // U+26A0 without VS16
	IconHourglass = "⏳" // U+23F3
	IconStop      = "⏹" // U+23F9 without VS16
	IconPlay      = "▶" // U+25B6 without VS16
	IconInfo      = "ℹ" // U+2139 without VS16
	IconQuestion  = "❓" // U+2753
)

// SafeIcon pads an icon so it doesn't swallow the next character: one space
// after a single-cell icon, two after a wide one.
func SafeIcon(icon string) string {
	spaces := 1
	if runewidth.StringWidth(icon) >= 2 {
		spaces = 2
	}
	return icon + strings.Repeat(" ", spaces)
}

// padRight pads s with spaces to width display cells
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// truncate shortens s to width display cells, marking the cut with "…"
func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}

func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}
