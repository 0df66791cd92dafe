package common

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// FormatCount renders a counter the way the action rail shows it:
// 999 -> "999", 1000 -> "1K", 1250 -> "1.3K", 1960 -> "2.0K".
// Thousands get one rounded decimal once the remainder reaches 100.
func FormatCount(n int) string {
	if n < 0 {
		n = 0
	}
	if n < 1000 {
		return strconv.Itoa(n)
	}
	if n%1000 < 100 {
		return strconv.Itoa(n/1000) + "K"
	}
	tenths := (n + 50) / 100
	return strconv.Itoa(tenths/10) + "." + strconv.Itoa(tenths%10) + "K"
}

// Truncate shortens s to width cells, ANSI aware, ending with an ellipsis.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}

// SingleLine collapses whitespace so captions fit one row.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
