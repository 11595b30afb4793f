package render

import "strings"

// Glamour standard style names
const (
	StyleDark       = "dark"
	StyleLight      = "light"
	StyleDracula    = "dracula"
	StyleTokyoNight = "tokyo-night"
	StylePink       = "pink"
	StyleASCII      = "ascii"
	StyleNoTTY      = "notty"
)

// styleAliases maps TUI theme names and common spellings to glamour styles
var styleAliases = map[string]string{
	"tokyonight": StyleTokyoNight,
	"catppuccin": StyleDark,
	"nord":       StyleDark,
}

// StandardStyles lists the glamour built-in style names
func StandardStyles() []string {
	return []string{StyleDark, StyleLight, StyleDracula, StyleTokyoNight, StylePink, StyleASCII, StyleNoTTY}
}

// NormalizeStyle resolves aliases; unknown names are returned unchanged
// so they can be treated as a path to a style file.
func NormalizeStyle(style string) string {
	s := strings.ToLower(strings.TrimSpace(style))
	if alias, ok := styleAliases[s]; ok {
		return alias
	}
	if IsStandardStyle(s) {
		return s
	}
	return style
}

// IsStandardStyle reports whether style names a glamour built-in style
func IsStandardStyle(style string) bool {
	for _, s := range StandardStyles() {
		if s == style {
			return true
		}
	}
	return false
}
