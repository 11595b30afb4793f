package render

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// TUITheme is the color scheme of the chat screen
type TUITheme struct {
	Name        string
	Description string
	// MarkdownStyle is the glamour style that pairs with the palette
	MarkdownStyle string

	Surface lipgloss.Color
	Border  lipgloss.Color

	Primary   lipgloss.Color // assistant accents, titles
	Secondary lipgloss.Color // user accents
	Accent    lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

var tuiThemes = []TUITheme{
	{
		Name:          "tokyonight",
		Description:   "Tokyo Night - dark with blue accents",
		MarkdownStyle: StyleTokyoNight,
		Surface:       "#24283b",
		Border:        "#414868",
		Primary:       "#7aa2f7",
		Secondary:     "#9ece6a",
		Accent:        "#bb9af7",
		Warning:       "#e0af68",
		Error:         "#f7768e",
		Text:          "#c0caf5",
		TextDim:       "#565f89",
		TextMute:      "#3b4261",
	},
	{
		Name:          "catppuccin",
		Description:   "Catppuccin Mocha - warm pastels",
		MarkdownStyle: StyleDark,
		Surface:       "#313244",
		Border:        "#45475a",
		Primary:       "#89b4fa",
		Secondary:     "#a6e3a1",
		Accent:        "#cba6f7",
		Warning:       "#f9e2af",
		Error:         "#f38ba8",
		Text:          "#cdd6f4",
		TextDim:       "#6c7086",
		TextMute:      "#45475a",
	},
	{
		Name:          "nord",
		Description:   "Nord - arctic cool tones",
		MarkdownStyle: StyleDark,
		Surface:       "#3b4252",
		Border:        "#4c566a",
		Primary:       "#88c0d0",
		Secondary:     "#a3be8c",
		Accent:        "#b48ead",
		Warning:       "#ebcb8b",
		Error:         "#bf616a",
		Text:          "#eceff4",
		TextDim:       "#7b88a1",
		TextMute:      "#4c566a",
	},
	{
		Name:          "dracula",
		Description:   "Dracula - vibrant dark",
		MarkdownStyle: StyleDracula,
		Surface:       "#44475a",
		Border:        "#6272a4",
		Primary:       "#8be9fd",
		Secondary:     "#50fa7b",
		Accent:        "#ff79c6",
		Warning:       "#f1fa8c",
		Error:         "#ff5555",
		Text:          "#f8f8f2",
		TextDim:       "#6272a4",
		TextMute:      "#44475a",
	},
}

var (
	themeMu         sync.RWMutex
	currentTUITheme = tuiThemes[0]
)

// GetTUITheme returns the active theme
func GetTUITheme() TUITheme {
	themeMu.RLock()
	defer themeMu.RUnlock()
	return currentTUITheme
}

// SetTUITheme activates the theme called name; false if unknown
func SetTUITheme(name string) bool {
	theme, ok := GetTUIThemeByName(name)
	if !ok {
		return false
	}
	themeMu.Lock()
	currentTUITheme = theme
	themeMu.Unlock()
	return true
}

// GetTUIThemeByName looks up a theme by name
func GetTUIThemeByName(name string) (TUITheme, bool) {
	for _, t := range tuiThemes {
		if t.Name == name {
			return t, true
		}
	}
	return TUITheme{}, false
}

// TUIThemeNames returns the theme names in display order
func TUIThemeNames() []string {
	names := make([]string, len(tuiThemes))
	for i, t := range tuiThemes {
		names[i] = t.Name
	}
	return names
}
