package ui

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
	dark "github.com/thiagokokada/dark-mode-go"
)

// Theme represents the current color scheme
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

var currentTheme Theme = ThemeDark

// Dark Theme - Tokyo Night
var darkColors = struct {
	Bg, Border, Text, TextDim  lipgloss.Color
	Accent, Green, Yellow, Red lipgloss.Color
	Comment                    lipgloss.Color
}{
	Bg:      lipgloss.Color("#1a1b26"),
	Border:  lipgloss.Color("#414868"),
	Text:    lipgloss.Color("#c0caf5"),
	TextDim: lipgloss.Color("#787fa0"),
	Accent:  lipgloss.Color("#7aa2f7"),
	Green:   lipgloss.Color("#9ece6a"),
	Yellow:  lipgloss.Color("#e0af68"),
	Red:     lipgloss.Color("#f7768e"),
	Comment: lipgloss.Color("#787fa0"),
}

// Light Theme - Tokyo Night Light variant
var lightColors = struct {
	Bg, Border, Text, TextDim  lipgloss.Color
	Accent, Green, Yellow, Red lipgloss.Color
	Comment                    lipgloss.Color
}{
	Bg:      lipgloss.Color("#d5d6db"),
	Border:  lipgloss.Color("#9699a3"),
	Text:    lipgloss.Color("#343b58"),
	TextDim: lipgloss.Color("#6a6d7c"),
	Accent:  lipgloss.Color("#34548a"),
	Green:   lipgloss.Color("#485e30"),
	Yellow:  lipgloss.Color("#8f5e15"),
	Red:     lipgloss.Color("#8c4351"),
	Comment: lipgloss.Color("#6a6d7c"),
}

// Active color variables (set by InitTheme)
var (
	ColorBg      lipgloss.Color
	ColorBorder  lipgloss.Color
	ColorText    lipgloss.Color
	ColorTextDim lipgloss.Color
	ColorAccent  lipgloss.Color
	ColorGreen   lipgloss.Color
	ColorYellow  lipgloss.Color
	ColorRed     lipgloss.Color
	ColorComment lipgloss.Color
)

// themeMu protects global color/style variables during live theme switches.
var themeMu sync.RWMutex

// InitTheme sets the active color palette based on theme name.
// Must be called before any UI rendering.
func InitTheme(theme string) {
	themeMu.Lock()
	defer themeMu.Unlock()
	if theme == "light" {
		currentTheme = ThemeLight
		ColorBg = lightColors.Bg
		ColorBorder = lightColors.Border
		ColorText = lightColors.Text
		ColorTextDim = lightColors.TextDim
		ColorAccent = lightColors.Accent
		ColorGreen = lightColors.Green
		ColorYellow = lightColors.Yellow
		ColorRed = lightColors.Red
		ColorComment = lightColors.Comment
	} else {
		currentTheme = ThemeDark
		ColorBg = darkColors.Bg
		ColorBorder = darkColors.Border
		ColorText = darkColors.Text
		ColorTextDim = darkColors.TextDim
		ColorAccent = darkColors.Accent
		ColorGreen = darkColors.Green
		ColorYellow = darkColors.Yellow
		ColorRed = darkColors.Red
		ColorComment = darkColors.Comment
	}
	initStyles()
}

// GetCurrentTheme returns the active theme
func GetCurrentTheme() Theme {
	return currentTheme
}

// ResolveTheme detects the OS dark mode setting.
// Falls back to "dark" on detection failure.
func ResolveTheme() string {
	isDark, err := dark.IsDarkMode()
	if err != nil {
		return "dark"
	}
	if isDark {
		return "dark"
	}
	return "light"
}

func init() {
	InitTheme("dark")
}

var (
	TitleStyle       lipgloss.Style
	DimStyle         lipgloss.Style
	NormalRowStyle   lipgloss.Style
	SelectedRowStyle lipgloss.Style
	FilterBoxStyle   lipgloss.Style
	HelpStyle        lipgloss.Style

	FlagRunningStyle  lipgloss.Style
	FlagStoppedStyle  lipgloss.Style
	FlagFocusStyle    lipgloss.Style
	FlagAttachedStyle lipgloss.Style
)

func initStyles() {
	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorAccent)

	DimStyle = lipgloss.NewStyle().
		Foreground(ColorTextDim)

	NormalRowStyle = lipgloss.NewStyle().
		Foreground(ColorText)

	SelectedRowStyle = lipgloss.NewStyle().
		Foreground(ColorAccent).
		Bold(true)

	FilterBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Padding(0, 1)

	HelpStyle = lipgloss.NewStyle().
		Foreground(ColorComment).
		Italic(true)

	FlagRunningStyle = lipgloss.NewStyle().Foreground(ColorGreen)
	FlagStoppedStyle = lipgloss.NewStyle().Foreground(ColorTextDim)
	FlagFocusStyle = lipgloss.NewStyle().Foreground(ColorYellow)
	FlagAttachedStyle = lipgloss.NewStyle().Foreground(ColorAccent)
}
