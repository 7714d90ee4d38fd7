package style

import "github.com/charmbracelet/lipgloss"

// Цвета книги продаж
var (
	Cyan    = lipgloss.Color("#00E5FF") // выделение
	Magenta = lipgloss.Color("#FF1B6B") // заголовки таблиц
	Yellow  = lipgloss.Color("#FFB500") // degraded
	Green   = lipgloss.Color("#2AFFAA") // active
	Red     = lipgloss.Color("#FF5555") // ошибки

	Night  = lipgloss.Color("#1B1D23")
	Slate  = lipgloss.Color("#6C7280")
	Silver = lipgloss.Color("#B4BCC8")
	Snow   = lipgloss.Color("#ECEFF4")
)

// Palette maps sale book roles to colors.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Background lipgloss.Color
	Text       lipgloss.Color
	TextMuted  lipgloss.Color

	Active   lipgloss.Color
	Zero     lipgloss.Color
	Degraded lipgloss.Color
}

// DefaultPalette returns the default color palette
func DefaultPalette() Palette {
	return Palette{
		Primary:    Cyan,
		Secondary:  Magenta,
		Background: Night,
		Text:       Snow,
		TextMuted:  Slate,

		Active:   Green,
		Zero:     Slate,
		Degraded: Yellow,
	}
}

var (
	TitleStyle    = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	SubtitleStyle = lipgloss.NewStyle().Foreground(Silver)
	ErrorStyle    = lipgloss.NewStyle().Foreground(Red).Bold(true)
	MutedStyle    = lipgloss.NewStyle().Foreground(Slate)
	ActiveStyle   = lipgloss.NewStyle().Foreground(Green)
	DegradedStyle = lipgloss.NewStyle().Foreground(Yellow)
)
