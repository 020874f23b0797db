package color

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	Error   = lipgloss.Color("9")
	Success = lipgloss.Color("10")
	Warning = lipgloss.Color("11")
	Info    = lipgloss.Color("12")
	Border  = lipgloss.Color("8")

	TitleStyle  = lipgloss.NewStyle().Bold(true).Italic(true)
	HeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	CellStyle   = lipgloss.NewStyle().Padding(0, 1)
	BulletStyle = lipgloss.NewStyle().Foreground(Error)
)

// Disable renders every style without ANSI colors.
func Disable() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
