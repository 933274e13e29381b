package color

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ThemeEnvVar forces the dark or light palette.
const ThemeEnvVar = "SIMCTL_MCP_THEME"

var (
	Primary = lipgloss.AdaptiveColor{Light: "#005FAF", Dark: "#5FAFFF"}
	Success = lipgloss.AdaptiveColor{Light: "#00875F", Dark: "#5FD787"}
	Error   = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}
	Muted   = lipgloss.AdaptiveColor{Light: "#8A8A8A", Dark: "#6C6C6C"}
)

var (
	HeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(Primary).Padding(0, 1)
	CellStyle     = lipgloss.NewStyle().Padding(0, 1)
	ToolNameStyle = lipgloss.NewStyle().Foreground(Success).Padding(0, 1)
	BorderStyle   = lipgloss.NewStyle().Foreground(Muted)
	ErrorStyle    = lipgloss.NewStyle().Foreground(Error).Bold(true)
)

// Initialize pins the background used to resolve adaptive colors.
func Initialize(isDarkMode bool) {
	lipgloss.SetHasDarkBackground(isDarkMode)
}

// InitializeFromEnv applies ThemeEnvVar when set to "dark" or "light" and
// reports whether a theme was forced.
func InitializeFromEnv(environ map[string]string) bool {
	switch strings.ToLower(strings.TrimSpace(environ[ThemeEnvVar])) {
	case "dark":
		Initialize(true)
		return true
	case "light":
		Initialize(false)
		return true
	default:
		return false
	}
}
