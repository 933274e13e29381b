// Package color provides the terminal theme for simctl-mcp's human-facing
// output, such as the tool table printed by the tools command.
//
// Styles use lipgloss adaptive colors, so they render correctly on dark and
// light terminals. Terminal capability detection is left to lipgloss, which
// honors NO_COLOR and COLORTERM.
//
// # Theme Selection
//
// The background is detected automatically. SIMCTL_MCP_THEME=dark or
// SIMCTL_MCP_THEME=light forces one or the other:
//
//	color.InitializeFromEnv(config.Environ())
//	fmt.Println(color.HeaderStyle.Render("TOOL"))
package color
