// Package color provides the terminal palette and styles used by kubewire's
// command output.
//
// Colors are lipgloss adaptive colors, so they follow the terminal
// background. Detection can be overridden with KUBEWIRE_THEME=dark|light.
// NO_COLOR and non-terminal output are handled by lipgloss itself.
//
//	color.InitializeFromEnv()
//	fmt.Println(color.TitleStyle.Render("Connection"))
//	fmt.Println(color.StatusStyle(resp.Status).Render("200 OK"))
package color
