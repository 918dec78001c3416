package tui

import "github.com/charmbracelet/lipgloss"

// bannerStyle uses the same adaptive color scheme as the header for consistency.
var bannerStyle = lipgloss.NewStyle().
	Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#EEEEEE"}).
	Bold(true)

// Banner is the ASCII art shown when no file is open.
const Banner = ` ___       _          __   ___
|   \ __ _| |_ __ _   \ \ / (_)_____ __ _____ _ _
| |) / _` + "`" + ` |  _/ _` + "`" + ` |   \ V /| / -_) V  V / -_) '_|
|___/\__,_|\__\__,_|    \_/ |_\___|\_/\_/\___|_|`

// RenderBanner returns the styled banner.
func RenderBanner() string {
	return bannerStyle.Render(Banner)
}
