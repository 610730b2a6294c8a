package display

import (
	_ "embed"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
)

//go:embed banner.txt
var bannerArt string

// RenderBanner returns the startup banner, styled and centred for the
// current terminal (80 columns when the size is unknown). To change
// the art, replace banner.txt.
func RenderBanner() string {
	width := 80
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		width = w
	}

	art := BannerStyle.Render(strings.TrimRight(bannerArt, "\n"))
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, art) + "\n"
}
