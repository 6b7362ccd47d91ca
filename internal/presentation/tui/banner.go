package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"  _____      _                ", "#34d399"},
	{" |_   _| __ (_) __ _  __ _  ___ ", "#2dd4bf"},
	{"   | || '__|| |/ _` |/ _` |/ _ \\", "#22d3ee"},
	{"   | || |   | | (_| | (_| |  __/", "#38bdf8"},
	{"   |_||_|   |_|\\__,_|\\__, |\\___|", "#60a5fa"},
	{"                     |___/      ", "#818cf8"},
}

// PrintBanner writes the ASCII banner to w using the terminal's color profile.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Dim renders s in a muted color, used for hints under prompts.
func Dim(s string) string {
	return termenv.String(s).Faint().String()
}
