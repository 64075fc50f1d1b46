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
	{`   ____              __       ______             `, "#38bdf8"},
	{`  / __ \__  ______  / /____  / ____/ /___ _      __`, "#22d3ee"},
	{` / / / / / / / __ \/ __/ _ \/ /_  / / __ \ | /| / /`, "#2dd4bf"},
	{`/ /_/ / /_/ / /_/ / /_/  __/ __/ / / /_/ / |/ |/ / `, "#34d399"},
	{`\___\_\__,_/\____/\__/\___/_/   /_/\____/|__/|__/  `, "#4ade80"},
}

// PrintBanner writes the quoteflow banner and version to w, coloured when the terminal supports it.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, out.String("  circuit & security quotes  v"+version).Faint())
	}
	fmt.Fprintln(w)
}
