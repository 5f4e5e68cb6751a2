package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text string
	hex  string
}{
	{`  _             _                        `, "#34d399"},
	{` | |_ ___  _ __| |_ _   _  __ _  __ _    `, "#10b981"},
	{` | __/ _ \| '__| __| | | |/ _' |/ _' |   `, "#059669"},
	{` | || (_) | |  | |_| |_| | (_| | (_| |   `, "#047857"},
	{`  \__\___/|_|   \__|\__,_|\__, |\__,_|   `, "#065f46"},
	{`                          |___/          `, "#064e3b"},
}

// PrintBanner writes the tortuga banner and version to w. Colours follow the
// terminal profile of w, so redirected output stays plain.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.hex)))
	}
	fmt.Fprintln(w, out.String("  turtle graphics, v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
