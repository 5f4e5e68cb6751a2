package tui

import (
	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
)

// NewRenderer returns a function that renders markdown using glamour.
// An empty style detects a light or dark background; "notty" renders plain
// text for pipes and tests.
func NewRenderer(style string) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(100)}
	switch style {
	case "":
		opts = append(opts, glamour.WithAutoStyle())
	case "notty":
		opts = append(opts, glamour.WithStandardStyle(style), glamour.WithColorProfile(termenv.Ascii))
	default:
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}
