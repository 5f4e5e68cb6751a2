package tui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/tortuga/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportMarkdown(t *testing.T) {
	report := &runner.Report{
		Results: []runner.Result{
			{Name: "square", TurtleID: 1, Duration: 1500 * time.Millisecond},
			{Name: "bad|name", TurtleID: 2, Err: errors.New("circle needs at least one step")},
		},
		Duration:    2 * time.Second,
		Interrupted: true,
	}

	md := ReportMarkdown(report)
	assert.Contains(t, md, "| square | #1 | 1.5s | ok |")
	assert.Contains(t, md, `bad\|name`)
	assert.Contains(t, md, "failed: circle needs at least one step")
	assert.Contains(t, md, "2 program(s), 1 failed, in 2s. Interrupted.")
}

func TestNewRenderer_Plain(t *testing.T) {
	render, err := NewRenderer("notty")
	require.NoError(t, err)

	out, err := render("## Run summary\n\nall **good**")
	require.NoError(t, err)
	assert.Contains(t, out, "Run summary")
	assert.Contains(t, out, "good")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3\n")
	assert.Contains(t, buf.String(), "turtle graphics, v1.2.3")
	assert.NotContains(t, buf.String(), "\x1b[", "a buffer is not a terminal")
}
