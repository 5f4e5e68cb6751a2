package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/tortuga/pkg/runner"
)

// ReportMarkdown summarises a run as a markdown table.
func ReportMarkdown(report *runner.Report) string {
	var b strings.Builder
	b.WriteString("## Run summary\n\n")
	b.WriteString("| Program | Turtle | Duration | Result |\n")
	b.WriteString("|---|---|---|---|\n")
	for _, res := range report.Results {
		result := "ok"
		if res.Err != nil {
			result = "failed: " + escape(res.Err.Error())
		}
		fmt.Fprintf(&b, "| %s | #%d | %s | %s |\n",
			escape(res.Name), res.TurtleID, res.Duration.Round(time.Millisecond), result)
	}

	failed := len(report.Failed())
	fmt.Fprintf(&b, "\n%d program(s), %d failed, in %s.", len(report.Results), failed, report.Duration.Round(time.Millisecond))
	if report.Interrupted {
		b.WriteString(" Interrupted.")
	}
	b.WriteString("\n")
	return b.String()
}

func escape(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
