// Package render turns search results into something a person can read:
// a styled terminal table, or GeoJSON for map tools.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorTeal  = lipgloss.Color("#20B9B4")
	colorMuted = lipgloss.Color("#2C4A54")
	colorError = lipgloss.Color("#E74C3C")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorTeal)
	headerStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorTeal).Padding(0, 1)
)

// Row is one line of a plan.
type Row struct {
	Step   int
	Action string
	State  string
	Cost   float64
}

// Plan is the printable outcome of one search.
type Plan struct {
	Title     string
	Found     bool
	Rows      []Row
	TotalCost float64
	CostUnit  string
	Expanded  int
}

// Text writes the plan as an aligned table inside a rounded box.
// A plan that was not found prints a single "no solution" line.
func Text(w io.Writer, plan Plan) error {
	var body strings.Builder
	body.WriteString(titleStyle.Render(plan.Title))
	body.WriteString("\n")
	if !plan.Found {
		body.WriteString(failStyle.Render("no solution"))
		body.WriteString(mutedStyle.Render(fmt.Sprintf("  (%d states expanded)", plan.Expanded)))
		_, err := fmt.Fprintln(w, boxStyle.Render(body.String()))
		return err
	}

	actionWidth, stateWidth := len("action"), len("state")
	for _, row := range plan.Rows {
		actionWidth = max(actionWidth, len(row.Action))
		stateWidth = max(stateWidth, len(row.State))
	}
	format := fmt.Sprintf("%%4s  %%-%ds  %%-%ds  %%10s", actionWidth, stateWidth)
	body.WriteString(headerStyle.Render(fmt.Sprintf(format, "#", "action", "state", "cost")))
	for _, row := range plan.Rows {
		body.WriteString("\n")
		body.WriteString(fmt.Sprintf(format, fmt.Sprint(row.Step), row.Action, row.State, formatCost(row.Cost)))
	}
	body.WriteString("\n")
	summary := fmt.Sprintf("total %s%s, %d steps, %d states expanded",
		formatCost(plan.TotalCost), unitSuffix(plan.CostUnit), max(len(plan.Rows)-1, 0), plan.Expanded)
	body.WriteString(mutedStyle.Render(summary))
	_, err := fmt.Fprintln(w, boxStyle.Render(body.String()))
	return err
}

func formatCost(cost float64) string {
	if cost == float64(int64(cost)) {
		return fmt.Sprintf("%d", int64(cost))
	}
	return fmt.Sprintf("%.2f", cost)
}

func unitSuffix(unit string) string {
	if unit == "" {
		return ""
	}
	return " " + unit
}
