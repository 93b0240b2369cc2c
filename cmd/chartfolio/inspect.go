package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"
	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"

	"github.com/seenimoa/chartfolio/internal/chart"
	"github.com/seenimoa/chartfolio/internal/config"
	"github.com/seenimoa/chartfolio/internal/site"
	"github.com/seenimoa/chartfolio/internal/views"
)

// Styles
var (
	accentFg  = lipgloss.Color("#7C3AED")
	dimFg     = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	okFg      = lipgloss.Color("#10B981")
	errFg     = lipgloss.Color("#DC2626")
	borderCol = lipgloss.Color("#243141")

	titleStyle  = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	headerStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	dimStyle    = lipgloss.NewStyle().Foreground(dimFg).Padding(0, 1)
	okStyle     = lipgloss.NewStyle().Foreground(okFg).Padding(0, 1)
	errStyle    = lipgloss.NewStyle().Foreground(errFg).Padding(0, 1)
)

// --- Inspect Command ---

var inspectCmd = &cobra.Command{
	Use:       "inspect [bar|donut]",
	Short:     "Print the computed layout of a chart",
	Long:      "Print the computed layout of a chart as a table, or the whole render plan with --raw.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{site.ChartBar, site.ChartDonut},
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")
		b := site.New(cfg, logger)

		plan, err := b.Plan(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if raw {
			fmt.Fprintln(out, litter.Sdump(plan))
			return nil
		}

		switch p := plan.(type) {
		case chart.BarPlan:
			fmt.Fprintln(out, titleStyle.Render(p.Title))
			fmt.Fprintln(out, barTable(p))
		case chart.DonutPlan:
			fmt.Fprintln(out, titleStyle.Render(p.Title))
			fmt.Fprintln(out, donutTable(p))
		default:
			return errors.Errorf("no table layout for %T", plan)
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().Bool("raw", false, "dump the full render plan")
}

// ════════════════════════════════════════════════════════════════════
// Tables
// ════════════════════════════════════════════════════════════════════

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(borderCol)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func barTable(p chart.BarPlan) string {
	t := newTable("Shape", "Label", "Value", "%", "X", "Y", "Height", "Color")
	for _, b := range p.Bars {
		t.Row(b.ID, b.Label, num(b.Value), strconv.Itoa(b.Percent),
			num(b.X), num(b.Y), num(b.Height), b.Color)
	}
	return t.Render()
}

func donutTable(p chart.DonutPlan) string {
	t := newTable("Shape", "Label", "Value", "%", "Start", "End", "Color", "Hover")
	for _, s := range p.Slices {
		t.Row(s.ID, s.Label, num(s.Value), strconv.Itoa(s.Percent),
			num(s.StartAngle), num(s.EndAngle), s.Color, s.HoverColor)
	}
	return t.Render()
}

func viewsTable(statuses []views.Status) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(borderCol)).
		Headers("Mount", "View", "Status")
	failed := make(map[int]bool)
	for i, s := range statuses {
		status := "ok"
		if !s.OK {
			status = s.Error
			failed[i] = true
		}
		t.Row(s.ID, s.Title, status)
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case col == 2 && failed[row]:
			return errStyle
		case col == 2:
			return okStyle
		}
		return cellStyle
	})
	return t.Render()
}

func settingsTable(settings []config.SettingStatus) string {
	t := newTable("Setting", "Value", "Source")
	for _, s := range settings {
		t.Row(s.Name, s.Value, string(s.Source))
	}
	t.StyleFunc(func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case col == 2:
			return dimStyle
		}
		return cellStyle
	})
	return t.Render()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
