package commands

import (
	"context"
	"fmt"

	"github.com/ramonehamilton/EDH-Tracker/internal/charts"
	"github.com/ramonehamilton/EDH-Tracker/internal/collection"
	"github.com/ramonehamilton/EDH-Tracker/internal/stats"
)

// ChartCommand renders a statistic chart to an HTML file.
type ChartCommand struct {
	BaseCommand
	collection *collection.Service
	uid        string
	kind       charts.Kind
	filter     stats.GameFilter
	output     string
	open       bool
	config     charts.ChartConfig

	// openFile is swapped out in tests.
	openFile func(path string) error
}

// NewChartCommand creates a command rendering the kind chart to output,
// optionally opening it in the browser.
func NewChartCommand(coll *collection.Service, uid string, kind charts.Kind, filter stats.GameFilter, output string, open bool) *ChartCommand {
	config := charts.DefaultChartConfig()
	if !filter.Range.IsZero() {
		config.Subtitle = filter.Range.FormatPeriod()
	}
	return &ChartCommand{
		BaseCommand: BaseCommand{
			name:        "Chart",
			description: fmt.Sprintf("Render %s chart to %s", kind, output),
		},
		collection: coll,
		uid:        uid,
		kind:       kind,
		filter:     filter,
		output:     output,
		open:       open,
		config:     config,
		openFile:   charts.OpenInBrowser,
	}
}

// Execute renders the chart.
func (c *ChartCommand) Execute(ctx context.Context) error {
	games, decks, err := c.collection.Snapshot(ctx, c.uid)
	if err != nil {
		return err
	}

	chart, err := charts.Build(c.kind, stats.ComputeDashboard(games, decks, c.filter), c.config)
	if err != nil {
		return err
	}
	if err := charts.RenderFile(chart, c.output); err != nil {
		return err
	}

	if c.open {
		return c.openFile(c.output)
	}
	return nil
}
