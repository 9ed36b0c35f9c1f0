package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/ramonehamilton/EDH-Tracker/internal/collection"
	"github.com/ramonehamilton/EDH-Tracker/internal/display"
	"github.com/ramonehamilton/EDH-Tracker/internal/export"
	"github.com/ramonehamilton/EDH-Tracker/internal/stats"
)

// StatsCommand prints one statistic, or the dashboard, for a user.
type StatsCommand struct {
	BaseCommand
	collection *collection.Service
	uid        string
	kind       string
	filter     stats.GameFilter
	asJSON     bool
	out        io.Writer
}

// NewStatsCommand creates a command printing the statistic kind as a table,
// or as JSON when asJSON is set.
func NewStatsCommand(coll *collection.Service, uid, kind string, filter stats.GameFilter, asJSON bool, out io.Writer) *StatsCommand {
	if kind == "" {
		kind = "dashboard"
	}
	return &StatsCommand{
		BaseCommand: BaseCommand{
			name:        "Stats",
			description: fmt.Sprintf("Show %s statistics", kind),
		},
		collection: coll,
		uid:        uid,
		kind:       kind,
		filter:     filter,
		asJSON:     asJSON,
		out:        out,
	}
}

// Execute computes and prints the statistic.
func (c *StatsCommand) Execute(ctx context.Context) error {
	games, decks, err := c.collection.Snapshot(ctx, c.uid)
	if err != nil {
		return err
	}

	result, err := stats.Compute(c.kind, games, decks, c.filter)
	if err != nil {
		return err
	}

	if c.asJSON {
		return export.ExportToWriter(c.out, export.FormatJSON, result, true)
	}
	return display.NewPrinter(c.out).Any(result)
}
