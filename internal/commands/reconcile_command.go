package commands

import (
	"context"
	"io"

	"github.com/ramonehamilton/EDH-Tracker/internal/display"
	"github.com/ramonehamilton/EDH-Tracker/internal/friends"
)

// ReconcileCommand repairs one-sided friend links and stale requests.
type ReconcileCommand struct {
	BaseCommand
	friends *friends.Service
	dryRun  bool
	out     io.Writer
	report  *friends.ReconcileReport
}

// NewReconcileCommand creates a repair sweep. With dryRun set nothing is written.
func NewReconcileCommand(fr *friends.Service, dryRun bool, out io.Writer) *ReconcileCommand {
	desc := "Repair friend links"
	if dryRun {
		desc = "Report broken friend links"
	}
	return &ReconcileCommand{
		BaseCommand: BaseCommand{name: "Reconcile", description: desc},
		friends:     fr,
		dryRun:      dryRun,
		out:         out,
	}
}

// Execute runs the sweep and prints its report.
func (c *ReconcileCommand) Execute(ctx context.Context) error {
	report, err := c.friends.Reconcile(ctx, c.dryRun)
	if err != nil {
		return err
	}
	c.report = report
	display.NewPrinter(c.out).Reconcile(report, c.dryRun)
	return nil
}

// Report returns the last sweep's report.
func (c *ReconcileCommand) Report() *friends.ReconcileReport {
	return c.report
}
