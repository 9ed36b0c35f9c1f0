package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage"
)

// Snapshot actions.
const (
	SnapshotCreate  = "create"
	SnapshotList    = "list"
	SnapshotRestore = "restore"
)

// SnapshotCommand creates or lists SQLite snapshots.
type SnapshotCommand struct {
	BaseCommand
	snapshots *storage.SnapshotManager
	action    string
	out       io.Writer
}

// NewSnapshotCommand creates a command running action against snapshots.
func NewSnapshotCommand(snapshots *storage.SnapshotManager, action string, out io.Writer) *SnapshotCommand {
	return &SnapshotCommand{
		BaseCommand: BaseCommand{
			name:        "Snapshot",
			description: fmt.Sprintf("Snapshot %s in %s", action, snapshots.Dir()),
		},
		snapshots: snapshots,
		action:    action,
		out:       out,
	}
}

// Execute runs the snapshot action.
func (c *SnapshotCommand) Execute(ctx context.Context) error {
	switch c.action {
	case SnapshotCreate:
		info, err := c.snapshots.Snapshot(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Snapshot written to %s (%d bytes)\n", info.Path, info.Size)
		return nil

	case SnapshotList:
		list, err := c.snapshots.List()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintf(c.out, "No snapshots in %s\n", c.snapshots.Dir())
			return nil
		}
		tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tSIZE\tCREATED\tSHA256")
		for _, s := range list {
			checksum := s.Checksum
			if len(checksum) > 12 {
				checksum = checksum[:12]
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", s.Name, s.Size, s.ModTime.Format("2006-01-02 15:04"), checksum)
		}
		return tw.Flush()

	default:
		return fmt.Errorf("unknown snapshot action %q", c.action)
	}
}

// RestoreSnapshotCommand replaces a closed SQLite database with a snapshot.
type RestoreSnapshotCommand struct {
	BaseCommand
	snapshotPath string
	dbPath       string
	out          io.Writer
}

// NewRestoreSnapshotCommand creates a restore command.
func NewRestoreSnapshotCommand(snapshotPath, dbPath string, out io.Writer) *RestoreSnapshotCommand {
	return &RestoreSnapshotCommand{
		BaseCommand: BaseCommand{
			name:        "RestoreSnapshot",
			description: fmt.Sprintf("Restore %s from %s", dbPath, snapshotPath),
		},
		snapshotPath: snapshotPath,
		dbPath:       dbPath,
		out:          out,
	}
}

// Execute restores the snapshot.
func (c *RestoreSnapshotCommand) Execute(ctx context.Context) error {
	if err := storage.RestoreSnapshot(c.snapshotPath, c.dbPath); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Restored %s from %s\n", c.dbPath, c.snapshotPath)
	return nil
}
