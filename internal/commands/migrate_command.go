package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage"
)

// Migration actions.
const (
	MigrateUp      = "up"
	MigrateDown    = "down"
	MigrateVersion = "version"
	MigrateForce   = "force"
)

// MigrateCommand manages the SQLite schema.
type MigrateCommand struct {
	BaseCommand
	dbPath  string
	action  string
	version int
	out     io.Writer
}

// NewMigrateCommand creates a schema command. version is only used by force.
func NewMigrateCommand(dbPath, action string, version int, out io.Writer) *MigrateCommand {
	return &MigrateCommand{
		BaseCommand: BaseCommand{
			name:        "Migrate",
			description: fmt.Sprintf("Run migration %q on %s", action, dbPath),
		},
		dbPath:  dbPath,
		action:  action,
		version: version,
		out:     out,
	}
}

// Execute runs the migration action.
func (c *MigrateCommand) Execute(ctx context.Context) (err error) {
	mm, err := storage.NewMigrationManager(c.dbPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := mm.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	switch c.action {
	case MigrateUp:
		err = mm.Up()
	case MigrateDown:
		err = mm.Down()
	case MigrateForce:
		err = mm.Force(c.version)
	case MigrateVersion:
	default:
		return fmt.Errorf("unknown migration action %q", c.action)
	}
	if err != nil {
		return err
	}

	version, dirty, err := mm.Version()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "schema version %d", version)
	if dirty {
		fmt.Fprint(c.out, " (dirty)")
	}
	fmt.Fprintln(c.out)
	return nil
}
