package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/afero"

	"github.com/ramonehamilton/EDH-Tracker/internal/collection"
	"github.com/ramonehamilton/EDH-Tracker/internal/export"
	"github.com/ramonehamilton/EDH-Tracker/internal/stats"
)

// ExportTarget says where an export goes. Out takes precedence over Dir.
type ExportTarget struct {
	Format    export.Format
	Dir       string
	Out       io.Writer
	Overwrite bool
}

// ExportCommand writes games, decks or a statistic to a file or stream.
type ExportCommand struct {
	BaseCommand
	collection *collection.Service
	fs         afero.Fs
	uid        string
	dataset    string
	filter     stats.GameFilter
	target     ExportTarget
	now        func() time.Time
	path       string
}

// NewExportCommand creates a command exporting dataset for uid.
func NewExportCommand(coll *collection.Service, fs afero.Fs, uid, dataset string, filter stats.GameFilter, target ExportTarget) *ExportCommand {
	return &ExportCommand{
		BaseCommand: BaseCommand{
			name:        "Export",
			description: fmt.Sprintf("Export %s as %s", dataset, target.Format),
		},
		collection: coll,
		fs:         fs,
		uid:        uid,
		dataset:    dataset,
		filter:     filter,
		target:     target,
		now:        time.Now,
	}
}

// Execute writes the export.
func (c *ExportCommand) Execute(ctx context.Context) error {
	games, decks, err := c.collection.Snapshot(ctx, c.uid)
	if err != nil {
		return err
	}

	data, err := export.SelectDataset(c.dataset, c.target.Format, games, decks, c.filter)
	if err != nil {
		return err
	}

	builder := export.NewExportBuilder(c.fs).
		WithFormat(c.target.Format).
		WithPrettyJSON(true).
		WithOverwrite(c.target.Overwrite)
	if c.target.Out != nil {
		builder.WithWriter(c.target.Out)
	} else {
		builder.WithFilePath(c.target.Dir).WithDefaultFilename(c.dataset, c.now())
		c.path = builder.FilePath()
	}
	return builder.Export(data)
}

// Path returns the file written by Execute, or "" for stream exports.
func (c *ExportCommand) Path() string {
	return c.path
}
