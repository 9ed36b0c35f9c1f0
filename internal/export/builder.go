package export

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// ExportBuilder configures and runs an export with a fluent API.
//
//	err := NewExportBuilder(afero.NewOsFs()).
//	    WithFormat(FormatCSV).
//	    WithDefaultFilename("games", time.Now()).
//	    Export(GameRows(games))
type ExportBuilder struct {
	fs         afero.Fs
	format     Format
	filePath   string
	prettyJSON bool
	overwrite  bool
	writer     io.Writer
}

// NewExportBuilder creates a builder writing JSON to fs.
func NewExportBuilder(fs afero.Fs) *ExportBuilder {
	return &ExportBuilder{fs: fs, format: FormatJSON}
}

// WithFormat sets the export format.
func (b *ExportBuilder) WithFormat(format Format) *ExportBuilder {
	b.format = format
	return b
}

// WithFilePath sets the output file. Missing directories are created.
func (b *ExportBuilder) WithFilePath(filePath string) *ExportBuilder {
	b.filePath = filePath
	b.writer = nil
	return b
}

// WithWriter writes to w instead of a file.
func (b *ExportBuilder) WithWriter(w io.Writer) *ExportBuilder {
	b.writer = w
	return b
}

// WithPrettyJSON indents JSON output.
func (b *ExportBuilder) WithPrettyJSON(pretty bool) *ExportBuilder {
	b.prettyJSON = pretty
	return b
}

// WithOverwrite allows replacing an existing file.
func (b *ExportBuilder) WithOverwrite(overwrite bool) *ExportBuilder {
	b.overwrite = overwrite
	return b
}

// WithDefaultFilename names the output after the dataset and time, inside
// the directory of any path already set.
func (b *ExportBuilder) WithDefaultFilename(dataset string, now time.Time) *ExportBuilder {
	name := GenerateFilename(dataset, b.format, now)
	if b.filePath != "" {
		name = filepath.Join(b.filePath, name)
	}
	return b.WithFilePath(name)
}

// FilePath returns the configured output file.
func (b *ExportBuilder) FilePath() string {
	return b.filePath
}

// Build returns the builder's file options.
func (b *ExportBuilder) Build() Options {
	return Options{
		Format:     b.format,
		FilePath:   b.filePath,
		PrettyJSON: b.prettyJSON,
		Overwrite:  b.overwrite,
	}
}

// Export writes data to the configured destination.
func (b *ExportBuilder) Export(data interface{}) error {
	if err := b.validate(); err != nil {
		return err
	}
	if b.writer != nil {
		return ExportToWriter(b.writer, b.format, data, b.prettyJSON)
	}
	return NewExporter(b.fs, b.Build()).Export(data)
}

func (b *ExportBuilder) validate() error {
	if b.writer == nil && b.filePath == "" {
		return fmt.Errorf("either file path or writer must be set")
	}
	if _, err := ParseFormat(string(b.format)); err != nil {
		return err
	}
	return nil
}
