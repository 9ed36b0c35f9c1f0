// Package main is the EDH Tracker command-line tool.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/ramonehamilton/EDH-Tracker/internal/app"
	"github.com/ramonehamilton/EDH-Tracker/internal/charts"
	"github.com/ramonehamilton/EDH-Tracker/internal/colors"
	"github.com/ramonehamilton/EDH-Tracker/internal/commands"
	"github.com/ramonehamilton/EDH-Tracker/internal/config"
	"github.com/ramonehamilton/EDH-Tracker/internal/export"
	"github.com/ramonehamilton/EDH-Tracker/internal/logging"
	"github.com/ramonehamilton/EDH-Tracker/internal/stats"
	"github.com/ramonehamilton/EDH-Tracker/internal/version"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "stats":
		err = runStats(os.Args[2:])
	case "export":
		err = runExport(os.Args[2:])
	case "backup":
		err = runBackup(os.Args[2:])
	case "import":
		err = runImport(os.Args[2:])
	case "chart":
		err = runChart(os.Args[2:])
	case "card":
		err = runCard(os.Args[2:])
	case "reconcile":
		err = runReconcile(os.Args[2:])
	case "migrate":
		err = runMigrate(os.Args[2:])
	case "snapshot":
		err = runSnapshot(os.Args[2:])
	case "version", "-v", "--version":
		fmt.Printf("edh-tracker %s\n", version.GetVersion())
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("EDH Tracker")
	fmt.Println()
	fmt.Println("Usage: edh-tracker <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  stats [kind]            Show statistics (" + strings.Join(stats.Kinds, ", ") + ")")
	fmt.Println("  export <dataset>        Export games, decks or a statistic as CSV or JSON")
	fmt.Println("  backup                  Write a full collection backup")
	fmt.Println("  import <file>           Replace the collection with a backup")
	fmt.Println("  chart <kind>            Render a chart (lifetime, monthly, colors)")
	fmt.Println("  card <name>             Look up a commander")
	fmt.Println("  reconcile               Repair broken friend links")
	fmt.Println("  migrate <action>        Manage the SQLite schema (up, down, version, force <n>)")
	fmt.Println("  snapshot <action>       Manage SQLite snapshots (create, list, restore <file>)")
	fmt.Println("  version                 Print the version")
	fmt.Println()
	fmt.Println("Run 'edh-tracker <command> -h' for command options.")
}

// session is the opened application for one command.
type session struct {
	app    *app.App
	uid    string
	fs     afero.Fs
	logger *zap.Logger
}

func (s *session) close() {
	if err := s.app.Close(); err != nil {
		s.logger.Warn("error closing store", zap.Error(err))
	}
	_ = s.logger.Sync()
}

// globalFlags are accepted by every command.
type globalFlags struct {
	configPath string
	backend    string
	user       string
	debug      bool
}

func (g *globalFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&g.configPath, "config", "", "Config file (default: ~/.edh-tracker/config.toml)")
	fs.StringVar(&g.backend, "backend", "", "Storage backend: sqlite, redis or file")
	fs.StringVar(&g.user, "user", "", "User id (default: the local user)")
	fs.BoolVar(&g.debug, "d", false, "Enable debug logging")
}

func (g *globalFlags) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if g.configPath != "" {
		cfg, err = config.LoadFrom(g.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if g.backend != "" {
		cfg.Storage.Backend = g.backend
	}
	if g.debug {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func (g *globalFlags) open(ctx context.Context) (*session, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}

	logger := logging.New(cfg.Log, os.Stderr)
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	fs := afero.NewOsFs()
	uid := g.user
	if uid == "" {
		uid, err = app.LocalUserID(fs, config.DataDir())
		if err != nil {
			_ = a.Close()
			return nil, err
		}
	}
	return &session{app: a, uid: uid, fs: fs, logger: logger}, nil
}

// filterFlags select the games a statistic covers.
type filterFlags struct {
	rangeName string
	deck      string
	players   int
}

func (f *filterFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.rangeName, "range", "", "Time range: all, month, last-month, year, last-year, <n>d or a year such as 2024")
	fs.StringVar(&f.deck, "deck", "", "Only games played with this deck")
	fs.IntVar(&f.players, "players", 0, "Only games with this many players")
}

func (f *filterFlags) filter() (stats.GameFilter, error) {
	tr, err := stats.ParseRange(f.rangeName, time.Now())
	if err != nil {
		return stats.GameFilter{}, err
	}
	if f.players < 0 {
		return stats.GameFilter{}, fmt.Errorf("invalid players %d", f.players)
	}
	return stats.GameFilter{Range: tr, DeckName: f.deck, TotalPlayers: f.players}, nil
}

func execute(ctx context.Context, s *session, cmds ...commands.Command) error {
	return commands.NewCommandExecutor(0, s.logger).ExecuteAll(ctx, cmds)
}

func runStats(args []string) error {
	var g globalFlags
	var f filterFlags
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	g.register(fs)
	f.register(fs)
	asJSON := fs.Bool("json", false, "Print JSON instead of tables")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filter, err := f.filter()
	if err != nil {
		return err
	}

	ctx := context.Background()
	s, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	return execute(ctx, s, commands.NewStatsCommand(s.app.Collection, s.uid, fs.Arg(0), filter, *asJSON, os.Stdout))
}

func runExport(args []string) error {
	var g globalFlags
	var f filterFlags
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	g.register(fs)
	f.register(fs)
	format := fs.String("format", "csv", "Output format: csv or json")
	dir := fs.String("dir", ".", "Output directory")
	stdout := fs.Bool("stdout", false, "Write to stdout instead of a file")
	overwrite := fs.Bool("overwrite", false, "Replace an existing file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: edh-tracker export <games|decks|statistic> [flags]")
	}

	exportFormat, err := export.ParseFormat(*format)
	if err != nil {
		return err
	}
	filter, err := f.filter()
	if err != nil {
		return err
	}

	ctx := context.Background()
	s, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	target := commands.ExportTarget{Format: exportFormat, Dir: *dir, Overwrite: *overwrite}
	if *stdout {
		target.Out = os.Stdout
	}
	cmd := commands.NewExportCommand(s.app.Collection, s.fs, s.uid, fs.Arg(0), filter, target)
	if err := execute(ctx, s, cmd); err != nil {
		return err
	}
	if cmd.Path() != "" {
		fmt.Printf("Exported %s to %s\n", fs.Arg(0), cmd.Path())
	}
	return nil
}

func runBackup(args []string) error {
	var g globalFlags
	fs := flag.NewFlagSet("backup", flag.ExitOnError)
	g.register(fs)
	dir := fs.String("dir", filepath.Join(config.DataDir(), "backups"), "Backup directory")
	compress := fs.Bool("gzip", true, "Compress the backup")
	password := fs.String("password", os.Getenv("EDH_BACKUP_PASSWORD"), "Encrypt the backup with this password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	s, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	cmd := commands.NewBackupCommand(s.app.Friends, s.fs, s.uid, *dir, *compress)
	if *password != "" {
		cmd.WithEncryption(export.DefaultEncryptionConfig(*password))
	}
	if err := execute(ctx, s, cmd); err != nil {
		return err
	}
	fmt.Printf("Backup written to %s\n", cmd.Path())
	return nil
}

func runImport(args []string) error {
	var g globalFlags
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	g.register(fs)
	password := fs.String("password", os.Getenv("EDH_BACKUP_PASSWORD"), "Password of an encrypted backup")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: edh-tracker import <backup-file> [flags]")
	}

	ctx := context.Background()
	s, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	imp := commands.NewImportCommand(s.app.Collection, s.fs, s.uid, fs.Arg(0))
	if *password != "" {
		imp.WithEncryption(export.DefaultEncryptionConfig(*password))
	}
	if err := execute(ctx, s, imp, commands.NewVerifyImportCommand(imp)); err != nil {
		return err
	}
	b := imp.Imported()
	fmt.Printf("Restored %d decks, %d games and %d pod buddies\n", len(b.Decks), len(b.Games), len(b.PodBuddies))
	return nil
}

func runChart(args []string) error {
	var g globalFlags
	var f filterFlags
	fs := flag.NewFlagSet("chart", flag.ExitOnError)
	g.register(fs)
	f.register(fs)
	output := fs.String("o", "", "Output HTML file (default: <kind>.html)")
	open := fs.Bool("open", false, "Open the chart in the browser")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: edh-tracker chart <lifetime|monthly|colors> [flags]")
	}

	kind := charts.Kind(fs.Arg(0))
	path := *output
	if path == "" {
		path = string(kind) + ".html"
	}
	filter, err := f.filter()
	if err != nil {
		return err
	}

	ctx := context.Background()
	s, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if err := execute(ctx, s, commands.NewChartCommand(s.app.Collection, s.uid, kind, filter, path, *open)); err != nil {
		return err
	}
	fmt.Printf("Chart written to %s\n", path)
	return nil
}

func runCard(args []string) error {
	var g globalFlags
	fs := flag.NewFlagSet("card", flag.ExitOnError)
	g.register(fs)
	suggest := fs.Bool("suggest", false, "List commander names matching the query")
	if err := fs.Parse(args); err != nil {
		return err
	}
	name := strings.Join(fs.Args(), " ")
	if name == "" {
		return fmt.Errorf("usage: edh-tracker card <name> [flags]")
	}

	ctx := context.Background()
	s, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	if *suggest {
		for _, match := range s.app.Cards.Suggest(ctx, name) {
			fmt.Println(match)
		}
		return nil
	}

	commander := s.app.Cards.GetCommander(ctx, name)
	if commander == nil {
		return fmt.Errorf("no card named %q", name)
	}
	fmt.Println(commander.Name)
	fmt.Println(commander.Type)
	fmt.Println(colors.Label(colors.Join(commander.ColorIdentity)))
	if img := s.app.Cards.ImageURL(ctx, commander.Name); img != "" {
		fmt.Println(img)
	}
	return nil
}

func runReconcile(args []string) error {
	var g globalFlags
	fs := flag.NewFlagSet("reconcile", flag.ExitOnError)
	g.register(fs)
	dryRun := fs.Bool("dry-run", false, "Report problems without fixing them")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	s, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	return execute(ctx, s, commands.NewReconcileCommand(s.app.Friends, *dryRun, os.Stdout))
}

func runMigrate(args []string) error {
	var g globalFlags
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	g.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: edh-tracker migrate <up|down|version|force> [version]")
	}

	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Storage.Backend != config.BackendSQLite {
		return fmt.Errorf("migrations only apply to the sqlite backend, not %q", cfg.Storage.Backend)
	}

	action := fs.Arg(0)
	target := 0
	if action == commands.MigrateForce {
		if fs.NArg() < 2 {
			return fmt.Errorf("usage: edh-tracker migrate force <version>")
		}
		target, err = strconv.Atoi(fs.Arg(1))
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", fs.Arg(1), err)
		}
	}

	logger := logging.New(cfg.Log, os.Stderr)
	defer func() { _ = logger.Sync() }()
	cmd := commands.NewMigrateCommand(cfg.Storage.SQLitePath, action, target, os.Stdout)
	return commands.NewCommandExecutor(0, logger).Execute(context.Background(), cmd)
}

func runSnapshot(args []string) error {
	var g globalFlags
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	g.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: edh-tracker snapshot <create|list|restore> [file]")
	}

	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}
	if cfg.Storage.Backend != config.BackendSQLite {
		return fmt.Errorf("snapshots only apply to the sqlite backend, not %q", cfg.Storage.Backend)
	}

	ctx := context.Background()
	action := fs.Arg(0)
	if action == commands.SnapshotRestore {
		if fs.NArg() < 2 {
			return fmt.Errorf("usage: edh-tracker snapshot restore <file>")
		}
		logger := logging.New(cfg.Log, os.Stderr)
		defer func() { _ = logger.Sync() }()
		cmd := commands.NewRestoreSnapshotCommand(fs.Arg(1), cfg.Storage.SQLitePath, os.Stdout)
		return commands.NewCommandExecutor(0, logger).Execute(ctx, cmd)
	}

	s, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	snapshots, ok := s.app.Snapshots()
	if !ok {
		return fmt.Errorf("store does not support snapshots")
	}
	return execute(ctx, s, commands.NewSnapshotCommand(snapshots, action, os.Stdout))
}
