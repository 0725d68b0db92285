package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/obby/download-organizer/config"
	"github.com/obby/download-organizer/internal/logging"
	"github.com/obby/download-organizer/internal/organizer"
	"github.com/obby/download-organizer/internal/patterns"
	"github.com/obby/download-organizer/internal/watcher"
)

// newCLIApp creates the CLI application. Running it without a command
// watches the configured root until the context is cancelled.
func newCLIApp(stdout, stderr io.Writer) *cli.App {
	app := &cli.App{
		Name:      "download-organizer",
		Usage:     "Sort files arriving in a directory into category folders",
		Version:   Version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, EnvVars: []string{"ORGANIZER_CONFIG"}, Usage: "TOML config file"},
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "Directory to watch (default ~/Downloads)"},
			&cli.DurationFlag{Name: "debounce", Aliases: []string{"d"}, Usage: "Quiet period before a file is moved (default 1s)"},
			&cli.IntFlag{Name: "workers", Usage: "Number of concurrent movers (default 1)"},
			&cli.BoolFlag{Name: "sweep", Usage: "Also sort files already in the root at startup"},
			&cli.StringFlag{Name: "lock-path", Usage: "Single-instance lock file"},
			&cli.StringFlag{Name: "log-level", Usage: "debug|info|warn|error"},
			&cli.StringFlag{Name: "log-format", Usage: "auto|console|json"},
		},
		Action: func(c *cli.Context) error {
			return runWatch(c, stdout, stderr)
		},
		Commands: []*cli.Command{
			classifyCmd(stdout),
			sampleConfigCmd(stdout),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// loadConfig merges the config file, environment and command-line flags.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("root") {
		root, err := config.ExpandPath(c.String("root"))
		if err != nil {
			return nil, err
		}
		cfg.Root = root
	}
	if c.IsSet("debounce") {
		cfg.Debounce = c.Duration("debounce")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("sweep") {
		cfg.SweepOnStart = c.Bool("sweep")
	}
	if c.IsSet("lock-path") {
		cfg.LockPath = c.String("lock-path")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.LogFormat = c.String("log-format")
	}

	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runWatch wires the organizer together and blocks until interrupted.
func runWatch(c *cli.Context, stdout, stderr io.Writer) error {
	if c.NArg() > 0 {
		return fmt.Errorf("unknown command %q", c.Args().First())
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Writer: stderr,
	})
	if err != nil {
		return err
	}

	matcher, err := patterns.NewMatcher(cfg.IgnorePatterns)
	if err != nil {
		return err
	}

	mover := organizer.NewMover(cfg.Root, organizer.DefaultTable(), stdout, logger)

	fw, err := watcher.NewFileWatcher(watcher.Options{
		Root:         cfg.Root,
		Debounce:     cfg.Debounce,
		Workers:      cfg.Workers,
		SweepOnStart: cfg.SweepOnStart,
		LockPath:     cfg.LockPath,
	}, mover, matcher, logger)
	if err != nil {
		return err
	}

	return fw.Run(c.Context)
}

// classifyCmd prints the category each name would be sorted into, or the
// whole table with --list.
func classifyCmd(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Show the category for file names without moving anything",
		ArgsUsage: "NAME...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "list", Aliases: []string{"l"}, Usage: "Print every category and its extensions"},
		},
		Action: func(c *cli.Context) error {
			table := organizer.DefaultTable()
			if c.Bool("list") {
				for _, cat := range table.Categories() {
					exts := strings.Join(cat.Extensions, " ")
					if cat.Name == table.Fallback() {
						exts = "(fallback)"
					}
					fmt.Fprintf(stdout, "%s\t%s\n", cat.Name, exts)
				}
				return nil
			}
			if c.NArg() == 0 {
				return fmt.Errorf("classify requires at least one file name")
			}
			for _, name := range c.Args().Slice() {
				fmt.Fprintf(stdout, "%s\t%s\n", name, table.Classify(filepath.Base(name)))
			}
			return nil
		},
	}
}

// sampleConfigCmd prints a commented configuration file.
func sampleConfigCmd(stdout io.Writer) *cli.Command {
	return &cli.Command{
		Name:  "sample-config",
		Usage: "Print a sample TOML configuration",
		Action: func(_ *cli.Context) error {
			_, err := io.WriteString(stdout, config.SampleConfig())
			return err
		},
	}
}
