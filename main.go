package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/petpix/internal/commands"
	"github.com/colonyops/petpix/internal/core/config"
	"github.com/colonyops/petpix/internal/core/logging"
	"github.com/colonyops/petpix/internal/core/notice"
	"github.com/colonyops/petpix/internal/petpix"
	"github.com/colonyops/petpix/internal/printer"
	"github.com/colonyops/petpix/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var (
		logCloser func()
		petApp    = &petpix.App{}
	)

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "petpix",
		Usage:     "Upload and browse labeled pet pictures",
		UsageText: "petpix [global options] command [command options]",
		Description: `petpix talks to a pet image service: upload a picture labeled as a
cat or a dog, or fetch a random picture for a label.

Run 'petpix' with no arguments to open the interactive interface.
Run 'petpix upload --label dog rex.jpg' to upload from the command line.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("PETPIX_LOG_LEVEL"),
				Value:       "warn",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to stderr, or " + commands.DefaultLogFile() + " for the TUI)",
				Sources:     cli.EnvVars("PETPIX_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("PETPIX_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "api-base",
				Usage:       "image service base URL, including any stage prefix",
				Sources:     cli.EnvVars("PETPIX_API_BASE"),
				Destination: &flags.APIBase,
			},
			&cli.StringFlag{
				Name:        "default-label",
				Usage:       "label used when a command is not given one (cat, dog)",
				Sources:     cli.EnvVars("PETPIX_DEFAULT_LABEL"),
				Destination: &flags.DefaultLabel,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			// The TUI owns the terminal, so it always logs to a file.
			logFile := flags.LogFile
			if logFile == "" && c.Args().Len() == 0 {
				logFile = commands.DefaultLogFile()
			}

			logger, closer, err := logutils.New(flags.LogLevel, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger.Hook(logging.ContextHook{})
			logCloser = closer

			ctx = printer.NewContext(ctx, printer.New(os.Stderr))

			cfg, err := config.Load(flags.ConfigPath, flags.Overrides())
			if err != nil {
				// Reported by commands that need the service; config
				// validate still runs.
				flags.ConfigErr = err
				log.Debug().Err(err).Str("path", flags.ConfigPath).Msg("config not loaded")
				return ctx, nil
			}
			flags.Config = cfg

			built, err := petpix.New(cfg, petpix.WithBusOptions(notice.WithLogger(logging.Component("notice"))))
			if err != nil {
				return ctx, err
			}

			// Populate the pre-allocated App struct (commands already hold a pointer to it)
			*petApp = *built

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			// Close log file
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	tuiCmd := commands.NewTuiCmd(flags, petApp)

	app = commands.NewUploadCmd(flags, petApp).Register(app)
	app = commands.NewRandomCmd(flags, petApp).Register(app)
	app = commands.NewBatchCmd(flags, petApp).Register(app)
	app = commands.NewConfigValidateCmd(flags).Register(app)

	// Register TUI flags on root command
	app.Flags = append(app.Flags, tuiCmd.Flags()...)

	// Set TUI as default action when no subcommand is provided
	app.Action = func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() > 0 {
			return fmt.Errorf("unknown command %q. Run 'petpix --help' for usage", c.Args().First())
		}
		return tuiCmd.Run(ctx, c)
	}

	exitCode := 0
	runErr := app.Run(ctx, os.Args)
	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr.Error())
		exitCode = 1
	}

	cancel()
	os.Exit(exitCode)
}
