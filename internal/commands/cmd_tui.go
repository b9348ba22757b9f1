package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/petpix/internal/petpix"
	"github.com/colonyops/petpix/internal/printer"
	"github.com/colonyops/petpix/internal/profiler"
	"github.com/colonyops/petpix/internal/tui"
)

type TuiCmd struct {
	flags        *Flags
	app          *petpix.App
	path         string
	profilerPort int
}

// NewTuiCmd creates a new tui command
func NewTuiCmd(flags *Flags, app *petpix.App) *TuiCmd {
	return &TuiCmd{
		flags: flags,
		app:   app,
	}
}

// Flags returns the TUI-specific flags for registration on the root command
func (cmd *TuiCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "image",
			Usage:       "image path to prefill in the upload field",
			Destination: &cmd.path,
		},
		&cli.IntFlag{
			Name:        "profiler-port",
			Usage:       "serve pprof and /debug/state on 127.0.0.1 at this port (e.g., 6060)",
			Sources:     cli.EnvVars("PETPIX_PROFILER_PORT"),
			Destination: &cmd.profilerPort,
		},
	}
}

// Run executes the TUI. Exported for use as default command.
func (cmd *TuiCmd) Run(ctx context.Context, c *cli.Command) error {
	return cmd.run(ctx, c)
}

func (cmd *TuiCmd) run(ctx context.Context, _ *cli.Command) error {
	if err := cmd.flags.Ready(); err != nil {
		return err
	}

	log.Debug().Str("api_base", cmd.app.API.Base()).Msg("starting tui")

	// Start profiler server if enabled
	if cmd.profilerPort > 0 {
		profServer := profiler.New(cmd.profilerPort, func() any { return cmd.app.Snapshot() })
		if err := profServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profiler: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := profServer.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("failed to shutdown profiler server")
			}
		}()
		log.Info().
			Str("url", fmt.Sprintf("http://%s/debug/", profServer.Addr())).
			Msg("profiler endpoint available")
	}

	// Config warnings are shown as toasts and repeated on stderr once the
	// alternate screen is gone.
	held, flush := printer.NewDeferred()
	defer func() {
		if err := flush(os.Stderr); err != nil {
			log.Error().Err(err).Msg("failed to flush deferred output")
		}
	}()

	for _, w := range cmd.flags.Config.Warnings() {
		held.Infof("warning: %s: %s", w.Field, w.Message)
		cmd.app.Bus.Warnf("%s: %s", w.Field, w.Message)
	}

	return tui.Run(ctx, tui.Options{
		Bus:       cmd.app.Bus,
		Uploader:  cmd.app.Uploader,
		Retriever: cmd.app.Retriever,
		Loader:    cmd.app.Loader,
		Label:     cmd.flags.Config.Label(),
		Path:      cmd.path,
	})
}
