package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/petpix/internal/core/config"
	"github.com/colonyops/petpix/internal/printer"
	"github.com/colonyops/petpix/pkg/iojson"
)

type ConfigValidateCmd struct {
	flags  *Flags
	format string
}

// ValidationError is a single failing config field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationOutput is the --format json output of config validate.
type ValidationOutput struct {
	Valid    bool                       `json:"valid"`
	Path     string                     `json:"path"`
	Errors   []ValidationError          `json:"errors,omitempty"`
	Warnings []config.ValidationWarning `json:"warnings,omitempty"`
}

// NewConfigValidateCmd creates a new config validate command.
func NewConfigValidateCmd(flags *Flags) *ConfigValidateCmd {
	return &ConfigValidateCmd{flags: flags}
}

// Register adds the config validate command to the application.
func (cmd *ConfigValidateCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Commands: []*cli.Command{
			{
				Name:        "validate",
				Usage:       "Validate configuration file",
				UsageText:   "petpix config validate [options]",
				Description: "Validates the configuration file and flag overrides, reporting every invalid field.",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Usage:       "output format (text, json)",
						Value:       "text",
						Destination: &cmd.format,
					},
				},
				Action: cmd.run,
			},
		},
	})

	return app
}

func (cmd *ConfigValidateCmd) run(ctx context.Context, c *cli.Command) error {
	cfg, err := config.Read(cmd.flags.ConfigPath, cmd.flags.Overrides())
	if err != nil {
		return err
	}

	out := ValidationOutput{
		Path:     cmd.flags.ConfigPath,
		Warnings: cfg.Warnings(),
	}

	if err := cfg.ValidateDeep(cmd.flags.ConfigPath); err != nil {
		out.Errors = validationErrors(err)
	}
	out.Valid = len(out.Errors) == 0

	if cmd.format == "json" {
		if err := iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, out); err != nil {
			return err
		}
	} else {
		cmd.outputText(printer.Ctx(ctx), out)
	}

	if !out.Valid {
		return fmt.Errorf("%d error(s) found", len(out.Errors))
	}
	return nil
}

func (cmd *ConfigValidateCmd) outputText(p *printer.Printer, out ValidationOutput) {
	p.Mutedf("config: %s", out.Path)

	for _, w := range out.Warnings {
		p.Infof("warning: %s: %s", w.Field, w.Message)
	}

	for _, e := range out.Errors {
		p.Errorf("%s: %s", e.Field, e.Message)
	}

	if out.Valid {
		p.Successf("Configuration is valid")
	}
}

func validationErrors(err error) []ValidationError {
	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "config", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{Field: fe.Field, Message: fe.Err.Error()})
	}
	return out
}
