package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/colonyops/petpix/internal/core/label"
	"github.com/colonyops/petpix/internal/core/styles"
	"github.com/colonyops/petpix/internal/petpix"
	"github.com/colonyops/petpix/internal/preview"
	"github.com/colonyops/petpix/internal/printer"
	"github.com/colonyops/petpix/pkg/iojson"
)

type RandomCmd struct {
	flags *Flags
	app   *petpix.App

	label  string
	save   string
	asJSON bool
}

// RandomResult is the --json output of the random command.
type RandomResult struct {
	Label  label.Label `json:"label"`
	URL    string      `json:"url,omitempty"`
	Format string      `json:"format,omitempty"`
	Width  int         `json:"width,omitempty"`
	Height int         `json:"height,omitempty"`
	Size   int64       `json:"size,omitempty"`
	Saved  string      `json:"saved,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// NewRandomCmd creates a new random command
func NewRandomCmd(flags *Flags, app *petpix.App) *RandomCmd {
	return &RandomCmd{flags: flags, app: app}
}

// Register adds the random command to the application
func (cmd *RandomCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "random",
		Usage:     "Fetch a random image for a label",
		UsageText: "petpix random [--label cat|dog] [--save PATH] [--json]",
		Description: `Asks the service for a random image with the given label, then
downloads it to check that it loads.

With --save the image is also written to PATH. With --json a single
JSON object describing the result is written to stdout instead of
styled output.

Exits non-zero if the service call or the image load failed.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "label",
				Aliases:     []string{"l"},
				Usage:       "label to fetch (cat, dog); defaults to default_label",
				Destination: &cmd.label,
			},
			&cli.StringFlag{
				Name:        "save",
				Aliases:     []string{"o"},
				Usage:       "write the image to `PATH`",
				Destination: &cmd.save,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output the result as JSON",
				Destination: &cmd.asJSON,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *RandomCmd) run(ctx context.Context, c *cli.Command) error {
	if err := cmd.flags.Ready(); err != nil {
		return err
	}

	l, err := flagLabel(cmd.label, cmd.flags.Config.Label())
	if err != nil {
		return err
	}

	p := printer.Ctx(ctx)
	if !cmd.asJSON {
		stop := p.Follow(cmd.app.Bus)
		defer stop()
	}

	results := watch(cmd.app.Bus)
	defer results.Close()

	cmd.app.Retriever.FetchRandom(ctx, l)

	out := RandomResult{Label: l, URL: cmd.app.Retriever.LastResult()}
	if out.URL != "" {
		info, err := cmd.load(ctx, out.URL)
		if err != nil {
			cmd.app.Retriever.ReportRenderFailure(err)
		} else {
			out.Format, out.Width, out.Height, out.Size = info.Format, info.Width, info.Height, info.Size
			out.Saved = cmd.save
		}

		if !cmd.asJSON {
			p.Infof("%s", styles.LinkStyle.Render(out.URL))
			if err == nil {
				p.Mutedf("%s %s", styles.IconImage, info)
			}
		}
	}

	out.Error = firstError(results.Take())

	if cmd.asJSON {
		if err := iojson.WriteLine(c.Root().Writer, out); err != nil {
			return err
		}
	} else if out.Saved != "" {
		p.Successf("Saved to %s", out.Saved)
	}

	if results.Errors() > 0 {
		return fmt.Errorf("random %s failed", l)
	}
	return nil
}

func (cmd *RandomCmd) load(ctx context.Context, url string) (preview.Info, error) {
	if cmd.save != "" {
		return cmd.app.Loader.Save(ctx, url, cmd.save)
	}
	return cmd.app.Loader.Load(ctx, url)
}
