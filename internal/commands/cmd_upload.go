package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/petpix/internal/core/label"
	"github.com/colonyops/petpix/internal/core/styles"
	"github.com/colonyops/petpix/internal/orchestrate"
	"github.com/colonyops/petpix/internal/petpix"
	"github.com/colonyops/petpix/internal/printer"
)

type UploadCmd struct {
	flags *Flags
	app   *petpix.App

	label string
	yes   bool
}

// NewUploadCmd creates a new upload command
func NewUploadCmd(flags *Flags, app *petpix.App) *UploadCmd {
	return &UploadCmd{flags: flags, app: app}
}

// Register adds the upload command to the application
func (cmd *UploadCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "upload",
		Usage:     "Upload labeled images",
		UsageText: "petpix upload [--label cat|dog] FILE|GLOB...",
		Description: `Uploads each matching image in turn under the given label.

Arguments may be plain paths or doublestar globs such as 'pets/**/*.jpg'.
Only .jpg, .jpeg, .png and .webp files are sent.

When --label is omitted on an interactive terminal, a prompt asks for it.
Otherwise default_label from the config is used.

Exits non-zero if any upload failed.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "label",
				Aliases:     []string{"l"},
				Usage:       "label for the images (cat, dog)",
				Destination: &cmd.label,
			},
			&cli.BoolFlag{
				Name:        "yes",
				Aliases:     []string{"y"},
				Usage:       "never prompt; use the default label when --label is omitted",
				Destination: &cmd.yes,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *UploadCmd) run(ctx context.Context, c *cli.Command) error {
	if err := cmd.flags.Ready(); err != nil {
		return err
	}

	p := printer.Ctx(ctx)

	if c.Args().Len() == 0 {
		return fmt.Errorf("at least one file or glob is required")
	}

	paths, err := orchestrate.ExpandImagePaths(c.Args().Slice())
	if err != nil {
		return err
	}

	l, err := cmd.resolveLabel()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return err
	}

	stop := p.Follow(cmd.app.Bus)
	defer stop()

	results := watch(cmd.app.Bus)
	defer results.Close()

	unreadable := 0
	for _, path := range paths {
		img, err := orchestrate.LoadImage(path)
		if err != nil {
			p.Errorf("%s: %v", path, err)
			unreadable++
			continue
		}

		p.Mutedf("%s %s (%s) as %s", styles.IconUpload, path, humanize.Bytes(uint64(img.Size())), l)
		cmd.app.Uploader.Upload(ctx, img, l)
	}

	if failed := unreadable + results.Errors(); failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(paths))
	}
	return nil
}

func (cmd *UploadCmd) resolveLabel() (label.Label, error) {
	def := cmd.flags.Config.Label()
	if cmd.label != "" || cmd.yes || !interactive() {
		return flagLabel(cmd.label, def)
	}
	return promptLabel(def)
}
