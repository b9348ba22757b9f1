package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hay-kot/criterio"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/petpix/internal/core/label"
	"github.com/colonyops/petpix/internal/core/notice"
	"github.com/colonyops/petpix/internal/orchestrate"
	"github.com/colonyops/petpix/internal/petpix"
	"github.com/colonyops/petpix/pkg/iojson"
)

type BatchCmd struct {
	flags *Flags
	app   *petpix.App
	file  string
}

func NewBatchCmd(flags *Flags, app *petpix.App) *BatchCmd {
	return &BatchCmd{flags: flags, app: app}
}

func (cmd *BatchCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:  "batch",
		Usage: "Upload multiple labeled images from JSON input",
		UsageText: `petpix batch [options]

Read from stdin:
  echo '{"uploads":[{"path":"rex.jpg","label":"dog"}]}' | petpix batch

Read from file:
  petpix batch -f uploads.json`,
		Description: `Uploads several images, each with its own label, from a JSON
specification.

Uploads run one after another. Processing stops after 3 failures and
the remaining uploads are marked as skipped.

Input JSON schema:
  {
    "uploads": [
      {"path": "images/rex.jpg", "label": "dog"}
    ]
  }

Fields:
  path  - Required. Image file to upload (.jpg, .jpeg, .png, .webp).
  label - Optional. cat or dog; defaults to default_label from config.

Output is JSON with a batch ID and a result for each upload.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "path to JSON file (reads from stdin if not provided)",
				Destination: &cmd.file,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *BatchCmd) run(ctx context.Context, c *cli.Command) error {
	if err := cmd.flags.Ready(); err != nil {
		return err
	}

	batchID := uuid.NewString()[:8]
	logger := log.With().Str("batch_id", batchID).Logger()

	logger.Info().Msg("starting batch upload")

	input, err := iojson.ReadFileOrStdin[BatchInput](cmd.file)
	if err != nil {
		logger.Error().Err(err).Msg("failed to read input")
		return iojson.WriteError(fmt.Sprintf("read input: %s", err), nil)
	}

	if err := input.Validate(); err != nil {
		logger.Error().Err(err).Msg("input validation failed")
		return iojson.WriteError(fmt.Sprintf("invalid input: %s", err), nil)
	}

	output := BatchOutput{
		BatchID: batchID,
		Results: make([]BatchResult, 0, len(input.Uploads)),
	}

	results := watch(cmd.app.Bus)
	defer results.Close()

	failures := 0
	for i, item := range input.Uploads {
		if failures >= maxFailures {
			logger.Warn().Str("path", item.Path).Msg("skipping upload due to failure threshold")
			for j := i; j < len(input.Uploads); j++ {
				output.Results = append(output.Results, BatchResult{
					Path:   input.Uploads[j].Path,
					Status: StatusSkipped,
				})
			}
			break
		}

		logger.Info().Str("path", item.Path).Int("index", i).Msg("uploading")

		result := cmd.upload(ctx, item, results)
		output.Results = append(output.Results, result)

		if result.Status == StatusFailed {
			failures++
			logger.Error().Str("path", item.Path).Str("error", result.Error).Msg("upload failed")
		}
	}

	logger.Info().
		Int("total", len(input.Uploads)).
		Int("uploaded", countByStatus(output.Results, StatusUploaded)).
		Int("failed", countByStatus(output.Results, StatusFailed)).
		Int("skipped", countByStatus(output.Results, StatusSkipped)).
		Msg("batch upload complete")

	return iojson.WriteWith(c.Root().Writer, c.Root().ErrWriter, output)
}

func (cmd *BatchCmd) upload(ctx context.Context, item BatchUpload, results *outcomes) BatchResult {
	l := cmd.flags.Config.Label()
	if item.Label != "" {
		l, _ = label.Parse(item.Label) // validated
	}

	result := BatchResult{Path: item.Path, Label: l}

	img, err := orchestrate.LoadImage(item.Path)
	if err != nil {
		result.Status = StatusFailed
		result.Error = err.Error()
		return result
	}

	results.Take()
	if !cmd.app.Uploader.Upload(ctx, img, l) {
		result.Status = StatusFailed
		result.Error = "upload not dispatched"
		return result
	}

	for _, n := range results.Take() {
		result.Message = n.Text
		if n.Kind == notice.KindError {
			result.Status = StatusFailed
			result.Error = n.Text
			return result
		}
	}

	result.Status = StatusUploaded
	return result
}

const (
	StatusUploaded = "uploaded" // StatusUploaded indicates the image was accepted by the service.
	StatusFailed   = "failed"   // StatusFailed indicates the image could not be read or was rejected.
	StatusSkipped  = "skipped"  // StatusSkipped indicates the upload was not attempted due to failure threshold.
	maxFailures    = 3          // maxFailures is the number of failures before stopping batch processing.
)

// BatchInput is the JSON input schema for batch uploads.
type BatchInput struct {
	Uploads []BatchUpload `json:"uploads"`
}

// Validate checks the batch input for errors using criterio.
func (b BatchInput) Validate() error {
	if len(b.Uploads) == 0 {
		return criterio.NewFieldErrors("uploads", fmt.Errorf("array is empty"))
	}

	var errs criterio.FieldErrorsBuilder
	for i, item := range b.Uploads {
		field := fmt.Sprintf("uploads[%d]", i)

		if strings.TrimSpace(item.Path) == "" {
			errs = errs.Append(field+".path", fmt.Errorf("is required"))
			continue
		}

		if !orchestrate.Accepted(item.Path) {
			errs = errs.Append(field+".path", fmt.Errorf("%q is not a supported image type", item.Path))
			continue
		}

		if item.Label != "" {
			if _, err := label.Parse(item.Label); err != nil {
				errs = errs.Append(field+".label", err)
			}
		}
	}

	return errs.ToError()
}

// BatchUpload defines a single image to upload.
type BatchUpload struct {
	Path  string `json:"path"`
	Label string `json:"label,omitempty"`
}

// BatchResult is the output for a single upload attempt.
type BatchResult struct {
	Path    string      `json:"path"`
	Label   label.Label `json:"label,omitempty"`
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// BatchOutput is the JSON output schema.
type BatchOutput struct {
	BatchID string        `json:"batch_id"`
	Results []BatchResult `json:"results"`
}

func countByStatus(results []BatchResult, status string) int {
	count := 0
	for _, r := range results {
		if r.Status == status {
			count++
		}
	}
	return count
}
