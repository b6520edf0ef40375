package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen11/mealplan-assistant/internal/app/action"
	"github.com/jsamuelsen11/mealplan-assistant/internal/app/fanout"
	"github.com/jsamuelsen11/mealplan-assistant/internal/app/schema"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
)

const stdinSource = "-"

// detectResult is one line of the detect report.
type detectResult struct {
	Source      string              `json:"source"`
	Action      string              `json:"action"`
	Valid       bool                `json:"valid"`
	Tagged      bool                `json:"tagged"`
	Message     string              `json:"message,omitempty"`
	Entity      *nutrition.Entity   `json:"entity,omitempty"`
	Errors      []schema.FieldError `json:"errors,omitempty"`
	DisplayText string              `json:"display_text,omitempty"`
	Error       string              `json:"error,omitempty"`
}

func newDetectCommand(opts *globalOptions) *cobra.Command {
	var (
		workers int
		strip   bool
	)

	cmd := &cobra.Command{
		Use:   "detect [files...]",
		Short: "Detect action blocks in model output",
		Long: `Scan each file (or stdin) for an ADD_MEAL, ADD_PLAN or ADD_INGREDIENT block,
validate its payload strictly, and print one report per input in argument order.`,
		Example: `  # Check a saved model reply
  assistantctl detect reply.txt

  # Check many replies concurrently and show the user-visible text
  assistantctl detect --strip --workers 8 replies/*.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if workers < 1 {
				return fmt.Errorf("--workers must be >= 1, got %d", workers)
			}
			v, err := opts.validator()
			if err != nil {
				return err
			}
			detector := action.NewDetector(v, action.DefaultTags())

			sources := args
			if len(sources) == 0 {
				sources = []string{stdinSource}
			}

			// Stdin can only be read once, so it is loaded up front.
			var stdin string
			for _, src := range sources {
				if src == stdinSource {
					if stdin, err = readInput(cmd, nil); err != nil {
						return err
					}
					break
				}
			}

			results := fanout.Run(cmd.Context(), workers, sources,
				func(_ context.Context, src string) (detectResult, error) {
					text := stdin
					if src != stdinSource {
						b, err := os.ReadFile(src)
						if err != nil {
							return detectResult{}, err
						}
						text = string(b)
					}
					return detectText(detector, src, text, strip), nil
				})

			report := make([]detectResult, len(results))
			for i, r := range results {
				report[i] = r.Value
				if r.Err != nil {
					report[i] = detectResult{Source: sources[i], Action: nutrition.ActionUnknown.String(), Error: r.Err.Error()}
				}
			}
			return writeJSON(cmd.OutOrStdout(), report)
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", 4, "number of inputs processed concurrently")
	cmd.Flags().BoolVar(&strip, "strip", false, "include the text with action markup removed")

	return cmd
}

func detectText(d *action.Detector, source, text string, strip bool) detectResult {
	det := d.Detect(text)
	res := detectResult{
		Source:  source,
		Action:  det.Kind.String(),
		Valid:   det.IsValid,
		Tagged:  det.Tagged,
		Message: det.ValidationMessage,
		Entity:  entityRef(det.Entity),
		Errors:  det.Errors,
	}
	if strip {
		res.DisplayText = d.StripMarkup(text)
	}
	return res
}
