package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen11/mealplan-assistant/internal/app/jsonrepair"
)

func newExtractCommand(_ *globalOptions) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract and repair the JSON object in model output",
		Long: `Pull the first JSON object out of free text, repair common model mistakes
(trailing commas, single quotes, unquoted keys, truncation) and print the result.
When no object can be recovered a minimal placeholder for --kind is printed.`,
		Example: `  echo 'Here you go: {name: "Oats", calories: 150,}' | assistantctl extract --kind ingredient`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			out := jsonrepair.Extract(text, k)
			_, err = io.WriteString(cmd.OutOrStdout(), out+"\n")
			if err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "meal", "entity kind hint: ingredient, meal or plan")

	return cmd
}
