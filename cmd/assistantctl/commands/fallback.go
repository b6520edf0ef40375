package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen11/mealplan-assistant/internal/app/fallback"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
)

func newFallbackCommand(opts *globalOptions) *cobra.Command {
	var (
		kind       string
		mealType   string
		cuisine    string
		goal       string
		ingredient string
		query      string
		calories   float64
		text       bool
	)

	cmd := &cobra.Command{
		Use:   "fallback",
		Short: "Print the fallback entity or apology text",
		Long: `Print the minimal schema-valid entity the assistant falls back to when model
output cannot be recovered. Hints outside the vocabulary are ignored. With
--text, print the apology message chosen for --query instead.`,
		Example: `  assistantctl fallback --kind meal --meal-type dinner --cuisine italian --calories 700
  assistantctl fallback --kind plan --goal lose_weight
  assistantctl fallback --text --query "add my lunch"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := opts.validator()
			if err != nil {
				return err
			}
			gen := fallback.NewGenerator(v, opts.logger(cmd))

			if text {
				_, err := io.WriteString(cmd.OutOrStdout(), gen.Text(query)+"\n")
				return err
			}

			k, err := parseKind(kind)
			if err != nil {
				return err
			}
			if calories < 0 {
				return fmt.Errorf("--calories must not be negative, got %g", calories)
			}

			entity, err := gen.Entity(k, fallback.Context{
				Query:          query,
				MealType:       nutrition.MealType(nutrition.Normalize(nutrition.FieldMealType, mealType)),
				Cuisine:        nutrition.Cuisine(nutrition.Normalize(nutrition.FieldCuisine, cuisine)),
				Goal:           nutrition.Goal(nutrition.Normalize(nutrition.FieldGoal, goal)),
				IngredientName: ingredient,
				Calories:       calories,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), entity)
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "meal", "entity kind: ingredient, meal or plan")
	cmd.Flags().StringVar(&mealType, "meal-type", "", "meal type hint, e.g. breakfast")
	cmd.Flags().StringVar(&cuisine, "cuisine", "", "cuisine hint, e.g. italian")
	cmd.Flags().StringVar(&goal, "goal", "", "plan goal hint, e.g. weight_loss")
	cmd.Flags().StringVar(&ingredient, "ingredient", "", "ingredient name hint")
	cmd.Flags().Float64Var(&calories, "calories", 0, "calorie target for meals and plans")
	cmd.Flags().StringVarP(&query, "query", "q", "", "the user request the fallback answers")
	cmd.Flags().BoolVar(&text, "text", false, "print the apology text instead of an entity")

	return cmd
}
