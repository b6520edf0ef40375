package commands

import (
	"github.com/spf13/cobra"

	"github.com/jsamuelsen11/mealplan-assistant/internal/app/jsonrepair"
	"github.com/jsamuelsen11/mealplan-assistant/internal/app/schema"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
)

// validationReport is printed by validate and recover.
type validationReport struct {
	Kind            string              `json:"kind"`
	Success         bool                `json:"success"`
	Entity          *nutrition.Entity   `json:"entity,omitempty"`
	Errors          []schema.FieldError `json:"errors,omitempty"`
	Message         string              `json:"message,omitempty"`
	HadRecovery     *bool               `json:"had_recovery,omitempty"`
	RecoveryActions []string            `json:"recovery_actions,omitempty"`
}

func newValidateCommand(opts *globalOptions) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Strictly validate a payload against the entity schema",
		Long: `Extract the JSON object from the input and validate it strictly: required
fields, non-negative macros, exact vocabulary values and nested elements.
Exits non-zero when the payload is invalid.`,
		Example: `  assistantctl validate --kind meal meal.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}
			v, err := opts.validator()
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			out := v.Validate(jsonrepair.Extract(text, k), k)
			report := validationReport{
				Kind:    k.String(),
				Success: out.Success,
				Entity:  entityRef(out.Entity),
				Errors:  out.Errors,
				Message: out.Message,
			}
			if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !out.Success {
				return ErrInvalidPayload
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "entity kind: ingredient, meal or plan")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

func newRecoverCommand(opts *globalOptions) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "recover [file]",
		Short: "Validate a payload, repairing invalid fields with defaults",
		Long: `Run the recovery engine: validate the payload and, when that fails, normalize
vocabulary values, default missing fields and fill empty lists, then validate
again. Every change is listed in recovery_actions. Exits non-zero when even the
recovered payload is invalid.`,
		Example: `  assistantctl recover --kind plan reply.txt`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, err := parseKind(kind)
			if err != nil {
				return err
			}
			v, err := opts.validator()
			if err != nil {
				return err
			}
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			out := v.ValidateWithRecovery(text, k)
			hadRecovery := out.HadRecovery
			report := validationReport{
				Kind:            k.String(),
				Success:         out.Success,
				Entity:          entityRef(out.Entity),
				Errors:          out.Errors,
				Message:         out.Message,
				HadRecovery:     &hadRecovery,
				RecoveryActions: out.RecoveryActions,
			}
			if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			if !out.Success {
				return ErrInvalidPayload
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "entity kind: ingredient, meal or plan")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}
