package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen11/mealplan-assistant/internal/adapters/clients/llm"
	"github.com/jsamuelsen11/mealplan-assistant/internal/adapters/store/sqlite"
	"github.com/jsamuelsen11/mealplan-assistant/internal/app/assistant"
	"github.com/jsamuelsen11/mealplan-assistant/internal/app/schema"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/retry"
	"github.com/jsamuelsen11/mealplan-assistant/internal/ports"
)

// chatReport is printed with --json.
type chatReport struct {
	RunID      string            `json:"run_id"`
	Text       string            `json:"text"`
	RetryCount int               `json:"retry_count"`
	Action     *chatActionReport `json:"action,omitempty"`
}

type chatActionReport struct {
	Kind    string            `json:"kind"`
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Entity  *nutrition.Entity `json:"entity,omitempty"`
}

func newChatCommand(opts *globalOptions) *cobra.Command {
	var (
		actor   string
		jsonOut bool
	)

	cmd := &cobra.Command{
		Use:   "chat \"message\"",
		Short: "Run one chat turn against the configured model",
		Long: `Send a message through the full assistant pipeline: prompt, model call with
retries, action detection, strict validation and persistence of any valid
action in the configured store.`,
		Example: `  APP_LLM_API_KEY=... assistantctl chat --profile local "Add a chicken salad for lunch"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.TrimSpace(strings.Join(args, " "))
			if message == "" {
				return errors.New("message must not be empty")
			}

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger := opts.logger(cmd)
			ctx := cmd.Context()

			transport, err := llm.New(&cfg.LLM, nil, logger)
			if err != nil {
				return err
			}
			store, err := sqlite.Open(ctx, &cfg.Store, logger)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			registry, err := schema.NewRegistry(&cfg.Schema)
			if err != nil {
				return fmt.Errorf("building schema registry: %w", err)
			}

			svc := assistant.NewService(transport, store, schema.NewValidator(registry), retry.NewPolicy(&cfg.Retry), logger,
				assistant.WithLanguage(cfg.Assistant.Language),
				assistant.WithGenerateOptions(ports.GenerateOptions{
					SystemPrompt: assistant.SystemPrompt,
					Temperature:  cfg.LLM.Temperature,
					MaxTokens:    cfg.LLM.MaxTokens,
				}),
			)

			if actor == "" {
				actor = cfg.Assistant.DefaultActor
			}
			reply, err := svc.Respond(ctx, message, actor)
			if err != nil {
				return err
			}

			if jsonOut {
				report := chatReport{RunID: reply.RunID, Text: reply.Text, RetryCount: reply.RetryCount}
				if a := reply.Action; a != nil {
					report.Action = &chatActionReport{
						Kind:    a.Kind.String(),
						Success: a.Success,
						Message: a.Message,
						Entity:  entityRef(a.Entity),
					}
				}
				return writeJSON(cmd.OutOrStdout(), report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, reply.Text)
			if a := reply.Action; a != nil {
				status := "saved"
				if !a.Success {
					status = "not saved"
				}
				line := fmt.Sprintf("[%s %s]", a.Kind, status)
				if a.Message != "" {
					line += " " + a.Message
				}
				fmt.Fprintf(out, "\n%s\n", line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&actor, "actor", "", "actor recorded on saved actions (defaults to assistant.default_actor)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the reply as JSON")

	return cmd
}
