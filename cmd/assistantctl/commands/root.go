// Package commands implements the assistantctl subcommands.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen11/mealplan-assistant/internal/app/schema"
	"github.com/jsamuelsen11/mealplan-assistant/internal/domain/nutrition"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/config"
	"github.com/jsamuelsen11/mealplan-assistant/internal/platform/logging"
)

// ErrInvalidPayload is returned by validate and recover when the input does
// not yield a valid entity. The JSON report is still written first.
var ErrInvalidPayload = errors.New("payload is not a valid entity")

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	profile   string
	configDir string
	logLevel  string
}

// Execute runs the root command.
func Execute(ctx context.Context, version string) error {
	return NewRootCommand(version).ExecuteContext(ctx)
}

// NewRootCommand builds the command tree. Tests call it directly with their
// own output buffers.
func NewRootCommand(version string) *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "assistantctl",
		Short: "Inspect and exercise the meal-planning assistant pipeline",
		Long: `assistantctl runs the assistant's output-resilience pipeline outside the HTTP API.

Offline commands (detect, extract, validate, recover, fallback) use the built-in
vocabularies unless --profile selects a configuration. The chat command always
loads a profile and calls the configured model provider.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.profile, "profile", "p", os.Getenv("APP_PROFILE"),
		"configuration profile (defaults to $APP_PROFILE)")
	rootCmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", "configs", "directory holding the YAML profiles")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newDetectCommand(opts))
	rootCmd.AddCommand(newExtractCommand(opts))
	rootCmd.AddCommand(newValidateCommand(opts))
	rootCmd.AddCommand(newRecoverCommand(opts))
	rootCmd.AddCommand(newFallbackCommand(opts))
	rootCmd.AddCommand(newChatCommand(opts))

	return rootCmd
}

// logger writes to the command's error stream so stdout stays parseable.
func (o *globalOptions) logger(cmd *cobra.Command) *slog.Logger {
	return logging.New(o.logLevel, "text", cmd.ErrOrStderr())
}

// loadConfig loads the selected profile.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	if o.profile == "" {
		return nil, errors.New("no profile selected: pass --profile or set APP_PROFILE")
	}
	cfg, err := config.Load(o.profile, config.WithConfigDir(o.configDir))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// validator builds the schema validator from the profile's vocabularies, or
// from the built-in ones when no profile is selected.
func (o *globalOptions) validator() (*schema.Validator, error) {
	if o.profile == "" {
		return schema.NewValidator(schema.DefaultRegistry()), nil
	}
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	registry, err := schema.NewRegistry(&cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("building schema registry: %w", err)
	}
	return schema.NewValidator(registry), nil
}

// readInput returns the contents of the single file argument, or stdin when
// there is none or it is "-".
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return string(b), nil
}

func parseKind(raw string) (nutrition.EntityKind, error) {
	kind, err := nutrition.ParseEntityKind(raw)
	if err != nil {
		return "", fmt.Errorf("--kind: %w", err)
	}
	return kind, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// entityRef returns nil for a zero entity so it is omitted from reports.
func entityRef(e nutrition.Entity) *nutrition.Entity {
	if e.IsZero() {
		return nil
	}
	return &e
}
