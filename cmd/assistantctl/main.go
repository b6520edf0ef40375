// Command assistantctl runs the meal-planning assistant's resilience pipeline
// from the command line: action detection, JSON repair, validation, recovery,
// fallbacks, and full chat turns against the configured model.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jsamuelsen11/mealplan-assistant/cmd/assistantctl/commands"
)

// Version is set via ldflags during build.
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.Execute(ctx, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
