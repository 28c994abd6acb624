package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/acknowledge/internal/cli"
	"github.com/matzehuels/acknowledge/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if stderrors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, "Error:", message(err))
		os.Exit(exitCode(err))
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// Apply the log level before command execution
	originalPreRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if originalPreRun != nil {
			return originalPreRun(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}

func message(err error) string {
	switch errors.GetCode(err) {
	case errors.ErrCodeUnauthorized:
		return errors.UserMessage(err) + " (check GITHUB_TOKEN / GITLAB_TOKEN)"
	case "":
		return err.Error()
	default:
		return errors.UserMessage(err)
	}
}

// exitCode is 2 for bad configuration or input, 1 for anything else.
func exitCode(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidManifest,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidBreadth:
		return 2
	default:
		return 1
	}
}
