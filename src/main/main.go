package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"screen-translate/src/config"
	"screen-translate/src/messages"
	"screen-translate/src/singleinstance"
)

const sendTimeout = 3 * time.Second

var errNoResident = errors.New("no running instance to delegate to")

type mainOptions struct {
	debug      bool
	devMode    bool
	apiKeyPath string
	targetLang string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"screen-translate"}
	}
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screen-translate",
		Short:         "Select a screen area, read its text and translate it",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResident(*opts)
		},
	}

	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Verbose logging, mirrored to stderr")
	cmd.Flags().BoolVar(&opts.devMode, "dev-mode", false, "Use canned translations instead of the API")
	cmd.Flags().StringVar(&opts.apiKeyPath, "api-key-path", "", "Path to API key file (highest precedence)")
	cmd.Flags().StringVar(&opts.targetLang, "target-lang", "", "Target language code or name")

	cmd.AddCommand(newSendCmd(opts))
	return cmd
}

func newSendCmd(opts *mainOptions) *cobra.Command {
	names := make([]string, len(messages.All))
	for i, c := range messages.All {
		names[i] = c.String()
	}
	return &cobra.Command{
		Use:       "send <" + strings.Join(names, "|") + ">",
		Short:     "Deliver one command to the running instance",
		Args:      cobra.ExactArgs(1),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := messages.ParseCommand(args[0])
			if err != nil {
				return err
			}
			// SINGLEINSTANCE_PORT_* may come from .env
			_, _ = config.LoadWithOptions(config.LoadOptions{APIKeyPathOverride: opts.apiKeyPath})
			ctx, cancel := context.WithTimeout(cmd.Context(), sendTimeout)
			defer cancel()
			return sendCommand(ctx, singleinstance.Send, c)
		},
	}
}

type sendFunc func(ctx context.Context, cmd messages.Command) (bool, error)

func sendCommand(ctx context.Context, send sendFunc, cmd messages.Command) error {
	delegated, err := send(ctx, cmd)
	if err != nil {
		return fmt.Errorf("send %s: %w", cmd, err)
	}
	if !delegated {
		return errNoResident
	}
	return nil
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"debug", "dev-mode", "api-key-path", "target-lang"} {
			switch {
			case arg == "-"+name:
				normalized[i] = "--" + name
			case strings.HasPrefix(arg, "-"+name+"="):
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}
