package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"screen-translate/src/messages"
	"screen-translate/src/singleinstance"
)

type stressOptions struct {
	n        int
	command  string
	deadline time.Duration
}

type sendFunc func(ctx context.Context, cmd messages.Command) (bool, error)

type tally struct {
	ok, missed, failed int32
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-send",
		Short:         "Fire concurrent command delegations at the running instance",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := messages.ParseCommand(opts.command)
			if err != nil {
				return err
			}
			t := stress(opts.n, opts.deadline, c, singleinstance.Send)
			report(cmd.OutOrStdout(), opts.n, t)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().StringVar(&opts.command, "command", messages.NameToggleOverlay, "command each client delegates")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")

	return cmd
}

func stress(n int, deadline time.Duration, c messages.Command, send sendFunc) *tally {
	var wg sync.WaitGroup
	t := &tally{}
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), deadline)
			defer cancel()
			delegated, err := send(ctx, c)
			switch {
			case err != nil:
				atomic.AddInt32(&t.failed, 1)
			case delegated:
				atomic.AddInt32(&t.ok, 1)
			default:
				atomic.AddInt32(&t.missed, 1)
			}
		}()
	}
	wg.Wait()
	return t
}

func report(w io.Writer, n int, t *tally) {
	fmt.Fprintf(w, "launched=%d ok=%d no-resident=%d err=%d\n", n, t.ok, t.missed, t.failed)
}
