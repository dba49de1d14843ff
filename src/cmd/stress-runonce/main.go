package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"screen-region-select/src/session"
	"screen-region-select/src/singleinstance"
)

type stressOptions struct {
	n        int
	format   string
	deadline time.Duration
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
		Use:           "stress-runonce",
		Short:         "Stress test run-once delegation",
		Long:          "Launches concurrent SELECT requests against the resident. All of them are answered by the next committed selection.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts)
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of clients to launch")
	cmd.Flags().StringVar(&opts.format, "format", "text", "report format requested by each client: json|yaml|text")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 30*time.Second, "per-client timeout")

	return cmd
}

type tally struct {
	ok, busy, noResident, timeout, err atomic.Int32
}

func (t *tally) record(delegated bool, err error) {
	switch {
	case err == nil && delegated:
		t.ok.Add(1)
	case err == nil:
		t.noResident.Add(1)
	case errors.Is(err, context.DeadlineExceeded):
		t.timeout.Add(1)
	case strings.Contains(strings.ToLower(err.Error()), "busy"):
		t.busy.Add(1)
	default:
		t.err.Add(1)
	}
}

func runWithOptions(opts stressOptions) error {
	var wg sync.WaitGroup
	var t tally

	start := time.Now()
	for i := 0; i < opts.n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), opts.deadline)
			defer cancel()
			delegated, _, err := singleinstance.NewClient().TryRunOnce(ctx, opts.format)
			t.record(delegated, err)
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)
	fmt.Fprintf(os.Stdout, "launched=%d ok=%d busy=%d timeout=%d no_resident=%d err=%d elapsed=%s\n",
		opts.n, t.ok.Load(), t.busy.Load(), t.timeout.Load(), t.noResident.Load(), t.err.Load(), elapsed)
	if t.noResident.Load() == int32(opts.n) {
		return session.ErrNoResident
	}
	return nil
}
