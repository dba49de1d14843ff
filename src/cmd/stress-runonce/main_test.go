package main

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestNewRootCmdDefaults(t *testing.T) {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.n != 50 {
		t.Fatalf("Expected default n=50, got %d", opts.n)
	}
	if opts.format != "text" {
		t.Fatalf("Expected default format=text, got %q", opts.format)
	}
	if opts.deadline != 30*time.Second {
		t.Fatalf("Expected default deadline=30s, got %v", opts.deadline)
	}
}

func TestNewRootCmdCustomFlags(t *testing.T) {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--n", "3", "--format", "json", "--deadline", "7s"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.n != 3 {
		t.Fatalf("Expected n=3, got %d", opts.n)
	}
	if opts.format != "json" {
		t.Fatalf("Expected format=json, got %q", opts.format)
	}
	if opts.deadline != 7*time.Second {
		t.Fatalf("Expected deadline=7s, got %v", opts.deadline)
	}
}

func TestTallyRecord(t *testing.T) {
	var tl tally
	tl.record(true, nil)
	tl.record(false, nil)
	tl.record(false, fmt.Errorf("read: %w", context.DeadlineExceeded))
	tl.record(false, errors.New("Busy, please retry"))
	tl.record(false, errors.New("connection reset"))

	if tl.ok.Load() != 1 || tl.noResident.Load() != 1 || tl.timeout.Load() != 1 || tl.busy.Load() != 1 || tl.err.Load() != 1 {
		t.Fatalf("unexpected tally ok=%d no_resident=%d timeout=%d busy=%d err=%d",
			tl.ok.Load(), tl.noResident.Load(), tl.timeout.Load(), tl.busy.Load(), tl.err.Load())
	}
}
