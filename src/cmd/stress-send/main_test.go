package main

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"screen-translate/src/messages"
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
	if opts.command != "toggle-overlay" {
		t.Fatalf("Expected default command=toggle-overlay, got %q", opts.command)
	}
	if opts.deadline != 5*time.Second {
		t.Fatalf("Expected default deadline=5s, got %v", opts.deadline)
	}
}

func TestNewRootCmdCustomFlags(t *testing.T) {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--n", "3", "--command", "select-area", "--deadline", "7s"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.n != 3 || opts.command != "select-area" || opts.deadline != 7*time.Second {
		t.Fatalf("Unexpected options %+v", opts)
	}
}

func TestStressTallies(t *testing.T) {
	var calls int32
	send := func(ctx context.Context, c messages.Command) (bool, error) {
		if c != messages.ClearFields {
			t.Errorf("unexpected command %v", c)
		}
		switch atomic.AddInt32(&calls, 1) % 3 {
		case 0:
			return true, errors.New("busy")
		case 1:
			return true, nil
		default:
			return false, nil
		}
	}

	got := stress(9, time.Second, messages.ClearFields, send)
	if got.ok != 3 || got.missed != 3 || got.failed != 3 {
		t.Errorf("Unexpected tally %+v", *got)
	}

	var buf bytes.Buffer
	report(&buf, 9, got)
	if buf.String() != "launched=9 ok=3 no-resident=3 err=3\n" {
		t.Errorf("Unexpected report %q", buf.String())
	}
}
