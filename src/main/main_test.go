package main

import (
	"context"
	"errors"
	"testing"

	"screen-translate/src/messages"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"screen-translate", "-dev-mode", "-api-key-path", "/tmp/key"},
			out:  []string{"screen-translate", "--dev-mode", "--api-key-path", "/tmp/key"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"screen-translate", "-debug=true", "-target-lang=pt"},
			out:  []string{"screen-translate", "--debug=true", "--target-lang=pt"},
		},
		{
			name: "Leaves other args unchanged",
			in:   []string{"screen-translate", "send", "select-area", "--other"},
			out:  []string{"screen-translate", "send", "select-area", "--other"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLegacyArgs(tt.in)
			if len(got) != len(tt.out) {
				t.Fatalf("Expected len=%d, got %d", len(tt.out), len(got))
			}
			for i := range got {
				if got[i] != tt.out[i] {
					t.Fatalf("Expected arg[%d]=%q, got %q", i, tt.out[i], got[i])
				}
			}
		})
	}
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--dev-mode", "--debug", "--api-key-path", "/tmp/key", "--target-lang", "de"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if !opts.devMode || !opts.debug {
		t.Fatalf("Expected devMode and debug, got %+v", opts)
	}
	if opts.apiKeyPath != "/tmp/key" {
		t.Fatalf("Expected apiKeyPath=/tmp/key, got %q", opts.apiKeyPath)
	}
	if opts.targetLang != "de" {
		t.Fatalf("Expected targetLang=de, got %q", opts.targetLang)
	}
}

func TestSendRejectsUnknownCommand(t *testing.T) {
	err := runWithArgs([]string{"screen-translate", "send", "launch-rockets"})
	if err == nil {
		t.Fatal("Expected an error for an unknown command")
	}
}

func TestSendRequiresOneArg(t *testing.T) {
	if err := runWithArgs([]string{"screen-translate", "send"}); err == nil {
		t.Fatal("Expected an error without a command name")
	}
}

func TestSendCommand(t *testing.T) {
	tests := []struct {
		name      string
		delegated bool
		err       error
		want      error
	}{
		{name: "Delegated", delegated: true},
		{name: "NoResident", want: errNoResident},
		{name: "ResidentError", delegated: true, err: errors.New("busy")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sent messages.Command
			send := func(ctx context.Context, cmd messages.Command) (bool, error) {
				sent = cmd
				return tt.delegated, tt.err
			}
			err := sendCommand(context.Background(), send, messages.ToggleOverlay)
			if sent != messages.ToggleOverlay {
				t.Errorf("Expected toggle-overlay to be sent, got %v", sent)
			}
			switch {
			case tt.err != nil:
				if !errors.Is(err, tt.err) {
					t.Errorf("Expected wrapped %v, got %v", tt.err, err)
				}
			case tt.want != nil:
				if !errors.Is(err, tt.want) {
					t.Errorf("Expected %v, got %v", tt.want, err)
				}
			case err != nil:
				t.Errorf("Unexpected error %v", err)
			}
		})
	}
}
