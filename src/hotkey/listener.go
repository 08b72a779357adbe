package hotkey

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"screen-translate/src/logutil"
	"screen-translate/src/messages"
)

const (
	DefaultPollInterval = 100 * time.Millisecond
	DefaultDebounce     = 300 * time.Millisecond
)

var (
	ErrAlreadyStarted = errors.New("hotkey: listener already started")
	ErrStopTimeout    = errors.New("hotkey: listener did not stop in time")
)

// Sink receives recognized commands. messages.Queue satisfies it.
type Sink interface {
	Push(cmd messages.Command)
}

type Binding struct {
	Command messages.Command
	Combo   Combo
}

type Options struct {
	Bindings     []Binding
	PollInterval time.Duration
	Debounce     time.Duration
}

// NewOptions parses the configured combinations in messages.All order, which
// is also the order in which simultaneous presses are resolved.
func NewOptions(hotkeys map[messages.Command]string, poll, debounce time.Duration) (Options, error) {
	opts := Options{PollInterval: poll, Debounce: debounce}
	var errs []error
	for _, cmd := range messages.All {
		text, ok := hotkeys[cmd]
		if !ok || text == "" {
			continue
		}
		combo, err := ParseCombo(text)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", cmd, err))
			continue
		}
		opts.Bindings = append(opts.Bindings, Binding{Command: cmd, Combo: combo})
	}
	if len(errs) > 0 {
		return Options{}, errors.Join(errs...)
	}
	return opts, nil
}

// Listener polls a KeyState and turns the rising edge of each bound
// combination into one command on the sink, then pauses for the debounce
// interval before polling again.
type Listener struct {
	opts  Options
	state KeyState
	sink  Sink

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	// owned by the polling goroutine
	held    []bool
	lastErr string
}

func NewListener(state KeyState, sink Sink, opts Options) *Listener {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Debounce < 0 {
		opts.Debounce = 0
	}
	return &Listener{
		opts:  opts,
		state: state,
		sink:  sink,
		held:  make([]bool, len(opts.Bindings)),
	}
}

// Start launches the polling goroutine. It runs until ctx is cancelled or
// Stop is called.
func (l *Listener) Start(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done != nil {
		return ErrAlreadyStarted
	}
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})
	go l.run(ctx, l.done)
	log.Printf("hotkey: listening for %d combinations (poll=%s debounce=%s)",
		len(l.opts.Bindings), l.opts.PollInterval, l.opts.Debounce)
	return nil
}

// Stop signals the polling goroutine and waits up to timeout for it to exit.
func (l *Listener) Stop(timeout time.Duration) error {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.mu.Unlock()
	if done == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return ErrStopTimeout
	}
}

func (l *Listener) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		cmd, ok := l.pollOnce()
		if !ok {
			continue
		}
		logutil.Debugf("hotkey: %s", cmd)
		l.sink.Push(cmd)

		if l.opts.Debounce > 0 {
			timer := time.NewTimer(l.opts.Debounce)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	}
}

// pollOnce returns the first binding, in priority order, whose combination
// went from released to held. Other newly held bindings keep their edge and
// fire on a later poll if still held.
func (l *Listener) pollOnce() (messages.Command, bool) {
	var fired messages.Command
	found := false
	for i, b := range l.opts.Bindings {
		held, err := l.queryHeld(b.Combo)
		if err != nil {
			l.reportError(err)
			continue
		}
		if !held {
			l.held[i] = false
			continue
		}
		if l.held[i] || found {
			continue
		}
		l.held[i] = true
		fired, found = b.Command, true
	}
	return fired, found
}

func (l *Listener) queryHeld(c Combo) (held bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("key state panic: %v", r)
		}
	}()
	return l.state.Held(c)
}

// reportError logs a key state error once per distinct message so a broken
// hook doesn't flood the log at the poll rate.
func (l *Listener) reportError(err error) {
	if msg := err.Error(); msg != l.lastErr {
		l.lastErr = msg
		log.Printf("hotkey: key state query failed: %v", err)
	}
}
