// Package eventloop holds the control loop that owns all panel state. Hotkey
// commands, UI intents and worker completions all reach it as messages and
// are applied one tick at a time.
package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"screen-translate/src/logutil"
	"screen-translate/src/messages"
	"screen-translate/src/selection"
	"screen-translate/src/translate"
	"screen-translate/src/worker"
)

// Staleness categories. Area selections and typed-text translations do not
// supersede each other.
const (
	CategoryArea  = "area"
	CategoryInput = "input"
)

const DefaultTickInterval = 100 * time.Millisecond

var (
	ErrSessionActive    = errors.New("selection already active")
	ErrSessionAbandoned = errors.New("in-flight translation abandoned for a new selection")
)

// Commands is the consumer side of the command queue.
type Commands interface {
	DrainAll() []messages.Command
}

// Runner is the pipeline as seen by the controller. Both calls block and run
// on worker goroutines only.
type Runner interface {
	Run(ctx context.Context, r messages.Rectangle, target string) messages.Outcome
	TranslateText(ctx context.Context, text, target string) messages.Outcome
}

// Selector shows the capture surface for a session and feeds it pointer
// events. Open must return without waiting for the user.
type Selector interface {
	Open(s *selection.Session) error
}

type Clipboard interface {
	Write(text string) error
}

type Deps struct {
	Commands  Commands
	Bridge    *worker.Bridge
	Pipeline  Runner
	View      View
	Selector  Selector
	Clipboard Clipboard
}

type Options struct {
	TickInterval   time.Duration
	TargetLanguage string
	StartVisible   bool
}

type Controller struct {
	deps Deps
	tick time.Duration

	// control loop only
	state          PanelState
	dirty          bool
	session        *selection.Session
	restoreVisible bool
	// panel stays hidden from a resolved selection until its outcome lands
	capturing      bool

	inboxMu sync.Mutex
	inbox   []event
}

func New(deps Deps, opts Options) (*Controller, error) {
	switch {
	case deps.Commands == nil:
		return nil, fmt.Errorf("eventloop: command queue is required")
	case deps.Bridge == nil:
		return nil, fmt.Errorf("eventloop: worker bridge is required")
	case deps.Pipeline == nil:
		return nil, fmt.Errorf("eventloop: pipeline is required")
	case deps.View == nil:
		return nil, fmt.Errorf("eventloop: view is required")
	case deps.Selector == nil:
		return nil, fmt.Errorf("eventloop: selector is required")
	case deps.Clipboard == nil:
		return nil, fmt.Errorf("eventloop: clipboard is required")
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	target := opts.TargetLanguage
	if l, ok := translate.LookupLanguage(target); ok {
		target = l.Code
	} else {
		target = "en"
	}
	return &Controller{
		deps:  deps,
		tick:  opts.TickInterval,
		state: PanelState{Visible: opts.StartVisible, TargetLanguage: target},
		dirty: true,
	}, nil
}

// Run ticks until ctx is done. It is the only goroutine that may call Tick.
func (c *Controller) Run(ctx context.Context) error {
	log.Printf("eventloop: running, tick=%s", c.tick)
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()
	c.Tick()
	for {
		select {
		case <-ctx.Done():
			log.Printf("eventloop: stopped")
			return ctx.Err()
		case <-ticker.C:
			c.Tick()
		}
	}
}

// Tick applies queued commands, then UI intents, then worker completions,
// and renders once if anything changed.
func (c *Controller) Tick() {
	for _, cmd := range c.deps.Commands.DrainAll() {
		c.safely(cmd.String(), func() { c.dispatch(cmd) })
	}

	for _, ev := range c.takeInbox() {
		c.safely(ev.name(), func() { ev.apply(c) })
	}

	c.safely("drain", func() { c.deps.Bridge.Drain() })

	busy := c.deps.Bridge.Pending(CategoryArea)
	inputBusy := c.deps.Bridge.Pending(CategoryInput)
	if busy != c.state.Busy || inputBusy != c.state.InputBusy {
		c.state.Busy, c.state.InputBusy = busy, inputBusy
		c.dirty = true
	}

	c.render()
}

// State returns a copy of the panel state. Control loop only.
func (c *Controller) State() PanelState { return c.state }

func (c *Controller) render() {
	if !c.dirty {
		return
	}
	c.dirty = false
	c.safely("render", func() { c.deps.View.Render(c.state) })
}

// safely runs fn and turns a panic into a log line so one bad command or
// event cannot stop the loop.
func (c *Controller) safely(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in control loop (%s): %v\n%s", what, r, debug.Stack())
		}
	}()
	fn()
}

func (c *Controller) dispatch(cmd messages.Command) {
	logutil.Debugf("eventloop: command %s", cmd)
	switch cmd {
	case messages.SelectArea:
		c.startSelection()
	case messages.ToggleOverlay:
		c.toggle()
	case messages.ClearFields:
		c.clearFields()
	case messages.CopyTranslation:
		c.copyTranslation()
	default:
		log.Printf("eventloop: ignoring unknown command %v", cmd)
	}
}

func (c *Controller) toggle() {
	if c.session != nil || c.capturing {
		// applies once the selection surface closes
		c.restoreVisible = !c.restoreVisible
		return
	}
	c.state.Visible = !c.state.Visible
	c.dirty = true
}

func (c *Controller) clearFields() {
	c.deps.Bridge.Invalidate(CategoryInput)
	c.deps.Bridge.Invalidate(CategoryArea)
	if c.capturing {
		c.capturing = false
		c.state.Visible = c.restoreVisible
	}
	c.state.InputText = ""
	c.state.InputClears++
	c.state.InputResult = nil
	c.state.LastOutcome = nil
	c.dirty = true
}

func (c *Controller) copyTranslation() {
	text, ok := c.state.CopyableText()
	if !ok {
		log.Printf("eventloop: nothing to copy")
		return
	}
	if err := c.deps.Clipboard.Write(text); err != nil {
		log.Printf("eventloop: clipboard write failed: %v", err)
		c.deps.View.Flash("Copy failed")
		return
	}
	log.Printf("eventloop: copied %d chars", len(text))
	c.deps.View.Flash("Copied!")
}

func (c *Controller) startSelection() {
	if c.session != nil {
		log.Printf("eventloop: select-area ignored: %v", ErrSessionActive)
		return
	}
	if c.deps.Bridge.Pending(CategoryArea) {
		log.Printf("eventloop: %v", ErrSessionAbandoned)
	}
	c.deps.Bridge.Invalidate(CategoryArea)

	var s *selection.Session
	s = selection.New(func(res selection.Result) {
		c.post(selectionDone{session: s, result: res})
	})
	c.session = s
	if !c.capturing {
		c.restoreVisible = c.state.Visible
	}
	c.capturing = false
	c.state.Visible = false
	c.state.Selecting = true
	c.dirty = true
	c.render()

	if err := c.openSelector(s); err != nil {
		log.Printf("eventloop: cannot open selector: %v", err)
		c.endSelection()
		out := messages.Failed(messages.ReasonCapture, err.Error())
		c.state.LastOutcome = &out
		c.state.Visible = true
	}
}

func (c *Controller) openSelector(s *selection.Session) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("selector panic: %v", r)
		}
	}()
	return c.deps.Selector.Open(s)
}

func (c *Controller) endSelection() {
	c.session = nil
	c.state.Selecting = false
	c.state.Visible = c.restoreVisible
	c.dirty = true
}

func (c *Controller) onSelection(s *selection.Session, res selection.Result) {
	if s != c.session {
		return
	}
	if !res.OK {
		c.endSelection()
		log.Printf("eventloop: selection cancelled")
		return
	}
	c.session = nil
	c.state.Selecting = false
	c.capturing = true
	c.dirty = true

	rect, target := res.Rect, c.state.TargetLanguage
	log.Printf("eventloop: selected %dx%d at (%d,%d)", rect.Width, rect.Height, rect.Left, rect.Top)
	tok := c.deps.Bridge.Schedule(CategoryArea, func(ctx context.Context) messages.Outcome {
		return c.deps.Pipeline.Run(ctx, rect, target)
	}, c.onAreaOutcome)
	logutil.Debugf("eventloop: scheduled %s", tok)
	c.state.Busy = true
}

func (c *Controller) onAreaOutcome(tok worker.Token, out messages.Outcome) {
	if out.IsFailure() {
		log.Printf("eventloop: %s failed: %s", tok, out.Failure)
	}
	c.capturing = false
	c.state.LastOutcome = &out
	c.state.Visible = true
	c.dirty = true
}

func (c *Controller) translateInput() {
	text, target := c.state.InputText, c.state.TargetLanguage
	if strings.TrimSpace(text) == "" {
		c.state.InputResult = nil
		c.dirty = true
		return
	}
	c.deps.Bridge.Schedule(CategoryInput, func(ctx context.Context) messages.Outcome {
		return c.deps.Pipeline.TranslateText(ctx, text, target)
	}, c.onInputOutcome)
	c.state.InputBusy = true
	c.dirty = true
}

func (c *Controller) onInputOutcome(tok worker.Token, out messages.Outcome) {
	if out.IsFailure() {
		log.Printf("eventloop: %s failed: %s", tok, out.Failure)
	}
	c.state.InputResult = &out
	c.dirty = true
}

func (c *Controller) setTarget(lang string) {
	l, ok := translate.LookupLanguage(lang)
	if !ok {
		log.Printf("eventloop: unknown target language %q", lang)
		return
	}
	if l.Code != c.state.TargetLanguage {
		c.state.TargetLanguage = l.Code
		c.dirty = true
	}
}
