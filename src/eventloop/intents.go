package eventloop

import "screen-translate/src/selection"

// event is a UI-side intent or a selection result waiting for the next tick.
type event interface {
	name() string
	apply(c *Controller)
}

type selectionDone struct {
	session *selection.Session
	result  selection.Result
}

func (selectionDone) name() string { return "selection-done" }
func (e selectionDone) apply(c *Controller) { c.onSelection(e.session, e.result) }

type inputChanged struct{ text string }

func (inputChanged) name() string { return "input-changed" }

// The entry widget already shows the text, so this does not mark the panel dirty.
func (e inputChanged) apply(c *Controller) { c.state.InputText = e.text }

type targetChanged struct{ lang string }

func (targetChanged) name() string { return "target-changed" }
func (e targetChanged) apply(c *Controller) { c.setTarget(e.lang) }

type translateInput struct{}

func (translateInput) name() string { return "translate-input" }
func (translateInput) apply(c *Controller) { c.translateInput() }

func (c *Controller) post(ev event) {
	c.inboxMu.Lock()
	c.inbox = append(c.inbox, ev)
	c.inboxMu.Unlock()
}

func (c *Controller) takeInbox() []event {
	c.inboxMu.Lock()
	defer c.inboxMu.Unlock()
	evs := c.inbox
	c.inbox = nil
	return evs
}

// SetInput records the manual input text. Safe from any goroutine.
func (c *Controller) SetInput(text string) { c.post(inputChanged{text}) }

// SetTarget changes the target language, by code or display name. Safe from
// any goroutine.
func (c *Controller) SetTarget(lang string) { c.post(targetChanged{lang}) }

// TranslateInput translates the current input text. Safe from any goroutine.
func (c *Controller) TranslateInput() { c.post(translateInput{}) }
