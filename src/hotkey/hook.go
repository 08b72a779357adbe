package hotkey

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	gohook "github.com/robotn/gohook"
)

// ErrHookUnavailable is returned by HookState.Held when the global keyboard
// hook is not delivering events.
var ErrHookUnavailable = errors.New("hotkey: keyboard hook unavailable")

// KeyState answers whether a key combination is currently held down.
type KeyState interface {
	Held(c Combo) (bool, error)
}

// HookState tracks which keys are down by consuming the gohook event stream.
// The listener polls it; it never calls back into the application.
type HookState struct {
	mu      sync.RWMutex
	down    map[uint16]bool
	running atomic.Bool
	done    chan struct{}
}

// StartHook installs the global keyboard hook. Close must be called on shutdown.
func StartHook() (*HookState, error) {
	h := newHookState()
	evChan := gohook.Start()
	if evChan == nil {
		return nil, ErrHookUnavailable
	}
	h.running.Store(true)
	go h.consume(evChan)
	log.Printf("hotkey: keyboard hook started")
	return h, nil
}

func newHookState() *HookState {
	return &HookState{down: make(map[uint16]bool), done: make(chan struct{})}
}

func (h *HookState) consume(events chan gohook.Event) {
	defer close(h.done)
	defer h.running.Store(false)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("PANIC in keyboard hook goroutine: %v", r)
		}
	}()
	for ev := range events {
		h.apply(ev)
	}
	log.Printf("hotkey: hook event channel closed")
}

func (h *HookState) apply(ev gohook.Event) {
	switch ev.Kind {
	case gohook.KeyDown, gohook.KeyHold:
		h.mu.Lock()
		h.down[ev.Rawcode] = true
		h.mu.Unlock()
	case gohook.KeyUp:
		h.mu.Lock()
		delete(h.down, ev.Rawcode)
		h.mu.Unlock()
	}
}

// Held reports whether every key of c currently has one of its rawcodes down.
func (h *HookState) Held(c Combo) (bool, error) {
	if !h.running.Load() {
		return false, ErrHookUnavailable
	}
	if len(c.keys) == 0 {
		return false, nil
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, alternatives := range c.keys {
		pressed := false
		for _, code := range alternatives {
			if h.down[code] {
				pressed = true
				break
			}
		}
		if !pressed {
			return false, nil
		}
	}
	return true, nil
}

// Close stops the hook and waits for the event goroutine to drain.
func (h *HookState) Close() {
	if !h.running.Load() {
		return
	}
	gohook.End()
	select {
	case <-h.done:
		log.Printf("hotkey: keyboard hook stopped")
	case <-time.After(time.Second):
		log.Printf("hotkey: keyboard hook did not stop within 1s")
	}
}
