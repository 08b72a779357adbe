// Package selection implements the modal rectangle-picking interaction as a
// single-fire state machine, independent of the surface that feeds it
// pointer events.
package selection

import (
	"image"
	"sync"

	"screen-translate/src/messages"
)

type State int

const (
	Opening State = iota
	AwaitingDrag
	AwaitingRelease
	Resolved
	Cancelled
)

func (s State) String() string {
	switch s {
	case Opening:
		return "opening"
	case AwaitingDrag:
		return "awaiting-drag"
	case AwaitingRelease:
		return "awaiting-release"
	case Resolved:
		return "resolved"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (s State) Terminal() bool { return s == Resolved || s == Cancelled }

// Result is what the continuation receives: a rectangle, or OK=false when the
// user cancelled.
type Result struct {
	Rect messages.Rectangle
	OK   bool
}

type Continuation func(Result)

// Session tracks one selection. Its continuation runs exactly once, on
// whichever goroutine delivers the terminal event, after the session lock has
// been released.
type Session struct {
	mu    sync.Mutex
	state State
	start image.Point
	cur   image.Point
	cont  Continuation
}

func New(cont Continuation) *Session {
	return &Session{state: Opening, cont: cont}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Opened marks the capture surface as shown.
func (s *Session) Opened() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Opening {
		s.state = AwaitingDrag
	}
}

// PointerDown records the drag origin. Pressing again before release restarts
// the drag from the new point.
func (s *Session) PointerDown(p image.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Opening, AwaitingDrag, AwaitingRelease:
		s.state = AwaitingRelease
		s.start, s.cur = p, p
	}
}

// PointerMove updates the live rectangle and returns it for redraw. ok is
// false when no drag is in progress.
func (s *Session) PointerMove(p image.Point) (rect messages.Rectangle, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != AwaitingRelease {
		return messages.Rectangle{}, false
	}
	s.cur = p
	return Normalize(s.start, s.cur), true
}

// PointerUp resolves the session with the normalized drag rectangle. It
// reports whether this call was the resolving one.
func (s *Session) PointerUp(p image.Point) bool {
	s.mu.Lock()
	if s.state != AwaitingRelease {
		s.mu.Unlock()
		return false
	}
	s.state = Resolved
	res := Result{Rect: Normalize(s.start, p), OK: true}
	s.mu.Unlock()

	s.cont(res)
	return true
}

// Cancel ends a non-terminal session without a rectangle.
func (s *Session) Cancel() bool {
	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		return false
	}
	s.state = Cancelled
	s.mu.Unlock()

	s.cont(Result{})
	return true
}

// Normalize builds the rectangle spanned by two drag corners in any order.
func Normalize(a, b image.Point) messages.Rectangle {
	left, right := a.X, b.X
	if left > right {
		left, right = right, left
	}
	top, bottom := a.Y, b.Y
	if top > bottom {
		top, bottom = bottom, top
	}
	return messages.Rectangle{Left: left, Top: top, Width: right - left, Height: bottom - top}
}
