package selection

import (
	"image"
	"sync"
	"sync/atomic"
	"testing"

	"screen-translate/src/messages"
)

func TestNormalizeAllDirections(t *testing.T) {
	want := messages.Rectangle{Left: 10, Top: 20, Width: 40, Height: 40}
	tests := []struct {
		name       string
		start, end image.Point
	}{
		{"down-right", image.Pt(10, 20), image.Pt(50, 60)},
		{"up-left", image.Pt(50, 60), image.Pt(10, 20)},
		{"down-left", image.Pt(50, 20), image.Pt(10, 60)},
		{"up-right", image.Pt(10, 60), image.Pt(50, 20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.start, tt.end); got != want {
				t.Errorf("Normalize(%v, %v) = %+v, want %+v", tt.start, tt.end, got, want)
			}
		})
	}
}

func TestDragAndRelease(t *testing.T) {
	var results []Result
	s := New(func(r Result) { results = append(results, r) })
	if s.State() != Opening {
		t.Fatalf("initial state %s", s.State())
	}
	s.Opened()
	if s.State() != AwaitingDrag {
		t.Fatalf("after Opened: %s", s.State())
	}

	if _, ok := s.PointerMove(image.Pt(1, 1)); ok {
		t.Error("move before press should not produce a rectangle")
	}
	if s.PointerUp(image.Pt(1, 1)) {
		t.Error("release without press must not resolve")
	}

	s.PointerDown(image.Pt(50, 60))
	if s.State() != AwaitingRelease {
		t.Fatalf("after PointerDown: %s", s.State())
	}
	preview, ok := s.PointerMove(image.Pt(30, 40))
	if !ok || preview != (messages.Rectangle{Left: 30, Top: 40, Width: 20, Height: 20}) {
		t.Errorf("preview = %+v, %v", preview, ok)
	}
	if len(results) != 0 {
		t.Fatal("continuation fired before the terminal event")
	}

	if !s.PointerUp(image.Pt(10, 20)) {
		t.Fatal("release should resolve")
	}
	want := Result{Rect: messages.Rectangle{Left: 10, Top: 20, Width: 40, Height: 40}, OK: true}
	if len(results) != 1 || results[0] != want {
		t.Fatalf("results = %+v", results)
	}

	// later events are no-ops
	s.PointerDown(image.Pt(0, 0))
	s.PointerUp(image.Pt(5, 5))
	if s.Cancel() {
		t.Error("Cancel after resolve should report false")
	}
	if len(results) != 1 || s.State() != Resolved {
		t.Fatalf("session changed after resolving: %+v %s", results, s.State())
	}
}

func TestCancel(t *testing.T) {
	for _, st := range []string{"opening", "dragging"} {
		t.Run(st, func(t *testing.T) {
			var results []Result
			s := New(func(r Result) { results = append(results, r) })
			if st == "dragging" {
				s.Opened()
				s.PointerDown(image.Pt(3, 3))
			}
			if !s.Cancel() {
				t.Fatal("Cancel should resolve")
			}
			s.PointerUp(image.Pt(9, 9))
			s.Cancel()
			if len(results) != 1 || results[0].OK {
				t.Fatalf("results = %+v", results)
			}
			if s.State() != Cancelled {
				t.Errorf("state = %s", s.State())
			}
		})
	}
}

func TestExactlyOnceUnderRace(t *testing.T) {
	for i := 0; i < 200; i++ {
		var fired atomic.Int32
		s := New(func(Result) { fired.Add(1) })
		s.Opened()
		s.PointerDown(image.Pt(0, 0))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); s.PointerUp(image.Pt(10, 10)) }()
		go func() { defer wg.Done(); s.Cancel() }()
		wg.Wait()

		if n := fired.Load(); n != 1 {
			t.Fatalf("iteration %d: continuation fired %d times", i, n)
		}
	}
}

func TestContinuationMayInspectSession(t *testing.T) {
	var s *Session
	var seen State
	s = New(func(Result) { seen = s.State() })
	s.Cancel()
	if seen != Cancelled {
		t.Errorf("continuation saw state %s", seen)
	}
}
