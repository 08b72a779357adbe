package worker

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolRunsJobs(t *testing.T) {
	p := NewPool(2, 4)
	var n atomic.Int32
	done := make(chan struct{}, 4)
	for i := 0; i < 4; i++ {
		if err := p.Submit(func() { n.Add(1); done <- struct{}{} }); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
	}
	for i := 0; i < 4; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("job did not run")
		}
	}
	if !p.Close(time.Second) {
		t.Fatal("Close timed out")
	}
	if n.Load() != 4 {
		t.Errorf("ran %d jobs, want 4", n.Load())
	}
}

func TestPoolBackPressure(t *testing.T) {
	p := NewPool(1, 1)
	release := make(chan struct{})
	started := make(chan struct{})

	if err := p.Submit(func() { close(started); <-release }); err != nil {
		t.Fatal(err)
	}
	<-started
	if err := p.Submit(func() {}); err != nil {
		t.Fatalf("queue slot should be free: %v", err)
	}
	if err := p.Submit(func() {}); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}

	close(release)
	if !p.Close(time.Second) {
		t.Fatal("Close timed out")
	}
	if err := p.Submit(func() {}); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed after Close, got %v", err)
	}
}

func TestPoolSurvivesPanic(t *testing.T) {
	p := NewPool(1, 2)
	defer p.Close(time.Second)

	ran := make(chan struct{})
	if err := p.Submit(func() { panic("boom") }); err != nil {
		t.Fatal(err)
	}
	if err := p.Submit(func() { close(ran) }); err != nil {
		t.Fatal(err)
	}
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died after panic")
	}
}

func TestPoolCloseTimeout(t *testing.T) {
	p := NewPool(1, 1)
	release := make(chan struct{})
	defer close(release)
	started := make(chan struct{})
	_ = p.Submit(func() { close(started); <-release })
	<-started
	if p.Close(20 * time.Millisecond) {
		t.Fatal("Close should report timeout while a job is blocked")
	}
}

func TestGeneration(t *testing.T) {
	g := NewGeneration()
	a1 := g.Next("area")
	i1 := g.Next("input")
	if !g.IsCurrent(a1) || !g.IsCurrent(i1) {
		t.Fatal("fresh tokens should be current")
	}
	a2 := g.Next("area")
	if g.IsCurrent(a1) {
		t.Error("a1 should be stale after a2")
	}
	if !g.IsCurrent(a2) {
		t.Error("a2 should be current")
	}
	if !g.IsCurrent(i1) {
		t.Error("categories must not affect each other")
	}
	if a2.String() != "area#2" {
		t.Errorf("String() = %q", a2.String())
	}
}
