package messages

import (
	"sync"
	"testing"
)

func TestQueueDrainPreservesOrder(t *testing.T) {
	q := NewQueue(0)
	in := []Command{SelectArea, ToggleOverlay, ClearFields, CopyTranslation, ToggleOverlay}
	for _, c := range in {
		q.Push(c)
	}

	got := q.DrainAll()
	if len(got) != len(in) {
		t.Fatalf("DrainAll returned %d commands, expected %d", len(got), len(in))
	}
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("DrainAll()[%d] = %s, expected %s", i, got[i], in[i])
		}
	}

	if again := q.DrainAll(); again != nil {
		t.Errorf("Expected empty drain after previous drain, got %v", again)
	}
}

func TestQueueDropsOldestWhenFull(t *testing.T) {
	q := NewQueue(2)
	q.Push(SelectArea)
	q.Push(ToggleOverlay)
	q.Push(ClearFields)

	got := q.DrainAll()
	if len(got) != 2 || got[0] != ToggleOverlay || got[1] != ClearFields {
		t.Fatalf("Expected [toggle-overlay clear-fields], got %v", got)
	}
	if q.Dropped() != 1 {
		t.Errorf("Expected 1 dropped command, got %d", q.Dropped())
	}
}

// Several producers push concurrently while the consumer drains in ticks.
// Every command must come out exactly once.
func TestQueueConcurrentExactlyOnce(t *testing.T) {
	const producers = 4
	const perProducer = 500
	q := NewQueue(producers * perProducer)

	// each value carries its producer and sequence number
	encode := func(p, i int) Command { return Command(p*perProducer + i + 1) }

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(encode(p, i))
			}
		}(p)
	}

	done := make(chan struct{})
	var drained []Command
	go func() {
		defer close(done)
		for len(drained) < producers*perProducer {
			drained = append(drained, q.DrainAll()...)
		}
	}()

	wg.Wait()
	<-done

	next := make([]int, producers)
	for _, c := range drained {
		v := int(c) - 1
		p, i := v/perProducer, v%perProducer
		if i != next[p] {
			t.Fatalf("producer %d: got sequence %d, expected %d", p, i, next[p])
		}
		next[p]++
	}
	for p := 0; p < producers; p++ {
		if next[p] != perProducer {
			t.Errorf("producer %d: got %d commands, expected %d", p, next[p], perProducer)
		}
	}
	if q.Len() != 0 {
		t.Errorf("Expected empty queue, got %d pending", q.Len())
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input    string
		expected Command
		wantErr  bool
	}{
		{"select-area", SelectArea, false},
		{"select_area", SelectArea, false},
		{" Toggle-Overlay ", ToggleOverlay, false},
		{"clear_fields", ClearFields, false},
		{"copy-translation", CopyTranslation, false},
		{"explode", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCommand(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCommand(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseCommand(%q) = %s, expected %s", tt.input, got, tt.expected)
			}
		})
	}
}
