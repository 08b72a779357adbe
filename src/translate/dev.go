package translate

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"
)

var devResponses = []string{
	"[Team] Player1: hi everyone, wanna play?\n[Team] Player2: yeah, let's go!\n[Team] Player3: wait a moment please",
	"[Team] TeamLeader: does anyone know how to play Hulk?\n[Team] Pro_Gamer: just smash everything lol\n[Team] NewPlayer: I need help with the controls",
	"[Team] Player4: nice play!\n[Team] Player5: thanks for the help\n[Team] Player6: let's win this match",
}

// DevTranslator returns canned chat translations after a random delay, so the
// UI can be exercised without an API key.
type DevTranslator struct {
	MinDelay time.Duration
	MaxDelay time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

func NewDev() *DevTranslator {
	return &DevTranslator{
		MinDelay: 500 * time.Millisecond,
		MaxDelay: 2 * time.Second,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (d *DevTranslator) Translate(ctx context.Context, text, target string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{TargetLanguage: target}, nil
	}

	d.mu.Lock()
	delay := d.MinDelay
	if span := d.MaxDelay - d.MinDelay; span > 0 {
		delay += time.Duration(d.rng.Int63n(int64(span)))
	}
	reply := devResponses[d.rng.Intn(len(devResponses))]
	d.mu.Unlock()

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-time.After(delay):
	}
	return Result{Text: text, Translation: reply, SourceLanguage: "pt", TargetLanguage: target}, nil
}
