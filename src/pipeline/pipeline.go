// Package pipeline composes capture, text extraction and translation into a
// single blocking call that always yields a terminal outcome.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"screen-translate/src/logutil"
	"screen-translate/src/messages"
	"screen-translate/src/translate"
)

type Capturer interface {
	Capture(ctx context.Context, r messages.Rectangle) (*image.RGBA, error)
}

type Extractor interface {
	ExtractText(ctx context.Context, img image.Image) (string, error)
}

// StageError records which stage failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s failed: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

type Pipeline struct {
	capture   Capturer
	extract   Extractor
	translate translate.Translator
}

func New(c Capturer, e Extractor, t translate.Translator) *Pipeline {
	return &Pipeline{capture: c, extract: e, translate: t}
}

// Run captures r, extracts its text and translates it to target. The first
// failing stage ends the run.
func (p *Pipeline) Run(ctx context.Context, r messages.Rectangle, target string) messages.Outcome {
	start := time.Now()
	res, err := p.run(ctx, r, target)
	if err != nil {
		log.Printf("pipeline: %v (after %s)", err, time.Since(start))
		return failure(err)
	}
	log.Printf("pipeline: %dx%d region translated %s->%s in %s",
		r.Width, r.Height, res.SourceLanguage, target, time.Since(start))
	return messages.Success(res.Text, res.Translation, res.SourceLanguage)
}

func (p *Pipeline) run(ctx context.Context, r messages.Rectangle, target string) (translate.Result, error) {
	img, err := p.capture.Capture(ctx, r)
	if err != nil {
		return translate.Result{}, &StageError{messages.ReasonCapture, err}
	}
	text, err := p.extract.ExtractText(ctx, img)
	if err != nil {
		return translate.Result{}, &StageError{messages.ReasonOCR, err}
	}
	logutil.Debugf("pipeline: extracted %s", logutil.Sanitize(text))
	return p.translateText(ctx, text, target)
}

// TranslateText runs only the translation stage, for text typed by the user.
func (p *Pipeline) TranslateText(ctx context.Context, text, target string) messages.Outcome {
	res, err := p.translateText(ctx, text, target)
	if err != nil {
		log.Printf("pipeline: %v", err)
		return failure(err)
	}
	return messages.Success(res.Text, res.Translation, res.SourceLanguage)
}

func (p *Pipeline) translateText(ctx context.Context, text, target string) (translate.Result, error) {
	res, err := p.translate.Translate(ctx, text, target)
	if err != nil {
		return translate.Result{}, &StageError{messages.ReasonTranslate, err}
	}
	return res, nil
}

func failure(err error) messages.Outcome {
	var se *StageError
	if errors.As(err, &se) {
		return messages.Failed(se.Stage, se.Err.Error())
	}
	return messages.Failed("error", err.Error())
}
