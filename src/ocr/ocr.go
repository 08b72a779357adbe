// Package ocr extracts text from captured screen images, either through an
// LLM vision model or through a local Tesseract install.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"strings"

	"screen-translate/src/logutil"
	"screen-translate/src/screenshot"
)

const (
	EngineLLM       = "llm"
	EngineTesseract = "tesseract"
)

var ErrTesseractUnavailable = errors.New("ocr: built without tesseract support (use -tags tesseract)")

// Engine turns an image into text. Implementations may block for hundreds
// of milliseconds.
type Engine interface {
	ExtractText(ctx context.Context, img image.Image) (string, error)
}

// VisionClient is satisfied by *llm.Client.
type VisionClient interface {
	QueryVision(ctx context.Context, imageData []byte) (string, error)
}

type Options struct {
	Engine        string
	TesseractPath string
	Language      string
	Debug         *DebugSaver
}

// NewEngine returns the engine named by opts.Engine. vision is only needed
// for the llm engine.
func NewEngine(opts Options, vision VisionClient) (Engine, error) {
	switch strings.ToLower(opts.Engine) {
	case "", EngineLLM:
		if vision == nil {
			return nil, fmt.Errorf("ocr: llm engine needs a vision client")
		}
		return &VisionEngine{client: vision, debug: opts.Debug}, nil
	case EngineTesseract:
		return NewTesseract(opts.TesseractPath, opts.Language, opts.Debug)
	default:
		return nil, fmt.Errorf("ocr: unknown engine %q", opts.Engine)
	}
}

// VisionEngine sends the raw capture to a vision model.
type VisionEngine struct {
	client VisionClient
	debug  *DebugSaver
}

func NewVision(client VisionClient, debug *DebugSaver) *VisionEngine {
	return &VisionEngine{client: client, debug: debug}
}

func (e *VisionEngine) ExtractText(ctx context.Context, img image.Image) (string, error) {
	data, err := screenshot.EncodePNG(img)
	if err != nil {
		return "", err
	}
	e.debug.Save("captured", img)

	b := img.Bounds()
	log.Printf("ocr: sending %dx%d capture (%d bytes) to vision model", b.Dx(), b.Dy(), len(data))
	text, err := e.client.QueryVision(ctx, data)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	logutil.Debugf("ocr: vision text %s", logutil.Sanitize(text))
	return text, nil
}

// ReconstructMessages rejoins chat messages that wrapped across lines: a line
// containing ':' starts a new message and following lines without one are
// appended to it. Blank lines are dropped.
func ReconstructMessages(text string) string {
	var messages []string
	var current []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, ":") && len(current) > 0 {
			messages = append(messages, strings.Join(current, " "))
			current = nil
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		messages = append(messages, strings.Join(current, " "))
	}
	return strings.Join(messages, "\n")
}
