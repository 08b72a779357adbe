//go:build tesseract

package ocr

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/otiai10/gosseract"

	"screen-translate/src/screenshot"
)

// TesseractEngine runs libtesseract through gosseract on the preprocessed
// capture. Calls are serialized; the underlying API is not goroutine safe.
type TesseractEngine struct {
	mu       sync.Mutex
	language string
	tessdata string
	debug    *DebugSaver
}

// NewTesseract uses language (e.g. "por") and, when path names a Tesseract
// install or executable, the tessdata directory next to it.
func NewTesseract(path, language string, debug *DebugSaver) (Engine, error) {
	if language == "" {
		language = "eng"
	}
	e := &TesseractEngine{language: language, debug: debug}
	if path != "" {
		dir := path
		if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
			dir = filepath.Dir(path)
		}
		if fi, err := os.Stat(filepath.Join(dir, "tessdata")); err == nil && fi.IsDir() {
			e.tessdata = filepath.Join(dir, "tessdata")
		}
	}
	log.Printf("ocr: tesseract engine, language=%s tessdata=%q", e.language, e.tessdata)
	return e, nil
}

func (e *TesseractEngine) ExtractText(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	e.debug.Save("captured", img)
	processed := Preprocess(img)
	e.debug.Save("processed", processed)

	data, err := screenshot.EncodePNG(processed)
	if err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp("", "screen-translate-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("tesseract temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("tesseract temp file: %w", err)
	}
	tmp.Close()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.tessdata != "" {
		os.Setenv("TESSDATA_PREFIX", e.tessdata)
	}
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(e.language); err != nil {
		return "", fmt.Errorf("tesseract language %q: %w", e.language, err)
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", fmt.Errorf("tesseract page mode: %w", err)
	}
	if err := client.SetImage(tmp.Name()); err != nil {
		return "", fmt.Errorf("tesseract image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return ReconstructMessages(text), nil
}
