package ocr

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"
)

// DebugSaver writes intermediate images to Dir when enabled. A nil saver is a
// no-op.
type DebugSaver struct {
	Dir string
	now func() time.Time
}

func NewDebugSaver(dir string) *DebugSaver {
	return &DebugSaver{Dir: dir, now: time.Now}
}

// Save writes img as <dir>/<stage>_<timestamp>.png. Failures are logged only.
func (d *DebugSaver) Save(stage string, img image.Image) string {
	if d == nil || img == nil {
		return ""
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		log.Printf("Warning: Could not create debug dir: %v", err)
		return ""
	}
	name := filepath.Join(d.Dir, fmt.Sprintf("%s_%s.png", stage, d.now().Format("20060102_150405.000")))
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		log.Printf("Warning: Could not save debug image: %v", err)
		return ""
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		log.Printf("Warning: Could not encode debug image: %v", err)
		return ""
	}
	log.Printf("DEBUG: Saved %s image to %s", stage, name)
	return name
}
