package screenshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"log"
	"sync"

	"github.com/kbinani/screenshot"

	"screen-translate/src/messages"
)

var (
	ErrNoDisplay    = errors.New("screenshot: no active displays found")
	ErrDeviceClosed = errors.New("screenshot: capture device closed")
)

type grabFunc func(bounds image.Rectangle) (*image.RGBA, error)

// Device is the process-wide capture handle. Open it once at startup and
// Close it on shutdown; captures after Close fail with ErrDeviceClosed.
type Device struct {
	mu       sync.Mutex
	closed   bool
	bounds   image.Rectangle
	displays []image.Rectangle
	grab     grabFunc
}

// Open acquires the capture device and records the union of all active
// display bounds.
func Open() (*Device, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, ErrNoDisplay
	}
	displays := make([]image.Rectangle, n)
	for i := range displays {
		displays[i] = screenshot.GetDisplayBounds(i)
	}
	d := newDevice(screenshot.CaptureRect, displays...)
	log.Printf("screenshot: %d display(s), virtual screen %v, primary %v", n, d.bounds, d.Primary())
	return d, nil
}

// newDevice takes the primary display first.
func newDevice(grab grabFunc, displays ...image.Rectangle) *Device {
	d := &Device{grab: grab, displays: displays}
	for i, b := range displays {
		if i == 0 {
			d.bounds = b
			continue
		}
		d.bounds = d.bounds.Union(b)
	}
	return d
}

// Bounds returns the virtual screen rectangle captured by Open.
func (d *Device) Bounds() image.Rectangle { return d.bounds }

// Primary returns the bounds of the primary display. Secondary displays
// left of or above it make Bounds().Min negative, so full-screen windows
// map their coordinates through this instead.
func (d *Device) Primary() image.Rectangle {
	if len(d.displays) == 0 {
		return d.bounds
	}
	return d.displays[0]
}

// Capture grabs r. A rectangle that extends past the screen is clipped;
// one that lies entirely off-screen is an error.
func (d *Device) Capture(ctx context.Context, r messages.Rectangle) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.Empty() {
		return nil, fmt.Errorf("invalid region dimensions: width=%d, height=%d", r.Width, r.Height)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDeviceClosed
	}

	clip := r.Image().Intersect(d.bounds)
	if clip.Empty() {
		return nil, fmt.Errorf("region %v is outside the screen %v", r.Image(), d.bounds)
	}
	img, err := d.grab(clip)
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %w", err)
	}
	return img, nil
}

// Close releases the device. It is safe to call more than once.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed {
		d.closed = true
		log.Printf("screenshot: capture device released")
	}
	return nil
}

// EncodePNG is used for debug dumps and the vision OCR payload.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}
