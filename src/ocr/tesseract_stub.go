//go:build !tesseract

package ocr

// NewTesseract reports that this binary was built without gosseract.
func NewTesseract(path, language string, debug *DebugSaver) (Engine, error) {
	return nil, ErrTesseractUnavailable
}
