package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
)

const (
	logFileName  = "screen_translate.log"
	maxSizeBytes = 10 * 1024 * 1024 // 10 MB
	maxArchives  = 3
)

var debugEnabled atomic.Bool

// Setup routes the standard logger. With file logging enabled, output goes to
// a size-rotated file (10MB, max 3 archives); otherwise it is discarded.
// When mirrorStderr is set, output is additionally copied to stderr.
func Setup(enableFileLogging, mirrorStderr bool) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var out io.Writer = io.Discard
	if enableFileLogging {
		rotateIfNeeded()
		f, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		} else {
			out = &rotatingWriter{f: f}
		}
	}
	if mirrorStderr {
		if out == io.Discard {
			out = os.Stderr
		} else {
			out = io.MultiWriter(out, os.Stderr)
		}
	}
	log.SetOutput(out)
}

// SetDebug toggles Debugf output.
func SetDebug(enabled bool) { debugEnabled.Store(enabled) }

// DebugEnabled reports whether Debugf writes anything.
func DebugEnabled() bool { return debugEnabled.Load() }

// Debugf logs with a DEBUG prefix when debug logging is on.
func Debugf(format string, args ...any) {
	if !debugEnabled.Load() {
		return
	}
	_ = log.Output(2, "DEBUG: "+fmt.Sprintf(format, args...))
}

type rotatingWriter struct {
	mu sync.Mutex
	f  *os.File
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	// naive rotation check per write
	if st, err := w.f.Stat(); err == nil && st.Size()+int64(len(p)) > maxSizeBytes {
		_ = w.f.Close()
		rotateIfNeeded()
		nf, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return 0, err
		}
		w.f = nf
	}
	return w.f.Write(p)
}

func rotateIfNeeded() {
	// If base exceeds max size, rotate: .1, .2, .3 (oldest discarded)
	if st, err := os.Stat(logFileName); err == nil && st.Size() > maxSizeBytes {
		_ = os.Remove(archiveName(maxArchives))
		for i := maxArchives - 1; i >= 1; i-- {
			_ = os.Rename(archiveName(i), archiveName(i+1))
		}
		_ = os.Rename(logFileName, archiveName(1))
	}
}

func archiveName(n int) string { return filepath.Join(".", fmt.Sprintf("%s.%d", logFileName, n)) }

// RedactKey masks an API key, leaving first/last 4 chars: xxxx...yyyy
func RedactKey(k string) string {
	if len(k) <= 8 {
		return "********"
	}
	return fmt.Sprintf("%s...%s", k[:4], k[len(k)-4:])
}

// Sanitize makes captured or typed text safe for a single log line: it is
// truncated to 100 bytes and control characters are escaped.
func Sanitize(text string) string {
	const maxLogLength = 100
	truncated := false
	if len(text) > maxLogLength {
		text = text[:maxLogLength]
		truncated = true
	}

	var b strings.Builder
	for _, r := range text {
		switch {
		case r == '\n' || r == '\r':
			b.WriteString("\\n")
		case r == '\t':
			b.WriteString("\\t")
		case r < 32 || r == 127:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	if truncated {
		b.WriteString("...")
	}
	return b.String()
}
