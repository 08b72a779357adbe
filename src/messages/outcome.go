package messages

import "fmt"

// Failure reasons. The first three name the pipeline stage that failed; the
// rest are produced by the worker bridge around the pipeline.
const (
	ReasonCapture   = "capture"
	ReasonOCR       = "ocr"
	ReasonTranslate = "translate"
	ReasonTimeout   = "timeout"
	ReasonBusy      = "busy"
	ReasonPanic     = "panic"
)

// Outcome is the terminal result of one translation request. Exactly one of
// the success fields or Failure is meaningful.
type Outcome struct {
	OriginalText     string
	TranslatedText   string
	DetectedLanguage string
	Failure          *Failure
}

type Failure struct {
	Reason string
	Detail string
}

func (f Failure) String() string {
	if f.Detail == "" {
		return f.Reason
	}
	return fmt.Sprintf("%s: %s", f.Reason, f.Detail)
}

func Success(original, translated, detected string) Outcome {
	return Outcome{OriginalText: original, TranslatedText: translated, DetectedLanguage: detected}
}

func Failed(reason, detail string) Outcome {
	return Outcome{Failure: &Failure{Reason: reason, Detail: detail}}
}

func (o Outcome) IsFailure() bool { return o.Failure != nil }
