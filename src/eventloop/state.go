package eventloop

import "screen-translate/src/messages"

// PanelState is everything the floating panel shows. It is owned by the
// control loop; views receive copies.
type PanelState struct {
	Visible        bool
	Selecting      bool
	Busy           bool
	LastOutcome    *messages.Outcome
	InputText      string
	// InputClears counts ClearFields; a view clears its entry when it changes.
	InputClears    uint64
	InputBusy      bool
	InputResult    *messages.Outcome
	TargetLanguage string
}

// CopyableText returns the translation CopyTranslation would copy, if any.
func (s PanelState) CopyableText() (string, bool) {
	if s.LastOutcome == nil || s.LastOutcome.IsFailure() || s.LastOutcome.TranslatedText == "" {
		return "", false
	}
	return s.LastOutcome.TranslatedText, true
}

// View renders panel state. Render and Flash are only called from the
// control loop and must not block on the UI toolkit.
type View interface {
	Render(state PanelState)
	Flash(message string)
}
