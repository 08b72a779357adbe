package gui

import (
	"fmt"
	"image/color"
	"log"
	"time"

	"screen-translate/src/eventloop"
	"screen-translate/src/messages"
	"screen-translate/src/translate"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const flashDuration = 1200 * time.Millisecond

// Intents receives what the user does in the panel. The controller's
// SetInput, SetTarget and TranslateInput satisfy it.
type Intents interface {
	SetInput(text string)
	SetTarget(lang string)
	TranslateInput()
}

// Sink receives commands from the panel buttons.
type Sink interface {
	Push(cmd messages.Command)
}

type PanelOptions struct {
	Title   string
	Opacity float64
	// OnExit runs when the Exit button is pressed.
	OnExit func()
	// Place positions the window the first time it is shown.
	Place func()
}

// Panel is the floating translation window. It implements eventloop.View:
// Render and Flash may be called from any goroutine and hand the widget
// work to the fyne thread.
type Panel struct {
	win     fyne.Window
	intents Intents
	cmds    Sink

	status     *widget.Label
	original   *widget.Label
	translated *widget.Label
	detected   *widget.Label
	failure    *widget.Label

	input       *widget.Entry
	target      *widget.Select
	translate   *widget.Button
	inputResult *widget.Label

	selectBtn *widget.Button
	copyBtn   *widget.Button
	clearBtn  *widget.Button

	place   func()
	shown   bool
	placed  bool
	clears  uint64
	syncing bool
}

var _ eventloop.View = (*Panel)(nil)

// NewPanel builds the window hidden. Intents are attached with Bind once
// the controller exists.
func NewPanel(a fyne.App, cmds Sink, opts PanelOptions) *Panel {
	if opts.Title == "" {
		opts.Title = "Screen Translate"
	}
	p := &Panel{
		win:   a.NewWindow(opts.Title),
		cmds:  cmds,
		place: opts.Place,
	}
	p.win.SetContent(p.build(opts))
	p.win.Resize(fyne.NewSize(460, 420))
	// closing the window only hides it; Exit quits
	p.win.SetCloseIntercept(func() { p.cmds.Push(messages.ToggleOverlay) })
	return p
}

func (p *Panel) Window() fyne.Window { return p.win }

func (p *Panel) Bind(intents Intents) { p.intents = intents }

func (p *Panel) build(opts PanelOptions) fyne.CanvasObject {
	p.status = widget.NewLabel("Ready.")
	p.status.TextStyle = fyne.TextStyle{Italic: true}

	p.original = widget.NewLabel("")
	p.original.Wrapping = fyne.TextWrapWord
	p.translated = widget.NewLabel("")
	p.translated.Wrapping = fyne.TextWrapWord
	p.translated.TextStyle = fyne.TextStyle{Bold: true}
	p.detected = widget.NewLabel("")
	p.failure = widget.NewLabel("")
	p.failure.Wrapping = fyne.TextWrapWord
	p.failure.Importance = widget.DangerImportance
	p.failure.Hide()

	p.input = widget.NewMultiLineEntry()
	p.input.SetPlaceHolder("Type text to translate")
	p.input.Wrapping = fyne.TextWrapWord
	p.input.SetMinRowsVisible(3)
	p.input.OnChanged = func(s string) {
		if !p.syncing && p.intents != nil {
			p.intents.SetInput(s)
		}
	}
	// shift+enter on a multiline entry
	p.input.OnSubmitted = func(string) {
		if p.intents != nil {
			p.intents.TranslateInput()
		}
	}

	p.target = widget.NewSelect(translate.Names(), func(name string) {
		if !p.syncing && p.intents != nil {
			p.intents.SetTarget(name)
		}
	})

	p.translate = widget.NewButton("Translate", func() {
		if p.intents != nil {
			p.intents.TranslateInput()
		}
	})
	p.translate.Importance = widget.HighImportance
	p.inputResult = widget.NewLabel("")
	p.inputResult.Wrapping = fyne.TextWrapWord

	p.selectBtn = widget.NewButtonWithIcon("Select Area", theme.ViewFullScreenIcon(), func() {
		p.cmds.Push(messages.SelectArea)
	})
	p.copyBtn = widget.NewButtonWithIcon("Copy", theme.ContentCopyIcon(), func() {
		p.cmds.Push(messages.CopyTranslation)
	})
	p.clearBtn = widget.NewButtonWithIcon("Clear", theme.ContentClearIcon(), func() {
		p.cmds.Push(messages.ClearFields)
	})
	exitBtn := widget.NewButton("Exit", func() {
		if opts.OnExit != nil {
			opts.OnExit()
		}
	})
	exitBtn.Importance = widget.DangerImportance

	header := container.NewBorder(nil, nil,
		widget.NewLabelWithStyle("Target", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		p.selectBtn, p.target)

	capture := container.NewVBox(
		widget.NewLabelWithStyle("Captured text", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		p.original,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Translation", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		p.translated,
		p.detected,
		p.failure,
	)

	manual := container.NewVBox(
		widget.NewSeparator(),
		p.input,
		container.NewHBox(layout.NewSpacer(), p.translate),
		p.inputResult,
	)

	footer := container.NewHBox(p.status, layout.NewSpacer(), p.copyBtn, p.clearBtn, exitBtn)
	body := container.NewBorder(header, footer, nil, nil,
		container.NewVScroll(container.NewVBox(capture, manual)))

	bg := canvas.NewRectangle(panelBackground(opts.Opacity))
	return container.NewStack(bg, container.NewPadded(body))
}

func panelBackground(opacity float64) color.Color {
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	r, g, b, _ := theme.Color(theme.ColorNameBackground).RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(opacity * 255)}
}

// Render schedules a redraw of st on the fyne thread.
func (p *Panel) Render(st eventloop.PanelState) {
	fyne.Do(func() { p.apply(st) })
}

// Flash briefly shows message on the copy button.
func (p *Panel) Flash(message string) {
	fyne.Do(func() {
		p.copyBtn.SetText(message)
		p.copyBtn.Importance = widget.SuccessImportance
		if message != "Copied!" {
			p.copyBtn.Importance = widget.WarningImportance
		}
		p.copyBtn.Refresh()
	})
	time.AfterFunc(flashDuration, func() {
		fyne.Do(func() {
			p.copyBtn.SetText("Copy")
			p.copyBtn.Importance = widget.MediumImportance
			p.copyBtn.Refresh()
		})
	})
}

func (p *Panel) apply(st eventloop.PanelState) {
	p.syncing = true
	defer func() { p.syncing = false }()

	if name := translate.LanguageName(st.TargetLanguage); p.target.Selected != name {
		p.target.SetSelected(name)
	}
	// the entry owns the text while typing; only a clear comes back from state
	if st.InputClears != p.clears {
		p.clears = st.InputClears
		p.input.SetText("")
	}

	p.status.SetText(statusText(st))
	p.showOutcome(st.LastOutcome)

	switch {
	case st.InputBusy:
		p.translate.Disable()
		p.inputResult.SetText("Translating...")
	case st.InputResult == nil:
		p.translate.Enable()
		p.inputResult.SetText("")
	case st.InputResult.IsFailure():
		p.translate.Enable()
		p.inputResult.SetText("Error: " + st.InputResult.Failure.String())
	default:
		p.translate.Enable()
		p.inputResult.SetText(st.InputResult.TranslatedText)
	}

	if _, ok := st.CopyableText(); ok {
		p.copyBtn.Enable()
	} else {
		p.copyBtn.Disable()
	}

	p.setVisible(st.Visible)
}

func (p *Panel) showOutcome(out *messages.Outcome) {
	switch {
	case out == nil:
		p.original.SetText("")
		p.translated.SetText("")
		p.detected.SetText("")
		p.failure.Hide()
	case out.IsFailure():
		p.original.SetText("")
		p.translated.SetText("")
		p.detected.SetText("")
		p.failure.SetText("Error: " + out.Failure.String())
		p.failure.Show()
	default:
		p.original.SetText(out.OriginalText)
		p.translated.SetText(out.TranslatedText)
		if out.DetectedLanguage != "" {
			p.detected.SetText(fmt.Sprintf("Detected: %s", translate.LanguageName(out.DetectedLanguage)))
		} else {
			p.detected.SetText("")
		}
		p.failure.Hide()
	}
}

func (p *Panel) setVisible(v bool) {
	if v == p.shown {
		return
	}
	p.shown = v
	if v {
		p.win.Show()
		if p.place != nil && !p.placed {
			p.placed = true
			p.place()
		}
		p.win.RequestFocus()
		return
	}
	log.Printf("gui: hiding panel")
	p.win.Hide()
}

func statusText(st eventloop.PanelState) string {
	switch {
	case st.Selecting:
		return "Selecting area..."
	case st.Busy:
		return "Translating..."
	default:
		return "Ready."
	}
}
