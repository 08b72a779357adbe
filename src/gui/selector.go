package gui

import (
	"errors"
	"image"
	"image/color"
	"log"

	"screen-translate/src/eventloop"
	"screen-translate/src/selection"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

var ErrNoApp = errors.New("gui: no fyne app to host the selector")

const selectHint = "Click and drag to select the area to translate\nPress ESC to cancel"

// Selector opens a full-screen translucent window and feeds pointer events
// into a selection.Session. Origin is the screen position of the window's
// top-left corner in pixels.
type Selector struct {
	app    fyne.App
	Origin image.Point
}

var _ eventloop.Selector = (*Selector)(nil)

func NewSelector(a fyne.App, origin image.Point) *Selector {
	return &Selector{app: a, Origin: origin}
}

// Open shows the selection surface. It returns before the user interacts;
// the session's continuation reports the result.
func (s *Selector) Open(sess *selection.Session) error {
	if s.app == nil {
		return ErrNoApp
	}
	fyne.Do(func() { s.open(sess) })
	return nil
}

func (s *Selector) open(sess *selection.Session) fyne.Window {
	w := s.app.NewWindow("Select area")
	surf := newSurface(sess, s.Origin, 1)
	surf.onDone = w.Close

	w.SetPadded(false)
	w.SetContent(surf)
	w.SetFullScreen(true)
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape && sess.Cancel() {
			w.Close()
		}
	})
	// a window closed by the system counts as a cancel
	w.SetOnClosed(func() { sess.Cancel() })
	w.Show()
	w.RequestFocus()
	surf.scale = w.Canvas().Scale()
	sess.Opened()
	log.Printf("gui: selection surface open (scale %.2f)", surf.scale)
	return w
}

// surface is the full-screen widget that turns mouse events into session
// calls. Positions arrive in fyne units and are scaled to screen pixels.
type surface struct {
	widget.BaseWidget

	session *selection.Session
	origin  image.Point
	scale   float32
	onDone  func()

	dim   *canvas.Rectangle
	box   *canvas.Rectangle
	hint  *canvas.Text
	start fyne.Position
}

var (
	_ desktop.Mouseable = (*surface)(nil)
	_ desktop.Hoverable = (*surface)(nil)
)

func newSurface(sess *selection.Session, origin image.Point, scale float32) *surface {
	s := &surface{session: sess, origin: origin, scale: scale}
	s.dim = canvas.NewRectangle(color.NRGBA{A: 0x4c})
	s.box = canvas.NewRectangle(color.Transparent)
	s.box.StrokeColor = color.NRGBA{R: 0xff, A: 0xff}
	s.box.StrokeWidth = 2
	s.box.Hide()
	s.hint = canvas.NewText(selectHint, color.White)
	s.hint.TextSize = 24
	s.hint.Alignment = fyne.TextAlignCenter
	s.ExtendBaseWidget(s)
	return s
}

func (s *surface) CreateRenderer() fyne.WidgetRenderer {
	top := container.NewBorder(container.NewCenter(s.hint), nil, nil, nil)
	return widget.NewSimpleRenderer(container.NewStack(s.dim, container.NewWithoutLayout(s.box), top))
}

func (s *surface) toScreen(pos fyne.Position) image.Point {
	scale := s.scale
	if scale <= 0 {
		scale = 1
	}
	return image.Pt(s.origin.X+int(pos.X*scale), s.origin.Y+int(pos.Y*scale))
}

func (s *surface) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	s.session.PointerDown(s.toScreen(ev.Position))
	s.start = ev.Position
	s.drawBox(ev.Position)
	s.box.Show()
}

func (s *surface) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	if s.session.PointerUp(s.toScreen(ev.Position)) {
		s.box.Hide()
		if s.onDone != nil {
			s.onDone()
		}
	}
}

func (s *surface) MouseIn(*desktop.MouseEvent) {}

func (s *surface) MouseOut() {}

func (s *surface) MouseMoved(ev *desktop.MouseEvent) {
	if _, ok := s.session.PointerMove(s.toScreen(ev.Position)); ok {
		s.drawBox(ev.Position)
	}
}

func (s *surface) drawBox(cur fyne.Position) {
	x0, x1 := s.start.X, cur.X
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	y0, y1 := s.start.Y, cur.Y
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	s.box.Move(fyne.NewPos(x0, y0))
	s.box.Resize(fyne.NewSize(x1-x0, y1-y0))
	s.box.Refresh()
}
