package gui

import (
	_ "embed"
	"image"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/go-gl/glfw/v3.3/glfw"

	"screen-translate/src/messages"
)

//go:embed icon.svg
var iconSVG []byte

// AppIcon is the window and tray icon.
var AppIcon = fyne.NewStaticResource("screen-translate.svg", iconSVG)

// InstallTray adds the system tray menu when the driver supports one.
func InstallTray(a fyne.App, cmds Sink, onExit func()) bool {
	desk, ok := a.(desktop.App)
	if !ok {
		return false
	}
	desk.SetSystemTrayMenu(trayMenu(cmds, onExit))
	desk.SetSystemTrayIcon(AppIcon)
	return true
}

func trayMenu(cmds Sink, onExit func()) *fyne.Menu {
	push := func(c messages.Command) func() {
		return func() { cmds.Push(c) }
	}
	exit := fyne.NewMenuItem("Exit", onExit)
	exit.IsQuit = true
	return fyne.NewMenu("Screen Translate",
		fyne.NewMenuItem("Select Area", push(messages.SelectArea)),
		fyne.NewMenuItem("Show/Hide Panel", push(messages.ToggleOverlay)),
		fyne.NewMenuItem("Copy Translation", push(messages.CopyTranslation)),
		fyne.NewMenuItem("Clear", push(messages.ClearFields)),
		fyne.NewMenuItemSeparator(),
		exit,
	)
}

// PlaceCurrentWindow moves the window that owns the current GL context. It
// must run on the fyne thread right after that window was shown.
func PlaceCurrentWindow(pos image.Point) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("gui: cannot place window: %v", r)
		}
	}()
	if w := glfw.GetCurrentContext(); w != nil {
		w.SetPos(pos.X, pos.Y)
	}
}
