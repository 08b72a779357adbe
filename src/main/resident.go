package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"screen-translate/src/clipboard"
	"screen-translate/src/config"
	"screen-translate/src/eventloop"
	"screen-translate/src/gui"
	"screen-translate/src/hotkey"
	"screen-translate/src/logutil"
	"screen-translate/src/messages"
	"screen-translate/src/notification"
	"screen-translate/src/runtimeinit"
	"screen-translate/src/singleinstance"
	"screen-translate/src/worker"
)

const (
	appID            = "com.screen-translate.app"
	listenerStopWait = time.Second
	bridgeCloseWait  = 2 * time.Second
	loopStopWait     = time.Second
)

func runResident(opts mainOptions) error {
	enableDPIAwareness()

	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			APIKeyPathOverride:     opts.apiKeyPath,
			TargetLanguageOverride: opts.targetLang,
			DevMode:                opts.devMode,
			Debug:                  opts.debug,
		},
		SetupLogging: func(cfg *config.Config) {
			logutil.Setup(cfg.EnableFileLogging, opts.debug)
		},
		ShowBlockingErrors: true,
		OpenDevice:         true,
	})
	if err != nil {
		return err
	}
	defer rt.Close()
	cfg := rt.Config

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := messages.NewQueue(cfg.QueueLimit)

	server := singleinstance.NewServer(queue)
	if err := server.Start(ctx); err != nil {
		if errors.Is(err, singleinstance.ErrAlreadyRunning) {
			fmt.Println("screen-translate is already running")
			return err
		}
		log.Printf("Single-instance guard unavailable: %v", err)
	}
	defer server.Close()

	if err := clipboard.Init(); err != nil {
		log.Printf("Clipboard unavailable, copy will fail: %v", err)
	}

	hotkeyOpts, err := hotkey.NewOptions(cfg.Hotkeys, cfg.PollInterval, cfg.Debounce)
	if err != nil {
		notification.ShowBlockingError("Invalid hotkey", err.Error())
		return err
	}
	var listener *hotkey.Listener
	hook, err := hotkey.StartHook()
	if err != nil {
		// the panel buttons and `send` still work
		log.Printf("Global hotkeys disabled: %v", err)
	} else {
		defer hook.Close()
		listener = hotkey.NewListener(hook, queue, hotkeyOpts)
		if err := listener.Start(ctx); err != nil {
			return err
		}
		for _, b := range hotkeyOpts.Bindings {
			log.Printf("Hotkey %s -> %s", b.Combo.Text, b.Command)
		}
	}

	bridge := worker.NewBridge(worker.NewPool(cfg.Workers, cfg.QueueLimit), worker.NewGeneration(), cfg.PipelineTimeout)

	a := app.NewWithID(appID)
	a.SetIcon(gui.AppIcon)
	pos := image.Pt(cfg.Settings.OverlayPosition.X, cfg.Settings.OverlayPosition.Y)
	panel := gui.NewPanel(a, queue, gui.PanelOptions{
		Opacity: cfg.Settings.OverlayOpacity,
		OnExit:  a.Quit,
		Place:   func() { gui.PlaceCurrentWindow(pos) },
	})
	panel.Window().SetMaster()
	if !gui.InstallTray(a, queue, a.Quit) {
		log.Printf("System tray not supported by this driver")
	}

	// the selector goes full screen on the primary display
	var origin image.Point
	if rt.Device != nil {
		origin = rt.Device.Primary().Min
		log.Printf("Screen bounds: %v, selector on %v", rt.Device.Bounds(), rt.Device.Primary())
	}

	ctrl, err := eventloop.New(eventloop.Deps{
		Commands:  queue,
		Bridge:    bridge,
		Pipeline:  rt.Pipeline,
		View:      panel,
		Selector:  gui.NewSelector(a, origin),
		Clipboard: clipboard.System{},
	}, eventloop.Options{
		TickInterval:   cfg.TickInterval,
		TargetLanguage: cfg.TargetLanguage,
		StartVisible:   true,
	})
	if err != nil {
		return err
	}
	panel.Bind(ctrl)

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		_ = ctrl.Run(ctx)
	}()

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-ch:
			log.Printf("Signal received, quitting")
			fyne.Do(a.Quit)
		case <-ctx.Done():
		}
	}()

	log.Printf("Screen Translate ready")
	a.Run()

	log.Printf("Shutting down")
	cancel()
	if listener != nil {
		if err := listener.Stop(listenerStopWait); err != nil {
			log.Printf("Hotkey listener: %v", err)
		}
	}
	select {
	case <-loopDone:
	case <-time.After(loopStopWait):
		log.Printf("Control loop did not stop in time")
	}
	if !bridge.Close(bridgeCloseWait) {
		log.Printf("Workers still busy at exit")
	}
	return nil
}
