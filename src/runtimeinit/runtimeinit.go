package runtimeinit

import (
	"context"
	"fmt"
	"log"
	"time"

	"screen-translate/src/config"
	"screen-translate/src/llm"
	"screen-translate/src/logutil"
	"screen-translate/src/notification"
	"screen-translate/src/ocr"
	"screen-translate/src/pipeline"
	"screen-translate/src/screenshot"
	"screen-translate/src/translate"
)

const (
	pingTimeout   = 10 * time.Second
	debugImageDir = "debug_images"
)

type Options struct {
	LoadOptions config.LoadOptions
	// SetupLogging runs right after the configuration is loaded.
	SetupLogging func(cfg *config.Config)
	// ShowBlockingErrors pops a native dialog for fatal startup errors.
	ShowBlockingErrors bool
	// OpenDevice acquires the screen capture device. The offline CLI works on
	// image files and leaves it closed.
	OpenDevice bool
}

// Runtime holds the services shared by the resident app and the CLI.
type Runtime struct {
	Config     *config.Config
	Device     *screenshot.Device
	OCR        ocr.Engine
	Translator translate.Translator
	Pipeline   *pipeline.Pipeline
}

func Bootstrap(opts Options) (*Runtime, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg)
	}
	logutil.SetDebug(cfg.Debug)

	rt := &Runtime{Config: cfg}
	var vision ocr.VisionClient
	if cfg.DevMode {
		log.Printf("Dev mode: canned translations, no API calls")
		rt.Translator = translate.NewDev()
	} else {
		textClient, visionClient, err := newClients(cfg)
		if err != nil {
			return nil, opts.fail("Configuration error", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		err = textClient.Ping(ctx)
		cancel()
		if err != nil {
			return nil, opts.fail("LLM unavailable", fmt.Errorf("startup check failed: %w\n\nPlease verify your API key and network connectivity", err))
		}
		log.Printf("LLM ping succeeded")
		rt.Translator = translate.NewLLM(textClient)
		vision = visionClient
	}

	var debug *ocr.DebugSaver
	if cfg.SaveDebugImages {
		debug = ocr.NewDebugSaver(debugImageDir)
	}
	if cfg.DevMode && cfg.OCREngine == config.OCREngineLLM {
		rt.OCR = ocr.DevEngine{}
	} else {
		rt.OCR, err = ocr.NewEngine(ocr.Options{
			Engine:        cfg.OCREngine,
			TesseractPath: cfg.TesseractPath,
			Language:      cfg.OCRLanguage,
			Debug:         debug,
		}, vision)
		if err != nil {
			return nil, opts.fail("OCR unavailable", err)
		}
	}

	var capturer pipeline.Capturer
	if opts.OpenDevice {
		dev, err := screenshot.Open()
		if err != nil {
			return nil, opts.fail("Screen capture unavailable", fmt.Errorf("cannot acquire the screen capture device: %w", err))
		}
		rt.Device = dev
		capturer = dev
	}
	rt.Pipeline = pipeline.New(capturer, rt.OCR, rt.Translator)

	log.Printf("Runtime ready: ocr=%s model=%s target=%s dev=%v", cfg.OCREngine, cfg.Model, cfg.TargetLanguage, cfg.DevMode)
	return rt, nil
}

func newClients(cfg *config.Config) (text, vision *llm.Client, err error) {
	if cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("OPENROUTER_API_KEY is required. Checked key file %s and OPENROUTER_API_KEY env var", cfg.APIKeyPath)
	}
	log.Printf("Using API key %s", logutil.RedactKey(cfg.APIKey))
	text, err = llm.New(llm.Config{APIKey: cfg.APIKey, Model: cfg.Model, Providers: cfg.Providers})
	if err != nil {
		return nil, nil, err
	}
	vision, err = llm.New(llm.Config{APIKey: cfg.APIKey, Model: cfg.OCRModel, Providers: cfg.Providers})
	if err != nil {
		return nil, nil, err
	}
	return text, vision, nil
}

func (o Options) fail(title string, err error) error {
	if o.ShowBlockingErrors {
		notification.ShowBlockingError(title, err.Error())
	}
	return err
}

// Close releases the capture device.
func (r *Runtime) Close() {
	if r.Device != nil {
		_ = r.Device.Close()
	}
}
