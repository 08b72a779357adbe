package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"screen-translate/src/config"
	"screen-translate/src/logutil"
	"screen-translate/src/ocr"
	"screen-translate/src/runtimeinit"
	"screen-translate/src/translate"
)

const (
	maxFileSizeMB = 10
	maxFileSize   = maxFileSizeMB * 1024 * 1024
	runTimeout    = 60 * time.Second
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}

type cliOptions struct {
	filePath   string
	target     string
	jsonOutput bool
	verbose    bool
	apiKeyPath string
	devMode    bool
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"translate-tool"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "translate-tool",
		Short:         "Read the text in a PNG and translate it",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.filePath, "file", "", "Path to PNG file (use '-' for stdin)")
	cmd.Flags().StringVar(&opts.target, "target", "", "Target language code or name (default from config)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Output results as JSON")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.Flags().StringVar(&opts.apiKeyPath, "api-key-path", "", "Path to API key file (highest precedence)")
	cmd.Flags().BoolVar(&opts.devMode, "dev-mode", false, "Use canned translations instead of the API")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runWithOptions(opts cliOptions, stdin io.Reader, stdout, stderr io.Writer) error {
	verbosef := func(format string, args ...any) {}
	if opts.verbose {
		verbosef = func(format string, args ...any) {
			fmt.Fprintf(stderr, "[verbose] "+format+"\n", args...)
		}
	}

	imageData, err := readInput(opts.filePath, stdin)
	if err != nil {
		return err
	}
	verbosef("Read %d bytes from %s", len(imageData), opts.filePath)
	if err := validatePNG(imageData); err != nil {
		return err
	}

	rt, err := runtimeinit.Bootstrap(runtimeinit.Options{
		LoadOptions: config.LoadOptions{
			APIKeyPathOverride:     opts.apiKeyPath,
			TargetLanguageOverride: opts.target,
			DevMode:                opts.devMode,
			Debug:                  opts.verbose,
		},
		SetupLogging: func(cfg *config.Config) {
			if opts.verbose {
				log.SetOutput(stderr)
				return
			}
			logutil.Setup(false, false)
		},
	})
	if err != nil {
		return err
	}
	defer rt.Close()
	verbosef("Config loaded: model=%s ocr=%s target=%s", rt.Config.Model, rt.Config.OCREngine, rt.Config.TargetLanguage)

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	start := time.Now()
	res, err := translateImage(ctx, imageData, rt.OCR, rt.Translator, rt.Config.TargetLanguage)
	elapsed := time.Since(start)
	if err != nil {
		verbosef("Failed after %v: %v", elapsed, err)
		return err
	}
	verbosef("Done in %v: %d characters read", elapsed, len(res.Text))

	return outputResult(stdout, res, opts.filePath, elapsed, opts.jsonOutput)
}

func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		arg := normalized[i]
		for _, name := range []string{"file", "target", "json", "verbose", "api-key-path", "dev-mode"} {
			switch {
			case arg == "-"+name:
				normalized[i] = "--" + name
			case strings.HasPrefix(arg, "-"+name+"="):
				normalized[i] = "-" + arg
			}
		}
	}

	return normalized
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(io.LimitReader(stdin, maxFileSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
	} else {
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", path, err)
		}
	}

	if len(data) == 0 {
		return nil, errors.New("input file is empty")
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("input file exceeds maximum size of %d MB", maxFileSizeMB)
	}
	return data, nil
}

func validatePNG(data []byte) error {
	if len(data) < len(pngMagic) || !bytes.Equal(data[:len(pngMagic)], pngMagic) {
		return errors.New("input is not a valid PNG file (invalid magic number)")
	}
	return nil
}

func translateImage(ctx context.Context, data []byte, engine ocr.Engine, tr translate.Translator, target string) (translate.Result, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return translate.Result{}, fmt.Errorf("failed to decode PNG: %w", err)
	}
	text, err := engine.ExtractText(ctx, img)
	if err != nil {
		return translate.Result{}, fmt.Errorf("OCR failed: %w", err)
	}
	res, err := tr.Translate(ctx, text, target)
	if err != nil {
		return translate.Result{}, fmt.Errorf("translation failed: %w", err)
	}
	return res, nil
}

type TranslationResult struct {
	Text           string  `json:"text"`
	Translation    string  `json:"translation"`
	SourceLanguage string  `json:"source_language"`
	TargetLanguage string  `json:"target_language"`
	Source         string  `json:"source"`
	Timestamp      string  `json:"timestamp"`
	Duration       float64 `json:"duration_seconds"`
}

func outputResult(w io.Writer, res translate.Result, sourcePath string, elapsed time.Duration, jsonOutput bool) error {
	if !jsonOutput {
		_, err := fmt.Fprintln(w, res.Translation)
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(TranslationResult{
		Text:           res.Text,
		Translation:    res.Translation,
		SourceLanguage: res.SourceLanguage,
		TargetLanguage: res.TargetLanguage,
		Source:         sourcePath,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Duration:       elapsed.Seconds(),
	}); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}
