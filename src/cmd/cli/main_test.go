package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"screen-translate/src/config"
	"screen-translate/src/translate"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for x := 0; x < 8; x++ {
		img.Set(x, 1, color.Black)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

type fakeEngine struct {
	text string
	err  error
}

func (f fakeEngine) ExtractText(ctx context.Context, img image.Image) (string, error) {
	return f.text, f.err
}

type fakeTranslator struct {
	gotText, gotTarget string
	err                error
}

func (f *fakeTranslator) Translate(ctx context.Context, text, target string) (translate.Result, error) {
	f.gotText, f.gotTarget = text, target
	if f.err != nil {
		return translate.Result{}, f.err
	}
	return translate.Result{Text: text, Translation: "hello", SourceLanguage: "pt", TargetLanguage: target}, nil
}

func TestPNGValidation(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{
			name:    "ValidPNG",
			data:    []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00},
			wantErr: false,
		},
		{
			name:    "InvalidMagic",
			data:    []byte{0x00, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a},
			wantErr: true,
		},
		{
			name:    "TooShort",
			data:    []byte{0x89, 'P', 'N', 'G'},
			wantErr: true,
		},
		{
			name:    "Empty",
			data:    []byte{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePNG(tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("validatePNG() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReadInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.png")
	if err := os.WriteFile(path, []byte("data"), 0o600); err != nil {
		t.Fatal(err)
	}

	if got, err := readInput(path, nil); err != nil || string(got) != "data" {
		t.Errorf("file: got %q, %v", got, err)
	}
	if got, err := readInput("-", strings.NewReader("stdin")); err != nil || string(got) != "stdin" {
		t.Errorf("stdin: got %q, %v", got, err)
	}
	if _, err := readInput("-", strings.NewReader("")); err == nil {
		t.Error("Expected an error for empty input")
	}
	if _, err := readInput(filepath.Join(dir, "missing.png"), nil); err == nil {
		t.Error("Expected an error for a missing file")
	}
	big := bytes.NewReader(make([]byte, maxFileSize+1))
	if _, err := readInput("-", big); err == nil || !strings.Contains(err.Error(), "maximum size") {
		t.Errorf("Expected size error, got %v", err)
	}
}

func TestTranslateImage(t *testing.T) {
	tr := &fakeTranslator{}
	res, err := translateImage(context.Background(), testPNG(t), fakeEngine{text: "olá"}, tr, "en")
	if err != nil {
		t.Fatalf("translateImage: %v", err)
	}
	if tr.gotText != "olá" || tr.gotTarget != "en" {
		t.Errorf("Translator got %q -> %q", tr.gotText, tr.gotTarget)
	}
	if res.Translation != "hello" {
		t.Errorf("Unexpected translation %q", res.Translation)
	}
}

func TestTranslateImageErrors(t *testing.T) {
	boom := errors.New("boom")

	if _, err := translateImage(context.Background(), []byte("not a png"), fakeEngine{}, &fakeTranslator{}, "en"); err == nil {
		t.Error("Expected a decode error")
	}

	_, err := translateImage(context.Background(), testPNG(t), fakeEngine{err: boom}, &fakeTranslator{}, "en")
	if !errors.Is(err, boom) || !strings.HasPrefix(err.Error(), "OCR failed") {
		t.Errorf("Expected wrapped OCR error, got %v", err)
	}

	_, err = translateImage(context.Background(), testPNG(t), fakeEngine{text: "x"}, &fakeTranslator{err: boom}, "en")
	if !errors.Is(err, boom) || !strings.HasPrefix(err.Error(), "translation failed") {
		t.Errorf("Expected wrapped translation error, got %v", err)
	}
}

func TestOutputResult(t *testing.T) {
	res := translate.Result{Text: "olá", Translation: "hello", SourceLanguage: "pt", TargetLanguage: "en"}

	var plain bytes.Buffer
	if err := outputResult(&plain, res, "in.png", time.Second, false); err != nil {
		t.Fatal(err)
	}
	if plain.String() != "hello\n" {
		t.Errorf("Unexpected plain output %q", plain.String())
	}

	var out bytes.Buffer
	if err := outputResult(&out, res, "in.png", 1500*time.Millisecond, true); err != nil {
		t.Fatal(err)
	}
	var got TranslationResult
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Translation != "hello" || got.SourceLanguage != "pt" || got.Source != "in.png" || got.Duration != 1.5 {
		t.Errorf("Unexpected JSON result %+v", got)
	}
}

func TestNormalizeLegacyArgs(t *testing.T) {
	in := []string{"translate-tool", "-file", "a.png", "-json", "-target=pt", "--verbose"}
	want := []string{"translate-tool", "--file", "a.png", "--json", "--target=pt", "--verbose"}
	got := normalizeLegacyArgs(in)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("arg[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRunRequiresFile(t *testing.T) {
	if err := runWithArgs([]string{"translate-tool"}); err == nil {
		t.Fatal("Expected an error without --file")
	}
}

func TestRunDevModeJSON(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.SettingsPathEnvVar, filepath.Join(dir, "settings.toml"))
	t.Setenv("OCR_ENGINE", "")
	path := filepath.Join(dir, "in.png")
	if err := os.WriteFile(path, testPNG(t), 0o600); err != nil {
		t.Fatal(err)
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--file", path, "--dev-mode", "--json", "--target", "en", "-v"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var got TranslationResult
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("stdout is not JSON: %v\n%s", err, stdout.String())
	}
	if got.Text == "" || got.Translation == "" || got.TargetLanguage != "en" {
		t.Errorf("Unexpected result %+v", got)
	}
	if strings.Contains(stdout.String(), "[verbose]") {
		t.Error("Verbose lines must not reach stdout")
	}
	if !strings.Contains(stderr.String(), "[verbose]") {
		t.Error("Expected verbose lines on stderr")
	}
}
