package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const SettingsPathEnvVar = "SCREEN_TRANSLATE_SETTINGS"

// Position is the overlay's top-left corner in screen pixels.
type Position struct {
	X int `toml:"x"`
	Y int `toml:"y"`
}

// Settings holds the UI preferences persisted in settings.toml.
type Settings struct {
	TesseractPath     string   `toml:"tesseract_path"`
	DefaultSourceLang string   `toml:"default_source_lang"`
	DefaultTargetLang string   `toml:"default_target_lang"`
	SaveDebugImages   bool     `toml:"save_debug_images"`
	OverlayOpacity    float64  `toml:"overlay_opacity"`
	OverlayPosition   Position `toml:"overlay_position"`
}

func DefaultSettings() Settings {
	return Settings{
		TesseractPath:     `C:\Program Files\Tesseract-OCR\tesseract.exe`,
		DefaultSourceLang: "pt",
		DefaultTargetLang: "en",
		OverlayOpacity:    0.8,
		OverlayPosition:   Position{X: 100, Y: 100},
	}
}

// SettingsPath returns the settings file location: the override if given,
// then $SCREEN_TRANSLATE_SETTINGS, then <user config dir>/screen-translate/settings.toml.
func SettingsPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if env := os.Getenv(SettingsPathEnvVar); env != "" {
		return env, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "screen-translate", "settings.toml"), nil
}

// LoadSettings reads settings.toml over the defaults. A missing file yields
// the defaults; a malformed one is reported.
func LoadSettings(override string) (Settings, error) {
	settings := DefaultSettings()

	path, err := SettingsPath(override)
	if err != nil {
		return settings, nil
	}

	if _, err := toml.DecodeFile(path, &settings); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return DefaultSettings(), fmt.Errorf("failed to parse settings %s: %w", path, err)
	}

	if settings.OverlayOpacity <= 0 || settings.OverlayOpacity > 1 {
		settings.OverlayOpacity = DefaultSettings().OverlayOpacity
	}
	return settings, nil
}
