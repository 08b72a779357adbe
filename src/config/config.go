package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"screen-translate/src/messages"
)

const (
	DefaultAPIKeyPath = "/run/secrets/api_keys/openrouter"
	APIKeyPathEnvVar  = "OPENROUTER_API_KEY_FILE"
	EnvPathEnvVar     = "SCREEN_TRANSLATE_ENV"

	OCREngineLLM       = "llm"
	OCREngineTesseract = "tesseract"

	DefaultModel          = "openai/gpt-4o-mini"
	DefaultTargetLanguage = "en"
)

// Hotkey defaults mirror the original overlay bindings.
var DefaultHotkeys = map[messages.Command]string{
	messages.SelectArea:      "Ctrl+Alt+X",
	messages.ToggleOverlay:   "Ctrl+Alt+C",
	messages.ClearFields:     "Ctrl+Alt+D",
	messages.CopyTranslation: "Ctrl+Alt+V",
}

var hotkeyEnvVars = map[messages.Command]string{
	messages.SelectArea:      "HOTKEY_SELECT_AREA",
	messages.ToggleOverlay:   "HOTKEY_TOGGLE_OVERLAY",
	messages.ClearFields:     "HOTKEY_CLEAR_FIELDS",
	messages.CopyTranslation: "HOTKEY_COPY_TRANSLATION",
}

type LoadOptions struct {
	APIKeyPathOverride     string
	TargetLanguageOverride string
	SettingsPathOverride   string
	DevMode                bool
	Debug                  bool
}

// Config is an immutable snapshot handed to the runtime at startup.
type Config struct {
	APIKey     string
	APIKeyPath string
	Model      string
	OCRModel   string
	Providers  []string

	OCREngine     string
	TesseractPath string
	OCRLanguage   string

	TargetLanguage string
	Hotkeys        map[messages.Command]string

	PollInterval    time.Duration
	Debounce        time.Duration
	TickInterval    time.Duration
	PipelineTimeout time.Duration
	Workers         int
	QueueLimit      int

	EnableFileLogging bool
	Debug             bool
	SaveDebugImages   bool
	DevMode           bool

	Settings Settings
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SCREEN_TRANSLATE_ENV env var as a path to a config file
	envPath := resolveEnvPath()
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	settings, err := LoadSettings(opts.SettingsPathOverride)
	if err != nil {
		return nil, err
	}

	var providers []string
	if providersStr := os.Getenv("PROVIDERS"); providersStr != "" {
		for _, provider := range strings.Split(providersStr, ",") {
			if trimmed := strings.TrimSpace(provider); trimmed != "" {
				providers = append(providers, trimmed)
			}
		}
	}

	apiKeyPath := resolveAPIKeyPath(opts, dotenvValues)
	model := getEnvWithDefault("MODEL", DefaultModel)

	cfg := &Config{
		APIKey:     resolveAPIKey(apiKeyPath),
		APIKeyPath: apiKeyPath,
		Model:      model,
		OCRModel:   getEnvWithDefault("OCR_MODEL", model),
		Providers:  providers,

		OCREngine:     resolveOCREngine(os.Getenv("OCR_ENGINE")),
		TesseractPath: getEnvWithDefault("TESSERACT_PATH", settings.TesseractPath),
		OCRLanguage:   getEnvWithDefault("OCR_LANGUAGE", "por"),

		TargetLanguage: resolveTargetLanguage(opts, settings),
		Hotkeys:        resolveHotkeys(),

		PollInterval:    envMillis("HOTKEY_POLL_MS", 100),
		Debounce:        envMillis("HOTKEY_DEBOUNCE_MS", 300),
		TickInterval:    envMillis("TICK_MS", 100),
		PipelineTimeout: time.Duration(envPositiveInt("PIPELINE_TIMEOUT_SEC", 30)) * time.Second,
		Workers:         envPositiveInt("WORKERS", 2),
		QueueLimit:      envPositiveInt("COMMAND_QUEUE_LIMIT", messages.DefaultQueueLimit),

		EnableFileLogging: envBool("ENABLE_FILE_LOGGING"),
		Debug:             opts.Debug || envBool("DEBUG"),
		SaveDebugImages:   envBool("SAVE_DEBUG_IMAGES") || settings.SaveDebugImages,
		DevMode:           opts.DevMode || envBool("DEV_MODE"),

		Settings: settings,
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(EnvPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

func resolveAPIKeyPath(opts LoadOptions, dotenvValues map[string]string) string {
	keyPath := DefaultAPIKeyPath

	if envPath := strings.TrimSpace(os.Getenv(APIKeyPathEnvVar)); envPath != "" {
		keyPath = envPath
	}

	if dotenvPath := strings.TrimSpace(dotenvValues[APIKeyPathEnvVar]); dotenvPath != "" {
		keyPath = dotenvPath
	}

	if overridePath := strings.TrimSpace(opts.APIKeyPathOverride); overridePath != "" {
		keyPath = overridePath
	}

	return keyPath
}

func resolveAPIKey(keyPath string) string {
	if data, err := os.ReadFile(keyPath); err == nil {
		if fileKey := strings.TrimSpace(string(data)); fileKey != "" {
			return fileKey
		}
	}

	return os.Getenv("OPENROUTER_API_KEY")
}

func resolveOCREngine(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case OCREngineTesseract:
		return OCREngineTesseract
	default:
		return OCREngineLLM
	}
}

func resolveTargetLanguage(opts LoadOptions, settings Settings) string {
	if override := strings.TrimSpace(opts.TargetLanguageOverride); override != "" {
		return override
	}
	if env := strings.TrimSpace(os.Getenv("TARGET_LANGUAGE")); env != "" {
		return env
	}
	if settings.DefaultTargetLang != "" {
		return settings.DefaultTargetLang
	}
	return DefaultTargetLanguage
}

func resolveHotkeys() map[messages.Command]string {
	hotkeys := make(map[messages.Command]string, len(DefaultHotkeys))
	for cmd, combo := range DefaultHotkeys {
		hotkeys[cmd] = getEnvWithDefault(hotkeyEnvVars[cmd], combo)
	}
	return hotkeys
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func envBool(key string) bool {
	return strings.ToLower(strings.TrimSpace(os.Getenv(key))) == "true"
}

func envPositiveInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envMillis(key string, def int) time.Duration {
	return time.Duration(envPositiveInt(key, def)) * time.Millisecond
}
