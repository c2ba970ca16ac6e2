package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port              string `yaml:"port"`
	ScratchDir        string `yaml:"scratch_dir"`
	MaxUploadMB       int    `yaml:"max_upload_mb"`
	MinNativeChars    int    `yaml:"min_native_chars"`
	RasterDPI         int    `yaml:"raster_dpi"`
	PdftoppmPath      string `yaml:"pdftoppm_path"`
	OCREngine         string `yaml:"ocr_engine"`
	TesseractPath     string `yaml:"tesseract_path"`
	ValidateResponses bool   `yaml:"validate_responses"`
	LogLevel          string `yaml:"log_level"`
	LogFormat         string `yaml:"log_format"`
}

const (
	EngineGosseract = "gosseract"
	EngineCLI       = "cli"
)

func Default() Config {
	return Config{
		Port:              "8000",
		ScratchDir:        os.TempDir(),
		MaxUploadMB:       100,
		MinNativeChars:    50,
		RasterDPI:         200,
		PdftoppmPath:      "pdftoppm",
		OCREngine:         EngineGosseract,
		TesseractPath:     "tesseract",
		ValidateResponses: true,
		LogLevel:          "info",
		LogFormat:         "text",
	}
}

// Load layers defaults, the optional CONFIG_FILE yaml and the environment,
// in that order. A .env file in the working directory is read if present.
func Load() (Config, error) {
	_ = godotenv.Load()
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, eris.Wrapf(err, "read config file %s", path)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, eris.Wrapf(err, "parse config file %s", path)
		}
	}

	cfg.Port = getenv("PORT", cfg.Port)
	cfg.ScratchDir = getenv("SCRATCH_DIR", cfg.ScratchDir)
	cfg.PdftoppmPath = getenv("PDFTOPPM_PATH", cfg.PdftoppmPath)
	cfg.OCREngine = strings.ToLower(getenv("OCR_ENGINE", cfg.OCREngine))
	cfg.TesseractPath = getenv("TESSERACT_PATH", cfg.TesseractPath)
	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = strings.ToLower(getenv("LOG_FORMAT", cfg.LogFormat))

	var err error
	if cfg.MaxUploadMB, err = getenvInt("MAX_UPLOAD_MB", cfg.MaxUploadMB); err != nil {
		return cfg, err
	}
	if cfg.MinNativeChars, err = getenvInt("MIN_NATIVE_CHARS", cfg.MinNativeChars); err != nil {
		return cfg, err
	}
	if cfg.RasterDPI, err = getenvInt("RASTER_DPI", cfg.RasterDPI); err != nil {
		return cfg, err
	}
	if v := os.Getenv("VALIDATE_RESPONSES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, eris.Wrapf(err, "VALIDATE_RESPONSES=%q", v)
		}
		cfg.ValidateResponses = b
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Port == "" {
		return eris.New("port must not be empty")
	}
	if c.MaxUploadMB <= 0 {
		return eris.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB)
	}
	if c.MinNativeChars <= 0 {
		return eris.Errorf("min_native_chars must be positive, got %d", c.MinNativeChars)
	}
	if c.RasterDPI <= 0 {
		return eris.Errorf("raster_dpi must be positive, got %d", c.RasterDPI)
	}
	if c.OCREngine != EngineGosseract && c.OCREngine != EngineCLI {
		return eris.Errorf("ocr_engine must be %q or %q, got %q", EngineGosseract, EngineCLI, c.OCREngine)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return eris.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return lvl, eris.Wrapf(err, "log_level %q", c.LogLevel)
	}
	return lvl, nil
}

// Logger builds the process logger described by c.
func (c Config) Logger() *slog.Logger {
	lvl, _ := c.Level()
	opts := &slog.HandlerOptions{Level: lvl}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, eris.Wrapf(err, "%s=%q", k, v)
	}
	return n, nil
}
