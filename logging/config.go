package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config controls the sink built by New.
type Config struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	File    string `yaml:"file"`
}

// DefaultConfig is the configuration the package starts with: JSON on
// stdout at info level.
func DefaultConfig() Config {
	return Config{Enabled: true, Level: "info"}
}

// New builds a zerolog logger from cfg. Unparseable levels fall back to
// info. Disabled configs discard everything; a file path selects an
// append-mode file sink (stderr if it cannot be opened); format "console"
// selects the human-readable console writer.
func New(cfg Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var output io.Writer = os.Stdout
	switch {
	case !cfg.Enabled:
		output = io.Discard
	case cfg.File != "":
		f, ferr := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if ferr != nil {
			output = os.Stderr
		} else {
			output = f
		}
	case cfg.Format == "console":
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// LoadConfig reads a YAML file over the defaults. The defaults are
// returned alongside any read or parse error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), err
	}
	return cfg, nil
}
