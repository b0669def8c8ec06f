package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds application settings loaded from the optional TOML
// config file.
type Config struct {
	CorpusDir     string  `toml:"corpus_dir"`
	AnnotationDir string  `toml:"annotation_dir"`
	TrainFraction float64 `toml:"train_fraction"`
	DefaultLabel  string  `toml:"default_label"`
	Annotator     string  `toml:"annotator"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		TrainFraction: 0.8,
		DefaultLabel:  "miniature",
	}
}

// ConfigPath returns the default config file location,
// ~/.config/mini-annotator/config.toml.
func ConfigPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "mini-annotator", "config.toml")
}

// LoadConfig reads the config file at path, falling back to defaults
// when it does not exist. Settings present in the file override the
// defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if cfg.TrainFraction <= 0 || cfg.TrainFraction >= 1 {
		return cfg, fmt.Errorf("config train_fraction %.2f outside (0,1)", cfg.TrainFraction)
	}
	if cfg.DefaultLabel == "" {
		cfg.DefaultLabel = "miniature"
	}
	return cfg, nil
}
