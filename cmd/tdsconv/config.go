package main

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	yaml "gopkg.in/yaml.v3"
)

// Config holds defaults for the command line flags.
type Config struct {
	From          string `yaml:"from"`
	To            string `yaml:"to"`
	Strict        bool   `yaml:"strict"`
	MaxOutputSize int    `yaml:"max-output-size"`
	LogLevel      string `yaml:"log-level"`
	Backend       string `yaml:"backend"`
}

func defaultConfig() Config {
	return Config{
		From:     "utf-8+latin-1",
		To:       "utf-8",
		LogLevel: "warn",
		Backend:  "go",
	}
}

func getDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".tdsconv", "config.yaml"), nil
}

// ReadConfig loads the file at path over the defaults. An empty path means
// the default location, which may be missing.
func ReadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = getDefaultConfigPath(); err != nil {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	if verbose {
		level = "debug"
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
