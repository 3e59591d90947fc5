package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/leonardotrapani/captrans/internal/logging"
)

var ErrConfigNotFound = errors.New("config not found")

// DotEnvFile is loaded from the working directory before credentials are
// resolved. Variables already set in the environment win.
const DotEnvFile = ".env"

const fileHeader = `# captrans configuration
# Written by "captrans configure". Changes take effect after a restart.

`

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	appDir := filepath.Join(configDir, "captrans")
	if err := os.MkdirAll(appDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(appDir, "config.toml"), nil
}

// LoadFrom decodes path on top of DefaultConfig, so omitted keys keep their
// default values.
func LoadFrom(configPath string) (*Config, error) {
	logger := logging.WithComponent("config")
	loadDotEnv()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w at %s: run captrans configure", ErrConfigNotFound, configPath)
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", configPath, err)
	}

	logger.Info().Str("path", configPath).Msg("Loading configuration")
	config := DefaultConfig()
	meta, err := toml.DecodeFile(configPath, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		logger.Warn().Str("path", configPath).Interface("keys", undecoded).Msg("Ignoring unknown config keys")
	}

	if config.Providers == nil {
		config.Providers = make(map[string]ProviderConfig)
	}

	logger.Debug().Msg("Configuration loaded")
	return config, nil
}

func loadDotEnv() {
	err := godotenv.Load(DotEnvFile)
	if err == nil {
		logger := logging.WithComponent("config")
		logger.Debug().Str("file", DotEnvFile).Msg("Loaded environment file")
	}
}

// SaveTo writes config as TOML, replacing the file atomically.
func SaveTo(config *Config, configPath string) error {
	var buf bytes.Buffer
	buf.WriteString(fileHeader)
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp := configPath + ".tmp"
	// provider credentials live in this file
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, configPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}
