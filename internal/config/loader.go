package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix = "MAILBRIDGE"

	// envConfigFile names a config file to use instead of the default lookup.
	envConfigFile = envPrefix + "_CONFIG"
	// envConfigDir names a directory holding mailbridge.yaml.
	envConfigDir = envPrefix + "_CONFIG_DEFAULT_PATH"

	defaultConfigName = "mailbridge.yaml"
)

// Load resolves configuration and returns it with the config file path used.
// Precedence: defaults < config file < MAILBRIDGE_* env vars. Callers apply
// flag overrides on top with UpdateFrom. A .env file in the working directory
// is loaded into the environment first, and a missing config file is created
// from the defaults.
func Load(logger *zerolog.Logger, explicitPath string) (Config, string, error) {
	if logger == nil {
		logger = nopLogger()
	}
	_ = godotenv.Load()

	cfg := Default()
	path := resolveConfigPath(explicitPath)

	v := viper.New()
	v.SetConfigType("yaml")
	if err := setDefaults(v, cfg); err != nil {
		return cfg, path, err
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	created, err := ensureConfigFile(path, cfg)
	switch {
	case err != nil:
		logger.Warn().Err(err).Str("path", path).Msg("config file unavailable, using defaults")
	case created:
		logger.Info().Str("path", path).Msg("created default config")
	}

	if err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, path, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, path, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, path, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, path, nil
}

// setDefaults registers every key of cfg so env vars can override keys the
// config file leaves out.
func setDefaults(v *viper.Viper, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode defaults: %w", err)
	}
	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("decode defaults: %w", err)
	}
	for key, value := range values {
		v.SetDefault(key, value)
	}
	return nil
}

func resolveConfigPath(explicitPath string) string {
	switch {
	case explicitPath != "":
		return explicitPath
	case os.Getenv(envConfigFile) != "":
		return os.Getenv(envConfigFile)
	case os.Getenv(envConfigDir) != "":
		return filepath.Join(os.Getenv(envConfigDir), defaultConfigName)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(cwd, defaultConfigName)
}

// ensureConfigFile writes cfg to path unless a file already exists there and
// reports whether it did.
func ensureConfigFile(path string, cfg Config) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return false, err
	}
	return true, nil
}

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}
