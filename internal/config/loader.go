package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"weni/pkg/logging"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir
var osGetwd = os.Getwd
var osLookupEnv = os.LookupEnv

const (
	userConfigDir    = ".config/weni"
	projectConfigDir = ".weni"
	configFileName   = "config.yaml"

	subsystem = "Config"
)

// envOverrides maps environment variables to the keys they override.
var envOverrides = map[string]string{
	"WENI_TOKEN":        KeyToken,
	"WENI_PROJECT_UUID": KeyProjectUUID,
}

// ErrUnknownKey is returned by Store.Set for keys not listed in Keys.
var ErrUnknownKey = errors.New("unknown configuration key")

// LoadConfig loads the weni configuration by layering default, user,
// project and environment settings.
func LoadConfig() (Config, error) {
	// 1. Start with the default configuration
	config := GetDefaultConfig()

	// 2. User configuration, also the file the CLI writes to
	userConfigPath, err := getUserConfigPath()
	if err != nil {
		logging.Warn(subsystem, "Could not determine user config path: %v", err)
	} else {
		userConfig, err := loadConfigFromFile(userConfigPath)
		if err != nil {
			return Config{}, fmt.Errorf("error loading user config from %s: %w", userConfigPath, err)
		}
		config = mergeConfigs(config, userConfig)
	}

	// 3. Project configuration in the working directory
	projectConfigPath, err := getProjectConfigPath()
	if err != nil {
		logging.Warn(subsystem, "Could not determine project config path: %v", err)
	} else {
		projectConfig, err := loadConfigFromFile(projectConfigPath)
		if err != nil {
			return Config{}, fmt.Errorf("error loading project config from %s: %w", projectConfigPath, err)
		}
		config = mergeConfigs(config, projectConfig)
	}

	// 4. Environment
	for name, key := range envOverrides {
		if value, ok := osLookupEnv(name); ok && value != "" {
			*config.field(key) = value
		}
	}

	return config, nil
}

var getUserConfigPath = func() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir, configFileName), nil
}

var getProjectConfigPath = func() (string, error) {
	wd, err := osGetwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, projectConfigDir, configFileName), nil
}

// loadConfigFromFile loads a Config from a YAML file. A missing file
// yields an empty Config.
func loadConfigFromFile(filePath string) (Config, error) {
	var config Config
	data, err := os.ReadFile(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, err
	}
	return config, nil
}

// mergeConfigs merges 'overlay' config into 'base' config. Empty values in
// overlay leave base untouched.
func mergeConfigs(base, overlay Config) Config {
	merged := base
	for _, key := range Keys() {
		if value := overlay.Get(key); value != "" {
			*merged.field(key) = value
		}
	}
	return merged
}

// GetUserConfigDir returns the user configuration directory path
func GetUserConfigDir() (string, error) {
	homeDir, err := osUserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, userConfigDir), nil
}

// Store reads the merged configuration and persists changes to the user
// configuration file.
type Store struct {
	path      string
	persisted Config
	effective Config
	load      func() (Config, error)
}

// OpenStore loads the configuration layers and the user file.
func OpenStore() (*Store, error) {
	path, err := getUserConfigPath()
	if err != nil {
		return nil, fmt.Errorf("could not determine user config path: %w", err)
	}
	persisted, err := loadConfigFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("error loading user config from %s: %w", path, err)
	}
	return newStore(path, persisted, LoadConfig)
}

// OpenStoreAt opens a store backed only by the file at path, on top of the
// defaults. Project files and the environment are ignored.
func OpenStoreAt(path string) (*Store, error) {
	persisted, err := loadConfigFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("error loading config from %s: %w", path, err)
	}
	return newStore(path, persisted, func() (Config, error) {
		overlay, err := loadConfigFromFile(path)
		if err != nil {
			return Config{}, err
		}
		return mergeConfigs(GetDefaultConfig(), overlay), nil
	})
}

func newStore(path string, persisted Config, load func() (Config, error)) (*Store, error) {
	effective, err := load()
	if err != nil {
		return nil, err
	}
	return &Store{path: path, persisted: persisted, effective: effective, load: load}, nil
}

// Path returns the file Set writes to.
func (s *Store) Path() string {
	return s.path
}

// Config returns the merged configuration.
func (s *Store) Config() Config {
	return s.effective
}

// Get returns the effective value of key.
func (s *Store) Get(key string) string {
	return s.effective.Get(key)
}

// Set stores value under key in the user configuration file. The new value
// becomes effective unless a project file or environment variable
// overrides it.
func (s *Store) Set(key, value string) error {
	field := s.persisted.field(key)
	if field == nil {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	*field = value

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(&s.persisted)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing config to %s: %w", s.path, err)
	}
	logging.Debug(subsystem, "Stored %s in %s", key, s.path)

	effective, err := s.load()
	if err != nil {
		return err
	}
	s.effective = effective
	return nil
}
