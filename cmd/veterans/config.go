package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	configDirName  = ".veterans-cli"
	configFileName = "config.yaml"
	defaultAPIURL  = "http://localhost:8000"
)

var errNotConfigured = errors.New("not configured, run 'veterans configure --api-key <key>' first")

// cliConfig is the contents of ~/.veterans-cli/config.yaml.
type cliConfig struct {
	APIKey string `yaml:"api_key"`
	APIURL string `yaml:"api_url"`
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}
	return filepath.Join(home, configDirName, configFileName), nil
}

// loadConfig returns errNotConfigured when no API key has been saved.
func loadConfig() (*cliConfig, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errNotConfigured
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg cliConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.APIKey == "" {
		return nil, errNotConfigured
	}
	if cfg.APIURL == "" {
		cfg.APIURL = defaultAPIURL
	}
	return &cfg, nil
}

// saveConfig writes the config readable only by the owner; it holds an API key.
func saveConfig(cfg *cliConfig) (string, error) {
	path, err := configPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, 0o600); err != nil {
		return "", fmt.Errorf("securing config: %w", err)
	}
	return path, nil
}
