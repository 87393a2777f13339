package app

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const configFile = "config.yaml"

// Config holds runtime options for building the app. Values come from
// <home>/config.yaml overlaid with flag overrides; zero values select the
// defaults.
type Config struct {
	Home     string `yaml:"-"`         // config directory, e.g. $HOME/.g3zkp
	RelayURL string `yaml:"relay_url"` // relay base URL, e.g. http://127.0.0.1:8080
	PeerID   string `yaml:"peer_id"`   // name this node publishes bundles under

	CircuitDir string `yaml:"circuit_dir"` // circuit artifact layout root
	PoolTarget int    `yaml:"pool_target"` // one-time pre-key pool size

	ProofCacheCapacity    int `yaml:"proof_cache_capacity"`
	ProofCacheEvict       int `yaml:"proof_cache_evict"`
	ProofFreshnessSeconds int `yaml:"proof_freshness_seconds"`
	ProverWorkers         int `yaml:"prover_workers"`

	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	HTTP *http.Client `yaml:"-"` // optional; defaults to http.DefaultClient
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig(home string) Config {
	return Config{
		Home:       home,
		RelayURL:   "http://127.0.0.1:8080",
		CircuitDir: filepath.Join(home, "circuits"),
		LogLevel:   "info",
	}
}

// LoadConfig reads <home>/config.yaml over the defaults. A missing file is
// not an error.
func LoadConfig(home string) (Config, error) {
	cfg := DefaultConfig(home)

	data, err := os.ReadFile(filepath.Join(home, configFile))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, errors.Wrap(err, "app: read config")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "app: parse config")
	}
	cfg.Home = home
	if cfg.CircuitDir == "" {
		cfg.CircuitDir = filepath.Join(home, "circuits")
	}
	return cfg, nil
}

// SaveConfig writes the configuration to <home>/config.yaml.
func SaveConfig(cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "app: encode config")
	}
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return errors.Wrap(err, "app: create home")
	}
	return errors.Wrap(
		os.WriteFile(filepath.Join(cfg.Home, configFile), data, 0o600),
		"app: write config")
}
