// Package config loads the reader and tag settings from a TOML or YAML file.
// Passwords are never read from files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/gregLibert/ntag-pwd/pkg/ntag"
)

const (
	TransportPCSC   = "pcsc"
	TransportSerial = "serial"
)

// Actions lists the operations the command line accepts.
var Actions = []string{"auto", "check", "auth", "set", "unset", "info"}

// Config holds the runtime settings.
type Config struct {
	Transport       string
	Reader          string // substring of the PC/SC reader name
	SerialPort      string
	PresenceTimeout time.Duration
	Profile         string
	LogLevel        string
	Action          string
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Transport:       TransportPCSC,
		Reader:          "ACR122",
		PresenceTimeout: 5 * time.Second,
		Profile:         ntag.NTAG213.Name,
		LogLevel:        zerolog.InfoLevel.String(),
		Action:          "auto",
	}
}

type fileConfig struct {
	Transport       string `toml:"transport" yaml:"transport"`
	Reader          string `toml:"reader" yaml:"reader"`
	SerialPort      string `toml:"serial_port" yaml:"serial_port"`
	PresenceTimeout string `toml:"presence_timeout" yaml:"presence_timeout"`
	Profile         string `toml:"profile" yaml:"profile"`
	LogLevel        string `toml:"log_level" yaml:"log_level"`
	Action          string `toml:"action" yaml:"action"`
}

// Load reads path over the defaults. The decoder is chosen by extension:
// .toml, .yaml or .yml.
func Load(path string) (Config, error) {
	var (
		raw     fileConfig
		defined func(key string) bool
		err     error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		raw, defined, err = decodeTOML(path)
	case ".yaml", ".yml":
		raw, defined, err = decodeYAML(path)
	default:
		return Config{}, fmt.Errorf("load config %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}

	return apply(Default(), raw, defined)
}

func decodeTOML(path string) (fileConfig, func(string) bool, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fileConfig{}, nil, err
	}
	return raw, func(key string) bool { return meta.IsDefined(key) }, nil
}

func decodeYAML(path string) (fileConfig, func(string) bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, nil, err
	}

	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fileConfig{}, nil, err
	}
	var keys map[string]yaml.Node
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return fileConfig{}, nil, err
	}
	return raw, func(key string) bool {
		_, ok := keys[key]
		return ok
	}, nil
}

func apply(cfg Config, raw fileConfig, defined func(string) bool) (Config, error) {
	if defined("password") {
		return Config{}, fmt.Errorf("passwords are not read from configuration files")
	}

	if defined("transport") {
		cfg.Transport = strings.ToLower(strings.TrimSpace(raw.Transport))
	}

	if defined("reader") {
		cfg.Reader = strings.TrimSpace(raw.Reader)
	}

	if defined("serial_port") {
		cfg.SerialPort = strings.TrimSpace(raw.SerialPort)
	}

	if defined("presence_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.PresenceTimeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse presence_timeout: %w", err)
		}
		cfg.PresenceTimeout = d
	}

	if defined("profile") {
		cfg.Profile = strings.TrimSpace(raw.Profile)
	}

	if defined("log_level") {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	}

	if defined("action") {
		cfg.Action = strings.ToLower(strings.TrimSpace(raw.Action))
	}

	return cfg, nil
}

// Validate checks the settings before any device is opened.
func (c Config) Validate() error {
	switch c.Transport {
	case TransportPCSC:
	case TransportSerial:
		if c.SerialPort == "" {
			return fmt.Errorf("transport %q needs serial_port", c.Transport)
		}
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}

	if c.PresenceTimeout <= 0 {
		return fmt.Errorf("presence_timeout must be positive, got %s", c.PresenceTimeout)
	}

	if _, err := ntag.ProfileByName(c.Profile); err != nil {
		return err
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}

	if !slices.Contains(Actions, c.Action) {
		return fmt.Errorf("unknown action %q (want one of %s)", c.Action, strings.Join(Actions, ", "))
	}
	return nil
}

// TagProfile returns the tag profile named by the settings.
func (c Config) TagProfile() (ntag.Profile, error) {
	return ntag.ProfileByName(c.Profile)
}
