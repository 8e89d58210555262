/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package fixedwindow

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/acronis/go-appkit/config"
)

const cfgDefaultKeyPrefix = "rateLimit"

const (
	cfgKeyReadLimit  = "readLimit"
	cfgKeyWriteLimit = "writeLimit"
	cfgKeyWindow     = "window"
)

// Default budget values.
const (
	DefaultReadLimit  = 60
	DefaultWriteLimit = 20
	DefaultWindow     = time.Minute
)

// Config represents a set of configuration parameters for the fixed-window rate limiter.
// Configuration can be loaded in different formats (YAML, JSON) using config.Loader, viper,
// or with json.Unmarshal/yaml.Unmarshal functions directly.
type Config struct {
	// ReadLimit is the maximum number of read acquisitions allowed per window.
	ReadLimit int `mapstructure:"readLimit" yaml:"readLimit" json:"readLimit"`

	// WriteLimit is the maximum number of write acquisitions allowed per window.
	WriteLimit int `mapstructure:"writeLimit" yaml:"writeLimit" json:"writeLimit"`

	// Window is the length of the budget window.
	Window config.TimeDuration `mapstructure:"window" yaml:"window" json:"window"`

	keyPrefix string
}

var _ config.Config = (*Config)(nil)
var _ config.KeyPrefixProvider = (*Config)(nil)

// ConfigOption is a type for functional options for the Config.
type ConfigOption func(*configOptions)

type configOptions struct {
	keyPrefix string
}

// WithKeyPrefix returns a ConfigOption that sets a key prefix for parsing configuration parameters.
// This prefix will be used by config.Loader.
func WithKeyPrefix(keyPrefix string) ConfigOption {
	return func(o *configOptions) {
		o.keyPrefix = keyPrefix
	}
}

// NewConfig creates a new instance of the Config.
func NewConfig(options ...ConfigOption) *Config {
	opts := configOptions{keyPrefix: cfgDefaultKeyPrefix}
	for _, opt := range options {
		opt(&opts)
	}
	return &Config{keyPrefix: opts.keyPrefix}
}

// NewDefaultConfig creates a new instance of the Config with default values.
func NewDefaultConfig(options ...ConfigOption) *Config {
	opts := configOptions{keyPrefix: cfgDefaultKeyPrefix}
	for _, opt := range options {
		opt(&opts)
	}
	return &Config{
		keyPrefix:  opts.keyPrefix,
		ReadLimit:  DefaultReadLimit,
		WriteLimit: DefaultWriteLimit,
		Window:     config.TimeDuration(DefaultWindow),
	}
}

// KeyPrefix returns a key prefix with which all configuration parameters should be presented.
// Implements config.KeyPrefixProvider interface.
func (c *Config) KeyPrefix() string {
	if c.keyPrefix == "" {
		return cfgDefaultKeyPrefix
	}
	return c.keyPrefix
}

// SetProviderDefaults sets default configuration values for the limiter in config.DataProvider.
// Implements config.Config interface.
func (c *Config) SetProviderDefaults(dp config.DataProvider) {
	dp.SetDefault(cfgKeyReadLimit, DefaultReadLimit)
	dp.SetDefault(cfgKeyWriteLimit, DefaultWriteLimit)
	dp.SetDefault(cfgKeyWindow, DefaultWindow.String())
}

// Set sets limiter configuration values from config.DataProvider.
// Implements config.Config interface.
func (c *Config) Set(dp config.DataProvider) error {
	if err := dp.Unmarshal(c, func(decoderConfig *mapstructure.DecoderConfig) {
		decoderConfig.DecodeHook = MapstructureDecodeHook()
	}); err != nil {
		return err
	}
	return c.Validate()
}

// Validate validates configuration.
func (c *Config) Validate() error {
	if c.ReadLimit < 1 {
		return fmt.Errorf("read limit should be >= 1, got %d", c.ReadLimit)
	}
	if c.WriteLimit < 1 {
		return fmt.Errorf("write limit should be >= 1, got %d", c.WriteLimit)
	}
	if c.Window <= 0 {
		return fmt.Errorf("window should be positive, got %s", time.Duration(c.Window))
	}
	return nil
}

// MapstructureDecodeHook returns a DecodeHookFunc for mapstructure to handle custom types.
func MapstructureDecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	)
}
