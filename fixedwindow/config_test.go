/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package fixedwindow

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/acronis/go-appkit/config"
)

type AppConfig struct {
	RateLimit *Config `mapstructure:"rateLimit" yaml:"rateLimit" json:"rateLimit"`
}

func TestConfig(t *testing.T) {
	tests := []struct {
		name        string
		cfgDataType config.DataType
		cfgData     string
		expectedCfg func() *Config
	}{
		{
			name:        "yaml config",
			cfgDataType: config.DataTypeYAML,
			cfgData: `
rateLimit:
  readLimit: 100
  writeLimit: 10
  window: 30s
`,
			expectedCfg: func() *Config {
				cfg := NewDefaultConfig()
				cfg.ReadLimit = 100
				cfg.WriteLimit = 10
				cfg.Window = config.TimeDuration(30 * time.Second)
				return cfg
			},
		},
		{
			name:        "json config",
			cfgDataType: config.DataTypeJSON,
			cfgData: `
{
	"rateLimit": {
		"readLimit": 100,
		"writeLimit": 10,
		"window": "30s"
	}
}`,
			expectedCfg: func() *Config {
				cfg := NewDefaultConfig()
				cfg.ReadLimit = 100
				cfg.WriteLimit = 10
				cfg.Window = config.TimeDuration(30 * time.Second)
				return cfg
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Load config using config.Loader.
			appCfg := AppConfig{RateLimit: NewDefaultConfig()}
			expectedAppCfg := AppConfig{RateLimit: tt.expectedCfg()}
			cfgLoader := config.NewLoader(config.NewViperAdapter())
			err := cfgLoader.LoadFromReader(bytes.NewBuffer([]byte(tt.cfgData)), tt.cfgDataType, appCfg.RateLimit)
			require.NoError(t, err)
			require.Equal(t, expectedAppCfg, appCfg)

			// Load config using viper unmarshal.
			appCfg = AppConfig{RateLimit: NewDefaultConfig()}
			expectedAppCfg = AppConfig{RateLimit: tt.expectedCfg()}
			vpr := viper.New()
			vpr.SetConfigType(string(tt.cfgDataType))
			require.NoError(t, vpr.ReadConfig(bytes.NewBuffer([]byte(tt.cfgData))))
			require.NoError(t, vpr.Unmarshal(&appCfg, func(decoderConfig *mapstructure.DecoderConfig) {
				decoderConfig.DecodeHook = MapstructureDecodeHook()
			}))
			require.Equal(t, expectedAppCfg, appCfg)

			// Load config using yaml/json unmarshal.
			appCfg = AppConfig{RateLimit: NewDefaultConfig()}
			expectedAppCfg = AppConfig{RateLimit: tt.expectedCfg()}
			switch tt.cfgDataType {
			case config.DataTypeYAML:
				require.NoError(t, yaml.Unmarshal([]byte(tt.cfgData), &appCfg))
			case config.DataTypeJSON:
				require.NoError(t, json.Unmarshal([]byte(tt.cfgData), &appCfg))
			default:
				t.Fatalf("unsupported config data type: %s", tt.cfgDataType)
			}
			require.Equal(t, expectedAppCfg, appCfg)
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	cfgLoader := config.NewLoader(config.NewViperAdapter())
	err := cfgLoader.LoadFromReader(bytes.NewBuffer(nil), config.DataTypeYAML, cfg)
	require.NoError(t, err)
	require.Equal(t, DefaultReadLimit, cfg.ReadLimit)
	require.Equal(t, DefaultWriteLimit, cfg.WriteLimit)
	require.Equal(t, config.TimeDuration(DefaultWindow), cfg.Window)
}

func TestConfigWithKeyPrefix(t *testing.T) {
	cfgData := `
limits:
  readLimit: 7
  writeLimit: 3
  window: 5s
`
	cfg := NewConfig(WithKeyPrefix("limits"))
	cfgLoader := config.NewLoader(config.NewViperAdapter())
	err := cfgLoader.LoadFromReader(bytes.NewBuffer([]byte(cfgData)), config.DataTypeYAML, cfg)
	require.NoError(t, err)
	require.Equal(t, 7, cfg.ReadLimit)
	require.Equal(t, 3, cfg.WriteLimit)
	require.Equal(t, config.TimeDuration(5*time.Second), cfg.Window)
}

func TestConfigValidationErrors(t *testing.T) {
	tests := []struct {
		name       string
		cfgData    string
		wantErrStr string
	}{
		{
			name: "zero read limit",
			cfgData: `
rateLimit:
  readLimit: 0
  writeLimit: 10
  window: 30s
`,
			wantErrStr: "read limit should be >= 1, got 0",
		},
		{
			name: "negative write limit",
			cfgData: `
rateLimit:
  readLimit: 10
  writeLimit: -5
  window: 30s
`,
			wantErrStr: "write limit should be >= 1, got -5",
		},
		{
			name: "zero window",
			cfgData: `
rateLimit:
  readLimit: 10
  writeLimit: 10
  window: 0s
`,
			wantErrStr: "window should be positive, got 0s",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			cfgLoader := config.NewLoader(config.NewViperAdapter())
			err := cfgLoader.LoadFromReader(bytes.NewBuffer([]byte(tt.cfgData)), config.DataTypeYAML, cfg)
			require.EqualError(t, err, tt.wantErrStr)
		})
	}
}
