// Package config provides configuration loading for the call-flow server.
//
// Configuration is loaded with Viper: defaults first, then an optional YAML
// file, then environment variables with the NUMSPHERE_ prefix
// (NUMSPHERE_LISTEN_ADDR, NUMSPHERE_AUTH_TOKEN, ...).
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config is the root configuration for the voice server.
type Config struct {
	// ListenAddr is the address the HTTP server binds to.
	ListenAddr string `mapstructure:"listen_addr"`

	// PublicURL is the externally visible base URL (scheme and host) the
	// telephony provider reaches us at; required for signature validation.
	PublicURL string `mapstructure:"public_url"`

	// CallbackPath is the route serving inbound voice webhooks and gather
	// continuations.
	CallbackPath string `mapstructure:"callback_path"`

	// DefaultVoice is used when neither a block nor a flow names a voice.
	DefaultVoice string `mapstructure:"default_voice"`

	// AuthToken is the provider account token. When set together with
	// ValidateSignatures, inbound webhook signatures are verified.
	AuthToken string `mapstructure:"auth_token"`

	// ValidateSignatures toggles webhook signature verification.
	ValidateSignatures bool `mapstructure:"validate_signatures"`

	// FlowsDir seeds the in-memory store from *.json flow documents plus an
	// optional bindings.json number map.
	FlowsDir string `mapstructure:"flows_dir"`

	// LogLevel is a zerolog level name: trace, debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
}

// Default returns the configuration used when nothing is specified.
func Default() Config {
	return Config{
		ListenAddr:   ":8080",
		CallbackPath: "/voice",
		DefaultVoice: "alice",
		LogLevel:     "info",
	}
}

// Load reads configuration from the optional file path and the environment.
// An empty path searches for callflow.yaml in the working directory.
func Load(path string) (Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("listen_addr", def.ListenAddr)
	v.SetDefault("callback_path", def.CallbackPath)
	v.SetDefault("default_voice", def.DefaultVoice)
	v.SetDefault("log_level", def.LogLevel)

	v.SetEnvPrefix("NUMSPHERE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "read config %q", path)
		}
	} else {
		v.SetConfigName("callflow")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, errors.Wrap(err, "read config")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "unmarshal config")
	}
	return cfg, nil
}
