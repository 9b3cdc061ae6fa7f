// Package config loads the chaincode launcher settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds launcher configuration.
type Config struct {
	Chaincode ChaincodeConfig `mapstructure:"chaincode"`
	Log       LogConfig       `mapstructure:"log"`
}

// ChaincodeConfig selects between peer-launched mode and chaincode-as-a-service.
type ChaincodeConfig struct {
	ID      string    `mapstructure:"id"`
	Address string    `mapstructure:"address"` // Empty means the peer launches the chaincode
	TLS     TLSConfig `mapstructure:"tls"`
}

// TLSConfig holds PEM file paths for the external chaincode server.
type TLSConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Cert         string `mapstructure:"cert"`
	Key          string `mapstructure:"key"`
	ClientCACert string `mapstructure:"clientcacert"`
}

// LogConfig holds the flogging spec, e.g. "info" or "croptrace.cropcontract=debug:info".
type LogConfig struct {
	Spec string `mapstructure:"spec"`
}

// ExternalService reports whether the chaincode should run its own gRPC server.
func (c Config) ExternalService() bool {
	return strings.TrimSpace(c.Chaincode.Address) != ""
}

// Load reads configuration from file and env. Env var overrides use prefix CROPTRACE_; the
// standard CHAINCODE_ID and CHAINCODE_SERVER_ADDRESS variables are honoured as well.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("chaincode.id", "")
	v.SetDefault("chaincode.address", "")
	v.SetDefault("chaincode.tls.enabled", false)
	v.SetDefault("chaincode.tls.cert", "")
	v.SetDefault("chaincode.tls.key", "")
	v.SetDefault("chaincode.tls.clientcacert", "")
	v.SetDefault("log.spec", "info")

	v.SetEnvPrefix("CROPTRACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("chaincode.id", "CROPTRACE_CHAINCODE_ID", "CHAINCODE_ID"); err != nil {
		return Config{}, fmt.Errorf("bind chaincode.id: %w", err)
	}
	if err := v.BindEnv("chaincode.address", "CROPTRACE_CHAINCODE_ADDRESS", "CHAINCODE_SERVER_ADDRESS"); err != nil {
		return Config{}, fmt.Errorf("bind chaincode.address: %w", err)
	}

	if cfgPath := os.Getenv("CROPTRACE_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", cfgPath, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks combinations that cannot start a chaincode.
func (c Config) Validate() error {
	if c.ExternalService() && strings.TrimSpace(c.Chaincode.ID) == "" {
		return errors.New("chaincode.id is required when chaincode.address is set")
	}
	if c.Chaincode.TLS.Enabled {
		if !c.ExternalService() {
			return errors.New("chaincode.tls.enabled requires chaincode.address")
		}
		if c.Chaincode.TLS.Cert == "" || c.Chaincode.TLS.Key == "" {
			return errors.New("chaincode.tls.cert and chaincode.tls.key are required when TLS is enabled")
		}
	}
	return nil
}
