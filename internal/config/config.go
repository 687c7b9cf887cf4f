// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// RelayKind selects the submission protocol a relay entry speaks.
type RelayKind string

const (
	RelayRPC       RelayKind = "rpc"
	RelayJito      RelayKind = "jito"
	RelayBloxroute RelayKind = "bloxroute"
	RelayNextBlock RelayKind = "nextblock"
)

// RelayConfig describes one transaction relay endpoint.
type RelayConfig struct {
	URL  string    `mapstructure:"url"`
	Auth string    `mapstructure:"auth"`
	Type RelayKind `mapstructure:"type"`
}

type Config struct {
	Relays           map[string]RelayConfig `mapstructure:"relays"`
	HTTPRPC          string                 `mapstructure:"http_rpc"`
	WSRPC            string                 `mapstructure:"ws_rpc"`
	PrivateKey       string                 `mapstructure:"private_key"`
	ComputeUnitPrice uint64                 `mapstructure:"compute_unit_price"`
	ComputeUnitLimit uint32                 `mapstructure:"compute_unit_limit"`
	Tip              float64                `mapstructure:"tip"`
	BuyAmount        float64                `mapstructure:"buy_amount"`
	MinAmountOut     float64                `mapstructure:"min_amount_out"`
	Simulate         bool                   `mapstructure:"simulate"`
	DebugLogging     bool                   `mapstructure:"debug_logging"`
	LogFile          string                 `mapstructure:"log_file"`
}

const DefaultLogFile = "sniper.log"

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("log_file", DefaultLogFile)
	v.SetDefault("simulate", false)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentVariables(v, &cfg); err != nil {
		return nil, err
	}

	applyRelayDefaults(&cfg)

	return &cfg, validateConfig(&cfg)
}

// applyRelayDefaults fills the relay kind for entries that omit `type:`.
func applyRelayDefaults(cfg *Config) {
	for name, relay := range cfg.Relays {
		if relay.Type == "" {
			relay.Type = RelayRPC
			cfg.Relays[name] = relay
		}
	}
}

func validateConfig(cfg *Config) error {
	if cfg.PrivateKey == "" {
		return errors.New("missing private_key in configuration")
	}
	if cfg.HTTPRPC == "" {
		return errors.New("missing http_rpc in configuration")
	}
	if err := validateURL(cfg.HTTPRPC, "http"); err != nil {
		return errors.New("invalid http_rpc URL protocol")
	}
	if cfg.WSRPC != "" {
		if err := validateURL(cfg.WSRPC, "ws"); err != nil {
			return errors.New("invalid ws_rpc URL protocol")
		}
	}
	if !cfg.Simulate && len(cfg.Relays) == 0 {
		return errors.New("relays is empty")
	}
	for name, relay := range cfg.Relays {
		if relay.URL == "" {
			return fmt.Errorf("relay %q has no url", name)
		}
		switch relay.Type {
		case RelayRPC, RelayJito, RelayBloxroute, RelayNextBlock:
		default:
			return fmt.Errorf("relay %q has unknown type %q", name, relay.Type)
		}
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.BuyAmount <= 0 {
		return errors.New("invalid buy_amount")
	}
	if cfg.MinAmountOut < 0 {
		return errors.New("invalid min_amount_out")
	}
	if cfg.Tip < 0 {
		return errors.New("invalid tip")
	}
	return nil
}

func validateURL(rawURL string, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) error {
	v.AutomaticEnv()
	v.SetEnvPrefix("SNIPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if key := v.GetString("PRIVATE_KEY"); key != "" {
		cfg.PrivateKey = key
	}
	if rpcURL := v.GetString("HTTP_RPC"); rpcURL != "" {
		cfg.HTTPRPC = rpcURL
	}
	if wsURL := v.GetString("WS_RPC"); wsURL != "" {
		cfg.WSRPC = wsURL
	}
	return nil
}

// LogFields returns the config as zap fields with secrets redacted.
// The private key and relay auth tokens must never reach the logs.
func (c *Config) LogFields() []zap.Field {
	relayNames := make([]string, 0, len(c.Relays))
	for name, relay := range c.Relays {
		relayNames = append(relayNames, fmt.Sprintf("%s(%s)", name, relay.Type))
	}
	return []zap.Field{
		zap.Strings("relays", relayNames),
		zap.String("http_rpc", c.HTTPRPC),
		zap.String("ws_rpc", c.WSRPC),
		zap.Uint64("compute_unit_price", c.ComputeUnitPrice),
		zap.Uint32("compute_unit_limit", c.ComputeUnitLimit),
		zap.Float64("tip", c.Tip),
		zap.Float64("buy_amount", c.BuyAmount),
		zap.Float64("min_amount_out", c.MinAmountOut),
		zap.Bool("simulate", c.Simulate),
	}
}
