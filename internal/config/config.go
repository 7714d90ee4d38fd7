// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"

	"github.com/rovshanmuradov/salebook/internal/salebook"
)

type Config struct {
	RPCList          []string `mapstructure:"rpc_list"`
	ProgramID        string   `mapstructure:"program_id"`
	Concurrency      int      `mapstructure:"concurrency"`
	Retries          int      `mapstructure:"retries"`
	RetryDelayMs     int      `mapstructure:"retry_delay_ms"`
	RequestTimeoutMs int      `mapstructure:"request_timeout_ms"`
	DebugLogging     bool     `mapstructure:"debug_logging"`
	LogFile          string   `mapstructure:"log_file"`
	MetricsAddr      string   `mapstructure:"metrics_addr"` // пусто: метрики не публикуются
}

const (
	DefaultConcurrency      = 8
	DefaultRetries          = 3
	DefaultRetryDelayMs     = 500
	DefaultRequestTimeoutMs = 10000
	DefaultRPC              = "https://api.mainnet-beta.solana.com"

	envPrefix = "SALEBOOK"
)

// LoadConfig reads the config file at path. An empty path loads defaults and
// environment overrides only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"rpc_list":           []string{DefaultRPC},
		"program_id":         salebook.ProgramID.String(),
		"concurrency":        DefaultConcurrency,
		"retries":            DefaultRetries,
		"retry_delay_ms":     DefaultRetryDelayMs,
		"request_timeout_ms": DefaultRequestTimeoutMs,
		"debug_logging":      false,
		"log_file":           "",
		"metrics_addr":       "",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

// Program returns the configured registry program id.
func (c *Config) Program() solana.PublicKey {
	key, err := solana.PublicKeyFromBase58(c.ProgramID)
	if err != nil {
		return salebook.ProgramID
	}
	return key
}

func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMs) * time.Millisecond
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// EngineOptions maps the config onto sale engine options.
func (c *Config) EngineOptions() salebook.EngineOptions {
	return salebook.EngineOptions{
		Concurrency:  c.Concurrency,
		FetchRetries: c.Retries,
		RetryDelay:   c.RetryDelay(),
	}
}

func validateConfig(cfg *Config) error {
	if len(cfg.RPCList) == 0 {
		return errors.New("rpc_list is empty")
	}
	for _, rpcURL := range cfg.RPCList {
		if err := validateURLWithCache(rpcURL, "http"); err != nil {
			return fmt.Errorf("invalid RPC URL %q: %w", rpcURL, err)
		}
	}
	if _, err := solana.PublicKeyFromBase58(cfg.ProgramID); err != nil {
		return fmt.Errorf("invalid program_id: %w", err)
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.Concurrency <= 0 {
		return errors.New("invalid concurrency")
	}
	if cfg.Retries <= 0 {
		return errors.New("invalid retries count")
	}
	if cfg.RetryDelayMs < 0 {
		return errors.New("invalid retry_delay_ms")
	}
	if cfg.RequestTimeoutMs <= 0 {
		return errors.New("invalid request_timeout_ms")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) || parsed.Host == "" {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

// loadEnvironmentVariables applies overrides viper cannot unmarshal on its
// own, such as a comma separated RPC list.
func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	envRPCList := v.GetString("rpc_list")
	if envRPCList == "" {
		return
	}
	var cleanRPCs []string
	for _, rpc := range strings.Split(envRPCList, ",") {
		clean := strings.TrimSpace(rpc)
		if clean != "" {
			cleanRPCs = append(cleanRPCs, clean)
		}
	}
	if len(cleanRPCs) > 0 {
		cfg.RPCList = cleanRPCs
	}
}
