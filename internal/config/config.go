package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/bitsctl/internal/logging"
	"github.com/danmuck/bitsctl/internal/protocol"
)

type Config struct {
	Decoder DecoderConfig
	Server  ServerConfig
	Log     LogConfig
}

type DecoderConfig struct {
	MaxDigits int
	MaxDepth  int
	MaxBatch  int
	Workers   int
}

type ServerConfig struct {
	Addr           string
	CorsOrigins    []string
	TrustedProxies []string
	// Token, when set, is required as a bearer token on decode routes.
	Token string
	// TLSCert and TLSKey enable HTTPS when both are set.
	TLSCert string
	TLSKey  string
}

type LogConfig struct {
	Level     string
	Timestamp bool
	NoColor   bool
	JSON      bool
}

type fileConfig struct {
	Decoder struct {
		MaxDigits int `toml:"max_digits"`
		MaxDepth  int `toml:"max_depth"`
		MaxBatch  int `toml:"max_batch"`
		Workers   int `toml:"workers"`
	} `toml:"decoder"`
	Server struct {
		Addr           string   `toml:"addr"`
		CorsOrigins    []string `toml:"cors_origins"`
		TrustedProxies []string `toml:"trusted_proxies"`
		Token          string   `toml:"token"`
		TLSCert        string   `toml:"tls_cert"`
		TLSKey         string   `toml:"tls_key"`
	} `toml:"server"`
	Log struct {
		Level     string `toml:"level"`
		Timestamp bool   `toml:"timestamp"`
		NoColor   bool   `toml:"no_color"`
		JSON      bool   `toml:"json"`
	} `toml:"log"`
}

func Default() Config {
	limits := protocol.DefaultLimits()
	return Config{
		Decoder: DecoderConfig{
			MaxDigits: limits.MaxDigits,
			MaxDepth:  limits.MaxDepth,
			MaxBatch:  limits.MaxBatch,
		},
		Server: ServerConfig{
			Addr:           ":9400",
			CorsOrigins:    []string{"http://localhost:3000"},
			TrustedProxies: []string{"127.0.0.1", "::1"},
		},
		Log: LogConfig{
			Level:     "info",
			Timestamp: true,
		},
	}
}

// Load reads path over the defaults. Only keys present in the file
// override a default; an empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("config parse failed (%s): unknown keys %s", path, strings.Join(keys, ", "))
	}

	if meta.IsDefined("decoder", "max_digits") {
		cfg.Decoder.MaxDigits = raw.Decoder.MaxDigits
	}
	if meta.IsDefined("decoder", "max_depth") {
		cfg.Decoder.MaxDepth = raw.Decoder.MaxDepth
	}
	if meta.IsDefined("decoder", "max_batch") {
		cfg.Decoder.MaxBatch = raw.Decoder.MaxBatch
	}
	if meta.IsDefined("decoder", "workers") {
		cfg.Decoder.Workers = raw.Decoder.Workers
	}

	if meta.IsDefined("server", "addr") {
		cfg.Server.Addr = strings.TrimSpace(raw.Server.Addr)
	}
	if meta.IsDefined("server", "cors_origins") {
		cfg.Server.CorsOrigins = normalizeList(raw.Server.CorsOrigins)
	}
	if meta.IsDefined("server", "trusted_proxies") {
		cfg.Server.TrustedProxies = normalizeList(raw.Server.TrustedProxies)
	}
	if meta.IsDefined("server", "token") {
		cfg.Server.Token = strings.TrimSpace(raw.Server.Token)
	}
	if meta.IsDefined("server", "tls_cert") {
		cfg.Server.TLSCert = strings.TrimSpace(raw.Server.TLSCert)
	}
	if meta.IsDefined("server", "tls_key") {
		cfg.Server.TLSKey = strings.TrimSpace(raw.Server.TLSKey)
	}

	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("log", "timestamp") {
		cfg.Log.Timestamp = raw.Log.Timestamp
	}
	if meta.IsDefined("log", "no_color") {
		cfg.Log.NoColor = raw.Log.NoColor
	}
	if meta.IsDefined("log", "json") {
		cfg.Log.JSON = raw.Log.JSON
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config invalid (%s): %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if cfg.Decoder.MaxDigits < 0 {
		return fmt.Errorf("decoder.max_digits must not be negative")
	}
	if cfg.Decoder.MaxDepth < 0 {
		return fmt.Errorf("decoder.max_depth must not be negative")
	}
	if cfg.Decoder.MaxBatch < 0 {
		return fmt.Errorf("decoder.max_batch must not be negative")
	}
	if cfg.Decoder.Workers < 0 {
		return fmt.Errorf("decoder.workers must not be negative")
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return fmt.Errorf("server.addr is required")
	}
	if (cfg.Server.TLSCert == "") != (cfg.Server.TLSKey == "") {
		return fmt.Errorf("server.tls_cert and server.tls_key must be set together")
	}
	if _, ok := logging.ParseLevel(cfg.Log.Level); !ok {
		return fmt.Errorf("log.level %q is not a known level", cfg.Log.Level)
	}
	return nil
}

// Limits converts the decoder section into decode limits.
func (c DecoderConfig) Limits() protocol.Limits {
	return protocol.Limits{MaxDigits: c.MaxDigits, MaxDepth: c.MaxDepth, MaxBatch: c.MaxBatch}
}

// Logging converts the log section into a logger config.
func (c LogConfig) Logging() logging.Config {
	cfg := logging.DefaultConfig(logging.ProfileRuntime)
	if lvl, ok := logging.ParseLevel(c.Level); ok {
		cfg.Level = lvl
	}
	cfg.Timestamp = c.Timestamp
	cfg.NoColor = c.NoColor
	cfg.JSON = c.JSON
	return cfg
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
