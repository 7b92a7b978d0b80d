package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const EnvConfigPath = "PNGCTL_CONFIG"

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Fetch  FetchConfig
	Output OutputConfig
	Server ServerConfig
	Log    LogConfig
}

type FetchConfig struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
}

type OutputConfig struct {
	OverwriteInput bool
	FileMode       os.FileMode
}

type ServerConfig struct {
	Addr         string
	CorsOrigins  []string
	MaxBodyBytes int64
	// AuthToken, when set, is required as a bearer token on /v1 routes.
	AuthToken string
}

type LogConfig struct {
	Level string
}

type fileConfig struct {
	Fetch struct {
		Timeout   string `toml:"timeout"`
		UserAgent string `toml:"user_agent"`
		MaxBytes  int64  `toml:"max_bytes"`
	} `toml:"fetch"`
	Output struct {
		OverwriteInput bool   `toml:"overwrite_input"`
		FileMode       string `toml:"file_mode"`
	} `toml:"output"`
	Server struct {
		Addr         string   `toml:"addr"`
		CorsOrigins  []string `toml:"cors_origins"`
		MaxBodyBytes int64    `toml:"max_body_bytes"`
		AuthToken    string   `toml:"auth_token"`
	} `toml:"server"`
	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`
}

func Default() Config {
	return Config{
		Fetch: FetchConfig{
			Timeout:   30 * time.Second,
			UserAgent: "pngctl/0.1",
			MaxBytes:  64 * 1024 * 1024,
		},
		Output: OutputConfig{
			OverwriteInput: true,
			FileMode:       0o644,
		},
		Server: ServerConfig{
			Addr:         ":9300",
			CorsOrigins:  []string{"http://localhost:3000"},
			MaxBodyBytes: 16 * 1024 * 1024,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Resolve loads path when given, else the file named by PNGCTL_CONFIG, else
// returns defaults. Only an explicitly named file must exist.
func Resolve(path string) (Config, error) {
	if p := strings.TrimSpace(path); p != "" {
		return Load(p)
	}
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Load(p)
	}
	return Default(), nil
}

// Load decodes a TOML file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}

	if meta.IsDefined("fetch", "timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Fetch.Timeout))
		if err != nil {
			return Config{}, fmt.Errorf("parse fetch.timeout: %w", err)
		}
		cfg.Fetch.Timeout = d
	}
	if meta.IsDefined("fetch", "user_agent") {
		cfg.Fetch.UserAgent = strings.TrimSpace(raw.Fetch.UserAgent)
	}
	if meta.IsDefined("fetch", "max_bytes") {
		cfg.Fetch.MaxBytes = raw.Fetch.MaxBytes
	}

	if meta.IsDefined("output", "overwrite_input") {
		cfg.Output.OverwriteInput = raw.Output.OverwriteInput
	}
	if meta.IsDefined("output", "file_mode") {
		mode, err := strconv.ParseUint(strings.TrimSpace(raw.Output.FileMode), 8, 32)
		if err != nil {
			return Config{}, fmt.Errorf("parse output.file_mode: %w", err)
		}
		cfg.Output.FileMode = os.FileMode(mode)
	}

	if meta.IsDefined("server", "addr") {
		cfg.Server.Addr = strings.TrimSpace(raw.Server.Addr)
	}
	if meta.IsDefined("server", "cors_origins") {
		cfg.Server.CorsOrigins = normalizeOrigins(raw.Server.CorsOrigins)
	}
	if meta.IsDefined("server", "max_body_bytes") {
		cfg.Server.MaxBodyBytes = raw.Server.MaxBodyBytes
	}
	if meta.IsDefined("server", "auth_token") {
		cfg.Server.AuthToken = strings.TrimSpace(raw.Server.AuthToken)
	}

	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}

	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	if cfg.Fetch.Timeout < 0 {
		return fmt.Errorf("%w: fetch.timeout must not be negative", ErrInvalidConfig)
	}
	if cfg.Fetch.MaxBytes <= 0 {
		return fmt.Errorf("%w: fetch.max_bytes must be positive", ErrInvalidConfig)
	}
	if cfg.Output.FileMode == 0 || cfg.Output.FileMode&^os.ModePerm != 0 {
		return fmt.Errorf("%w: output.file_mode must be a permission mode", ErrInvalidConfig)
	}
	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalidConfig)
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: server.max_body_bytes must be positive", ErrInvalidConfig)
	}
	return nil
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
