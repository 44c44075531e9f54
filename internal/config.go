package internal

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/tuannm99/novakv/internal/record"
)

const EnvPrefix = "NOVAKV"

type ColumnConfig struct {
	Name   string `mapstructure:"name"`
	Type   string `mapstructure:"type"`
	MaxLen int    `mapstructure:"max_len"`
}

type NovaKVConfig struct {
	AppName string `mapstructure:"app_name"`

	Server struct {
		Addr         string        `mapstructure:"addr"`
		MaxFrameSize int           `mapstructure:"max_frame_size"`
		IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	} `mapstructure:"server"`

	Engine struct {
		ReadLimit     int `mapstructure:"read_limit"`
		PlanCacheSize int `mapstructure:"plan_cache_size"`
	} `mapstructure:"engine"`

	Table struct {
		Name    string         `mapstructure:"name"`
		Columns []ColumnConfig `mapstructure:"columns"`
	} `mapstructure:"table"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`
}

// NewViper returns a viper instance with defaults and NOVAKV_* environment
// overrides wired in. Callers may bind flags on it before LoadConfigFrom.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("app_name", "novakv")
	v.SetDefault("server.addr", "127.0.0.1:4433")
	v.SetDefault("server.max_frame_size", 8<<20)
	v.SetDefault("server.idle_timeout", 0)
	v.SetDefault("engine.read_limit", 20)
	v.SetDefault("engine.plan_cache_size", 128)
	v.SetDefault("table.name", "default_table")
	v.SetDefault("table.columns", []map[string]any{
		{"name": "id", "type": "varchar", "max_len": 12},
		{"name": "counter", "type": "integer"},
	})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadConfig reads the YAML file at path on top of the defaults.
// An empty path loads defaults and environment only.
func LoadConfig(path string) (*NovaKVConfig, error) {
	return LoadConfigFrom(NewViper(), path)
}

func LoadConfigFrom(v *viper.Viper, path string) (*NovaKVConfig, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg NovaKVConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *NovaKVConfig) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is empty"))
	}
	if c.Server.MaxFrameSize <= 0 {
		errs = append(errs, fmt.Errorf("server.max_frame_size must be positive, got %d", c.Server.MaxFrameSize))
	}
	if c.Server.IdleTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.idle_timeout must not be negative, got %s", c.Server.IdleTimeout))
	}
	if c.Engine.ReadLimit <= 0 {
		errs = append(errs, fmt.Errorf("engine.read_limit must be positive, got %d", c.Engine.ReadLimit))
	}
	if c.Engine.PlanCacheSize < 0 {
		errs = append(errs, fmt.Errorf("engine.plan_cache_size must not be negative, got %d", c.Engine.PlanCacheSize))
	}
	if _, err := c.TableColumns(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// TableColumns converts the configured columns into the table layout.
func (c *NovaKVConfig) TableColumns() ([]record.Column, error) {
	if len(c.Table.Columns) == 0 {
		return nil, errors.New("table.columns is empty")
	}
	cols := make([]record.Column, 0, len(c.Table.Columns))
	for i, cc := range c.Table.Columns {
		s, err := record.ParseSchema(cc.Type, cc.MaxLen)
		if err != nil {
			return nil, fmt.Errorf("table.columns[%d] (%s): %w", i, cc.Name, err)
		}
		cols = append(cols, record.Column{Name: cc.Name, Schema: s})
	}
	return cols, nil
}

func (c *NovaKVConfig) LogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// NewLogger builds the process logger from the log section. Validate must
// have passed.
func (c *NovaKVConfig) NewLogger(w io.Writer) *slog.Logger {
	lvl, err := c.LogLevel()
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	if strings.EqualFold(c.Log.Format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With("app", c.AppName)
}
