// Package config loads txpredict settings. Values resolve, highest priority
// first, from command-line flags, TXPREDICT_* environment variables, a YAML
// file and finally the built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/txpredict/internal/ensemble"
	"github.com/danielpatrickdp/txpredict/internal/feed"
	"github.com/danielpatrickdp/txpredict/internal/rpc"
	"github.com/danielpatrickdp/txpredict/internal/session"
)

// DefaultPath is read when no explicit config file is given and it exists.
const DefaultPath = "txpredict.yaml"

// #region types
// Config holds all txpredict configuration.
type Config struct {
	Ensemble EnsembleConfig `yaml:"ensemble" json:"ensemble"`
	Feed     FeedConfig     `yaml:"feed" json:"feed"`
	Server   ServerConfig   `yaml:"server" json:"server"`
	Audit    AuditConfig    `yaml:"audit" json:"audit"`
}

// EnsembleConfig holds the weighting and confidence parameters.
type EnsembleConfig struct {
	EMAAlpha        float64 `yaml:"ema_alpha" json:"ema_alpha"`
	MinWeight       float64 `yaml:"min_weight" json:"min_weight"`
	HistoryWindow   int     `yaml:"history_window" json:"history_window"`
	WarmupRecords   int     `yaml:"warmup_records" json:"warmup_records"`
	MinFitRecords   int     `yaml:"min_fit_records" json:"min_fit_records"`
	MinConfidence   float64 `yaml:"min_confidence" json:"min_confidence"`
	MaxConfidence   float64 `yaml:"max_confidence" json:"max_confidence"`
	MinUpdatePrefix int     `yaml:"min_update_prefix" json:"min_update_prefix"`
	Parallel        bool    `yaml:"parallel" json:"parallel"`
}

// FeedConfig holds the upstream polling settings.
type FeedConfig struct {
	URL        string        `yaml:"url" json:"url"`
	Interval   time.Duration `yaml:"interval" json:"interval"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout"`
	Retries    int           `yaml:"retries" json:"retries"`
	RetryDelay time.Duration `yaml:"retry_delay" json:"retry_delay"`
	UserAgent  string        `yaml:"user_agent" json:"user_agent"`
}

// ServerConfig holds the gRPC listener settings.
type ServerConfig struct {
	Addr          string        `yaml:"addr" json:"addr"`
	ShutdownGrace time.Duration `yaml:"shutdown_grace" json:"shutdown_grace"`
	HistoryLimit  int           `yaml:"history_limit" json:"history_limit"`
}

// AuditConfig holds the SQLite audit log settings. An empty Path disables it.
type AuditConfig struct {
	Path string `yaml:"path" json:"path"`
}

// #endregion types

// #region defaults
// Default returns the default configuration.
func Default() *Config {
	ens := ensemble.DefaultConfig()
	fd := feed.DefaultConfig()
	return &Config{
		Ensemble: EnsembleConfig{
			EMAAlpha:        ens.EMAAlpha,
			MinWeight:       ens.MinWeight,
			HistoryWindow:   ens.HistoryWindow,
			WarmupRecords:   ens.WarmupRecords,
			MinFitRecords:   ens.MinFitRecords,
			MinConfidence:   ens.MinConfidence,
			MaxConfidence:   ens.MaxConfidence,
			MinUpdatePrefix: session.DefaultConfig().MinUpdatePrefix,
		},
		Feed: FeedConfig{
			Interval:   fd.Interval,
			Timeout:    fd.Timeout,
			Retries:    fd.Retries,
			RetryDelay: fd.RetryDelay,
			UserAgent:  fd.UserAgent,
		},
		Server: ServerConfig{
			Addr:          "127.0.0.1:50071",
			ShutdownGrace: 5 * time.Second,
			HistoryLimit:  rpc.DefaultServiceConfig().HistoryLimit,
		},
		Audit: AuditConfig{
			Path: "data/txpredict.db",
		},
	}
}

// #endregion defaults

// #region load
// Load resolves configuration. path names a YAML file that must exist; when
// empty, TXPREDICT_CONFIG and then DefaultPath are tried and may be absent.
// flags may be nil.
func Load(path string, flags *Config) (*Config, error) {
	cfg := Default()

	required := path != ""
	if !required {
		path = os.Getenv("TXPREDICT_CONFIG")
		required = path != ""
	}
	if path == "" {
		path = DefaultPath
	}
	file, err := loadFromPath(path)
	switch {
	case err == nil:
		cfg = merge(cfg, file)
	case required || !errors.Is(err, os.ErrNotExist):
		return nil, err
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if flags != nil {
		cfg = merge(cfg, flags)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromPath loads config from a YAML file.
func loadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// applyEnv applies TXPREDICT_* overrides.
func applyEnv(cfg *Config) error {
	var errs []error
	envFloat := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	envInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	envDur := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	envFloat("TXPREDICT_EMA_ALPHA", &cfg.Ensemble.EMAAlpha)
	envFloat("TXPREDICT_MIN_WEIGHT", &cfg.Ensemble.MinWeight)
	envInt("TXPREDICT_HISTORY_WINDOW", &cfg.Ensemble.HistoryWindow)
	if v := strings.ToLower(os.Getenv("TXPREDICT_PARALLEL")); v == "true" || v == "1" {
		cfg.Ensemble.Parallel = true
	}
	envStr("TXPREDICT_FEED_URL", &cfg.Feed.URL)
	envDur("TXPREDICT_FEED_INTERVAL", &cfg.Feed.Interval)
	envDur("TXPREDICT_FEED_TIMEOUT", &cfg.Feed.Timeout)
	envInt("TXPREDICT_FEED_RETRIES", &cfg.Feed.Retries)
	envStr("TXPREDICT_ADDR", &cfg.Server.Addr)
	envInt("TXPREDICT_HISTORY_LIMIT", &cfg.Server.HistoryLimit)
	envStr("TXPREDICT_AUDIT_PATH", &cfg.Audit.Path)
	if v := strings.ToLower(os.Getenv("TXPREDICT_AUDIT_DISABLED")); v == "true" || v == "1" {
		cfg.Audit.Path = ""
	}

	return errors.Join(errs...)
}

// #endregion load

// #region merge
func mergeStr(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}

func mergeInt(dst *int, src int) {
	if src != 0 {
		*dst = src
	}
}

func mergeFloat(dst *float64, src float64) {
	if src != 0 {
		*dst = src
	}
}

func mergeDur(dst *time.Duration, src time.Duration) {
	if src != 0 {
		*dst = src
	}
}

// merge merges src into dst, with non-zero src values taking precedence.
// Booleans can only be switched on.
func merge(dst, src *Config) *Config {
	e, s := &dst.Ensemble, &src.Ensemble
	mergeFloat(&e.EMAAlpha, s.EMAAlpha)
	mergeFloat(&e.MinWeight, s.MinWeight)
	mergeInt(&e.HistoryWindow, s.HistoryWindow)
	mergeInt(&e.WarmupRecords, s.WarmupRecords)
	mergeInt(&e.MinFitRecords, s.MinFitRecords)
	mergeFloat(&e.MinConfidence, s.MinConfidence)
	mergeFloat(&e.MaxConfidence, s.MaxConfidence)
	mergeInt(&e.MinUpdatePrefix, s.MinUpdatePrefix)
	if s.Parallel {
		e.Parallel = true
	}

	f, sf := &dst.Feed, &src.Feed
	mergeStr(&f.URL, sf.URL)
	mergeDur(&f.Interval, sf.Interval)
	mergeDur(&f.Timeout, sf.Timeout)
	mergeInt(&f.Retries, sf.Retries)
	mergeDur(&f.RetryDelay, sf.RetryDelay)
	mergeStr(&f.UserAgent, sf.UserAgent)

	mergeStr(&dst.Server.Addr, src.Server.Addr)
	mergeDur(&dst.Server.ShutdownGrace, src.Server.ShutdownGrace)
	mergeInt(&dst.Server.HistoryLimit, src.Server.HistoryLimit)
	mergeStr(&dst.Audit.Path, src.Audit.Path)
	return dst
}

// #endregion merge

// #region validate
// Validate rejects parameter combinations the engine cannot honor.
func (c *Config) Validate() error {
	e := c.Ensemble
	var errs []error
	if e.EMAAlpha <= 0 || e.EMAAlpha > 1 {
		errs = append(errs, fmt.Errorf("ensemble.ema_alpha %g outside (0, 1]", e.EMAAlpha))
	}
	if e.MinWeight <= 0 || e.MinWeight >= 0.1 {
		errs = append(errs, fmt.Errorf("ensemble.min_weight %g outside (0, 0.1)", e.MinWeight))
	}
	if e.MinConfidence < 0.5 || e.MinConfidence > e.MaxConfidence || e.MaxConfidence > 1 {
		errs = append(errs, fmt.Errorf("ensemble confidence bounds [%g, %g] invalid", e.MinConfidence, e.MaxConfidence))
	}
	if e.HistoryWindow < 0 || e.WarmupRecords < 0 || e.MinFitRecords < 0 || e.MinUpdatePrefix < 0 {
		errs = append(errs, errors.New("ensemble window sizes must not be negative"))
	}
	if c.Server.HistoryLimit < 0 {
		errs = append(errs, fmt.Errorf("server.history_limit %d is negative", c.Server.HistoryLimit))
	}
	if c.Feed.Retries < 0 {
		errs = append(errs, fmt.Errorf("feed.retries %d is negative", c.Feed.Retries))
	}
	return errors.Join(errs...)
}

// #endregion validate

// #region convert
// SessionConfig builds the session parameters.
func (c *Config) SessionConfig() session.Config {
	sc := session.DefaultConfig()
	e := c.Ensemble
	sc.Ensemble = ensemble.Config{
		EMAAlpha:      e.EMAAlpha,
		MinWeight:     e.MinWeight,
		HistoryWindow: e.HistoryWindow,
		WarmupRecords: e.WarmupRecords,
		MinFitRecords: e.MinFitRecords,
		MinConfidence: e.MinConfidence,
		MaxConfidence: e.MaxConfidence,
		Parallel:      e.Parallel,
	}
	sc.Eval.MinWeight = e.MinWeight
	sc.Eval.MinConfidence = e.MinConfidence
	sc.Eval.MaxConfidence = e.MaxConfidence
	sc.MinUpdatePrefix = e.MinUpdatePrefix
	return sc
}

// ServiceConfig builds the gRPC service limits.
func (c *Config) ServiceConfig() rpc.ServiceConfig {
	return rpc.ServiceConfig{HistoryLimit: c.Server.HistoryLimit}
}

// PollerConfig builds the feed poller parameters.
func (c *Config) PollerConfig() feed.Config {
	return feed.Config{
		URL:        c.Feed.URL,
		Interval:   c.Feed.Interval,
		Timeout:    c.Feed.Timeout,
		Retries:    c.Feed.Retries,
		RetryDelay: c.Feed.RetryDelay,
		UserAgent:  c.Feed.UserAgent,
	}
}

// #endregion convert
