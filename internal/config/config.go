// Package config loads client settings from flags, FACTS_* environment
// variables and an optional YAML file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/and161185/factshare/internal/client/notify"
	"github.com/and161185/factshare/internal/client/probe"
)

// EnvPrefix is prepended to every environment key, e.g. FACTS_ADDR.
const EnvPrefix = "FACTS"

// Keys.
const (
	KeyConfig              = "config"
	KeyAddr                = "addr"
	KeyCACert              = "cacert"
	KeyInsecure            = "insecure"
	KeyPlaintext           = "plaintext"
	KeyConfigDir           = "config_dir"
	KeyRequestTimeout      = "request_timeout"
	KeyProbeAttempts       = "probe_attempts"
	KeyProbeBaseDelay      = "probe_base_delay"
	KeyProbeMaxDelay       = "probe_max_delay"
	KeyProbeAttemptTimeout = "probe_attempt_timeout"
	KeyErrorTTL            = "error_ttl"
	KeyLogLevel            = "log_level"
)

// Config is the resolved client configuration.
type Config struct {
	Addr                string        `mapstructure:"addr"`
	CACert              string        `mapstructure:"cacert"`
	Insecure            bool          `mapstructure:"insecure"`
	Plaintext           bool          `mapstructure:"plaintext"`
	ConfigDir           string        `mapstructure:"config_dir"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout"`
	ProbeAttempts       int           `mapstructure:"probe_attempts"`
	ProbeBaseDelay      time.Duration `mapstructure:"probe_base_delay"`
	ProbeMaxDelay       time.Duration `mapstructure:"probe_max_delay"`
	ProbeAttemptTimeout time.Duration `mapstructure:"probe_attempt_timeout"`
	ErrorTTL            time.Duration `mapstructure:"error_ttl"`
	LogLevel            string        `mapstructure:"log_level"`
}

// DefaultDir returns $XDG_CONFIG_HOME/factshare, falling back to ~/.config/factshare.
func DefaultDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "factshare")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "factshare")
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyAddr, "localhost:8443")
	v.SetDefault(KeyConfigDir, DefaultDir())
	v.SetDefault(KeyRequestTimeout, 10*time.Second)
	v.SetDefault(KeyProbeAttempts, probe.DefaultAttempts)
	v.SetDefault(KeyProbeBaseDelay, probe.DefaultBaseDelay)
	v.SetDefault(KeyProbeMaxDelay, probe.DefaultMaxDelay)
	v.SetDefault(KeyProbeAttemptTimeout, probe.DefaultAttemptTimeout)
	v.SetDefault(KeyErrorTTL, notify.DefaultTTL)
	v.SetDefault(KeyLogLevel, "warn")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file (explicit --config, else <config_dir>/config.yaml)
// when present and decodes the merged settings. A missing default file is not an error.
func Load(v *viper.Viper) (Config, error) {
	path := v.GetString(KeyConfig)
	explicit := path != ""
	if !explicit {
		path = filepath.Join(v.GetString(KeyConfigDir), "config.yaml")
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		missing := errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
		if explicit || !missing {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return c, c.Validate()
}

// Validate rejects settings the client cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return errors.New("addr is required")
	case c.ConfigDir == "":
		return errors.New("config_dir is required")
	case c.ProbeAttempts < 1:
		return errors.New("probe_attempts must be at least 1")
	}
	for key, d := range map[string]time.Duration{
		KeyRequestTimeout:      c.RequestTimeout,
		KeyProbeBaseDelay:      c.ProbeBaseDelay,
		KeyProbeMaxDelay:       c.ProbeMaxDelay,
		KeyProbeAttemptTimeout: c.ProbeAttemptTimeout,
		KeyErrorTTL:            c.ErrorTTL,
	} {
		if d <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	if c.ProbeMaxDelay < c.ProbeBaseDelay {
		return errors.New("probe_max_delay must not be below probe_base_delay")
	}
	return nil
}

// NewLogger builds a console logger on stderr so it never mixes with command output.
func NewLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewDevelopmentConfig()
	zc.Level = lvl
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zc.DisableStacktrace = true
	return zc.Build()
}
