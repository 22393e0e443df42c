package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by the host, e.g.
// VIEWERHOST_LOG_LEVEL.
const EnvPrefix = "VIEWERHOST"

// LogFileAuto selects the per-user default log file instead of stderr
const LogFileAuto = "auto"

const (
	keyLogLevel  = "log-level"
	keyLogFile   = "log-file"
	keyLogFormat = "log-format"
)

type Config struct {
	LogLevel  string `mapstructure:"log-level"`
	LogFile   string `mapstructure:"log-file"`
	LogFormat string `mapstructure:"log-format"`
}

var (
	validLevels  = []string{"debug", "info", "warn", "error"}
	validFormats = []string{"text", "json"}
)

// Defaults returns the configuration used when nothing is set
func Defaults() Config {
	return Config{
		LogLevel:  "info",
		LogFile:   "",
		LogFormat: "text",
	}
}

// RegisterFlags adds the host's flags to fs
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String(keyLogLevel, d.LogLevel, "diagnostic level: "+strings.Join(validLevels, "|"))
	fs.String(keyLogFile, d.LogFile, `diagnostic log file; empty for stderr, "`+LogFileAuto+`" for the user cache directory`)
	fs.String(keyLogFormat, d.LogFormat, "diagnostic format: "+strings.Join(validFormats, "|"))
}

// Load merges flags and VIEWERHOST_* environment variables over the
// defaults. Flags that were set explicitly win over the environment.
func Load(v *viper.Viper, flags *pflag.FlagSet) (Config, error) {
	d := Defaults()
	v.SetDefault(keyLogLevel, d.LogLevel)
	v.SetDefault(keyLogFile, d.LogFile)
	v.SetDefault(keyLogFormat, d.LogFormat)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unable to decode configuration: %w", err)
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.LogFile = strings.TrimSpace(c.LogFile)

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func (c Config) Validate() error {
	var errs []error

	if !contains(validLevels, c.LogLevel) {
		errs = append(errs, fmt.Errorf("%s must be one of %s, got %q", keyLogLevel, strings.Join(validLevels, "|"), c.LogLevel))
	}
	if !contains(validFormats, c.LogFormat) {
		errs = append(errs, fmt.Errorf("%s must be one of %s, got %q", keyLogFormat, strings.Join(validFormats, "|"), c.LogFormat))
	}

	return errors.Join(errs...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
