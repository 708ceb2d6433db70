package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gignut/logindrill/internal/accounts"
	"github.com/gignut/logindrill/internal/login"
	"github.com/gignut/logindrill/internal/scenario"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultSweepRate = 2.0
)

// Loader handles loading configuration from files, environment variables,
// and command-line arguments.
type Loader struct{}

// ErrHelpRequested is returned when the user requests help via --help flag.
var ErrHelpRequested = errors.New("help requested")

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses command-line arguments, the optional config file, and the
// TEST_* environment variables to produce a Config. Precedence from
// weakest to strongest: defaults, environment, config file, flags.
func (Loader) Load(args []string) (*Config, error) {
	cmd := newFlagCommand()
	if err := cmd.Flags().Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
		return nil, err
	}

	flagSet := cmd.Flags()
	if helpFlag := flagSet.Lookup("help"); helpFlag != nil {
		if wantsHelp, err := strconv.ParseBool(helpFlag.Value.String()); err == nil && wantsHelp {
			displayHelp(cmd)
			return nil, ErrHelpRequested
		}
	}

	// If no arguments provided and no config file, show help/usage
	configPath := flagSet.Lookup("config").Value.String()
	if len(args) == 0 && configPath == "" {
		displayHelp(cmd)
		return nil, ErrHelpRequested
	}
	cfgViper := viper.New()
	if configPath != "" {
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	settings := cfgViper.AllSettings()

	cfg := &Config{
		LoginPath:   login.Path,
		PoolSize:    accounts.DefaultPoolSize,
		Password:    accounts.DefaultPassword,
		EmailDomain: accounts.DefaultDomain,
		Timeout:     defaultTimeout,
		ThinkMin:    scenario.DefaultThinkMin,
		ThinkMax:    scenario.DefaultThinkMax,
		SweepRate:   defaultSweepRate,
		ConfigFile:  configPath,
		Tracing: TracingConfig{
			Protocol:   TracingProtocolGRPC,
			SampleRate: 1.0,
		},
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := applyConfigSettings(cfg, settings); err != nil {
		return nil, err
	}

	if err := applyFlagOverrides(cfg, flagSet); err != nil {
		return nil, err
	}

	cfg.Target = strings.TrimSpace(cfg.Target)
	cfg.LoginPath = strings.TrimSpace(cfg.LoginPath)
	cfg.Fixtures = strings.TrimSpace(cfg.Fixtures)

	if cfg.LoginPath == "" {
		cfg.LoginPath = login.Path
	}

	return cfg, nil
}

// applyEnvOverrides fills fields the shared test tenant exposes as
// environment variables. Config file and flag values take precedence.
func applyEnvOverrides(cfg *Config) error {
	if raw := strings.TrimSpace(os.Getenv("TEST_ACCOUNT_POOL_SIZE")); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("TEST_ACCOUNT_POOL_SIZE: %w", err)
		}
		cfg.PoolSize = size
	}
	if env := os.Getenv("TEST_PASSWORD"); env != "" {
		cfg.Password = env
	}
	if env := strings.TrimSpace(os.Getenv("TEST_EMAIL_DOMAIN")); env != "" {
		cfg.EmailDomain = env
	}
	return nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "target"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}
		cfg.Target = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "loginpath", "login_path", "login-path"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("loginPath: %w", err)
		}
		if val != "" {
			cfg.LoginPath = strings.TrimSpace(val)
		}
	}

	if raw, ok := lookupSetting(settings, "poolsize", "pool_size", "pool-size"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("poolSize: %w", err)
		}
		cfg.PoolSize = val
	}

	if raw, ok := lookupSetting(settings, "password"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("password: %w", err)
		}
		cfg.Password = val
	}

	if raw, ok := lookupSetting(settings, "emaildomain", "email_domain", "email-domain"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("emailDomain: %w", err)
		}
		cfg.EmailDomain = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = dur
	}

	if raw, ok := lookupSetting(settings, "thinkmin", "think_min", "think-min"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("thinkMin: %w", err)
		}
		cfg.ThinkMin = dur
	}

	if raw, ok := lookupSetting(settings, "thinkmax", "think_max", "think-max"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("thinkMax: %w", err)
		}
		cfg.ThinkMax = dur
	}

	if raw, ok := lookupSetting(settings, "attempts"); ok {
		val, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("attempts: %w", err)
		}
		cfg.Attempts = val
	}

	if raw, ok := lookupSetting(settings, "sweep"); ok {
		val, err := asBool(raw)
		if err != nil {
			return fmt.Errorf("sweep: %w", err)
		}
		cfg.Sweep = val
	}

	if raw, ok := lookupSetting(settings, "sweeprate", "sweep_rate", "sweep-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return fmt.Errorf("sweepRate: %w", err)
		}
		cfg.SweepRate = val
	}

	if raw, ok := lookupSetting(settings, "fixtures"); ok {
		val, err := asString(raw)
		if err != nil {
			return fmt.Errorf("fixtures: %w", err)
		}
		cfg.Fixtures = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		tracing, err := parseTracing(raw, cfg.Tracing)
		if err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
		cfg.Tracing = tracing
	}

	return nil
}

func parseTracing(value interface{}, base TracingConfig) (TracingConfig, error) {
	if value == nil {
		return base, nil
	}
	entry, err := toStringKeyMap(value)
	if err != nil {
		return TracingConfig{}, err
	}

	tracing := base
	if raw, ok := lookupSetting(entry, "enabled"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("enabled: %w", err)
		}
		tracing.Enable = val
	}
	if raw, ok := lookupSetting(entry, "servicename", "service_name", "service-name"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("service_name: %w", err)
		}
		tracing.ServiceName = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "endpoint"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("endpoint: %w", err)
		}
		tracing.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(entry, "protocol"); ok {
		val, err := asString(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("protocol: %w", err)
		}
		tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if raw, ok := lookupSetting(entry, "insecure"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("insecure: %w", err)
		}
		tracing.Insecure = val
	}
	if raw, ok := lookupSetting(entry, "samplerate", "sample_rate", "sample-rate"); ok {
		val, err := asFloat64(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("sample_rate: %w", err)
		}
		tracing.SampleRate = val
	}
	if raw, ok := lookupSetting(entry, "propagate"); ok {
		val, err := asBool(raw)
		if err != nil {
			return TracingConfig{}, fmt.Errorf("propagate: %w", err)
		}
		tracing.Propagate = &val
	}
	return tracing, nil
}
