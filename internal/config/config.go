package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// TracingProtocol values accepted by the OTLP exporter.
const (
	TracingProtocolGRPC = "grpc"
	TracingProtocolHTTP = "http"
)

type Config struct {
	Target      string        `mapstructure:"target"`
	LoginPath   string        `mapstructure:"login_path"`
	PoolSize    int           `mapstructure:"pool_size"`
	Password    string        `mapstructure:"password"`
	EmailDomain string        `mapstructure:"email_domain"`
	Timeout     time.Duration `mapstructure:"timeout"`
	ThinkMin    time.Duration `mapstructure:"think_min"`
	ThinkMax    time.Duration `mapstructure:"think_max"`
	Attempts    int           `mapstructure:"attempts"`
	Sweep       bool          `mapstructure:"sweep"`
	SweepRate   float64       `mapstructure:"sweep_rate"`
	Fixtures    string        `mapstructure:"fixtures"`
	ConfigFile  string        `mapstructure:"-"`
	Tracing     TracingConfig `mapstructure:"tracing"`
}

type TracingConfig struct {
	Enable      bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"`
	Protocol    string  `mapstructure:"protocol"`
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	Propagate   *bool   `mapstructure:"propagate"`
}

// Enabled reports whether spans should be produced at all.
func (t TracingConfig) Enabled() bool {
	return t.Enable
}

// ShouldPropagate reports whether W3C trace headers are injected into
// outbound requests. Defaults to true when tracing is enabled.
func (t TracingConfig) ShouldPropagate() bool {
	if !t.Enable {
		return false
	}
	return t.Propagate == nil || *t.Propagate
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string
	var warnings []string

	if strings.TrimSpace(c.Fixtures) == "" && strings.TrimSpace(c.Target) == "" {
		issues = append(issues, "target is required (use --help for usage information)")
	}

	if c.PoolSize < 1 {
		issues = append(issues, "pool_size must be >= 1")
	}
	if strings.TrimSpace(c.Password) == "" {
		issues = append(issues, "password cannot be empty")
	}
	if strings.TrimSpace(c.EmailDomain) == "" {
		issues = append(issues, "email_domain cannot be empty")
	}
	if c.LoginPath != "" && !strings.HasPrefix(c.LoginPath, "/") {
		issues = append(issues, "login_path must start with /")
	}
	if c.Timeout < 0 {
		issues = append(issues, "timeout must be >= 0")
	}
	if c.ThinkMin < 0 {
		issues = append(issues, "think_min must be >= 0")
	}
	if c.ThinkMax < c.ThinkMin {
		issues = append(issues, "think_max must be >= think_min")
	}
	if c.Attempts < 0 {
		issues = append(issues, "attempts must be >= 0")
	}
	if c.SweepRate <= 0 {
		issues = append(issues, "sweep_rate must be > 0")
	}
	if c.Sweep && strings.TrimSpace(c.Fixtures) != "" {
		issues = append(issues, "sweep and check-fixtures are mutually exclusive")
	}

	// Guard rails against hammering a shared environment by accident.
	if c.PoolSize > 10000 {
		warnings = append(warnings, fmt.Sprintf("WARNING: Large account pool configured (%d identifiers). Ensure the target tenant is provisioned for it.", c.PoolSize))
	}
	if c.SweepRate > 50 {
		warnings = append(warnings, fmt.Sprintf("WARNING: High sweep rate configured (%.0f rps). The target throttles aggressively with 429s.", c.SweepRate))
	}
	if len(warnings) > 0 {
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, w)
		}
	}

	tracingIssues := validateTracingConfig(c.Tracing)
	if len(tracingIssues) > 0 {
		issues = append(issues, tracingIssues...)
	}

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}

	return nil
}

func validateTracingConfig(tr TracingConfig) []string {
	if !tr.Enable {
		return nil
	}

	var issues []string
	switch strings.ToLower(strings.TrimSpace(tr.Protocol)) {
	case "", TracingProtocolGRPC, TracingProtocolHTTP:
	default:
		issues = append(issues, fmt.Sprintf("tracing: protocol must be 'grpc' or 'http', got %q", tr.Protocol))
	}
	if tr.SampleRate < 0 || tr.SampleRate > 1.0 {
		issues = append(issues, fmt.Sprintf("tracing: sample_rate must be between 0.0 and 1.0, got %g", tr.SampleRate))
	}
	return issues
}
