package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gignut/logindrill/internal/accounts"
	"github.com/gignut/logindrill/internal/login"
	"github.com/gignut/logindrill/internal/scenario"
)

// newFlagCommand creates a cobra command with all flags configured.
func newFlagCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "logindrill",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetOut(os.Stdout)
	configureFlags(cmd.Flags())
	return cmd
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	// Target flags
	flags.String("target", "", "Base URL of the environment under test (e.g. https://staging.gignut.com)")
	flags.String("login-path", login.Path, "Path of the login endpoint on the target")

	// Account pool flags
	flags.IntP("pool-size", "n", accounts.DefaultPoolSize, "Number of accounts in the shared pool")
	flags.String("password", accounts.DefaultPassword, "Password shared by all pool accounts")
	flags.String("email-domain", accounts.DefaultDomain, "Domain for generated account emails")

	// Pacing flags
	flags.Duration("timeout", defaultTimeout, "Per-request timeout")
	flags.Duration("think-min", scenario.DefaultThinkMin, "Minimum pause between attempts")
	flags.Duration("think-max", scenario.DefaultThinkMax, "Maximum pause between attempts")
	flags.IntP("attempts", "a", 0, "Number of login attempts to run (0 means run until interrupted)")

	// Mode flags
	flags.Bool("sweep", false, "Attempt every pool account once, in order, instead of random picks")
	flags.Float64("sweep-rate", defaultSweepRate, "Attempts per second while sweeping")
	flags.String("check-fixtures", "", "Path to YAML fixture file to classify offline (sends no requests)")

	// Config flags
	flags.String("config", "", "Path to configuration file (JSON or YAML)")

	// Tracing flags
	flags.Bool("trace", false, "Enable OpenTelemetry tracing")
	flags.String("trace-endpoint", "", "OTLP collector endpoint (host:port)")
	flags.String("trace-protocol", TracingProtocolGRPC, "OTLP transport: 'grpc' or 'http'")
	flags.Bool("trace-insecure", false, "Disable TLS for the OTLP exporter")
	flags.Float64("trace-sample-rate", 1.0, "Trace sampling rate between 0.0 and 1.0")
}

// displayHelp prints the help message for a command.
func displayHelp(cmd *cobra.Command) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Usage: %s\n\nFlags:\n", cmd.UseLine())
	fs := cmd.Flags()
	fs.SetOutput(out)
	fs.PrintDefaults()
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("target") {
		val, err := fs.GetString("target")
		if err != nil {
			return err
		}
		cfg.Target = strings.TrimSpace(val)
	}
	if fs.Changed("login-path") {
		val, err := fs.GetString("login-path")
		if err != nil {
			return err
		}
		cfg.LoginPath = strings.TrimSpace(val)
	}
	if fs.Changed("pool-size") {
		val, err := fs.GetInt("pool-size")
		if err != nil {
			return err
		}
		cfg.PoolSize = val
	}
	if fs.Changed("password") {
		val, err := fs.GetString("password")
		if err != nil {
			return err
		}
		cfg.Password = val
	}
	if fs.Changed("email-domain") {
		val, err := fs.GetString("email-domain")
		if err != nil {
			return err
		}
		cfg.EmailDomain = strings.TrimSpace(val)
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("think-min") {
		val, err := fs.GetDuration("think-min")
		if err != nil {
			return err
		}
		cfg.ThinkMin = val
	}
	if fs.Changed("think-max") {
		val, err := fs.GetDuration("think-max")
		if err != nil {
			return err
		}
		cfg.ThinkMax = val
	}
	if fs.Changed("attempts") {
		val, err := fs.GetInt("attempts")
		if err != nil {
			return err
		}
		cfg.Attempts = val
	}
	if fs.Changed("sweep") {
		val, err := fs.GetBool("sweep")
		if err != nil {
			return err
		}
		cfg.Sweep = val
	}
	if fs.Changed("sweep-rate") {
		val, err := fs.GetFloat64("sweep-rate")
		if err != nil {
			return err
		}
		cfg.SweepRate = val
	}
	if fs.Changed("check-fixtures") {
		val, err := fs.GetString("check-fixtures")
		if err != nil {
			return err
		}
		cfg.Fixtures = strings.TrimSpace(val)
	}
	if fs.Changed("trace") {
		val, err := fs.GetBool("trace")
		if err != nil {
			return err
		}
		cfg.Tracing.Enable = val
	}
	if fs.Changed("trace-endpoint") {
		val, err := fs.GetString("trace-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("trace-protocol") {
		val, err := fs.GetString("trace-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(val))
	}
	if fs.Changed("trace-insecure") {
		val, err := fs.GetBool("trace-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("trace-sample-rate") {
		val, err := fs.GetFloat64("trace-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}

	return nil
}
