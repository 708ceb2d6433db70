package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/gignut/logindrill/internal/accounts"
	"github.com/gignut/logindrill/internal/config"
	"github.com/gignut/logindrill/internal/dispatch"
	"github.com/gignut/logindrill/internal/login"
	"github.com/gignut/logindrill/internal/scenario"
	"github.com/gignut/logindrill/internal/tracing"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.Load(args)
	if err != nil {
		if errors.Is(err, config.ErrHelpRequested) {
			return nil
		}
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.Fixtures != "" {
		return runFixtures(os.Stdout, cfg.Fixtures)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	provider, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		_ = provider.Shutdown(shutdownCtx)
	}()

	pool, err := accounts.Initialize(cfg.PoolSize, cfg.EmailDomain, cfg.Password)
	if err != nil {
		return err
	}

	dispatcher, endpoint, err := buildDispatcher(cfg, provider)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "[logindrill] target %s, pool of %d accounts\n", endpoint, pool.Len())

	rec := newTallyRecorder(os.Stderr)
	if cfg.Sweep {
		err = runSweep(ctx, cfg, pool, dispatcher, rec)
	} else {
		err = runUser(ctx, cfg, pool, dispatcher, rec)
	}
	rec.summarize()
	if err != nil {
		return err
	}
	if n := rec.Failed(); n > 0 {
		return fmt.Errorf("%d login attempts failed", n)
	}
	return nil
}

// buildDispatcher assembles the HTTP dispatcher and, when tracing is on,
// wraps it so every attempt gets a span and outbound requests carry trace
// headers.
func buildDispatcher(cfg *config.Config, provider *tracing.Provider) (scenario.Dispatcher, string, error) {
	client := dispatch.NewClient(cfg.Timeout)

	var opts []dispatch.Option
	if provider.ShouldPropagate() {
		opts = append(opts, dispatch.WithHeaderInjector(tracing.InjectHTTPHeaders))
	}
	httpDispatcher, err := dispatch.NewHTTP(client, cfg.Target, cfg.LoginPath, opts...)
	if err != nil {
		return nil, "", err
	}

	var d scenario.Dispatcher = httpDispatcher
	if cfg.Tracing.Enabled() {
		d = tracing.WrapDispatcher(d, provider.Tracer(), httpDispatcher.URL())
	}
	return d, httpDispatcher.URL(), nil
}

// runUser drives one simulated user. Attempts 0 means run until the
// context ends; otherwise the user pauses a think-time draw between the
// bounded attempts.
func runUser(ctx context.Context, cfg *config.Config, pool *accounts.Pool, d scenario.Dispatcher, rec scenario.Recorder) error {
	think := scenario.ThinkTime{Min: cfg.ThinkMin, Max: cfg.ThinkMax}
	user := scenario.NewUser(pool, d, scenario.WithRecorder(rec), scenario.WithThinkTime(think))

	if cfg.Attempts == 0 {
		return user.Run(ctx)
	}
	for i := 0; i < cfg.Attempts; i++ {
		if i > 0 && !pause(ctx, think.Next()) {
			return nil
		}
		if _, err := user.Attempt(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
	return nil
}

// runSweep tries every pool credential once, in identifier order, paced by
// a rate limiter so the sweep itself does not trip the target's 429
// throttling.
func runSweep(ctx context.Context, cfg *config.Config, pool *accounts.Pool, d scenario.Dispatcher, rec scenario.Recorder) error {
	limiter := rate.NewLimiter(rate.Limit(cfg.SweepRate), 1)
	sweepID := ulid.Make().String()
	for i, cred := range pool.Credentials() {
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		attemptCtx := scenario.WithAttemptInfo(ctx, scenario.AttemptInfo{User: sweepID, Attempt: i + 1})
		env, err := d.Dispatch(attemptCtx, login.NewRequest(cred))
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		rec.Record(scenario.Result{
			User:    sweepID,
			Attempt: i + 1,
			Email:   cred.Email,
			Outcome: login.Classify(env, cred.Email),
		})
	}
	return nil
}

// pause sleeps for d or until ctx ends, reporting whether the caller
// should keep going.
func pause(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
