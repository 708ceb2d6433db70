package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gignut/logindrill/internal/accounts"
	"github.com/gignut/logindrill/internal/config"
	"github.com/gignut/logindrill/internal/dispatch"
	"github.com/gignut/logindrill/internal/login"
	"github.com/gignut/logindrill/internal/scenario"
	"github.com/gignut/logindrill/internal/tracing"
)

const validSessionBody = `{"user":{"id":"u1"},"session":{"access_token":"tok"}}`

type requestLog struct {
	mu     sync.Mutex
	emails []string
}

func (l *requestLog) add(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.emails = append(l.emails, email)
}

func (l *requestLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.emails...)
}

func newLoginServer(t *testing.T, status int, body string) (*httptest.Server, *requestLog) {
	t.Helper()
	log := &requestLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Email string `json:"email"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		log.add(payload.Email)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, log
}

func newTestDispatcher(t *testing.T, target string) *dispatch.HTTP {
	t.Helper()
	d, err := dispatch.NewHTTP(dispatch.NewClient(2*time.Second), target, "")
	if err != nil {
		t.Fatalf("NewHTTP() error = %v", err)
	}
	return d
}

func fastConfig(attempts int) *config.Config {
	return &config.Config{
		PoolSize:  3,
		ThinkMin:  time.Millisecond,
		ThinkMax:  time.Millisecond,
		Attempts:  attempts,
		SweepRate: 1000,
	}
}

func TestRunUserBoundedAttempts(t *testing.T) {
	srv, log := newLoginServer(t, 200, validSessionBody)
	pool, err := accounts.New(3, "gignut.com", "TestPass123!")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var buf bytes.Buffer
	rec := newTallyRecorder(&buf)
	if err := runUser(context.Background(), fastConfig(2), pool, newTestDispatcher(t, srv.URL), rec); err != nil {
		t.Fatalf("runUser() error = %v", err)
	}

	if got := len(log.all()); got != 2 {
		t.Errorf("server saw %d requests, want 2", got)
	}
	if rec.Failed() != 0 {
		t.Errorf("Failed() = %d, want 0", rec.Failed())
	}
	if got := strings.Count(buf.String(), "[logindrill] attempt"); got != 2 {
		t.Errorf("printed %d attempt lines, want 2\noutput: %s", got, buf.String())
	}
}

func TestRunUserRecordsClassifiedFailure(t *testing.T) {
	srv, _ := newLoginServer(t, 503, "maintenance")
	pool, err := accounts.New(1, "gignut.com", "TestPass123!")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var buf bytes.Buffer
	rec := newTallyRecorder(&buf)
	if err := runUser(context.Background(), fastConfig(1), pool, newTestDispatcher(t, srv.URL), rec); err != nil {
		t.Fatalf("runUser() error = %v", err)
	}

	if rec.Failed() != 1 {
		t.Errorf("Failed() = %d, want 1", rec.Failed())
	}
	if !strings.Contains(buf.String(), "Server Error (503)") {
		t.Errorf("output missing classified reason: %s", buf.String())
	}
}

func TestRunUserUnboundedStopsOnContextEnd(t *testing.T) {
	srv, _ := newLoginServer(t, 200, validSessionBody)
	pool, err := accounts.New(1, "gignut.com", "TestPass123!")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	rec := newTallyRecorder(&bytes.Buffer{})
	if err := runUser(ctx, fastConfig(0), pool, newTestDispatcher(t, srv.URL), rec); err != nil {
		t.Fatalf("runUser() error = %v, want nil on context end", err)
	}
}

func TestRunSweepVisitsEveryCredentialInOrder(t *testing.T) {
	srv, log := newLoginServer(t, 401, "")
	pool, err := accounts.New(4, "gignut.com", "TestPass123!")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var buf bytes.Buffer
	rec := newTallyRecorder(&buf)
	if err := runSweep(context.Background(), fastConfig(0), pool, newTestDispatcher(t, srv.URL), rec); err != nil {
		t.Fatalf("runSweep() error = %v", err)
	}

	want := []string{
		"loadtest1@gignut.com",
		"loadtest2@gignut.com",
		"loadtest3@gignut.com",
		"loadtest4@gignut.com",
	}
	got := log.all()
	if len(got) != len(want) {
		t.Fatalf("server saw %d requests, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("request %d email = %q, want %q", i, got[i], want[i])
		}
	}
	if rec.Failed() != 4 {
		t.Errorf("Failed() = %d, want 4 (every 401 is a classified failure)", rec.Failed())
	}
	if !strings.Contains(buf.String(), "Unauthorized (401): Invalid email or password - loadtest4@gignut.com") {
		t.Errorf("output missing per-account 401 reason: %s", buf.String())
	}
}

func TestRunSweepStopsOnCanceledContext(t *testing.T) {
	srv, log := newLoginServer(t, 200, validSessionBody)
	pool, err := accounts.New(5, "gignut.com", "TestPass123!")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := newTallyRecorder(&bytes.Buffer{})
	if err := runSweep(ctx, fastConfig(0), pool, newTestDispatcher(t, srv.URL), rec); err != nil {
		t.Fatalf("runSweep() error = %v, want nil on canceled context", err)
	}
	if got := len(log.all()); got != 0 {
		t.Errorf("server saw %d requests after cancel, want 0", got)
	}
}

func TestBuildDispatcherWiresTracingWrapper(t *testing.T) {
	off, err := tracing.Init(context.Background(), config.TracingConfig{})
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	cfg := &config.Config{Target: "http://localhost:9090", Timeout: time.Second}

	d, endpoint, err := buildDispatcher(cfg, off)
	if err != nil {
		t.Fatalf("buildDispatcher() error = %v", err)
	}
	if endpoint != "http://localhost:9090/api/v1/auth/login" {
		t.Errorf("endpoint = %q, want default login path joined to target", endpoint)
	}
	if _, ok := d.(*dispatch.HTTP); !ok {
		t.Errorf("dispatcher without tracing = %T, want *dispatch.HTTP", d)
	}

	cfg.Tracing = config.TracingConfig{
		Enable:   true,
		Endpoint: "localhost:4317",
		Protocol: "grpc",
		Insecure: true,
	}
	on, err := tracing.Init(context.Background(), cfg.Tracing)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { _ = on.Shutdown(context.Background()) })

	traced, _, err := buildDispatcher(cfg, on)
	if err != nil {
		t.Fatalf("buildDispatcher() error = %v", err)
	}
	if _, ok := traced.(*dispatch.HTTP); ok {
		t.Error("dispatcher with tracing enabled should be wrapped")
	}
}

func TestRunHelpExitsClean(t *testing.T) {
	if err := run([]string{"--help"}); err != nil {
		t.Errorf("run(--help) error = %v, want nil", err)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	err := run([]string{"--target", "http://localhost:9090", "--pool-size", "0"})
	if err == nil {
		t.Fatal("run() with pool-size 0 should return error")
	}
	if !strings.Contains(err.Error(), "pool_size") {
		t.Errorf("error = %v, want pool_size issue", err)
	}
}

func TestPause(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	if !pause(context.Background(), 0) {
		t.Error("pause(live ctx, 0) = false, want true")
	}
	if pause(canceled, 0) {
		t.Error("pause(canceled ctx, 0) = true, want false")
	}
	if pause(canceled, time.Second) {
		t.Error("pause(canceled ctx, 1s) = true, want false")
	}
	if !pause(context.Background(), time.Millisecond) {
		t.Error("pause(live ctx, 1ms) = false, want true")
	}
}

func TestTallyRecorder(t *testing.T) {
	var buf bytes.Buffer
	rec := newTallyRecorder(&buf)

	rec.Record(scenario.Result{Attempt: 1, Email: "loadtest1@gignut.com", Outcome: login.Success()})
	rec.Record(scenario.Result{Attempt: 2, Email: "loadtest2@gignut.com", Outcome: login.Success()})
	rec.Record(scenario.Result{Attempt: 3, Email: "loadtest3@gignut.com", Outcome: login.Failure("Rate Limited (429): Too many requests - server is throttling")})

	if rec.Failed() != 1 {
		t.Errorf("Failed() = %d, want 1", rec.Failed())
	}

	rec.summarize()
	out := buf.String()
	if !strings.Contains(out, "[logindrill] attempt 1 loadtest1@gignut.com: success") {
		t.Errorf("missing success line: %s", out)
	}
	if !strings.Contains(out, "failure: Rate Limited (429)") {
		t.Errorf("missing failure line: %s", out)
	}
	if !strings.Contains(out, "[logindrill] done: 3 attempts, 2 ok, 1 failed") {
		t.Errorf("missing summary line: %s", out)
	}
}
