// Command loginserver is a disposable login endpoint to drill against
// locally. It accepts every loadtestN identifier with the shared password,
// throttles above -rate, and its -misbehave modes reproduce the failure
// shapes the drill classifies: mangled JSON, missing token, wrong
// structure, backend errors, and (with -delay above the client timeout)
// transport failures.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

type misbehaveMode string

const (
	modeNormal       misbehaveMode = ""
	modeBadJSON      misbehaveMode = "bad-json"
	modeMissingToken misbehaveMode = "missing-token"
	modeBadShape     misbehaveMode = "bad-shape"
	modeServerError  misbehaveMode = "server-error"
	modeTeapot       misbehaveMode = "teapot"
)

type server struct {
	password  string
	limiter   *rate.Limiter
	misbehave misbehaveMode
	delay     time.Duration
}

func main() {
	port := flag.Int("port", 9090, "Listening port")
	password := flag.String("password", "TestPass123!", "Accepted password")
	rps := flag.Float64("rate", 0, "Requests per second before throttling (0 disables)")
	misbehave := flag.String("misbehave", "", "Failure mode: bad-json, missing-token, bad-shape, server-error, teapot")
	delay := flag.Duration("delay", 0, "Fixed delay before responding")
	flag.Parse()

	switch misbehaveMode(*misbehave) {
	case modeNormal, modeBadJSON, modeMissingToken, modeBadShape, modeServerError, modeTeapot:
	default:
		log.Fatalf("unknown misbehave mode %q", *misbehave)
	}

	s := &server{
		password:  *password,
		misbehave: misbehaveMode(*misbehave),
		delay:     *delay,
	}
	if *rps > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(*rps), int(*rps)+1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/auth/login", s.handleLogin)

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("login server listening on %s (misbehave=%q rate=%g delay=%s)", addr, *misbehave, *rps, *delay)
	log.Fatal(http.ListenAndServe(addr, mux))
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		return
	}
	if s.limiter != nil && !s.limiter.Allow() {
		respondJSON(w, http.StatusTooManyRequests, map[string]any{"error": "too many requests"})
		return
	}
	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
		return
	}
	if payload.Email == "" || payload.Password == "" {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "email and password are required"})
		return
	}
	if payload.Password != s.password || !strings.HasPrefix(payload.Email, "loadtest") {
		respondJSON(w, http.StatusUnauthorized, map[string]any{"error": "invalid email or password"})
		return
	}

	switch s.misbehave {
	case modeBadJSON:
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "<html><body>gateway timeout</body></html>")
	case modeMissingToken:
		respondJSON(w, http.StatusOK, map[string]any{
			"user":    userFor(payload.Email),
			"session": map[string]any{"token_type": "bearer", "expires_in": 3600},
		})
	case modeBadShape:
		respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	case modeServerError:
		respondJSON(w, http.StatusInternalServerError, map[string]any{"error": "backend exploded"})
	case modeTeapot:
		respondJSON(w, http.StatusTeapot, map[string]any{"error": "unhandled status"})
	default:
		respondJSON(w, http.StatusOK, map[string]any{
			"user": userFor(payload.Email),
			"session": map[string]any{
				"access_token": fmt.Sprintf("tok-%d", time.Now().UnixNano()),
				"token_type":   "bearer",
				"expires_in":   3600,
			},
		})
	}
}

func userFor(email string) map[string]any {
	return map[string]any{
		"id":    strings.SplitN(email, "@", 2)[0],
		"email": email,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
