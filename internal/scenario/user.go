// Package scenario drives simulated users through the login flow: pick a
// credential, dispatch the request, classify the envelope, record the
// verdict. How many users run, and over what transport, is the caller's
// business.
package scenario

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/gignut/logindrill/internal/accounts"
	"github.com/gignut/logindrill/internal/login"
)

// Dispatcher delivers one login request and reports what came back.
// Implementations map every transport-level failure (timeout, connection
// reset, DNS) to an Envelope with StatusCode 0 and a nil error. A non-nil
// error means the attempt was abandoned before completion and must not be
// classified.
type Dispatcher interface {
	Dispatch(ctx context.Context, req login.Request) (login.Envelope, error)
}

// Recorder receives the verdict of every completed attempt. It must be
// safe for concurrent use when users share one recorder.
type Recorder interface {
	Record(res Result)
}

// Result is one classified login attempt.
type Result struct {
	User    string // simulated user id
	Attempt int    // 1-based attempt counter, informational only
	Email   string // identifier sent
	Outcome login.Outcome
}

// User is one simulated user. Each user owns its attempt counter and
// think-time policy; the credential pool and dispatcher are shared.
type User struct {
	id         string
	pool       *accounts.Pool
	dispatcher Dispatcher
	recorder   Recorder
	think      ThinkTime
	attempts   int
}

// Option tweaks a User at build time.
type Option func(*User)

// WithRecorder routes verdicts to rec.
func WithRecorder(rec Recorder) Option {
	return func(u *User) { u.recorder = rec }
}

// WithThinkTime overrides the pause drawn between attempts.
func WithThinkTime(t ThinkTime) Option {
	return func(u *User) { u.think = t }
}

// NewUser builds a simulated user over an already-populated pool.
func NewUser(pool *accounts.Pool, d Dispatcher, opts ...Option) *User {
	u := &User{
		id:         ulid.Make().String(),
		pool:       pool,
		dispatcher: d,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// ID returns the user's ULID.
func (u *User) ID() string {
	return u.id
}

// Attempts reports how many attempts this user has issued.
func (u *User) Attempts() int {
	return u.attempts
}

// Attempt runs one iteration: pick, dispatch, classify, record. Classified
// failures are data on the Result, not errors; the returned error is
// reserved for pool misuse and abandoned dispatches.
func (u *User) Attempt(ctx context.Context) (Result, error) {
	cred, err := u.pool.Pick()
	if err != nil {
		return Result{}, err
	}
	u.attempts++

	ctx = WithAttemptInfo(ctx, AttemptInfo{User: u.id, Attempt: u.attempts})
	env, err := u.dispatcher.Dispatch(ctx, login.NewRequest(cred))
	if err != nil {
		return Result{}, err
	}

	res := Result{
		User:    u.id,
		Attempt: u.attempts,
		Email:   cred.Email,
		Outcome: login.Classify(env, cred.Email),
	}
	if u.recorder != nil {
		u.recorder.Record(res)
	}
	return res, nil
}

// Run loops Attempt with a think-time pause until ctx ends. Cancellation
// is a normal stop and returns nil; anything else propagates.
func (u *User) Run(ctx context.Context) error {
	for {
		if _, err := u.Attempt(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		timer := time.NewTimer(u.think.Next())
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}
