// Package accounts provides the synthetic test-account pool shared by
// simulated users.
package accounts

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
)

const (
	// DefaultPoolSize matches the number of accounts provisioned for the
	// load-test tenant.
	DefaultPoolSize = 100
	// DefaultDomain is the mail domain of every synthetic identifier.
	DefaultDomain = "gignut.com"
	// DefaultPassword is the password shared by every synthetic account.
	DefaultPassword = "TestPass123!"
)

// ErrUninitialized is returned when a credential is requested before the
// pool has been populated.
var ErrUninitialized = errors.New("account pool not initialized")

// Credential is one synthetic test account.
type Credential struct {
	Email    string
	Password string
}

// Pool is an immutable set of synthetic credentials with uniform random
// selection. Build one with New, or share one process-wide through
// Initialize.
type Pool struct {
	creds []Credential
	intn  func(n int) int
}

// New builds a pool of size credentials following the loadtest{i}@{domain}
// identifier template, i starting at 1. Every credential carries the same
// password.
func New(size int, domain, password string) (*Pool, error) {
	if size < 1 {
		return nil, fmt.Errorf("pool size must be >= 1, got %d", size)
	}
	if domain == "" {
		return nil, errors.New("email domain cannot be empty")
	}
	if password == "" {
		return nil, errors.New("shared password cannot be empty")
	}

	creds := make([]Credential, size)
	for i := range creds {
		creds[i] = Credential{
			Email:    fmt.Sprintf("loadtest%d@%s", i+1, domain),
			Password: password,
		}
	}
	return &Pool{creds: creds, intn: rand.Intn}, nil
}

// Pick returns a uniformly random credential. Selections are independent;
// the same account may come back on consecutive calls.
func (p *Pool) Pick() (Credential, error) {
	if p == nil || len(p.creds) == 0 {
		return Credential{}, ErrUninitialized
	}
	return p.creds[p.intn(len(p.creds))], nil
}

// Len reports how many credentials the pool holds.
func (p *Pool) Len() int {
	if p == nil {
		return 0
	}
	return len(p.creds)
}

// Credentials returns a copy of the pool contents in identifier order.
func (p *Pool) Credentials() []Credential {
	if p == nil {
		return nil
	}
	out := make([]Credential, len(p.creds))
	copy(out, p.creds)
	return out
}

var (
	sharedMu sync.Mutex
	shared   *Pool
)

// Initialize populates the process-wide pool on first call and returns it.
// Later calls return the already-built pool unchanged whatever arguments
// they carry, so concurrent callers always observe the same credentials.
func Initialize(size int, domain, password string) (*Pool, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared != nil {
		return shared, nil
	}
	p, err := New(size, domain, password)
	if err != nil {
		return nil, err
	}
	shared = p
	return shared, nil
}

// Shared returns the process-wide pool, or ErrUninitialized when Initialize
// has not run yet.
func Shared() (*Pool, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if shared == nil {
		return nil, ErrUninitialized
	}
	return shared, nil
}
