package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/placement/core"
)

var (
	ErrNoSession        = errors.New("no session stored")
	ErrNotAuthenticated = errors.New("please log in")
	ErrForbidden        = errors.New("you are not allowed to do this")

	nowFunc = time.Now // mockable
)

type (
	// Store persists the session between runs.
	Store interface {
		Load() (Session, error) // ErrNoSession when absent
		Save(s Session) error
		Clear() error
	}

	Gateway interface {
		Login(ctx context.Context, creds Credentials) (Session, error)
	}

	Service struct {
		gw        Gateway
		store     Store
		validator *core.Validator
	}
)

func NewService(gw Gateway, store Store, validator *core.Validator) *Service {
	return &Service{gw: gw, store: store, validator: validator}
}

// Login authenticates and stores the session.
func (svc *Service) Login(ctx context.Context, email, password string) (Session, error) {
	creds := Credentials{Email: core.CleanString(email, true /* lower */), Password: password}
	if err := svc.validator.Struct(creds); err != nil {
		return Session{}, err
	}
	s, err := svc.gw.Login(ctx, creds)
	if err != nil {
		return Session{}, errors.Wrap(err, "logging in")
	}
	if err = svc.store.Save(s); err != nil {
		return Session{}, errors.Wrap(err, "saving session")
	}
	return s, nil
}

// Logout forgets the stored session.
func (svc *Service) Logout() error {
	return svc.store.Clear()
}

// Guard is the single place front ends check who is logged in.
type Guard struct {
	store Store
}

func NewGuard(store Store) *Guard {
	return &Guard{store: store}
}

// Current returns the stored session. Missing or expired sessions yield
// ErrNotAuthenticated; an expired one is cleared.
func (g *Guard) Current() (Session, error) {
	s, err := g.store.Load()
	if err != nil {
		if errors.Cause(err) == ErrNoSession {
			return Session{}, ErrNotAuthenticated
		}
		return Session{}, errors.Wrap(err, "loading session")
	}
	if s.Expired(nowFunc()) {
		_ = g.store.Clear()
		return Session{}, errors.Wrap(ErrNotAuthenticated, "session expired")
	}
	return s, nil
}

// Require returns the current session if its user holds one of roles (any role when none given).
func (g *Guard) Require(roles ...Role) (Session, error) {
	s, err := g.Current()
	if err != nil {
		return Session{}, err
	}
	if len(roles) > 0 && !s.User.HasRole(roles...) {
		return Session{}, ErrForbidden
	}
	return s, nil
}

// Token returns the bearer token of a usable session, or "" when logged out.
func (g *Guard) Token() string {
	s, err := g.Current()
	if err != nil {
		return ""
	}
	return s.Token
}

// MemoryStore keeps the session in memory.
type MemoryStore struct {
	mu  sync.RWMutex
	s   Session
	set bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (ms *MemoryStore) Load() (Session, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	if !ms.set {
		return Session{}, ErrNoSession
	}
	return ms.s, nil
}

func (ms *MemoryStore) Save(s Session) error {
	ms.mu.Lock()
	ms.s, ms.set = s, true
	ms.mu.Unlock()
	return nil
}

func (ms *MemoryStore) Clear() error {
	ms.mu.Lock()
	ms.s, ms.set = Session{}, false
	ms.mu.Unlock()
	return nil
}
