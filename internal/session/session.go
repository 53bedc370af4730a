// Package session owns the client's authentication state: the bearer
// token and the user profile it belongs to.  A Manager is built once at
// the composition root and handed to everything that needs to read or
// change the session; there is no package-level instance.
//
// The token and profile are always set and cleared together.  Whether
// the session is authenticated, or administrative, is derived from them
// on every read and never stored separately.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/event-reservation-web/internal/model"
	"github.com/iliyamo/event-reservation-web/internal/storage"
	"github.com/iliyamo/event-reservation-web/internal/utils"
)

// Storage keys shared with every client of the same store.
const (
	TokenKey = "authToken"
	UserKey  = "authUser"
)

// Landing locations used for the navigation side effects.
const (
	HomeLocation  = "/"
	LoginLocation = "/login"
)

// State is the lifecycle position of a Manager.
type State int

const (
	Initializing State = iota
	LoggedOut
	LoggedIn
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case LoggedOut:
		return "logged-out"
	case LoggedIn:
		return "logged-in"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrEmptyToken is returned by Login when no token is given.
var ErrEmptyToken = errors.New("session: empty token")

// Navigator performs the navigation side effects of login and logout.
type Navigator interface {
	Navigate(location string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(location string)

func (f NavigatorFunc) Navigate(location string) { f(location) }

// Manager holds the session.  It is safe for concurrent use; all writes
// go through Login and Logout.
type Manager struct {
	store storage.Store
	nav   Navigator
	log   *zap.Logger
	now   func() time.Time

	initOnce sync.Once

	mu          sync.RWMutex
	initialized bool
	token       string
	user        *model.UserProfile
}

// Option customizes a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager returns a Manager in the Initializing state.  Call Init
// before reading it.  A nil navigator discards navigation requests.
func NewManager(store storage.Store, nav Navigator, logger *zap.Logger, opts ...Option) *Manager {
	if nav == nil {
		nav = NavigatorFunc(func(string) {})
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{store: store, nav: nav, log: logger, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init restores the persisted session.  It runs at most once; later
// calls return immediately.  Init never fails: missing, partial, corrupt
// or expired data leaves the session logged out.
func (m *Manager) Init(ctx context.Context) {
	m.initOnce.Do(func() {
		token, user := m.restore(ctx)
		m.mu.Lock()
		m.token, m.user = token, user
		m.initialized = true
		m.mu.Unlock()
	})
}

func (m *Manager) restore(ctx context.Context) (string, *model.UserProfile) {
	token, err := m.store.Get(ctx, TokenKey)
	if err != nil {
		m.unreadable(ctx, "token", err)
		return "", nil
	}
	rawUser, err := m.store.Get(ctx, UserKey)
	if err != nil {
		m.unreadable(ctx, "user", err)
		return "", nil
	}
	if token == "" || rawUser == "" {
		return "", nil
	}

	var user *model.UserProfile
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil || user == nil {
		m.log.Error("failed to parse persisted user, clearing session", zap.Error(err))
		m.clearPersisted(ctx)
		return "", nil
	}
	if info, err := utils.InspectToken(token); err == nil && info.Expired(m.now()) {
		m.log.Info("persisted token has expired, clearing session",
			zap.Time("expired_at", info.ExpiresAt))
		m.clearPersisted(ctx)
		return "", nil
	}
	return token, user
}

// unreadable handles a failed read of key.  Anything but a missing key
// means the stored session cannot be trusted, so it is cleared.
func (m *Manager) unreadable(ctx context.Context, key string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	m.log.Error("reading persisted session failed, clearing session", zap.String("key", key), zap.Error(err))
	m.clearPersisted(ctx)
}

func (m *Manager) clearPersisted(ctx context.Context) {
	if err := m.store.Delete(ctx, TokenKey, UserKey); err != nil {
		m.log.Warn("clearing persisted session failed", zap.Error(err))
	}
}

// Login persists token and user, then replaces the in-memory session,
// then navigates to HomeLocation.  If persisting fails the in-memory
// session is left untouched and no navigation happens.
func (m *Manager) Login(ctx context.Context, token string, user model.UserProfile) error {
	m.Init(ctx)
	if token == "" {
		return ErrEmptyToken
	}
	user = cloneProfile(user)
	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encoding user: %w", err)
	}
	if err := m.store.Set(ctx, TokenKey, token); err != nil {
		return fmt.Errorf("persisting token: %w", err)
	}
	if err := m.store.Set(ctx, UserKey, string(rawUser)); err != nil {
		return fmt.Errorf("persisting user: %w", err)
	}

	m.mu.Lock()
	m.token, m.user = token, &user
	m.mu.Unlock()

	m.log.Info("logged in", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	m.nav.Navigate(HomeLocation)
	return nil
}

// Logout clears the persisted and in-memory session and navigates to
// LoginLocation.  The in-memory session is cleared even when the store
// fails; the store error is returned.
func (m *Manager) Logout(ctx context.Context) error {
	m.Init(ctx)
	err := m.store.Delete(ctx, TokenKey, UserKey)

	m.mu.Lock()
	m.token, m.user = "", nil
	m.mu.Unlock()

	m.log.Info("logged out")
	m.nav.Navigate(LoginLocation)
	if err != nil {
		return fmt.Errorf("clearing persisted session: %w", err)
	}
	return nil
}

// Token returns the bearer token, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return ""
	}
	return m.token
}

// User returns a copy of the current profile.
func (m *Manager) User() (model.UserProfile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil || m.token == "" {
		return model.UserProfile{}, false
	}
	return cloneProfile(*m.user), true
}

// IsAuthenticated is true iff both a token and a profile are held.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != "" && m.user != nil
}

// IsAdmin is true iff the current profile carries model.RoleAdmin.
func (m *Manager) IsAdmin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil && m.user.HasRole(model.RoleAdmin)
}

// IsLoading is true until Init has completed.
func (m *Manager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return !m.initialized
}

// State reports the lifecycle position.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	switch {
	case !m.initialized:
		return Initializing
	case m.token != "" && m.user != nil:
		return LoggedIn
	default:
		return LoggedOut
	}
}

func cloneProfile(u model.UserProfile) model.UserProfile {
	if u.Roles != nil {
		u.Roles = append([]string(nil), u.Roles...)
	}
	return u
}
