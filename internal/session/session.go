// Package session tracks who is logged in and tells interested views when
// that changes.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/talktotext/talktotext/internal/client"
	"github.com/talktotext/talktotext/internal/events"
	"github.com/talktotext/talktotext/internal/models"
	"github.com/talktotext/talktotext/internal/storage"
)

// DefaultView is where the user lands after logging out.
const DefaultView = "/"

var (
	// ErrMissingCredentials is returned before any request when required fields are empty.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrNoToken is returned when the server accepted the call but sent no token.
	ErrNoToken = errors.New("no token received")
)

// AuthSignal notifies subscribers whenever the login state changes.
// The published value is the new IsLoggedIn result.
type AuthSignal struct {
	b *events.Broadcaster[bool]
}

// NewAuthSignal creates a signal with no subscribers.
func NewAuthSignal() *AuthSignal {
	return &AuthSignal{b: events.NewBroadcaster[bool](events.DefaultBuffer)}
}

// Subscribe registers for auth changes.
func (s *AuthSignal) Subscribe() (<-chan bool, func()) {
	return s.b.Subscribe()
}

func (s *AuthSignal) publish(loggedIn bool) {
	s.b.Publish(loggedIn)
}

// API is the part of the gateway the session needs.
type API interface {
	Login(ctx context.Context, creds client.Credentials) client.Response[client.AuthResult]
	Register(ctx context.Context, reg client.Registration) client.Response[client.AuthResult]
}

// Manager owns the persisted session.
type Manager struct {
	api      API
	store    storage.Store
	signal   *AuthSignal
	logger   *slog.Logger
	validate *validator.Validate
}

// NewManager creates a session manager. store must be the same store the
// gateway reads its bearer token from.
func NewManager(api API, store storage.Store, signal *AuthSignal, logger *slog.Logger) *Manager {
	if signal == nil {
		signal = NewAuthSignal()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		api:      api,
		store:    store,
		signal:   signal,
		logger:   logger,
		validate: validator.New(),
	}
}

// Signal returns the auth-changed observable.
func (m *Manager) Signal() *AuthSignal {
	return m.signal
}

// IsLoggedIn reports whether a token is persisted. It does not check
// expiry or revocation; a stale token counts until a request fails.
func (m *Manager) IsLoggedIn() bool {
	tok, ok := m.store.Get(storage.TokenKey)
	return ok && tok != ""
}

// User returns the persisted profile, or nil.
func (m *Manager) User() *models.User {
	raw, ok := m.store.Get(storage.UserKey)
	if !ok || raw == "" {
		return nil
	}
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		m.logger.Warn("ignoring unreadable stored user", "error", err)
		return nil
	}
	return &u
}

type loginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type registerInput struct {
	Name     string `validate:"required"`
	Email    string `validate:"required,email"`
	Phone    string
	Password string `validate:"required"`
}

// Login authenticates and persists the session.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.Session, error) {
	email = strings.TrimSpace(email)
	if err := m.validate.Struct(loginInput{Email: email, Password: password}); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingCredentials, fieldList(err))
	}

	prev := m.snapshot()
	resp := m.api.Login(ctx, client.Credentials{Email: email, Password: password})
	return m.establishOrRestore(resp, prev)
}

// Register creates an account and persists the session.
func (m *Manager) Register(ctx context.Context, reg client.Registration) (*models.Session, error) {
	reg.Email = strings.TrimSpace(reg.Email)
	in := registerInput{Name: strings.TrimSpace(reg.Name), Email: reg.Email, Phone: reg.Phone, Password: reg.Password}
	if err := m.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingCredentials, fieldList(err))
	}

	prev := m.snapshot()
	resp := m.api.Register(ctx, reg)
	return m.establishOrRestore(resp, prev)
}

// persisted is the stored session before an auth attempt.
type persisted map[string]*string

func (m *Manager) snapshot() persisted {
	snap := persisted{}
	for _, key := range []string{storage.TokenKey, storage.UserKey} {
		snap[key] = nil
		if v, ok := m.store.Get(key); ok {
			snap[key] = &v
		}
	}
	return snap
}

// restore puts the store back to snap. The gateway may already have
// written a new token by the time establish fails.
func (m *Manager) restore(snap persisted) {
	for key, v := range snap {
		var err error
		if v == nil {
			err = m.store.Clear(key)
		} else {
			err = m.store.Set(key, *v)
		}
		if err != nil {
			m.logger.Error("failed to restore session state", "key", key, "error", err)
		}
	}
}

func (m *Manager) establishOrRestore(resp client.Response[client.AuthResult], prev persisted) (*models.Session, error) {
	sess, err := m.establish(resp)
	if err != nil {
		m.restore(prev)
		return nil, err
	}
	return sess, nil
}

func (m *Manager) establish(resp client.Response[client.AuthResult]) (*models.Session, error) {
	if !resp.OK() {
		return nil, errors.New(resp.Error)
	}
	if resp.Data.Token == "" {
		return nil, ErrNoToken
	}

	if err := m.store.Set(storage.TokenKey, resp.Data.Token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}
	if resp.Data.User != nil {
		raw, err := json.Marshal(resp.Data.User)
		if err != nil {
			return nil, fmt.Errorf("marshal user: %w", err)
		}
		if err := m.store.Set(storage.UserKey, string(raw)); err != nil {
			return nil, fmt.Errorf("persist user: %w", err)
		}
	}

	m.logger.Info("logged in", "user_id", userID(resp.Data.User))
	m.signal.publish(true)
	return &models.Session{Token: resp.Data.Token, User: resp.Data.User}, nil
}

// Logout clears the persisted session and returns the view to show next.
func (m *Manager) Logout() (string, error) {
	var errs []error
	if err := m.store.Clear(storage.TokenKey); err != nil {
		errs = append(errs, fmt.Errorf("clear token: %w", err))
	}
	if err := m.store.Clear(storage.UserKey); err != nil {
		errs = append(errs, fmt.Errorf("clear user: %w", err))
	}

	m.logger.Info("logged out")
	m.signal.publish(m.IsLoggedIn())
	return DefaultView, errors.Join(errs...)
}

func userID(u *models.User) string {
	if u == nil {
		return ""
	}
	return u.ID
}

func fieldList(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "email" {
			fields = append(fields, "valid email")
			continue
		}
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return strings.Join(fields, ", ")
}
