package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talktotext/talktotext/internal/client"
	"github.com/talktotext/talktotext/internal/models"
	"github.com/talktotext/talktotext/internal/storage"
)

type fakeAuthAPI struct {
	calls int
	resp  client.Response[client.AuthResult]
}

func (f *fakeAuthAPI) Login(context.Context, client.Credentials) client.Response[client.AuthResult] {
	f.calls++
	return f.resp
}

func (f *fakeAuthAPI) Register(context.Context, client.Registration) client.Response[client.AuthResult] {
	f.calls++
	return f.resp
}

func newManager(api API) (*Manager, storage.Store) {
	store := storage.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManager(api, store, NewAuthSignal(), logger), store
}

func okAuth(token string) client.Response[client.AuthResult] {
	return client.Response[client.AuthResult]{Data: client.AuthResult{
		Token: token,
		User:  &models.User{ID: "u1", Name: "Ada", Email: "ada@example.com"},
	}}
}

func TestLoginLogoutCycle(t *testing.T) {
	api := &fakeAuthAPI{resp: okAuth("tok")}
	m, store := newManager(api)

	changes, cancel := m.Signal().Subscribe()
	defer cancel()

	assert.False(t, m.IsLoggedIn())

	sess, err := m.Login(context.Background(), "ada@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.Token)
	assert.True(t, m.IsLoggedIn())
	assert.True(t, <-changes)

	u := m.User()
	require.NotNil(t, u)
	assert.Equal(t, "Ada", u.Name)

	view, err := m.Logout()
	require.NoError(t, err)
	assert.Equal(t, DefaultView, view)
	assert.False(t, m.IsLoggedIn())
	assert.Nil(t, m.User())
	assert.False(t, <-changes)

	_, ok := store.Get(storage.UserKey)
	assert.False(t, ok)
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	api := &fakeAuthAPI{resp: client.Response[client.AuthResult]{Error: "Invalid credentials"}}
	m, store := newManager(api)
	require.NoError(t, store.Set(storage.TokenKey, "old"))

	changes, cancel := m.Signal().Subscribe()
	defer cancel()

	_, err := m.Login(context.Background(), "ada@example.com", "wrong")
	require.EqualError(t, err, "Invalid credentials")

	tok, _ := store.Get(storage.TokenKey)
	assert.Equal(t, "old", tok)
	assert.Empty(t, changes)
}

// tokenWritingAPI stores the token itself on success, like the gateway does.
type tokenWritingAPI struct {
	store storage.Store
	resp  client.Response[client.AuthResult]
}

func (f *tokenWritingAPI) Login(context.Context, client.Credentials) client.Response[client.AuthResult] {
	if f.resp.OK() && f.resp.Data.Token != "" {
		_ = f.store.Set(storage.TokenKey, f.resp.Data.Token)
	}
	return f.resp
}

func (f *tokenWritingAPI) Register(ctx context.Context, _ client.Registration) client.Response[client.AuthResult] {
	return f.Login(ctx, client.Credentials{})
}

// userRejectingStore fails writes of the user profile.
type userRejectingStore struct {
	*storage.MemoryStore
}

func (s userRejectingStore) Set(key, value string) error {
	if key == storage.UserKey {
		return errors.New("disk full")
	}
	return s.MemoryStore.Set(key, value)
}

func TestFailedPersistRestoresPreviousSession(t *testing.T) {
	tests := []struct {
		name     string
		oldToken string
	}{
		{name: "anonymous before", oldToken: ""},
		{name: "other session before", oldToken: "old"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := userRejectingStore{storage.NewMemoryStore()}
			if tt.oldToken != "" {
				require.NoError(t, store.Set(storage.TokenKey, tt.oldToken))
			}
			api := &tokenWritingAPI{store: store, resp: okAuth("new")}
			m := NewManager(api, store, NewAuthSignal(), slog.New(slog.NewTextHandler(io.Discard, nil)))

			changes, cancel := m.Signal().Subscribe()
			defer cancel()

			_, err := m.Login(context.Background(), "ada@example.com", "pw")
			require.ErrorContains(t, err, "disk full")

			tok, ok := store.Get(storage.TokenKey)
			assert.Equal(t, tt.oldToken != "", ok)
			assert.Equal(t, tt.oldToken, tok)
			assert.Empty(t, changes)
		})
	}
}

func TestLoginWithoutTokenIsAnError(t *testing.T) {
	api := &fakeAuthAPI{resp: client.Response[client.AuthResult]{Data: client.AuthResult{}}}
	m, _ := newManager(api)

	_, err := m.Login(context.Background(), "ada@example.com", "pw")
	assert.ErrorIs(t, err, ErrNoToken)
	assert.False(t, m.IsLoggedIn())
}

func TestMissingCredentialsRejectedBeforeNetwork(t *testing.T) {
	api := &fakeAuthAPI{resp: okAuth("tok")}
	m, _ := newManager(api)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() error
	}{
		{"login no email", func() error { _, err := m.Login(ctx, "", "pw"); return err }},
		{"login bad email", func() error { _, err := m.Login(ctx, "not-an-email", "pw"); return err }},
		{"login no password", func() error { _, err := m.Login(ctx, "a@b.co", ""); return err }},
		{"register no name", func() error {
			_, err := m.Register(ctx, client.Registration{Email: "a@b.co", Password: "pw"})
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.run(), ErrMissingCredentials)
		})
	}
	assert.Zero(t, api.calls)
}

func TestRegister(t *testing.T) {
	api := &fakeAuthAPI{resp: okAuth("new")}
	m, _ := newManager(api)

	sess, err := m.Register(context.Background(), client.Registration{
		Name: "Ada", Email: " ada@example.com ", Phone: "555", Password: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, "new", sess.Token)
	assert.True(t, m.IsLoggedIn())
}

func TestIsLoggedInIgnoresExpiry(t *testing.T) {
	m, store := newManager(&fakeAuthAPI{})
	require.NoError(t, store.Set(storage.TokenKey, "expired-long-ago"))
	assert.True(t, m.IsLoggedIn())
}
