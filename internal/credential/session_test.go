package credential

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type mapStore struct {
	values  map[string]string
	setErr  error
	missing error
}

func newMapStore() *mapStore {
	return &mapStore{values: make(map[string]string), missing: errors.New("not found")}
}

func (m *mapStore) Get(key string) (string, error) {
	v, ok := m.values[key]
	if !ok {
		return "", m.missing
	}
	return v, nil
}

func (m *mapStore) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mapStore) Delete(key string) error {
	delete(m.values, key)
	return nil
}

type fakeReconciler struct {
	migrations int
	clears     int
}

func (f *fakeReconciler) Migrate(ctx context.Context) { f.migrations++ }
func (f *fakeReconciler) Clear(ctx context.Context)   { f.clears++ }

func TestLoginStoresTokenAndMigrates(t *testing.T) {
	store := newMapStore()
	rec := &fakeReconciler{}
	s := NewSessionWith(store)
	s.Bind(rec)

	require.NoError(t, s.Login(context.Background(), "tok-123", "me@example.com"))

	token, ok := s.Token()
	require.True(t, ok)
	require.Equal(t, "tok-123", token)
	require.Equal(t, "me@example.com", s.OwnerTag())
	require.Equal(t, "tok-123", store.values[tokenKey])
	require.Equal(t, 1, rec.migrations)
	require.Equal(t, 0, rec.clears)
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	s := NewSessionWith(newMapStore())
	require.Error(t, s.Login(context.Background(), "", "me@example.com"))

	_, ok := s.Token()
	require.False(t, ok)
}

func TestLoginKeyringFailureLeavesGuest(t *testing.T) {
	store := newMapStore()
	store.setErr = errors.New("keyring locked")
	rec := &fakeReconciler{}
	s := NewSessionWith(store)
	s.Bind(rec)

	require.Error(t, s.Login(context.Background(), "tok-123", "me@example.com"))

	_, ok := s.Token()
	require.False(t, ok)
	require.Equal(t, 0, rec.migrations)
}

func TestLogoutClearsEverything(t *testing.T) {
	store := newMapStore()
	rec := &fakeReconciler{}
	s := NewSessionWith(store)
	s.Bind(rec)

	require.NoError(t, s.Login(context.Background(), "tok-123", "me@example.com"))
	require.NoError(t, s.Logout(context.Background()))

	_, ok := s.Token()
	require.False(t, ok)
	require.Empty(t, s.OwnerTag())
	require.NotContains(t, store.values, tokenKey)
	require.Equal(t, 1, rec.clears)
}

func TestResume(t *testing.T) {
	store := newMapStore()
	store.values[tokenKey] = "stored-token"
	s := NewSessionWith(store)
	s.Resume()

	token, ok := s.Token()
	require.True(t, ok)
	require.Equal(t, "stored-token", token)
}

func TestResumeWithoutStoredCredentialStaysGuest(t *testing.T) {
	s := NewSessionWith(newMapStore())
	s.Resume()

	_, ok := s.Token()
	require.False(t, ok)
}
