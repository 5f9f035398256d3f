package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type FileStoreSuite struct {
	suite.Suite
	path  string
	store *FileStore
}

func (s *FileStoreSuite) SetupTest() {
	s.path = filepath.Join(s.T().TempDir(), "nested", "session.json")
	s.store = NewFileStore(s.path)
}

func TestFileStoreSuite(t *testing.T) {
	suite.Run(t, new(FileStoreSuite))
}

func (s *FileStoreSuite) TestLoadMissingFileIsAnonymous() {
	sess, err := s.store.Load()
	require.NoError(s.T(), err)
	assert.False(s.T(), sess.Authenticated)
	assert.Nil(s.T(), sess.User)
}

func (s *FileStoreSuite) TestSaveAndLoad() {
	want := New("tok-123", User{ID: "1", Name: "abdeslam", Role: "sales"})
	require.NoError(s.T(), s.store.Save(want))

	got, err := s.store.Load()
	require.NoError(s.T(), err)
	assert.True(s.T(), got.Authenticated)
	assert.Equal(s.T(), "tok-123", got.Token)
	require.NotNil(s.T(), got.User)
	assert.Equal(s.T(), *want.User, *got.User)

	info, err := os.Stat(s.path)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), os.FileMode(0o600), info.Mode().Perm())
}

func (s *FileStoreSuite) TestSaveWithoutTokenStoresMarker() {
	require.NoError(s.T(), s.store.Save(New("", User{ID: "7", Name: "manager"})))

	got, err := s.store.Load()
	require.NoError(s.T(), err)
	assert.Equal(s.T(), AuthenticatedMarker, got.Token)
}

func (s *FileStoreSuite) TestClearRemovesBothKeys() {
	require.NoError(s.T(), s.store.Save(New("tok", User{ID: "1", Name: "admin"})))
	require.NoError(s.T(), s.store.Clear())
	require.NoError(s.T(), s.store.Clear())

	got, err := s.store.Load()
	require.NoError(s.T(), err)
	assert.False(s.T(), got.Authenticated)
	_, statErr := os.Stat(s.path)
	assert.ErrorIs(s.T(), statErr, os.ErrNotExist)
}

func (s *FileStoreSuite) TestSaveAnonymousClears() {
	require.NoError(s.T(), s.store.Save(New("tok", User{ID: "1", Name: "admin"})))
	require.NoError(s.T(), s.store.Save(Anonymous()))

	got, err := s.store.Load()
	require.NoError(s.T(), err)
	assert.False(s.T(), got.Authenticated)
}

func (s *FileStoreSuite) TestMalformedFile() {
	require.NoError(s.T(), os.MkdirAll(filepath.Dir(s.path), 0o700))
	require.NoError(s.T(), os.WriteFile(s.path, []byte("not json"), 0o600))

	got, err := s.store.Load()
	assert.ErrorIs(s.T(), err, ErrInvalidSession)
	assert.False(s.T(), got.Authenticated)
}

func (s *FileStoreSuite) TestMalformedUserValue() {
	require.NoError(s.T(), os.MkdirAll(filepath.Dir(s.path), 0o700))
	raw := `{"auth_token":"authenticated","user":"{\"id\":\"\",\"name\":\"x\"}"}`
	require.NoError(s.T(), os.WriteFile(s.path, []byte(raw), 0o600))

	got, err := s.store.Load()
	assert.ErrorIs(s.T(), err, ErrInvalidSession)
	assert.False(s.T(), got.Authenticated)
}

func TestSaveRejectsAuthenticatedWithoutUser(t *testing.T) {
	store := NewMemoryStore()
	err := store.Save(Session{Authenticated: true, Token: "tok"})
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestMemoryStoreFlagWithoutUser(t *testing.T) {
	store := NewMemoryStore()
	store.Put(KeyAuthToken, AuthenticatedMarker)

	got, err := store.Load()
	assert.ErrorIs(t, err, ErrInvalidSession)
	assert.False(t, got.Authenticated)
}

func TestMemoryStoreUserWithoutFlagIsAnonymous(t *testing.T) {
	store := NewMemoryStore()
	store.Put(KeyUser, `{"id":"1","name":"admin"}`)

	got, err := store.Load()
	require.NoError(t, err)
	assert.False(t, got.Authenticated)
}
