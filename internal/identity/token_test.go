package identity

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/tplans/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer([]byte("secret"), time.Hour)
	user := domain.SessionUser{ID: "u1", Email: "u1@example.com", DisplayName: "U One"}

	token, exp, err := issuer.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	got, _, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestTokenIssuer_RejectsForeignSecret(t *testing.T) {
	token, _, err := NewTokenIssuer([]byte("a"), time.Hour).Issue(domain.SessionUser{ID: "u1"})
	require.NoError(t, err)

	_, _, err = NewTokenIssuer([]byte("b"), time.Hour).Parse(token)
	assert.ErrorIs(t, err, domain.ErrNotSignedIn)
}

func TestTokenIssuer_RejectsNoneAlgorithm(t *testing.T) {
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "u1",
		"iss": tokenIssuer,
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, _, err = NewTokenIssuer([]byte("a"), time.Hour).Parse(unsigned)
	assert.ErrorIs(t, err, domain.ErrNotSignedIn)
}

func TestPassword(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	hash, err := HashPassword("longenough")
	require.NoError(t, err)
	assert.NoError(t, CheckPassword(hash, "longenough"))
	assert.ErrorIs(t, CheckPassword(hash, "nope"), domain.ErrInvalidCredential)
}

func TestFileSessionStore(t *testing.T) {
	store := NewFileSessionStore(filepath.Join(t.TempDir(), "nested", "session.json"))

	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save("abc"))
	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)
}
