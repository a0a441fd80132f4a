package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(tokenEnv, "")
	return home
}

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestGetToken_NotLoggedIn(t *testing.T) {
	isolateHome(t)
	ti, err := GetToken()
	require.NoError(t, err)
	assert.Nil(t, ti)

	owner, err := Owner()
	require.NoError(t, err)
	assert.Equal(t, LocalOwner, owner)
}

func TestSetToken_RoundTrip(t *testing.T) {
	home := isolateHome(t)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := signed(t, jwt.MapClaims{"sub": "user-42", "email": "a@b.c", "exp": exp.Unix()})

	require.NoError(t, SetToken("Bearer "+tok, nil))

	fi, err := os.Stat(filepath.Join(home, ".journal", credFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	ti, err := GetToken()
	require.NoError(t, err)
	require.NotNil(t, ti)
	assert.Equal(t, tok, ti.Token)
	assert.Equal(t, "file", ti.Source)
	require.NotNil(t, ti.ExpiresAt)
	assert.True(t, exp.Equal(*ti.ExpiresAt))

	owner, err := Owner()
	require.NoError(t, err)
	assert.Equal(t, "user-42", owner)

	require.NoError(t, DeleteToken())
	require.NoError(t, DeleteToken(), "deleting twice is fine")
	ti, err = GetToken()
	require.NoError(t, err)
	assert.Nil(t, ti)
}

func TestGetToken_EnvWins(t *testing.T) {
	isolateHome(t)
	require.NoError(t, SetToken("from-file", nil))
	t.Setenv(tokenEnv, "bearer from-env")

	ti, err := GetToken()
	require.NoError(t, err)
	assert.Equal(t, "from-env", ti.Token)
	assert.Equal(t, "env", ti.Source)
}

func TestSetToken_Empty(t *testing.T) {
	isolateHome(t)
	assert.Error(t, SetToken("   ", nil))
}

func TestInspect(t *testing.T) {
	id, err := Inspect(signed(t, jwt.MapClaims{"email": "only@mail.test"}))
	require.NoError(t, err)
	assert.Empty(t, id.Subject)
	assert.Equal(t, "only@mail.test", id.Email)
	assert.Nil(t, id.ExpiresAt)

	_, err = Inspect("opaque-token")
	assert.Error(t, err)
}

func TestOwner_OpaqueTokenIsLocal(t *testing.T) {
	isolateHome(t)
	require.NoError(t, SetToken("opaque-token", nil))
	owner, err := Owner()
	require.NoError(t, err)
	assert.Equal(t, LocalOwner, owner)
}
