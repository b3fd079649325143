package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_GenerateAndValidate(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	token, expiresAt, err := tm.Generate("user-1", "hosp-1", "APOLLO-DEL", "hospital_admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "hosp-1", claims.HospitalID)
	assert.Equal(t, "APOLLO-DEL", claims.HospitalCode)
	assert.Equal(t, "hospital_admin", claims.Role)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", time.Hour)
	other := NewTokenManager("secret-b", time.Hour)

	token, _, err := tm.Generate("user-1", "hosp-1", "APOLLO-DEL", "hospital_admin")
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute)

	token, _, err := tm.Generate("user-1", "hosp-1", "APOLLO-DEL", "hospital_admin")
	require.NoError(t, err)

	_, err = tm.Validate(token)
	assert.Error(t, err)
}

func TestTokenManager_RejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour)

	_, err := tm.Validate("not-a-token")
	assert.Error(t, err)
}

func TestPasswordManager_HashAndVerify(t *testing.T) {
	pm := NewPasswordManager()

	hash, err := pm.HashPassword("s3cure-password")
	require.NoError(t, err)
	require.NotEqual(t, "s3cure-password", hash)

	ok, err := pm.VerifyPassword(hash, "s3cure-password")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = pm.VerifyPassword(hash, "wrong-password")
	require.NoError(t, err)
	assert.False(t, ok)
}
