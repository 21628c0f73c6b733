package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginAndValidate(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	svc := NewService("test-secret", hash, time.Hour)

	token, err := svc.Login("hunter2")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
}

func TestLoginWrongPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	svc := NewService("test-secret", hash, time.Hour)
	_, err = svc.Login("wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWithoutHash(t *testing.T) {
	svc := NewService("test-secret", "", time.Hour)
	_, err := svc.Login("anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateRejectsForeignToken(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	issuer := NewService("secret-a", hash, time.Hour)
	verifier := NewService("secret-b", hash, time.Hour)

	token, err := issuer.Login("hunter2")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	svc := NewService("test-secret", hash, -time.Hour)
	token, err := svc.Login("hunter2")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
