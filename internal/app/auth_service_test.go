package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuchat/internal/pkg/jwtutil"
)

func TestRegisterAndLogin(t *testing.T) {
	svc := NewAuthService(newFakeUserStore(), "test-secret", time.Hour)

	registered, err := svc.Register(RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "longenoughpw",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, registered.Token)

	claims, err := jwtutil.ParseToken("test-secret", registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)

	loggedIn, err := svc.Login(LoginInput{Username: "alice", Password: "longenoughpw"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := NewAuthService(newFakeUserStore(), "test-secret", time.Hour)

	_, err := svc.Register(RegisterInput{Username: "bob", Email: "bob@example.com", Password: "longenoughpw"})
	require.NoError(t, err)

	_, err = svc.Register(RegisterInput{Username: "bob", Email: "bob2@example.com", Password: "longenoughpw"})
	assert.ErrorIs(t, err, ErrUsernameExists)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewAuthService(newFakeUserStore(), "test-secret", time.Hour)

	_, err := svc.Register(RegisterInput{Username: "carol", Email: "carol@example.com", Password: "longenoughpw"})
	require.NoError(t, err)

	_, err = svc.Login(LoginInput{Username: "carol", Password: "wrongpassword"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestRegisterShortPassword(t *testing.T) {
	svc := NewAuthService(newFakeUserStore(), "test-secret", time.Hour)

	_, err := svc.Register(RegisterInput{Username: "dave", Email: "dave@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
