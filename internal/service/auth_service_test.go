package service

import (
	"testing"
	"time"

	"waterball_lms_backend/internal/config"
	"waterball_lms_backend/internal/model"
	"waterball_lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(env *testEnv) *AuthService {
	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret"
	cfg.JWT.ExpireTime = time.Hour
	return NewAuthService(env.userRepo, cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	auth := newAuthService(env)

	user := &model.User{
		Username: "waterball",
		Email:    "waterball@example.com",
		Password: "super-secret",
	}
	require.NoError(t, auth.Register(user))
	assert.Equal(t, model.Student, user.Role)
	assert.Equal(t, 1, user.Level)
	assert.NotEqual(t, "super-secret", user.Password)

	t.Run("duplicate email rejected", func(t *testing.T) {
		err := auth.Register(&model.User{
			Username: "other",
			Email:    "waterball@example.com",
			Password: "whatever",
		})
		assert.ErrorIs(t, err, util.ErrEmailRegistered)
	})

	t.Run("login with valid credentials", func(t *testing.T) {
		token, loggedIn, err := auth.Login("waterball@example.com", "super-secret")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, user.ID, loggedIn.ID)

		claims, err := util.ParseJWT(token, "test-secret")
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		_, _, err := auth.Login("waterball@example.com", "wrong")
		assert.Error(t, err)
	})

	t.Run("unknown email rejected", func(t *testing.T) {
		_, _, err := auth.Login("nobody@example.com", "whatever")
		assert.Error(t, err)
	})
}
