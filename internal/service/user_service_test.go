package service

import (
	"context"
	"testing"

	"medstock/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	location := env.seedLocation(t, "Pune", "Maharashtra")

	t.Run("registers a supervisor", func(t *testing.T) {
		user, err := env.users.Register(ctx, RegisterRequest{
			Name:       "Sia",
			Email:      "sia@example.com",
			Password:   "secret123",
			Role:       model.RoleSupervisor,
			LocationID: location.ID.String(),
		})
		require.NoError(t, err)
		assert.Equal(t, model.RoleSupervisor, user.Role)
		assert.Equal(t, "sia@example.com", user.Email)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		_, err := env.users.Register(ctx, RegisterRequest{
			Name:       "Sia Again",
			Email:      "sia@example.com",
			Password:   "secret123",
			Role:       model.RoleVendor,
			LocationID: location.ID.String(),
		})
		assert.ErrorIs(t, err, ErrEmailExists)
	})

	t.Run("rejects admin self-registration", func(t *testing.T) {
		_, err := env.users.Register(ctx, RegisterRequest{
			Name:       "Root",
			Email:      "root@example.com",
			Password:   "secret123",
			Role:       model.RoleAdmin,
			LocationID: location.ID.String(),
		})
		assert.Error(t, err)
	})

	t.Run("rejects unknown location", func(t *testing.T) {
		_, err := env.users.Register(ctx, RegisterRequest{
			Name:       "Nowhere",
			Email:      "nowhere@example.com",
			Password:   "secret123",
			Role:       model.RoleVendor,
			LocationID: uuid.NewString(),
		})
		assert.ErrorIs(t, err, ErrInvalidLocation)
	})
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	location := env.seedLocation(t, "Pune", "Maharashtra")

	registered, err := env.users.Register(ctx, RegisterRequest{
		Name:       "Vik",
		Email:      "vik@example.com",
		Password:   "hunter22",
		Role:       model.RoleVendor,
		LocationID: location.ID.String(),
	})
	require.NoError(t, err)

	t.Run("issues a token with sub and role claims", func(t *testing.T) {
		res, err := env.users.Login(ctx, LoginRequest{Email: "vik@example.com", Password: "hunter22"})
		require.NoError(t, err)
		require.NotEmpty(t, res.Token)

		token, err := jwt.Parse(res.Token, func(token *jwt.Token) (interface{}, error) {
			return []byte("default_super_secret_key"), nil
		})
		require.NoError(t, err)
		claims, ok := token.Claims.(jwt.MapClaims)
		require.True(t, ok)
		assert.Equal(t, registered.ID, claims["sub"])
		assert.Equal(t, model.RoleVendor, claims["role"])
	})

	t.Run("rejects wrong password", func(t *testing.T) {
		_, err := env.users.Login(ctx, LoginRequest{Email: "vik@example.com", Password: "wrong"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("rejects unknown email", func(t *testing.T) {
		_, err := env.users.Login(ctx, LoginRequest{Email: "ghost@example.com", Password: "hunter22"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestListVendors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	location := env.seedLocation(t, "Pune", "Maharashtra")

	env.seedUser(t, "Zed", "zed@example.com", model.RoleVendor, location)
	env.seedUser(t, "Amy", "amy@example.com", model.RoleVendor, location)
	env.seedUser(t, "Sia", "sia@example.com", model.RoleSupervisor, location)

	vendors, err := env.users.ListVendors(ctx)
	require.NoError(t, err)
	require.Len(t, vendors, 2)
	assert.Equal(t, "Amy", vendors[0].Name)
	assert.Equal(t, "Zed", vendors[1].Name)
	require.NotNil(t, vendors[0].Location)
	assert.Equal(t, "Pune, Maharashtra", *vendors[0].Location)
}
