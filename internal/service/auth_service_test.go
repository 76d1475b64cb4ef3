package service

import (
	"context"
	"estudiapro_backend/internal/model"
	"estudiapro_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerRequest(role model.UserRole) *RegisterRequest {
	return &RegisterRequest{
		Username:        "ana",
		Email:           "Ana@Example.com",
		Password:        "secreto123",
		PasswordConfirm: "secreto123",
		FirstName:       "Ana",
		LastName:        "Lopez",
		Role:            role,
		SchoolLevel:     "preparatoria",
		Specialty:       "Quimica",
		Permission:      "total",
	}
}

func TestRegister(t *testing.T) {
	h := newHarness(t)

	user, err := h.auth.Register(registerRequest(model.Student))
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)
	assert.NotEqual(t, "secreto123", user.Password)
	require.NotNil(t, user.StudentProfile)
	assert.Equal(t, "preparatoria", user.StudentProfile.SchoolLevel)
	assert.Nil(t, user.CreatorProfile)
	assert.Nil(t, user.AdminProfile)

	dup := registerRequest(model.Student)
	dup.Username = "otra"
	_, err = h.auth.Register(dup)
	assert.ErrorIs(t, err, util.ErrEmailRegistered)

	dup = registerRequest(model.Student)
	dup.Email = "otra@example.com"
	_, err = h.auth.Register(dup)
	assert.ErrorIs(t, err, util.ErrUsernameTaken)
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)

	mismatch := registerRequest(model.Creator)
	mismatch.PasswordConfirm = "otra-cosa"
	_, err := h.auth.Register(mismatch)
	assert.ErrorIs(t, err, util.ErrValidation)

	noSpecialty := registerRequest(model.Creator)
	noSpecialty.Specialty = " "
	_, err = h.auth.Register(noSpecialty)
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = h.auth.Register(registerRequest("guest"))
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestLoginLogout(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.auth.Register(registerRequest(model.Creator))
	require.NoError(t, err)

	_, err = h.auth.Login(ctx, &LoginRequest{Username: "ana", Password: "incorrecta"})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	_, err = h.auth.Login(ctx, &LoginRequest{Username: "nadie", Password: "secreto123"})
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)

	byEmail, err := h.auth.Login(ctx, &LoginRequest{Username: "ANA@example.com", Password: "secreto123"})
	require.NoError(t, err)
	assert.NotNil(t, byEmail.User.LastLogin)

	resp, err := h.auth.Login(ctx, &LoginRequest{Username: "ana", Password: "secreto123"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	claims, err := h.auth.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, model.Creator, claims.Role)

	require.NoError(t, h.auth.Logout(ctx, claims))
	_, err = h.auth.Authenticate(ctx, resp.Token)
	assert.ErrorIs(t, err, util.ErrTokenRevoked)

	_, err = h.auth.Authenticate(ctx, byEmail.Token)
	assert.NoError(t, err)

	_, err = h.auth.Authenticate(ctx, "not-a-token")
	assert.ErrorIs(t, err, util.ErrUnauthorized)
}

func TestLoginInactiveAccount(t *testing.T) {
	h := newHarness(t)
	user, err := h.auth.Register(registerRequest(model.Student))
	require.NoError(t, err)
	require.NoError(t, h.users.UpdateFields(user.ID, map[string]interface{}{"status": model.StatusSuspended}))

	_, err = h.auth.Login(context.Background(), &LoginRequest{Username: "ana", Password: "secreto123"})
	assert.ErrorIs(t, err, util.ErrAccountInactive)
}
