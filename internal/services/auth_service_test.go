package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aeeconecta/aee-service/internal/models"
	"github.com/aeeconecta/aee-service/internal/session"
	"github.com/aeeconecta/aee-service/internal/validator"
)

func TestHashPassword(t *testing.T) {
	assert.Equal(t, "8d969eef6ecad3c29a3a629280e686cf0c3f5d5a86aff3ca12020c923adc6c92", HashPassword("123456"))
	assert.Len(t, HashPassword(""), 64)
	assert.Equal(t, "6d81ab6e14229178e1da8e1806a2d6cf22eb9f90384f96d35a91c67e5c6e9b49", HashPassword("senhaçã"),
		"accented passwords are hashed from their UTF-8 bytes")
	assert.NotEqual(t, HashPassword("Senha1"), HashPassword("senha1"))
}

func TestValidateNewPassword(t *testing.T) {
	assert.ErrorIs(t, ValidateNewPassword("abc", "abc"), ErrWeakPassword)
	assert.ErrorIs(t, ValidateNewPassword("abcdef", "abcdeg"), ErrPasswordMismatch)
	assert.ErrorIs(t, ValidateNewPassword("abc", "xyz"), ErrWeakPassword, "length is checked first")
	assert.NoError(t, ValidateNewPassword("ááááá1", "ááááá1"), "length counts characters, not bytes")
}

func TestLogin_Bootstrap(t *testing.T) {
	env := newTestEnv(t)
	auth := env.manager.Auth()
	ctx := context.Background()

	_, err := auth.Login(ctx, &validator.LoginRequest{RF: "999", Password: "wrong"})
	assert.ErrorIs(t, err, ErrFirstAccess)
	count, err := env.repo.Professor().Count(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, count, "a failed bootstrap must not register anyone")

	sess, err := auth.Login(ctx, &validator.LoginRequest{RF: " 999 ", Password: "999"})
	require.NoError(t, err)
	assert.Equal(t, session.StateAwaitingPasswordSet, sess.State)

	professor, err := env.repo.Professor().GetByRF(ctx, nil, "999")
	require.NoError(t, err)
	assert.Equal(t, models.BootstrapPerfil, professor.Perfil)
	assert.Equal(t, "999", professor.Nome)

	sess, err = auth.SetPassword(ctx, sess.Token, &validator.SetPasswordRequest{NewPassword: "segredo", Confirm: "segredo"})
	require.NoError(t, err)
	assert.True(t, sess.IsLoggedIn())
	assert.Equal(t, models.RoleAdmin, sess.Role)

	_, err = auth.Login(ctx, &validator.LoginRequest{RF: "1000", Password: "1000"})
	assert.ErrorIs(t, err, ErrUnknownRF, "bootstrap only fires on an empty roster")
}

func TestLogin_UnknownRF(t *testing.T) {
	env := newTestEnv(t)
	env.addProfessor(t, "111", "Ana", "Professor", "")

	_, err := env.manager.Auth().Login(context.Background(), &validator.LoginRequest{RF: "222", Password: "222"})
	assert.ErrorIs(t, err, ErrUnknownRF)
}

func TestLogin_FirstAccess(t *testing.T) {
	env := newTestEnv(t)
	env.addProfessor(t, "111", "Ana", "Professor", "")
	auth := env.manager.Auth()
	ctx := context.Background()

	_, err := auth.Login(ctx, &validator.LoginRequest{RF: "111", Password: "outra"})
	assert.ErrorIs(t, err, ErrFirstAccess)

	sess, err := auth.Login(ctx, &validator.LoginRequest{RF: "111", Password: "111"})
	require.NoError(t, err)
	assert.True(t, sess.AwaitingPasswordSet())
	assert.Zero(t, env.publisher.count(), "first access is not a completed login")

	_, err = auth.SetPassword(ctx, sess.Token, &validator.SetPasswordRequest{NewPassword: "abc", Confirm: "abc"})
	assert.ErrorIs(t, err, ErrWeakPassword)
	_, err = auth.SetPassword(ctx, sess.Token, &validator.SetPasswordRequest{NewPassword: "abcdef", Confirm: "abcdeg"})
	assert.ErrorIs(t, err, ErrPasswordMismatch)
	_, err = env.repo.Credential().GetByRF(ctx, nil, "111")
	assert.Error(t, err, "rejected passwords are not stored")

	sess, err = auth.SetPassword(ctx, sess.Token, &validator.SetPasswordRequest{NewPassword: "abcdef", Confirm: "abcdef"})
	require.NoError(t, err)
	assert.True(t, sess.IsLoggedIn())
	assert.Equal(t, models.RoleTeacher, sess.Role)
	assert.Equal(t, 1, env.publisher.count())

	credential, err := env.repo.Credential().GetByRF(ctx, nil, "111")
	require.NoError(t, err)
	assert.Equal(t, HashPassword("abcdef"), credential.SenhaHash)

	_, err = auth.SetPassword(ctx, sess.Token, &validator.SetPasswordRequest{NewPassword: "ghijkl", Confirm: "ghijkl"})
	assert.ErrorIs(t, err, session.ErrInvalidSessionState)
}

func TestLogin_WithPassword(t *testing.T) {
	env := newTestEnv(t)
	env.addProfessor(t, "111", "Ana", "Gestora", "segredo")
	auth := env.manager.Auth()
	ctx := context.Background()

	_, err := auth.Login(ctx, &validator.LoginRequest{RF: "111", Password: "111"})
	assert.ErrorIs(t, err, ErrInvalidPassword, "the RF stops working once a password is set")
	_, err = auth.Login(ctx, &validator.LoginRequest{RF: "111", Password: "errada"})
	assert.ErrorIs(t, err, ErrInvalidPassword)
	assert.Zero(t, env.publisher.count())

	sess, err := auth.Login(ctx, &validator.LoginRequest{RF: "111", Password: "segredo"})
	require.NoError(t, err)
	assert.True(t, sess.IsLoggedIn())
	assert.Equal(t, models.RoleManager, sess.Role)
	assert.Equal(t, "Ana", sess.Nome)
	assert.Equal(t, 1, env.publisher.count())

	got, err := auth.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.RF, got.RF)

	require.NoError(t, auth.Logout(ctx, sess.Token))
	_, err = auth.Authenticate(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestLogin_FailureLeavesExistingSessionUntouched(t *testing.T) {
	env := newTestEnv(t)
	env.addProfessor(t, "111", "Ana", "Gestor", "segredo")
	auth := env.manager.Auth()
	ctx := context.Background()

	sess, err := auth.Login(ctx, &validator.LoginRequest{RF: "111", Password: "segredo"})
	require.NoError(t, err)
	before, err := auth.Authenticate(ctx, sess.Token)
	require.NoError(t, err)

	failed, err := auth.Login(ctx, &validator.LoginRequest{RF: "111", Password: "errada"})
	assert.ErrorIs(t, err, ErrInvalidPassword)
	assert.Nil(t, failed)

	after, err := auth.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, session.StateLoggedIn, after.State)
	assert.Equal(t, models.RoleManager, after.Role)
	assert.Equal(t, 1, env.publisher.count(), "only the successful login is audited")
}

func TestLogin_ValidationErrors(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.manager.Auth().Login(context.Background(), &validator.LoginRequest{RF: "  ", Password: "x"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	env.addProfessor(t, "111", "Ana", "Professor", "segredo")
	auth := env.manager.Auth()
	ctx := context.Background()

	sess, err := auth.Login(ctx, &validator.LoginRequest{RF: "111", Password: "segredo"})
	require.NoError(t, err)

	err = auth.ChangePassword(ctx, sess.Token, &validator.ChangePasswordRequest{CurrentPassword: "errada", NewPassword: "novasenha", Confirm: "novasenha"})
	assert.ErrorIs(t, err, ErrInvalidPassword)
	err = auth.ChangePassword(ctx, sess.Token, &validator.ChangePasswordRequest{CurrentPassword: "segredo", NewPassword: "curta", Confirm: "curta"})
	assert.ErrorIs(t, err, ErrWeakPassword)

	require.NoError(t, auth.ChangePassword(ctx, sess.Token, &validator.ChangePasswordRequest{CurrentPassword: "segredo", NewPassword: "novasenha", Confirm: "novasenha"}))

	_, err = auth.Login(ctx, &validator.LoginRequest{RF: "111", Password: "segredo"})
	assert.ErrorIs(t, err, ErrInvalidPassword)
	_, err = auth.Login(ctx, &validator.LoginRequest{RF: "111", Password: "novasenha"})
	assert.NoError(t, err)
}

func TestAuthenticate_UnknownToken(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.manager.Auth().Authenticate(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = env.manager.Auth().Authenticate(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
