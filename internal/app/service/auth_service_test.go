package service

import (
	"context"
	"testing"

	"code_practice/internal/common"
	"code_practice/internal/common/security"
	"code_practice/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.auth.Register(ctx, RegisterRequest{FullName: " Ada ", Email: " Ada@Example.COM ", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", res.User.Email)
	assert.Equal(t, "Ada", res.User.FullName)
	assert.Equal(t, model.RoleStudent, res.User.Role)
	assert.NotEmpty(t, res.Token)

	uid, err := security.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, uid)

	login, err := env.auth.Login(ctx, LoginRequest{Email: "ADA@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterRequest{Email: "a@b.c", Password: "secret123"})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	_, err = env.auth.Register(ctx, RegisterRequest{FullName: "A", Email: "not-an-email", Password: "secret123"})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	_, err = env.auth.Register(ctx, RegisterRequest{FullName: "A", Email: "a@b.c", Password: "123"})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	_, err = env.auth.Register(ctx, RegisterRequest{FullName: "A", Email: "a@b.c", Password: "secret123"})
	require.NoError(t, err)
	_, err = env.auth.Register(ctx, RegisterRequest{FullName: "B", Email: "A@B.C", Password: "secret123"})
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestAuthService_LoginFailuresAreGeneric(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "Ada", "ada@example.com")

	_, errWrongPass := env.auth.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "wrong-pass"})
	_, errNoUser := env.auth.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "secret123"})

	assert.ErrorIs(t, errWrongPass, common.ErrUnauthorized)
	assert.ErrorIs(t, errNoUser, common.ErrUnauthorized)
	assert.Equal(t, errWrongPass.Error(), errNoUser.Error())
}

func TestAuthService_AuthenticateDeletedUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	c := env.register(t, "Ada", "ada@example.com")

	u, err := env.auth.Authenticate(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, u.ID)

	env.store.Users().Remove(c.ID)
	_, err = env.auth.Authenticate(ctx, c.ID)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}
