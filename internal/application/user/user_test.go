package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xiebiao/autoparts/internal/application/shared"
	"github.com/xiebiao/autoparts/internal/domain/user"
	"github.com/xiebiao/autoparts/internal/mocks"
	apperrors "github.com/xiebiao/autoparts/pkg/errors"
	"github.com/xiebiao/autoparts/pkg/jwt"
)

func newJWT() *jwt.Manager {
	return jwt.NewManager("test-secret", time.Hour, 24*time.Hour)
}

func storedUser(t *testing.T, password string) *user.User {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := user.NewUser("Juan Pérez", "12345678-5", "juan@example.cl", string(hashed), "", user.RoleCliente)
	u.ID = 7
	return u
}

func TestRegisterUseCase_Execute(t *testing.T) {
	ctx := context.Background()
	valid := RegisterRequest{FullName: "Juan Pérez", RUT: "12.345.678-5", Email: "Juan@Example.cl", Password: "secreto123"}

	t.Run("顾客注册默认CLIENTE", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*user.User")).Return(nil)

		info, err := NewRegisterUseCase(user.NewService(repo)).Execute(ctx, valid)
		require.NoError(t, err)
		assert.Equal(t, "CLIENTE", info.Role)
		assert.Equal(t, "juan@example.cl", info.Email)
		assert.Equal(t, "12345678-5", info.RUT)
	})

	t.Run("顾客不能指定角色", func(t *testing.T) {
		req := valid
		req.Role = "ADMIN"
		_, err := NewRegisterUseCase(user.NewService(new(mocks.UserRepository))).Execute(ctx, req)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("管理员创建仓管员", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(u *user.User) bool {
			return u.Role == user.RoleBodeguero
		})).Return(nil)
		req := valid
		req.Role = "bodeguero"
		req.Actor = shared.Actor{UserID: 1, Role: user.RoleAdmin}

		info, err := NewRegisterUseCase(user.NewService(repo)).Execute(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "BODEGUERO", info.Role)
	})

	t.Run("邮箱重复", func(t *testing.T) {
		repo := new(mocks.UserRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(apperrors.ErrEmailDuplicate)
		_, err := NewRegisterUseCase(user.NewService(repo)).Execute(ctx, valid)
		assert.ErrorIs(t, err, apperrors.ErrEmailDuplicate)
	})
}

func TestLoginLogoutRefresh(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.UserRepository)
	u := storedUser(t, "secreto123")
	repo.On("FindByEmail", mock.Anything, "juan@example.cl").Return(u, nil)
	repo.On("FindByID", mock.Anything, uint(7)).Return(u, nil)
	sessions := mocks.NewSessionStore()
	jm := newJWT()

	// 登录
	resp, err := NewLoginUseCase(user.NewService(repo), jm, sessions).
		Execute(ctx, LoginRequest{Email: " JUAN@example.cl ", Password: "secreto123", ClientIP: "10.0.0.1"})
	require.NoError(t, err)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	claims, err := jm.ParseToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "CLIENTE", claims.Role)
	assert.Equal(t, "10.0.0.1", sessions.Sessions[7]["ip"])

	// 刷新
	refreshed, err := NewRefreshUseCase(repo, jm, sessions).Execute(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// Access Token不能当Refresh Token用
	_, err = NewRefreshUseCase(repo, jm, sessions).Execute(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	// 登出后会话删除、Token进黑名单,刷新失败
	require.NoError(t, NewLogoutUseCase(sessions, jm).Execute(ctx, 7, resp.AccessToken))
	blocked, _ := sessions.IsInBlacklist(ctx, resp.AccessToken)
	assert.True(t, blocked)
	assert.Equal(t, time.Hour, sessions.Blacklist[resp.AccessToken])
	_, err = NewRefreshUseCase(repo, jm, sessions).Execute(ctx, resp.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestLoginUseCase_WrongPassword(t *testing.T) {
	repo := new(mocks.UserRepository)
	repo.On("FindByEmail", mock.Anything, "juan@example.cl").Return(storedUser(t, "secreto123"), nil)

	_, err := NewLoginUseCase(user.NewService(repo), newJWT(), mocks.NewSessionStore()).
		Execute(context.Background(), LoginRequest{Email: "juan@example.cl", Password: "otraclave1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidPassword)
}

func TestLoginUseCase_SessionFailureDoesNotBlockLogin(t *testing.T) {
	repo := new(mocks.UserRepository)
	repo.On("FindByEmail", mock.Anything, "juan@example.cl").Return(storedUser(t, "secreto123"), nil)
	sessions := mocks.NewSessionStore()
	sessions.SaveErr = apperrors.ErrRedisError

	resp, err := NewLoginUseCase(user.NewService(repo), newJWT(), sessions).
		Execute(context.Background(), LoginRequest{Email: "juan@example.cl", Password: "secreto123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestProfileUseCase(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.UserRepository)
	u := storedUser(t, "secreto123")
	repo.On("FindByID", mock.Anything, uint(7)).Return(u, nil)
	repo.On("Update", mock.Anything, u).Return(nil)
	uc := NewProfileUseCase(repo)

	info, err := uc.Update(ctx, 7, UpdateProfileRequest{Phone: "+56 9 1234 5678"})
	require.NoError(t, err)
	assert.Equal(t, "Juan Pérez", info.FullName)
	assert.Equal(t, "+56 9 1234 5678", info.Phone)

	_, err = uc.Update(ctx, 7, UpdateProfileRequest{FullName: "J"})
	assert.ErrorIs(t, err, user.ErrInvalidFullName)

	repo.On("FindByID", mock.Anything, uint(99)).Return(nil, apperrors.ErrUserNotFound)
	_, err = uc.Get(ctx, 99)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}
