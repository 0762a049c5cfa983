package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/mood-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/mood-tracker/internal/lib/password"
	"github.com/magabrotheeeer/mood-tracker/internal/models"
	services "github.com/magabrotheeeer/mood-tracker/internal/services/auth"
	"github.com/magabrotheeeer/mood-tracker/internal/storage/repository"
)

// Мок для UserRepository
type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) RegisterUser(ctx context.Context, user models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepoMock) UpdatePasswordHash(ctx context.Context, userUID, passwordHash string) error {
	args := m.Called(ctx, userUID, passwordHash)
	return args.Error(0)
}

func newTestMaker() jwt.Maker {
	return jwt.NewMaker("test_secret_key_1234567890", 15*time.Minute)
}

func TestAuthService_Register(t *testing.T) {
	repo := new(UserRepoMock)
	var storedHash string
	repo.On("RegisterUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		storedHash = u.PasswordHash
		return u.Username == "alice" && u.Email == "alice@example.com"
	})).Return(&models.User{UID: "uid-1", Username: "alice", Email: "alice@example.com"}, nil)

	svc := services.NewAuthService(repo, newTestMaker())

	user, err := svc.Register(context.Background(), "alice", "alice@example.com", "supersecret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	// В хранилище уходит только bcrypt-хэш, проверяемый исходным паролем
	assert.NotEqual(t, "supersecret1", storedHash)
	assert.NoError(t, password.CompareHash(storedHash, "supersecret1"))
	repo.AssertExpectations(t)
}

func TestAuthService_Register_Conflict(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("RegisterUser", mock.Anything, mock.Anything).
		Return(nil, repository.ErrUserExists)

	svc := services.NewAuthService(repo, newTestMaker())

	_, err := svc.Register(context.Background(), "alice", "alice@example.com", "supersecret1")
	assert.ErrorIs(t, err, repository.ErrUserExists)
	assert.Contains(t, err.Error(), "services.auth.Register")
}

func TestAuthService_Login(t *testing.T) {
	hash, err := password.GetHash("supersecret1")
	require.NoError(t, err)

	tests := []struct {
		name        string
		username    string
		rawPassword string
		setupMocks  func(r *UserRepoMock)
		wantErr     error
	}{
		{
			name:        "успешный вход",
			username:    "alice",
			rawPassword: "supersecret1",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByUsername", mock.Anything, "alice").
					Return(&models.User{UID: "uid-1", Username: "alice", PasswordHash: hash}, nil)
			},
			wantErr: nil,
		},
		{
			name:        "пользователь не найден",
			username:    "ghost",
			rawPassword: "supersecret1",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByUsername", mock.Anything, "ghost").
					Return(nil, repository.ErrUserNotFound)
			},
			wantErr: services.ErrInvalidCredentials,
		},
		{
			name:        "неверный пароль",
			username:    "alice",
			rawPassword: "wrongpassword",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByUsername", mock.Anything, "alice").
					Return(&models.User{UID: "uid-1", Username: "alice", PasswordHash: hash}, nil)
			},
			wantErr: services.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			tt.setupMocks(repo)
			svc := services.NewAuthService(repo, newTestMaker())

			token, err := svc.Login(context.Background(), tt.username, tt.rawPassword)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, token)
				return
			}

			require.NoError(t, err)
			// Выданный токен сразу проходит проверку и возвращает subject
			subject, err := svc.ValidateToken(context.Background(), token)
			require.NoError(t, err)
			assert.Equal(t, tt.username, subject)
		})
	}
}

func TestAuthService_Login_StorageError(t *testing.T) {
	storageErr := errors.New("connection refused")
	repo := new(UserRepoMock)
	repo.On("GetUserByUsername", mock.Anything, "alice").
		Return(nil, storageErr)

	svc := services.NewAuthService(repo, newTestMaker())

	// Сбой хранилища не маскируется под неверные учётные данные
	_, err := svc.Login(context.Background(), "alice", "supersecret1")
	assert.ErrorIs(t, err, storageErr)
	assert.NotErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuthService_ValidateToken_Invalid(t *testing.T) {
	svc := services.NewAuthService(new(UserRepoMock), newTestMaker())

	_, err := svc.ValidateToken(context.Background(), "not.a.token")
	assert.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestAuthService_UpdatePassword(t *testing.T) {
	currentHash, err := password.GetHash("oldpassword1")
	require.NoError(t, err)

	tests := []struct {
		name       string
		current    string
		new        string
		setupMocks func(r *UserRepoMock)
		wantErr    error
	}{
		{
			name:    "успешная смена пароля",
			current: "oldpassword1",
			new:     "newpassword1",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByUsername", mock.Anything, "alice").
					Return(&models.User{UID: "uid-1", Username: "alice", PasswordHash: currentHash}, nil)
				r.On("UpdatePasswordHash", mock.Anything, "uid-1", mock.MatchedBy(func(h string) bool {
					return password.CompareHash(h, "newpassword1") == nil
				})).Return(nil)
			},
			wantErr: nil,
		},
		{
			name:       "новый пароль короче восьми символов",
			current:    "oldpassword1",
			new:        "short",
			setupMocks: func(_ *UserRepoMock) {},
			wantErr:    services.ErrPasswordTooShort,
		},
		{
			name:       "новый пароль совпадает с текущим",
			current:    "oldpassword1",
			new:        "oldpassword1",
			setupMocks: func(_ *UserRepoMock) {},
			wantErr:    services.ErrSamePassword,
		},
		{
			name:    "неверный текущий пароль",
			current: "wrongcurrent",
			new:     "newpassword1",
			setupMocks: func(r *UserRepoMock) {
				r.On("GetUserByUsername", mock.Anything, "alice").
					Return(&models.User{UID: "uid-1", Username: "alice", PasswordHash: currentHash}, nil)
			},
			wantErr: services.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			tt.setupMocks(repo)
			svc := services.NewAuthService(repo, newTestMaker())

			err := svc.UpdatePassword(context.Background(), "alice", tt.current, tt.new)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				// Хэш в хранилище не менялся
				repo.AssertNotCalled(t, "UpdatePasswordHash", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}
