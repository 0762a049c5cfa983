// Package services содержит логику бизнес-уровня для работы с пользователями и аутентификацией.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/mood-tracker/internal/lib/jwt"
	"github.com/magabrotheeeer/mood-tracker/internal/lib/password"
	"github.com/magabrotheeeer/mood-tracker/internal/models"
	"github.com/magabrotheeeer/mood-tracker/internal/storage/repository"
)

// Ошибки бизнес-уровня аутентификации.
var (
	// ErrInvalidCredentials — неверная пара логин/пароль либо неверный
	// текущий пароль при его смене. Причина не уточняется.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSamePassword — новый пароль совпадает с текущим.
	ErrSamePassword = errors.New("new password must differ from current password")
	// ErrPasswordTooShort — новый пароль короче восьми символов.
	ErrPasswordTooShort = errors.New("new password must be at least 8 characters")
)

const minPasswordLength = 8

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// RegisterUser сохраняет нового пользователя и возвращает созданную запись.
	RegisterUser(ctx context.Context, user models.User) (*models.User, error)

	// GetUserByUsername возвращает пользователя по имени или ошибку, если не найден.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// UpdatePasswordHash заменяет хэш пароля пользователя.
	UpdatePasswordHash(ctx context.Context, userUID, passwordHash string) error
}

// AuthService отвечает за регистрацию, авторизацию, смену пароля и валидацию JWT.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register создает нового пользователя с хэшированием пароля.
// Открытый пароль не сохраняется и не возвращается.
func (s *AuthService) Register(ctx context.Context, username, email, rawPassword string) (*models.User, error) {
	const op = "services.auth.Register"
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
	}
	created, err := s.users.RegisterUser(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// Login проверяет пароль пользователя и генерирует токен доступа.
// Отсутствие пользователя и неверный пароль дают одинаковую ошибку.
func (s *AuthService) Login(ctx context.Context, username, rawPassword string) (string, error) {
	const op = "services.auth.Login"
	user, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	token, err := s.jwtMaker.GenerateToken(user.Username)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return token, nil
}

// ValidateToken проверяет JWT и возвращает имя пользователя из subject.
func (s *AuthService) ValidateToken(_ context.Context, token string) (string, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// UpdatePassword меняет пароль пользователя после проверки текущего.
// Правила для нового пароля проверяются до какого-либо изменения
// в хранилище, поэтому при отказе хэш остаётся прежним. Ранее выданные
// токены продолжают действовать до истечения срока.
func (s *AuthService) UpdatePassword(ctx context.Context, username, currentPassword, newPassword string) error {
	const op = "services.auth.UpdatePassword"
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%s: %w", op, ErrPasswordTooShort)
	}
	if newPassword == currentPassword {
		return fmt.Errorf("%s: %w", op, ErrSamePassword)
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, currentPassword); err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return s.users.UpdatePasswordHash(ctx, user.UID, hashed)
}
