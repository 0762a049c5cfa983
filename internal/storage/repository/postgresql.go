// Package repository реализует хранилище данных на основе PostgreSQL
// для управления пользователями и записями настроения. Предоставляет
// методы создания, чтения, удаления и агрегирования записей,
// а также работу с учётными записями пользователей.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Ошибки уровня хранилища. Обработчики сопоставляют их с HTTP-статусами
// через errors.Is.
var (
	// ErrUserExists — нарушение уникальности username или email при регистрации.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound — пользователь с таким именем не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrEntryNotFound — запись не существует либо принадлежит другому
	// пользователю; эти случаи намеренно неразличимы.
	ErrEntryNotFound = errors.New("entry not found")
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с пользователями и записями настроения.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его доступность.
func New(storageConnectionString string) (*Storage, error) {
	const op = "storage.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// CheckDatabaseReady проверяет готовность базы данных.
func CheckDatabaseReady(storage *Storage) error {
	var exists bool
	err := storage.DB.QueryRow(`SELECT EXISTS (
        SELECT FROM information_schema.tables
        WHERE table_name = 'tracker_entries'
    )`).Scan(&exists)
	if err != nil || !exists {
		return fmt.Errorf("required table tracker_entries missing or query error: %w", err)
	}
	return nil
}
