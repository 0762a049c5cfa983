// Package services содержит бизнес-логику для управления записями настроения и кешированием.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/magabrotheeeer/mood-tracker/internal/models"
)

// ErrInvalidRating — оценка настроения вне диапазона от 1 до 5.
var ErrInvalidRating = errors.New("mood rating must be between 1 and 5")

// Пределы пагинации списка записей.
const (
	defaultListLimit = 100
	maxListLimit     = 100
)

const summaryCacheTTL = time.Hour

// EntryRepository определяет методы для работы с записями настроения в хранилище.
type EntryRepository interface {
	// CreateEntry добавляет новую запись и возвращает её с назначенными id и меткой времени.
	CreateEntry(ctx context.Context, entry models.Entry) (*models.Entry, error)
	// ListEntries возвращает записи владельца с пагинацией, новые первыми.
	ListEntries(ctx context.Context, ownerUID string, limit, offset int) ([]*models.Entry, error)
	// RemoveEntry удаляет запись владельца по ID и возвращает количество удалённых строк.
	RemoveEntry(ctx context.Context, ownerUID string, id int) (int, error)
	// SummarizeEntries считает агрегаты по записям владельца.
	SummarizeEntries(ctx context.Context, ownerUID string) (*models.Summary, error)
}

// UserResolver описывает контракт для разрешения имени пользователя во владельца записей.
type UserResolver interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// TrackerService реализует бизнес-логику работы с записями настроения.
//
// Каждая операция сначала разрешает аутентифицированное имя пользователя
// во внутренний uid владельца и только затем обращается к хранилищу —
// это единственный путь от "аутентифицирован" к "авторизован для этих данных".
type TrackerService struct {
	repo  EntryRepository
	users UserResolver
	cache Cache
	log   *slog.Logger
}

// NewTrackerService создает новый экземпляр TrackerService.
func NewTrackerService(repo EntryRepository, users UserResolver, cache Cache, log *slog.Logger) *TrackerService {
	return &TrackerService{
		repo:  repo,
		users: users,
		cache: cache,
		log:   log,
	}
}

func (s *TrackerService) resolveOwner(ctx context.Context, username string) (string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	return user.UID, nil
}

// Create создает новую запись настроения для пользователя.
// Оценка проверяется до сохранения, метку времени назначает база.
func (s *TrackerService) Create(ctx context.Context, username string, req models.DummyEntry) (*models.Entry, error) {
	const op = "services.tracker.Create"
	if req.MoodRating < 1 || req.MoodRating > 5 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidRating)
	}

	ownerUID, err := s.resolveOwner(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	entry, err := s.repo.CreateEntry(ctx, models.Entry{
		MoodRating: req.MoodRating,
		Notes:      req.Notes,
		OwnerUID:   ownerUID,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created new entry", slog.Int("id", entry.ID))

	cacheKey := summaryCacheKey(ownerUID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate summary cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return entry, nil
}

// List возвращает записи пользователя, новые первыми, с пагинацией skip/limit.
func (s *TrackerService) List(ctx context.Context, username string, skip, limit int) ([]*models.Entry, error) {
	const op = "services.tracker.List"
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	if skip < 0 {
		skip = 0
	}

	ownerUID, err := s.resolveOwner(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.repo.ListEntries(ctx, ownerUID, limit, skip)
}

// Remove удаляет запись пользователя по ID и инвалидирует кеш сводки.
// Чужая запись для вызывающего неотличима от несуществующей.
func (s *TrackerService) Remove(ctx context.Context, username string, id int) (int, error) {
	const op = "services.tracker.Remove"
	ownerUID, err := s.resolveOwner(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	count, err := s.repo.RemoveEntry(ctx, ownerUID, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	cacheKey := summaryCacheKey(ownerUID)
	if err := s.cache.Invalidate(cacheKey); err != nil {
		s.log.Warn("failed to invalidate summary cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return count, nil
}

// Summarize возвращает сводку по записям пользователя, используя кеш или хранилище.
// Средняя оценка округляется до двух знаков после запятой.
func (s *TrackerService) Summarize(ctx context.Context, username string) (*models.Summary, error) {
	const op = "services.tracker.Summarize"
	ownerUID, err := s.resolveOwner(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result *models.Summary
	cacheKey := summaryCacheKey(ownerUID)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read summary cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found && result != nil {
		return result, nil
	}

	result, err = s.repo.SummarizeEntries(ctx, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result.AverageMood = math.Round(result.AverageMood*100) / 100

	if err := s.cache.Set(cacheKey, result, summaryCacheTTL); err != nil {
		s.log.Warn("failed to cache summary", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return result, nil
}

func summaryCacheKey(ownerUID string) string {
	return fmt.Sprintf("summary:%s", ownerUID)
}
