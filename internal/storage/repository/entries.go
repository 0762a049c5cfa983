package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/mood-tracker/internal/models"
)

// CreateEntry вставляет новую запись настроения и возвращает её с id
// и серверной меткой времени, назначенными базой.
func (s *Storage) CreateEntry(ctx context.Context, entry models.Entry) (*models.Entry, error) {
	const op = "storage.CreateEntry"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO tracker_entries (mood_rating, notes, owner_uid)
			  VALUES ($1, $2, $3)
			  RETURNING id, timestamp`
	err := s.DB.QueryRowContext(ctx, query,
		entry.MoodRating, entry.Notes, entry.OwnerUID).Scan(&entry.ID, &entry.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &entry, nil
}

// ListEntries возвращает записи пользователя, отсортированные по убыванию
// времени создания, с пагинацией offset/limit.
func (s *Storage) ListEntries(ctx context.Context, ownerUID string, limit, offset int) ([]*models.Entry, error) {
	const op = "storage.ListEntries"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, mood_rating, notes, timestamp, owner_uid
			  FROM tracker_entries
			  WHERE owner_uid = $1
			  ORDER BY timestamp DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, ownerUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	var result []*models.Entry
	for rows.Next() {
		var item models.Entry
		if err = rows.Scan(&item.ID, &item.MoodRating, &item.Notes,
			&item.Timestamp, &item.OwnerUID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveEntry удаляет запись только если она существует и принадлежит
// ownerUID. В остальных случаях возвращает ErrEntryNotFound: чужая запись
// неотличима от несуществующей.
func (s *Storage) RemoveEntry(ctx context.Context, ownerUID string, id int) (int, error) {
	const op = "storage.RemoveEntry"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM tracker_entries WHERE id = $1 AND owner_uid = $2`
	result, err := s.DB.ExecContext(ctx, query, id, ownerUID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return 0, fmt.Errorf("%s: %w", op, ErrEntryNotFound)
	}
	return int(rowsAffected), nil
}

// SummarizeEntries считает агрегаты по записям пользователя: среднюю
// оценку, количество записей и экстремальные записи. Лучшая запись при
// равенстве оценок — самая поздняя, худшая — самая ранняя.
func (s *Storage) SummarizeEntries(ctx context.Context, ownerUID string) (*models.Summary, error) {
	const op = "storage.SummarizeEntries"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var avg sql.NullFloat64
	var total int
	query := `SELECT AVG(mood_rating), COUNT(id)
			  FROM tracker_entries
			  WHERE owner_uid = $1`
	if err := s.DB.QueryRowContext(ctx, query, ownerUID).Scan(&avg, &total); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	summary := &models.Summary{TotalEntries: total}
	if total == 0 {
		return summary, nil
	}
	if avg.Valid {
		summary.AverageMood = avg.Float64
	}

	best, err := s.extremalEntry(ctx, ownerUID,
		`ORDER BY mood_rating DESC, timestamp DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	worst, err := s.extremalEntry(ctx, ownerUID,
		`ORDER BY mood_rating ASC, timestamp ASC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	summary.BestEntry = best
	summary.WorstEntry = worst
	return summary, nil
}

func (s *Storage) extremalEntry(ctx context.Context, ownerUID, orderBy string) (*models.Entry, error) {
	query := `SELECT id, mood_rating, notes, timestamp, owner_uid
			  FROM tracker_entries
			  WHERE owner_uid = $1 ` + orderBy + ` LIMIT 1`
	var item models.Entry
	err := s.DB.QueryRowContext(ctx, query, ownerUID).Scan(&item.ID, &item.MoodRating,
		&item.Notes, &item.Timestamp, &item.OwnerUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}
