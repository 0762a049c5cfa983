// Package models содержит доменные структуры записи настроения,
// а также вспомогательные типы для работы с данными из JSON-запросов.
package models

import "time"

// Entry представляет собой запись настроения пользователя.
// Timestamp назначается сервером при создании, OwnerUID связывает
// запись ровно с одним пользователем.
type Entry struct {
	ID         int        `json:"id"`              // Уникальный идентификатор записи
	MoodRating int        `json:"mood_rating"`     // Оценка настроения от 1 до 5
	Notes      *string    `json:"notes,omitempty"` // Необязательные заметки
	Timestamp  time.Time  `json:"timestamp"`       // Момент создания записи
	OwnerUID   string     `json:"-"`               // Владелец записи
}

// DummyEntry используется для приёма данных из JSON-запроса,
// прежде чем конвертировать их в Entry.
type DummyEntry struct {
	MoodRating int     `json:"mood_rating" validate:"required,min=1,max=5"` // Оценка настроения (1-5)
	Notes      *string `json:"notes,omitempty"`                             // Заметки (опционально)
}

// Summary содержит агрегированную статистику по записям пользователя.
// При отсутствии записей AverageMood равен 0.0, а Best/Worst — nil.
type Summary struct {
	AverageMood  float64 `json:"average_mood"`  // Средняя оценка, округлённая до сотых
	TotalEntries int     `json:"total_entries"` // Общее количество записей
	BestEntry    *Entry  `json:"best_entry"`    // Запись с максимальной оценкой
	WorstEntry   *Entry  `json:"worst_entry"`   // Запись с минимальной оценкой
}
