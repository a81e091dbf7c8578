// Package store отдаёт список мероприятий и принимает новые черновики.
package store

import (
	"context"

	"github.com/natindo/Fiesta/internal/models"
)

// Stats — счётчики для экрана профиля.
type Stats struct {
	Events   int
	Attended int
	Hosted   int
}

// EventStore — хранилище мероприятий, инжектируется в контроллеры.
type EventStore interface {
	// LoadEvents возвращает конечный список ближайших мероприятий.
	LoadEvents(ctx context.Context) ([]models.EventSummary, error)
	// CreateEvent принимает заполненный черновик. Полезной нагрузки в ответе
	// нет: важен только успех или ошибка.
	CreateEvent(ctx context.Context, draft *models.EventDraft) error
	// ProfileStats возвращает счётчики профиля пользователя.
	ProfileStats(ctx context.Context, userID int64) (Stats, error)
}
