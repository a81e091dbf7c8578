package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/natindo/Fiesta/internal/models"
	"github.com/natindo/Fiesta/internal/store"
)

// Refresher периодически обновляет кэш списка мероприятий, чтобы новые сессии
// открывали список без ожидания хранилища.
type Refresher struct {
	store    store.EventStore
	interval time.Duration
	log      *slog.Logger

	mu     sync.RWMutex
	events []models.EventSummary
}

// NewRefresher создаёт обновлятор с пустым кэшем.
func NewRefresher(st store.EventStore, interval time.Duration, log *slog.Logger) *Refresher {
	return &Refresher{store: st, interval: interval, log: log}
}

// Run запускает цикл: раз в interval перечитываем список из хранилища.
// Возвращается после отмены контекста.
func (r *Refresher) Run(ctx context.Context) {
	r.refresh(ctx) // первичный прогрев при старте

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

// Snapshot возвращает копию кэша.
func (r *Refresher) Snapshot() []models.EventSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.EventSummary, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Refresher) refresh(ctx context.Context) {
	events, err := r.store.LoadEvents(ctx)
	if err != nil {
		// Кэш остаётся прежним, следующий тик попробует ещё раз.
		r.log.Error("refresh events failed", "error", err)
		return
	}
	r.mu.Lock()
	r.events = events
	r.mu.Unlock()
}
