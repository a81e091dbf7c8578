package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/natindo/Fiesta/internal/models"
)

// MemoryStore — хранилище-заглушка: фиксированные мероприятия после
// искусственной задержки. Настоящая реализация будет ходить по сети.
type MemoryStore struct {
	delay time.Duration
	loc   *time.Location

	mu     sync.Mutex
	nextID int
	events []models.EventSummary
}

// NewMemoryStore создаёт заглушку с демонстрационными данными.
func NewMemoryStore(delay time.Duration, loc *time.Location) *MemoryStore {
	if loc == nil {
		loc = time.Local
	}
	now := time.Now().In(loc)
	return &MemoryStore{
		delay:  delay,
		loc:    loc,
		nextID: 3,
		events: []models.EventSummary{
			{
				ID:          1,
				Title:       "Tech Meetup",
				Description: "Ежемесячная встреча с докладами и нетворкингом.",
				StartsAt:    time.Date(now.Year(), now.Month(), now.Day(), 19, 0, 0, 0, loc).AddDate(0, 0, 3),
				Location:    "Downtown Co-working Space",
				Attendees:   24,
			},
			{
				ID:          2,
				Title:       "Startup Pitch Night",
				Description: "Местные стартапы питчат идеи инвесторам.",
				StartsAt:    time.Date(now.Year(), now.Month(), now.Day(), 18, 30, 0, 0, loc).AddDate(0, 0, 8),
				Location:    "Innovation Hub",
				Attendees:   15,
			},
		},
	}
}

// LoadEvents возвращает копию списка после имитации сетевой задержки.
func (s *MemoryStore) LoadEvents(ctx context.Context) ([]models.EventSummary, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.EventSummary, len(s.events))
	copy(out, s.events)
	return out, nil
}

// CreateEvent добавляет мероприятие из черновика.
func (s *MemoryStore) CreateEvent(ctx context.Context, draft *models.EventDraft) error {
	if err := s.wait(ctx); err != nil {
		return err
	}

	startsAt, err := draft.StartsAt(s.loc)
	if err != nil {
		return fmt.Errorf("parse draft datetime: %w", err)
	}
	maxAttendees, err := draft.MaxAttendeesValue()
	if err != nil {
		return fmt.Errorf("parse max attendees: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, models.EventSummary{
		ID:           s.nextID,
		Title:        draft.Title,
		Description:  draft.Description,
		StartsAt:     startsAt,
		Location:     draft.Location,
		Attendees:    0,
		MaxAttendees: maxAttendees,
	})
	s.nextID++
	return nil
}

// ProfileStats у заглушки фиксированные, как в макете профиля.
func (s *MemoryStore) ProfileStats(ctx context.Context, userID int64) (Stats, error) {
	if err := s.wait(ctx); err != nil {
		return Stats{}, err
	}
	return Stats{Events: 12, Attended: 48, Hosted: 6}, nil
}

func (s *MemoryStore) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
