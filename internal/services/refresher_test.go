package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/natindo/Fiesta/internal/models"
	"github.com/natindo/Fiesta/internal/store"
)

type fakeStore struct {
	events  []models.EventSummary
	loadErr error
}

func (f *fakeStore) LoadEvents(ctx context.Context) ([]models.EventSummary, error) {
	return f.events, f.loadErr
}

func (f *fakeStore) CreateEvent(ctx context.Context, draft *models.EventDraft) error { return nil }

func (f *fakeStore) ProfileStats(ctx context.Context, userID int64) (store.Stats, error) {
	return store.Stats{}, nil
}

// TestRefreshFillsSnapshot: после обновления кэш отдаёт список хранилища.
func TestRefreshFillsSnapshot(t *testing.T) {
	st := &fakeStore{events: []models.EventSummary{{ID: 1, Title: "Tech Meetup"}}}
	r := NewRefresher(st, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	r.refresh(context.Background())

	got := r.Snapshot()
	if len(got) != 1 || got[0].Title != "Tech Meetup" {
		t.Fatalf("unexpected snapshot: %+v", got)
	}
}

// TestRefreshKeepsCacheOnError: ошибка загрузки не затирает прежний кэш.
func TestRefreshKeepsCacheOnError(t *testing.T) {
	st := &fakeStore{events: []models.EventSummary{{ID: 1, Title: "Tech Meetup"}}}
	r := NewRefresher(st, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r.refresh(context.Background())

	st.loadErr = errors.New("network down")
	r.refresh(context.Background())

	if got := r.Snapshot(); len(got) != 1 {
		t.Fatalf("expected cache kept, got %+v", got)
	}
}
