package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/natindo/Fiesta/internal/models"
)

// ConnectPostgres открывает пул соединений с PostgreSQL по заданной строке
// подключения. Пул безопасен для одновременных запросов из разных сессий;
// возвращённый *pgxpool.Pool надо закрывать.
func ConnectPostgres(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse config error: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgx connect error: %w", err)
	}

	// Проверка связи
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgx ping error: %w", err)
	}

	return pool, nil
}

// PostgresStore хранит мероприятия в таблице events.
type PostgresStore struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

// NewPostgresStore оборачивает открытый пул.
func NewPostgresStore(pool *pgxpool.Pool, loc *time.Location) *PostgresStore {
	if loc == nil {
		loc = time.Local
	}
	return &PostgresStore{pool: pool, loc: loc}
}

// LoadEvents возвращает ближайшие публичные мероприятия.
func (s *PostgresStore) LoadEvents(ctx context.Context) ([]models.EventSummary, error) {
	rows, err := s.pool.Query(ctx, `
SELECT id, title, description, starts_at, location, attendees, max_attendees
FROM events
WHERE starts_at >= $1
  AND is_private = false
ORDER BY starts_at
`, time.Now().In(s.loc))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.EventSummary
	for rows.Next() {
		var e models.EventSummary
		if err := rows.Scan(
			&e.ID, &e.Title, &e.Description,
			&e.StartsAt, &e.Location,
			&e.Attendees, &e.MaxAttendees,
		); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// CreateEvent вставляет мероприятие из черновика.
func (s *PostgresStore) CreateEvent(ctx context.Context, draft *models.EventDraft) error {
	startsAt, err := draft.StartsAt(s.loc)
	if err != nil {
		return fmt.Errorf("parse draft datetime: %w", err)
	}
	maxAttendees, err := draft.MaxAttendeesValue()
	if err != nil {
		return fmt.Errorf("parse max attendees: %w", err)
	}

	var creatorName, creatorUsername *string
	if draft.CreatedBy != nil {
		name := draft.CreatedBy.DisplayName()
		creatorName = &name
		creatorUsername = &draft.CreatedBy.Username
	}

	_, err = s.pool.Exec(ctx, `
INSERT INTO events (title, description, starts_at, location, attendees, max_attendees, is_private, creator_id, creator_name, creator_username)
VALUES ($1, $2, $3, $4, 0, $5, $6, $7, $8, $9)
`, draft.Title, draft.Description, startsAt, draft.Location,
		maxAttendees, draft.IsPrivate, draft.CreatorID, creatorName, creatorUsername)
	return err
}

// ProfileStats считает мероприятия пользователя.
// Посещения пока не учитываются: таблицы записей на мероприятия ещё нет.
func (s *PostgresStore) ProfileStats(ctx context.Context, userID int64) (Stats, error) {
	var hosted int
	err := s.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM events
WHERE creator_id = $1
`, userID).Scan(&hosted)
	if err != nil {
		return Stats{}, err
	}
	return Stats{Events: hosted, Hosted: hosted}, nil
}
