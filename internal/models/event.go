package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EventSummary хранит опубликованное мероприятие, как его отдаёт хранилище.
// После получения из хранилища запись не изменяется.
type EventSummary struct {
	ID           int
	Title        string
	Description  string
	StartsAt     time.Time
	Location     string
	Attendees    int
	MaxAttendees *int // nil — без ограничения
}

// Identity — данные пользователя, которые передаёт хост-платформа.
type Identity struct {
	FirstName string
	LastName  string
	Username  string
	NumericID int64
}

// DisplayName собирает имя для отображения в профиле.
func (i Identity) DisplayName() string {
	if i.LastName == "" {
		return i.FirstName
	}
	return i.FirstName + " " + i.LastName
}

// EventDraft — черновик мероприятия, который пользователь заполняет в форме.
// Дата и время хранятся как введённый текст, объединяются при проверке.
type EventDraft struct {
	Title        string
	Description  string
	Date         string // формат 2006-01-02
	Time         string // формат 15:04
	Location     string
	MaxAttendees string // пустая строка — без ограничения
	IsPrivate    bool
	CreatedBy    *Identity
	CreatorID    *int64
}

// StartsAt объединяет дату и время черновика в один момент времени.
func (d *EventDraft) StartsAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation("2006-01-02 15:04", strings.TrimSpace(d.Date)+" "+strings.TrimSpace(d.Time), loc)
}

// MaxAttendeesValue разбирает лимит участников.
// Возвращает nil, если лимит не задан.
func (d *EventDraft) MaxAttendeesValue() (*int, error) {
	s := strings.TrimSpace(d.MaxAttendees)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("max attendees is not a number: %w", err)
	}
	if n <= 0 {
		return nil, fmt.Errorf("max attendees must be positive, got %d", n)
	}
	return &n, nil
}

// Field — имя поля формы создания мероприятия.
type Field string

const (
	FieldTitle        Field = "title"
	FieldDescription  Field = "description"
	FieldDate         Field = "date"
	FieldTime         Field = "time"
	FieldLocation     Field = "location"
	FieldMaxAttendees Field = "max_attendees"
)

// RequiredFields — обязательные поля формы.
var RequiredFields = []Field{FieldTitle, FieldDate, FieldTime, FieldLocation}

// FieldValidity отображает имя поля в результат его проверки.
// Производное состояние, никуда не сохраняется.
type FieldValidity map[Field]bool

// Clone возвращает копию, чтобы наружу не утекала внутренняя карта.
func (fv FieldValidity) Clone() FieldValidity {
	out := make(FieldValidity, len(fv))
	for k, v := range fv {
		out[k] = v
	}
	return out
}
