// Package form управляет черновиком мероприятия: проверка полей,
// составная проверка даты и сериализованная асинхронная отправка.
package form

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/natindo/Fiesta/internal/hostbridge"
	"github.com/natindo/Fiesta/internal/models"
	"github.com/natindo/Fiesta/internal/store"
)

// State — состояние контроллера формы.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	default:
		return "unknown"
	}
}

// Navigator — часть навигации, нужная форме: вернуться на список после
// успеха, сбросив историю до корня, чтобы «назад» не вёл на пустую форму.
type Navigator interface {
	ReturnToList(ctx context.Context)
}

// Controller владеет одним черновиком мероприятия.
// Любой неуспех (проверка или отправка) сохраняет введённые значения;
// черновик очищается только после успешной отправки.
type Controller struct {
	bridge hostbridge.Bridge
	store  store.EventStore
	nav    Navigator
	log    *slog.Logger
	loc    *time.Location
	now    func() time.Time // подменяется в тестах

	mu            sync.Mutex
	state         State
	draft         models.EventDraft
	validity      models.FieldValidity
	submitEnabled bool
}

// New создаёт контроллер с пустым черновиком.
func New(bridge hostbridge.Bridge, st store.EventStore, nav Navigator, loc *time.Location, log *slog.Logger) *Controller {
	if loc == nil {
		loc = time.Local
	}
	return &Controller{
		bridge:        bridge,
		store:         st,
		nav:           nav,
		log:           log,
		loc:           loc,
		now:           time.Now,
		validity:      models.FieldValidity{},
		submitEnabled: true,
	}
}

// Open заводит новый черновик при открытии экрана создания.
// Дата и время заполняются как «сейчас плюс час».
func (c *Controller) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	start := c.now().In(c.loc).Add(time.Hour)
	c.draft = models.EventDraft{
		Date: start.Format("2006-01-02"),
		Time: start.Format("15:04"),
	}
	c.validity = models.FieldValidity{}
	c.state = StateIdle
	c.submitEnabled = true
}

// Cancel выбрасывает черновик при явном отказе от создания.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = models.EventDraft{}
	c.validity = models.FieldValidity{}
	c.state = StateIdle
	c.submitEnabled = true
}

// SetField записывает значение поля и сразу проверяет его,
// как проверка при потере фокуса в форме.
func (c *Controller) SetField(f models.Field, raw string) bool {
	raw = strings.TrimSpace(raw)
	c.mu.Lock()
	switch f {
	case models.FieldTitle:
		c.draft.Title = raw
	case models.FieldDescription:
		c.draft.Description = raw
	case models.FieldDate:
		c.draft.Date = raw
	case models.FieldTime:
		c.draft.Time = raw
	case models.FieldLocation:
		c.draft.Location = raw
	case models.FieldMaxAttendees:
		c.draft.MaxAttendees = raw
	}
	c.mu.Unlock()
	return c.ValidateField(f)
}

// SetPrivate переключает флаг приватности. Флаг не проверяется.
func (c *Controller) SetPrivate(private bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.IsPrivate = private
}

// ValidateField проверяет одно поле и помечает его результат.
func (c *Controller) ValidateField(f models.Field) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	ok := c.checkField(f)
	c.validity[f] = ok
	return ok
}

func (c *Controller) checkField(f models.Field) bool {
	switch f {
	case models.FieldTitle:
		return strings.TrimSpace(c.draft.Title) != ""
	case models.FieldDescription:
		return true
	case models.FieldDate:
		d, err := time.ParseInLocation("2006-01-02", c.draft.Date, c.loc)
		if err != nil {
			return false
		}
		now := c.now().In(c.loc)
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, c.loc)
		return !d.Before(today)
	case models.FieldTime:
		_, err := time.Parse("15:04", c.draft.Time)
		return err == nil
	case models.FieldLocation:
		return strings.TrimSpace(c.draft.Location) != ""
	case models.FieldMaxAttendees:
		_, err := c.draft.MaxAttendeesValue()
		return err == nil
	default:
		return true
	}
}

// validateLocked прогоняет проверки всех полей и составную проверку даты:
// объединённый момент «дата плюс время» обязан быть строго в будущем.
// Нарушение даты помечает оба поля и показывается одним сообщением,
// даже если каждое поле по отдельности корректно. Вызывается под c.mu.
func (c *Controller) validateLocked() (ok, dateInPast bool) {
	fields := []models.Field{
		models.FieldTitle,
		models.FieldDescription,
		models.FieldDate,
		models.FieldTime,
		models.FieldLocation,
		models.FieldMaxAttendees,
	}

	ok = true
	for _, f := range fields {
		valid := c.checkField(f)
		c.validity[f] = valid
		if !valid {
			ok = false
		}
	}

	if c.validity[models.FieldDate] && c.validity[models.FieldTime] {
		startsAt, err := c.draft.StartsAt(c.loc)
		// «Сейчас» берётся заново на каждой проверке, а не один раз при
		// открытии формы.
		if err != nil || !startsAt.After(c.now()) {
			c.validity[models.FieldDate] = false
			c.validity[models.FieldTime] = false
			dateInPast = true
			ok = false
		}
	}
	return ok, dateInPast
}

// ValidateAll проверяет весь черновик. Состояние Validating выставляется
// только из Idle: идущую отправку проверка не трогает и сбить её
// состояние не может.
func (c *Controller) ValidateAll(ctx context.Context) bool {
	c.mu.Lock()
	owns := c.state == StateIdle
	if owns {
		c.state = StateValidating
	}
	ok, dateInPast := c.validateLocked()
	if owns {
		c.state = StateIdle
	}
	c.mu.Unlock()

	if dateInPast {
		c.showPopup(ctx, "Ошибка", "Дата и время мероприятия должны быть в будущем")
	}
	return ok
}

// Submit отправляет черновик в хранилище. Пока отправка не завершилась,
// повторные вызовы игнорируются: не больше одной отправки за раз.
// Переход Idle → Submitting происходит под одним захватом мьютекса,
// поэтому два одновременных вызова не могут пройти защёлку вдвоём.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return models.ErrSubmitInFlight
	}
	c.state = StateValidating
	ok, dateInPast := c.validateLocked()
	if !ok {
		// Черновик остаётся как есть: пользователь правит поля и пробует снова.
		c.state = StateIdle
		c.mu.Unlock()
		if dateInPast {
			c.showPopup(ctx, "Ошибка", "Дата и время мероприятия должны быть в будущем")
		}
		return models.ErrDraftInvalid
	}
	c.state = StateSubmitting
	c.submitEnabled = false
	draft := c.draft
	c.mu.Unlock()

	if id := c.bridge.Identity(); id != nil {
		ident := *id
		uid := ident.NumericID
		draft.CreatedBy = &ident
		draft.CreatorID = &uid
	}

	err := c.store.CreateEvent(ctx, &draft)

	c.mu.Lock()
	c.state = StateIdle
	c.submitEnabled = true
	if err == nil {
		// Черновик очищается только при успехе.
		c.draft = models.EventDraft{}
		c.validity = models.FieldValidity{}
	}
	c.mu.Unlock()

	if err != nil {
		c.log.Error("create event failed", "error", err)
		c.showPopup(ctx, "Ошибка", "Не удалось создать мероприятие. Пожалуйста, попробуйте снова.")
		return fmt.Errorf("create event: %w", err)
	}

	c.showPopup(ctx, "Успех", "Мероприятие успешно создано!")
	c.nav.ReturnToList(ctx)
	return nil
}

// State возвращает текущее состояние контроллера.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SubmitEnabled сообщает, активна ли кнопка отправки.
func (c *Controller) SubmitEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitEnabled
}

// Draft возвращает копию черновика.
func (c *Controller) Draft() models.EventDraft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Validity возвращает копию пометок валидности.
func (c *Controller) Validity() models.FieldValidity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validity.Clone()
}

func (c *Controller) showPopup(ctx context.Context, title, message string) {
	if c.bridge.Capability(hostbridge.CapPopup) != hostbridge.Available {
		return
	}
	_, err := c.bridge.ShowPopup(ctx, hostbridge.Popup{
		Title:   title,
		Message: message,
		Buttons: []hostbridge.PopupButton{{ID: "ok", Text: "OK"}},
	})
	if err != nil {
		c.log.Debug("popup failed", "error", err)
	}
}
