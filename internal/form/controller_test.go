package form

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/natindo/Fiesta/internal/hostbridge"
	"github.com/natindo/Fiesta/internal/models"
	"github.com/natindo/Fiesta/internal/store"
)

type fakeStore struct {
	mu        sync.Mutex
	calls     int
	drafts    []models.EventDraft
	createErr error
	entered   chan struct{}
	release   chan struct{}
}

func (f *fakeStore) LoadEvents(ctx context.Context) ([]models.EventSummary, error) {
	return nil, nil
}

func (f *fakeStore) CreateEvent(ctx context.Context, draft *models.EventDraft) error {
	f.mu.Lock()
	f.calls++
	f.drafts = append(f.drafts, *draft)
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	return f.createErr
}

func (f *fakeStore) ProfileStats(ctx context.Context, userID int64) (store.Stats, error) {
	return store.Stats{}, nil
}

func (f *fakeStore) createCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeNav struct {
	returns int
}

func (f *fakeNav) ReturnToList(ctx context.Context) { f.returns++ }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Фиксированное «сейчас», чтобы проверки даты были воспроизводимыми.
var testNow = time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)

func newTestController(bridge hostbridge.Bridge, st store.EventStore, nav Navigator) *Controller {
	c := New(bridge, st, nav, time.UTC, testLogger())
	c.now = func() time.Time { return testNow }
	return c
}

func fillValidDraft(c *Controller) {
	c.SetField(models.FieldTitle, "Tech Meetup")
	c.SetField(models.FieldDate, "2026-08-29") // завтра
	c.SetField(models.FieldTime, "19:00")
	c.SetField(models.FieldLocation, "Hub")
}

// TestValidateAllMarksEmptyRequiredFields: пустые обязательные поля помечаются все разом.
func TestValidateAllMarksEmptyRequiredFields(t *testing.T) {
	c := newTestController(hostbridge.NewStub(), &fakeStore{}, &fakeNav{})

	if c.ValidateAll(context.Background()) {
		t.Fatal("expected validation to fail on empty draft")
	}

	validity := c.Validity()
	for _, f := range models.RequiredFields {
		if validity[f] {
			t.Fatalf("expected field %s marked invalid", f)
		}
	}
}

// TestValidateAllCompositeDateError: прошедший момент даёт составную ошибку,
// даже когда каждое поле по отдельности корректно.
func TestValidateAllCompositeDateError(t *testing.T) {
	bridge := hostbridge.NewStub()
	c := newTestController(bridge, &fakeStore{}, &fakeNav{})

	c.SetField(models.FieldTitle, "Tech Meetup")
	c.SetField(models.FieldDate, "2026-08-28") // сегодня
	c.SetField(models.FieldTime, "11:00")      // час назад
	c.SetField(models.FieldLocation, "Hub")

	if c.ValidateAll(context.Background()) {
		t.Fatal("expected composite date error")
	}

	validity := c.Validity()
	if validity[models.FieldDate] || validity[models.FieldTime] {
		t.Fatalf("expected date and time both marked invalid, got %v", validity)
	}
	if len(bridge.Popups) != 1 {
		t.Fatalf("expected 1 error popup, got %d", len(bridge.Popups))
	}
}

// TestSubmitSuccessClearsDraftAndReturnsToList — сценарий успешного создания.
func TestSubmitSuccessClearsDraftAndReturnsToList(t *testing.T) {
	bridge := hostbridge.NewStub()
	st := &fakeStore{}
	nav := &fakeNav{}
	c := newTestController(bridge, st, nav)

	fillValidDraft(c)
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if st.createCalls() != 1 {
		t.Fatalf("expected 1 create call, got %d", st.createCalls())
	}
	if c.Draft().Title != "" {
		t.Fatalf("expected draft cleared, got title %q", c.Draft().Title)
	}
	if nav.returns != 1 {
		t.Fatalf("expected navigation back to list, got %d returns", nav.returns)
	}
	if !c.SubmitEnabled() {
		t.Fatal("expected submit control re-enabled")
	}
	if len(bridge.Popups) != 1 || bridge.Popups[0].Title != "Успех" {
		t.Fatalf("expected success popup, got %+v", bridge.Popups)
	}
}

// TestSubmitSecondCallIgnoredWhileInFlight: пока отправка не завершилась,
// повторный вызов не делает второго обращения к хранилищу.
func TestSubmitSecondCallIgnoredWhileInFlight(t *testing.T) {
	st := &fakeStore{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	c := newTestController(hostbridge.NewStub(), st, &fakeNav{})
	fillValidDraft(c)

	done := make(chan error, 1)
	go func() {
		done <- c.Submit(context.Background())
	}()
	<-st.entered // первая отправка дошла до хранилища

	if c.SubmitEnabled() {
		t.Fatal("expected submit control disabled while in flight")
	}
	if err := c.Submit(context.Background()); !errors.Is(err, models.ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}

	close(st.release)
	if err := <-done; err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if st.createCalls() != 1 {
		t.Fatalf("expected exactly 1 create call, got %d", st.createCalls())
	}
}

// TestValidateAllDuringSubmitKeepsGuard: проверка черновика во время идущей
// отправки не сбрасывает состояние Submitting, и повторная отправка
// по-прежнему отклоняется.
func TestValidateAllDuringSubmitKeepsGuard(t *testing.T) {
	st := &fakeStore{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	c := newTestController(hostbridge.NewStub(), st, &fakeNav{})
	fillValidDraft(c)

	done := make(chan error, 1)
	go func() {
		done <- c.Submit(context.Background())
	}()
	<-st.entered

	c.ValidateAll(context.Background())
	if c.State() != StateSubmitting {
		t.Fatalf("expected state submitting after validation, got %s", c.State())
	}
	if err := c.Submit(context.Background()); !errors.Is(err, models.ErrSubmitInFlight) {
		t.Fatalf("expected ErrSubmitInFlight, got %v", err)
	}

	close(st.release)
	if err := <-done; err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if st.createCalls() != 1 {
		t.Fatalf("expected exactly 1 create call, got %d", st.createCalls())
	}
}

// TestSubmitPastInstantNeverCallsStore: сегодняшняя дата со временем час назад
// не доходит до хранилища, оба поля помечены.
func TestSubmitPastInstantNeverCallsStore(t *testing.T) {
	st := &fakeStore{}
	c := newTestController(hostbridge.NewStub(), st, &fakeNav{})

	c.SetField(models.FieldTitle, "Tech Meetup")
	c.SetField(models.FieldDate, "2026-08-28")
	c.SetField(models.FieldTime, "11:00")
	c.SetField(models.FieldLocation, "Hub")

	if err := c.Submit(context.Background()); !errors.Is(err, models.ErrDraftInvalid) {
		t.Fatalf("expected ErrDraftInvalid, got %v", err)
	}
	if st.createCalls() != 0 {
		t.Fatalf("expected no create calls, got %d", st.createCalls())
	}
	validity := c.Validity()
	if validity[models.FieldDate] || validity[models.FieldTime] {
		t.Fatalf("expected date and time marked invalid, got %v", validity)
	}
}

// TestSubmitFailurePreservesEnteredValues: отказ хранилища оставляет значения
// как есть, чтобы повторная отправка не требовала перенабора.
func TestSubmitFailurePreservesEnteredValues(t *testing.T) {
	bridge := hostbridge.NewStub()
	st := &fakeStore{createErr: errors.New("backend down")}
	nav := &fakeNav{}
	c := newTestController(bridge, st, nav)

	fillValidDraft(c)
	c.SetField(models.FieldDescription, "Доклады и нетворкинг")
	c.SetField(models.FieldMaxAttendees, "30")

	if err := c.Submit(context.Background()); err == nil {
		t.Fatal("expected submit error")
	}

	draft := c.Draft()
	if draft.Title != "Tech Meetup" || draft.Description != "Доклады и нетворкинг" ||
		draft.Date != "2026-08-29" || draft.Time != "19:00" ||
		draft.Location != "Hub" || draft.MaxAttendees != "30" {
		t.Fatalf("expected entered values preserved, got %+v", draft)
	}
	if c.State() != StateIdle {
		t.Fatalf("expected idle state, got %s", c.State())
	}
	if !c.SubmitEnabled() {
		t.Fatal("expected submit control re-enabled")
	}
	if nav.returns != 0 {
		t.Fatalf("expected no navigation, got %d returns", nav.returns)
	}
	if len(bridge.Popups) != 1 || bridge.Popups[0].Title != "Ошибка" {
		t.Fatalf("expected error popup, got %+v", bridge.Popups)
	}

	// Повторная отправка после починки бэкенда проходит без перенабора.
	st.createErr = nil
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if st.createCalls() != 2 {
		t.Fatalf("expected 2 create calls, got %d", st.createCalls())
	}
}

// TestSubmitAttachesIdentity: данные пользователя хоста попадают в черновик.
func TestSubmitAttachesIdentity(t *testing.T) {
	bridge := hostbridge.NewStub()
	bridge.User = &models.Identity{FirstName: "Ivan", Username: "ivan", NumericID: 42}
	st := &fakeStore{}
	c := newTestController(bridge, st, &fakeNav{})

	fillValidDraft(c)
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	sent := st.drafts[0]
	if sent.CreatedBy == nil || sent.CreatedBy.Username != "ivan" {
		t.Fatalf("expected creator identity attached, got %+v", sent.CreatedBy)
	}
	if sent.CreatorID == nil || *sent.CreatorID != 42 {
		t.Fatalf("expected creator id 42, got %v", sent.CreatorID)
	}
}

// TestSubmitWithoutIdentityLeavesCreatorNil: без пользователя от хоста
// создатель остаётся пустым.
func TestSubmitWithoutIdentityLeavesCreatorNil(t *testing.T) {
	st := &fakeStore{}
	c := newTestController(hostbridge.NewStub(), st, &fakeNav{})

	fillValidDraft(c)
	if err := c.Submit(context.Background()); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if st.drafts[0].CreatedBy != nil || st.drafts[0].CreatorID != nil {
		t.Fatalf("expected nil creator, got %+v", st.drafts[0])
	}
}

// TestOpenPrefillsStartInOneHour: новый черновик получает дату и время «сейчас плюс час».
func TestOpenPrefillsStartInOneHour(t *testing.T) {
	c := newTestController(hostbridge.NewStub(), &fakeStore{}, &fakeNav{})

	c.Open()

	draft := c.Draft()
	if draft.Date != "2026-08-28" || draft.Time != "13:00" {
		t.Fatalf("expected prefill 2026-08-28 13:00, got %s %s", draft.Date, draft.Time)
	}
}

// TestValidateFieldMaxAttendees: лимит участников — положительное целое или пусто.
func TestValidateFieldMaxAttendees(t *testing.T) {
	c := newTestController(hostbridge.NewStub(), &fakeStore{}, &fakeNav{})

	cases := []struct {
		raw   string
		valid bool
	}{
		{"", true},
		{"30", true},
		{"0", false},
		{"-5", false},
		{"many", false},
	}
	for _, tc := range cases {
		if got := c.SetField(models.FieldMaxAttendees, tc.raw); got != tc.valid {
			t.Fatalf("max attendees %q: expected valid=%v, got %v", tc.raw, tc.valid, got)
		}
	}
}
