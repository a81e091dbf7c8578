package form

import (
	"context"
	"errors"
	"testing"

	"github.com/natindo/Fiesta/internal/hostbridge"
	"github.com/natindo/Fiesta/internal/models"
)

// TestUseCurrentPositionWritesLocationField: координаты попадают в поле места.
func TestUseCurrentPositionWritesLocationField(t *testing.T) {
	bridge := hostbridge.NewStub()
	bridge.Pos = hostbridge.Position{Latitude: 55.751244, Longitude: 37.618423}
	c := newTestController(bridge, &fakeStore{}, &fakeNav{})

	if err := c.UseCurrentPosition(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := c.Draft().Location; got != "55.751244, 37.618423" {
		t.Fatalf("unexpected location: %q", got)
	}
	if len(bridge.PosRequests) != 1 || bridge.PosRequests[0] != locationTimeout {
		t.Fatalf("expected one position request with %s timeout, got %v", locationTimeout, bridge.PosRequests)
	}
}

// TestUseCurrentPositionFailureLeavesFieldUnchanged: при ошибке поле не меняется,
// пользователю показывается восстановимая ошибка.
func TestUseCurrentPositionFailureLeavesFieldUnchanged(t *testing.T) {
	bridge := hostbridge.NewStub()
	bridge.PosErr = errors.New("denied")
	c := newTestController(bridge, &fakeStore{}, &fakeNav{})
	c.SetField(models.FieldLocation, "Hub")

	if err := c.UseCurrentPosition(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	if got := c.Draft().Location; got != "Hub" {
		t.Fatalf("expected location unchanged, got %q", got)
	}
	if len(bridge.Popups) != 1 || bridge.Popups[0].Title != "Ошибка" {
		t.Fatalf("expected error popup, got %+v", bridge.Popups)
	}
}

// TestScanLocationWritesField: отсканированный текст попадает в поле места.
func TestScanLocationWritesField(t *testing.T) {
	bridge := hostbridge.NewStub()
	bridge.ScanText = "Тверская, 7"
	c := newTestController(bridge, &fakeStore{}, &fakeNav{})

	if err := c.ScanLocation(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Draft().Location; got != "Тверская, 7" {
		t.Fatalf("unexpected location: %q", got)
	}
}

// TestLocationAssistHiddenWithoutCapabilities: без возможностей хоста кнопка
// помощи скрыта, а вызовы возвращают ErrCapabilityUnavailable.
func TestLocationAssistHiddenWithoutCapabilities(t *testing.T) {
	bridge := hostbridge.NewStub()
	bridge.Caps[hostbridge.CapLocation] = hostbridge.Unavailable
	bridge.Caps[hostbridge.CapScan] = hostbridge.Unavailable
	c := newTestController(bridge, &fakeStore{}, &fakeNav{})

	if c.LocationAssistAvailable() {
		t.Fatal("expected location assist hidden")
	}
	if err := c.AssistLocation(context.Background()); !errors.Is(err, models.ErrCapabilityUnavailable) {
		t.Fatalf("expected ErrCapabilityUnavailable, got %v", err)
	}
	if err := c.UseCurrentPosition(context.Background()); !errors.Is(err, models.ErrCapabilityUnavailable) {
		t.Fatalf("expected ErrCapabilityUnavailable, got %v", err)
	}
}

// TestAssistLocationDispatchesByChoice: выбор в попапе ведёт к нужному способу.
func TestAssistLocationDispatchesByChoice(t *testing.T) {
	bridge := hostbridge.NewStub()
	bridge.PopupAnswer = "scan"
	bridge.ScanText = "Innovation Hub"
	c := newTestController(bridge, &fakeStore{}, &fakeNav{})

	if err := c.AssistLocation(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := c.Draft().Location; got != "Innovation Hub" {
		t.Fatalf("unexpected location: %q", got)
	}
	if len(bridge.ScanPrompts) != 1 {
		t.Fatalf("expected one scan prompt, got %d", len(bridge.ScanPrompts))
	}
}
