package form

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/natindo/Fiesta/internal/hostbridge"
	"github.com/natindo/Fiesta/internal/models"
)

// Свежее местоположение ждём не дольше пяти секунд.
const locationTimeout = 5 * time.Second

// LocationAssistAvailable сообщает, показывать ли кнопку помощи с местом.
// Без доступных возможностей хоста остаётся только ручной ввод.
func (c *Controller) LocationAssistAvailable() bool {
	return c.bridge.Capability(hostbridge.CapLocation) == hostbridge.Available ||
		c.bridge.Capability(hostbridge.CapScan) == hostbridge.Available
}

// AssistLocation предлагает способы заполнить место проведения.
func (c *Controller) AssistLocation(ctx context.Context) error {
	var buttons []hostbridge.PopupButton
	if c.bridge.Capability(hostbridge.CapLocation) == hostbridge.Available {
		buttons = append(buttons, hostbridge.PopupButton{ID: "current", Text: "Текущее местоположение"})
	}
	if c.bridge.Capability(hostbridge.CapScan) == hostbridge.Available {
		buttons = append(buttons, hostbridge.PopupButton{ID: "scan", Text: "Сканировать адрес"})
	}
	if len(buttons) == 0 {
		return models.ErrCapabilityUnavailable
	}
	buttons = append(buttons, hostbridge.PopupButton{ID: "cancel", Text: "Отмена"})

	choice, err := c.bridge.ShowPopup(ctx, hostbridge.Popup{
		Title:   "Выбор местоположения",
		Message: "Как заполнить место проведения?",
		Buttons: buttons,
	})
	if err != nil {
		return fmt.Errorf("location popup: %w", err)
	}

	switch choice {
	case "current":
		return c.UseCurrentPosition(ctx)
	case "scan":
		return c.ScanLocation(ctx)
	}
	return nil
}

// UseCurrentPosition запрашивает свежие координаты и записывает их в поле
// места. При ошибке или таймауте поле не меняется.
func (c *Controller) UseCurrentPosition(ctx context.Context) error {
	if c.bridge.Capability(hostbridge.CapLocation) != hostbridge.Available {
		return models.ErrCapabilityUnavailable
	}

	pos, err := c.bridge.RequestCurrentPosition(ctx, locationTimeout)
	if err != nil {
		c.log.Error("location request failed", "error", err)
		c.showPopup(ctx, "Ошибка", "Не удалось определить местоположение")
		return fmt.Errorf("request position: %w", err)
	}

	c.SetField(models.FieldLocation, fmt.Sprintf("%.6f, %.6f", pos.Latitude, pos.Longitude))
	c.showPopup(ctx, "Готово", "Местоположение определено")
	return nil
}

// ScanLocation просит хоста отсканировать текст с адресом.
func (c *Controller) ScanLocation(ctx context.Context) error {
	if c.bridge.Capability(hostbridge.CapScan) != hostbridge.Available {
		return models.ErrCapabilityUnavailable
	}

	text, err := c.bridge.ShowScanPopup(ctx, "Наведите камеру на QR-код с адресом")
	if err != nil {
		c.log.Error("scan failed", "error", err)
		c.showPopup(ctx, "Ошибка", "Не удалось получить адрес")
		return fmt.Errorf("scan location: %w", err)
	}

	if strings.TrimSpace(text) != "" {
		c.SetField(models.FieldLocation, text)
	}
	return nil
}
