// Package hostbridge описывает возможности хост-платформы, которые потребляет
// мини-приложение: кнопка «назад», попапы, данные пользователя, геолокация.
// Контроллеры получают Bridge при создании и не трогают хоста напрямую.
package hostbridge

import (
	"context"
	"time"

	"github.com/natindo/Fiesta/internal/models"
)

// Capability — именованная возможность хоста.
type Capability int

const (
	CapPopup Capability = iota
	CapScan
	CapLocation
	CapBackControl
)

// Availability — явный трёхзначный статус возможности.
// Вместо молчаливого no-op при отсутствии возможности UI заранее знает,
// показывать элемент или скрывать.
type Availability int

const (
	Unknown Availability = iota
	Available
	Unavailable
)

// PopupButton — кнопка модального попапа хоста.
type PopupButton struct {
	ID   string
	Text string
}

// Popup — конфигурация модального попапа.
type Popup struct {
	Title   string
	Message string
	Buttons []PopupButton
}

// Position — координаты, которые вернул хост.
type Position struct {
	Latitude  float64
	Longitude float64
}

// BackControl — кнопка «назад» хост-платформы.
type BackControl interface {
	Show()
	Hide()
	// OnActivate регистрирует обработчик нажатия. Повторная регистрация
	// заменяет предыдущий обработчик.
	OnActivate(func())
}

// Bridge — набор возможностей хоста, инжектируемый в контроллеры.
type Bridge interface {
	Expand()
	ColorScheme() string
	EnableClosingConfirmation()

	BackControl() BackControl

	// ShowPopup показывает попап и возвращает id нажатой кнопки.
	ShowPopup(ctx context.Context, p Popup) (string, error)
	// ShowScanPopup просит пользователя отсканировать текст и возвращает его.
	ShowScanPopup(ctx context.Context, prompt string) (string, error)

	// Identity возвращает nil, если хост не передал пользователя.
	Identity() *models.Identity

	// RequestCurrentPosition запрашивает текущее местоположение без
	// использования кэшированных значений.
	RequestCurrentPosition(ctx context.Context, timeout time.Duration) (Position, error)

	Capability(c Capability) Availability
}
