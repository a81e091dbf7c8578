package hostbridge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/natindo/Fiesta/internal/models"
)

// TelegramBridge реализует Bridge поверх Bot API для одного чата.
// Попапы отправляются сообщением с inline-кнопками, ответ приходит
// callback-запросом и доставляется ожидающему вызову через канал.
type TelegramBridge struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    *slog.Logger

	mu            sync.Mutex
	user          *models.Identity
	back          telegramBackControl
	pendingPopups map[int]chan string
	scanWaiter    chan string
	locWaiter     chan Position
}

// NewTelegram создаёт мост для одного чата.
func NewTelegram(api *tgbotapi.BotAPI, chatID int64, log *slog.Logger) *TelegramBridge {
	return &TelegramBridge{
		api:           api,
		chatID:        chatID,
		log:           log,
		pendingPopups: make(map[int]chan string),
	}
}

// Expand в чате бота не имеет аналога: разворачивать нечего.
func (b *TelegramBridge) Expand() {
	b.log.Debug("expand requested", "chat_id", b.chatID)
}

// ColorScheme: Bot API не сообщает тему клиента.
func (b *TelegramBridge) ColorScheme() string { return "unknown" }

func (b *TelegramBridge) EnableClosingConfirmation() {
	b.log.Debug("closing confirmation requested", "chat_id", b.chatID)
}

func (b *TelegramBridge) BackControl() BackControl { return &b.back }

// BackVisible сообщает отрисовщику, добавлять ли кнопку «назад» к экрану.
func (b *TelegramBridge) BackVisible() bool { return b.back.isVisible() }

// ShowPopup отправляет сообщение с кнопками и ждёт нажатия.
func (b *TelegramBridge) ShowPopup(ctx context.Context, p Popup) (string, error) {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(p.Buttons))
	for _, btn := range p.Buttons {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(btn.Text, "popup:"+btn.ID),
		))
	}

	msg := tgbotapi.NewMessage(b.chatID, p.Title+"\n"+p.Message)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	sent, err := b.api.Send(msg)
	if err != nil {
		return "", fmt.Errorf("send popup: %w", err)
	}

	ch := make(chan string, 1)
	b.mu.Lock()
	b.pendingPopups[sent.MessageID] = ch
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		delete(b.pendingPopups, sent.MessageID)
		b.mu.Unlock()
	}()

	select {
	case id := <-ch:
		// Убираем кнопки, чтобы на закрытый попап нельзя было нажать ещё раз.
		edit := tgbotapi.NewEditMessageReplyMarkup(b.chatID, sent.MessageID,
			tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
		if _, err := b.api.Request(edit); err != nil {
			b.log.Debug("popup cleanup failed", "error", err)
		}
		return id, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// ShowScanPopup просит прислать текст и ждёт следующего текстового сообщения.
func (b *TelegramBridge) ShowScanPopup(ctx context.Context, prompt string) (string, error) {
	ch := make(chan string, 1)
	b.mu.Lock()
	b.scanWaiter = ch
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		if b.scanWaiter == ch {
			b.scanWaiter = nil
		}
		b.mu.Unlock()
	}()

	if _, err := b.api.Send(tgbotapi.NewMessage(b.chatID, prompt)); err != nil {
		return "", fmt.Errorf("send scan prompt: %w", err)
	}

	select {
	case text := <-ch:
		return text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (b *TelegramBridge) Identity() *models.Identity {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.user
}

// SetIdentity запоминает пользователя из очередного апдейта.
func (b *TelegramBridge) SetIdentity(u *tgbotapi.User) {
	if u == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.user = &models.Identity{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.UserName,
		NumericID: u.ID,
	}
}

// RequestCurrentPosition просит пользователя поделиться местоположением.
// Кэшированных значений у бота нет: ждём только свежее сообщение с геопозицией.
func (b *TelegramBridge) RequestCurrentPosition(ctx context.Context, timeout time.Duration) (Position, error) {
	ch := make(chan Position, 1)
	b.mu.Lock()
	b.locWaiter = ch
	b.mu.Unlock()
	defer func() {
		b.mu.Lock()
		if b.locWaiter == ch {
			b.locWaiter = nil
		}
		b.mu.Unlock()
	}()

	msg := tgbotapi.NewMessage(b.chatID, "Поделитесь текущим местоположением:")
	kb := tgbotapi.NewReplyKeyboard(tgbotapi.NewKeyboardButtonRow(
		tgbotapi.NewKeyboardButtonLocation("Отправить местоположение"),
	))
	kb.OneTimeKeyboard = true
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		return Position{}, fmt.Errorf("send location request: %w", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case pos := <-ch:
		return pos, nil
	case <-timer.C:
		return Position{}, fmt.Errorf("location request timed out after %s", timeout)
	case <-ctx.Done():
		return Position{}, ctx.Err()
	}
}

// Capability: в живом чате доступны все возможности моста.
func (b *TelegramBridge) Capability(c Capability) Availability {
	switch c {
	case CapPopup, CapScan, CapLocation, CapBackControl:
		return Available
	default:
		return Unknown
	}
}

// HandleCallback разбирает callback-запросы, адресованные мосту: ответы на
// попапы. Их нужно доставить сразу, пока обработчик висит в ShowPopup.
// Возвращает true, если запрос обработан и дальше его передавать не нужно.
func (b *TelegramBridge) HandleCallback(cq *tgbotapi.CallbackQuery) bool {
	if cq.Message == nil || !strings.HasPrefix(cq.Data, "popup:") {
		return false
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		b.log.Debug("answer callback failed", "error", err)
	}
	b.mu.Lock()
	ch, ok := b.pendingPopups[cq.Message.MessageID]
	b.mu.Unlock()
	if ok {
		select {
		case ch <- strings.TrimPrefix(cq.Data, "popup:"):
		default:
		}
	}
	return true
}

// ActivateBack воспроизводит нажатие кнопки «назад» хоста: вызывает
// обработчик, зарегистрированный через BackControl().OnActivate.
func (b *TelegramBridge) ActivateBack() { b.back.activate() }

// OfferText отдаёт текст ожидающему ShowScanPopup.
// Возвращает false, если сканирование сейчас никто не ждёт.
func (b *TelegramBridge) OfferText(text string) bool {
	b.mu.Lock()
	ch := b.scanWaiter
	b.scanWaiter = nil
	b.mu.Unlock()
	if ch == nil {
		return false
	}
	ch <- text
	return true
}

// OfferLocation отдаёт геопозицию ожидающему RequestCurrentPosition.
func (b *TelegramBridge) OfferLocation(lat, lon float64) bool {
	b.mu.Lock()
	ch := b.locWaiter
	b.locWaiter = nil
	b.mu.Unlock()
	if ch == nil {
		return false
	}
	ch <- Position{Latitude: lat, Longitude: lon}
	return true
}

// telegramBackControl хранит видимость и обработчик кнопки «назад».
// Сама кнопка дорисовывается к экранам отрисовщиком чата.
type telegramBackControl struct {
	mu      sync.Mutex
	visible bool
	handler func()
}

func (c *telegramBackControl) Show() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = true
}

func (c *telegramBackControl) Hide() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.visible = false
}

func (c *telegramBackControl) OnActivate(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = fn
}

func (c *telegramBackControl) isVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

func (c *telegramBackControl) activate() {
	c.mu.Lock()
	fn := c.handler
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
