// Package bot принимает апдейты Telegram и превращает их в вызовы
// контроллеров навигации и формы. Чат играет роль поверхности отрисовки.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/natindo/Fiesta/internal/services"
	"github.com/natindo/Fiesta/internal/store"
)

// NewAPI инициализирует и возвращает *tgbotapi.BotAPI с набором команд.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	api.Debug = false

	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "Запустить приложение"},
		{Command: "events", Description: "Список мероприятий"},
		{Command: "create", Description: "Создать мероприятие"},
		{Command: "profile", Description: "Профиль"},
		{Command: "help", Description: "Справка"},
	}
	if _, err := api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		return nil, fmt.Errorf("set commands: %w", err)
	}
	return api, nil
}

// Bot держит по одной сессии на чат: у каждой свой мост, стек экранов и черновик.
type Bot struct {
	api   *tgbotapi.BotAPI
	store store.EventStore
	cache *services.Refresher
	loc   *time.Location
	log   *slog.Logger

	sessions map[int64]*Session
}

// New собирает бота. Кэш cache может быть nil — тогда список всегда грузится
// из хранилища.
func New(api *tgbotapi.BotAPI, st store.EventStore, cache *services.Refresher, loc *time.Location, log *slog.Logger) *Bot {
	if loc == nil {
		loc = time.Local
	}
	return &Bot{
		api:      api,
		store:    st,
		cache:    cache,
		loc:      loc,
		log:      log,
		sessions: make(map[int64]*Session),
	}
}

// Run запускает основной цикл: чтение апдейтов и их обработку.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, update)
		}
	}
}

// dispatch раскладывает апдейт по сессии. Ответы на попапы, ожидаемые тексты
// и геопозиции доставляются мосту сразу, пока обработчик висит в ожидании;
// всё остальное встаёт в очередь сессии и выполняется строго по одному.
func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		cq := update.CallbackQuery
		if cq.Message == nil {
			return
		}
		s := b.session(cq.Message.Chat.ID, cq.From)
		if s.bridge.HandleCallback(cq) {
			return
		}
		s.queue.enqueue(func() { s.handleCallback(ctx, cq) })
		return
	}

	if update.Message == nil {
		return
	}
	msg := update.Message
	s := b.session(msg.Chat.ID, msg.From)

	if msg.Location != nil {
		if !s.bridge.OfferLocation(msg.Location.Latitude, msg.Location.Longitude) {
			b.log.Debug("unexpected location ignored", "chat_id", msg.Chat.ID)
		}
		return
	}
	if !msg.IsCommand() && msg.Text != "" && s.bridge.OfferText(msg.Text) {
		return
	}

	s.queue.enqueue(func() { s.handleMessage(ctx, msg) })
}

// session возвращает сессию чата, создавая её при первом обращении.
func (b *Bot) session(chatID int64, from *tgbotapi.User) *Session {
	if s, ok := b.sessions[chatID]; ok {
		s.bridge.SetIdentity(from)
		return s
	}
	s := newSession(b, chatID, from)
	b.sessions[chatID] = s
	return s
}
