package bot

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/natindo/Fiesta/internal/form"
	"github.com/natindo/Fiesta/internal/hostbridge"
	"github.com/natindo/Fiesta/internal/models"
	"github.com/natindo/Fiesta/internal/navigation"
)

// Session — состояние одного чата: мост к хосту, стек экранов и черновик.
// Все обработчики сессии выполняются её очередью строго по одному,
// поэтому курсор диалога и активный экран не требуют синхронизации.
type Session struct {
	chatID  int64
	bridge  *hostbridge.TelegramBridge
	surface *chatSurface
	nav     *navigation.Controller
	form    *form.Controller
	queue   *serialQueue
	log     *slog.Logger
}

func newSession(b *Bot, chatID int64, from *tgbotapi.User) *Session {
	bridge := hostbridge.NewTelegram(b.api, chatID, b.log)
	bridge.SetIdentity(from)

	surface := newChatSurface(b.api, chatID, bridge, b.store, b.log)
	nav := navigation.New(bridge, surface, b.store.LoadEvents, b.log)
	if b.cache != nil {
		nav.SetEvents(b.cache.Snapshot())
	}
	formCtl := form.New(bridge, b.store, nav, b.loc, b.log)
	surface.form = formCtl

	// Приветственный набор вызовов хоста при старте сессии.
	bridge.Expand()
	bridge.EnableClosingConfirmation()
	b.log.Debug("session started", "chat_id", chatID, "color_scheme", bridge.ColorScheme())

	return &Session{
		chatID:  chatID,
		bridge:  bridge,
		surface: surface,
		nav:     nav,
		form:    formCtl,
		queue:   newSerialQueue(64, b.log),
		log:     b.log,
	}
}

func (s *Session) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() {
		s.handleCommand(ctx, msg)
		return
	}
	// Свободный текст имеет смысл только на экране создания.
	if s.nav.Active() == models.ViewCreate {
		s.handleFormInput(ctx, msg.Text)
	}
}

func (s *Session) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		s.surface.sendText("Привет! Здесь можно найти мероприятие или создать своё.\n" +
			"/events — список мероприятий\n" +
			"/create — создать мероприятие\n" +
			"/profile — профиль\n" +
			"/help — справка")
		s.nav.ShowView(ctx, models.ViewList)
	case "events":
		s.nav.ShowView(ctx, models.ViewList)
	case "create":
		s.openCreate(ctx)
	case "profile":
		s.nav.ShowView(ctx, models.ViewProfile)
	case "help":
		s.surface.sendText("Справка:\n" +
			"/events — список ближайших мероприятий\n" +
			"/create — пошагово создать мероприятие\n" +
			"/profile — ваш профиль\n" +
			"Кнопка «назад» возвращает на предыдущий экран.")
	default:
		s.surface.sendText("Неизвестная команда. Используйте /help")
	}
}

func (s *Session) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	answer := func(text string) {
		if _, err := s.surface.api.Request(tgbotapi.NewCallback(cq.ID, text)); err != nil {
			s.log.Debug("answer callback failed", "error", err)
		}
	}

	data := cq.Data
	switch {
	case data == "view:events":
		answer("")
		s.nav.ShowView(ctx, models.ViewList)

	case data == "view:create":
		answer("")
		s.openCreate(ctx)

	case data == "view:profile":
		answer("")
		s.nav.ShowView(ctx, models.ViewProfile)

	case data == "nav:back":
		answer("")
		s.bridge.ActivateBack()

	case strings.HasPrefix(data, "event:join:"):
		// Запись на мероприятия ещё не реализована.
		answer("Запись скоро станет доступна")

	case strings.HasPrefix(data, "event:"):
		id, err := strconv.Atoi(strings.TrimPrefix(data, "event:"))
		if err != nil {
			answer("Некорректный идентификатор")
			return
		}
		answer("")
		s.nav.ShowDetail(ctx, id)

	case data == "form:submit":
		answer("")
		if err := s.form.Submit(ctx); err != nil {
			s.log.Debug("submit rejected", "chat_id", s.chatID, "error", err)
			if errors.Is(err, models.ErrDraftInvalid) {
				// Перерисовываем сводку, чтобы показать пометки ошибок.
				s.surface.RenderCreate()
			}
		} else {
			// Форма завершена: следующий /create начнёт диалог с первого поля.
			s.surface.resetFlow()
		}

	case data == "form:private":
		private := !s.form.Draft().IsPrivate
		s.form.SetPrivate(private)
		if private {
			answer("Мероприятие станет приватным")
		} else {
			answer("Мероприятие станет публичным")
		}
		s.surface.RenderCreate()

	case data == "form:cancel":
		// Явный отказ от создания выбрасывает черновик.
		answer("Черновик удалён")
		s.form.Cancel()
		s.surface.resetFlow()
		s.nav.ReturnToList(ctx)

	case data == "form:location":
		answer("")
		if err := s.form.AssistLocation(ctx); err != nil {
			s.log.Debug("location assist failed", "chat_id", s.chatID, "error", err)
			return
		}
		s.surface.RenderCreate()

	default:
		// Если callback_data не узнаём, сообщим пользователю.
		answer("Неизвестное действие")
	}
}

func (s *Session) openCreate(ctx context.Context) {
	s.form.Open()
	s.surface.resetFlow()
	s.nav.ShowView(ctx, models.ViewCreate)
}

// handleFormInput ведёт пошаговый диалог заполнения формы: каждое сообщение —
// значение текущего поля, «-» оставляет поле как есть (пустое или заполненное
// ранее). Невалидное значение не продвигает диалог.
func (s *Session) handleFormInput(ctx context.Context, text string) {
	fields := formFields
	if s.surface.flowIdx >= len(fields) {
		s.surface.sendText("Все поля заполнены. Проверьте данные и нажмите «Создать мероприятие».")
		s.surface.RenderCreate()
		return
	}

	f := fields[s.surface.flowIdx]
	var ok bool
	if strings.TrimSpace(text) == "-" {
		ok = s.form.ValidateField(f)
	} else {
		ok = s.form.SetField(f, text)
	}

	if !ok {
		s.surface.sendText(fieldErrorHint(f))
	} else {
		s.surface.flowIdx++
	}
	s.surface.RenderCreate()
}

func fieldErrorHint(f models.Field) string {
	switch f {
	case models.FieldTitle:
		return "Пожалуйста, укажите название мероприятия."
	case models.FieldDate:
		return "Не удалось распознать дату: нужен формат YYYY-MM-DD, не раньше сегодняшнего дня."
	case models.FieldTime:
		return "Некорректный формат времени (HH:MM)."
	case models.FieldLocation:
		return "Пожалуйста, укажите место проведения."
	case models.FieldMaxAttendees:
		return "Лимит участников — положительное число, либо «-» без ограничения."
	default:
		return "Поле заполнено неверно, попробуйте ещё раз."
	}
}
