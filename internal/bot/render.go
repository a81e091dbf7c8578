package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/natindo/Fiesta/internal/form"
	"github.com/natindo/Fiesta/internal/hostbridge"
	"github.com/natindo/Fiesta/internal/models"
	"github.com/natindo/Fiesta/internal/store"
)

// Порядок полей пошагового диалога создания.
var formFields = []models.Field{
	models.FieldTitle,
	models.FieldDescription,
	models.FieldDate,
	models.FieldTime,
	models.FieldLocation,
	models.FieldMaxAttendees,
}

// chatSurface отрисовывает экраны приложения сообщениями в чат.
type chatSurface struct {
	api    *tgbotapi.BotAPI
	chatID int64
	bridge *hostbridge.TelegramBridge
	store  store.EventStore
	log    *slog.Logger
	form   *form.Controller // выставляется после создания контроллера формы

	flowIdx int         // курсор пошагового диалога создания
	active  models.View // для подсветки активной кнопки навигации
}

func newChatSurface(api *tgbotapi.BotAPI, chatID int64, bridge *hostbridge.TelegramBridge, st store.EventStore, log *slog.Logger) *chatSurface {
	return &chatSurface{api: api, chatID: chatID, bridge: bridge, store: st, log: log}
}

func (s *chatSurface) resetFlow() { s.flowIdx = 0 }

// RenderList показывает карточки мероприятий с кнопками перехода к деталям.
func (s *chatSurface) RenderList(events []models.EventSummary) {
	s.active = models.ViewList

	var sb strings.Builder
	var rows [][]tgbotapi.InlineKeyboardButton

	if len(events) == 0 {
		sb.WriteString("Пока нет мероприятий.")
	} else {
		sb.WriteString("Ближайшие мероприятия:\n\n")
		for _, e := range events {
			fmt.Fprintf(&sb, "%s\n📅 %s  👥 %d", e.Title, e.StartsAt.Format("02.01.2006 15:04"), e.Attendees)
			if e.MaxAttendees != nil {
				fmt.Fprintf(&sb, " из %d", *e.MaxAttendees)
			}
			fmt.Fprintf(&sb, "\n📍 %s\n\n", e.Location)
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(e.Title, fmt.Sprintf("event:%d", e.ID)),
			))
		}
	}

	rows = append(rows, s.navRow())
	s.send(sb.String(), s.withBack(rows))
}

// RenderDetail показывает одно мероприятие целиком.
func (s *chatSurface) RenderDetail(ev models.EventSummary) {
	s.active = models.ViewDetail

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n\n", ev.Title)
	fmt.Fprintf(&sb, "📅 %s\n", ev.StartsAt.Format("02.01.2006 15:04"))
	fmt.Fprintf(&sb, "📍 %s\n", ev.Location)
	fmt.Fprintf(&sb, "👥 Участников: %d", ev.Attendees)
	if ev.MaxAttendees != nil {
		fmt.Fprintf(&sb, " из %d", *ev.MaxAttendees)
	}
	if ev.Description != "" {
		fmt.Fprintf(&sb, "\n\n%s", ev.Description)
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Присоединиться", fmt.Sprintf("event:join:%d", ev.ID)),
		),
	}
	s.send(sb.String(), s.withBack(rows))
}

// RenderCreate показывает либо запрос текущего поля диалога, либо сводку
// черновика с кнопкой отправки.
func (s *chatSurface) RenderCreate() {
	s.active = models.ViewCreate

	if s.flowIdx < len(formFields) {
		s.renderFieldPrompt(formFields[s.flowIdx])
		return
	}
	s.renderDraftSummary()
}

func (s *chatSurface) renderFieldPrompt(f models.Field) {
	draft := s.form.Draft()

	var text string
	var rows [][]tgbotapi.InlineKeyboardButton
	switch f {
	case models.FieldTitle:
		text = "Введите название мероприятия:"
	case models.FieldDescription:
		text = "Опишите мероприятие (или «-», чтобы пропустить):"
	case models.FieldDate:
		text = fmt.Sprintf("Введите дату (YYYY-MM-DD), сейчас %s (оставить — «-»):", draft.Date)
	case models.FieldTime:
		text = fmt.Sprintf("Введите время начала (HH:MM), сейчас %s (оставить — «-»):", draft.Time)
	case models.FieldLocation:
		text = "Где будет проходить мероприятие?"
		// Кнопка помощи показывается, только если хост умеет геолокацию
		// или сканирование.
		if s.form.LocationAssistAvailable() {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🗺️ Подставить место", "form:location"),
			))
		}
	case models.FieldMaxAttendees:
		text = "Максимальное количество участников (или «-» — без ограничения):"
	}

	s.send(text, s.withBack(rows))
}

func (s *chatSurface) renderDraftSummary() {
	draft := s.form.Draft()
	validity := s.form.Validity()

	mark := func(f models.Field) string {
		if ok, checked := validity[f]; checked && !ok {
			return " ✗"
		}
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Проверьте данные:\n\n")
	fmt.Fprintf(&sb, "Название: %s%s\n", draft.Title, mark(models.FieldTitle))
	if draft.Description != "" {
		fmt.Fprintf(&sb, "Описание: %s\n", draft.Description)
	}
	fmt.Fprintf(&sb, "Дата: %s%s\n", draft.Date, mark(models.FieldDate))
	fmt.Fprintf(&sb, "Время: %s%s\n", draft.Time, mark(models.FieldTime))
	fmt.Fprintf(&sb, "Место: %s%s\n", draft.Location, mark(models.FieldLocation))
	if draft.MaxAttendees != "" {
		fmt.Fprintf(&sb, "Лимит участников: %s%s\n", draft.MaxAttendees, mark(models.FieldMaxAttendees))
	} else {
		sb.WriteString("Лимит участников: без ограничения\n")
	}
	if draft.IsPrivate {
		sb.WriteString("Приватное: да\n")
	} else {
		sb.WriteString("Приватное: нет\n")
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	if s.form.SubmitEnabled() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Создать мероприятие", "form:submit"),
		))
	} else {
		sb.WriteString("\n⏳ Отправка...")
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Сменить приватность", "form:private"),
		tgbotapi.NewInlineKeyboardButtonData("Отмена", "form:cancel"),
	))

	s.send(sb.String(), s.withBack(rows))
}

// RenderProfile показывает сводку профиля со счётчиками из хранилища.
func (s *chatSurface) RenderProfile() {
	s.active = models.ViewProfile

	user := s.bridge.Identity()
	if user == nil {
		// Хост не передал пользователя: показываем заглушку, как и макет.
		user = &models.Identity{FirstName: "User", Username: "user"}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n@%s\n\n", user.DisplayName(), user.Username)

	stats, err := s.store.ProfileStats(context.Background(), user.NumericID)
	if err != nil {
		s.log.Error("profile stats failed", "chat_id", s.chatID, "error", err)
		sb.WriteString("Статистика временно недоступна.")
	} else {
		fmt.Fprintf(&sb, "Мероприятий: %d\nПосещено: %d\nОрганизовано: %d", stats.Events, stats.Attended, stats.Hosted)
	}

	s.send(sb.String(), s.withBack([][]tgbotapi.InlineKeyboardButton{s.navRow()}))
}

// navRow — кнопки переключения экранов, активный помечается точкой.
func (s *chatSurface) navRow() []tgbotapi.InlineKeyboardButton {
	label := func(text string, v models.View) string {
		if v == s.active {
			return "• " + text
		}
		return text
	}
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(label("Мероприятия", models.ViewList), "view:events"),
		tgbotapi.NewInlineKeyboardButtonData(label("Создать", models.ViewCreate), "view:create"),
		tgbotapi.NewInlineKeyboardButtonData(label("Профиль", models.ViewProfile), "view:profile"),
	)
}

// withBack дорисовывает кнопку «назад», когда контроллер хоста видим.
func (s *chatSurface) withBack(rows [][]tgbotapi.InlineKeyboardButton) [][]tgbotapi.InlineKeyboardButton {
	if s.bridge.BackVisible() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅ Назад", "nav:back"),
		))
	}
	return rows
}

func (s *chatSurface) send(text string, rows [][]tgbotapi.InlineKeyboardButton) {
	msg := tgbotapi.NewMessage(s.chatID, text)
	if len(rows) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	if _, err := s.api.Send(msg); err != nil {
		s.log.Error("render failed", "chat_id", s.chatID, "error", err)
	}
}

func (s *chatSurface) sendText(text string) {
	if _, err := s.api.Send(tgbotapi.NewMessage(s.chatID, text)); err != nil {
		s.log.Error("send failed", "chat_id", s.chatID, "error", err)
	}
}
