// Package navigation управляет активным экраном и историей переходов.
package navigation

import (
	"context"
	"log/slog"
	"sync"

	"github.com/natindo/Fiesta/internal/hostbridge"
	"github.com/natindo/Fiesta/internal/models"
)

// Surface — поверхность, в которую контроллер отрисовывает экраны.
type Surface interface {
	RenderList(events []models.EventSummary)
	RenderDetail(ev models.EventSummary)
	RenderCreate()
	RenderProfile()
}

// LoadFunc загружает список мероприятий для экрана списка.
type LoadFunc func(ctx context.Context) ([]models.EventSummary, error)

// Controller владеет стеком экранов. Вершина стека всегда равна активному
// экрану; ниже экрана списка стек не опускается. Кнопка «назад» хоста видна
// тогда и только тогда, когда глубина стека больше единицы.
type Controller struct {
	bridge  hostbridge.Bridge
	surface Surface
	load    LoadFunc
	log     *slog.Logger

	// Переходы сериализуются: видимость кнопки «назад» обязана совпадать
	// с глубиной стека в любой момент.
	mu     sync.Mutex
	stack  []models.View
	events []models.EventSummary // последний отрисованный набор
	detail models.EventSummary   // последнее открытое мероприятие
}

// New создаёт контроллер с экраном списка на дне стека.
// Нажатие кнопки «назад» хоста и «назад» на поверхности сводятся к одному
// GoBack, поэтому любой источник даёт одинаковый переход.
func New(bridge hostbridge.Bridge, surface Surface, load LoadFunc, log *slog.Logger) *Controller {
	c := &Controller{
		bridge:  bridge,
		surface: surface,
		load:    load,
		log:     log,
		stack:   []models.View{models.ViewList},
	}
	bridge.BackControl().OnActivate(func() {
		c.GoBack(context.Background())
	})
	return c
}

// Active возвращает активный экран.
func (c *Controller) Active() models.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.top()
}

// Depth возвращает глубину истории.
func (c *Controller) Depth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.stack)
}

// Events возвращает последний отрисованный набор мероприятий.
func (c *Controller) Events() []models.EventSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.events
}

// SetEvents запоминает набор мероприятий без перерисовки,
// например прогретый кэш при старте сессии.
func (c *Controller) SetEvents(events []models.EventSummary) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = events
}

// ShowView кладёт экран в стек, если он отличается от вершины, и отрисовывает
// его. Возврат на экран списка заново загружает мероприятия из хранилища.
func (c *Controller) ShowView(ctx context.Context, v models.View) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v != c.top() {
		c.stack = append(c.stack, v)
	}
	c.render(ctx, v, v == models.ViewList)
	c.syncBackControl()
}

// ShowDetail открывает мероприятие по id из последнего отрисованного набора.
// Неизвестный id — тихий no-op: набор живёт только на клиенте и мог устареть.
func (c *Controller) ShowDetail(ctx context.Context, eventID int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ev := range c.events {
		if ev.ID == eventID {
			c.detail = ev
			c.stack = append(c.stack, models.ViewDetail)
			c.render(ctx, models.ViewDetail, false)
			c.syncBackControl()
			return
		}
	}
	c.log.Debug("event not found, detail ignored", "event_id", eventID)
}

// ReturnToList сворачивает историю до экрана списка и перечитывает
// мероприятия. Используется при завершении формы: оставшийся в истории
// экран создания показывал бы уже выброшенный черновик.
func (c *Controller) ReturnToList(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stack = c.stack[:1]
	c.render(ctx, models.ViewList, true)
	c.syncBackControl()
}

// GoBack снимает вершину стека и восстанавливает предыдущий экран.
// На дне стека ничего не делает, поэтому повторные нажатия безопасны.
func (c *Controller) GoBack(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.stack) <= 1 {
		return
	}
	c.stack = c.stack[:len(c.stack)-1]
	c.render(ctx, c.top(), false)
	c.syncBackControl()
}

func (c *Controller) top() models.View { return c.stack[len(c.stack)-1] }

func (c *Controller) render(ctx context.Context, v models.View, reload bool) {
	switch v {
	case models.ViewList:
		if reload && c.load != nil {
			events, err := c.load(ctx)
			if err != nil {
				// Показываем прежний набор: загрузка восстановима и не
				// должна ронять навигацию.
				c.log.Error("load events failed", "error", err)
			} else {
				c.events = events
			}
		}
		c.surface.RenderList(c.events)
	case models.ViewDetail:
		c.surface.RenderDetail(c.detail)
	case models.ViewCreate:
		c.surface.RenderCreate()
	case models.ViewProfile:
		c.surface.RenderProfile()
	}
}

func (c *Controller) syncBackControl() {
	if len(c.stack) > 1 {
		c.bridge.BackControl().Show()
	} else {
		c.bridge.BackControl().Hide()
	}
}
