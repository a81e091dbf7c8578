package hostbridge

import (
	"context"
	"time"

	"github.com/natindo/Fiesta/internal/models"
)

// Stub — заглушка моста для запуска без реального хоста и для тестов.
// Ответы задаются полями, вызовы записываются.
type Stub struct {
	User        *models.Identity
	Scheme      string
	Caps        map[Capability]Availability
	PopupAnswer string
	PopupErr    error
	ScanText    string
	ScanErr     error
	Pos         Position
	PosErr      error

	Expanded     bool
	ClosingGuard bool
	Popups       []Popup
	ScanPrompts  []string
	PosRequests  []time.Duration

	Back StubBackControl
}

// NewStub возвращает заглушку, у которой доступны все возможности.
func NewStub() *Stub {
	return &Stub{
		Scheme:      "light",
		PopupAnswer: "ok",
		Caps: map[Capability]Availability{
			CapPopup:       Available,
			CapScan:        Available,
			CapLocation:    Available,
			CapBackControl: Available,
		},
	}
}

func (s *Stub) Expand()                    { s.Expanded = true }
func (s *Stub) ColorScheme() string        { return s.Scheme }
func (s *Stub) EnableClosingConfirmation() { s.ClosingGuard = true }

func (s *Stub) BackControl() BackControl { return &s.Back }

func (s *Stub) ShowPopup(ctx context.Context, p Popup) (string, error) {
	s.Popups = append(s.Popups, p)
	return s.PopupAnswer, s.PopupErr
}

func (s *Stub) ShowScanPopup(ctx context.Context, prompt string) (string, error) {
	s.ScanPrompts = append(s.ScanPrompts, prompt)
	return s.ScanText, s.ScanErr
}

func (s *Stub) Identity() *models.Identity { return s.User }

func (s *Stub) RequestCurrentPosition(ctx context.Context, timeout time.Duration) (Position, error) {
	s.PosRequests = append(s.PosRequests, timeout)
	return s.Pos, s.PosErr
}

func (s *Stub) Capability(c Capability) Availability {
	if s.Caps == nil {
		return Unknown
	}
	if a, ok := s.Caps[c]; ok {
		return a
	}
	return Unknown
}

// StubBackControl запоминает видимость и обработчик кнопки «назад».
type StubBackControl struct {
	Visible bool
	handler func()
	Shows   int
	Hides   int
}

func (b *StubBackControl) Show() {
	b.Visible = true
	b.Shows++
}

func (b *StubBackControl) Hide() {
	b.Visible = false
	b.Hides++
}

func (b *StubBackControl) OnActivate(fn func()) { b.handler = fn }

// Activate имитирует нажатие кнопки «назад» на стороне хоста.
func (b *StubBackControl) Activate() {
	if b.handler != nil {
		b.handler()
	}
}
