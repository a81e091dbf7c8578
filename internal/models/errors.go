package models

import "errors"

var (
	// ErrSubmitInFlight возвращается, если отправка формы уже выполняется.
	ErrSubmitInFlight = errors.New("submission already in progress")
	// ErrDraftInvalid возвращается, когда черновик не прошёл проверку.
	ErrDraftInvalid = errors.New("draft validation failed")
	// ErrCapabilityUnavailable возвращается при обращении к недоступной возможности хоста.
	ErrCapabilityUnavailable = errors.New("host capability unavailable")
)
