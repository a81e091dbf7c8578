package models

// View — какой экран мини-приложения сейчас активен.
// Ровно один экран активен в любой момент времени.
type View int

const (
	ViewList View = iota
	ViewDetail
	ViewCreate
	ViewProfile
)

func (v View) String() string {
	switch v {
	case ViewList:
		return "list"
	case ViewDetail:
		return "detail"
	case ViewCreate:
		return "create"
	case ViewProfile:
		return "profile"
	default:
		return "unknown"
	}
}
