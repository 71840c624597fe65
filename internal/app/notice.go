package app

import "time"

type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeSuccess
	NoticeWarning
	NoticeError
)

func (l NoticeLevel) String() string {
	switch l {
	case NoticeSuccess:
		return "success"
	case NoticeWarning:
		return "warning"
	case NoticeError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a short status message for the user, the equivalent of a toast.
type Notice struct {
	Level   NoticeLevel
	Message string
	Err     error
	At      time.Time
}
