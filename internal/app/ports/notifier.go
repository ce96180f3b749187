package ports

import "time"

type NotificationKind string

const (
	NotifyInfo    NotificationKind = "info"
	NotifyTrophy  NotificationKind = "trophy"
	NotifyWarning NotificationKind = "warning"
	NotifyError   NotificationKind = "error"
)

type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
	At      time.Time        `json:"at"`
}

type Notifier interface {
	Notify(n Notification)
}

type NotificationFeed interface {
	Notifier
	Drain() []Notification
}

// Notify sends a timestamped notification; a nil notifier drops it.
func Notify(n Notifier, kind NotificationKind, message string) {
	if n == nil {
		return
	}
	n.Notify(Notification{Kind: kind, Message: message, At: time.Now()})
}
