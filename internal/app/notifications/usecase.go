package notifications

import (
	"context"

	"shiplife/internal/app/ports"
)

type Response struct {
	Notifications []ports.Notification `json:"notifications"`
}

type UseCase struct {
	Feed ports.NotificationFeed
}

// Execute drains the feed; each notification is delivered once.
func (u UseCase) Execute(_ context.Context) (Response, error) {
	items := u.Feed.Drain()
	if items == nil {
		items = []ports.Notification{}
	}
	return Response{Notifications: items}, nil
}
