// Package notify fans theme progress out to live subscribers, through Redis
// pub/sub when available and in memory otherwise.
package notify

import (
	"context"

	"github.com/maheshrc27/colorpress/internal/transfer"
)

const subscriberBuffer = 32

// Subscriber streams the events of one theme until cancel is called.
type Subscriber interface {
	Subscribe(ctx context.Context, themeID string) (events <-chan transfer.ThemeEvent, cancel func(), err error)
}

func Channel(themeID string) string {
	return "theme:" + themeID
}
