package gateway

import (
	"context"

	"github.com/pricehub/mirror-bot/internal/notifier"
)

// Deliverer abstracts the Discord REST layer.
type Deliverer interface {
	CreateMessage(ctx context.Context, channelID string, msg notifier.Message) (string, error)
	EditMessage(ctx context.Context, channelID, messageID string, msg notifier.Message) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	CreateReaction(ctx context.Context, channelID, messageID, emoji string) error
}
