// Package router forwards a rendered deal card to a pre-configured
// destination, recolored to the destination's color.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pricehub/mirror-bot/internal/render"
)

// ErrUnknownDestination marks a destination that could not be resolved.
// Callers report it privately to the invoker; nothing was delivered.
var ErrUnknownDestination = errors.New("unknown destination")

// Sink delivers embeds to a destination channel. Implementations wrap
// resolution failures in ErrUnknownDestination.
type Sink interface {
	SendEmbeds(ctx context.Context, channelID, content string, embeds []render.Embed) error
}

// SurfaceStore persists an updated control surface on the hosting message.
type SurfaceStore interface {
	UpdateSurface(ctx context.Context, channelID, messageID string, surface *render.Surface) error
}

// Router performs routing actions. It is permission-agnostic: any holder of
// the control surface may route.
type Router struct {
	sink   Sink
	store  SurfaceStore
	colors map[string]int
}

func New(sink Sink, store SurfaceStore, colors map[string]int) *Router {
	if colors == nil {
		colors = render.DefaultColors()
	}
	return &Router{sink: sink, store: store, colors: colors}
}

// Request carries one routing invocation.
type Request struct {
	Destination render.ChannelButton

	// Embeds are the currently displayed cards, not a fresh rendering.
	Embeds  []render.Embed
	Surface *render.Surface

	// Hosting message coordinates, used to persist a disabled surface.
	SourceChannelID string
	SourceMessageID string

	DisableAfterSend bool
}

// Route recolors the displayed cards for the destination, composes the
// mention prefix, and delivers all cards as one unit. On success it returns
// the private acknowledgment for the invoker. When configured, routing
// controls are disabled afterwards; failing to persist that is logged and
// swallowed because the delivery itself already succeeded.
func (r *Router) Route(ctx context.Context, req Request) (string, error) {
	dest := req.Destination
	if dest.ChannelID == "" {
		return "", fmt.Errorf("%s: %w", dest.Label, ErrUnknownDestination)
	}

	color := render.ColorForLabel(strings.ToLower(dest.Label), r.colors)
	recolored := make([]render.Embed, len(req.Embeds))
	for i, e := range req.Embeds {
		recolored[i] = render.Recolor(e, color)
	}

	var parts []string
	if dest.MentionEveryone {
		parts = append(parts, "@everyone")
	}
	if dest.RoleID != "" {
		parts = append(parts, "<@&"+dest.RoleID+">")
	}
	content := strings.Join(parts, " ")

	if err := r.sink.SendEmbeds(ctx, dest.ChannelID, content, recolored); err != nil {
		if errors.Is(err, ErrUnknownDestination) {
			return "", err
		}
		return "", fmt.Errorf("delivering to %s: %w", dest.Label, err)
	}

	if req.DisableAfterSend && req.Surface != nil {
		req.Surface.DisableRouting()
		if r.store != nil {
			if err := r.store.UpdateSurface(ctx, req.SourceChannelID, req.SourceMessageID, req.Surface); err != nil {
				slog.Warn("Failed to persist disabled routing controls",
					"message_id", req.SourceMessageID, "error", err)
			}
		}
	}

	return fmt.Sprintf("Sent to %s.", dest.Label), nil
}
