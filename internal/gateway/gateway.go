// Package gateway is the transport-integration layer: it receives relayed
// chat messages and Discord interaction callbacks over HTTP, runs the
// parse→enrich→render pipeline, and keeps the bounded artifact registry.
package gateway

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/pricehub/mirror-bot/internal/config"
	"github.com/pricehub/mirror-bot/internal/enrich"
	"github.com/pricehub/mirror-bot/internal/notifier"
	"github.com/pricehub/mirror-bot/internal/parser"
	"github.com/pricehub/mirror-bot/internal/render"
	"github.com/pricehub/mirror-bot/internal/router"
)

const trashEmoji = "\U0001F5D1\uFE0F" // trashcan

const processTimeout = 2 * time.Minute

// InboundMessage is the relay event for one chat message, as supplied by
// the transport layer.
type InboundMessage struct {
	MessageID    string              `json:"message_id"`
	ChannelID    string              `json:"channel_id"`
	AuthorID     string              `json:"author_id"`
	AuthorBot    bool                `json:"author_bot"`
	Content      string              `json:"content"`
	CreatedAt    string              `json:"created_at"` // RFC 3339
	Attachments  []parser.Attachment `json:"attachments,omitempty"`
	EmbedImages  []string            `json:"embed_images,omitempty"`
	PreviewImage string              `json:"preview_image,omitempty"`
}

// InboundReaction is the relay event for a reaction added to a message.
type InboundReaction struct {
	MessageID string `json:"message_id"`
	ChannelID string `json:"channel_id"`
	UserID    string `json:"user_id"`
	UserBot   bool   `json:"user_bot"`
	Emoji     string `json:"emoji"`
}

type Gateway struct {
	cfg      *config.Config
	discord  Deliverer
	registry *Registry
	router   *router.Router
	sem      *semaphore.Weighted
	pubKey   []byte
}

func New(cfg *config.Config, d Deliverer) (*Gateway, error) {
	var pubKey []byte
	if cfg.PublicKey != "" {
		decoded, err := hex.DecodeString(cfg.PublicKey)
		if err != nil {
			return nil, fmt.Errorf("invalid DISCORD_PUBLIC_KEY: %w", err)
		}
		pubKey = decoded
	}

	sink := deliverySink{d: d}
	return &Gateway{
		cfg:      cfg,
		discord:  d,
		registry: NewRegistry(cfg.MaxArtifacts),
		router:   router.New(sink, sink, cfg.CategoryColors),
		sem:      semaphore.NewWeighted(cfg.MaxConcurrent),
		pubKey:   pubKey,
	}, nil
}

// Routes registers the gateway's HTTP handlers.
func (g *Gateway) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/messages", g.HandleMessage)
	mux.HandleFunc("/reactions", g.HandleReaction)
	mux.HandleFunc("/interactions", g.HandleInteraction)
}

// HandleMessage accepts a relayed message and mirrors it asynchronously; the
// response only acknowledges receipt.
func (g *Gateway) HandleMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var msg InboundMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if err := g.sem.Acquire(r.Context(), 1); err != nil {
		http.Error(w, "busy", http.StatusServiceUnavailable)
		return
	}
	go func() {
		defer g.sem.Release(1)
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("Panic in message processing", "panic", rec)
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()
		if err := g.processMessage(ctx, msg); err != nil {
			slog.Error("Error mirroring message", "message_id", msg.MessageID, "error", err)
		}
	}()

	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintln(w, "accepted")
}

func (g *Gateway) processMessage(ctx context.Context, msg InboundMessage) error {
	if msg.AuthorBot {
		return nil
	}
	if msg.ChannelID != g.cfg.SourceChannelID {
		return nil
	}
	if !parser.LooksLikeDealPost(msg.Content) {
		slog.Info("Skipping non-deal message", "message_id", msg.MessageID)
		return nil
	}

	// Give the transport a moment to populate link previews when the text
	// has URLs but no attachments came with it.
	if len(msg.Attachments) == 0 && len(msg.EmbedImages) == 0 && containsURL(msg.Content) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(g.cfg.PreviewWait):
		}
	}

	rec := parser.Parse(msg.Content, parser.Hints{
		Attachments:  msg.Attachments,
		EmbedImages:  msg.EmbedImages,
		PreviewImage: msg.PreviewImage,
	})
	enrich.Apply(rec, msg.Content, messageDate(msg.CreatedAt))

	slog.Info("Parsed deal message",
		"message_id", msg.MessageID,
		"title", rec.Title,
		"quality", rec.Quality,
		"seller", rec.Seller,
		"domain", parser.Domain(rec.URL),
		"images", len(rec.Images))

	rctx := render.Context{
		AllowEdit:               true,
		EditorIDs:               g.cfg.EditorIDs,
		ChannelButtons:          g.cfg.RouteButtons,
		DisableRoutingAfterSend: g.cfg.DisableRoutingAfterSend,
		Colors:                  g.cfg.CategoryColors,
		FooterText:              g.cfg.FooterText,
		FooterIcon:              g.cfg.FooterIcon,
		Grid:                    g.cfg.GridLayout,
	}
	embeds, surface := render.Build(rec, rctx)

	id, err := g.discord.CreateMessage(ctx, g.cfg.TargetChannelID, notifier.Message{
		Content:    g.cfg.MirrorMention,
		Embeds:     embeds,
		Components: surface.Rows(),
	})
	if err != nil {
		return fmt.Errorf("posting mirror: %w", err)
	}

	g.registry.Put(&Artifact{
		Record:    rec,
		Ctx:       rctx,
		Surface:   surface,
		ChannelID: g.cfg.TargetChannelID,
		MessageID: id,
		OwnerID:   msg.AuthorID,
		CreatedAt: time.Now(),
	})

	if err := g.discord.CreateReaction(ctx, g.cfg.TargetChannelID, id, trashEmoji); err != nil {
		slog.Warn("Failed to add delete reaction", "message_id", id, "error", err)
	}
	return nil
}

// HandleReaction deletes a mirrored message when its recorded owner reacts
// with the trashcan; anyone else's reaction is ignored.
func (g *Gateway) HandleReaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var ev InboundReaction
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if ev.UserBot || ev.Emoji != trashEmoji {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	art, ok := g.registry.Get(ev.MessageID)
	if !ok || art.OwnerID != ev.UserID {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := g.discord.DeleteMessage(r.Context(), art.ChannelID, art.MessageID); err != nil {
		// Missing permission or an already-deleted message is not fatal.
		slog.Warn("Failed to delete mirrored message", "message_id", ev.MessageID, "error", err)
	} else {
		g.registry.Remove(ev.MessageID)
	}
	w.WriteHeader(http.StatusNoContent)
}

func containsURL(text string) bool {
	return strings.Contains(text, "http://") || strings.Contains(text, "https://")
}

// messageDate reduces an RFC 3339 timestamp to its ISO date, empty when the
// timestamp is absent or malformed.
func messageDate(created string) string {
	if created == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// deliverySink adapts the Discord client to the router's interfaces.
type deliverySink struct {
	d Deliverer
}

func (s deliverySink) SendEmbeds(ctx context.Context, channelID, content string, embeds []render.Embed) error {
	_, err := s.d.CreateMessage(ctx, channelID, notifier.Message{Content: content, Embeds: embeds})
	if errors.Is(err, notifier.ErrNotFound) {
		return fmt.Errorf("channel %s: %w", channelID, router.ErrUnknownDestination)
	}
	return err
}

func (s deliverySink) UpdateSurface(ctx context.Context, channelID, messageID string, surface *render.Surface) error {
	return s.d.EditMessage(ctx, channelID, messageID, notifier.Message{Components: surface.Rows()})
}
