package gateway

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/pricehub/mirror-bot/internal/render"
	"github.com/pricehub/mirror-bot/internal/router"
	"github.com/pricehub/mirror-bot/internal/session"
)

// Discord interaction and response type numbers.
const (
	interactionPing        = 1
	interactionComponent   = 3
	interactionModalSubmit = 5

	responsePong          = 1
	responseMessage       = 4
	responseUpdateMessage = 7
	responseModal         = 9

	ephemeralFlag = 1 << 6

	manageMessagesBit = 1 << 13
)

type interactionUser struct {
	ID string `json:"id"`
}

type interactionMember struct {
	User        interactionUser `json:"user"`
	Permissions string          `json:"permissions"` // bitfield, decimal string
}

type modalValue struct {
	CustomID string `json:"custom_id"`
	Value    string `json:"value"`
	// Modal rows nest one level.
	Components []modalValue `json:"components,omitempty"`
}

type interactionData struct {
	CustomID   string       `json:"custom_id"`
	Components []modalValue `json:"components,omitempty"`
}

type interactionMessage struct {
	ID     string         `json:"id"`
	Embeds []render.Embed `json:"embeds"`
}

type interaction struct {
	Type      int                 `json:"type"`
	Data      interactionData     `json:"data"`
	Member    *interactionMember  `json:"member"`
	User      *interactionUser    `json:"user"`
	Message   *interactionMessage `json:"message"`
	ChannelID string              `json:"channel_id"`
}

type interactionResponse struct {
	Type int `json:"type"`
	Data any `json:"data,omitempty"`
}

type responseMessageData struct {
	Content    string             `json:"content,omitempty"`
	Flags      int                `json:"flags,omitempty"`
	Embeds     []render.Embed     `json:"embeds,omitempty"`
	Components []render.ActionRow `json:"components,omitempty"`
}

type modalInputJSON struct {
	Type        int    `json:"type"` // 4 = text input
	CustomID    string `json:"custom_id"`
	Label       string `json:"label"`
	Style       int    `json:"style"`
	Value       string `json:"value,omitempty"`
	Required    bool   `json:"required"`
	MaxLength   int    `json:"max_length,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
}

type modalRowJSON struct {
	Type       int              `json:"type"` // 1 = action row
	Components []modalInputJSON `json:"components"`
}

type modalJSON struct {
	CustomID   string         `json:"custom_id"`
	Title      string         `json:"title"`
	Components []modalRowJSON `json:"components"`
}

// payloadPerms answers the management-privilege question from the
// interaction's own member permissions bitfield.
type payloadPerms struct {
	member *interactionMember
}

func (p payloadPerms) CanManageMessages(string) bool {
	if p.member == nil {
		return false
	}
	bits, err := strconv.ParseUint(p.member.Permissions, 10, 64)
	if err != nil {
		return false
	}
	return bits&manageMessagesBit != 0
}

// HandleInteraction serves Discord's interactions endpoint: signature check,
// then dispatch on interaction type.
func (g *Gateway) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !g.verifySignature(r.Header, body) {
		http.Error(w, "invalid request signature", http.StatusUnauthorized)
		return
	}

	var ic interaction
	if err := json.Unmarshal(body, &ic); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	switch ic.Type {
	case interactionPing:
		writeJSON(w, interactionResponse{Type: responsePong})
	case interactionComponent:
		g.handleComponent(r.Context(), w, &ic)
	case interactionModalSubmit:
		g.handleModalSubmit(w, &ic)
	default:
		http.Error(w, "unsupported interaction type", http.StatusBadRequest)
	}
}

func (g *Gateway) verifySignature(h http.Header, body []byte) bool {
	if len(g.pubKey) == 0 {
		return true
	}
	sig, err := hex.DecodeString(h.Get("X-Signature-Ed25519"))
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	ts := h.Get("X-Signature-Timestamp")
	return ed25519.Verify(ed25519.PublicKey(g.pubKey), append([]byte(ts), body...), sig)
}

func (g *Gateway) handleComponent(ctx context.Context, w http.ResponseWriter, ic *interaction) {
	art, ok := g.artifactFor(ic)
	if !ok {
		ephemeral(w, "This deal is no longer interactive.")
		return
	}
	userID := interactionUserID(ic)

	switch customID := ic.Data.CustomID; {
	case customID == render.CustomIDEdit || customID == render.CustomIDAdvanced:
		kind := session.FormBasic
		if customID == render.CustomIDAdvanced {
			kind = session.FormAdvanced
		}
		art.Lock()
		sess := session.New(art.Record, art.Ctx, payloadPerms{member: ic.Member})
		modal, err := sess.Open(kind, userID)
		art.Unlock()
		if errors.Is(err, session.ErrPermissionDenied) {
			ephemeral(w, "You don't have permission to edit this embed.")
			return
		}
		writeJSON(w, interactionResponse{Type: responseModal, Data: toModalJSON(modal)})

	case render.RouteIndex(customID) >= 0:
		idx := render.RouteIndex(customID)
		if idx >= len(art.Ctx.ChannelButtons) {
			ephemeral(w, "That destination is no longer configured.")
			return
		}
		btn := art.Ctx.ChannelButtons[idx]

		art.Lock()
		ack, err := g.router.Route(ctx, router.Request{
			Destination:      btn,
			Embeds:           ic.Message.Embeds,
			Surface:          &art.Surface,
			SourceChannelID:  art.ChannelID,
			SourceMessageID:  art.MessageID,
			DisableAfterSend: art.Ctx.DisableRoutingAfterSend,
		})
		art.Unlock()

		switch {
		case errors.Is(err, router.ErrUnknownDestination):
			ephemeral(w, fmt.Sprintf("%s channel not found.", btn.Label))
		case err != nil:
			slog.Warn("Routing failed", "destination", btn.Label, "error", err)
			ephemeral(w, fmt.Sprintf("Failed to send to %s: %v", btn.Label, err))
		default:
			ephemeral(w, ack)
		}

	default:
		ephemeral(w, "Unknown control.")
	}
}

func (g *Gateway) handleModalSubmit(w http.ResponseWriter, ic *interaction) {
	art, ok := g.artifactFor(ic)
	if !ok {
		ephemeral(w, "This deal is no longer interactive.")
		return
	}
	userID := interactionUserID(ic)

	var kind session.FormKind
	switch ic.Data.CustomID {
	case session.ModalIDBasic:
		kind = session.FormBasic
	case session.ModalIDAdvanced:
		kind = session.FormAdvanced
	default:
		ephemeral(w, "Unknown form.")
		return
	}

	values := make(map[string]string)
	flattenModalValues(ic.Data.Components, values)

	art.Lock()
	sess := session.New(art.Record, art.Ctx, payloadPerms{member: ic.Member})
	embeds, surface, err := sess.Submit(kind, userID, values)
	if err == nil {
		art.Surface = surface
	}
	art.Unlock()

	if errors.Is(err, session.ErrPermissionDenied) {
		ephemeral(w, "You don't have permission to edit this embed.")
		return
	}

	writeJSON(w, interactionResponse{Type: responseUpdateMessage, Data: responseMessageData{
		Embeds:     embeds,
		Components: surface.Rows(),
	}})
}

func (g *Gateway) artifactFor(ic *interaction) (*Artifact, bool) {
	if ic.Message == nil {
		return nil, false
	}
	return g.registry.Get(ic.Message.ID)
}

func interactionUserID(ic *interaction) string {
	if ic.Member != nil {
		return ic.Member.User.ID
	}
	if ic.User != nil {
		return ic.User.ID
	}
	return ""
}

func flattenModalValues(rows []modalValue, out map[string]string) {
	for _, v := range rows {
		if v.CustomID != "" {
			out[v.CustomID] = v.Value
		}
		flattenModalValues(v.Components, out)
	}
}

func toModalJSON(m session.Modal) modalJSON {
	out := modalJSON{CustomID: m.CustomID, Title: m.Title}
	for _, in := range m.Inputs {
		out.Components = append(out.Components, modalRowJSON{
			Type: 1,
			Components: []modalInputJSON{{
				Type:        4,
				CustomID:    in.CustomID,
				Label:       in.Label,
				Style:       in.Style,
				Value:       in.Value,
				Required:    in.Required,
				MaxLength:   in.MaxLength,
				Placeholder: in.Placeholder,
			}},
		})
	}
	return out
}

// ephemeral writes a private notice visible only to the invoker.
func ephemeral(w http.ResponseWriter, content string) {
	writeJSON(w, interactionResponse{Type: responseMessage, Data: responseMessageData{
		Content: content,
		Flags:   ephemeralFlag,
	}})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode interaction response", "error", err)
	}
}
