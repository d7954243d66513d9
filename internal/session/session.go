// Package session implements the permission-gated edit flow for a rendered
// deal artifact: open a modal form, apply the submitted mutation, re-render.
package session

import (
	"errors"
	"strings"

	"github.com/pricehub/mirror-bot/internal/models"
	"github.com/pricehub/mirror-bot/internal/render"
)

// ErrPermissionDenied is returned when the acting identity is neither in the
// editor set nor privileged to manage messages. No mutation happens.
var ErrPermissionDenied = errors.New("permission denied")

// Permissions answers whether an identity holds message-management privilege
// in the hosting context. It is the fallback path when the identity is not
// in the explicit editor set.
type Permissions interface {
	CanManageMessages(userID string) bool
}

// FormKind selects which modal form a session opens.
type FormKind string

const (
	FormBasic    FormKind = "edit"
	FormAdvanced FormKind = "advanced"
)

// Modal custom IDs and input IDs used on the wire.
const (
	ModalIDBasic    = "modal:edit"
	ModalIDAdvanced = "modal:advanced"

	InputDescription = "description"
	InputSeller      = "seller"
	InputImageURL    = "image_url"
)

// Input text styles, per Discord's numbering.
const (
	inputShort     = 1
	inputParagraph = 2
)

// TextInput is one field of a modal form.
type TextInput struct {
	CustomID    string
	Label       string
	Style       int
	Value       string
	Required    bool
	MaxLength   int
	Placeholder string
}

// Modal is a form definition handed to the transport for display.
type Modal struct {
	CustomID string
	Title    string
	Inputs   []TextInput
}

// Session mediates mutation of one artifact's record. Both Open and Submit
// check permission, so a surface built before the submitter's identity was
// known still cannot be abused at submit time.
type Session struct {
	rec   *models.Record
	ctx   render.Context
	perms Permissions
}

func New(rec *models.Record, ctx render.Context, perms Permissions) *Session {
	return &Session{rec: rec, ctx: ctx, perms: perms}
}

func (s *Session) allowed(userID string) bool {
	for _, id := range s.ctx.EditorIDs {
		if id == userID {
			return true
		}
	}
	return s.perms != nil && s.perms.CanManageMessages(userID)
}

// Open checks permission and returns the requested form pre-filled from the
// current record.
func (s *Session) Open(kind FormKind, userID string) (Modal, error) {
	if !s.allowed(userID) {
		return Modal{}, ErrPermissionDenied
	}
	switch kind {
	case FormAdvanced:
		thumb := s.rec.ThumbnailURL
		if thumb == "" && len(s.rec.Images) > 0 {
			thumb = s.rec.Images[0]
		}
		return Modal{
			CustomID: ModalIDAdvanced,
			Title:    "Advanced Edit",
			Inputs: []TextInput{
				{
					CustomID:    InputSeller,
					Label:       "Seller (optional)",
					Style:       inputShort,
					Value:       s.rec.Seller,
					MaxLength:   64,
					Placeholder: "Amazon / Woot / Target ...",
				},
				{
					CustomID:    InputImageURL,
					Label:       "Image URL (optional)",
					Style:       inputShort,
					Value:       thumb,
					MaxLength:   400,
					Placeholder: "https://...",
				},
			},
		}, nil
	default:
		value := s.rec.Description
		if value == "" {
			value = s.rec.RawText
		}
		return Modal{
			CustomID: ModalIDBasic,
			Title:    "Edit Deal",
			Inputs: []TextInput{
				{
					CustomID:  InputDescription,
					Label:     "Description",
					Style:     inputParagraph,
					Value:     value,
					MaxLength: render.FieldLimit,
				},
			},
		}, nil
	}
}

// Submit re-checks permission, applies the form's mutation, and re-renders
// the artifact with its editing and routing controls preserved. On denial
// the record is untouched.
func (s *Session) Submit(kind FormKind, userID string, values map[string]string) ([]render.Embed, render.Surface, error) {
	if !s.allowed(userID) {
		return nil, render.Surface{}, ErrPermissionDenied
	}

	switch kind {
	case FormAdvanced:
		s.applyAdvanced(values)
	default:
		s.rec.Description = values[InputDescription]
	}

	embeds, surface := render.Build(s.rec, s.ctx)
	return embeds, surface, nil
}

func (s *Session) applyAdvanced(values map[string]string) {
	// Empty input clears the field entirely rather than blanking it.
	seller := strings.TrimSpace(values[InputSeller])
	s.rec.Seller = seller

	img := strings.TrimSpace(values[InputImageURL])
	if img != "" {
		s.rec.ThumbnailURL = img
		s.rec.PrependImage(img)
	} else {
		s.rec.ThumbnailURL = ""
	}
}
