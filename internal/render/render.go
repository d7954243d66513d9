package render

import (
	"fmt"
	"strings"

	"github.com/pricehub/mirror-bot/internal/models"
)

// FieldLimit is Discord's per-field value length cap.
const FieldLimit = 1024

// MaxGridEmbeds caps the grid layout at four embeds total.
const MaxGridEmbeds = 4

// ChannelButton configures one routing destination control.
type ChannelButton struct {
	Label           string `validate:"required,max=80"`
	ChannelID       string `validate:"required"`
	MentionEveryone bool
	RoleID          string
}

// Context is the ephemeral presentation context for one rendering. It is
// never persisted; it travels with the artifact it rendered.
type Context struct {
	Category                string
	AllowEdit               bool
	EditorIDs               []string
	ChannelButtons          []ChannelButton
	DisableRoutingAfterSend bool
	Colors                  map[string]int // category → color; nil uses defaults
	FooterText              string
	FooterIcon              string
	Grid                    bool
}

func (c Context) colorMap() map[string]int {
	if c.Colors != nil {
		return c.Colors
	}
	return DefaultColors()
}

// Build renders the record per the context's layout mode.
func Build(rec *models.Record, ctx Context) ([]Embed, Surface) {
	if ctx.Grid {
		return Grid(rec, ctx)
	}
	e, s := Single(rec, ctx)
	return []Embed{e}, s
}

// Single renders one embed: code field, clamped description, primary image,
// and an Additional Images link list when more than one image exists.
func Single(rec *models.Record, ctx Context) (Embed, Surface) {
	e := Embed{Color: PickColor(rec, ctx.Category, ctx.colorMap())}
	addCodeField(&e, rec)
	addDescriptionField(&e, rec)

	if len(rec.Images) > 0 {
		e.Image = &EmbedImage{URL: rec.Images[0]}
		if len(rec.Images) > 1 {
			var links []string
			for i, u := range rec.Images[1:] {
				links = append(links, fmt.Sprintf("[Image %d](%s)", i+2, u))
			}
			e.Fields = append(e.Fields, EmbedField{
				Name:  "Additional Images",
				Value: Clamp(strings.Join(links, " | "), FieldLimit),
			})
		}
	} else if rec.ThumbnailURL != "" {
		e.Image = &EmbedImage{URL: rec.ThumbnailURL}
	}

	setFooter(&e, ctx)
	return e, BuildSurface(rec.Links, ctx)
}

// Grid renders up to four embeds: the first carries code, description, and
// the first image; each further embed carries exactly one image and no text.
// The control surface belongs to the first embed only. With one or no
// images this falls back to the single layout.
func Grid(rec *models.Record, ctx Context) ([]Embed, Surface) {
	if len(rec.Images) <= 1 {
		e, s := Single(rec, ctx)
		return []Embed{e}, s
	}

	color := PickColor(rec, ctx.Category, ctx.colorMap())
	main := Embed{Color: color}
	addCodeField(&main, rec)
	addDescriptionField(&main, rec)
	main.Image = &EmbedImage{URL: rec.Images[0]}
	setFooter(&main, ctx)

	embeds := []Embed{main}
	for _, u := range rec.Images[1:] {
		if len(embeds) >= MaxGridEmbeds {
			break
		}
		embeds = append(embeds, Embed{Color: color, Image: &EmbedImage{URL: u}})
	}
	return embeds, BuildSurface(rec.Links, ctx)
}

func addCodeField(e *Embed, rec *models.Record) {
	if rec.Code != "" {
		e.Fields = append(e.Fields, EmbedField{Name: "Code", Value: "`" + rec.Code + "`"})
	}
}

func addDescriptionField(e *Embed, rec *models.Record) {
	if desc := rec.DisplayText(); desc != "" {
		e.Fields = append(e.Fields, EmbedField{Name: "Description", Value: Clamp(desc, FieldLimit)})
	}
}

func setFooter(e *Embed, ctx Context) {
	if ctx.FooterText != "" {
		e.Footer = &EmbedFooter{Text: ctx.FooterText, IconURL: ctx.FooterIcon}
	}
}

// Clamp truncates s to limit characters, marking truncation with an
// ellipsis. It never fails; it simply cuts.
func Clamp(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
