// Package render maps a deal record plus a presentation context onto Discord
// embeds and an interactive component surface.
package render

// Embed and its parts mirror Discord's embed JSON.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	URL         string       `json:"url,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Image       *EmbedImage  `json:"image,omitempty"`
	Thumbnail   *EmbedImage  `json:"thumbnail,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Author      *EmbedAuthor `json:"author,omitempty"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type EmbedImage struct {
	URL string `json:"url,omitempty"`
}

type EmbedFooter struct {
	Text    string `json:"text,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

type EmbedAuthor struct {
	Name    string `json:"name,omitempty"`
	URL     string `json:"url,omitempty"`
	IconURL string `json:"icon_url,omitempty"`
}

// Recolor returns a copy of the embed with only its color changed. Title,
// description, fields, images, footer, and author are preserved exactly.
func Recolor(e Embed, color int) Embed {
	out := e
	out.Color = color
	out.Fields = append([]EmbedField(nil), e.Fields...)
	if e.Image != nil {
		img := *e.Image
		out.Image = &img
	}
	if e.Thumbnail != nil {
		th := *e.Thumbnail
		out.Thumbnail = &th
	}
	if e.Footer != nil {
		f := *e.Footer
		out.Footer = &f
	}
	if e.Author != nil {
		a := *e.Author
		out.Author = &a
	}
	return out
}
