package parser

import (
	"net/url"
	"strings"
)

// Attachment is what the transport layer knows about an uploaded file.
type Attachment struct {
	URL         string
	ContentType string
}

// Hints carries transport-supplied image sources for a message. All fields
// are optional enrichments; parsing works with none of them.
type Hints struct {
	Attachments  []Attachment
	EmbedImages  []string // image/thumbnail URLs of link previews, in order
	PreviewImage string   // first embedded preview image, if any
}

var imageExts = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}

var imageHosts = []string{
	"cdn.discordapp.com",
	"media.discordapp.net",
	"imgur.com",
	"i.imgur.com",
	"images.unsplash.com",
	"picsum.photos",
}

// harvestHintImages collects image URLs from attachments whose content type
// or extension marks them as images, then preview images, deduplicated in
// first-seen order.
func harvestHintImages(h Hints) []string {
	var imgs []string
	for _, att := range h.Attachments {
		if att.URL == "" {
			continue
		}
		if strings.HasPrefix(att.ContentType, "image/") || hasImageExt(att.URL) {
			imgs = append(imgs, att.URL)
		}
	}
	imgs = append(imgs, h.EmbedImages...)
	return dedup(imgs)
}

func hasImageExt(u string) bool {
	bare := strings.ToLower(u)
	if i := strings.IndexByte(bare, '?'); i >= 0 {
		bare = bare[:i]
	}
	for _, ext := range imageExts {
		if strings.HasSuffix(bare, ext) {
			return true
		}
	}
	return false
}

// LooksLikeImageURL reports whether a bare URL is image-like, by extension
// or by known image-host substring.
func LooksLikeImageURL(u string) bool {
	if hasImageExt(u) {
		return true
	}
	lu := strings.ToLower(u)
	for _, host := range imageHosts {
		if strings.Contains(lu, host) {
			return true
		}
	}
	return false
}

func dedup(urls []string) []string {
	var out []string
	seen := make(map[string]bool, len(urls))
	for _, u := range urls {
		if u != "" && !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}

// decodeURL percent-decodes a harvested URL and tolerates a trailing ")"
// left over from markdown-adjacent text.
func decodeURL(u string) string {
	u = strings.TrimRight(u, ")")
	if d, err := url.PathUnescape(u); err == nil {
		return d
	}
	return u
}
