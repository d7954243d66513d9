package parser

import (
	"html"
	"regexp"
	"strings"

	"github.com/pricehub/mirror-bot/internal/models"
)

var (
	urlRe     = regexp.MustCompile(`https?://\S+`)
	urlLineRe = regexp.MustCompile(`^https?://`)
	// boldFieldRe is anchored: a field line starts with **Key**: Value.
	boldFieldRe = regexp.MustCompile(`^\*\*(.+?)\*\*:\s*(.+)`)
	// boldFieldAnyRe is the unanchored variant used by the deal-post heuristic.
	boldFieldAnyRe = regexp.MustCompile(`\*\*(.+?)\*\*:\s*(.+)`)
	boldLineRe     = regexp.MustCompile(`^\*\*(.+?)\*\*$`)
	mdLinkRe       = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\s)]+)\)`)
	mdImageRe      = regexp.MustCompile(`!\[[^\]]*\]\((https?://[^\s)]+)\)`)
	dealInfoRe     = regexp.MustCompile(`(?i)^Deal\s*Info\s*:\s*(.+)$`)

	priceHintRe = regexp.MustCompile(`\$\d`)
	priceWordRe = regexp.MustCompile(`(?i)\bprice\b`)
)

// fieldKeys maps recognized **Key**: Value keys (lowercased) to canonical
// record field names.
var fieldKeys = map[string]string{
	"price":             "price",
	"discount":          "discount",
	"status":            "status",
	"stock":             "stock",
	"sku":               "sku",
	"seller":            "seller",
	"promotion":         "promotion",
	"business required": "business_required",
	"offer id":          "offer_id",
}

// linkFieldKeys are field keys whose values are harvested as links rather
// than stored as scalars.
var linkFieldKeys = map[string]bool{
	"other":             true,
	"add to cart":       true,
	"add to cart links": true,
}

// cartMarkers flag add-to-cart style URLs. "checkout" additionally excludes
// a URL from primary-link selection but does not make it an ATC candidate.
var cartMarkers = []string{"submit.buy-now", "handle-buy-box", "add-to-cart", "cart"}

var atcLabels = []string{"ATC", "ADD TO CART", "BUY", "CHECK STOCK"}

// Parse turns one message's raw text plus transport hints into a partial
// deal record. It never fails: patterns that do not match simply leave their
// fields unset.
func Parse(rawText string, hints Hints) *models.Record {
	rec := models.New()
	rec.RawText = rawText
	text := html.UnescapeString(rawText)
	lines := Normalize(rawText)

	rec.Images = harvestHintImages(hints)

	lines, title := extractTitle(lines)
	if title == "" {
		title = "No Title"
	}
	rec.Title = title

	for _, ln := range lines {
		m := boldFieldRe.FindStringSubmatch(ln)
		if m == nil {
			continue
		}
		keyRaw := strings.TrimSpace(m[1])
		val := cleanValue(strings.TrimSpace(m[2]))
		keyLower := strings.ToLower(keyRaw)

		switch {
		case fieldKeys[keyLower] != "":
			rec.SetField(fieldKeys[keyLower], val)
		case linkFieldKeys[keyLower]:
			for _, lm := range mdLinkRe.FindAllStringSubmatch(ln, -1) {
				rec.Links[strings.ToUpper(lm[1])] = decodeURL(lm[2])
			}
			for _, href := range urlRe.FindAllString(ln, -1) {
				if _, ok := rec.Links["URL"]; !ok {
					rec.Links["URL"] = decodeURL(href)
				}
			}
		default:
			rec.Extra[strings.ReplaceAll(keyLower, " ", "_")] = val
		}
	}

	for _, lm := range mdLinkRe.FindAllStringSubmatch(text, -1) {
		rec.Links[strings.ToUpper(lm[1])] = decodeURL(lm[2])
	}
	urls := harvestURLs(text)

	// Image fallback: only when the transport supplied nothing.
	if len(rec.Images) == 0 {
		var imgs []string
		for _, m := range mdImageRe.FindAllStringSubmatch(text, -1) {
			imgs = append(imgs, decodeURL(m[1]))
		}
		for _, u := range urls {
			if LooksLikeImageURL(u) {
				imgs = append(imgs, u)
			}
		}
		rec.Images = dedup(imgs)
	}
	if rec.ThumbnailURL == "" && len(rec.Images) > 0 {
		rec.ThumbnailURL = rec.Images[0]
	}
	if rec.ThumbnailURL == "" && hints.PreviewImage != "" {
		rec.ThumbnailURL = hints.PreviewImage
	}

	// Primary link: the last URL that is not cart/checkout-like, else the
	// very last URL.
	var candidates []string
	for _, u := range urls {
		if !containsCartMarker(u) && !strings.Contains(strings.ToLower(u), "checkout") {
			candidates = append(candidates, u)
		}
	}
	if len(candidates) > 0 {
		rec.URL = candidates[len(candidates)-1]
	} else if len(urls) > 0 {
		rec.URL = urls[len(urls)-1]
	}

	// ATC: explicit labeled link first, then the first cart-pattern URL.
	var atc string
	for _, lbl := range atcLabels {
		if v, ok := rec.Links[lbl]; ok {
			atc = v
			break
		}
	}
	if atc == "" {
		for _, u := range urls {
			if containsCartMarker(u) {
				atc = u
				break
			}
		}
	}
	if atc != "" {
		rec.ATCURL = atc
		if _, ok := rec.Links["ATC"]; !ok {
			rec.Links["ATC"] = atc
		}
	}

	if rec.Seller == "" && len(urls) > 0 {
		if name, ok := InferSeller(urls); ok && name != "" {
			rec.Seller = name
		}
	}

	// Boolean-like fields stay strings, normalized for uniform rendering.
	rec.Promotion = strings.ToLower(strings.TrimSpace(rec.Promotion))
	rec.BusinessRequired = strings.ToLower(strings.TrimSpace(rec.BusinessRequired))

	return rec
}

// extractTitle applies the title priority chain: a "Deal Info:" first line,
// then a fully bold first line that is not a field, then the first remaining
// line that is neither a field nor a link. The chosen line is removed.
func extractTitle(lines []string) ([]string, string) {
	var title string
	if len(lines) > 0 {
		if m := dealInfoRe.FindStringSubmatch(lines[0]); m != nil {
			title = cleanValue(m[1])
			lines = lines[1:]
		} else if m := boldLineRe.FindStringSubmatch(lines[0]); m != nil && !boldFieldRe.MatchString(lines[0]) {
			title = cleanValue(m[1])
			lines = lines[1:]
		}
	}
	if title == "" {
		for i, ln := range lines {
			if boldFieldRe.MatchString(ln) || urlLineRe.MatchString(ln) || mdLinkRe.MatchString(ln) {
				continue
			}
			title = cleanValue(strings.Trim(ln, "* "))
			rest := make([]string, 0, len(lines)-1)
			rest = append(rest, lines[:i]...)
			rest = append(rest, lines[i+1:]...)
			lines = rest
			break
		}
	}
	return lines, title
}

// harvestURLs collects bare URLs in first-seen order, percent-decoded.
func harvestURLs(text string) []string {
	var urls []string
	for _, u := range urlRe.FindAllString(text, -1) {
		urls = append(urls, decodeURL(u))
	}
	return dedup(urls)
}

func containsCartMarker(u string) bool {
	lu := strings.ToLower(u)
	for _, m := range cartMarkers {
		if strings.Contains(lu, m) {
			return true
		}
	}
	return false
}

// LooksLikeDealPost is the mirror heuristic: only messages that resemble a
// deal post are parsed and relayed.
func LooksLikeDealPost(text string) bool {
	t := strings.TrimSpace(html.UnescapeString(text))
	if t == "" {
		return false
	}
	if strings.Contains(t, "Deal Info:") {
		return true
	}
	if boldFieldAnyRe.MatchString(t) {
		return true
	}
	hasPrice := priceHintRe.MatchString(t) || priceWordRe.MatchString(t)
	hasURL := urlRe.MatchString(t) || mdLinkRe.MatchString(t)
	if hasPrice && hasURL {
		return true
	}
	upper := strings.ToUpper(t)
	for _, lbl := range []string{"ATC", "KEEPA", "SAS", "SKU", "IN-STOCK", "OUT OF STOCK"} {
		if strings.Contains(upper, lbl) && hasURL {
			return true
		}
	}
	return false
}
