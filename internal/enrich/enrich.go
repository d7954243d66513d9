// Package enrich augments a parsed record with promotional metadata, prices,
// and a coarse quality classification. Every pass is additive and best-effort:
// text that matches nothing leaves the record unchanged.
package enrich

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"github.com/pricehub/mirror-bot/internal/models"
)

var (
	codeRe          = regexp.MustCompile(`(?i)(?:code|coupon)\s*[:\-]?\s*([A-Z0-9]{3,15})\b`)
	todayOnlyRe     = regexp.MustCompile(`(?i)\btoday only\b`)
	thruRe          = regexp.MustCompile(`(?i)\b(?:through|thru)\s+([A-Za-z]{3,9})\s+(\d{1,2})\b`)
	whileSuppliesRe = regexp.MustCompile(`(?i)while supplies last`)
	bogoRe          = regexp.MustCompile(`(?i)\bBOGO\b|\bbuy\s+one,\s*get\s+one\b`)
	freeWPRe        = regexp.MustCompile(`(?i)\bfree\b.*\b(?:with|w/)\s*purchase\b`)
	glitchRe        = regexp.MustCompile(`(?i)\b(?:glitch|price\s+glitched)\b`)
	vccRe           = regexp.MustCompile(`(?i)\bVCC\b`)
	birthdayRe      = regexp.MustCompile(`(?i)\bbirthday\b`)

	// wasNowRe tolerates placeholder tokens like $X.XX.
	wasNowRe    = regexp.MustCompile(`(?i)was[:\s]*\$\s*([\d.xX]+).*?now[:\s]*\$\s*([\d.xX]+)`)
	dollarAnyRe = regexp.MustCompile(`\$\s*\d+(?:\.[\dxX]{1,2})?`)
)

var months = map[string]int{
	"Jan": 1, "Feb": 2, "Mar": 3, "Apr": 4, "May": 5, "Jun": 6,
	"Jul": 7, "Aug": 8, "Sep": 9, "Oct": 10, "Nov": 11, "Dec": 12,
}

var noiseTokens = map[string]bool{
	"a": true, "ddd": true, "m": true, "so weird": true,
}

// Apply runs promo enrichment, price extraction, and quality classification
// over the record, in that order. messageDate is the source message's ISO
// date (YYYY-MM-DD), used to resolve relative expirations; empty disables
// date resolution.
func Apply(rec *models.Record, rawText, messageDate string) {
	text := html.UnescapeString(rawText)
	Promos(rec, text, messageDate)
	Prices(rec, text)
	Classify(rec, text)
}

// Promos scans for promotional signals and writes codes, validity, tags,
// and risk labels. Each rule applies independently.
func Promos(rec *models.Record, text, messageDate string) {
	if m := codeRe.FindStringSubmatch(text); m != nil {
		rec.Code = m[1]
		rec.AddTags("has-code")
	}

	if todayOnlyRe.MatchString(text) && messageDate != "" {
		rec.Validity.Type = "date"
		rec.Validity.End = messageDate
		rec.AddTags("today-only")
	}

	if m := thruRe.FindStringSubmatch(text); m != nil && len(messageDate) >= 4 {
		mon := titleMonth(m[1])
		day, _ := strconv.Atoi(m[2])
		year, yearErr := strconv.Atoi(messageDate[:4])
		// Unknown month names are silently ignored.
		if num, ok := months[mon]; ok && yearErr == nil {
			rec.Validity.Type = "date"
			rec.Validity.End = fmt.Sprintf("%04d-%02d-%02d", year, num, day)
		}
	}

	if whileSuppliesRe.MatchString(text) {
		rec.Validity.Disclaimer = "while-supplies-last"
	}

	if bogoRe.MatchString(text) {
		rec.AddTags("promo", "bogo")
	}
	if freeWPRe.MatchString(text) {
		rec.AddTags("promo", "free-with-purchase")
	}
	if glitchRe.MatchString(text) {
		rec.AddTags("glitch", "YMMV")
		rec.AddRisk("pricing-glitch")
	}
	if vccRe.MatchString(text) {
		rec.AddTags("VCC-recommended")
		rec.AddRisk("payment-caution")
	}
	if birthdayRe.MatchString(text) {
		rec.AddTags("freebies", "birthday")
	}
	if strings.Contains(strings.ToUpper(text), "DYOR") {
		rec.AddTags("DYOR")
		rec.AddRisk("needs-research")
	}
}

// Prices extracts was/now price pairs, or failing that the first bare dollar
// amount. Fields already set by the field extractor are never overwritten.
func Prices(rec *models.Record, text string) {
	wasNow := false
	if rec.OldPrice == "" && rec.NewPrice == "" {
		if m := wasNowRe.FindStringSubmatch(text); m != nil {
			rec.OldPrice = normalizePriceToken("$" + m[1])
			rec.NewPrice = normalizePriceToken("$" + m[2])
			wasNow = true
		}
	}
	if !wasNow && rec.Price == "" {
		if m := dollarAnyRe.FindString(text); m != "" {
			rec.Price = normalizePriceToken(m)
		}
	}
}

// Classify assigns the record's coarse quality. Pure mention-only or known
// noise text, and untitled records, classify as noise; a glitch tag without
// any detected price is unknown; everything else defaults to deal.
func Classify(rec *models.Record, rawText string) {
	t := strings.ToLower(strings.TrimSpace(rawText))
	onlyEveryone := strings.TrimSpace(strings.ReplaceAll(t, "@everyone", "")) == ""
	noTitle := strings.EqualFold(strings.TrimSpace(rec.Title), "no title")

	switch {
	case onlyEveryone || noiseTokens[t] || noTitle:
		rec.Quality = models.QualityNoise
	case rec.HasTag("glitch") && rec.Price == "" && rec.NewPrice == "":
		rec.Quality = models.QualityUnknown
	default:
		if rec.Quality == "" {
			rec.Quality = models.QualityDeal
		}
	}
}

func normalizePriceToken(tok string) string {
	return strings.ToUpper(strings.ReplaceAll(tok, " ", ""))
}

// titleMonth reduces a month word to its 3-letter title-case form.
func titleMonth(s string) string {
	if len(s) < 3 {
		return s
	}
	s = s[:3]
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
