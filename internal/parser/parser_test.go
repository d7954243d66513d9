package parser

import (
	"reflect"
	"testing"
)

func TestParse_TitlePriority(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"deal info prefix", "Deal Info: Big Widget Sale.\n**Price**: $10", "Big Widget Sale"},
		{"bold first line", "**Deal**\nSome body", "Deal"},
		{"plain first line", "Widget Deal\n**Price**: $10", "Widget Deal"},
		{"skips field and link lines", "**Price**: $10\nhttps://example.com/item\nActual Title", "Actual Title"},
		{"empty message", "", "No Title"},
		{"only urls", "https://example.com/item", "No Title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Parse(tt.text, Hints{})
			if rec.Title != tt.want {
				t.Errorf("Title = %q, want %q", rec.Title, tt.want)
			}
		})
	}
}

func TestParse_FieldMapping(t *testing.T) {
	text := "Widget Deal\n" +
		"**Price**: $19.99\n" +
		"**SKU**: ABC123\n" +
		"**Status**: In-Stock\n" +
		"**Seller**: Acme\n" +
		"**Business Required**: Yes\n" +
		"**Warranty**: 2 years\n" +
		"**Ship Date**: Friday"

	rec := Parse(text, Hints{})

	if rec.Price != "$19.99" {
		t.Errorf("Price = %q, want $19.99", rec.Price)
	}
	if rec.SKU != "ABC123" {
		t.Errorf("SKU = %q, want ABC123", rec.SKU)
	}
	if rec.Status != "In-Stock" {
		t.Errorf("Status = %q, want In-Stock", rec.Status)
	}
	if rec.Seller != "Acme" {
		t.Errorf("Seller = %q, want Acme", rec.Seller)
	}
	// Boolean-like fields are normalized to lowercase.
	if rec.BusinessRequired != "yes" {
		t.Errorf("BusinessRequired = %q, want yes", rec.BusinessRequired)
	}

	// Unknown keys survive in Extra with normalized names.
	if rec.Extra["warranty"] != "2 years" {
		t.Errorf("Extra[warranty] = %q, want '2 years'", rec.Extra["warranty"])
	}
	if rec.Extra["ship_date"] != "Friday" {
		t.Errorf("Extra[ship_date] = %q, want Friday", rec.Extra["ship_date"])
	}
}

func TestParse_MarkdownLinks(t *testing.T) {
	text := "Widget\n[Keepa](https://keepa.com/p/B0TEST) [SAS](https://sas.example.com/x)"
	rec := Parse(text, Hints{})

	if rec.Links["KEEPA"] != "https://keepa.com/p/B0TEST" {
		t.Errorf("Links[KEEPA] = %q", rec.Links["KEEPA"])
	}
	if rec.Links["SAS"] != "https://sas.example.com/x" {
		t.Errorf("Links[SAS] = %q", rec.Links["SAS"])
	}
}

func TestParse_PrimaryURLSkipsCartLinks(t *testing.T) {
	text := "Widget\n" +
		"https://example.com/first\n" +
		"https://www.amazon.com/dp/B0TEST\n" +
		"https://www.amazon.com/gp/add-to-cart?id=1"

	rec := Parse(text, Hints{})

	if rec.URL != "https://www.amazon.com/dp/B0TEST" {
		t.Errorf("URL = %q, want the last non-cart link", rec.URL)
	}
	if rec.ATCURL != "https://www.amazon.com/gp/add-to-cart?id=1" {
		t.Errorf("ATCURL = %q, want the cart link", rec.ATCURL)
	}
	if rec.Links["ATC"] != rec.ATCURL {
		t.Errorf("Links[ATC] = %q, want %q", rec.Links["ATC"], rec.ATCURL)
	}
}

func TestParse_LabeledATCWinsOverCartURL(t *testing.T) {
	text := "Widget\n" +
		"[ATC](https://www.amazon.com/labeled-atc)\n" +
		"https://www.amazon.com/gp/add-to-cart?id=9"

	rec := Parse(text, Hints{})

	if rec.ATCURL != "https://www.amazon.com/labeled-atc" {
		t.Errorf("ATCURL = %q, want the labeled link", rec.ATCURL)
	}
}

func TestParse_OnlyCartURLs(t *testing.T) {
	rec := Parse("Widget\nhttps://store.com/cart/add?id=1", Hints{})
	// With no clean candidate the very last URL still becomes primary.
	if rec.URL != "https://store.com/cart/add?id=1" {
		t.Errorf("URL = %q", rec.URL)
	}
}

func TestParse_ImagesFromHints(t *testing.T) {
	hints := Hints{
		Attachments: []Attachment{
			{URL: "https://cdn.discordapp.com/a.png", ContentType: "image/png"},
			{URL: "https://cdn.discordapp.com/doc.pdf", ContentType: "application/pdf"},
		},
		EmbedImages: []string{
			"https://cdn.discordapp.com/a.png", // duplicate of the attachment
			"https://media.discordapp.net/b.jpg",
		},
	}
	rec := Parse("Widget\n![inline](https://i.imgur.com/ignored.png)", hints)

	want := []string{
		"https://cdn.discordapp.com/a.png",
		"https://media.discordapp.net/b.jpg",
	}
	if !reflect.DeepEqual(rec.Images, want) {
		t.Errorf("Images = %v, want %v", rec.Images, want)
	}
	if rec.ThumbnailURL != want[0] {
		t.Errorf("ThumbnailURL = %q, want first image", rec.ThumbnailURL)
	}
}

func TestParse_ImageFallbackFromText(t *testing.T) {
	text := "Widget\n" +
		"![pic](https://i.imgur.com/a.png)\n" +
		"https://i.imgur.com/a.png\n" + // same URL bare, must dedup
		"https://cdn.discordapp.com/b.jpg"

	rec := Parse(text, Hints{})

	want := []string{"https://i.imgur.com/a.png", "https://cdn.discordapp.com/b.jpg"}
	if !reflect.DeepEqual(rec.Images, want) {
		t.Errorf("Images = %v, want %v", rec.Images, want)
	}
}

func TestParse_PreviewImageThumbnail(t *testing.T) {
	rec := Parse("Widget $5 https://example.com/item", Hints{PreviewImage: "https://example.com/preview.png"})
	if len(rec.Images) != 0 {
		t.Errorf("Images = %v, want none", rec.Images)
	}
	if rec.ThumbnailURL != "https://example.com/preview.png" {
		t.Errorf("ThumbnailURL = %q, want the preview image", rec.ThumbnailURL)
	}
}

func TestParse_SellerInference(t *testing.T) {
	rec := Parse("Widget $5\nhttps://www.amazon.com/dp/B0TEST", Hints{})
	if rec.Seller != "Amazon" {
		t.Errorf("Seller = %q, want Amazon", rec.Seller)
	}

	// An explicit field always wins over inference.
	rec = Parse("Widget\n**Seller**: Acme\nhttps://www.amazon.com/dp/B0TEST", Hints{})
	if rec.Seller != "Acme" {
		t.Errorf("Seller = %q, want Acme", rec.Seller)
	}
}

func TestInferSeller(t *testing.T) {
	tests := []struct {
		name        string
		urls        []string
		wantName    string
		wantMatched bool
	}{
		{"amazon", []string{"https://www.amazon.com/dp/X"}, "Amazon", true},
		{"woot subdomain", []string{"https://electronics.woot.com/offers/y"}, "Woot", true},
		{"shortener stops the scan", []string{"https://bit.ly/abc", "https://www.amazon.com/dp/X"}, "", true},
		{"unknown domain", []string{"https://example.com/item"}, "", false},
		{"no urls", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, matched := InferSeller(tt.urls)
			if name != tt.wantName || matched != tt.wantMatched {
				t.Errorf("InferSeller() = (%q, %v), want (%q, %v)", name, matched, tt.wantName, tt.wantMatched)
			}
		})
	}
}

func TestDomain(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://www.amazon.com/dp/X", "amazon.com"},
		{"https://electronics.woot.com/offers/y", "woot.com"},
		{"not a url", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Domain(tt.raw); got != tt.want {
			t.Errorf("Domain(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestParse_LinkFieldHarvest(t *testing.T) {
	text := "Widget\n**Other**: [Keepa](https://keepa.com/p/X) https://example.com/bare"
	rec := Parse(text, Hints{})

	if rec.Links["KEEPA"] != "https://keepa.com/p/X" {
		t.Errorf("Links[KEEPA] = %q", rec.Links["KEEPA"])
	}
	if rec.Links["URL"] == "" {
		t.Error("bare URL on a link field line should land under Links[URL]")
	}
}

func TestLooksLikeDealPost(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"field line", "**Price**: $5", true},
		{"deal info", "Deal Info: Something good", true},
		{"price and url", "$19.99 at https://example.com/item", true},
		{"label and url", "ATC https://example.com/item", true},
		{"chatter", "hello world", false},
		{"empty", "", false},
		{"price without url", "only $5 today", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LooksLikeDealPost(tt.text); got != tt.want {
				t.Errorf("LooksLikeDealPost(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize("  first &amp; second  \n\n  third \n")
	want := []string{"first & second", "third"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %v, want %v", got, want)
	}
	if Normalize("") != nil {
		t.Error("Normalize(\"\") should be nil")
	}
}

func TestLooksLikeImageURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://example.com/x.png", true},
		{"https://example.com/x.jpg?width=100", true},
		{"https://i.imgur.com/abc", true},
		{"https://example.com/item", false},
	}
	for _, tt := range tests {
		if got := LooksLikeImageURL(tt.url); got != tt.want {
			t.Errorf("LooksLikeImageURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestDecodeURL(t *testing.T) {
	if got := decodeURL("https://example.com/a%20b)"); got != "https://example.com/a b" {
		t.Errorf("decodeURL() = %q", got)
	}
}
