package render

import (
	"reflect"
	"strings"
	"testing"

	"github.com/pricehub/mirror-bot/internal/models"
)

func sampleRecord() *models.Record {
	rec := models.New()
	rec.Title = "Widget Deal"
	rec.RawText = "Widget Deal, now cheap"
	rec.Code = "SAVE20"
	rec.Images = []string{
		"https://example.com/1.png",
		"https://example.com/2.png",
		"https://example.com/3.png",
	}
	rec.Links["ATC"] = "https://example.com/atc"
	return rec
}

func fieldValue(e Embed, name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

func TestSingle(t *testing.T) {
	rec := sampleRecord()
	ctx := Context{AllowEdit: true, FooterText: "pricehub"}

	e, s := Single(rec, ctx)

	if v, ok := fieldValue(e, "Code"); !ok || v != "`SAVE20`" {
		t.Errorf("Code field = %q, want backticked SAVE20", v)
	}
	if v, ok := fieldValue(e, "Description"); !ok || v != rec.RawText {
		t.Errorf("Description field = %q, want raw text", v)
	}
	if e.Image == nil || e.Image.URL != rec.Images[0] {
		t.Errorf("Image = %+v, want first image", e.Image)
	}
	if v, ok := fieldValue(e, "Additional Images"); !ok ||
		v != "[Image 2](https://example.com/2.png) | [Image 3](https://example.com/3.png)" {
		t.Errorf("Additional Images = %q", v)
	}
	if e.Footer == nil || e.Footer.Text != "pricehub" {
		t.Errorf("Footer = %+v", e.Footer)
	}
	if len(s.Buttons) == 0 {
		t.Error("surface should carry the ATC link and edit controls")
	}
}

func TestSingle_ThumbnailFallback(t *testing.T) {
	rec := models.New()
	rec.Title = "Widget"
	rec.RawText = "text"
	rec.ThumbnailURL = "https://example.com/preview.png"

	e, _ := Single(rec, Context{})
	if e.Image == nil || e.Image.URL != rec.ThumbnailURL {
		t.Errorf("Image = %+v, want the thumbnail", e.Image)
	}
}

func TestSingle_EditedDescriptionWins(t *testing.T) {
	rec := sampleRecord()
	rec.Description = "hand-written summary"

	e, _ := Single(rec, Context{})
	if v, _ := fieldValue(e, "Description"); v != "hand-written summary" {
		t.Errorf("Description = %q, want the edited text", v)
	}
}

func TestGrid(t *testing.T) {
	rec := sampleRecord()
	rec.Images = append(rec.Images,
		"https://example.com/4.png",
		"https://example.com/5.png",
		"https://example.com/6.png")

	embeds, _ := Grid(rec, Context{FooterText: "pricehub"})

	if len(embeds) != MaxGridEmbeds {
		t.Fatalf("grid produced %d embeds, want %d", len(embeds), MaxGridEmbeds)
	}
	if _, ok := fieldValue(embeds[0], "Description"); !ok {
		t.Error("first grid embed should carry the text fields")
	}
	for i, e := range embeds[1:] {
		if len(e.Fields) != 0 {
			t.Errorf("grid embed %d has fields, want image only", i+1)
		}
		if e.Image == nil {
			t.Errorf("grid embed %d has no image", i+1)
		}
		if e.Color != embeds[0].Color {
			t.Errorf("grid embed %d color = %d, want %d", i+1, e.Color, embeds[0].Color)
		}
	}
}

func TestGrid_SingleImageFallsBack(t *testing.T) {
	rec := sampleRecord()
	rec.Images = rec.Images[:1]

	embeds, _ := Grid(rec, Context{})
	if len(embeds) != 1 {
		t.Errorf("grid with one image should fall back to a single embed, got %d", len(embeds))
	}
}

func TestBuild_LayoutSelection(t *testing.T) {
	rec := sampleRecord()

	embeds, _ := Build(rec, Context{})
	if len(embeds) != 1 {
		t.Errorf("single layout produced %d embeds", len(embeds))
	}

	embeds, _ = Build(rec, Context{Grid: true})
	if len(embeds) != 3 {
		t.Errorf("grid layout produced %d embeds, want 3", len(embeds))
	}
}

func TestRecolor(t *testing.T) {
	orig := Embed{
		Title: "Widget",
		Color: ColorBlurple,
		Fields: []EmbedField{
			{Name: "Description", Value: "text"},
		},
		Image:  &EmbedImage{URL: "https://example.com/1.png"},
		Footer: &EmbedFooter{Text: "pricehub"},
	}

	got := Recolor(orig, ColorRed)

	if got.Color != ColorRed {
		t.Errorf("Color = %d, want %d", got.Color, ColorRed)
	}
	want := orig
	want.Color = ColorRed
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Recolor changed more than the color:\ngot  %+v\nwant %+v", got, want)
	}

	// The original and its pointers are untouched and unshared.
	if orig.Color != ColorBlurple {
		t.Error("original color changed")
	}
	got.Fields[0].Value = "mutated"
	got.Image.URL = "mutated"
	if orig.Fields[0].Value != "text" || orig.Image.URL != "https://example.com/1.png" {
		t.Error("Recolor shares state with the original embed")
	}
}

func TestPickColor(t *testing.T) {
	colors := DefaultColors()
	rec := models.New()
	rec.AddTags("food")

	if got := PickColor(rec, "major", colors); got != ColorRed {
		t.Errorf("explicit category: got %d, want %d", got, ColorRed)
	}
	if got := PickColor(rec, "", colors); got != ColorGold {
		t.Errorf("tag fallback: got %d, want %d", got, ColorGold)
	}
	if got := PickColor(models.New(), "", colors); got != ColorBlurple {
		t.Errorf("default: got %d, want %d", got, ColorBlurple)
	}
}

func TestColorForLabel(t *testing.T) {
	colors := DefaultColors()
	if got := ColorForLabel("member", colors); got != ColorGreen {
		t.Errorf("member = %d, want %d", got, ColorGreen)
	}
	if got := ColorForLabel("nope", colors); got != ColorBlurple {
		t.Errorf("unknown label = %d, want %d", got, ColorBlurple)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp("short", 10); got != "short" {
		t.Errorf("Clamp(short) = %q", got)
	}
	long := strings.Repeat("a", 2000)
	got := Clamp(long, FieldLimit)
	if r := []rune(got); len(r) != FieldLimit {
		t.Errorf("clamped length = %d, want %d", len(r), FieldLimit)
	}
	if !strings.HasSuffix(got, "…") {
		t.Error("clamped text should end with an ellipsis")
	}

	// Rune-safe: multibyte input never splits mid-character.
	got = Clamp(strings.Repeat("é", 20), 10)
	if r := []rune(got); len(r) != 10 {
		t.Errorf("multibyte clamp length = %d, want 10", len(r))
	}
}
