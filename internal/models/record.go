package models

import "sort"

// Quality is the coarse classification of a parsed message.
type Quality string

const (
	QualityDeal    Quality = "deal"
	QualityUnknown Quality = "unknown"
	QualityNoise   Quality = "noise"
)

// Validity holds expiration metadata derived from promo phrasing.
type Validity struct {
	Type       string `json:"type,omitempty"`
	End        string `json:"end,omitempty"` // YYYY-MM-DD
	Disclaimer string `json:"disclaimer,omitempty"`
}

// IsZero reports whether no validity information has been set.
func (v Validity) IsZero() bool {
	return v.Type == "" && v.End == "" && v.Disclaimer == ""
}

// Record is the structured representation of one extracted deal message.
// Well-known fields are typed; unrecognized **Key**: Value lines are kept
// verbatim in Extra so structured input is never dropped.
type Record struct {
	Title       string
	RawText     string
	Description string

	Price            string
	OldPrice         string
	NewPrice         string
	Discount         string
	Status           string
	Stock            string
	SKU              string
	Seller           string
	Promotion        string
	BusinessRequired string
	OfferID          string
	Code             string

	URL    string
	ATCURL string

	// Links is keyed by uppercase label (ATC, KEEPA, custom labels, ...).
	Links map[string]string

	// Images is deduplicated and order-preserving.
	Images       []string
	ThumbnailURL string

	Tags []string // sorted
	Risk []string // sorted

	Validity Validity
	Quality  Quality

	Extra map[string]string
}

// New returns an empty record with its maps initialized.
func New() *Record {
	return &Record{
		Links: make(map[string]string),
		Extra: make(map[string]string),
	}
}

// SetField writes a value under its canonical field name. Unknown names go
// to Extra untouched, so callers must pass Extra keys already normalized.
func (r *Record) SetField(name, value string) {
	switch name {
	case "price":
		r.Price = value
	case "old_price":
		r.OldPrice = value
	case "new_price":
		r.NewPrice = value
	case "discount":
		r.Discount = value
	case "status":
		r.Status = value
	case "stock":
		r.Stock = value
	case "sku":
		r.SKU = value
	case "seller":
		r.Seller = value
	case "promotion":
		r.Promotion = value
	case "business_required":
		r.BusinessRequired = value
	case "offer_id":
		r.OfferID = value
	case "code":
		r.Code = value
	default:
		if r.Extra == nil {
			r.Extra = make(map[string]string)
		}
		r.Extra[name] = value
	}
}

// AddTags inserts tags keeping the set sorted and duplicate-free.
func (r *Record) AddTags(tags ...string) {
	r.Tags = addSorted(r.Tags, tags)
}

// AddRisk inserts risk labels keeping the set sorted and duplicate-free.
func (r *Record) AddRisk(labels ...string) {
	r.Risk = addSorted(r.Risk, labels)
}

// HasTag reports whether the tag is present.
func (r *Record) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AddImage appends a URL unless it is empty or already present.
func (r *Record) AddImage(url string) {
	if url == "" {
		return
	}
	for _, u := range r.Images {
		if u == url {
			return
		}
	}
	r.Images = append(r.Images, url)
}

// PrependImage puts a URL at the front unless it is already present.
func (r *Record) PrependImage(url string) {
	if url == "" {
		return
	}
	for _, u := range r.Images {
		if u == url {
			return
		}
	}
	r.Images = append([]string{url}, r.Images...)
}

// DisplayText is what rendering shows as the description: the user-edited
// override first, then the original text, then the title.
func (r *Record) DisplayText() string {
	if r.Description != "" {
		return r.Description
	}
	if r.RawText != "" {
		return r.RawText
	}
	return r.Title
}

// Clone returns a deep copy. Edit sessions mutate a clone first so a denied
// or failed submit leaves the displayed record untouched.
func (r *Record) Clone() *Record {
	c := *r
	c.Links = make(map[string]string, len(r.Links))
	for k, v := range r.Links {
		c.Links[k] = v
	}
	c.Images = append([]string(nil), r.Images...)
	c.Tags = append([]string(nil), r.Tags...)
	c.Risk = append([]string(nil), r.Risk...)
	c.Extra = make(map[string]string, len(r.Extra))
	for k, v := range r.Extra {
		c.Extra[k] = v
	}
	return &c
}

func addSorted(set []string, add []string) []string {
	have := make(map[string]bool, len(set))
	for _, s := range set {
		have[s] = true
	}
	for _, s := range add {
		if s != "" && !have[s] {
			have[s] = true
			set = append(set, s)
		}
	}
	sort.Strings(set)
	return set
}
