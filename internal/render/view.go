package render

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ButtonStyle follows Discord's component style numbering.
type ButtonStyle int

const (
	StylePrimary   ButtonStyle = 1
	StyleSecondary ButtonStyle = 2
	StyleSuccess   ButtonStyle = 3
	StyleDanger    ButtonStyle = 4
	StyleLink      ButtonStyle = 5
)

// Component budget. 25 components total; 2 slots stay reserved for the edit
// controls and link buttons never exceed 18 regardless of leftover budget.
const (
	MaxComponents  = 25
	MaxLinkButtons = 18
	editReserve    = 2

	maxButtonLabel = 80
	buttonsPerRow  = 5
)

// Custom IDs routed by the interaction handler.
const (
	CustomIDEdit     = "edit"
	CustomIDAdvanced = "advanced"
	RoutePrefix      = "route:"
)

// preferredLinkOrder is the fixed emit order for known link labels.
var preferredLinkOrder = []string{
	"ATC", "KEEPA", "SAS", "EBAY", "GOOGLE", "CHECK STOCK", "WALMART", "TARGET", "BESTBUY",
}

var titleCaser = cases.Title(language.English)

// Button is one interactive control. Link buttons carry a URL; everything
// else carries a CustomID.
type Button struct {
	Style    ButtonStyle `json:"style"`
	Label    string      `json:"label,omitempty"`
	URL      string      `json:"url,omitempty"`
	CustomID string      `json:"custom_id,omitempty"`
	Disabled bool        `json:"disabled,omitempty"`
}

type buttonJSON struct {
	Type int `json:"type"` // 2 = button
	Button
}

// ActionRow is Discord's row container, at most five buttons each.
type ActionRow struct {
	Type       int          `json:"type"` // 1 = action row
	Components []buttonJSON `json:"components"`
}

// Surface is the flat control surface attached to a rendered card.
type Surface struct {
	Buttons []Button
}

// Rows chunks the surface into action rows for the wire.
func (s *Surface) Rows() []ActionRow {
	var rows []ActionRow
	for i := 0; i < len(s.Buttons); i += buttonsPerRow {
		end := i + buttonsPerRow
		if end > len(s.Buttons) {
			end = len(s.Buttons)
		}
		row := ActionRow{Type: 1}
		for _, b := range s.Buttons[i:end] {
			row.Components = append(row.Components, buttonJSON{Type: 2, Button: b})
		}
		rows = append(rows, row)
	}
	return rows
}

// DisableRouting marks every routing control disabled.
func (s *Surface) DisableRouting() {
	for i := range s.Buttons {
		if strings.HasPrefix(s.Buttons[i].CustomID, RoutePrefix) {
			s.Buttons[i].Disabled = true
		}
	}
}

// RouteIndex extracts the destination index from a routing custom ID,
// returning -1 for anything else.
func RouteIndex(customID string) int {
	if !strings.HasPrefix(customID, RoutePrefix) {
		return -1
	}
	n, err := strconv.Atoi(customID[len(RoutePrefix):])
	if err != nil || n < 0 {
		return -1
	}
	return n
}

// BuildSurface composes link, edit, and routing controls within the
// component budget. Known labels come first in preferred order, custom
// labels fill leftover link budget in sorted order.
func BuildSurface(links map[string]string, ctx Context) Surface {
	linkCap := MaxComponents - editReserve - len(ctx.ChannelButtons)
	if linkCap < 0 {
		linkCap = 0
	}
	if linkCap > MaxLinkButtons {
		linkCap = MaxLinkButtons
	}

	var s Surface
	added := 0
	for _, lbl := range preferredLinkOrder {
		if added >= linkCap {
			break
		}
		if url := links[lbl]; url != "" {
			s.Buttons = append(s.Buttons, Button{
				Style: StyleLink,
				Label: clampLabel(titleCaser.String(strings.ToLower(lbl))),
				URL:   url,
			})
			added++
		}
	}
	if added < linkCap {
		var custom []string
		for lbl, url := range links {
			if url != "" && !isPreferred(strings.ToUpper(lbl)) {
				custom = append(custom, lbl)
			}
		}
		sort.Strings(custom)
		for _, lbl := range custom {
			if added >= linkCap {
				break
			}
			s.Buttons = append(s.Buttons, Button{
				Style: StyleLink,
				Label: clampLabel(lbl),
				URL:   links[lbl],
			})
			added++
		}
	}

	if ctx.AllowEdit {
		s.Buttons = append(s.Buttons,
			Button{Style: StylePrimary, Label: "Edit", CustomID: CustomIDEdit},
			Button{Style: StyleSecondary, Label: "Advanced", CustomID: CustomIDAdvanced},
		)
	}

	for i, cb := range ctx.ChannelButtons {
		s.Buttons = append(s.Buttons, Button{
			Style:    StyleSuccess,
			Label:    clampLabel(cb.Label),
			CustomID: RoutePrefix + strconv.Itoa(i),
		})
	}
	return s
}

func isPreferred(label string) bool {
	for _, p := range preferredLinkOrder {
		if label == p {
			return true
		}
	}
	return false
}

func clampLabel(s string) string {
	if len(s) <= maxButtonLabel {
		return s
	}
	return s[:maxButtonLabel]
}
