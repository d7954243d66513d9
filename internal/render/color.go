package render

import "github.com/pricehub/mirror-bot/internal/models"

// Display colors, decimal RGB.
const (
	ColorRed     = 15158332 // #E74C3C
	ColorOrange  = 15105570 // #E67E22
	ColorGreen   = 3066993  // #2ECC71
	ColorGold    = 15844367 // #F1C40F
	ColorBlurple = 5793266  // #5865F2
)

// DefaultColors maps routing categories to display colors. Configuration may
// extend or override the map; it is read-only once built.
func DefaultColors() map[string]int {
	return map[string]int{
		"major":  ColorRed,
		"minor":  ColorOrange,
		"member": ColorGreen,
		"food":   ColorGold,
	}
}

// PickColor selects the explicit category's color first, then the first
// record tag with a mapped color, else the neutral default.
func PickColor(rec *models.Record, category string, colors map[string]int) int {
	if category != "" {
		if c, ok := colors[category]; ok {
			return c
		}
	}
	for _, tag := range rec.Tags {
		if c, ok := colors[tag]; ok {
			return c
		}
	}
	return ColorBlurple
}

// ColorForLabel resolves a destination label to its routing color, falling
// back to the neutral default.
func ColorForLabel(label string, colors map[string]int) int {
	if c, ok := colors[label]; ok {
		return c
	}
	return ColorBlurple
}
