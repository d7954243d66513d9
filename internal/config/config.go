package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/pricehub/mirror-bot/internal/render"
)

type Config struct {
	BotToken  string `validate:"required"`
	PublicKey string // hex ed25519 key for interaction signature checks
	Port      string

	SourceChannelID string `validate:"required"`
	TargetChannelID string `validate:"required"`

	// MirrorMention is prepended as content to every mirrored post.
	MirrorMention string

	EditorIDs               []string
	RouteButtons            []render.ChannelButton `validate:"dive"`
	DisableRoutingAfterSend bool
	GridLayout              bool

	// PreviewWait is how long message handling waits for link previews to
	// populate before parsing.
	PreviewWait time.Duration

	MaxArtifacts  int   `validate:"gt=0"`
	MaxConcurrent int64 `validate:"gt=0"`

	FooterText string
	FooterIcon string

	CategoryColors map[string]int
}

func Load() (*Config, error) {
	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN environment variable is required but not set")
	}

	publicKey := os.Getenv("DISCORD_PUBLIC_KEY")
	if publicKey == "" {
		slog.Warn("DISCORD_PUBLIC_KEY not set, interaction signature checks are disabled")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
		slog.Info("Defaulting to port", "port", port)
	}

	source := os.Getenv("SOURCE_CHANNEL")
	if source == "" {
		return nil, fmt.Errorf("SOURCE_CHANNEL environment variable is required but not set")
	}
	target := os.Getenv("TARGET_CHANNEL")
	if target == "" {
		return nil, fmt.Errorf("TARGET_CHANNEL environment variable is required but not set")
	}

	mention := os.Getenv("MIRROR_MENTION")

	var editors []string
	if v := os.Getenv("EDITOR_IDS"); v != "" {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				editors = append(editors, id)
			}
		}
	}

	buttons, err := parseRouteButtons(os.Getenv("ROUTE_BUTTONS"))
	if err != nil {
		return nil, fmt.Errorf("invalid ROUTE_BUTTONS: %w", err)
	}

	disableAfterSend, err := boolEnv("DISABLE_ROUTING_AFTER_SEND", true)
	if err != nil {
		return nil, err
	}
	grid, err := boolEnv("GRID_LAYOUT", false)
	if err != nil {
		return nil, err
	}

	previewWaitStr := os.Getenv("PREVIEW_WAIT")
	if previewWaitStr == "" {
		previewWaitStr = "1200ms"
	}
	previewWait, err := time.ParseDuration(previewWaitStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PREVIEW_WAIT %q: %w", previewWaitStr, err)
	}

	maxArtifacts := 500
	if v := os.Getenv("MAX_TRACKED_DEALS"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_TRACKED_DEALS %q: %w", v, err)
		}
		maxArtifacts = parsed
	}

	maxConcurrent := int64(8)
	if v := os.Getenv("MAX_CONCURRENT_MESSAGES"); v != "" {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_CONCURRENT_MESSAGES %q: %w", v, err)
		}
		maxConcurrent = parsed
	}

	footerText := os.Getenv("FOOTER_TEXT")
	if footerText == "" {
		footerText = "pricehub"
	}

	colors, err := parseColorOverrides(os.Getenv("CATEGORY_COLORS"))
	if err != nil {
		return nil, fmt.Errorf("invalid CATEGORY_COLORS: %w", err)
	}

	cfg := &Config{
		BotToken:                token,
		PublicKey:               publicKey,
		Port:                    port,
		SourceChannelID:         source,
		TargetChannelID:         target,
		MirrorMention:           mention,
		EditorIDs:               editors,
		RouteButtons:            buttons,
		DisableRoutingAfterSend: disableAfterSend,
		GridLayout:              grid,
		PreviewWait:             previewWait,
		MaxArtifacts:            maxArtifacts,
		MaxConcurrent:           maxConcurrent,
		FooterText:              footerText,
		FooterIcon:              os.Getenv("FOOTER_ICON_URL"),
		CategoryColors:          colors,
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// parseRouteButtons reads the routing destination table. Format:
//
//	label=channelID[,everyone][,role=ID];label2=channelID2
func parseRouteButtons(s string) ([]render.ChannelButton, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var buttons []render.ChannelButton
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.Split(entry, ",")
		label, channelID, ok := strings.Cut(parts[0], "=")
		if !ok || strings.TrimSpace(label) == "" || strings.TrimSpace(channelID) == "" {
			return nil, fmt.Errorf("entry %q must be label=channelID", entry)
		}
		btn := render.ChannelButton{
			Label:     strings.TrimSpace(label),
			ChannelID: strings.TrimSpace(channelID),
		}
		for _, opt := range parts[1:] {
			opt = strings.TrimSpace(opt)
			switch {
			case opt == "everyone":
				btn.MentionEveryone = true
			case strings.HasPrefix(opt, "role="):
				btn.RoleID = strings.TrimPrefix(opt, "role=")
			case opt == "":
			default:
				return nil, fmt.Errorf("unknown option %q in entry %q", opt, entry)
			}
		}
		buttons = append(buttons, btn)
	}
	return buttons, nil
}

// parseColorOverrides extends the default category color map. Format:
//
//	name=#RRGGBB[,name2=0xRRGGBB...]
func parseColorOverrides(s string) (map[string]int, error) {
	colors := render.DefaultColors()
	if strings.TrimSpace(s) == "" {
		return colors, nil
	}
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		name, value, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("entry %q must be name=color", entry)
		}
		value = strings.TrimPrefix(strings.TrimPrefix(value, "#"), "0x")
		c, err := strconv.ParseInt(value, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("color %q: %w", entry, err)
		}
		colors[strings.ToLower(strings.TrimSpace(name))] = int(c)
	}
	return colors, nil
}

func boolEnv(name string, def bool) (bool, error) {
	v := os.Getenv(name)
	if v == "" {
		return def, nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}
	return parsed, nil
}
