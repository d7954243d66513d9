// Package notifier is the delivery sink: a thin Discord REST client for
// posting, editing, and deleting channel messages.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/pricehub/mirror-bot/internal/render"
)

const defaultBaseURL = "https://discord.com/api/v10"

// ErrNotFound is returned when Discord cannot resolve the target channel or
// message.
var ErrNotFound = errors.New("discord: not found")

// Message is the outbound channel-message payload.
type Message struct {
	Content    string             `json:"content,omitempty"`
	Embeds     []render.Embed     `json:"embeds,omitempty"`
	Components []render.ActionRow `json:"components,omitempty"`
}

// File is an optional attachment sent alongside a message, e.g. the footer
// branding icon referenced as attachment://<name>.
type File struct {
	Name string
	Data []byte
}

type messageResponse struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
}

// Client talks to the Discord REST API with retries and a client-side rate
// limit. Retry policy for transient failures lives here; callers never retry.
type Client struct {
	token   string
	baseURL string
	http    *retryablehttp.Client
	limiter *rate.Limiter
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func New(token string, opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 10 * time.Second
	rc.Logger = nil

	c := &Client{
		token:   token,
		baseURL: defaultBaseURL,
		http:    rc,
		// Discord's global limit is 50 req/s per bot; stay well under it.
		limiter: rate.NewLimiter(rate.Limit(25), 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateMessage posts a message and returns its ID.
func (c *Client) CreateMessage(ctx context.Context, channelID string, msg Message) (string, error) {
	var resp messageResponse
	path := "/channels/" + channelID + "/messages"
	if err := c.do(ctx, http.MethodPost, path, msg, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// CreateMessageWithFile posts a message with one file attachment using a
// multipart payload.
func (c *Client) CreateMessageWithFile(ctx context.Context, channelID string, msg Message, file File) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	payload, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	if err := mw.WriteField("payload_json", string(payload)); err != nil {
		return "", err
	}
	fw, err := mw.CreateFormFile("files[0]", file.Name)
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(file.Data); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/channels/"+channelID+"/messages", body.Bytes())
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp messageResponse
	if err := c.roundTrip(req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// EditMessage patches an existing message. Omitted payload fields keep their
// current values, so a components-only payload updates just the surface.
func (c *Client) EditMessage(ctx context.Context, channelID, messageID string, msg Message) error {
	path := "/channels/" + channelID + "/messages/" + messageID
	return c.do(ctx, http.MethodPatch, path, msg, nil)
}

// DeleteMessage removes a message.
func (c *Client) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	path := "/channels/" + channelID + "/messages/" + messageID
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// CreateReaction adds the bot's reaction to a message.
func (c *Client) CreateReaction(ctx context.Context, channelID, messageID, emoji string) error {
	path := "/channels/" + channelID + "/messages/" + messageID +
		"/reactions/" + url.PathEscape(emoji) + "/@me"
	return c.do(ctx, http.MethodPut, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return err
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.roundTrip(req, out)
}

func (c *Client) roundTrip(req *retryablehttp.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil && len(bodyBytes) > 0 {
			return json.Unmarshal(bodyBytes, out)
		}
		return nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, string(bodyBytes))
	}
	return fmt.Errorf("discord status: %s, body: %s", resp.Status, string(bodyBytes))
}
