// Package bot posts registration updates to a staff Telegram chat.
package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const defaultAPI = "https://api.telegram.org"

type Client struct {
	httpc  *http.Client
	apiURL string
}

// NewClient talks to the Bot API at base (the public API when empty).
func NewClient(token, base string) *Client {
	if base == "" {
		base = defaultAPI
	}
	return &Client{
		apiURL: base + "/bot" + token,
		httpc:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) send(ctx context.Context, method string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/"+method, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return errors.Wrapf(err, "telegram %s", method)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.Errorf("telegram %s: %s", method, resp.Status)
	}
	return nil
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	return c.send(ctx, "sendMessage", map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
}

func (c *Client) SendPhoto(ctx context.Context, chatID int64, photoURL, caption string) error {
	data := map[string]any{
		"chat_id": chatID,
		"photo":   photoURL, // served by /qr/{code}.png
	}
	if caption != "" {
		data["caption"] = caption
		data["parse_mode"] = "HTML"
	}
	return c.send(ctx, "sendPhoto", data)
}
