package frontend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultTelegramAPIURL = "https://api.telegram.org"

// ParseModeMarkdownV2 formats a message with Telegram's MarkdownV2 dialect.
const ParseModeMarkdownV2 = "MarkdownV2"

type TelegramUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
}

type TelegramChat struct {
	ID int64 `json:"id"`
}

type TelegramMessage struct {
	MessageID int64         `json:"message_id"`
	From      *TelegramUser `json:"from,omitempty"`
	Chat      TelegramChat  `json:"chat"`
	Text      string        `json:"text,omitempty"`
}

type TelegramUpdate struct {
	UpdateID int64            `json:"update_id"`
	Message  *TelegramMessage `json:"message,omitempty"`
}

type apiResponse[T any] struct {
	OK          bool   `json:"ok"`
	Result      T      `json:"result"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

// BotAPIError is an error reported by the Bot API itself.
type BotAPIError struct {
	Method      string
	Code        int
	Description string
}

func (e *BotAPIError) Error() string {
	return fmt.Sprintf("telegram %s failed (%d): %s", e.Method, e.Code, e.Description)
}

// BotAPI is a minimal Telegram Bot API client.
type BotAPI struct {
	client *resty.Client
	token  string
}

// NewBotAPI creates a client for the bot with the given token. Requests time out
// after the given duration, which must exceed the long-polling timeout.
func NewBotAPI(apiURL string, token string, timeout time.Duration) *BotAPI {
	if apiURL == "" {
		apiURL = DefaultTelegramAPIURL
	}
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(apiURL, "/")+"/bot"+token).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	return &BotAPI{client: client, token: token}
}

func call[T any](ctx context.Context, b *BotAPI, method string, body any) (T, error) {
	var out apiResponse[T]
	resp, err := b.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&out).
		Post("/" + method)
	if err != nil {
		var zero T
		return zero, b.redact(fmt.Errorf("telegram %s: %w", method, err))
	}
	if !out.OK {
		var zero T
		code := out.ErrorCode
		if code == 0 {
			code = resp.StatusCode()
		}
		return zero, &BotAPIError{Method: method, Code: code, Description: out.Description}
	}
	return out.Result, nil
}

// redact strips the bot token from transport errors, which embed the request URL.
func (b *BotAPI) redact(err error) error {
	if b.token == "" || !strings.Contains(err.Error(), b.token) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), b.token, "<redacted>"))
}

// GetUpdates long-polls for message updates with an id of at least offset.
func (b *BotAPI) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]TelegramUpdate, error) {
	return call[[]TelegramUpdate](ctx, b, "getUpdates", map[string]any{
		"offset":          offset,
		"timeout":         int(timeout.Seconds()),
		"allowed_updates": []string{"message"},
	})
}

// SendMessage sends text to a chat. parseMode may be empty for plain text.
func (b *BotAPI) SendMessage(ctx context.Context, chatID int64, text string, parseMode string) error {
	body := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if parseMode != "" {
		body["parse_mode"] = parseMode
	}
	_, err := call[TelegramMessage](ctx, b, "sendMessage", body)
	return err
}
