package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-telegram/bot/models"
)

// DefaultAllowedUpdates is the fixed allow-list requested from the platform.
var DefaultAllowedUpdates = []string{
	"message",
	"edited_message",
	"channel_post",
	"callback_query",
	"inline_query",
	"my_chat_member",
}

// FetchError is a classified transport failure from the update endpoint.
type FetchError struct {
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("poller: fetch failed (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("poller: fetch failed (status %d)", e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fatal reports errors that must stop the poller: a bad token, or a second
// poller instance consuming the same token.
func (e *FetchError) Fatal() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusConflict
}

// Fetcher is one long-poll roundtrip. timeout is the server-side wait; limit 0
// means the platform default.
type Fetcher interface {
	Fetch(ctx context.Context, offset int64, timeout time.Duration, limit int) ([]models.Update, error)
}

// TelegramFetcher calls the Bot API getUpdates method directly. The outbound
// bot client never polls, so this is the only consumer of the method.
type TelegramFetcher struct {
	token          string
	apiURL         string
	httpClient     *http.Client
	allowedUpdates []string
}

func NewTelegramFetcher(token string, httpClient *http.Client, allowedUpdates []string) *TelegramFetcher {
	if httpClient == nil {
		// Long polls hold the connection for the full server-side timeout.
		httpClient = &http.Client{Timeout: 70 * time.Second}
	}
	if len(allowedUpdates) == 0 {
		allowedUpdates = DefaultAllowedUpdates
	}
	return &TelegramFetcher{
		token:          token,
		apiURL:         "https://api.telegram.org",
		httpClient:     httpClient,
		allowedUpdates: allowedUpdates,
	}
}

type getUpdatesRequest struct {
	Offset         int64    `json:"offset,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	Timeout        int      `json:"timeout"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

type getUpdatesResponse struct {
	OK          bool            `json:"ok"`
	Result      []models.Update `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

func (f *TelegramFetcher) Fetch(ctx context.Context, offset int64, timeout time.Duration, limit int) ([]models.Update, error) {
	body, err := json.Marshal(getUpdatesRequest{
		Offset:         offset,
		Limit:          limit,
		Timeout:        int(timeout / time.Second),
		AllowedUpdates: f.allowedUpdates,
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/bot%s/getUpdates", f.apiURL, f.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var payload getUpdatesResponse
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, &FetchError{StatusCode: resp.StatusCode, Err: fmt.Errorf("bad response body: %w", err)}
	}
	if !payload.OK {
		fe := &FetchError{
			StatusCode: payload.ErrorCode,
			Err:        errors.New(payload.Description),
		}
		if fe.StatusCode == 0 {
			fe.StatusCode = resp.StatusCode
		}
		if payload.Parameters != nil && payload.Parameters.RetryAfter > 0 {
			fe.RetryAfter = time.Duration(payload.Parameters.RetryAfter) * time.Second
		}
		return nil, fe
	}

	return payload.Result, nil
}
