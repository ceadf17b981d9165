package translate

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/antonkaz/video-dub-bot/internal/wire"
)

const (
	DefaultEndpoint  = "https://api.browser.yandex.ru/video-translation/translate"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 YaBrowser/24.12.0.0 Safari/537.36"

	signatureHeader = "Vtrans-Signature"
	tokenHeader     = "Sec-Vtrans-Token"

	// Fallback poll interval when the backend does not suggest one.
	defaultPollInterval = 15 * time.Second
)

type Config struct {
	Endpoint   string
	Secret     string
	UserAgent  string
	HTTPClient *http.Client
}

// Options control a single translation request. The zero value asks for a
// cached standard-voice translation with no source hints.
type Options struct {
	Language         string // source language, empty lets the backend detect
	ForceSourceLang  bool
	ResponseLanguage string
	Duration         float64 // source duration in seconds, when known
	VideoURL         string  // direct media URL hint
	SubtitlesURL     string  // subtitles URL hint
	Title            string
	BypassCache      bool
	LivelyVoice      bool
	FirstRequest     bool
}

// Result is a finished translation.
type Result struct {
	URL      string
	Duration float64
}

// Client talks the backend's signed binary protocol. It performs no retries of
// its own below the polling level: network errors always reach the caller.
type Client struct {
	httpClient *http.Client
	endpoint   string
	secret     []byte
	userAgent  string
	deviceID   string
	log        zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) *Client {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 2 * time.Minute}
	}
	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		secret:     []byte(cfg.Secret),
		userAgent:  userAgent,
		deviceID:   uuid.NewString(),
		log:        log,
	}
}

// RequestOnce performs one signed request-response roundtrip and returns the
// decoded response as-is. Interpretation is the caller's job.
func (c *Client) RequestOnce(ctx context.Context, videoURL string, opts Options) (*wire.TranslateResponse, error) {
	req := wire.TranslateRequest{
		URL:              videoURL,
		DeviceID:         c.deviceID,
		FirstRequest:     opts.FirstRequest,
		Duration:         opts.Duration,
		Unknown0:         1,
		Language:         opts.Language,
		ForceSourceLang:  opts.ForceSourceLang,
		Unknown1:         0,
		ResponseLanguage: opts.ResponseLanguage,
		Unknown2:         1,
		Unknown3:         2,
		BypassCache:      opts.BypassCache,
		UseLivelyVoice:   opts.LivelyVoice,
		VideoTitle:       opts.Title,
	}
	if opts.VideoURL != "" {
		req.TranslationHelp = append(req.TranslationHelp, wire.TranslationHelp{
			Target:    wire.HelpTargetVideoFileURL,
			TargetURL: opts.VideoURL,
		})
	}
	if opts.SubtitlesURL != "" {
		req.TranslationHelp = append(req.TranslationHelp, wire.TranslationHelp{
			Target:    wire.HelpTargetSubtitlesFileURL,
			TargetURL: opts.SubtitlesURL,
		})
	}

	body := req.Marshal()

	mac := hmac.New(sha256.New, c.secret)
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))
	sessionToken := strings.ToUpper(uuid.NewString())

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("Accept", "application/x-protobuf")
	httpReq.Header.Set("Content-Type", "application/x-protobuf")
	httpReq.Header.Set(signatureHeader, signature)
	httpReq.Header.Set(tokenHeader, sessionToken)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	// The backend sets a useful binary body even on some non-2xx statuses, so
	// decoding gets the first try; the HTTP status only matters when the body
	// is not a valid message.
	var resp wire.TranslateResponse
	if decodeErr := resp.Unmarshal(respBody); decodeErr != nil {
		if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
			return nil, fmt.Errorf("translate backend: unexpected status %d", httpResp.StatusCode)
		}
		return nil, decodeErr
	}
	return &resp, nil
}

// TranslateOnce performs one roundtrip and interprets it: a *Result on
// success, *TranslateError on terminal failure, *InProgressError otherwise.
func (c *Client) TranslateOnce(ctx context.Context, videoURL string, opts Options) (*Result, error) {
	resp, err := c.RequestOnce(ctx, videoURL, opts)
	if err != nil {
		return nil, err
	}
	out := Interpret(resp)
	switch out.Kind {
	case OutcomeSuccess:
		return &Result{URL: out.URL, Duration: out.Duration}, nil
	case OutcomeInProgress:
		return nil, &InProgressError{RemainingTime: out.RemainingTime}
	default:
		return nil, &TranslateError{Message: out.Message, Response: resp}
	}
}

// TranslateVideo polls until the backend reports a terminal status. There is
// no attempt cap: the backend paces the loop through RemainingTime and the
// caller bounds the whole thing with ctx.
func (c *Client) TranslateVideo(ctx context.Context, videoURL string, opts Options) (*Result, error) {
	opts.FirstRequest = true
	for {
		res, err := c.TranslateOnce(ctx, videoURL, opts)
		var inProgress *InProgressError
		if err == nil {
			return res, nil
		}
		if !errors.As(err, &inProgress) {
			return nil, err
		}

		wait := defaultPollInterval
		if inProgress.RemainingTime > 0 {
			wait = time.Duration(inProgress.RemainingTime) * time.Second
		}
		c.log.Debug().
			Str("url", videoURL).
			Dur("wait", wait).
			Msg("translation in progress, polling again")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		opts.FirstRequest = false
	}
}

// TranslateVideoPreferLiveVoices asks for the higher-quality voices first and
// falls back to the standard ones once if that attempt fails terminally.
// Network and cancellation errors are not retried.
func (c *Client) TranslateVideoPreferLiveVoices(ctx context.Context, videoURL string, opts Options) (*Result, error) {
	opts.LivelyVoice = true
	res, err := c.TranslateVideo(ctx, videoURL, opts)
	var terminal *TranslateError
	if err == nil || !errors.As(err, &terminal) {
		return res, err
	}

	c.log.Warn().
		Str("url", videoURL).
		Str("reason", terminal.Message).
		Msg("lively voice translation failed, retrying with standard voices")

	opts.LivelyVoice = false
	return c.TranslateVideo(ctx, videoURL, opts)
}
