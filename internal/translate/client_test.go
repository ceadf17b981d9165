package translate

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/antonkaz/video-dub-bot/internal/wire"
)

const testSecret = "test-secret"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		Endpoint:   srv.URL,
		Secret:     testSecret,
		HTTPClient: srv.Client(),
	}, zerolog.Nop())
}

func writeResponse(t *testing.T, w http.ResponseWriter, resp wire.TranslateResponse) {
	t.Helper()
	w.Header().Set("Content-Type", "application/x-protobuf")
	if _, err := w.Write(resp.Marshal()); err != nil {
		t.Errorf("write response: %v", err)
	}
}

func TestRequestOnceSigningAndHeaders(t *testing.T) {
	t.Parallel()

	var gotReq wire.TranslateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}

		mac := hmac.New(sha256.New, []byte(testSecret))
		mac.Write(body)
		want := hex.EncodeToString(mac.Sum(nil))
		if got := r.Header.Get("Vtrans-Signature"); got != want {
			t.Errorf("signature=%q, want=%q", got, want)
		}
		if token := r.Header.Get("Sec-Vtrans-Token"); len(token) != 36 {
			t.Errorf("session token %q is not uuid-shaped", token)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-protobuf" {
			t.Errorf("content type=%q", ct)
		}

		if err := gotReq.Unmarshal(body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		writeResponse(t, w, wire.TranslateResponse{Status: wire.StatusWaiting, RemainingTime: 30})
	})

	resp, err := c.RequestOnce(context.Background(), "https://example/video.mp4", Options{
		ResponseLanguage: "ru",
		LivelyVoice:      true,
		FirstRequest:     true,
	})
	if err != nil {
		t.Fatalf("RequestOnce: %v", err)
	}
	if resp.Status != wire.StatusWaiting || resp.RemainingTime != 30 {
		t.Fatalf("response=%+v", resp)
	}

	if gotReq.URL != "https://example/video.mp4" {
		t.Fatalf("request url=%q", gotReq.URL)
	}
	if !gotReq.FirstRequest || !gotReq.UseLivelyVoice {
		t.Fatalf("request flags=%+v", gotReq)
	}
	if gotReq.Unknown0 != 1 || gotReq.Unknown2 != 1 || gotReq.Unknown3 != 2 {
		t.Fatalf("protocol constants=%+v", gotReq)
	}
	if gotReq.DeviceID == "" {
		t.Fatal("device id is empty")
	}
}

func TestTranslateVideoPollsUntilFinished(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req wire.TranslateRequest
		if err := req.Unmarshal(body); err != nil {
			t.Errorf("decode request: %v", err)
		}

		switch calls.Add(1) {
		case 1:
			if !req.FirstRequest {
				t.Error("first attempt must set firstRequest")
			}
			writeResponse(t, w, wire.TranslateResponse{Status: wire.StatusWaiting, RemainingTime: 1})
		default:
			if req.FirstRequest {
				t.Error("resubmission must clear firstRequest")
			}
			writeResponse(t, w, wire.TranslateResponse{
				Status:   wire.StatusFinished,
				URL:      "https://cdn/out.mp3",
				Duration: 42.0,
			})
		}
	})

	start := time.Now()
	res, err := c.TranslateVideo(context.Background(), "https://example/video.mp4", Options{ResponseLanguage: "ru"})
	if err != nil {
		t.Fatalf("TranslateVideo: %v", err)
	}
	if res.URL != "https://cdn/out.mp3" || res.Duration != 42.0 {
		t.Fatalf("result=%+v", res)
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("backend calls=%d, want=2", n)
	}
	if elapsed := time.Since(start); elapsed < time.Second {
		t.Fatalf("resolved after %v, expected at least the suggested 1s wait", elapsed)
	}
}

func TestTranslateVideoTerminalFailure(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeResponse(t, w, wire.TranslateResponse{Status: wire.StatusFailed, Message: "no audio"})
	})

	_, err := c.TranslateVideo(context.Background(), "https://example/video.mp4", Options{})
	var terminal *TranslateError
	if !errors.As(err, &terminal) {
		t.Fatalf("error %v is not a TranslateError", err)
	}
	if terminal.Message != "no audio" {
		t.Fatalf("message=%q", terminal.Message)
	}
	if terminal.Response == nil {
		t.Fatal("raw response not attached")
	}
}

func TestTranslateVideoHonorsContext(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeResponse(t, w, wire.TranslateResponse{Status: wire.StatusWaiting, RemainingTime: 60})
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := c.TranslateVideo(ctx, "https://example/video.mp4", Options{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error=%v, want deadline exceeded", err)
	}
}

func TestPreferLiveVoicesFallsBack(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req wire.TranslateRequest
		if err := req.Unmarshal(body); err != nil {
			t.Errorf("decode request: %v", err)
		}

		if req.UseLivelyVoice {
			writeResponse(t, w, wire.TranslateResponse{Status: wire.StatusFailed, Message: "no lively voices"})
			return
		}
		writeResponse(t, w, wire.TranslateResponse{
			Status:   wire.StatusFinished,
			URL:      "https://cdn/plain.mp3",
			Duration: 10,
		})
	})

	res, err := c.TranslateVideoPreferLiveVoices(context.Background(), "https://example/video.mp4", Options{})
	if err != nil {
		t.Fatalf("TranslateVideoPreferLiveVoices: %v", err)
	}
	if res.URL != "https://cdn/plain.mp3" {
		t.Fatalf("result=%+v", res)
	}
}

func TestPreferLiveVoicesNoFallbackOnNetworkError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Error("hijacking unsupported")
			return
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			t.Errorf("hijack: %v", err)
			return
		}
		conn.Close()
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, Secret: testSecret, HTTPClient: srv.Client()}, zerolog.Nop())

	_, err := c.TranslateVideoPreferLiveVoices(context.Background(), "https://example/video.mp4", Options{})
	if err == nil {
		t.Fatal("expected a network error")
	}
	var terminal *TranslateError
	if errors.As(err, &terminal) {
		t.Fatalf("network failure mapped to TranslateError: %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("backend calls=%d, want=1 (no fallback)", n)
	}
}
