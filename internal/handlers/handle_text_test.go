package handlers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/antonkaz/video-dub-bot/internal/i18n"
	"github.com/antonkaz/video-dub-bot/internal/messages"
	"github.com/antonkaz/video-dub-bot/internal/translate"
)

func TestExtractURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		text string
		want string
	}{
		{"https://youtu.be/abc123", "https://youtu.be/abc123"},
		{"переведи вот это https://example.com/v?id=1 пожалуйста", "https://example.com/v?id=1"},
		{"http://example.com/watch", "http://example.com/watch"},
		{"just some text", ""},
		{"ftp://example.com/file", ""},
		{"https://", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := extractURL(tt.text); got != tt.want {
			t.Errorf("extractURL(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestCommandName(t *testing.T) {
	t.Parallel()
	tests := []struct {
		text string
		want string
	}{
		{"/start", "start"},
		{"/start@VideoDubBot", "start"},
		{"/history extra args", "history"},
		{"not a command", ""},
	}
	for _, tt := range tests {
		if got := commandName(tt.text); got != tt.want {
			t.Errorf("commandName(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestTranslationErrorMessage(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "temporary backend failure",
			err:  &translate.TranslateError{Message: translate.TemporaryFailureMessage},
			want: messages.TranslationTemporary(i18n.RU),
		},
		{
			name: "terminal backend failure",
			err:  &translate.TranslateError{Message: "unsupported video"},
			want: messages.TranslationFailed(i18n.RU),
		},
		{
			name: "wrapped backend failure",
			err:  fmt.Errorf("translate: %w", &translate.TranslateError{Message: "bad link"}),
			want: messages.TranslationFailed(i18n.RU),
		},
		{
			name: "timeout",
			err:  context.DeadlineExceeded,
			want: messages.TranslationTimedOut(i18n.RU),
		},
		{
			name: "transport error",
			err:  errors.New("connection refused"),
			want: messages.ErrorDefault(i18n.RU),
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := translationErrorMessage(tt.err, i18n.RU); got != tt.want {
				t.Errorf("translationErrorMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
