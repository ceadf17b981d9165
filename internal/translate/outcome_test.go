package translate

import (
	"testing"

	"github.com/antonkaz/video-dub-bot/internal/wire"
)

func TestInterpret(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		resp wire.TranslateResponse
		want Outcome
	}{
		{
			name: "failed with message",
			resp: wire.TranslateResponse{Status: wire.StatusFailed, Message: "boom"},
			want: Outcome{Kind: OutcomeFailed, Message: "boom"},
		},
		{
			name: "failed without message",
			resp: wire.TranslateResponse{Status: wire.StatusFailed},
			want: Outcome{Kind: OutcomeFailed, Message: "translation failed"},
		},
		{
			name: "finished with url",
			resp: wire.TranslateResponse{Status: wire.StatusFinished, URL: "x", Duration: 42},
			want: Outcome{Kind: OutcomeSuccess, URL: "x", Duration: 42},
		},
		{
			name: "finished without url",
			resp: wire.TranslateResponse{Status: wire.StatusFinished},
			want: Outcome{Kind: OutcomeFailed, Message: "no url despite success status"},
		},
		{
			name: "part content with url",
			resp: wire.TranslateResponse{Status: wire.StatusPartContent, URL: "p", Duration: 7},
			want: Outcome{Kind: OutcomeSuccess, URL: "p", Duration: 7},
		},
		{
			name: "waiting",
			resp: wire.TranslateResponse{Status: wire.StatusWaiting, RemainingTime: 60},
			want: Outcome{Kind: OutcomeInProgress, RemainingTime: 60},
		},
		{
			name: "long waiting",
			resp: wire.TranslateResponse{Status: wire.StatusLongWaiting},
			want: Outcome{Kind: OutcomeInProgress},
		},
		{
			name: "audio requested",
			resp: wire.TranslateResponse{Status: wire.StatusAudioRequested, RemainingTime: 5},
			want: Outcome{Kind: OutcomeInProgress, RemainingTime: 5},
		},
		{
			name: "processing is terminal",
			resp: wire.TranslateResponse{Status: wire.StatusProcessing},
			want: Outcome{Kind: OutcomeFailed, Message: "translation rejected"},
		},
		{
			name: "reserved status",
			resp: wire.TranslateResponse{Status: wire.Status(4)},
			want: Outcome{Kind: OutcomeFailed, Message: "unknown translation status"},
		},
		{
			name: "future status",
			resp: wire.TranslateResponse{Status: wire.Status(42)},
			want: Outcome{Kind: OutcomeFailed, Message: "unknown translation status"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Interpret(&tc.resp); got != tc.want {
				t.Fatalf("Interpret()=%+v, want=%+v", got, tc.want)
			}
		})
	}
}
