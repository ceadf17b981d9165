package translate

import "github.com/antonkaz/video-dub-bot/internal/wire"

type OutcomeKind int

const (
	OutcomeFailed OutcomeKind = iota
	OutcomeSuccess
	OutcomeInProgress
)

// Outcome is the interpreted form of a backend response: exactly one of
// success (URL, Duration), failure (Message) or in-progress (RemainingTime).
type Outcome struct {
	Kind          OutcomeKind
	URL           string
	Duration      float64
	Message       string
	RemainingTime int32
}

// Interpret maps a decoded response onto an outcome. The mapping is total:
// every numeric status, including reserved and future ones, lands somewhere.
func Interpret(resp *wire.TranslateResponse) Outcome {
	switch resp.Status {
	case wire.StatusFailed:
		return Outcome{Kind: OutcomeFailed, Message: failureMessage(resp, "translation failed")}
	case wire.StatusFinished, wire.StatusPartContent:
		if resp.URL == "" {
			return Outcome{Kind: OutcomeFailed, Message: "no url despite success status"}
		}
		return Outcome{Kind: OutcomeSuccess, URL: resp.URL, Duration: resp.Duration}
	case wire.StatusWaiting, wire.StatusLongWaiting, wire.StatusAudioRequested:
		return Outcome{Kind: OutcomeInProgress, RemainingTime: resp.RemainingTime}
	case wire.StatusProcessing:
		// Terminal at this layer: the backend refused the plain request and a
		// fallback path (direct media hints) is the only way forward.
		return Outcome{Kind: OutcomeFailed, Message: failureMessage(resp, "translation rejected")}
	default:
		return Outcome{Kind: OutcomeFailed, Message: failureMessage(resp, "unknown translation status")}
	}
}

func failureMessage(resp *wire.TranslateResponse, fallback string) string {
	if resp.Message != "" {
		return resp.Message
	}
	return fallback
}
