package translate

import (
	"fmt"

	"github.com/antonkaz/video-dub-bot/internal/wire"
)

// TemporaryFailureMessage is the exact text the backend returns for transient
// internal failures. Callers show a softer "try again later" message for it.
const TemporaryFailureMessage = "Возникла ошибка, попробуйте позже"

// TranslateError is a terminal failure reported by the backend. Response holds
// the raw decoded payload when one was available.
type TranslateError struct {
	Message  string
	Response *wire.TranslateResponse
}

func (e *TranslateError) Error() string {
	return fmt.Sprintf("translate: %s", e.Message)
}

// Temporary reports whether the backend flagged the failure as transient.
func (e *TranslateError) Temporary() bool {
	return e.Message == TemporaryFailureMessage
}

// InProgressError signals retry-later from a single-shot translation attempt.
// TranslateVideo folds it into its polling loop; it only escapes through
// TranslateOnce.
type InProgressError struct {
	RemainingTime int32
}

func (e *InProgressError) Error() string {
	if e.RemainingTime > 0 {
		return fmt.Sprintf("translate: in progress, about %d seconds remaining", e.RemainingTime)
	}
	return "translate: in progress"
}
