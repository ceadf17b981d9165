package types

import (
	"context"
	"time"
)

// UserPrefs are the per-user translation settings kept in Redis.
type UserPrefs struct {
	TargetLang  string `json:"target_lang"`
	LivelyVoice bool   `json:"lively_voice"`
}

// Translation is one finished (or failed) translation request, recorded in
// Postgres for the /history command.
type Translation struct {
	ID         int64
	UserID     int64
	VideoURL   string
	TargetLang string
	ResultURL  string
	Duration   float64
	Lively     bool
	Status     string
	Error      string
	CreatedAt  time.Time
}

const (
	TranslationStatusDone   = "done"
	TranslationStatusFailed = "failed"
)

type PrefsStore interface {
	GetPrefs(ctx context.Context, userID int64) (UserPrefs, error)
	SetPrefs(ctx context.Context, userID int64, prefs UserPrefs) error
}

type HistoryStore interface {
	RecordTranslation(ctx context.Context, tr Translation) error
	RecentTranslations(ctx context.Context, userID int64, limit int) ([]Translation, error)
}
