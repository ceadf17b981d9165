package handlers

import (
	"context"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/antonkaz/video-dub-bot/internal/contextkeys"
	"github.com/antonkaz/video-dub-bot/internal/i18n"
	"github.com/antonkaz/video-dub-bot/internal/media"
	"github.com/antonkaz/video-dub-bot/internal/messages"
	"github.com/antonkaz/video-dub-bot/internal/translate"
	"github.com/antonkaz/video-dub-bot/types"
)

// Translator is the slice of the translation client the handlers use.
type Translator interface {
	TranslateVideo(ctx context.Context, videoURL string, opts translate.Options) (*translate.Result, error)
	TranslateVideoPreferLiveVoices(ctx context.Context, videoURL string, opts translate.Options) (*translate.Result, error)
}

type Config struct {
	TranslateTimeout      time.Duration
	MaxActiveTranslations int
	DefaultTargetLang     string
}

type Handlers struct {
	prefs      types.PrefsStore
	history    types.HistoryStore
	translator Translator
	sender     *media.Sender
	log        zerolog.Logger

	// Admission control for simultaneous translations; over-capacity
	// requests are rejected with a busy message instead of queueing.
	sem chan struct{}

	translateTimeout  time.Duration
	defaultTargetLang string
}

func New(prefs types.PrefsStore, history types.HistoryStore, translator Translator, sender *media.Sender, cfg Config, log zerolog.Logger) *Handlers {
	if cfg.MaxActiveTranslations <= 0 {
		cfg.MaxActiveTranslations = 4
	}
	if cfg.TranslateTimeout <= 0 {
		cfg.TranslateTimeout = 90 * time.Minute
	}
	if cfg.DefaultTargetLang == "" {
		cfg.DefaultTargetLang = "ru"
	}
	return &Handlers{
		prefs:             prefs,
		history:           history,
		translator:        translator,
		sender:            sender,
		log:               log,
		sem:               make(chan struct{}, cfg.MaxActiveTranslations),
		translateTimeout:  cfg.TranslateTimeout,
		defaultTargetLang: cfg.DefaultTargetLang,
	}
}

func (h *Handlers) MainHandler(ctx context.Context, b *bot.Bot, update *models.Update) {
	kind, _ := contextkeys.GetUpdateKind(ctx)
	lang := h.uiLang(ctx)

	switch kind {
	case contextkeys.UpdateKindCommand:
		h.HandleCommand(ctx, b, update, lang)
	case contextkeys.UpdateKindText:
		h.HandleText(ctx, b, update, lang)
	case contextkeys.UpdateKindCallback:
		h.HandleCallback(ctx, b, update, lang)
	default:
		if chatID := chatIDFromUpdate(update); chatID != 0 {
			h.reply(ctx, b, chatID, messages.SendLinkHint(lang))
		}
	}
}

func (h *Handlers) uiLang(ctx context.Context) i18n.Lang {
	if code, ok := contextkeys.GetLang(ctx); ok {
		return i18n.FromLanguageCode(code)
	}
	return i18n.EN
}

func (h *Handlers) reply(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: messages.ParseModeHTML,
	})
	if err != nil {
		h.log.Warn().Err(err).Int64("chat_id", chatID).Msg("send message")
	}
}

func chatIDFromUpdate(update *models.Update) int64 {
	if update == nil {
		return 0
	}
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil {
		if update.CallbackQuery.Message.Message != nil {
			return update.CallbackQuery.Message.Message.Chat.ID
		}
		if update.CallbackQuery.Message.InaccessibleMessage != nil {
			return update.CallbackQuery.Message.InaccessibleMessage.Chat.ID
		}
	}
	return 0
}

func userIDFromUpdate(update *models.Update) int64 {
	if update == nil {
		return 0
	}
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From.ID
	}
	return 0
}
