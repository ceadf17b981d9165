package handlers

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/antonkaz/video-dub-bot/internal/i18n"
	"github.com/antonkaz/video-dub-bot/internal/messages"
	"github.com/antonkaz/video-dub-bot/internal/translate"
	"github.com/antonkaz/video-dub-bot/types"
)

func (h *Handlers) HandleText(ctx context.Context, b *bot.Bot, update *models.Update, lang i18n.Lang) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	videoURL := extractURL(update.Message.Text)
	if videoURL == "" {
		h.reply(ctx, b, chatID, messages.SendLinkHint(lang))
		return
	}

	select {
	case h.sem <- struct{}{}:
	default:
		h.reply(ctx, b, chatID, messages.TranslationBusy(lang))
		return
	}
	defer func() { <-h.sem }()

	h.reply(ctx, b, chatID, messages.TranslationStarted(lang))
	h.runTranslation(ctx, b, chatID, userIDFromUpdate(update), videoURL, lang)
}

func (h *Handlers) runTranslation(ctx context.Context, b *bot.Bot, chatID, userID int64, videoURL string, lang i18n.Lang) {
	prefs, err := h.getPrefs(ctx, userID)
	if err != nil {
		h.reply(ctx, b, chatID, messages.ErrorDefault(lang))
		return
	}

	tctx, cancel := context.WithTimeout(ctx, h.translateTimeout)
	defer cancel()

	opts := translate.Options{ResponseLanguage: prefs.TargetLang}
	var result *translate.Result
	if prefs.LivelyVoice {
		result, err = h.translator.TranslateVideoPreferLiveVoices(tctx, videoURL, opts)
	} else {
		result, err = h.translator.TranslateVideo(tctx, videoURL, opts)
	}
	if err != nil {
		h.log.Warn().Err(err).Int64("user_id", userID).Str("video_url", videoURL).Msg("translation failed")
		h.recordHistory(userID, videoURL, prefs, nil, err)
		h.reply(ctx, b, chatID, translationErrorMessage(err, lang))
		return
	}

	h.log.Info().
		Int64("user_id", userID).
		Str("video_url", videoURL).
		Float64("duration", result.Duration).
		Msg("translation finished")
	h.recordHistory(userID, videoURL, prefs, result, nil)

	h.reply(ctx, b, chatID, messages.TranslationReady(lang))
	if err := h.sender.SendAudioFromURL(ctx, b, chatID, result.URL, videoURL, result.Duration); err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("deliver audio")
		h.reply(ctx, b, chatID, messages.ErrorDefault(lang))
	}
}

func translationErrorMessage(err error, lang i18n.Lang) string {
	var terr *translate.TranslateError
	switch {
	case errors.As(err, &terr):
		if terr.Temporary() {
			return messages.TranslationTemporary(lang)
		}
		return messages.TranslationFailed(lang)
	case errors.Is(err, context.DeadlineExceeded):
		return messages.TranslationTimedOut(lang)
	default:
		return messages.ErrorDefault(lang)
	}
}

// recordHistory persists the attempt outside the update's context so a
// cancelled translation still gets recorded.
func (h *Handlers) recordHistory(userID int64, videoURL string, prefs types.UserPrefs, result *translate.Result, terr error) {
	if h.history == nil {
		return
	}
	tr := types.Translation{
		UserID:     userID,
		VideoURL:   videoURL,
		TargetLang: prefs.TargetLang,
		Lively:     prefs.LivelyVoice,
		Status:     types.TranslationStatusDone,
	}
	if terr != nil {
		tr.Status = types.TranslationStatusFailed
		tr.Error = terr.Error()
	} else if result != nil {
		tr.ResultURL = result.URL
		tr.Duration = result.Duration
	}
	if err := h.history.RecordTranslation(context.Background(), tr); err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("record history")
	}
}

// extractURL returns the first http(s) link in the message, or "".
func extractURL(text string) string {
	for _, field := range strings.Fields(text) {
		u, err := url.Parse(field)
		if err != nil {
			continue
		}
		if (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
			return field
		}
	}
	return ""
}
