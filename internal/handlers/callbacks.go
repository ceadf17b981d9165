package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/antonkaz/video-dub-bot/internal/i18n"
	"github.com/antonkaz/video-dub-bot/internal/langs"
	"github.com/antonkaz/video-dub-bot/internal/messages"
)

const langCallbackPrefix = "lang_"

func (h *Handlers) HandleCallback(ctx context.Context, b *bot.Bot, update *models.Update, lang i18n.Lang) {
	if update.CallbackQuery == nil {
		return
	}
	query := update.CallbackQuery
	defer h.answerCallback(ctx, b, query.ID)

	chatID := chatIDFromUpdate(update)
	if chatID == 0 {
		return
	}

	if code, ok := strings.CutPrefix(query.Data, langCallbackPrefix); ok {
		h.setLanguage(ctx, b, update, chatID, query.From.ID, code, lang)
	}
}

func (h *Handlers) setLanguage(ctx context.Context, b *bot.Bot, update *models.Update, chatID, userID int64, code string, lang i18n.Lang) {
	if !langs.Exists(code) {
		h.reply(ctx, b, chatID, messages.ErrorDefault(lang))
		return
	}
	prefs, err := h.getPrefs(ctx, userID)
	if err != nil {
		h.reply(ctx, b, chatID, messages.ErrorDefault(lang))
		return
	}
	prefs.TargetLang = code
	if err := h.prefs.SetPrefs(ctx, userID, prefs); err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("save prefs")
		h.reply(ctx, b, chatID, messages.ErrorDefault(lang))
		return
	}

	confirmation := messages.LanguageSet(lang, langs.Name(code))
	if msg := update.CallbackQuery.Message.Message; msg != nil {
		_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
			ChatID:    msg.Chat.ID,
			MessageID: msg.ID,
			Text:      confirmation,
			ParseMode: messages.ParseModeHTML,
		})
		if err == nil {
			return
		}
		h.log.Warn().Err(err).Int64("chat_id", chatID).Msg("edit language message")
	}
	h.reply(ctx, b, chatID, confirmation)
}

func (h *Handlers) answerCallback(ctx context.Context, b *bot.Bot, queryID string) {
	_, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: queryID,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("answer callback query")
	}
}
