package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/antonkaz/video-dub-bot/internal/i18n"
	"github.com/antonkaz/video-dub-bot/internal/langs"
	"github.com/antonkaz/video-dub-bot/internal/messages"
	"github.com/antonkaz/video-dub-bot/types"
)

func (h *Handlers) HandleCommand(ctx context.Context, b *bot.Bot, update *models.Update, lang i18n.Lang) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	switch commandName(update.Message.Text) {
	case "start":
		h.reply(ctx, b, chatID, messages.StartWelcome(lang))
	case "help":
		h.reply(ctx, b, chatID, messages.Help(lang))
	case "language":
		h.sendLanguageKeyboard(ctx, b, chatID, lang)
	case "voice":
		h.toggleVoice(ctx, b, update, lang)
	case "history":
		h.sendHistory(ctx, b, update, lang)
	default:
		h.reply(ctx, b, chatID, messages.ErrorUnknownCommand(lang))
	}
}

// commandName extracts "start" from "/start@SomeBot arg".
func commandName(text string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	name := strings.Fields(text)[0][1:]
	if i := strings.Index(name, "@"); i >= 0 {
		name = name[:i]
	}
	return name
}

func (h *Handlers) sendLanguageKeyboard(ctx context.Context, b *bot.Bot, chatID int64, lang i18n.Lang) {
	rows := make([][]models.InlineKeyboardButton, 0, len(langs.Supported))
	for _, l := range langs.Supported {
		rows = append(rows, []models.InlineKeyboardButton{{
			Text:         l.Name,
			CallbackData: "lang_" + l.Code,
		}})
	}
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        messages.ChooseLanguage(lang),
		ParseMode:   messages.ParseModeHTML,
		ReplyMarkup: models.InlineKeyboardMarkup{InlineKeyboard: rows},
	})
	if err != nil {
		h.log.Warn().Err(err).Int64("chat_id", chatID).Msg("send language keyboard")
	}
}

func (h *Handlers) toggleVoice(ctx context.Context, b *bot.Bot, update *models.Update, lang i18n.Lang) {
	chatID := update.Message.Chat.ID
	userID := userIDFromUpdate(update)
	prefs, err := h.getPrefs(ctx, userID)
	if err != nil {
		h.reply(ctx, b, chatID, messages.ErrorDefault(lang))
		return
	}
	prefs.LivelyVoice = !prefs.LivelyVoice
	if err := h.prefs.SetPrefs(ctx, userID, prefs); err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("save prefs")
		h.reply(ctx, b, chatID, messages.ErrorDefault(lang))
		return
	}
	h.reply(ctx, b, chatID, messages.VoiceToggled(lang, prefs.LivelyVoice))
}

func (h *Handlers) sendHistory(ctx context.Context, b *bot.Bot, update *models.Update, lang i18n.Lang) {
	chatID := update.Message.Chat.ID
	if h.history == nil {
		h.reply(ctx, b, chatID, messages.HistoryEmpty(lang))
		return
	}
	items, err := h.history.RecentTranslations(ctx, userIDFromUpdate(update), 10)
	if err != nil {
		h.log.Error().Err(err).Msg("load history")
		h.reply(ctx, b, chatID, messages.ErrorDefault(lang))
		return
	}
	if len(items) == 0 {
		h.reply(ctx, b, chatID, messages.HistoryEmpty(lang))
		return
	}
	var sb strings.Builder
	sb.WriteString(messages.HistoryHeader(lang))
	for _, tr := range items {
		sb.WriteString("\n")
		sb.WriteString(messages.HistoryLine(lang, tr.VideoURL, tr.TargetLang, tr.Status))
	}
	h.reply(ctx, b, chatID, sb.String())
}

func (h *Handlers) getPrefs(ctx context.Context, userID int64) (types.UserPrefs, error) {
	prefs, err := h.prefs.GetPrefs(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", userID).Msg("load prefs")
		return types.UserPrefs{}, err
	}
	if prefs.TargetLang == "" {
		prefs.TargetLang = h.defaultTargetLang
	}
	return prefs, nil
}
