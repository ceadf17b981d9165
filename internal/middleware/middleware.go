package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/antonkaz/video-dub-bot/internal/contextkeys"
	"github.com/antonkaz/video-dub-bot/types"
)

type Middlewares struct {
	users types.UserStore
	log   zerolog.Logger
}

func New(users types.UserStore, log zerolog.Logger) *Middlewares {
	return &Middlewares{users: users, log: log}
}

// ClassifyUpdateMiddleware puts the routing kind and the sender's UI language
// into ctx so handlers do not re-derive them.
func (m *Middlewares) ClassifyUpdateMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		kind := classifyUpdate(update)
		ctx = contextkeys.WithUpdateKind(ctx, kind)
		if code := senderLanguageCode(update); code != "" {
			ctx = contextkeys.WithLang(ctx, code)
		}
		next(ctx, b, update)
	}
}

// TrackUserMiddleware upserts the sender into Postgres. Best effort: a
// database hiccup must not block handling.
func (m *Middlewares) TrackUserMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if user, chatID := senderOf(update); user != nil {
			err := m.users.UpsertUser(ctx, types.User{
				UserID:    user.ID,
				ChatID:    chatID,
				Username:  user.Username,
				FirstName: user.FirstName,
				LastName:  user.LastName,
				UpdatedAt: time.Now().UTC(),
			})
			if err != nil {
				m.log.Warn().Err(err).Int64("user_id", user.ID).Msg("upsert user")
			}
		}
		next(ctx, b, update)
	}
}

func classifyUpdate(update *models.Update) contextkeys.UpdateKind {
	switch {
	case update.CallbackQuery != nil:
		return contextkeys.UpdateKindCallback
	case update.Message != nil && strings.HasPrefix(update.Message.Text, "/"):
		return contextkeys.UpdateKindCommand
	case update.Message != nil && (update.Message.Text != "" || update.Message.Caption != ""):
		return contextkeys.UpdateKindText
	default:
		return contextkeys.UpdateKindUnknown
	}
}

func senderOf(update *models.Update) (*models.User, int64) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From, update.Message.Chat.ID
	case update.CallbackQuery != nil:
		chatID := int64(0)
		if update.CallbackQuery.Message.Message != nil {
			chatID = update.CallbackQuery.Message.Message.Chat.ID
		} else if update.CallbackQuery.Message.InaccessibleMessage != nil {
			chatID = update.CallbackQuery.Message.InaccessibleMessage.Chat.ID
		}
		return &update.CallbackQuery.From, chatID
	default:
		return nil, 0
	}
}

func senderLanguageCode(update *models.Update) string {
	user, _ := senderOf(update)
	if user == nil {
		return ""
	}
	return user.LanguageCode
}
