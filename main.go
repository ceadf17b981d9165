package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"

	"github.com/antonkaz/video-dub-bot/internal/config"
	"github.com/antonkaz/video-dub-bot/internal/dispatch"
	"github.com/antonkaz/video-dub-bot/internal/handlers"
	"github.com/antonkaz/video-dub-bot/internal/logging"
	"github.com/antonkaz/video-dub-bot/internal/media"
	"github.com/antonkaz/video-dub-bot/internal/middleware"
	"github.com/antonkaz/video-dub-bot/internal/poller"
	"github.com/antonkaz/video-dub-bot/internal/translate"
	"github.com/antonkaz/video-dub-bot/store"
	"github.com/antonkaz/video-dub-bot/types"
)

const redisKeyPrefix = "video_dub_bot"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString("logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := store.NewRedisClient(ctx, cfg.RedisAddr(), cfg.RedisPassword, cfg.RedisDB, redisKeyPrefix)
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer redisClient.Close()

	pg, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("connect postgres")
	}
	defer pg.Close()

	offsets := store.NewOffsetStore(redisClient)
	userPrefs := store.NewRedisUserStore(redisClient, cfg.PrefsTTLHours, types.UserPrefs{
		TargetLang: cfg.DefaultTargetLang,
	})

	// Outbound API only. Updates come through our own poller, so the
	// library's Start loop is never used.
	b, err := bot.New(cfg.BotToken, bot.WithHTTPClient(time.Minute, &http.Client{Timeout: time.Minute}))
	if err != nil {
		log.Fatal().Err(err).Msg("create bot")
	}

	translator := translate.NewClient(translate.Config{
		Endpoint:  cfg.TranslateURL,
		Secret:    cfg.TranslateSecret,
		UserAgent: cfg.TranslateUserAgent,
	}, log)

	sender := media.NewSender(nil, log)

	h := handlers.New(userPrefs, pg, translator, sender, handlers.Config{
		TranslateTimeout:      time.Duration(cfg.TranslateTimeoutMin) * time.Minute,
		MaxActiveTranslations: cfg.MaxActiveTranslations,
		DefaultTargetLang:     cfg.DefaultTargetLang,
	}, log)

	mw := middleware.New(pg, log)
	chain := mw.ClassifyUpdateMiddleware(mw.TrackUserMiddleware(h.MainHandler))

	ledger := dispatch.NewLedger(redisClient, offsets, log)
	dispatcher := dispatch.NewDispatcher(ledger, func(ctx context.Context, update *models.Update) {
		chain(ctx, b, update)
	}, log)

	// Re-run updates that were in flight when the previous process died.
	if err := ledger.ReplayPending(ctx, func(update *models.Update) {
		dispatcher.Dispatch(ctx, update)
	}); err != nil {
		log.Error().Err(err).Msg("replay pending updates")
	}

	fetcher := poller.NewTelegramFetcher(cfg.BotToken, nil, nil)
	p := poller.New(fetcher, offsets, poller.Config{
		PollTimeout: time.Duration(cfg.PollTimeoutSec) * time.Second,
	}, log)

	log.Info().Str("environment", cfg.Environment).Msg("starting video dub bot")

	if err := p.Run(ctx, func(batch []models.Update) {
		dispatcher.DispatchBatch(ctx, batch)
	}); err != nil {
		log.Error().Err(err).Msg("poller stopped")
	}

	dispatcher.Wait()
	log.Info().Msg("shutdown complete")
}
