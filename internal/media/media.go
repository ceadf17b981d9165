package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
)

// Sender delivers a finished translation: the backend hands back a CDN URL,
// Telegram wants a file upload.
type Sender struct {
	httpClient *http.Client
	log        zerolog.Logger
}

func NewSender(httpClient *http.Client, log zerolog.Logger) *Sender {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Minute}
	}
	return &Sender{httpClient: httpClient, log: log}
}

func (s *Sender) SendAudioFromURL(ctx context.Context, b *bot.Bot, chatID int64, audioURL, title string, duration float64) error {
	path, err := s.download(ctx, audioURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("remove temp audio")
		}
	}()

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if title == "" {
		title = "Translated audio"
	}
	_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{
		ChatID: chatID,
		Action: models.ChatActionUploadDocument,
	})
	_, err = b.SendAudio(ctx, &bot.SendAudioParams{
		ChatID: chatID,
		Audio: &models.InputFileUpload{
			Filename: "translation.mp3",
			Data:     file,
		},
		Title:    title,
		Duration: int(duration),
	})
	return err
}

func (s *Sender) download(ctx context.Context, audioURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download audio: unexpected status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "dub-*.mp3")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
