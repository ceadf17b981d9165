package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/antonkaz/video-dub-bot/store"
)

// ErrNotRestartable is returned when Run is called on a poller that has
// already run. A stopped poller must not be reused.
var ErrNotRestartable = errors.New("poller: already started or stopped")

const (
	defaultPollTimeout  = 50 * time.Second
	defaultRetryBackoff = 5 * time.Second
)

type state int

const (
	stateIdle state = iota
	statePolling
	stateStopped
)

type Config struct {
	PollTimeout  time.Duration
	RetryBackoff time.Duration
}

// Poller long-polls the platform for updates, advancing a durable offset so a
// restart resumes where the previous process stopped. Fetches never overlap:
// the loop waits for each roundtrip before issuing the next.
type Poller struct {
	fetcher Fetcher
	offsets *store.OffsetStore
	timeout time.Duration
	backoff time.Duration
	log     zerolog.Logger

	mu         sync.Mutex
	state      state
	offset     int64
	skipResync bool
}

func New(fetcher Fetcher, offsets *store.OffsetStore, cfg Config, log zerolog.Logger) *Poller {
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	return &Poller{
		fetcher: fetcher,
		offsets: offsets,
		timeout: timeout,
		backoff: backoff,
		log:     log,
	}
}

// Run polls until ctx is cancelled or a fatal transport error occurs,
// invoking yield for every non-empty batch. Returns nil on clean shutdown.
func (p *Poller) Run(ctx context.Context, yield func([]models.Update)) error {
	p.mu.Lock()
	if p.state != stateIdle {
		p.mu.Unlock()
		return ErrNotRestartable
	}
	p.state = statePolling
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.state = stateStopped
		p.mu.Unlock()
	}()

	end, err := p.offsets.EndOffset(ctx)
	if err != nil {
		return err
	}
	if end > 0 {
		p.offset = end + 1
	}

	sawFirstBatch := false
	for {
		if ctx.Err() != nil {
			p.shutdown()
			return nil
		}

		batch, err := p.fetcher.Fetch(ctx, p.offset, p.timeout, 0)
		if err != nil {
			if ctx.Err() != nil {
				p.shutdown()
				return nil
			}

			var fe *FetchError
			if errors.As(err, &fe) && fe.Fatal() {
				// Another consumer owns the offset (409) or the token is bad
				// (401): resyncing on stop would fight over it.
				p.skipResync = true
				return err
			}

			wait := p.backoff
			if errors.As(err, &fe) && fe.RetryAfter > 0 {
				wait = fe.RetryAfter
			}
			p.log.Warn().Err(err).Dur("retry_in", wait).Msg("update fetch failed, retrying same offset")
			if !sleepCtx(ctx, wait) {
				p.shutdown()
				return nil
			}
			continue
		}

		if len(batch) == 0 {
			continue
		}

		if !sawFirstBatch {
			sawFirstBatch = true
			start, err := p.offsets.StartOffset(ctx)
			if err != nil {
				p.log.Error().Err(err).Msg("read start offset")
			} else if start == 0 {
				if err := p.offsets.SetStartOffset(ctx, batch[0].ID); err != nil {
					p.log.Error().Err(err).Msg("persist start offset")
				}
			}
		}

		last := batch[len(batch)-1].ID
		if err := p.offsets.SetEndOffset(ctx, last); err != nil {
			p.log.Error().Err(err).Int64("end_offset", last).Msg("persist end offset")
		}
		p.offset = last + 1

		yield(batch)
	}
}

// shutdown tells the platform the offset has advanced so already-yielded
// updates are not redelivered to the next run. Best effort.
func (p *Poller) shutdown() {
	if p.skipResync {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := p.fetcher.Fetch(ctx, p.offset, 0, 1); err != nil {
		p.log.Debug().Err(err).Msg("offset resync on stop failed")
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
