package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/antonkaz/video-dub-bot/store"
)

const defaultMaxAttempts = 3

// InFlightRecord marks an update as accepted but not yet fully handled. It
// survives restarts so the handler can be re-run after a crash.
type InFlightRecord struct {
	HandleCount int           `json:"handle_count"`
	Update      models.Update `json:"update"`
}

func inFlightKey(updateID int64) string {
	return fmt.Sprintf("inflight:%d", updateID)
}

// Ledger provides at-least-once handling over the poller's offset window.
// Replays are bounded by an attempt cap so one poisoned update cannot pin the
// start offset forever.
type Ledger struct {
	kv          store.KV
	offsets     *store.OffsetStore
	maxAttempts int
	log         zerolog.Logger
}

func NewLedger(kv store.KV, offsets *store.OffsetStore, log zerolog.Logger) *Ledger {
	return &Ledger{
		kv:          kv,
		offsets:     offsets,
		maxAttempts: defaultMaxAttempts,
		log:         log,
	}
}

// DispatchStart records the attempt before the handler is allowed to do any
// meaningful work; a crash after this point leads to a replay, never a miss.
func (l *Ledger) DispatchStart(ctx context.Context, update *models.Update) error {
	var rec InFlightRecord
	err := l.kv.Get(ctx, inFlightKey(update.ID), &rec)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	rec.HandleCount++
	rec.Update = *update
	return l.kv.Set(ctx, inFlightKey(update.ID), &rec)
}

// DispatchEnd removes the record regardless of handler success. A crash
// between handler completion and this delete costs one duplicate replay, not
// data loss.
func (l *Ledger) DispatchEnd(ctx context.Context, update *models.Update) {
	if err := l.kv.Remove(ctx, inFlightKey(update.ID)); err != nil && !errors.Is(err, store.ErrNotFound) {
		l.log.Error().Err(err).Int64("update_id", update.ID).Msg("remove in-flight record")
	}
}

// ReplayPending redispatches updates that were in flight when the previous
// process died, then advances the start offset past everything resolved. Run
// once at startup, before live polling begins.
func (l *Ledger) ReplayPending(ctx context.Context, redispatch func(*models.Update)) error {
	start, err := l.offsets.StartOffset(ctx)
	if err != nil {
		return err
	}
	if start == 0 {
		return nil
	}
	end, err := l.offsets.EndOffset(ctx)
	if err != nil {
		return err
	}

	var smallest int64
	replayed, dropped := 0, 0
	for id := start; id <= end; id++ {
		var rec InFlightRecord
		err := l.kv.Get(ctx, inFlightKey(id), &rec)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}

		if rec.HandleCount >= l.maxAttempts {
			l.log.Warn().
				Int64("update_id", id).
				Int("handle_count", rec.HandleCount).
				Msg("dropping update after too many attempts")
			if err := l.kv.Remove(ctx, inFlightKey(id)); err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
			dropped++
			continue
		}

		update := rec.Update
		redispatch(&update)
		replayed++
		if smallest == 0 || id < smallest {
			smallest = id
		}
	}

	newStart := smallest
	if newStart == 0 {
		newStart = end + 1
	}
	if err := l.offsets.SetStartOffset(ctx, newStart); err != nil {
		return err
	}

	if replayed > 0 || dropped > 0 {
		l.log.Info().
			Int("replayed", replayed).
			Int("dropped", dropped).
			Int64("start_offset", newStart).
			Msg("replayed pending updates")
	}
	return nil
}
