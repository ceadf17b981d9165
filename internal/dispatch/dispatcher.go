package dispatch

import (
	"context"
	"sync"

	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
)

// HandlerFunc is the application entry point for one update.
type HandlerFunc func(ctx context.Context, update *models.Update)

// Dispatcher hands updates to the handler in fire-and-forget goroutines while
// bracketing each one with the ledger, so the poll loop never waits for slow
// handlers. Wait drains handlers on shutdown.
type Dispatcher struct {
	ledger  *Ledger
	handler HandlerFunc
	log     zerolog.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(ledger *Ledger, handler HandlerFunc, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		ledger:  ledger,
		handler: handler,
		log:     log,
	}
}

func (d *Dispatcher) DispatchBatch(ctx context.Context, updates []models.Update) {
	for i := range updates {
		d.Dispatch(ctx, &updates[i])
	}
}

// Dispatch records the attempt synchronously, then runs the handler in its
// own goroutine. The ledger write must complete before the handler starts,
// otherwise a crash in between would lose the update.
func (d *Dispatcher) Dispatch(ctx context.Context, update *models.Update) {
	if err := d.ledger.DispatchStart(ctx, update); err != nil {
		d.log.Error().Err(err).Int64("update_id", update.ID).Msg("record in-flight update")
		// Handle anyway: losing the crash guarantee beats dropping the update.
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Error().Interface("panic", r).Int64("update_id", update.ID).Msg("handler panicked")
			}
			d.ledger.DispatchEnd(context.Background(), update)
		}()
		d.handler(ctx, update)
	}()
}

// Wait blocks until all in-flight handlers return.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
