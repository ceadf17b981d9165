package dispatch

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/antonkaz/video-dub-bot/store"
)

func newTestLedger() (*Ledger, *store.MemoryKV, *store.OffsetStore) {
	kv := store.NewMemoryKV()
	offsets := store.NewOffsetStore(kv)
	return NewLedger(kv, offsets, zerolog.Nop()), kv, offsets
}

func TestDispatchLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, kv, _ := newTestLedger()
	update := &models.Update{ID: 42}

	if err := ledger.DispatchStart(ctx, update); err != nil {
		t.Fatalf("DispatchStart: %v", err)
	}
	var rec InFlightRecord
	if err := kv.Get(ctx, inFlightKey(42), &rec); err != nil {
		t.Fatalf("record missing after DispatchStart: %v", err)
	}
	if rec.HandleCount != 1 || rec.Update.ID != 42 {
		t.Fatalf("record=%+v", rec)
	}

	// A redelivery bumps the count instead of resetting it.
	if err := ledger.DispatchStart(ctx, update); err != nil {
		t.Fatalf("DispatchStart: %v", err)
	}
	if err := kv.Get(ctx, inFlightKey(42), &rec); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.HandleCount != 2 {
		t.Fatalf("handle count=%d, want=2", rec.HandleCount)
	}

	ledger.DispatchEnd(ctx, update)
	if err := kv.Get(ctx, inFlightKey(42), &rec); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("record still present after DispatchEnd: %v", err)
	}
}

func TestReplayPending(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, kv, offsets := newTestLedger()

	if err := offsets.SetStartOffset(ctx, 5); err != nil {
		t.Fatalf("SetStartOffset: %v", err)
	}
	if err := offsets.SetEndOffset(ctx, 8); err != nil {
		t.Fatalf("SetEndOffset: %v", err)
	}

	// 5 and 8 completed (no record), 6 crashed mid-handling, 7 is poisoned.
	if err := kv.Set(ctx, inFlightKey(6), &InFlightRecord{HandleCount: 1, Update: models.Update{ID: 6}}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Set(ctx, inFlightKey(7), &InFlightRecord{HandleCount: 3, Update: models.Update{ID: 7}}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	var redispatched []int64
	err := ledger.ReplayPending(ctx, func(u *models.Update) {
		redispatched = append(redispatched, u.ID)
	})
	if err != nil {
		t.Fatalf("ReplayPending: %v", err)
	}

	if len(redispatched) != 1 || redispatched[0] != 6 {
		t.Fatalf("redispatched=%v, want=[6]", redispatched)
	}

	var rec InFlightRecord
	if err := kv.Get(ctx, inFlightKey(7), &rec); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("poisoned record 7 not deleted: %v", err)
	}

	start, _ := offsets.StartOffset(ctx)
	if start != 6 {
		t.Fatalf("startOffset=%d, want=6", start)
	}
}

func TestReplayPendingNothingInFlight(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, _, offsets := newTestLedger()

	called := false
	if err := ledger.ReplayPending(ctx, func(*models.Update) { called = true }); err != nil {
		t.Fatalf("ReplayPending: %v", err)
	}
	if called {
		t.Fatal("redispatch called with startOffset=0")
	}

	start, _ := offsets.StartOffset(ctx)
	if start != 0 {
		t.Fatalf("startOffset=%d, want untouched 0", start)
	}
}

func TestReplayPendingAllResolved(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, _, offsets := newTestLedger()

	if err := offsets.SetStartOffset(ctx, 3); err != nil {
		t.Fatalf("SetStartOffset: %v", err)
	}
	if err := offsets.SetEndOffset(ctx, 9); err != nil {
		t.Fatalf("SetEndOffset: %v", err)
	}

	if err := ledger.ReplayPending(ctx, func(*models.Update) {
		t.Error("nothing should be redispatched")
	}); err != nil {
		t.Fatalf("ReplayPending: %v", err)
	}

	start, _ := offsets.StartOffset(ctx)
	if start != 10 {
		t.Fatalf("startOffset=%d, want=10 (endOffset+1)", start)
	}
}

func TestDispatcherRunsHandlersConcurrently(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, kv, _ := newTestLedger()

	var mu sync.Mutex
	var handled []int64
	started := make(chan struct{}, 3)

	d := NewDispatcher(ledger, func(ctx context.Context, u *models.Update) {
		started <- struct{}{}
		time.Sleep(20 * time.Millisecond)
		mu.Lock()
		handled = append(handled, u.ID)
		mu.Unlock()
	}, zerolog.Nop())

	d.DispatchBatch(ctx, []models.Update{{ID: 1}, {ID: 2}, {ID: 3}})

	// All three must start without waiting for each other.
	deadline := time.After(time.Second)
	for i := 0; i < 3; i++ {
		select {
		case <-started:
		case <-deadline:
			t.Fatal("handlers did not start concurrently")
		}
	}
	d.Wait()

	sort.Slice(handled, func(i, j int) bool { return handled[i] < handled[j] })
	if len(handled) != 3 || handled[0] != 1 || handled[2] != 3 {
		t.Fatalf("handled=%v", handled)
	}

	// Ledger drained after completion.
	for _, id := range []int64{1, 2, 3} {
		var rec InFlightRecord
		if err := kv.Get(ctx, inFlightKey(id), &rec); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("record %d still present: %v", id, err)
		}
	}
}

func TestDispatcherSurvivesHandlerPanic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ledger, kv, _ := newTestLedger()

	d := NewDispatcher(ledger, func(ctx context.Context, u *models.Update) {
		panic("handler exploded")
	}, zerolog.Nop())

	d.Dispatch(ctx, &models.Update{ID: 9})
	d.Wait()

	var rec InFlightRecord
	if err := kv.Get(ctx, inFlightKey(9), &rec); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("record not cleaned up after panic: %v", err)
	}
}
