package store

import (
	"context"
	"errors"
)

const (
	keyStartOffset = "offset:start"
	keyEndOffset   = "offset:end"
)

// OffsetStore persists the poller's durable offset window. startOffset is the
// oldest update not yet confirmed handled (0 means nothing in flight),
// endOffset the newest update ever received.
type OffsetStore struct {
	kv KV
}

func NewOffsetStore(kv KV) *OffsetStore {
	return &OffsetStore{kv: kv}
}

func (s *OffsetStore) StartOffset(ctx context.Context) (int64, error) {
	return s.get(ctx, keyStartOffset)
}

func (s *OffsetStore) SetStartOffset(ctx context.Context, v int64) error {
	return s.kv.Set(ctx, keyStartOffset, v)
}

func (s *OffsetStore) EndOffset(ctx context.Context) (int64, error) {
	return s.get(ctx, keyEndOffset)
}

func (s *OffsetStore) SetEndOffset(ctx context.Context, v int64) error {
	return s.kv.Set(ctx, keyEndOffset, v)
}

func (s *OffsetStore) get(ctx context.Context, key string) (int64, error) {
	var v int64
	if err := s.kv.Get(ctx, key, &v); err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return v, nil
}
