package conversation

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// Store is the persistence contract for turns.
//
// It MUST be append-only. No Update/Delete methods are provided by design.
// Append must be idempotent for a repeated (call_sid, turn_id) pair: the
// webhook protocol can redeliver events, and a redelivered append must not
// duplicate or overwrite the stored record.

type Store interface {
	Append(ctx context.Context, t Turn) error

	// ListByCall returns the stored turns for one call, oldest first.
	ListByCall(ctx context.Context, callSid string) ([]Turn, error)
}

var ErrInvalidTurn = errors.New("conversation: invalid turn")

// MemoryStore is an in-memory append-only store for tests and local runs.
type MemoryStore struct {
	mu    sync.Mutex
	turns map[string][]Turn // keyed by call_sid
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{turns: map[string][]Turn{}}
}

func (s *MemoryStore) Append(ctx context.Context, t Turn) error {
	if t.CallSid == "" || t.TurnID == "" {
		return ErrInvalidTurn
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.turns[t.CallSid] {
		if existing.TurnID == t.TurnID {
			// Idempotent append: the first write wins.
			return nil
		}
	}
	s.turns[t.CallSid] = append(s.turns[t.CallSid], t)
	return nil
}

func (s *MemoryStore) ListByCall(ctx context.Context, callSid string) ([]Turn, error) {
	if callSid == "" {
		return nil, errors.New("conversation: call_sid required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns[callSid]))
	copy(out, s.turns[callSid])
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// ListBetween returns turns across all calls in [from, to), oldest first.
// Reporting queries this; the hot call path never does.
func (s *MemoryStore) ListBetween(ctx context.Context, from, to time.Time) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Turn
	for _, ts := range s.turns {
		for _, t := range ts {
			if t.CreatedAt.Before(from) || !t.CreatedAt.Before(to) {
				continue
			}
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
