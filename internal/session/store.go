package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2021147588/boheommian-rhapsody/internal/types"
)

// Snapshot is the current result together with when it was loaded.
type Snapshot struct {
	RunID    string
	LoadedAt time.Time
	Result   types.SimulationResult
}

// Store holds at most one simulation result. Set replaces it wholesale;
// the last Set wins regardless of when its run was submitted.
type Store struct {
	mu      sync.RWMutex
	current *Snapshot
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{now: time.Now}
}

// Set replaces the current result and returns the run id assigned to it.
func (s *Store) Set(result types.SimulationResult) string {
	snap := &Snapshot{RunID: uuid.NewString(), LoadedAt: s.now(), Result: result}
	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()
	return snap.RunID
}

// Get returns the current result, or ok=false when nothing has been loaded.
func (s *Store) Get() (types.SimulationResult, bool) {
	snap, ok := s.Snapshot()
	if !ok {
		return types.SimulationResult{}, false
	}
	return snap.Result, true
}

func (s *Store) Snapshot() (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Snapshot{}, false
	}
	return *s.current, true
}

// Conversation returns the conversation at index i of the current result.
func (s *Store) Conversation(i int) (types.ConversationRecord, bool) {
	res, ok := s.Get()
	if !ok || i < 0 || i >= len(res.Conversations) {
		return types.ConversationRecord{}, false
	}
	return res.Conversations[i], true
}
