package wizard

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Draft is the saved state of a form in progress. There is one draft per
// owner and form key; saving overwrites it.
type Draft struct {
	OwnerID     string          `json:"owner_id"`
	FormKey     string          `json:"form_key"`
	CurrentStep int             `json:"current_step"`
	Data        json.RawMessage `json:"data"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type DraftStore interface {
	Save(ctx context.Context, draft Draft) error
	Load(ctx context.Context, ownerID, formKey string) (Draft, error)
	Clear(ctx context.Context, ownerID, formKey string) error
}

// MemoryStore keeps drafts in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	drafts map[string]Draft
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string]Draft)}
}

func memoryKey(ownerID, formKey string) string {
	return ownerID + "|" + formKey
}

func (s *MemoryStore) Save(ctx context.Context, draft Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if draft.UpdatedAt.IsZero() {
		draft.UpdatedAt = time.Now()
	}
	s.drafts[memoryKey(draft.OwnerID, draft.FormKey)] = draft
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, ownerID, formKey string) (Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[memoryKey(ownerID, formKey)]
	if !ok {
		return Draft{}, ErrDraftNotFound
	}
	return d, nil
}

func (s *MemoryStore) Clear(ctx context.Context, ownerID, formKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, memoryKey(ownerID, formKey))
	return nil
}
