package sessions

import (
	"context"
	"sync"
	"time"
)

// sweepInterval bounds how often writes scan for expired entries.
const sweepInterval = time.Minute

type entry struct {
	value   string
	expires time.Time
}

// MemoryStore is a process-local Store used when Redis is not configured.
// State is lost on restart and is not shared between replicas.
type MemoryStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	nonces  map[string]entry
	now     func() time.Time

	nextSweep time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		revoked: make(map[string]time.Time),
		nonces:  make(map[string]entry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = s.now().Add(ttl)
	s.sweepLocked()
	return nil
}

func (s *MemoryStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.revoked[tokenID]
	if !ok {
		return false, nil
	}
	if !s.now().Before(exp) {
		delete(s.revoked, tokenID)
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) PutNonce(_ context.Context, nonce, address string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonces[nonce] = entry{value: address, expires: s.now().Add(ttl)}
	s.sweepLocked()
	return nil
}

func (s *MemoryStore) ConsumeNonce(_ context.Context, nonce string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.nonces[nonce]
	delete(s.nonces, nonce)
	if !ok || !s.now().Before(e.expires) {
		return "", ErrNonceNotFound
	}
	return e.value, nil
}

// sweepLocked drops expired entries at most once per sweepInterval. Caller
// holds s.mu.
func (s *MemoryStore) sweepLocked() {
	now := s.now()
	if now.Before(s.nextSweep) {
		return
	}
	s.nextSweep = now.Add(sweepInterval)
	for k, exp := range s.revoked {
		if !now.Before(exp) {
			delete(s.revoked, k)
		}
	}
	for k, e := range s.nonces {
		if !now.Before(e.expires) {
			delete(s.nonces, k)
		}
	}
}

var _ Store = (*MemoryStore)(nil)
