package service

import (
	"sync"
	"time"

	"github.com/akovardin/securepass/internal/common"
)

// session holds the derived key for one authenticated owner. Keys live
// only in this in-memory table; the signed session token a front end
// holds carries no key material.
type session struct {
	owner     string
	key       []byte
	expiresAt time.Time
}

type sessionTable struct {
	mu       sync.Mutex
	sessions map[string]*session // keyed by token id (jti)
}

func newSessionTable() *sessionTable {
	return &sessionTable{sessions: make(map[string]*session)}
}

func (t *sessionTable) put(tokenID, owner string, key []byte, validity time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	k := make([]byte, len(key))
	copy(k, key)
	t.sessions[tokenID] = &session{
		owner:     owner,
		key:       k,
		expiresAt: time.Now().Add(validity),
	}
}

// get hands out a private copy of the key: drop and expiry wipe only the
// table's slice, never one an in-flight request is still encrypting with.
func (t *sessionTable) get(tokenID string) (*session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[tokenID]
	if !ok {
		return nil, common.ErrInvalidToken
	}
	if time.Now().After(s.expiresAt) {
		delete(t.sessions, tokenID)
		common.WipeByteArray(s.key)
		return nil, common.ErrInvalidToken
	}

	key := make([]byte, len(s.key))
	copy(key, s.key)
	return &session{owner: s.owner, key: key, expiresAt: s.expiresAt}, nil
}

func (t *sessionTable) drop(tokenID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if s, ok := t.sessions[tokenID]; ok {
		common.WipeByteArray(s.key)
		delete(t.sessions, tokenID)
	}
}
