package devserver

import (
	"sync"

	"github.com/mycelian/mycelian-journal/internal/types"
)

// store keeps entries per user, newest first, and uploaded blobs by name.
type store struct {
	mu      sync.RWMutex
	entries map[string][]types.EntryResponse
	blobs   map[string]blob
}

type blob struct {
	contentType string
	data        []byte
}

func newStore() *store {
	return &store{
		entries: map[string][]types.EntryResponse{},
		blobs:   map[string]blob{},
	}
}

func (s *store) prepend(user string, e types.EntryResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[user] = append([]types.EntryResponse{e}, s.entries[user]...)
}

func (s *store) page(user string, limit, offset int) []types.EntryResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.entries[user]
	if offset >= len(all) {
		return []types.EntryResponse{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return append([]types.EntryResponse(nil), all[offset:end]...)
}

func (s *store) remove(user, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.entries[user]
	for i := range list {
		if list[i].ID == id {
			s.entries[user] = append(list[:i:i], list[i+1:]...)
			return true
		}
	}
	return false
}

func (s *store) putBlob(name string, b blob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[name] = b
}

func (s *store) blob(name string) (blob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[name]
	return b, ok
}
