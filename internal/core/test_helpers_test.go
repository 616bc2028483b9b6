package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/relaychat-server/internal/store"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// memStorage is an in-memory Storage with injectable failures.
type memStorage struct {
	mu        sync.Mutex
	users     map[string]*store.User
	messages  []*store.Message
	findErr   error
	createErr error
	// onFind runs before every user lookup.
	onFind func(key string)
}

func newMemStorage(users ...*store.User) *memStorage {
	s := &memStorage{users: make(map[string]*store.User)}
	for _, u := range users {
		s.users[u.UniqueKey] = u
	}
	return s
}

func (s *memStorage) FindUserByKey(_ context.Context, key string) (*store.User, error) {
	if s.onFind != nil {
		s.onFind(key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	u, ok := s.users[key]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", key, store.ErrNotFound)
	}
	return u, nil
}

func (s *memStorage) CreateMessage(_ context.Context, msg *store.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.messages = append(s.messages, msg)
	return nil
}

func (s *memStorage) ListMessages(_ context.Context, chatID string, limit int) ([]*store.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*store.Message
	for _, m := range s.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (s *memStorage) saved() []*store.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*store.Message(nil), s.messages...)
}

// recordingSink counts delivery attempts and optionally fails them.
type recordingSink struct {
	mu       sync.Mutex
	attempts int
	events   []*Event
	err      error
}

func (s *recordingSink) Deliver(_ context.Context, ev *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts++
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts
}

func (s *recordingSink) received() []*Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Event(nil), s.events...)
}

func testUser(id, name string) *store.User {
	return &store.User{ID: id, UniqueKey: id, Name: name}
}
