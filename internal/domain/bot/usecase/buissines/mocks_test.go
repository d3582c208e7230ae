package buissines

import (
	"context"
	"sync"
	"time"

	"github.com/Conte777/linkbot/internal/domain/bot/entities"
)

// mockMessenger records outgoing traffic; func fields override behavior
type mockMessenger struct {
	mu        sync.Mutex
	sent      []*entities.OutgoingMessage
	deleted   []int
	forwarded []int
	nextID    int

	SendFunc       func(msg *entities.OutgoingMessage) error
	ForwardFunc    func(toChat string, fromChatID int64, messageID int) error
	MemberStatusFn func(channel string, userID int64) (string, error)
}

func (m *mockMessenger) Send(_ context.Context, msg *entities.OutgoingMessage) (int, error) {
	if m.SendFunc != nil {
		if err := m.SendFunc(msg); err != nil {
			return 0, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.sent = append(m.sent, msg)
	return m.nextID, nil
}

func (m *mockMessenger) DeleteMessage(_ context.Context, _ int64, messageID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, messageID)
	return nil
}

func (m *mockMessenger) ForwardMessage(_ context.Context, toChat string, fromChatID int64, messageID int) error {
	if m.ForwardFunc != nil {
		if err := m.ForwardFunc(toChat, fromChatID, messageID); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.forwarded = append(m.forwarded, messageID)
	return nil
}

func (m *mockMessenger) ChatMemberStatus(_ context.Context, channel string, userID int64) (string, error) {
	if m.MemberStatusFn != nil {
		return m.MemberStatusFn(channel, userID)
	}
	return "member", nil
}

func (m *mockMessenger) messages() []*entities.OutgoingMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entities.OutgoingMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

func (m *mockMessenger) texts() []string {
	var out []string
	for _, msg := range m.messages() {
		out = append(out, msg.Text)
	}
	return out
}

// mockRegistry is an in-memory deps.UserRegistry
type mockRegistry struct {
	mu    sync.Mutex
	users map[int64]*entities.User
	order []int64

	AddFunc func(user *entities.User) error
}

func newMockRegistry(ids ...int64) *mockRegistry {
	r := &mockRegistry{users: make(map[int64]*entities.User)}
	for _, id := range ids {
		r.users[id] = &entities.User{ID: id}
		r.order = append(r.order, id)
	}
	return r
}

func (r *mockRegistry) Add(_ context.Context, user *entities.User) (bool, error) {
	if r.AddFunc != nil {
		if err := r.AddFunc(user); err != nil {
			return false, err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok {
		return false, nil
	}
	r.users[user.ID] = user
	r.order = append(r.order, user.ID)
	return true, nil
}

func (r *mockRegistry) Count(_ context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

func (r *mockRegistry) All(_ context.Context) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int64, len(r.order))
	copy(out, r.order)
	return out
}

// mockResolver validates like the real client and returns a canned result
type mockResolver struct {
	mu     sync.Mutex
	calls  []string
	result *entities.ResolutionResult

	ValidateFunc func(raw string) error
}

func (r *mockResolver) Validate(raw string) error {
	if r.ValidateFunc != nil {
		return r.ValidateFunc(raw)
	}
	return nil
}

func (r *mockResolver) Resolve(_ context.Context, raw string) *entities.ResolutionResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, raw)
	return r.result
}

func (r *mockResolver) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

type scheduledDeletion struct {
	chatID    int64
	messageID int
	delay     time.Duration
}

// mockScheduler records scheduled deletions
type mockScheduler struct {
	mu        sync.Mutex
	scheduled []scheduledDeletion
}

func (s *mockScheduler) Schedule(_ context.Context, chatID int64, messageID int, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = append(s.scheduled, scheduledDeletion{chatID: chatID, messageID: messageID, delay: delay})
}

func (s *mockScheduler) all() []scheduledDeletion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]scheduledDeletion, len(s.scheduled))
	copy(out, s.scheduled)
	return out
}

// mockSink records published audit events
type mockSink struct {
	mu     sync.Mutex
	events []*entities.AuditEvent
	err    error
}

func (s *mockSink) Name() string { return "mock" }

func (s *mockSink) Publish(_ context.Context, event *entities.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return s.err
}

func (s *mockSink) published() []*entities.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entities.AuditEvent, len(s.events))
	copy(out, s.events)
	return out
}
