// internal/chat/chattest/messenger.go
//
// Package chattest provides an in-memory Messenger for tests.
package chattest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/parlorbot/parlor/internal/chat"
)

// Messenger records every send/edit/delete and lets tests inject replies
// for pending AwaitReply waits.
type Messenger struct {
	mu      sync.Mutex
	nextID  int
	sends   []Sent
	edits   map[string]string // messageID -> latest content
	deleted map[string]bool
	waiters []*waiter
}

// Sent is one message passed to Send, in order.
type Sent struct {
	Ref     chat.MessageRef
	Content string
}

type waiter struct {
	channelID string
	match     chat.MatchFunc
	reply     chan chat.IncomingMessage
}

func New() *Messenger {
	return &Messenger{
		edits:   make(map[string]string),
		deleted: make(map[string]bool),
	}
}

func (m *Messenger) Send(_ context.Context, channelID, content string) (chat.MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	ref := chat.MessageRef{ChannelID: channelID, MessageID: fmt.Sprintf("msg-%d", m.nextID)}
	m.sends = append(m.sends, Sent{Ref: ref, Content: content})
	m.edits[ref.MessageID] = content
	return ref, nil
}

func (m *Messenger) Edit(_ context.Context, ref chat.MessageRef, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edits[ref.MessageID] = content
	return nil
}

func (m *Messenger) Delete(_ context.Context, ref chat.MessageRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted[ref.MessageID] = true
	return nil
}

func (m *Messenger) AwaitReply(ctx context.Context, channelID string, match chat.MatchFunc, timeout time.Duration) (chat.IncomingMessage, error) {
	w := &waiter{channelID: channelID, match: match, reply: make(chan chat.IncomingMessage, 1)}
	m.mu.Lock()
	m.waiters = append(m.waiters, w)
	m.mu.Unlock()
	defer m.dropWaiter(w)

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case msg := <-w.reply:
		return msg, nil
	case <-timer.C:
		return chat.IncomingMessage{}, chat.ErrAwaitTimeout
	case <-ctx.Done():
		return chat.IncomingMessage{}, ctx.Err()
	}
}

// Deliver feeds an incoming message to the first matching waiter. Returns
// true if a waiter consumed it.
func (m *Messenger) Deliver(msg chat.IncomingMessage) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, w := range m.waiters {
		if w.channelID != msg.ChannelID || !w.match(msg) {
			continue
		}
		w.reply <- msg
		m.waiters = append(m.waiters[:i], m.waiters[i+1:]...)
		return true
	}
	return false
}

// WaiterCount reports how many AwaitReply calls are currently parked.
func (m *Messenger) WaiterCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waiters)
}

// Sends returns a copy of all sent messages, in order.
func (m *Messenger) Sends() []Sent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Sent, len(m.sends))
	copy(out, m.sends)
	return out
}

// LastSend returns the most recent send, or false if nothing was sent.
func (m *Messenger) LastSend() (Sent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sends) == 0 {
		return Sent{}, false
	}
	return m.sends[len(m.sends)-1], true
}

// Content returns the latest content of a message, following edits.
func (m *Messenger) Content(ref chat.MessageRef) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.edits[ref.MessageID]
}

// Deleted reports whether the message was deleted.
func (m *Messenger) Deleted(ref chat.MessageRef) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleted[ref.MessageID]
}

func (m *Messenger) dropWaiter(w *waiter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cur := range m.waiters {
		if cur == w {
			m.waiters = append(m.waiters[:i], m.waiters[i+1:]...)
			return
		}
	}
}
