package infrastructure

import (
	"sync"
	"time"

	"farmlink/internal/entities"
)

// MaxSessionHistory bounds how many messages a chat keeps
const MaxSessionHistory = 50

// ChatSession is the conversation held for one chat on a channel
type ChatSession struct {
	ChatID       string
	IsProcessing bool
	LastActive   time.Time
	history      []entities.ChatMessage
	mu           sync.Mutex
}

// TryStart claims the session for one in-flight request.
// Returns false when a request for this chat is already running.
func (s *ChatSession) TryStart() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.IsProcessing {
		return false
	}
	s.IsProcessing = true
	s.LastActive = time.Now()
	return true
}

// Finish releases the in-flight claim
func (s *ChatSession) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.IsProcessing = false
}

// Append records messages, dropping the oldest past MaxSessionHistory
func (s *ChatSession) Append(msgs ...entities.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, msgs...)
	if over := len(s.history) - MaxSessionHistory; over > 0 {
		s.history = append([]entities.ChatMessage(nil), s.history[over:]...)
	}
	s.LastActive = time.Now()
}

// History returns a copy of the kept messages, oldest first
func (s *ChatSession) History() []entities.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entities.ChatMessage(nil), s.history...)
}

// LastProducts returns the products attached to the latest bot reply
func (s *ChatSession) LastProducts() []entities.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].IsBot && len(s.history[i].Products) > 0 {
			return s.history[i].Products
		}
	}
	return nil
}

// SessionManager manages chat sessions for a channel
type SessionManager struct {
	sessions map[string]*ChatSession
	mu       sync.RWMutex
}

func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*ChatSession),
	}
}

// GetOrCreateSession returns or creates the session of chatID
func (sm *SessionManager) GetOrCreateSession(chatID string) *ChatSession {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, exists := sm.sessions[chatID]
	if !exists {
		session = &ChatSession{ChatID: chatID}
		sm.sessions[chatID] = session
	}
	return session
}

// Count returns the number of known chats
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}
