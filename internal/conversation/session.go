package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "call_session:"

// ErrNoSession is returned when a call has no active conversation.
var ErrNoSession = errors.New("conversation: no active session")

// SessionStore maps a call identifier to its active conversation id so that
// concurrent calls do not share state. Backed by Redis when a client is
// provided, otherwise an in-process map.
type SessionStore struct {
	redis *redis.Client
	ttl   time.Duration

	mu    sync.Mutex
	local map[string]string
}

// NewSessionStore creates a session store. redisClient may be nil.
func NewSessionStore(redisClient *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &SessionStore{
		redis: redisClient,
		ttl:   ttl,
		local: make(map[string]string),
	}
}

// Bind associates a call with a conversation.
func (s *SessionStore) Bind(ctx context.Context, callID, conversationID string) error {
	if callID == "" || conversationID == "" {
		return errors.New("conversation: call id and conversation id required")
	}
	if s.redis != nil {
		if err := s.redis.Set(ctx, sessionKeyPrefix+callID, conversationID, s.ttl).Err(); err != nil {
			return fmt.Errorf("conversation: bind session: %w", err)
		}
		return nil
	}
	s.mu.Lock()
	s.local[callID] = conversationID
	s.mu.Unlock()
	return nil
}

// Lookup returns the conversation bound to a call, or ErrNoSession.
func (s *SessionStore) Lookup(ctx context.Context, callID string) (string, error) {
	if callID == "" {
		return "", ErrNoSession
	}
	if s.redis != nil {
		val, err := s.redis.Get(ctx, sessionKeyPrefix+callID).Result()
		if errors.Is(err, redis.Nil) {
			return "", ErrNoSession
		}
		if err != nil {
			return "", fmt.Errorf("conversation: lookup session: %w", err)
		}
		return val, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	conversationID, ok := s.local[callID]
	if !ok {
		return "", ErrNoSession
	}
	return conversationID, nil
}

// Release removes the binding for a call.
func (s *SessionStore) Release(ctx context.Context, callID string) error {
	if callID == "" {
		return nil
	}
	if s.redis != nil {
		if err := s.redis.Del(ctx, sessionKeyPrefix+callID).Err(); err != nil {
			return fmt.Errorf("conversation: release session: %w", err)
		}
		return nil
	}
	s.mu.Lock()
	delete(s.local, callID)
	s.mu.Unlock()
	return nil
}
