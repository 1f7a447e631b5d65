// Package history persists per-session chat transcripts in Redis. The
// dialogue core is stateless; this store is the caller-side memory that lets
// the chat surfaces replay prior turns.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const (
	transcriptKeyPrefix = "chat_transcript:"
	transcriptTTL       = 24 * time.Hour
)

// Message is one transcript entry.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Text      string    `json:"text"`
	Intent    string    `json:"intent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Store is a Redis-backed transcript store with a bounded window per session.
// A nil *Store is a no-op so transcript capture stays optional.
type Store struct {
	redis       *redis.Client
	tracer      trace.Tracer
	maxMessages int64
}

// NewStore creates a transcript store. Returns nil when no Redis client is
// configured.
func NewStore(redisClient *redis.Client) *Store {
	if redisClient == nil {
		return nil
	}
	return &Store{
		redis:       redisClient,
		tracer:      otel.Tracer("bookwise.internal.history"),
		maxMessages: 200,
	}
}

// Append stores one message at the end of the session transcript, refreshing
// the TTL and trimming to the retention window.
func (s *Store) Append(ctx context.Context, sessionID string, msg Message) error {
	if s == nil || s.redis == nil {
		return nil
	}
	if sessionID == "" {
		return errors.New("history: sessionID required")
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("history: marshal message: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "history.append")
	defer span.End()

	key := transcriptKey(sessionID)
	pipe := s.redis.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, transcriptTTL)
	if s.maxMessages > 0 {
		pipe.LTrim(ctx, key, -s.maxMessages, -1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("history: append message: %w", err)
	}
	return nil
}

// List returns up to limit most recent messages, oldest first. limit <= 0
// returns the whole retained transcript.
func (s *Store) List(ctx context.Context, sessionID string, limit int64) ([]Message, error) {
	if s == nil || s.redis == nil {
		return nil, nil
	}
	if sessionID == "" {
		return nil, errors.New("history: sessionID required")
	}

	ctx, span := s.tracer.Start(ctx, "history.list")
	defer span.End()

	start := int64(0)
	if limit > 0 {
		start = -limit
	}
	raw, err := s.redis.LRange(ctx, transcriptKey(sessionID), start, -1).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("history: list messages: %w", err)
	}

	msgs := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			span.RecordError(err)
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

func transcriptKey(sessionID string) string {
	return transcriptKeyPrefix + sessionID
}
