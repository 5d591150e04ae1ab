package dialogue

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

// ErrSessionBusy is returned when another message for the same session
// holds the lock past the acquire deadline.
var ErrSessionBusy = errors.New("session is processing another message")

// SelectedTest is the first piece of booking state a session collects.
type SelectedTest struct {
	TestID   int64  `json:"test_id"`
	TestName string `json:"test_name"`
}

// Details is the second piece: who the booking is for, and the lab
// resolved for the selected test when the details arrived.
type Details struct {
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Phone   string     `json:"phone,omitempty"`
	When    *time.Time `json:"when,omitempty"`
	LabID   int64      `json:"lab_id"`
	LabName string     `json:"lab_name"`
}

// SessionStore persists per-session booking state with TTLs. Get
// methods return (nil, nil) when the key is absent or expired.
type SessionStore interface {
	GetSelectedTest(ctx context.Context, sessionID string) (*SelectedTest, error)
	SetSelectedTest(ctx context.Context, sessionID string, sel SelectedTest) error
	GetDetails(ctx context.Context, sessionID string) (*Details, error)
	SetDetails(ctx context.Context, sessionID string, d Details) error

	// Clear drops all booking state for the session.
	Clear(ctx context.Context, sessionID string) error

	// Lock serializes turns for one session. The returned release func
	// must be called when the turn is done.
	Lock(ctx context.Context, sessionID string) (release func(), err error)
}

// RedisSessionStore keeps session state in redis.
type RedisSessionStore struct {
	redis           *redis.Client
	tracer          trace.Tracer
	selectedTestTTL time.Duration
	detailsTTL      time.Duration
	lockTTL         time.Duration
}

// RedisSessionStoreConfig carries the TTLs for session keys.
type RedisSessionStoreConfig struct {
	SelectedTestTTL time.Duration
	DetailsTTL      time.Duration
	LockTTL         time.Duration
}

// NewRedisSessionStore creates a redis-backed session store.
func NewRedisSessionStore(client *redis.Client, cfg RedisSessionStoreConfig, tracer trace.Tracer) *RedisSessionStore {
	if client == nil {
		panic("dialogue: redis client cannot be nil")
	}
	if tracer == nil {
		tracer = otel.Tracer("labease.internal.dialogue.sessions")
	}
	if cfg.SelectedTestTTL <= 0 {
		cfg.SelectedTestTTL = 15 * time.Minute
	}
	if cfg.DetailsTTL <= 0 {
		cfg.DetailsTTL = 30 * time.Minute
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Second
	}
	return &RedisSessionStore{
		redis:           client,
		tracer:          tracer,
		selectedTestTTL: cfg.SelectedTestTTL,
		detailsTTL:      cfg.DetailsTTL,
		lockTTL:         cfg.LockTTL,
	}
}

// GetSelectedTest loads the session's chosen test, if any.
func (s *RedisSessionStore) GetSelectedTest(ctx context.Context, sessionID string) (*SelectedTest, error) {
	ctx, span := s.tracer.Start(ctx, "dialogue.get_selected_test")
	defer span.End()

	var sel SelectedTest
	ok, err := s.get(ctx, selectedTestKey(sessionID), &sel)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &sel, nil
}

// SetSelectedTest stores the chosen test with its TTL.
func (s *RedisSessionStore) SetSelectedTest(ctx context.Context, sessionID string, sel SelectedTest) error {
	ctx, span := s.tracer.Start(ctx, "dialogue.set_selected_test")
	defer span.End()

	if err := s.set(ctx, selectedTestKey(sessionID), sel, s.selectedTestTTL); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// GetDetails loads the session's contact details, if any.
func (s *RedisSessionStore) GetDetails(ctx context.Context, sessionID string) (*Details, error) {
	ctx, span := s.tracer.Start(ctx, "dialogue.get_details")
	defer span.End()

	var d Details
	ok, err := s.get(ctx, detailsKey(sessionID), &d)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &d, nil
}

// SetDetails stores contact details with their TTL.
func (s *RedisSessionStore) SetDetails(ctx context.Context, sessionID string, d Details) error {
	ctx, span := s.tracer.Start(ctx, "dialogue.set_details")
	defer span.End()

	if err := s.set(ctx, detailsKey(sessionID), d, s.detailsTTL); err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// Clear drops all booking state for the session.
func (s *RedisSessionStore) Clear(ctx context.Context, sessionID string) error {
	ctx, span := s.tracer.Start(ctx, "dialogue.clear_session")
	defer span.End()

	if err := s.redis.Del(ctx, selectedTestKey(sessionID), detailsKey(sessionID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("dialogue: clear session: %w", err)
	}
	return nil
}

// lockAcquireTimeout bounds how long a turn waits for the session lock.
const lockAcquireTimeout = 2 * time.Second

// Lock takes a SETNX lease on the session so concurrent messages are
// serialized. The second writer blocks briefly, then re-reads state
// once it acquires; past the deadline it gets ErrSessionBusy.
func (s *RedisSessionStore) Lock(ctx context.Context, sessionID string) (func(), error) {
	ctx, span := s.tracer.Start(ctx, "dialogue.lock_session")
	defer span.End()

	key := lockKey(sessionID)
	token := uuid.NewString()
	deadline := time.Now().Add(lockAcquireTimeout)

	for {
		ok, err := s.redis.SetNX(ctx, key, token, s.lockTTL).Result()
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("dialogue: acquire session lock: %w", err)
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrSessionBusy
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}

	release := func() {
		// Only release our own lease; an expired lease may have been
		// re-acquired by another turn.
		current, err := s.redis.Get(context.Background(), key).Result()
		if err == nil && current == token {
			s.redis.Del(context.Background(), key)
		}
	}
	return release, nil
}

func (s *RedisSessionStore) get(ctx context.Context, key string, v any) (bool, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("dialogue: load %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("dialogue: decode %s: %w", key, err)
	}
	return true, nil
}

func (s *RedisSessionStore) set(ctx context.Context, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("dialogue: encode %s: %w", key, err)
	}
	if err := s.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("dialogue: persist %s: %w", key, err)
	}
	return nil
}

func selectedTestKey(sessionID string) string {
	return fmt.Sprintf("selected_test:%s", sessionID)
}

func detailsKey(sessionID string) string {
	return fmt.Sprintf("details:%s", sessionID)
}

func lockKey(sessionID string) string {
	return fmt.Sprintf("session_lock:%s", sessionID)
}
