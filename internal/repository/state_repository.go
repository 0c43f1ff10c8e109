package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshrc27/socialpro/internal/models"
	"github.com/redis/go-redis/v9"
)

// StateStore holds the single-use authorization attempt for each
// (user, provider) pair. Issuing replaces any attempt still pending.
type StateStore interface {
	Issue(ctx context.Context, attempt *models.AuthorizationAttempt) error
	// Consume returns the pending attempt and removes it in the same step.
	// It returns nil, nil when nothing is pending.
	Consume(ctx context.Context, userID int64, provider models.Provider) (*models.AuthorizationAttempt, error)
	// Discard drops the pending attempt that carries state without knowing
	// its user. An attempt reissued since then is left alone.
	Discard(ctx context.Context, provider models.Provider, state string) error
}

func stateKey(userID int64, provider models.Provider) string {
	return fmt.Sprintf("oauth:attempt:%d:%s", userID, provider)
}

// stateOwnerKey maps a state value back to the user it was issued for.
func stateOwnerKey(provider models.Provider, state string) string {
	return fmt.Sprintf("oauth:state:%s:%s", provider, state)
}

type redisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStateStore(client *redis.Client, ttl time.Duration) StateStore {
	return &redisStateStore{client: client, ttl: ttl}
}

func (s *redisStateStore) Issue(ctx context.Context, attempt *models.AuthorizationAttempt) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, stateKey(attempt.UserID, attempt.Provider), data, s.ttl)
		pipe.Set(ctx, stateOwnerKey(attempt.Provider, attempt.State), attempt.UserID, s.ttl)
		return nil
	})
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("failed to store authorization attempt: %w", err)
	}
	return nil
}

func (s *redisStateStore) Consume(ctx context.Context, userID int64, provider models.Provider) (*models.AuthorizationAttempt, error) {
	data, err := s.client.GetDel(ctx, stateKey(userID, provider)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to read authorization attempt: %w", err)
	}

	var attempt models.AuthorizationAttempt
	if err := json.Unmarshal(data, &attempt); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	if err := s.client.Del(ctx, stateOwnerKey(provider, attempt.State)).Err(); err != nil {
		slog.Info(err.Error())
	}
	return &attempt, nil
}

func (s *redisStateStore) Discard(ctx context.Context, provider models.Provider, state string) error {
	if state == "" {
		return nil
	}

	userID, err := s.client.GetDel(ctx, stateOwnerKey(provider, state)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		slog.Info(err.Error())
		return fmt.Errorf("failed to read authorization state owner: %w", err)
	}

	key := stateKey(userID, provider)
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		slog.Info(err.Error())
		return fmt.Errorf("failed to read authorization attempt: %w", err)
	}

	var attempt models.AuthorizationAttempt
	if err := json.Unmarshal(data, &attempt); err != nil {
		slog.Info(err.Error())
		return err
	}
	if attempt.State != state {
		return nil
	}
	return s.client.Del(ctx, key).Err()
}

type memoryStateStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	attempts map[string]*models.AuthorizationAttempt
	now      func() time.Time
}

// NewMemoryStateStore keeps attempts in process memory. It serves single
// instance deployments and tests.
func NewMemoryStateStore(ttl time.Duration) StateStore {
	return &memoryStateStore{
		ttl:      ttl,
		attempts: make(map[string]*models.AuthorizationAttempt),
		now:      time.Now,
	}
}

func (s *memoryStateStore) Issue(ctx context.Context, attempt *models.AuthorizationAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *attempt
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	s.attempts[stateKey(attempt.UserID, attempt.Provider)] = &cp
	return nil
}

func (s *memoryStateStore) Consume(ctx context.Context, userID int64, provider models.Provider) (*models.AuthorizationAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := stateKey(userID, provider)
	attempt, ok := s.attempts[key]
	if !ok {
		return nil, nil
	}
	delete(s.attempts, key)

	if s.ttl > 0 && s.now().Sub(attempt.CreatedAt) > s.ttl {
		return nil, nil
	}
	return attempt, nil
}

func (s *memoryStateStore) Discard(ctx context.Context, provider models.Provider, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, attempt := range s.attempts {
		if attempt.Provider == provider && attempt.State == state {
			delete(s.attempts, key)
		}
	}
	return nil
}
