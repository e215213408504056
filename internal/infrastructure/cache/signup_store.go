// Package cache provides Redis-backed stores.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"stockcontrol/internal/core/apperror"
	"stockcontrol/internal/domain/user"
)

var _ user.SignupStore = (*SignupStore)(nil)

const signupKeyPrefix = "signup:"

// SignupStore keeps pending registrations in Redis with a TTL, so the
// verification flow survives process restarts and works across
// instances.
type SignupStore struct {
	client *redis.Client
}

// NewSignupStore creates a signup store.
func NewSignupStore(client *redis.Client) *SignupStore {
	return &SignupStore{client: client}
}

// Put stores a pending registration under token for ttl.
func (s *SignupStore) Put(ctx context.Context, token string, pending *user.PendingRegistration, ttl time.Duration) error {
	payload, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("marshal pending registration: %w", err)
	}
	if err := s.client.Set(ctx, signupKeyPrefix+token, payload, ttl).Err(); err != nil {
		return fmt.Errorf("store pending registration: %w", err)
	}
	return nil
}

// Get returns the pending registration for token. Returns NotFound when
// the token is unknown or expired.
func (s *SignupStore) Get(ctx context.Context, token string) (*user.PendingRegistration, error) {
	payload, err := s.client.Get(ctx, signupKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.NewNotFound("registration", token)
	}
	if err != nil {
		return nil, fmt.Errorf("load pending registration: %w", err)
	}

	var pending user.PendingRegistration
	if err := json.Unmarshal(payload, &pending); err != nil {
		return nil, fmt.Errorf("unmarshal pending registration: %w", err)
	}
	return &pending, nil
}

// Delete removes the pending registration for token.
func (s *SignupStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, signupKeyPrefix+token).Err(); err != nil {
		return fmt.Errorf("delete pending registration: %w", err)
	}
	return nil
}
