// Copyright (c) 2026 Comicbox. All rights reserved.
// Author: huy.ndq.dev@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/huyndq/comicbox/internal/platform/apperr"
	"github.com/huyndq/comicbox/internal/platform/constants"
)

// # Session Repository

// RedisSessionRepository implements SessionRepository using Redis.
//
// Sessions are keyed by the hash of their refresh token and expire naturally
// through the Redis TTL, so no background reaper is needed. A secondary
// per-user set tracks active hashes to support bulk revocation.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewSessionRepository creates a new Redis-backed SessionRepository.
func NewSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

// sessionKey builds the primary key for a session record.
func sessionKey(tokenHash string) string {
	return constants.RedisPrefixSession + tokenHash
}

// userSessionsKey builds the per-user index key for bulk revocation.
func userSessionsKey(userID string) string {
	return fmt.Sprintf("%suser:%s", constants.RedisPrefixSession, userID)
}

/*
Create persists a new tracking session for an authenticated login.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Serialization or storage failures
*/
func (repository *RedisSessionRepository) Create(context context.Context, session *Session) error {

	// Serialize the full session record
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis_session_marshal_failed: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("redis_session_create_failed: session already expired")
	}

	// Store the session with TTL
	if err := repository.client.Set(context, sessionKey(session.TokenHash), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}

	// Track the hash in the per-user index for RevokeAll
	indexKey := userSessionsKey(session.UserID)
	if err := repository.client.SAdd(context, indexKey, session.TokenHash).Err(); err != nil {
		return fmt.Errorf("redis_session_index_failed: %w", err)
	}
	_ = repository.client.Expire(context, indexKey, RefreshTokenTTL).Err()

	return nil
}

/*
FindByTokenHash returns the active session matching the given token hash.

Description: Returns apperr.NotFound if the session is absent or expired.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - *Session: Hydrated entity
  - error: apperr.NotFound or connectivity errors
*/
func (repository *RedisSessionRepository) FindByTokenHash(context context.Context, tokenHash string) (*Session, error) {

	// Get the session from Redis
	payload, err := repository.client.Get(context, sessionKey(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Session is invalid or expired")
		}
		return nil, fmt.Errorf("redis_session_get_failed: %w", err)
	}

	session := &Session{}
	if err := json.Unmarshal(payload, session); err != nil {
		return nil, fmt.Errorf("redis_session_unmarshal_failed: %w", err)
	}

	return session, nil
}

/*
Revoke removes the session with the given token hash.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - error: Deletion failures
*/
func (repository *RedisSessionRepository) Revoke(context context.Context, tokenHash string) error {

	// Look up the session first so the per-user index can be pruned as well
	session, err := repository.FindByTokenHash(context, tokenHash)
	if err == nil {
		_ = repository.client.SRem(context, userSessionsKey(session.UserID), tokenHash).Err()
	}

	if err := repository.client.Del(context, sessionKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("redis_session_revoke_failed: %w", err)
	}

	return nil
}

/*
RevokeAll removes every active session belonging to the userID.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - error: Deletion failures
*/
func (repository *RedisSessionRepository) RevokeAll(context context.Context, userID string) error {
	indexKey := userSessionsKey(userID)

	// Enumerate the tracked session hashes
	hashes, err := repository.client.SMembers(context, indexKey).Result()
	if err != nil {
		return fmt.Errorf("redis_session_revoke_all_list_failed: %w", err)
	}

	// Delete each session record
	for _, hash := range hashes {
		if err := repository.client.Del(context, sessionKey(hash)).Err(); err != nil {
			return fmt.Errorf("redis_session_revoke_all_del_failed: %w", err)
		}
	}

	// Drop the index itself
	if err := repository.client.Del(context, indexKey).Err(); err != nil {
		return fmt.Errorf("redis_session_revoke_all_index_failed: %w", err)
	}

	return nil
}
