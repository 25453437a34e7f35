// Package kvstore implements KVStore (SPEC_FULL.md §1): a thin
// redis/go-redis/v9 wrapper the login stub handler uses to record
// account/session state. Persistence semantics of game state stay a
// non-goal (spec.md Non-goals); this is only the wiring point such a
// handler would use.
package kvstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is a minimal key/value facade over Redis.
type Store struct {
	rdb *redis.Client
}

func New(addr string, db int) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{Addr: addr, DB: db})}
}

func (s *Store) Close() error { return s.rdb.Close() }

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// SetSession records account -> sessionToken with the given TTL, used by
// the login stub handler after a successful LoginReq (§6.3 LoginRsp).
func (s *Store) SetSession(ctx context.Context, account, sessionToken string, ttl time.Duration) error {
	return s.rdb.Set(ctx, sessionKey(account), sessionToken, ttl).Err()
}

// GetSession looks up the session token previously recorded by SetSession.
// Returns redis.Nil if absent.
func (s *Store) GetSession(ctx context.Context, account string) (string, error) {
	return s.rdb.Get(ctx, sessionKey(account)).Result()
}

func (s *Store) DeleteSession(ctx context.Context, account string) error {
	return s.rdb.Del(ctx, sessionKey(account)).Err()
}

func sessionKey(account string) string { return "citadel:session:" + account }
