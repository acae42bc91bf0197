package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/samuelvinay91/contract-lifecycle-crew/internal/contract"
)

// RedisStore implements Store on Redis. Session documents live as JSON
// values with a TTL; an index list preserves insertion order. Update
// serializes through per-ID in-process locks, so the store assumes a
// single writer process.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRedisStore creates a Redis-backed session store from a URL.
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, ttl), nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "contract:",
		ttl:    ttl,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) indexKey() string {
	return s.prefix + "index"
}

func (s *RedisStore) Create(ctx context.Context, contractText string) (*contract.Session, error) {
	now := time.Now().UTC()
	sess := &contract.Session{
		ID:           uuid.NewString(),
		ContractText: contractText,
		Stage:        contract.StageIntake,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.client.RPush(ctx, s.indexKey(), sess.ID).Err(); err != nil {
		return nil, fmt.Errorf("index session: %w", err)
	}
	return sess, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*contract.Session, error) {
	return s.load(ctx, id)
}

func (s *RedisStore) List(ctx context.Context) ([]*contract.Session, error) {
	ids, err := s.client.LRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	sessions := make([]*contract.Session, 0, len(ids))
	for _, id := range ids {
		sess, err := s.load(ctx, id)
		if err == ErrNotFound {
			// Session expired out from under the index.
			continue
		}
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, nil
}

func (s *RedisStore) Update(ctx context.Context, id string, fn func(*contract.Session) error) (*contract.Session, error) {
	lock := s.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = time.Now().UTC()
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if err := s.client.LRem(ctx, s.indexKey(), 0, id).Err(); err != nil {
		return fmt.Errorf("deindex session: %w", err)
	}
	s.mu.Lock()
	delete(s.locks, id)
	s.mu.Unlock()
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) save(ctx context.Context, sess *contract.Session) error {
	jsonData, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sess.ID), jsonData, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, id string) (*contract.Session, error) {
	jsonData, err := s.client.Get(ctx, s.key(id)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess contract.Session
	if err := json.Unmarshal([]byte(jsonData), &sess); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) lockFor(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}
