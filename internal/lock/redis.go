package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix  = "padel:lock:"
	redisRetryDelay = 25 * time.Millisecond
)

// releaseScript deletes the key only if it still holds our token, so a lock
// that expired and was taken by someone else is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript pushes the expiry out only while the key still holds our token.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLocker is a Locker shared by every server instance pointing at the same
// Redis. Keys expire after ttl so a crashed holder cannot block a slot forever;
// a live holder renews them every ttl/3 until it unlocks.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Locker = (*RedisLocker)(nil)

func NewRedis(client *redis.Client, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &RedisLocker{client: client, ttl: ttl}
}

// ConnectRedis parses a redis:// URL and checks the connection.
func ConnectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (l *RedisLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	h := &redisHold{
		locker: l,
		token:  uuid.New().String(),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go h.keepAlive()

	for _, key := range dedupeSorted(keys) {
		redisKey := redisKeyPrefix + key
		for {
			ok, err := l.client.SetNX(ctx, redisKey, h.token, l.ttl).Result()
			if err != nil {
				h.release()
				return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
			}
			if ok {
				h.add(redisKey)
				break
			}
			select {
			case <-ctx.Done():
				h.release()
				return nil, ctx.Err()
			case <-time.After(redisRetryDelay):
			}
		}
	}
	return h.release, nil
}

// redisHold is one Lock call's set of keys, all sharing a token.
type redisHold struct {
	locker *RedisLocker
	token  string

	mu   sync.Mutex
	keys []string

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func (h *redisHold) add(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keys = append(h.keys, key)
}

func (h *redisHold) held() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.keys...)
}

func (h *redisHold) keepAlive() {
	defer close(h.done)
	interval := h.locker.ttl / 3
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			for _, key := range h.held() {
				err := extendScript.Run(ctx, h.locker.client, []string{key}, h.token, h.locker.ttl.Milliseconds()).Err()
				if err != nil {
					log.Warn("Failed to extend redis lock", "key", key, "error", err)
				}
			}
			cancel()
		}
	}
}

// release stops renewal and deletes the keys. Calling it again is a no-op.
func (h *redisHold) release() {
	h.once.Do(func() {
		close(h.stop)
		<-h.done

		// Release even when the caller's ctx is already cancelled.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		keys := h.held()
		for i := len(keys) - 1; i >= 0; i-- {
			if err := releaseScript.Run(ctx, h.locker.client, []string{keys[i]}, h.token).Err(); err != nil {
				log.Error("Failed to release redis lock", "key", keys[i], "error", err)
			}
		}
	})
}
