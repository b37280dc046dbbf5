package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const queueKey = "dispatch:outbox"

// RedisQueue is a FIFO of intents kept in a Redis list.
type RedisQueue struct {
	redisClient *redis.Client
	key         string
}

// NewRedisQueue создает новый RedisQueue
func NewRedisQueue(client *redis.Client) *RedisQueue {
	return &RedisQueue{
		redisClient: client,
		key:         queueKey,
	}
}

// Enqueue добавляет задачу в левую часть списка (очереди)
func (q *RedisQueue) Enqueue(ctx context.Context, intent Intent) error {
	payload, err := json.Marshal(intent)
	if err != nil {
		return fmt.Errorf("failed to marshal outbox intent: %w", err)
	}

	if err := q.redisClient.LPush(ctx, q.key, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue outbox intent: %w", err)
	}
	return nil
}

// Pop blocks up to timeout for the oldest intent. It returns nil, nil when the
// queue stayed empty.
func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) (*Intent, error) {
	result, err := q.redisClient.BRPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop outbox intent: %w", err)
	}

	// result[0] - ключ, result[1] - значение
	var intent Intent
	if err := json.Unmarshal([]byte(result[1]), &intent); err != nil {
		return nil, fmt.Errorf("failed to unmarshal outbox intent: %w", err)
	}
	return &intent, nil
}
