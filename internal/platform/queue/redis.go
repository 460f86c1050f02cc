package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"code_practice/internal/domain/model"
	"code_practice/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

func ConnectRedis(ctx context.Context) error {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := RDB.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("could not connect to redis at %s: %w", config.AppConfig.RedisAddr, err)
	}
	slog.Info("connected to redis", "addr", config.AppConfig.RedisAddr)
	return nil
}

func CloseRedis() {
	if RDB != nil {
		if err := RDB.Close(); err != nil {
			slog.Warn("closing redis", "error", err)
			return
		}
		slog.Info("redis connection closed")
	}
}

// NotificationQueue is a FIFO of pending notifications kept in a redis list:
// producers LPUSH, the worker BRPOPs.
type NotificationQueue struct {
	rdb  *redis.Client
	name string
}

func NewNotificationQueue(rdb *redis.Client, name string) *NotificationQueue {
	return &NotificationQueue{rdb: rdb, name: name}
}

func (q *NotificationQueue) Name() string { return q.name }

func (q *NotificationQueue) Enqueue(ctx context.Context, notifications ...model.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(notifications))
	for _, n := range notifications {
		b, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("NotificationQueue.Enqueue marshal: %w", err)
		}
		values = append(values, b)
	}
	if err := q.rdb.LPush(ctx, q.name, values...).Err(); err != nil {
		return fmt.Errorf("NotificationQueue.Enqueue: %w", err)
	}
	return nil
}

// Dequeue blocks up to timeout for the next notification. It returns redis.Nil
// when the timeout passes with an empty queue.
func (q *NotificationQueue) Dequeue(ctx context.Context, timeout time.Duration) (*model.Notification, error) {
	res, err := q.rdb.BRPop(ctx, timeout, q.name).Result()
	if err != nil {
		return nil, err
	}
	// res is [queueName, value]
	if len(res) < 2 || res[1] == "" {
		return nil, redis.Nil
	}
	var n model.Notification
	if err := json.Unmarshal([]byte(res[1]), &n); err != nil {
		return nil, fmt.Errorf("NotificationQueue.Dequeue unmarshal: %w", err)
	}
	return &n, nil
}
