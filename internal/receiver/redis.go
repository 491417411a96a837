package receiver

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"
)

const (
	channelsKey   = "medihelp:notification:channels"
	trayKeyPrefix = "medihelp:notifications:"
)

// RedisStore keeps channels and trays in Redis hashes so that any instance
// can open a notification posted by another.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func trayKey(userID string) string { return trayKeyPrefix + userID }

func (s *RedisStore) Ensure(ctx context.Context, ch NotificationChannel) (bool, error) {
	raw, err := json.Marshal(ch)
	if err != nil {
		return false, fmt.Errorf("failed to marshal channel: %w", err)
	}
	created, err := s.client.HSetNX(ctx, channelsKey, ch.ID, raw).Result()
	if err != nil {
		return false, fmt.Errorf("failed to register channel %s: %w", ch.ID, err)
	}
	return created, nil
}

func (s *RedisStore) Channels(ctx context.Context) ([]NotificationChannel, error) {
	values, err := s.client.HVals(ctx, channelsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}

	out := make([]NotificationChannel, 0, len(values))
	for _, v := range values {
		var ch NotificationChannel
		if err := json.Unmarshal([]byte(v), &ch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal channel: %w", err)
		}
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *RedisStore) Post(ctx context.Context, userID string, n Notification) error {
	raw, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := s.client.HSet(ctx, trayKey(userID), n.ID, raw).Err(); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, userID string) ([]Notification, error) {
	values, err := s.client.HVals(ctx, trayKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	out := make([]Notification, 0, len(values))
	for _, v := range values {
		var n Notification
		if err := json.Unmarshal([]byte(v), &n); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notification: %w", err)
		}
		out = append(out, n)
	}
	sortByPosted(out)
	return out, nil
}

func (s *RedisStore) Take(ctx context.Context, userID, notificationID string) (Notification, error) {
	key := trayKey(userID)
	raw, err := s.client.HGet(ctx, key, notificationID).Result()
	if err == redis.Nil {
		return Notification{}, ErrNotificationNotFound
	}
	if err != nil {
		return Notification{}, fmt.Errorf("failed to load notification: %w", err)
	}

	// A concurrent open may have removed it between HGET and HDEL.
	removed, err := s.client.HDel(ctx, key, notificationID).Result()
	if err != nil {
		return Notification{}, fmt.Errorf("failed to remove notification: %w", err)
	}
	if removed == 0 {
		return Notification{}, ErrNotificationNotFound
	}

	var n Notification
	if err := json.Unmarshal([]byte(raw), &n); err != nil {
		return Notification{}, fmt.Errorf("failed to unmarshal notification: %w", err)
	}
	return n, nil
}
