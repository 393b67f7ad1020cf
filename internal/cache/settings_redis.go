package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"libraryhub/internal/http-api/models"
)

const settingsKey = "library:admin_settings"

// SettingsCache keeps the admin settings row in a redis hash. A nil
// *SettingsCache is valid and behaves as an always-empty cache.
type SettingsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSettingsCache connects to redisURL (redis://host:port/db) and verifies the connection.
func NewSettingsCache(redisURL string, ttl time.Duration) (*SettingsCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewSettingsCacheWithClient(rdb, ttl), nil
}

func NewSettingsCacheWithClient(client *redis.Client, ttl time.Duration) *SettingsCache {
	return &SettingsCache{client: client, ttl: ttl}
}

// Get returns (nil, nil) on a cache miss.
func (c *SettingsCache) Get(ctx context.Context) (*models.AdminSettings, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}

	fields, err := c.client.HGetAll(ctx, settingsKey).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}

	s := &models.AdminSettings{ID: models.SettingsID}
	targets := map[string]*int{
		"borrow_day_limit":    &s.BorrowDayLimit,
		"borrow_extend_limit": &s.BorrowExtendLimit,
		"borrow_book_limit":   &s.BorrowBookLimit,
		"booking_days_limit":  &s.BookingDaysLimit,
	}
	for name, target := range targets {
		raw, ok := fields[name]
		if !ok {
			return nil, nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("decode cached %s: %w", name, err)
		}
		*target = v
	}
	if raw, ok := fields["updated_at"]; ok {
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			s.UpdatedAt = t
		}
	}
	return s, nil
}

func (c *SettingsCache) Set(ctx context.Context, s *models.AdminSettings) error {
	if c == nil || c.client == nil {
		return nil
	}
	if s == nil {
		return errors.New("nil settings")
	}

	fields := map[string]any{
		"borrow_day_limit":    s.BorrowDayLimit,
		"borrow_extend_limit": s.BorrowExtendLimit,
		"borrow_book_limit":   s.BorrowBookLimit,
		"booking_days_limit":  s.BookingDaysLimit,
		"updated_at":          s.UpdatedAt.Format(time.RFC3339Nano),
	}

	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, settingsKey, fields)
	if c.ttl > 0 {
		pipe.Expire(ctx, settingsKey, c.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *SettingsCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, settingsKey).Err()
}

func (c *SettingsCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
