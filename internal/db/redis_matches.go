package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"grantmatch-backend-go/internal/models"
)

const matchKeyPrefix = "grantmatch:matches:"

// OpenRedis connects to Redis and verifies the connection.
func OpenRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// redisMatchRepository keeps one JSON list per account.
type redisMatchRepository struct {
	client *redis.Client
}

// NewRedisMatchRepository creates a MatchRepository backed by Redis lists.
func NewRedisMatchRepository(client *redis.Client) MatchRepository {
	if client == nil {
		panic("Redis client is not initialized for MatchRepository")
	}
	return &redisMatchRepository{client: client}
}

func matchKey(accountID string) string {
	return matchKeyPrefix + accountID
}

func (r *redisMatchRepository) Replace(ctx context.Context, accountID string, matches []models.GrantMatch) error {
	values := make([]interface{}, 0, len(matches))
	for _, m := range matches {
		raw, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to encode match %s: %w", m.GrantID, err)
		}
		values = append(values, raw)
	}

	key := matchKey(accountID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.RPush(ctx, key, values...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace matches for account %s: %w", accountID, err)
	}
	return nil
}

func (r *redisMatchRepository) Get(ctx context.Context, accountID string) ([]models.GrantMatch, error) {
	raw, err := r.client.LRange(ctx, matchKey(accountID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read matches for account %s: %w", accountID, err)
	}
	matches := make([]models.GrantMatch, 0, len(raw))
	for _, item := range raw {
		var m models.GrantMatch
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("failed to decode match for account %s: %w", accountID, err)
		}
		matches = append(matches, m)
	}
	return matches, nil
}

func (r *redisMatchRepository) Count(ctx context.Context) (int, error) {
	var (
		total  int64
		cursor uint64
	)
	for {
		keys, next, err := r.client.Scan(ctx, cursor, matchKeyPrefix+"*", 100).Result()
		if err != nil {
			return 0, fmt.Errorf("failed to scan match keys: %w", err)
		}
		for _, key := range keys {
			if !strings.HasPrefix(key, matchKeyPrefix) {
				continue
			}
			n, err := r.client.LLen(ctx, key).Result()
			if err != nil {
				return 0, fmt.Errorf("failed to count matches in %s: %w", key, err)
			}
			total += n
		}
		if next == 0 {
			break
		}
		cursor = next
	}
	return int(total), nil
}
