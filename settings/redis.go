package settings

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisKey = "acc-docs-sync:settings"

// RedisStore keeps the settings as the fields of a Redis hash.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	if key == "" {
		key = DefaultRedisKey
	}

	return &RedisStore{
		client: client,
		key:    key,
	}, nil
}

// OpenRedis connects to the Redis server at 'addr' and checks that it is reachable.
func OpenRedis(ctx context.Context, addr string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis server %v not available (%w)", addr, err)
	}

	return NewRedisStore(client, DefaultRedisKey)
}

func (r *RedisStore) Load(ctx context.Context) (*Settings, error) {
	fields, err := r.client.HGetAll(ctx, r.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings %s: %w", r.key, err)
	}

	s := Settings{
		LastFolderURL: fields[LastFolderURL],
		LastExcelPath: fields[LastExcelPath],
		Token:         fields[AccessToken],
	}

	if v := fields[AccessTokenTTL]; v != "" {
		ticks, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %v '%v' (%w)", AccessTokenTTL, v, err)
		}

		s.TokenExpires = ticks
	}

	return &s, nil
}

// Save writes the non-empty settings and deletes the empty ones in one transaction.
func (r *RedisStore) Save(ctx context.Context, s *Settings) error {
	fields := map[string]string{
		LastFolderURL: s.LastFolderURL,
		LastExcelPath: s.LastExcelPath,
		AccessToken:   s.Token,
	}

	if s.TokenExpires != 0 {
		fields[AccessTokenTTL] = strconv.FormatInt(s.TokenExpires, 10)
	} else {
		fields[AccessTokenTTL] = ""
	}

	set := map[string]any{}
	unset := []string{}
	for k, v := range fields {
		if v != "" {
			set[k] = v
		} else {
			unset = append(unset, k)
		}
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(set) > 0 {
			pipe.HSet(ctx, r.key, set)
		}

		if len(unset) > 0 {
			pipe.HDel(ctx, r.key, unset...)
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to save settings %s: %w", r.key, err)
	}

	return nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
