package store

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/rushteam/basketrec/core"
)

// RedisSource 从 Redis list 读取篮子，每个元素是一个 JSON 字符串数组，例如
// `["Bacon Cheese","Fries"]`。生产环境常由订单服务 RPUSH 写入。
type RedisSource struct {
	client *redis.Client
	key    string
}

// NewRedisSource 使用已有 client 创建数据源
func NewRedisSource(client *redis.Client, key string) *RedisSource {
	return &RedisSource{client: client, key: key}
}

// DialRedisSource 连接 Redis 并创建数据源
func DialRedisSource(ctx context.Context, addr string, db int, key string) (*RedisSource, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "store: redis ping "+addr, err)
	}
	return &RedisSource{client: client, key: key}, nil
}

func (r *RedisSource) Name() string { return "redis" }

func (r *RedisSource) Transactions(ctx context.Context) ([][]string, error) {
	n, err := r.client.Exists(ctx, r.key).Result()
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "store: redis exists "+r.key, err)
	}
	if n == 0 {
		return nil, core.Errorf(core.ModuleStore, core.ErrorCodeNotFound, "store: redis key %q not found", r.key)
	}

	vals, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeUnavailable, "store: redis lrange "+r.key, err)
	}
	baskets := make([][]string, 0, len(vals))
	for i, v := range vals {
		var basket []string
		if err := json.Unmarshal([]byte(v), &basket); err != nil {
			return nil, core.WrapDomainError(core.ModuleStore, core.ErrorCodeInvalidInput, fmt.Sprintf("store: redis element #%d", i), err)
		}
		baskets = append(baskets, basket)
	}
	return baskets, nil
}

// Push 追加篮子（RPUSH），用于导入数据
func (r *RedisSource) Push(ctx context.Context, baskets ...[]string) error {
	if len(baskets) == 0 {
		return nil
	}
	vals := make([]any, 0, len(baskets))
	for _, b := range baskets {
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("marshal basket: %w", err)
		}
		vals = append(vals, string(data))
	}
	return r.client.RPush(ctx, r.key, vals...).Err()
}

func (r *RedisSource) Close() error {
	return r.client.Close()
}

var _ core.TransactionSource = (*RedisSource)(nil)
