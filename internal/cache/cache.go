package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis"
)

// ErrCacheMiss 在键不存在或已过期时返回
var ErrCacheMiss = errors.New("cache: key not found")

// Cache 是找回密码与令牌校验依赖的瞬态键值存储。
// 过期回收依赖存储自身的 TTL 机制，调用方不做额外清理。
type Cache interface {
	Set(key, value string, ttl time.Duration) error
	Get(key string) (string, error)
	Delete(key string) error
}

// RedisCache 基于 Redis 实现 Cache
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache 建立 Redis 连接并做一次 Ping 探活
func NewRedisCache(addr, password string, dbIndex int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       dbIndex,
	})

	if err := client.Ping().Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

// Set 写入键值并设置过期时间
func (r *RedisCache) Set(key, value string, ttl time.Duration) error {
	return r.client.Set(key, value, ttl).Err()
}

// Get 读取键值，不存在时返回 ErrCacheMiss
func (r *RedisCache) Get(key string) (string, error) {
	val, err := r.client.Get(key).Result()
	if err == redis.Nil {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Delete 删除键，键不存在不视为错误
func (r *RedisCache) Delete(key string) error {
	return r.client.Del(key).Err()
}
