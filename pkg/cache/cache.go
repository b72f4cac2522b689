// Package cache 提供基于键值存储的泛型缓存实现.
//
// 值使用 sonic 序列化为 JSON，键统一加命名空间前缀并按需哈希，
// 以兼容 NATS KV 等对键字符有限制的后端.
//
// 基本用法:
//
//	c := cache.New(kvStore, "dl")
//	url, hit, err := cache.GetOrSet(ctx, c, storageKey, func(ctx context.Context) (string, error) {
//		return signer.SignedGetURL(ctx, storageKey, ttl, name)
//	}, ttl/2)
//
// 并发读取同一个未命中的键时，GetOrSet 只调用一次 getter.
// 缓存读写失败不会让调用失败，只会退化为直接调用 getter，并交给 WithErrorHandler 注册的回调.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"github.com/yeisme/clouddrive/pkg/internal/storage/kv"
)

// ErrMiss 缓存未命中.
var ErrMiss = errors.New("cache: miss")

// 缓存层操作名，传给 ErrorHandler.
const (
	OpGet = "get"
	OpSet = "set"
)

// ErrorHandler 处理 GetOrSet 中被吞掉的缓存读写错误.
type ErrorHandler func(ctx context.Context, op string, err error)

// Cache 基于KV存储的缓存实现.
type Cache struct {
	kvStore   kv.KVStore
	namespace string
	group     singleflight.Group
	onError   ErrorHandler
}

// Option 缓存选项.
type Option func(*Cache)

// WithErrorHandler 注册缓存读写失败的回调.
func WithErrorHandler(h ErrorHandler) Option {
	return func(c *Cache) { c.onError = h }
}

// New 创建一个带命名空间的缓存实例.
func New(kvStore kv.KVStore, namespace string, opts ...Option) *Cache {
	c := &Cache{kvStore: kvStore, namespace: namespace}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Cache) reportError(ctx context.Context, op string, err error) {
	if c.onError != nil {
		c.onError(ctx, op, err)
	}
}

// Key 返回写入 KV 的实际键：<namespace>:<xxhash(key) 十六进制>.
func (c *Cache) Key(key string) string {
	return c.namespace + ":" + strconv.FormatUint(xxhash.Sum64String(key), 16)
}

// Get 泛型获取缓存值，未命中返回 ErrMiss.
func Get[T any](ctx context.Context, c *Cache, key string) (T, error) {
	var zero T

	data, err := c.kvStore.Get(ctx, c.Key(key))
	if errors.Is(err, kv.ErrNotFound) {
		return zero, ErrMiss
	}

	if err != nil {
		return zero, err
	}

	var value T
	if err := sonic.Unmarshal(data, &value); err != nil {
		return zero, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return value, nil
}

// Set 泛型设置缓存值.
func Set[T any](ctx context.Context, c *Cache, key string, value T, ttl time.Duration) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	return c.kvStore.Set(ctx, c.Key(key), data, ttl)
}

// Delete 删除缓存键.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.kvStore.Delete(ctx, c.Key(key))
}

// GetOrSet 读取缓存，未命中时调用 getter 并写回；hit 表示是否命中缓存.
// 返回的错误只来自 getter.
func GetOrSet[T any](ctx context.Context, c *Cache, key string, getter func(context.Context) (T, error), ttl time.Duration) (value T, hit bool, err error) {
	v, gerr := Get[T](ctx, c, key)
	if gerr == nil {
		return v, true, nil
	}

	if !errors.Is(gerr, ErrMiss) {
		c.reportError(ctx, OpGet, gerr)
	}

	res, err, _ := c.group.Do(key, func() (any, error) {
		// 结果由所有等待者共享，不随首个调用方取消
		sctx := context.WithoutCancel(ctx)

		v, err := getter(sctx)
		if err != nil {
			return v, err
		}

		if serr := Set(sctx, c, key, v, ttl); serr != nil {
			c.reportError(sctx, OpSet, serr)
		}

		return v, nil
	})
	if err != nil {
		var zero T

		return zero, false, err
	}

	return res.(T), false, nil
}
