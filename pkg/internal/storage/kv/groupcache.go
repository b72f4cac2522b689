package kv

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang/groupcache"

	"github.com/yeisme/clouddrive/pkg/configs"
)

// GroupcacheKV 基于 groupcache 的 KV 实现.
// groupcache 中的值不可变，每次 Set 分配实例内单调递增的版本号，读取时以 "key@版本" 查询，
// 旧版本随 LRU 自然淘汰.
type GroupcacheKV struct {
	group *groupcache.Group
	mu    sync.RWMutex
	data  map[string][]byte // 版本化键 -> 编码后的值
	gen   map[string]uint64 // 逻辑键 -> 当前版本
	seq   uint64
	now   func() time.Time
}

// groupcache 的组名全局唯一，同名组只能注册一次.
var (
	groupsMu sync.Mutex
	groups   = map[string]*GroupcacheKV{}
)

// NewGroupcacheKV 创建 Groupcache KV 实例，同名组重复创建时返回已有实例.
func NewGroupcacheKV(_ context.Context, cfg configs.KVConfig) (KVStore, error) {
	gc := cfg.Groupcache
	if gc.Name == "" {
		return nil, fmt.Errorf("groupcache name is required")
	}

	groupsMu.Lock()
	defer groupsMu.Unlock()

	if existing, ok := groups[gc.Name]; ok {
		return existing, nil
	}

	kv := &GroupcacheKV{
		data: make(map[string][]byte),
		gen:  make(map[string]uint64),
		now:  time.Now,
	}

	kv.group = groupcache.NewGroup(gc.Name, gc.CacheBytes, groupcache.GetterFunc(kv.load))

	// 如果有对等节点，设置 HTTP 池
	if len(gc.Peers) > 0 {
		pool := groupcache.NewHTTPPoolOpts(gc.Self, &groupcache.HTTPPoolOptions{})
		pool.Set(gc.Peers...)
	}

	groups[gc.Name] = kv

	return kv, nil
}

// load 是 groupcache 的回源函数.
func (g *GroupcacheKV) load(_ context.Context, versioned string, dest groupcache.Sink) error {
	g.mu.RLock()
	value, ok := g.data[versioned]
	g.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}

	return dest.SetBytes(value)
}

func versionedKey(key string, gen uint64) string {
	return key + "@" + strconv.FormatUint(gen, 10)
}

// Get 获取键的值.
func (g *GroupcacheKV) Get(ctx context.Context, key string) ([]byte, error) {
	g.mu.RLock()
	gen, ok := g.gen[key]
	g.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}

	var raw []byte
	if err := g.group.Get(ctx, versionedKey(key, gen), groupcache.AllocatingByteSliceSink(&raw)); err != nil {
		if strings.Contains(err.Error(), ErrNotFound.Error()) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("groupcache get %s: %w", key, err)
	}

	value, expired, err := decodeWithTTL(raw, g.now())
	if err != nil {
		return nil, err
	}

	if expired {
		_ = g.Delete(ctx, key)
		return nil, ErrNotFound
	}

	return value, nil
}

// Set 设置键的值.
func (g *GroupcacheKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	encoded, err := encodeWithTTL(append([]byte(nil), value...), ttl, g.now())
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if old, ok := g.gen[key]; ok {
		delete(g.data, versionedKey(key, old))
	}

	g.seq++
	g.gen[key] = g.seq
	g.data[versionedKey(key, g.seq)] = encoded

	return nil
}

// Delete 删除键.
func (g *GroupcacheKV) Delete(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if gen, ok := g.gen[key]; ok {
		delete(g.data, versionedKey(key, gen))
		delete(g.gen, key)
	}

	return nil
}

// Exists 检查键是否存在.
func (g *GroupcacheKV) Exists(ctx context.Context, key string) (bool, error) {
	_, err := g.Get(ctx, key)
	if err == ErrNotFound {
		return false, nil
	}

	return err == nil, err
}

// Keys 获取匹配 glob 模式的键.
func (g *GroupcacheKV) Keys(_ context.Context, pattern string) ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	keys := make([]string, 0, len(g.gen))

	for key := range g.gen {
		if pattern != "" {
			if ok, err := path.Match(pattern, key); err != nil {
				return nil, err
			} else if !ok {
				continue
			}
		}

		keys = append(keys, key)
	}

	return keys, nil
}

// Close 关闭缓存（groupcache 没有显式的关闭方法）.
func (g *GroupcacheKV) Close() error {
	return nil
}

func init() {
	RegisterKVFactory(configs.KVTypeGroupcache, NewGroupcacheKV)
}
