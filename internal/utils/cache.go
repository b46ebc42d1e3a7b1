package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheItem 包装缓存数据和过期时间
type cacheItem struct {
	data      interface{}
	expiresAt time.Time
}

// TTLCache LRU + 过期时间的本地缓存
type TTLCache struct {
	lruCache *lru.Cache[string, cacheItem]
}

// NewTTLCache 创建指定容量的缓存实例
func NewTTLCache(size int) (*TTLCache, error) {
	l, err := lru.New[string, cacheItem](size)
	if err != nil {
		return nil, err
	}
	return &TTLCache{lruCache: l}, nil
}

// Set 设置缓存，TTL 为过期时间
func (c *TTLCache) Set(key string, data interface{}, ttl time.Duration) {
	c.lruCache.Add(key, cacheItem{
		data:      data,
		expiresAt: time.Now().Add(ttl),
	})
}

// Get 获取缓存，若不存在或已过期则返回 nil
func (c *TTLCache) Get(key string) interface{} {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return nil
	}
	if time.Now().After(val.expiresAt) {
		c.lruCache.Remove(key)
		return nil
	}
	return val.data
}

// Delete 删除指定缓存
func (c *TTLCache) Delete(key string) {
	c.lruCache.Remove(key)
}
