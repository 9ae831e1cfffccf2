package qdrive

import (
	"github.com/coocood/freecache"

	"QDrive-SDK/internal/helpers"
)

// linkCache 下载地址和共享链接的短期缓存
type linkCache struct {
	cache *freecache.Cache
}

func newLinkCache(size int) *linkCache {
	return &linkCache{
		cache: freecache.NewCache(size),
	}
}

// expire设置为-1则代表取默认值
func (c *linkCache) Set(key string, value []byte, expire int) {
	keyBytes := []byte(helpers.MD5Hash(key))
	if expire == -1 {
		expire = DEFAULT_CACHE_EXPIRE
	}
	c.cache.Set(keyBytes, value, expire)
}

func (c *linkCache) Get(key string) []byte {
	keyBytes := []byte(helpers.MD5Hash(key))
	value, err := c.cache.Get(keyBytes)
	if err != nil {
		return nil
	}
	return value
}

func (c *linkCache) Del(key string) {
	c.cache.Del([]byte(helpers.MD5Hash(key)))
}
