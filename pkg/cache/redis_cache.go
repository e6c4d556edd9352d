// -----------------------------------------------------------------------------
// Redis Cache Driver
// -----------------------------------------------------------------------------
// Redis-based cache implementation.
//
// Birden fazla process aynı sorgu sonuçlarını paylaşacaksa önerilen driver.
//
// Özellikler:
// - Opak byte değerler (serialization çağıranda)
// - TTL support
// - Prefix ile namespace izolasyonu
// - Connection pooling (go-redis)
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache, Redis-based cache implementation.
type RedisCache struct {
	client redis.UniversalClient
	logger *log.Logger
	prefix string // Key prefix (namespace)
}

// NewRedisCache, yeni bir Redis cache instance oluşturur.
//
// Örnek:
//
//	c := cache.NewRedisCache(redisClient.Client(), logger, "fluentsql:")
//	// Gerçek key: "fluentsql:query:af31..."
func NewRedisCache(client redis.UniversalClient, logger *log.Logger, prefix string) *RedisCache {
	if logger == nil {
		logger = log.Default()
	}
	return &RedisCache{
		client: client,
		logger: logger,
		prefix: prefix,
	}
}

// prefixKey, key'e prefix ekler.
func (r *RedisCache) prefixKey(key string) string {
	return r.prefix + key
}

// Get, cache'den veri okur.
func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	prefixedKey := r.prefixKey(key)
	val, err := r.client.Get(ctx, prefixedKey).Bytes()

	// Key bulunamadı (cache miss)
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}

	if err != nil {
		r.logger.Printf("❌ Redis Get hatası [%s]: %v", prefixedKey, err)
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	return val, nil
}

// Set, cache'e veri yazar.
func (r *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	prefixedKey := r.prefixKey(key)

	if err := r.client.Set(ctx, prefixedKey, value, ttl).Err(); err != nil {
		r.logger.Printf("❌ Redis Set hatası [%s]: %v", prefixedKey, err)
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

// Delete, cache'den veri siler.
func (r *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixedKeys := make([]string, len(keys))
	for i, key := range keys {
		prefixedKeys[i] = r.prefixKey(key)
	}

	if err := r.client.Del(ctx, prefixedKeys...).Err(); err != nil {
		r.logger.Printf("❌ Redis Delete hatası %v: %v", prefixedKeys, err)
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

// Has, key'in varlığını kontrol eder.
func (r *RedisCache) Has(ctx context.Context, key string) (bool, error) {
	prefixedKey := r.prefixKey(key)
	count, err := r.client.Exists(ctx, prefixedKey).Result()
	if err != nil {
		r.logger.Printf("❌ Redis Exists hatası [%s]: %v", prefixedKey, err)
		return false, fmt.Errorf("redis exists failed: %w", err)
	}

	return count > 0, nil
}

// Remember, cache'den okur veya callback'i çalıştırıp cache'ler.
//
// Eşzamanlı miss'ler callback'i birden fazla kez çalıştırabilir; sorgu
// seviyesinde bu database.Connection'daki singleflight ile engellenir.
func (r *RedisCache) Remember(ctx context.Context, key string, ttl time.Duration, callback func() ([]byte, error)) ([]byte, error) {
	return remember(ctx, r, key, ttl, callback, func(err error) {
		r.logger.Printf("⚠️  Remember cache yazma hatası [%s]: %v", key, err)
	})
}

// Flush, tüm cache'i temizler.
//
// UYARI: Prefix varsa sadece o namespace temizlenir.
// Prefix yoksa TÜM Redis database temizlenir!
func (r *RedisCache) Flush(ctx context.Context) error {
	if r.prefix != "" {
		pattern := r.prefix + "*"
		iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()

		keys := []string{}
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}

		if err := iter.Err(); err != nil {
			r.logger.Printf("❌ Redis Scan hatası: %v", err)
			return fmt.Errorf("redis scan failed: %w", err)
		}

		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				r.logger.Printf("❌ Redis Flush hatası: %v", err)
				return fmt.Errorf("redis flush failed: %w", err)
			}
		}

		r.logger.Printf("⚠️  Redis cache temizlendi [prefix: %s, keys: %d]", r.prefix, len(keys))
		return nil
	}

	if err := r.client.FlushDB(ctx).Err(); err != nil {
		r.logger.Printf("❌ Redis FlushDB hatası: %v", err)
		return fmt.Errorf("redis flushdb failed: %w", err)
	}

	r.logger.Println("⚠️  Redis database tamamen temizlendi (FlushDB)")
	return nil
}

// Stats, Redis cache istatistiklerini döndürür.
func (r *RedisCache) Stats() map[string]any {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	info, err := r.client.Info(ctx, "stats").Result()
	if err != nil {
		r.logger.Printf("❌ Redis Info hatası: %v", err)
		return map[string]any{
			"error": err.Error(),
		}
	}

	return map[string]any{
		"driver": "redis",
		"prefix": r.prefix,
		"info":   info,
	}
}
