// -----------------------------------------------------------------------------
// Redis Connection Pool
// -----------------------------------------------------------------------------
// Redis bağlantı havuzu ve connection yönetimi.
//
// Query cache'in redis driver'ı bu client üzerinden çalışır. Bağlantı
// açılırken ping ile doğrulanır; erişilemeyen sunucu başlangıçta hata verir.
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig, Redis bağlantı yapılandırması.
type RedisConfig struct {
	Host         string        // Redis sunucu adresi
	Port         int           // Redis port
	Password     string        // Redis şifresi (opsiyonel)
	DB           int           // Database numarası (0-15)
	PoolSize     int           // Connection pool boyutu
	MinIdleConns int           // Minimum idle connection sayısı
	MaxRetries   int           // Maksimum retry sayısı
	DialTimeout  time.Duration // Bağlantı timeout süresi
	ReadTimeout  time.Duration // Okuma timeout süresi
	WriteTimeout time.Duration // Yazma timeout süresi
}

// DefaultRedisConfig, varsayılan Redis yapılandırması.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Host:         "127.0.0.1",
		Port:         6379,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Addr, "host:port" adresini döndürür.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Options, go-redis seçeneklerini üretir.
func (c *RedisConfig) Options() *redis.Options {
	return &redis.Options{
		Addr:         c.Addr(),
		Password:     c.Password,
		DB:           c.DB,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
		MaxRetries:   c.MaxRetries,
		DialTimeout:  c.DialTimeout,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	}
}

// RedisClient, redis.Client wrapper.
type RedisClient struct {
	client *redis.Client
	logger *log.Logger
}

// NewRedisClient, yeni bir Redis client oluşturur.
//
// Connection pool'u başlatır ve bağlantıyı test eder.
//
// Örnek:
//
//	client, err := cache.NewRedisClient(ctx, cache.DefaultRedisConfig(), logger)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
func NewRedisClient(ctx context.Context, config *RedisConfig, logger *log.Logger) (*RedisClient, error) {
	if config == nil {
		config = DefaultRedisConfig()
	}
	if logger == nil {
		logger = log.Default()
	}

	client := redis.NewClient(config.Options())

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		logger.Printf("❌ Redis bağlantı hatası: %v", err)
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Printf("✅ Redis bağlantısı başarılı: %s (DB: %d)", config.Addr(), config.DB)

	return &RedisClient{
		client: client,
		logger: logger,
	}, nil
}

// Client, raw redis.Client instance döndürür.
func (r *RedisClient) Client() *redis.Client {
	return r.client
}

// Ping, Redis sunucusunun erişilebilir olup olmadığını kontrol eder.
func (r *RedisClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return r.client.Ping(ctx).Err()
}

// Stats, Redis connection pool istatistiklerini döndürür.
func (r *RedisClient) Stats() map[string]any {
	poolStats := r.client.PoolStats()

	return map[string]any{
		"hits":        poolStats.Hits,
		"misses":      poolStats.Misses,
		"timeouts":    poolStats.Timeouts,
		"total_conns": poolStats.TotalConns,
		"idle_conns":  poolStats.IdleConns,
		"stale_conns": poolStats.StaleConns,
	}
}

// Close, Redis bağlantısını kapatır.
func (r *RedisClient) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Printf("❌ Redis kapatma hatası: %v", err)
		return err
	}

	r.logger.Println("✅ Redis bağlantısı kapatıldı")
	return nil
}
