// -----------------------------------------------------------------------------
// Memory Cache Driver
// -----------------------------------------------------------------------------
// In-memory cache implementation (non-persistent).
//
// Testing, tek process'li araçlar ve development ortamı için idealdir.
//
// Özellikler:
// - Thread-safe (sync.RWMutex)
// - TTL support (periyodik cleanup)
// - Değerler kopyalanarak saklanır; çağıran slice'ı değiştirse de entry bozulmaz
//
// Sınırlamalar:
// - Non-persistent (restart'ta kaybolur)
// - Single-process only (distributed değil)
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"log"
	"sync"
	"time"
)

// MemoryCacheEntry, memory'de saklanan veri yapısı.
type MemoryCacheEntry struct {
	Value     []byte
	ExpiresAt time.Time // zero value = süresiz
}

// IsExpired, entry'nin expire olup olmadığını kontrol eder.
func (e *MemoryCacheEntry) IsExpired(now time.Time) bool {
	if e.ExpiresAt.IsZero() {
		return false
	}
	return now.After(e.ExpiresAt)
}

// MemoryCache, in-memory cache implementation.
type MemoryCache struct {
	store  map[string]*MemoryCacheEntry
	mu     sync.RWMutex
	logger *log.Logger
	now    func() time.Time
	stop   chan struct{}
	once   sync.Once
}

// NewMemoryCache, yeni bir Memory cache instance oluşturur ve 5 dakikada bir
// expired entry'leri temizleyen goroutine'i başlatır. Stop ile durdurulur.
//
// Örnek:
//
//	c := cache.NewMemoryCache(logger)
//	defer c.Stop()
func NewMemoryCache(logger *log.Logger) *MemoryCache {
	if logger == nil {
		logger = log.Default()
	}

	mc := &MemoryCache{
		store:  make(map[string]*MemoryCacheEntry),
		logger: logger,
		now:    time.Now,
		stop:   make(chan struct{}),
	}

	go mc.startGarbageCollection(5 * time.Minute)

	logger.Println("✅ Memory cache başlatıldı")
	return mc
}

// Get, cache'den veri okur.
func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.store[key]
	if !exists || entry.IsExpired(m.now()) {
		return nil, nil // Cache miss
	}

	return append([]byte(nil), entry.Value...), nil
}

// Set, cache'e veri yazar.
func (m *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = m.now().Add(ttl)
	}

	m.store[key] = &MemoryCacheEntry{
		Value:     append([]byte(nil), value...),
		ExpiresAt: expiresAt,
	}
	return nil
}

// Delete, cache'den veri siler.
func (m *MemoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.store, key)
	}
	return nil
}

// Has, key'in varlığını kontrol eder.
func (m *MemoryCache) Has(ctx context.Context, key string) (bool, error) {
	val, err := m.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return val != nil, nil
}

// Remember, cache'den okur veya callback'i çalıştırıp cache'ler.
func (m *MemoryCache) Remember(ctx context.Context, key string, ttl time.Duration, callback func() ([]byte, error)) ([]byte, error) {
	return remember(ctx, m, key, ttl, callback, func(err error) {
		m.logger.Printf("⚠️  Remember cache yazma hatası [%s]: %v", key, err)
	})
}

// Flush, tüm cache'i temizler.
func (m *MemoryCache) Flush(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store = make(map[string]*MemoryCacheEntry)
	m.logger.Println("⚠️  Memory cache tamamen temizlendi")
	return nil
}

// Stats, memory cache istatistiklerini döndürür.
func (m *MemoryCache) Stats() map[string]any {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := m.now()
	validCount := 0
	for _, entry := range m.store {
		if !entry.IsExpired(now) {
			validCount++
		}
	}

	return map[string]any{
		"driver":       "memory",
		"total_keys":   len(m.store),
		"valid_keys":   validCount,
		"expired_keys": len(m.store) - validCount,
	}
}

// Size, cache'deki toplam entry sayısını döndürür.
func (m *MemoryCache) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.store)
}

// Stop, garbage collection goroutine'ini durdurur. Birden fazla çağrı güvenlidir.
func (m *MemoryCache) Stop() {
	m.once.Do(func() { close(m.stop) })
}

// startGarbageCollection, expired entry'leri periyodik olarak temizler.
func (m *MemoryCache) startGarbageCollection(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanExpiredEntries()
		case <-m.stop:
			return
		}
	}
}

// cleanExpiredEntries, expired entry'leri temizler.
func (m *MemoryCache) cleanExpiredEntries() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	cleaned := 0
	for key, entry := range m.store {
		if entry.IsExpired(now) {
			delete(m.store, key)
			cleaned++
		}
	}

	if cleaned > 0 {
		m.logger.Printf("🧹 Memory cache garbage collection: %d expired entry silindi", cleaned)
	}
	return cleaned
}
