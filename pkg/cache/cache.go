// -----------------------------------------------------------------------------
// Cache Interface
// -----------------------------------------------------------------------------
// Sorgu sonuçları için byte tabanlı cache interface tanımı.
//
// Bu dosya tüm cache driver'ların implement etmesi gereken interface'i tanımlar.
// Driver'lar: Redis, Memory
//
// Değerler opak byte dizileridir; kodlama (msgpack) çağıranın işidir. Böylece
// driver'lar serialization yapmaz ve database.ResultCache arayüzünü doğrudan
// karşılar.
//
// Özellikler:
// - Get/Set/Delete operations
// - TTL (Time To Live) support
// - Remember pattern (cache or execute)
// - Flush (clear all)
// -----------------------------------------------------------------------------

package cache

import (
	"context"
	"time"
)

// Cache, tüm cache driver'ların implement etmesi gereken interface.
//
// Örnek kullanım:
//
//	var c cache.Cache = cache.NewMemoryCache(logger)
//	_ = c.Set(ctx, "query:af31", payload, time.Minute)
type Cache interface {
	// Get, cache'den veri okur.
	//
	// Key bulunamazsa (nil, nil) döner, hata vermez.
	//
	// Örnek:
	//   value, err := c.Get(ctx, "query:af31")
	//   if value == nil {
	//       // Cache miss
	//   }
	Get(ctx context.Context, key string) ([]byte, error)

	// Set, cache'e veri yazar.
	//
	// TTL = 0 ise süresiz saklanır (dikkatli kullan!).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete, verilen key'leri siler. Bulunamayan key hata değildir.
	Delete(ctx context.Context, keys ...string) error

	// Has, key'in cache'de olup olmadığını kontrol eder.
	Has(ctx context.Context, key string) (bool, error)

	// Remember, cache'den okur, bulamazsa fonksiyonu çalıştırıp cache'ler.
	//
	// "Cache'de varsa al, yoksa hesapla ve cache'le"
	//
	// Örnek:
	//   data, err := c.Remember(ctx, "report:daily", 10*time.Minute, func() ([]byte, error) {
	//       return buildReport(ctx)
	//   })
	Remember(ctx context.Context, key string, ttl time.Duration, callback func() ([]byte, error)) ([]byte, error)

	// Flush, tüm cache'i temizler.
	//
	// UYARI: Bu operasyon geri alınamaz!
	Flush(ctx context.Context) error
}

// Stats, cache istatistikleri interface.
//
// Monitoring ve debugging için kullanılır.
// Tüm driver'lar optional olarak implement edebilir.
//
// Örnek:
//
//	if s, ok := c.(cache.Stats); ok {
//	    log.Printf("Cache stats: %+v", s.Stats())
//	}
type Stats interface {
	Stats() map[string]any
}

// remember, Get/Set üzerinden Remember davranışını uygular. Cache yazma
// hatası callback sonucunu geçersiz kılmaz; yalnızca warn fonksiyonuna iletilir.
func remember(ctx context.Context, c Cache, key string, ttl time.Duration, callback func() ([]byte, error), warn func(error)) ([]byte, error) {
	val, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if val != nil {
		return val, nil
	}

	result, err := callback()
	if err != nil {
		return nil, err
	}

	if err := c.Set(ctx, key, result, ttl); err != nil {
		warn(err)
	}
	return result, nil
}
