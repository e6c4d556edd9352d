package database

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// -----------------------------------------------------------------------------
// QUERY RESULT CACHE
// -----------------------------------------------------------------------------
// Builder.Remember(ttl) ile işaretlenen SELECT'lerin satırları bağlantının
// ResultCache'inde saklanır. Anahtar; bağlantı adı, lehçe, derlenmiş SQL ve
// bind değerlerinden xxhash ile üretilir. Satırlar msgpack ile kodlanır.
//
// Aynı anahtar için eşzamanlı cache miss'ler singleflight ile tek bir sorguya
// indirgenir (Connection.group).
// -----------------------------------------------------------------------------

// ResultCache, sorgu sonuçlarını byte olarak saklayan cache sürücüsüdür.
// pkg/cache altındaki MemoryCache ve RedisCache bu arayüzü karşılar.
//
// Get, cache miss durumunda (nil, nil) döner.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// cacheKey, statement için deterministik cache anahtarı üretir.
func cacheKey(prefix, connection, dialect, query string, args []any) string {
	d := xxhash.New()
	_, _ = d.WriteString(connection)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(dialect)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(query)
	for _, arg := range args {
		_, _ = d.WriteString("\x00")
		_, _ = d.WriteString(fmt.Sprintf("%T:%v", arg, arg))
	}
	return prefix + "query:" + strconv.FormatUint(d.Sum64(), 16)
}

// encodeRows, satırları cache'e yazılacak biçime kodlar.
func encodeRows(rows []Row) ([]byte, error) {
	plain := make([]map[string]any, len(rows))
	for i, row := range rows {
		plain[i] = row
	}
	return msgpack.Marshal(plain)
}

// decodeRows, cache'ten okunan satırları çözer.
func decodeRows(data []byte) ([]Row, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.UseLooseInterfaceDecoding(true)

	var plain []map[string]any
	if err := dec.Decode(&plain); err != nil {
		return nil, fmt.Errorf("cached rows decode failed: %w", err)
	}

	rows := make([]Row, len(plain))
	for i, m := range plain {
		rows[i] = Row(m)
	}
	return rows, nil
}
