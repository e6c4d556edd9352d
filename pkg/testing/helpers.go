// -----------------------------------------------------------------------------
// Testing Helpers - Laravel-Inspired Database Testing Utilities
// -----------------------------------------------------------------------------
// Bu package, builder ve connection testlerini kolaylaştıran helper'lar sağlar.
//
// Özellikler:
// - In-memory SQLite bağlantısı (modernc.org/sqlite, cgo gerektirmez)
// - Database testing traits (RefreshDatabase, DatabaseTransaction)
// - Seed ve factory helper'ları
// - Database assertion'ları (AssertDatabaseHas, AssertDatabaseCount)
// - Sayaçlı result cache (CacheSpy)
//
// Kullanım:
//
//	func TestUserCreation(t *testing.T) {
//	    conn := dbtest.RefreshDatabase(t, dbtest.UsersSchema)
//
//	    _, err := conn.Table("users").Create(ctx, dbtest.UserFactory().Make(nil))
//	    require.NoError(t, err)
//
//	    dbtest.AssertDatabaseHas(t, conn, "users", "email", "test@example.com")
//	}
// -----------------------------------------------------------------------------

package testing

import (
	"context"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/biyonik/fluent-query/pkg/database"
)

// UsersSchema, builder testlerinde kullanılan örnek tablodur.
const UsersSchema = `CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	age INTEGER NOT NULL DEFAULT 0,
	active INTEGER NOT NULL DEFAULT 1,
	created_at TIMESTAMP NULL,
	updated_at TIMESTAMP NULL
)`

// PostsSchema, join testleri için users'a bağlı tablodur.
const PostsSchema = `CREATE TABLE posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	title TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'draft'
)`

// -----------------------------------------------------------------------------
// Database Testing Helpers
// -----------------------------------------------------------------------------

// RefreshDatabase, her test için boş bir in-memory SQLite veritabanı açar,
// şemaları uygular ve test bitince bağlantıyı kapatır.
//
// Kullanım:
//
//	func TestWithFreshDatabase(t *testing.T) {
//	    conn := RefreshDatabase(t, UsersSchema, PostsSchema)
//	    // Test with clean database
//	}
func RefreshDatabase(t testing.TB, schemas ...string) *database.Connection {
	t.Helper()

	ctx := context.Background()
	conn, err := database.Open(ctx, "testing", database.ConnectionConfig{Dialect: "sqlite"},
		database.WithLogger(testLogger(t)))
	require.NoError(t, err, "in-memory sqlite açılamadı")

	t.Cleanup(func() { _ = conn.Close() })

	for _, schema := range schemas {
		_, err := conn.DB().ExecContext(ctx, schema)
		require.NoError(t, err, "şema uygulanamadı")
	}
	return conn
}

// testLogger, bağlantı loglarını t.Log'a yönlendirir; çıktı yalnızca -v ya da
// başarısız testlerde görünür.
func testLogger(t testing.TB) *log.Logger {
	return log.New(testWriter{t}, "", 0)
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

// DatabaseTransaction, callback'i bir transaction içinde çalıştırır ve
// sonunda her durumda geri alır.
//
// Kullanım:
//
//	DatabaseTransaction(t, conn, func(tx *database.Transaction) {
//	    // Test code here
//	    // Automatically rolled back after test
//	})
func DatabaseTransaction(t testing.TB, conn *database.Connection, callback func(*database.Transaction)) {
	t.Helper()

	tx, err := conn.Begin(context.Background())
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	callback(tx)
}

// Seed, tabloya verilen satırları builder üzerinden ekler.
func Seed(t testing.TB, conn *database.Connection, table string, rows ...database.Assignments) {
	t.Helper()

	for _, row := range rows {
		_, err := conn.Table(table).Create(context.Background(), row)
		require.NoError(t, err, "seed %s", table)
	}
}

// -----------------------------------------------------------------------------
// Assertion Helpers
// -----------------------------------------------------------------------------

// AssertDatabaseHas, tabloda column = value olan en az bir satır olduğunu doğrular.
func AssertDatabaseHas(t testing.TB, conn *database.Connection, table, column string, value any) {
	t.Helper()

	exists, err := conn.Table(table).Where(column, database.OpEq, value).Exists(context.Background())
	require.NoError(t, err)
	require.Truef(t, exists, "%s tablosunda %s = %v bulunamadı", table, column, value)
}

// AssertDatabaseMissing, tabloda column = value olan satır olmadığını doğrular.
func AssertDatabaseMissing(t testing.TB, conn *database.Connection, table, column string, value any) {
	t.Helper()

	exists, err := conn.Table(table).Where(column, database.OpEq, value).Exists(context.Background())
	require.NoError(t, err)
	require.Falsef(t, exists, "%s tablosunda %s = %v bulunmamalıydı", table, column, value)
}

// AssertDatabaseCount, tablodaki satır sayısını doğrular.
func AssertDatabaseCount(t testing.TB, conn *database.Connection, table string, expected int64) {
	t.Helper()

	n, err := conn.Table(table).Count(context.Background())
	require.NoError(t, err)
	require.Equalf(t, expected, n, "%s satır sayısı", table)
}

// AssertSQL, builder'ın ürettiği SELECT'i ve bind değerlerini doğrular.
func AssertSQL(t testing.TB, b *database.Builder, expectedSQL string, expectedArgs ...any) {
	t.Helper()

	sql, args, err := b.ToSQL()
	require.NoError(t, err)
	require.Equal(t, expectedSQL, sql)
	if len(expectedArgs) == 0 {
		require.Empty(t, args)
		return
	}
	require.Equal(t, expectedArgs, args)
}

// -----------------------------------------------------------------------------
// Cache Helpers
// -----------------------------------------------------------------------------

// CacheSpy, Get/Set çağrılarını sayan, thread-safe bir in-memory result cache.
type CacheSpy struct {
	mu   sync.Mutex
	data map[string][]byte
	gets int
	hits int
	sets int
}

// NewCacheSpy, boş bir CacheSpy oluşturur.
func NewCacheSpy() *CacheSpy {
	return &CacheSpy{data: make(map[string][]byte)}
}

func (c *CacheSpy) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gets++
	v, ok := c.data[key]
	if ok {
		c.hits++
	}
	return v, nil
}

func (c *CacheSpy) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sets++
	c.data[key] = value
	return nil
}

// Counts, (gets, hits, sets) sayaçlarını döndürür.
func (c *CacheSpy) Counts() (int, int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gets, c.hits, c.sets
}

// -----------------------------------------------------------------------------
// Factory Pattern Helpers
// -----------------------------------------------------------------------------

// Factory represents a test data factory.
type Factory struct {
	defaults map[string]any
}

// NewFactory creates a new factory with default values.
func NewFactory(defaults map[string]any) *Factory {
	return &Factory{
		defaults: defaults,
	}
}

// Make, varsayılanların üzerine override'ları uygular ve kolon adına göre
// sıralı Assignments döndürür.
func (f *Factory) Make(overrides map[string]any) database.Assignments {
	result := make(map[string]any, len(f.defaults)+len(overrides))

	for k, v := range f.defaults {
		result[k] = v
	}
	for k, v := range overrides {
		result[k] = v
	}

	return database.FromMap(result)
}

// UserFactory creates a user factory with default values.
func UserFactory() *Factory {
	return NewFactory(map[string]any{
		"name":   "Test User",
		"email":  "test@example.com",
		"age":    30,
		"active": true,
	})
}

// PostFactory creates a post factory with default values.
func PostFactory() *Factory {
	return NewFactory(map[string]any{
		"title":  "Test Post",
		"status": "published",
	})
}
