// -----------------------------------------------------------------------------
// Database Connection
// -----------------------------------------------------------------------------
// Connection, isimlendirilmiş tek bir veritabanı bağlantısıdır: *sql.DB havuzu,
// aktif executor (havuz ya da transaction), SQL lehçesi ve logger.
//
// Builder'lar SQL'i derler; çalıştırma her zaman Connection üzerinden geçer.
// Böylece rate limit, debug log, hata sarmalama ve result cache tek noktada
// uygulanır.
//
// Thread Safety: Connection eşzamanlı kullanım için güvenlidir. *sql.DB kendi
// havuzunu yönetir; limiter ve singleflight grubu goroutine-safe'tir.
// -----------------------------------------------------------------------------

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/biyonik/fluent-query/pkg/events"
)

// errNoExecutor, yalnızca derleme için açılmış bir builder çalıştırılmak
// istendiğinde döner.
var errNoExecutor = errors.New("database: no executor configured")

// Connection, isimlendirilmiş bir veritabanı bağlantısıdır.
type Connection struct {
	name        string
	db          *sql.DB
	executor    QueryExecutor
	grammar     Grammar
	logger      *log.Logger
	limiter     *rate.Limiter
	cache       ResultCache
	cachePrefix string
	group       *singleflight.Group
	debug       bool
	events      *events.Dispatcher
	txID        uuid.UUID
}

// Option, Connection'ı yapılandıran fonksiyondur.
type Option func(*Connection)

// WithLogger, bağlantının logger'ını belirler. nil verilirse log.Default() kullanılır.
func WithLogger(logger *log.Logger) Option {
	return func(c *Connection) {
		c.logger = defaultLogger(logger)
	}
}

// WithRateLimit, saniyede en fazla perSecond statement çalıştırılmasını sağlar.
// perSecond <= 0 ise limit uygulanmaz.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Connection) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
	}
}

// WithResultCache, Remember(ttl) ile işaretlenen sorgular için cache sürücüsünü belirler.
func WithResultCache(cache ResultCache, prefix string) Option {
	return func(c *Connection) {
		c.cache = cache
		c.cachePrefix = prefix
	}
}

// WithDebug, her statement'ın bind değerleri ve süresiyle loglanmasını sağlar.
func WithDebug(debug bool) Option {
	return func(c *Connection) {
		c.debug = debug
	}
}

// NewConnection, açık bir *sql.DB havuzunu isimlendirilmiş bağlantıya sarar.
//
// Örnek:
//
//	db, _ := sql.Open("mysql", dsn)
//	conn := database.NewConnection("default", db, database.NewMySQLGrammar(),
//	    database.WithLogger(logger),
//	    database.WithRateLimit(100, 10),
//	)
//	users, err := conn.Table("users").Where("active", database.OpEq, true).Get(ctx)
func NewConnection(name string, db *sql.DB, grammar Grammar, opts ...Option) *Connection {
	c := &Connection{
		name:    name,
		db:      db,
		grammar: grammar,
		logger:  defaultLogger(nil),
		group:   &singleflight.Group{},
	}
	if db != nil {
		c.executor = db
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func defaultLogger(logger *log.Logger) *log.Logger {
	if logger == nil {
		return log.Default()
	}
	return logger
}

// Name, bağlantının registry'deki adını döndürür.
func (c *Connection) Name() string {
	return c.name
}

// Grammar, bağlantının SQL lehçesini döndürür.
func (c *Connection) Grammar() Grammar {
	return c.grammar
}

// DB, alttaki *sql.DB havuzunu döndürür.
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Table, bu bağlantı üzerinde yeni bir builder başlatır.
//
//	conn.Table("users").Where("id", database.OpEq, 1).First(ctx)
func (c *Connection) Table(name string) *Builder {
	return newBuilder(c).Table(name)
}

// Model, tablo ve birincil anahtara bağlı bir facade döndürür.
func (c *Connection) Model(table, primaryKey string) *Model {
	return NewModel(c, table, primaryKey)
}

// Close, havuzu kapatır.
func (c *Connection) Close() error {
	if c.db == nil {
		return nil
	}
	if err := c.db.Close(); err != nil {
		c.logger.Printf("❌ [ERROR] [%s] Bağlantı kapatma hatası: %v", c.name, err)
		return err
	}
	c.logger.Printf("✅ [%s] Veritabanı bağlantısı kapatıldı", c.name)
	return nil
}

// withExecutor, aynı yapılandırmayla başka bir executor'a (örn. *sql.Tx)
// bağlı bir kopya döndürür.
func (c *Connection) withExecutor(executor QueryExecutor, txID uuid.UUID) *Connection {
	clone := *c
	clone.executor = executor
	clone.txID = txID
	return &clone
}

// wait, rate limiter yapılandırılmışsa sıradaki izni bekler.
func (c *Connection) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	return nil
}

// runQuery, satır döndüren bir statement çalıştırır.
func (c *Connection) runQuery(ctx context.Context, query string, args []any) ([]Row, error) {
	if c.executor == nil {
		return nil, errNoExecutor
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := c.executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, c.failed(query, args, start, err)
	}
	defer rows.Close()

	items, err := scanRows(rows)
	if err != nil {
		return nil, c.failed(query, args, start, err)
	}

	c.trace(query, args, start)
	return items, nil
}

// runExec, satır döndürmeyen bir statement çalıştırır.
func (c *Connection) runExec(ctx context.Context, query string, args []any) (sql.Result, error) {
	if c.executor == nil {
		return nil, errNoExecutor
	}
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := c.executor.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, c.failed(query, args, start, err)
	}

	c.trace(query, args, start)
	return res, nil
}

// failed, driver hatasını loglar, query.failed yayınlar ve ExecuteError
// olarak sarar. Log best-effort'tur; hata her durumda çağırana döner.
func (c *Connection) failed(query string, args []any, start time.Time, err error) error {
	execErr := newExecuteError(query, err)
	c.logger.Printf("❌ [ERROR] [%s]%s Sorgu hatası: %v | sql=%s", c.name, c.txTag(), execErr, query)
	c.emitQuery(events.QueryFailed, query, args, time.Since(start), execErr)
	return execErr
}

// trace, query.executed yayınlar ve debug modunda statement'ı süresiyle loglar.
func (c *Connection) trace(query string, args []any, start time.Time) {
	took := time.Since(start)
	c.emitQuery(events.QueryExecuted, query, args, took, nil)
	if !c.debug {
		return
	}
	c.logger.Printf("🔍 [%s]%s %s %v (%s)", c.name, c.txTag(), query, args, took)
}

func (c *Connection) txTag() string {
	if c.txID == uuid.Nil {
		return ""
	}
	return " [tx " + c.txID.String() + "]"
}

// cachedQuery, Remember ile işaretlenmiş SELECT'leri cache üzerinden çalıştırır.
// Cache okuma/yazma hataları loglanır ve sorgu doğrudan çalıştırılır.
// Transaction içindeki bağlantılar cache'i atlar.
func (c *Connection) cachedQuery(ctx context.Context, query string, args []any, ttl time.Duration) ([]Row, error) {
	if c.cache == nil || ttl <= 0 || c.txID != uuid.Nil {
		return c.runQuery(ctx, query, args)
	}

	key := cacheKey(c.cachePrefix, c.name, c.grammar.Name(), query, args)

	if data, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Printf("⚠️  [%s] Query cache okuma hatası [%s]: %v", c.name, key, err)
	} else if data != nil {
		if rows, err := decodeRows(data); err == nil {
			c.emitCache(events.CacheHit, key, query)
			return rows, nil
		}
	}

	c.emitCache(events.CacheMiss, key, query)
	v, err, _ := c.group.Do(key, func() (any, error) {
		rows, err := c.runQuery(ctx, query, args)
		if err != nil {
			return nil, err
		}

		data, err := encodeRows(rows)
		if err != nil {
			c.logger.Printf("⚠️  [%s] Query cache encode hatası [%s]: %v", c.name, key, err)
			return rows, nil
		}
		if err := c.cache.Set(ctx, key, data, ttl); err != nil {
			c.logger.Printf("⚠️  [%s] Query cache yazma hatası [%s]: %v", c.name, key, err)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Row), nil
}

func (c *Connection) emitCache(name, key, query string) {
	c.emit(name, func() any {
		return CacheEvent{Connection: c.name, Key: key, SQL: query}
	})
}
