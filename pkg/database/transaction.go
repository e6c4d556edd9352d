// pkg/database/transaction.go
//
// Bir transaction; bir grup veritabanı işleminin tamamının ya tamamen
// başarılı olmasını ya da hiçbirinin uygulanmamış kabul edilmesini sağlar.
//
// Buradaki Transaction yapısı *sql.Tx'e bir sarmalayıcıdır. Transaction'a
// bağlı Connection kopyası aynı lehçe, logger ve limiter ile çalışır; tek fark
// executor'ın *sql.Tx olmasıdır. Her transaction log korelasyonu için bir
// UUID taşır.
//
// Örnek kullanım:
//
//	err := conn.Transaction(ctx, func(tx *database.Transaction) error {
//	    id, err := tx.Table("orders").CreateGetID(ctx, database.Assignments{
//	        database.Set("user_id", 7),
//	    })
//	    if err != nil {
//	        return err // rollback
//	    }
//	    _, err = tx.Table("order_items").Create(ctx, database.Assignments{
//	        database.Set("order_id", id),
//	    })
//	    return err
//	})

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/biyonik/fluent-query/pkg/events"
)

var errTxUnsupported = errors.New("database: connection has no *sql.DB to begin a transaction")

// Transaction
//
// Veritabanı transaction yapısını temsil eder.
// sql.Tx nesnesini saklar ve commit/rollback operasyonlarını
// daha okunabilir bir API ile gerçekleştirir.
type Transaction struct {
	ID   uuid.UUID
	tx   *sql.Tx
	conn *Connection
}

// Begin
//
// Yeni bir veritabanı transaction'ı başlatır.
// Dönen Transaction mutlaka Commit() veya Rollback() ile sonlandırılmalıdır.
func (c *Connection) Begin(ctx context.Context) (*Transaction, error) {
	if c.db == nil {
		return nil, errTxUnsupported
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		c.logger.Printf("❌ [ERROR] [%s] Transaction başlatılamadı: %v", c.name, err)
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	id := uuid.New()
	c.logger.Printf("🔄 [%s] Transaction başladı. [tx %s]", c.name, id)

	t := &Transaction{ID: id, tx: tx, conn: c.withExecutor(tx, id)}
	t.emit(events.TransactionBegan)
	return t, nil
}

func (t *Transaction) emit(name string) {
	t.conn.emit(name, func() any {
		return TransactionEvent{Connection: t.conn.name, TxID: t.ID}
	})
}

// Table, transaction'a bağlı yeni bir builder başlatır.
func (t *Transaction) Table(name string) *Builder {
	return t.conn.Table(name)
}

// Bind, mevcut bir builder'ın kopyasını transaction'a bağlar. Orijinal
// builder değişmez; böylece bir sorgu transaction içinde dallandırılabilir.
func (t *Transaction) Bind(b *Builder) *Builder {
	return b.withConnection(t.conn)
}

// Connection, transaction'a bağlı bağlantı görünümünü döndürür.
func (t *Transaction) Connection() *Connection {
	return t.conn
}

// Commit
//
// Başlatılmış olan transaction'ı başarılı şekilde sonlandırır.
func (t *Transaction) Commit() error {
	if err := t.tx.Commit(); err != nil {
		t.conn.logger.Printf("❌ [ERROR] [%s] Transaction commit hatası: %v [tx %s]", t.conn.name, err, t.ID)
		return fmt.Errorf("commit transaction: %w", err)
	}
	t.conn.logger.Printf("✅ [%s] Transaction commit edildi. [tx %s]", t.conn.name, t.ID)
	t.emit(events.TransactionCommitted)
	return nil
}

// Rollback
//
// Transaction sırasında bir hata oluştuğunda çağrılır.
// Yapılmış tüm değişiklikler geri alınır.
func (t *Transaction) Rollback() error {
	if err := t.tx.Rollback(); err != nil {
		if errors.Is(err, sql.ErrTxDone) {
			return err
		}
		t.conn.logger.Printf("❌ [ERROR] [%s] Transaction rollback hatası: %v [tx %s]", t.conn.name, err, t.ID)
		return fmt.Errorf("rollback transaction: %w", err)
	}
	t.conn.logger.Printf("❌ [%s] Transaction geri alındı. [tx %s]", t.conn.name, t.ID)
	t.emit(events.TransactionRolledBack)
	return nil
}

// Transaction, fn'i bir transaction içinde çalıştırır.
//
// fn nil dönerse commit edilir; hata dönerse ya da panic oluşursa rollback
// yapılır. Panic rollback'ten sonra yeniden fırlatılır.
func (c *Connection) Transaction(ctx context.Context, fn func(tx *Transaction) error) error {
	tx, err := c.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}
