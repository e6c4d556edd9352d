// pkg/database/model.go
//
// Model, tek bir tabloya ve birincil anahtara bağlı ince bir facade'dır.
// Her çağrı yeni bir Builder başlatır; Model'in kendisi state tutmaz ve
// eşzamanlı kullanım için güvenlidir.
//
// Kullanım:
//
//	users := conn.Model("users", "id")
//	row, err := users.Find(ctx, 42)
//	active, err := users.Where("status", database.OpEq, "active").Get(ctx)
//	id, err := users.CreateGetID(ctx, database.Assignments{
//	    database.Set("name", "John"),
//	})
//
// Timestamps açıksa Create created_at/updated_at, Update ise updated_at
// kolonlarını otomatik doldurur.

package database

import (
	"context"
	"time"
)

// Model, tablo + birincil anahtar facade'ı.
type Model struct {
	conn       *Connection
	table      string
	primaryKey string
	timestamps bool
	now        func() time.Time
}

// NewModel, bağlantı üzerinde bir Model oluşturur. primaryKey boşsa "id".
func NewModel(conn *Connection, table, primaryKey string) *Model {
	if primaryKey == "" {
		primaryKey = "id"
	}
	return &Model{
		conn:       conn,
		table:      table,
		primaryKey: primaryKey,
		now:        time.Now,
	}
}

// WithTimestamps
//
// Create ve Update çağrılarında created_at / updated_at alanlarının
// otomatik yönetilmesini açar.
func (m *Model) WithTimestamps() *Model {
	c := *m
	c.timestamps = true
	return &c
}

// Table, modelin tablo adını döndürür.
func (m *Model) Table() string {
	return m.table
}

// Query, modelin tablosunda yeni bir builder başlatır.
func (m *Model) Query() *Builder {
	return m.conn.Table(m.table).PrimaryKey(m.primaryKey)
}

func (m *Model) Select(columns ...string) *Builder {
	return m.Query().Select(columns...)
}

func (m *Model) Where(column string, op Operator, value any) *Builder {
	return m.Query().Where(column, op, value)
}

func (m *Model) OrWhere(column string, op Operator, value any) *Builder {
	return m.Query().OrWhere(column, op, value)
}

func (m *Model) WhereIn(column string, values ...any) *Builder {
	return m.Query().WhereIn(column, values...)
}

func (m *Model) WhereNull(column string) *Builder {
	return m.Query().WhereNull(column)
}

func (m *Model) Join(table, left string, op Operator, right string, kind JoinType) *Builder {
	return m.Query().Join(table, left, op, right, kind)
}

func (m *Model) OrderBy(column, direction string) *Builder {
	return m.Query().OrderBy(column, direction)
}

func (m *Model) Limit(limit int) *Builder {
	return m.Query().Limit(limit)
}

// All, tablodaki tüm satırları döndürür.
func (m *Model) All(ctx context.Context) (*Result, error) {
	return m.Query().Get(ctx)
}

// Get, verilen kolonlarla tüm satırları döndürür.
func (m *Model) Get(ctx context.Context, columns ...string) (*Result, error) {
	return m.Query().Get(ctx, columns...)
}

// First, tablodaki ilk satırı döndürür; yoksa (nil, nil).
func (m *Model) First(ctx context.Context, columns ...string) (Row, error) {
	return m.Query().First(ctx, columns...)
}

// Find, birincil anahtara göre tek satır döndürür; yoksa (nil, nil).
func (m *Model) Find(ctx context.Context, id any, columns ...string) (Row, error) {
	return m.Query().Where(m.primaryKey, OpEq, id).First(ctx, columns...)
}

func (m *Model) Count(ctx context.Context) (int64, error) {
	return m.Query().Count(ctx)
}

func (m *Model) Exists(ctx context.Context) (bool, error) {
	return m.Query().Exists(ctx)
}

// Create, bir satır ekler.
func (m *Model) Create(ctx context.Context, data Assignments) (bool, error) {
	return m.Query().Create(ctx, m.creating(data))
}

// CreateGetID, bir satır ekler ve birincil anahtarını döndürür.
func (m *Model) CreateGetID(ctx context.Context, data Assignments) (int64, error) {
	return m.Query().CreateGetID(ctx, m.creating(data))
}

// Update, birincil anahtarı id olan satırı günceller.
func (m *Model) Update(ctx context.Context, id any, data Assignments) (int64, error) {
	return m.Query().Where(m.primaryKey, OpEq, id).Update(ctx, m.updating(data))
}

// Destroy, birincil anahtarı id olan satırı siler.
func (m *Model) Destroy(ctx context.Context, id any) (int64, error) {
	return m.Query().Where(m.primaryKey, OpEq, id).Delete(ctx)
}

// SelectRaw, modelin bağlantısında ham bir SELECT çalıştırır.
func (m *Model) SelectRaw(ctx context.Context, query string, args ...any) (*Result, error) {
	return m.conn.SelectRaw(ctx, query, args...)
}

// creating, timestamps açıksa created_at ve updated_at ekler. Çağıranın
// verdiği değerler ezilmez.
func (m *Model) creating(data Assignments) Assignments {
	if !m.timestamps || len(data) == 0 {
		return data
	}
	now := m.now()
	return withDefault(withDefault(data, "created_at", now), "updated_at", now)
}

// updating, timestamps açıksa updated_at ekler.
func (m *Model) updating(data Assignments) Assignments {
	if !m.timestamps || len(data) == 0 {
		return data
	}
	return withDefault(data, "updated_at", m.now())
}

func withDefault(data Assignments, column string, value any) Assignments {
	for _, a := range data {
		if a.Column == column {
			return data
		}
	}
	out := make(Assignments, len(data), len(data)+1)
	copy(out, data)
	return append(out, Set(column, value))
}
