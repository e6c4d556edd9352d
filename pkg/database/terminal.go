package database

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// -----------------------------------------------------------------------------
// TERMINAL OPERATIONS
// -----------------------------------------------------------------------------
// Terminal metotlar builder state'ini tek bir SQL string'ine ve sıralı bind
// listesine dönüştürür, ardından Connection üzerinden çalıştırır.
//
// Her terminal önce sticky hatayı ve tablo seçimini kontrol eder; sorun varsa
// hiçbir şey çalıştırılmaz. Derlenen fragment'ların slot toplamı ledger
// uzunluğuyla karşılaştırılır (ErrBindingMismatch).
//
// Aynı builder üzerinde bir terminali iki kez çağırmak aynı SQL'i yeniden
// üretir ve statement'ı ikinci kez çalıştırır. Create/Update/Delete için bu
// çift yazma demektir; builder'ı yeniden kullanmak çağıranın sorumluluğudur.
// -----------------------------------------------------------------------------

// precheck, derlemeden önce sticky hatayı ve tablo seçimini kontrol eder.
func (b *Builder) precheck() error {
	if b.err != nil {
		return b.err
	}
	if b.state.table == "" {
		return ErrMissingTable
	}
	return nil
}

// whereSlots, WHERE clause'unun kapladığı slot sayısıdır. Temel predicate
// yoksa OR grubu render edilmez ve slot da saymaz.
func (b *Builder) whereSlots() int {
	if len(b.state.predicates) == 0 {
		return 0
	}
	return predicateSlots(b.state.predicates) + predicateSlots(b.state.orPredicates)
}

// finish, slot/ledger eşleşmesini doğrular ve lehçeye göre rebind eder.
func (b *Builder) finish(kind QueryKind, query string, slots int) (string, []any, error) {
	args := b.ledger.Snapshot(kind, len(b.state.predicates) > 0)
	if slots != len(args) {
		return "", nil, fmt.Errorf("%w: %d placeholders, %d bindings in %s",
			ErrBindingMismatch, slots, len(args), kind)
	}
	return b.grammar().Rebind(query), args, nil
}

// -----------------------------------------------------------------------------
// Compile-only
// -----------------------------------------------------------------------------

// ToSQL, SELECT statement'ını ve bind değerlerini döndürür; çalıştırmaz.
//
//	sql, args, err := conn.Table("users").Where("age", database.OpGt, 18).ToSQL()
//	// SELECT * FROM `users` WHERE age > ?;  [18]
func (b *Builder) ToSQL() (string, []any, error) {
	if err := b.precheck(); err != nil {
		return "", nil, err
	}

	query, err := compileSelect(b.state, b.grammar())
	if err != nil {
		return "", nil, err
	}
	return b.finish(KindSelect, query, b.whereSlots()+predicateSlots(b.state.having))
}

// CountSQL, "SELECT COUNT(*) AS count" statement'ını döndürür. ORDER BY,
// LIMIT ve OFFSET sayıma dahil edilmez.
func (b *Builder) CountSQL() (string, []any, error) {
	if err := b.precheck(); err != nil {
		return "", nil, err
	}

	st := b.state.clone()
	st.columns = []string{"COUNT(*) AS count"}
	st.orderings = nil
	st.limit, st.offset = 0, 0

	query, err := compileSelect(st, b.grammar())
	if err != nil {
		return "", nil, err
	}
	return b.finish(KindSelect, query, b.whereSlots()+predicateSlots(st.having))
}

// InsertSQL, INSERT statement'ını üretir. VALUES değerleri ledger'a yazılır;
// tekrar çağrılırsa önceki değerlerin yerini alır.
//
//	sql, args, _ := qb.Table("users").InsertSQL(database.Assignments{
//	    database.Set("name", "a"), database.Set("email", "b"),
//	})
//	// INSERT INTO `users` (`name`, `email`) VALUES (?, ?);  ["a" "b"]
func (b *Builder) InsertSQL(data Assignments) (string, []any, error) {
	if err := b.precheck(); err != nil {
		return "", nil, err
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("%w: insert into %q", ErrEmptyData, b.state.table)
	}

	columns := data.Columns()
	for _, column := range columns {
		if err := validateIdentifier(column, "column"); err != nil {
			return "", nil, err
		}
	}

	b.state.insertColumns = columns
	b.ledger.setValues(data.Values())

	query, err := compileInsert(b.state, b.grammar())
	if err != nil {
		return "", nil, err
	}
	return b.finish(KindInsert, query, len(columns))
}

// UpdateSQL, UPDATE statement'ını üretir. SET değerleri ReplaceAll ile mevcut
// where değerlerinin önüne yerleştirilir.
func (b *Builder) UpdateSQL(data Assignments) (string, []any, error) {
	if err := b.precheck(); err != nil {
		return "", nil, err
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("%w: update %q", ErrEmptyData, b.state.table)
	}

	columns := data.Columns()
	for _, column := range columns {
		if err := validateIdentifier(column, "column"); err != nil {
			return "", nil, err
		}
	}

	b.ledger.ReplaceAll(data.Values())

	query, err := compileUpdate(b.state, b.grammar(), columns)
	if err != nil {
		return "", nil, err
	}
	return b.finish(KindUpdate, query, len(columns)+b.whereSlots())
}

// DeleteSQL, DELETE statement'ını üretir. Kolon (tablo) listesi verilirse
// çok tablolu delete üretilir ve LIMIT uygulanmaz.
//
//	qb.Table("users").Where("id", database.OpEq, 5).DeleteSQL()
//	// DELETE FROM `users` WHERE id = ?;
func (b *Builder) DeleteSQL(columns ...string) (string, []any, error) {
	if err := b.precheck(); err != nil {
		return "", nil, err
	}

	wrapped := make([]string, 0, len(columns))
	for _, column := range columns {
		if err := validateIdentifier(column, "delete target"); err != nil {
			return "", nil, err
		}
		w, err := b.grammar().Wrap(column)
		if err != nil {
			return "", nil, err
		}
		wrapped = append(wrapped, w)
	}
	b.state.deleteColumns = wrapped

	query, err := compileDelete(b.state, b.grammar())
	if err != nil {
		return "", nil, err
	}
	return b.finish(KindDelete, query, b.whereSlots())
}

// -----------------------------------------------------------------------------
// Reads
// -----------------------------------------------------------------------------

// Get, SELECT sorgusunu çalıştırır ve tüm satırları döndürür. Kolon verilirse
// önceki Select() seçiminin yerini alır.
//
//	res, err := conn.Table("users").OrderBy("name", "ASC").Get(ctx)
//	for _, row := range res.Items { ... }
func (b *Builder) Get(ctx context.Context, columns ...string) (*Result, error) {
	if len(columns) > 0 {
		b.Select(columns...)
	}

	query, args, err := b.ToSQL()
	if err != nil {
		return nil, err
	}

	rows, err := b.conn.cachedQuery(ctx, query, args, b.cacheTTL)
	if err != nil {
		return nil, err
	}
	return newRowsResult(rows), nil
}

// First, ilk satırı döndürür. Satır yoksa (nil, nil) döner. LIMIT 1 bir
// kopyaya uygulanır; builder'ın kendi limiti değişmez.
func (b *Builder) First(ctx context.Context, columns ...string) (Row, error) {
	res, err := b.Copy().Limit(1).Get(ctx, columns...)
	if err != nil {
		return nil, err
	}
	if !res.HasItems() {
		return nil, nil
	}
	return res.Items[0], nil
}

// Count, koşullara uyan satır sayısını döndürür.
func (b *Builder) Count(ctx context.Context) (int64, error) {
	query, args, err := b.CountSQL()
	if err != nil {
		return 0, err
	}

	rows, err := b.conn.cachedQuery(ctx, query, args, b.cacheTTL)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := toInt64(rows[0]["count"])
	if err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return n, nil
}

// Exists, koşullara uyan en az bir satır olup olmadığını bildirir.
func (b *Builder) Exists(ctx context.Context) (bool, error) {
	n, err := b.Count(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// -----------------------------------------------------------------------------
// Writes
// -----------------------------------------------------------------------------

// Create, tek bir satır ekler.
func (b *Builder) Create(ctx context.Context, data Assignments) (bool, error) {
	query, args, err := b.InsertSQL(data)
	if err != nil {
		return false, err
	}

	res, err := b.conn.runExec(ctx, query, args)
	if err != nil {
		return false, err
	}
	return newExecResult(res).RowsAffected > 0, nil
}

// CreateGetID, satırı ekler ve üretilen birincil anahtarı döndürür.
// RETURNING destekleyen lehçelerde (PostgreSQL) "RETURNING pk" eklenir;
// diğerlerinde driver'ın LastInsertId değeri kullanılır.
func (b *Builder) CreateGetID(ctx context.Context, data Assignments) (int64, error) {
	query, args, err := b.InsertSQL(data)
	if err != nil {
		return 0, err
	}

	if b.grammar().SupportsReturning() {
		pk, err := b.grammar().Wrap(b.primaryKey)
		if err != nil {
			return 0, err
		}
		query = strings.TrimSuffix(query, ";") + " RETURNING " + pk + ";"

		rows, err := b.conn.runQuery(ctx, query, args)
		if err != nil {
			return 0, err
		}
		if len(rows) == 0 {
			return 0, fmt.Errorf("insert into %q returned no id", b.state.table)
		}
		return toInt64(rows[0][b.primaryKey])
	}

	res, err := b.conn.runExec(ctx, query, args)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// Update, koşullara uyan satırları günceller ve etkilenen satır sayısını döndürür.
//
//	n, err := conn.Table("users").
//	    Where("id", database.OpEq, 5).
//	    Update(ctx, database.Assignments{database.Set("name", "Jane")})
func (b *Builder) Update(ctx context.Context, data Assignments) (int64, error) {
	query, args, err := b.UpdateSQL(data)
	if err != nil {
		return 0, err
	}

	res, err := b.conn.runExec(ctx, query, args)
	if err != nil {
		return 0, err
	}
	return newExecResult(res).RowsAffected, nil
}

// Delete, koşullara uyan satırları siler ve etkilenen satır sayısını döndürür.
func (b *Builder) Delete(ctx context.Context, columns ...string) (int64, error) {
	query, args, err := b.DeleteSQL(columns...)
	if err != nil {
		return 0, err
	}

	res, err := b.conn.runExec(ctx, query, args)
	if err != nil {
		return 0, err
	}
	return newExecResult(res).RowsAffected, nil
}

// -----------------------------------------------------------------------------
// Raw escape hatches
// -----------------------------------------------------------------------------
// Builder state'ini kullanmazlar; yalnızca builder'ın bağlantısında çalışırlar.

// SelectRaw, ham bir SELECT çalıştırır.
func (b *Builder) SelectRaw(ctx context.Context, query string, args ...any) (*Result, error) {
	return b.conn.SelectRaw(ctx, query, args...)
}

// CreateRaw, ham bir INSERT çalıştırır ve son eklenen id'yi döndürür.
func (b *Builder) CreateRaw(ctx context.Context, query string, args ...any) (int64, error) {
	return b.conn.CreateRaw(ctx, query, args...)
}

// UpdateRaw, ham bir UPDATE çalıştırır ve etkilenen satır sayısını döndürür.
func (b *Builder) UpdateRaw(ctx context.Context, query string, args ...any) (int64, error) {
	return b.conn.UpdateRaw(ctx, query, args...)
}

// DeleteRaw, ham bir DELETE çalıştırır ve etkilenen satır sayısını döndürür.
func (b *Builder) DeleteRaw(ctx context.Context, query string, args ...any) (int64, error) {
	return b.conn.DeleteRaw(ctx, query, args...)
}

// SelectRaw, SQL'in SELECT olduğunu doğrular ve çalıştırır.
//
//	res, err := conn.SelectRaw(ctx, "SELECT * FROM users WHERE id = ?", 1)
func (c *Connection) SelectRaw(ctx context.Context, query string, args ...any) (*Result, error) {
	if err := ValidateQuery(query, KindSelect); err != nil {
		return nil, err
	}

	rows, err := c.runQuery(ctx, c.grammar.Rebind(query), args)
	if err != nil {
		return nil, err
	}
	return newRowsResult(rows), nil
}

// CreateRaw, SQL'in INSERT olduğunu doğrular, çalıştırır ve son eklenen id'yi
// döndürür. PostgreSQL'de id almak için sorgu "RETURNING id" içermelidir.
func (c *Connection) CreateRaw(ctx context.Context, query string, args ...any) (int64, error) {
	if err := ValidateQuery(query, KindInsert); err != nil {
		return 0, err
	}
	query = c.grammar.Rebind(query)

	if c.grammar.SupportsReturning() && strings.Contains(strings.ToUpper(query), "RETURNING") {
		rows, err := c.runQuery(ctx, query, args)
		if err != nil {
			return 0, err
		}
		if len(rows) == 0 {
			return 0, nil
		}
		return returningID(query, rows[0])
	}

	res, err := c.runExec(ctx, query, args)
	if err != nil {
		return 0, err
	}
	return newExecResult(res).LastInsertID, nil
}

// UpdateRaw, SQL'in UPDATE olduğunu doğrular ve etkilenen satır sayısını döndürür.
func (c *Connection) UpdateRaw(ctx context.Context, query string, args ...any) (int64, error) {
	return c.execRaw(ctx, query, KindUpdate, args)
}

// DeleteRaw, SQL'in DELETE olduğunu doğrular ve etkilenen satır sayısını döndürür.
func (c *Connection) DeleteRaw(ctx context.Context, query string, args ...any) (int64, error) {
	return c.execRaw(ctx, query, KindDelete, args)
}

func (c *Connection) execRaw(ctx context.Context, query string, kind QueryKind, args []any) (int64, error) {
	if err := ValidateQuery(query, kind); err != nil {
		return 0, err
	}

	res, err := c.runExec(ctx, c.grammar.Rebind(query), args)
	if err != nil {
		return 0, err
	}
	return newExecResult(res).RowsAffected, nil
}

// returningClause, RETURNING'den sonraki kolon listesini yakalar.
var returningClause = regexp.MustCompile(`(?is)\bRETURNING\s+(.+?)\s*;?\s*$`)

// returningID, "RETURNING a, b" listesindeki ilk kolonun değerini okur.
// Row bir map olduğundan kolon sırası sorgudan çıkarılır; alias varsa
// ("id AS new_id") alias kullanılır.
func returningID(query string, row Row) (int64, error) {
	m := returningClause.FindStringSubmatch(query)
	if m == nil {
		return 0, fmt.Errorf("%w: missing RETURNING clause", ErrInvalidRawQuery)
	}

	first, _, _ := strings.Cut(m[1], ",")
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: empty RETURNING clause", ErrInvalidRawQuery)
	}

	column := fields[len(fields)-1]
	if dot := strings.LastIndex(column, "."); dot >= 0 {
		column = column[dot+1:]
	}
	column = strings.Trim(column, "\"`")

	v, ok := row[column]
	if !ok {
		return 0, fmt.Errorf("returning column %q not found in result", column)
	}
	return toInt64(v)
}
