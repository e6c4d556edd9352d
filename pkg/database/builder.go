package database

import (
	"fmt"
	"strings"
	"time"
)

// -----------------------------------------------------------------------------
// QUERY BUILDER - TEMEL
// -----------------------------------------------------------------------------
// Builder; tablo, kolonlar, where'lar, join'ler, order, group, having, limit,
// offset gibi state bilgilerini ve parametre ledger'ını tutar. Her mutator
// aynı builder'ı döndürür (method chaining).
//
// Fragment'lar mutasyon anında render edilir ve ledger aynı anda doldurulur.
// Terminal bir çağrı (Get, First, Count, Create, Update, Delete ...) state'i
// SQL'e dönüştürür ve Connection üzerinden çalıştırır.
//
// Hata yönetimi: Mutator'lar hata döndüremediği için ilk hata builder üzerinde
// saklanır (sticky error). Err() ile okunabilir; terminal çağrılar hiçbir şey
// çalıştırmadan bu hatayı döndürür.
//
// Thread Safety: Builder thread-safe DEĞİLDİR. Her mantıksal statement kendi
// builder'ına sahip olmalıdır.
// -----------------------------------------------------------------------------

// statementState, tek bir statement için biriken fragment'lardır.
type statementState struct {
	table         string
	alias         string
	columns       []string
	predicates    []RenderedPredicate
	orPredicates  []RenderedPredicate
	joins         []string
	orderings     []string
	groupBy       string
	having        []RenderedPredicate
	limit         int
	offset        int
	insertColumns []string
	deleteColumns []string
}

// clone, state'in derin kopyasını döndürür.
func (st *statementState) clone() *statementState {
	c := *st
	c.columns = cloneSlice(st.columns)
	c.predicates = cloneSlice(st.predicates)
	c.orPredicates = cloneSlice(st.orPredicates)
	c.joins = cloneSlice(st.joins)
	c.orderings = cloneSlice(st.orderings)
	c.having = cloneSlice(st.having)
	c.insertColumns = cloneSlice(st.insertColumns)
	c.deleteColumns = cloneSlice(st.deleteColumns)
	return &c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append([]T(nil), s...)
}

// fromClause, "`table`" ya da "`table` AS `alias`" üretir.
func (st *statementState) fromClause(g Grammar) (string, error) {
	table, err := g.Wrap(st.table)
	if err != nil {
		return "", fmt.Errorf("table wrap error: %w", err)
	}
	if st.alias == "" {
		return table, nil
	}

	alias, err := g.Wrap(st.alias)
	if err != nil {
		return "", fmt.Errorf("alias wrap error: %w", err)
	}
	return table + " AS " + alias, nil
}

// Builder, fluent SQL statement builder'ıdır.
type Builder struct {
	conn       *Connection
	state      *statementState
	ledger     *Ledger
	primaryKey string
	cacheTTL   time.Duration
	err        error
}

// NewBuilder, executor ve grammar'ı alarak bağımsız bir Builder üretir.
//
// Parametreler:
//   - executor: SQL komutlarını çalıştıracak executor (*sql.DB veya *sql.Tx).
//     Yalnızca SQL derlemek için nil verilebilir.
//   - grammar: SQL lehçesi (MySQL, PostgreSQL, SQLite). nil ise MySQL.
//
// Registry üzerinden açılan bağlantılar için Connection.Table tercih edilmelidir.
func NewBuilder(executor QueryExecutor, grammar Grammar) *Builder {
	if grammar == nil {
		grammar = NewMySQLGrammar()
	}
	return newBuilder(&Connection{
		name:     "adhoc",
		executor: executor,
		grammar:  grammar,
		logger:   defaultLogger(nil),
	})
}

func newBuilder(conn *Connection) *Builder {
	return &Builder{
		conn:       conn,
		state:      &statementState{},
		ledger:     NewLedger(),
		primaryKey: "id",
	}
}

// Err, mutasyon sırasında kaydedilen ilk hatayı döndürür.
func (b *Builder) Err() error {
	return b.err
}

// fail, ilk hatayı saklar; sonraki hatalar yok sayılır.
func (b *Builder) fail(err error) *Builder {
	if b.err == nil && err != nil {
		b.err = err
	}
	return b
}

func (b *Builder) grammar() Grammar {
	return b.conn.grammar
}

// Table, sorgunun çalışacağı tabloyu belirler.
//
//	qb.Table("users")
//	qb.Table("users as u") // alias ile
func (b *Builder) Table(name string) *Builder {
	table, alias := splitAlias(name)
	if err := validateIdentifier(table, "table"); err != nil {
		return b.fail(err)
	}
	b.state.table = table
	if alias != "" {
		return b.As(alias)
	}
	return b
}

// As, tabloya alias verir: FROM `users` AS `u`.
func (b *Builder) As(alias string) *Builder {
	if err := validateIdentifier(alias, "alias"); err != nil {
		return b.fail(err)
	}
	b.state.alias = alias
	return b
}

// splitAlias, "users as u" ya da "users u" formatını ayırır.
func splitAlias(name string) (string, string) {
	fields := strings.Fields(name)
	switch {
	case len(fields) == 3 && strings.EqualFold(fields[1], "as"):
		return fields[0], fields[2]
	case len(fields) == 2:
		return fields[0], fields[1]
	default:
		return strings.TrimSpace(name), ""
	}
}

// PrimaryKey, CreateGetID (RETURNING) ve Model.Find için birincil anahtarı belirler.
// Varsayılan "id".
func (b *Builder) PrimaryKey(column string) *Builder {
	if err := validateIdentifier(column, "primary key"); err != nil {
		return b.fail(err)
	}
	b.primaryKey = column
	return b
}

// Select, sorgudan döndürülecek kolonları belirler. Her çağrı önceki seçimi
// değiştirir.
//
//	qb.Select("id", "name", "email")
//	qb.Select("COUNT(*) AS total")
func (b *Builder) Select(columns ...string) *Builder {
	selected := make([]string, 0, len(columns))
	for _, column := range columns {
		if err := validateColumnExpression(column, "column"); err != nil {
			return b.fail(err)
		}
		selected = append(selected, b.grammar().Quote(strings.TrimSpace(column)))
	}
	b.state.columns = selected
	return b
}

// OrderBy, sonuçları kolona göre sıralar.
//
// Direction whitelist kontrolünden geçer: "ASC"/"DESC" (case-insensitive).
// Boş ya da geçersiz değer "ASC" kabul edilir.
//
//	qb.OrderBy("created_at", "DESC")
//	qb.OrderBy("name", "")
func (b *Builder) OrderBy(column string, direction string) *Builder {
	if err := validateColumnExpression(column, "column"); err != nil {
		return b.fail(err)
	}

	dir := OrderAsc
	if strings.EqualFold(strings.TrimSpace(direction), string(OrderDesc)) {
		dir = OrderDesc
	}

	b.state.orderings = append(b.state.orderings, b.grammar().Quote(column)+" "+string(dir))
	return b
}

// GroupBy, GROUP BY ifadesini belirler. Tekrar çağrılırsa önceki değer değişir.
//
//	qb.GroupBy("status")
//	qb.GroupBy("country", "city")
func (b *Builder) GroupBy(columns ...string) *Builder {
	quoted := make([]string, 0, len(columns))
	for _, column := range columns {
		if err := validateColumnExpression(column, "column"); err != nil {
			return b.fail(err)
		}
		quoted = append(quoted, b.grammar().Quote(column))
	}
	b.state.groupBy = strings.Join(quoted, ", ")
	return b
}

// Having, HAVING koşulu ekler. Değer HAVING bölümüne bağlanır.
//
//	qb.GroupBy("status").Having("COUNT(*)", database.OpGt, 5)
func (b *Builder) Having(column string, op Operator, value any) *Builder {
	return b.addPredicate(SectionHaving, column, op, value)
}

// Limit, döndürülecek maksimum satır sayısını belirler. 0 sınırsızdır;
// negatif değerler 0 kabul edilir.
func (b *Builder) Limit(limit int) *Builder {
	b.state.limit = max(limit, 0)
	return b
}

// Offset, atlanacak satır sayısını belirler. Negatif değerler 0 kabul edilir.
//
//	qb.Limit(10).Offset(20) → LIMIT 10 OFFSET 20
func (b *Builder) Offset(offset int) *Builder {
	b.state.offset = max(offset, 0)
	return b
}

// Remember, Get sonuçlarını bağlantının result cache'inde ttl süresince saklar.
// Bağlantıda cache yapılandırılmamışsa etkisizdir.
func (b *Builder) Remember(ttl time.Duration) *Builder {
	b.cacheTTL = ttl
	return b
}

// Copy, state'in ve ledger'ın derin kopyasıyla bağımsız bir builder döndürür.
// Kopya aynı bağlantıyı kullanır.
func (b *Builder) Copy() *Builder {
	return &Builder{
		conn:       b.conn,
		state:      b.state.clone(),
		ledger:     b.ledger.clone(),
		primaryKey: b.primaryKey,
		cacheTTL:   b.cacheTTL,
		err:        b.err,
	}
}

// withConnection, kopyayı başka bir bağlantıya (örn. transaction) bağlar.
func (b *Builder) withConnection(conn *Connection) *Builder {
	c := b.Copy()
	c.conn = conn
	return c
}
