package database

// -----------------------------------------------------------------------------
// Grammar Interface
// -----------------------------------------------------------------------------
// Grammar, SQL lehçesine özgü kuralları (identifier sarmalama, placeholder
// sözdizimi, RETURNING desteği) tek noktada toplar. Statement montajı lehçeden
// bağımsızdır; render sonrası Rebind ile lehçenin placeholder'larına çevrilir.
//
// Implementasyonlar:
// - MySQLGrammar: MySQL/MariaDB (backtick, ?)
// - PostgresGrammar: PostgreSQL (çift tırnak, $1..$n, RETURNING)
// - SQLiteGrammar: SQLite (çift tırnak, ?)
// -----------------------------------------------------------------------------

// Grammar, SQL lehçesine özgü sorgu üretimini tanımlar.
type Grammar interface {
	// Name, lehçenin adını döndürür (mysql | postgres | sqlite).
	Name() string

	// Wrap, identifier'ın her segmentini doğrular ve sarar.
	// MySQL: "users.id" → "`users`.`id`", PostgreSQL: "users" → `"users"`
	Wrap(value string) (string, error)

	// Quote, yalnızca rezerve kelime içeren path'leri sarar.
	Quote(column string) string

	// Rebind, "?" placeholder'lı SQL'i lehçenin placeholder sözdizimine çevirir.
	Rebind(query string) string

	// SupportsReturning, INSERT ... RETURNING desteği olup olmadığını bildirir.
	SupportsReturning() bool
}

// GrammarFor, lehçe adına göre Grammar döndürür.
func GrammarFor(dialect string) (Grammar, bool) {
	switch dialect {
	case "mysql", "mariadb":
		return NewMySQLGrammar(), true
	case "postgres", "postgresql", "pgsql":
		return NewPostgresGrammar(), true
	case "sqlite", "sqlite3":
		return NewSQLiteGrammar(), true
	default:
		return nil, false
	}
}
