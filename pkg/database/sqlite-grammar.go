package database

// -----------------------------------------------------------------------------
// SQLite Grammar
// -----------------------------------------------------------------------------
// SQLite hem backtick hem çift tırnak kabul eder; standart olan çift tırnak
// kullanılır. Placeholder "?" ve LastInsertId desteklidir.
// -----------------------------------------------------------------------------

type SQLiteGrammar struct{}

func NewSQLiteGrammar() *SQLiteGrammar {
	return &SQLiteGrammar{}
}

func (g *SQLiteGrammar) Name() string {
	return "sqlite"
}

func (g *SQLiteGrammar) Wrap(value string) (string, error) {
	return wrapSegments(value, `"`, `"`)
}

func (g *SQLiteGrammar) Quote(column string) string {
	return quoteWith(column, `"`, `"`)
}

func (g *SQLiteGrammar) Rebind(query string) string {
	return query
}

func (g *SQLiteGrammar) SupportsReturning() bool {
	return false
}
