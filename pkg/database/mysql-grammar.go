package database

// -----------------------------------------------------------------------------
// MySQL Grammar
// -----------------------------------------------------------------------------
// MySQL/MariaDB için backtick sarmalama ve "?" placeholder'ları.
// Wrap panic yerine error döner; hata Builder'da sticky olarak saklanır.
// -----------------------------------------------------------------------------

type MySQLGrammar struct{}

func NewMySQLGrammar() *MySQLGrammar {
	return &MySQLGrammar{}
}

func (g *MySQLGrammar) Name() string {
	return "mysql"
}

// Wrap, kolon ve tablo isimlerini MySQL backtick'leri ile sarmalar.
func (g *MySQLGrammar) Wrap(value string) (string, error) {
	return wrapSegments(value, "`", "`")
}

func (g *MySQLGrammar) Quote(column string) string {
	return Quote(column)
}

// Rebind, MySQL "?" kullandığı için SQL'i olduğu gibi döndürür.
func (g *MySQLGrammar) Rebind(query string) string {
	return query
}

func (g *MySQLGrammar) SupportsReturning() bool {
	return false
}
