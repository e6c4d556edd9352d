package database

import (
	"strconv"
	"strings"
)

// -----------------------------------------------------------------------------
// PostgreSQL Grammar
// -----------------------------------------------------------------------------
// Çift tırnak ile sarmalama, $1..$n placeholder'ları ve RETURNING desteği.
// -----------------------------------------------------------------------------

type PostgresGrammar struct{}

func NewPostgresGrammar() *PostgresGrammar {
	return &PostgresGrammar{}
}

func (g *PostgresGrammar) Name() string {
	return "postgres"
}

func (g *PostgresGrammar) Wrap(value string) (string, error) {
	return wrapSegments(value, `"`, `"`)
}

func (g *PostgresGrammar) Quote(column string) string {
	return quoteWith(column, `"`, `"`)
}

// Rebind, "?" işaretlerini sırasıyla $1, $2 ... ile değiştirir.
// Tek ya da çift tırnaklı bölgelerdeki "?" karakterlerine dokunulmaz.
func (g *PostgresGrammar) Rebind(query string) string {
	var sb strings.Builder
	sb.Grow(len(query) + 8)

	n := 0
	var quote rune
	for _, r := range query {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
			sb.WriteRune(r)
		case r == '\'' || r == '"':
			quote = r
			sb.WriteRune(r)
		case r == '?':
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func (g *PostgresGrammar) SupportsReturning() bool {
	return true
}
