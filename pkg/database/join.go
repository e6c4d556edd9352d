package database

import (
	"fmt"
)

// -----------------------------------------------------------------------------
// JOIN OPERATIONS
// -----------------------------------------------------------------------------
// Join'ler mutasyon anında "<TYPE> JOIN `table` ON left op right" fragment'ına
// render edilir ve ekleme sırasıyla saklanır. ON tarafındaki kolonlar değer
// değil kolon referansıdır, ledger'a bir şey eklenmez.
// -----------------------------------------------------------------------------

// Join, verilen türde bir JOIN ekler.
//
//	qb.Join("posts", "users.id", database.OpEq, "posts.user_id", database.LeftJoin)
//	→ LEFT JOIN `posts` ON users.id = posts.user_id
func (b *Builder) Join(table, left string, op Operator, right string, kind JoinType) *Builder {
	if op.IsZero() {
		return b.fail(fmt.Errorf("%w: empty join operator for table %q", ErrUnsupportedOperator, table))
	}

	switch kind {
	case InnerJoin, LeftJoin, RightJoin, CrossJoin:
	case "":
		kind = InnerJoin
	default:
		return b.fail(fmt.Errorf("database: unsupported join type %q", kind))
	}

	name, alias := splitAlias(table)
	if err := validateIdentifier(name, "join table"); err != nil {
		return b.fail(err)
	}
	wrapped, err := b.grammar().Wrap(name)
	if err != nil {
		return b.fail(err)
	}
	if alias != "" {
		if err := validateIdentifier(alias, "join alias"); err != nil {
			return b.fail(err)
		}
		wrappedAlias, err := b.grammar().Wrap(alias)
		if err != nil {
			return b.fail(err)
		}
		wrapped += " AS " + wrappedAlias
	}

	for _, column := range []string{left, right} {
		if err := validateIdentifier(column, "join column"); err != nil {
			return b.fail(err)
		}
	}

	g := b.grammar()
	b.state.joins = append(b.state.joins, fmt.Sprintf("%s JOIN %s ON %s %s %s",
		kind, wrapped, g.Quote(left), op, g.Quote(right)))
	return b
}

// InnerJoin, INNER JOIN kısayoludur.
func (b *Builder) InnerJoin(table, left string, op Operator, right string) *Builder {
	return b.Join(table, left, op, right, InnerJoin)
}

// LeftJoin, LEFT JOIN kısayoludur.
func (b *Builder) LeftJoin(table, left string, op Operator, right string) *Builder {
	return b.Join(table, left, op, right, LeftJoin)
}

// RightJoin, RIGHT JOIN kısayoludur.
func (b *Builder) RightJoin(table, left string, op Operator, right string) *Builder {
	return b.Join(table, left, op, right, RightJoin)
}
