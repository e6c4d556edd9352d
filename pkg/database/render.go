package database

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// -----------------------------------------------------------------------------
// CLAUSE RENDERERS
// -----------------------------------------------------------------------------
// Builder state'inin parçalarını SQL clause'larına çeviren saf fonksiyonlar.
// Hiçbiri input'u değiştirmez, ledger'a dokunmaz. Clause yoksa ok=false döner.
//
// Statement sırası türe göre sabittir:
//
//	SELECT cols FROM table [AS alias] JOIN WHERE GROUP BY HAVING ORDER BY LIMIT/OFFSET;
//	INSERT INTO table (cols) VALUES (?, ...);
//	UPDATE table JOIN SET col = ?, ... WHERE ORDER BY LIMIT/OFFSET;
//	DELETE [cols] FROM table JOIN WHERE ORDER BY [LIMIT];
// -----------------------------------------------------------------------------

// RenderedPredicate, mutasyon anında render edilmiş tek bir koşuldur.
// Slots, fragment'ın ledger'da kapladığı değer sayısıdır.
type RenderedPredicate struct {
	SQL   string
	Slots int
}

// renderWhere, predicate'leri AND zinciri olarak, orPredicates'i ise zincirin
// sonuna tek bir OR disjunction'ı olarak ekler. predicates boşsa clause yoktur.
func renderWhere(predicates, orPredicates []RenderedPredicate) (string, bool) {
	if len(predicates) == 0 {
		return "", false
	}

	var sb strings.Builder
	sb.WriteString("WHERE ")
	sb.WriteString(strings.Join(predicateSQL(predicates), " AND "))

	if len(orPredicates) > 0 {
		sb.WriteString(" OR ")
		sb.WriteString(strings.Join(predicateSQL(orPredicates), " OR "))
	}
	return sb.String(), true
}

func predicateSQL(predicates []RenderedPredicate) []string {
	return lo.Map(predicates, func(p RenderedPredicate, _ int) string { return p.SQL })
}

func predicateSlots(predicates []RenderedPredicate) int {
	return lo.SumBy(predicates, func(p RenderedPredicate) int { return p.Slots })
}

// renderOrderBy, "ORDER BY c1 ASC, c2 DESC" üretir.
func renderOrderBy(orderings []string) (string, bool) {
	if len(orderings) == 0 {
		return "", false
	}
	return "ORDER BY " + strings.Join(orderings, ", "), true
}

// renderGroupBy, "GROUP BY expr" üretir.
func renderGroupBy(groupBy string) (string, bool) {
	if groupBy == "" {
		return "", false
	}
	return "GROUP BY " + groupBy, true
}

// renderHaving, "HAVING h1 AND h2" üretir.
func renderHaving(having []RenderedPredicate) (string, bool) {
	if len(having) == 0 {
		return "", false
	}
	return "HAVING " + strings.Join(predicateSQL(having), " AND "), true
}

// renderJoin, join fragment'larını ekleme sırasıyla birleştirir.
// Outer join'lerde sıra anlamlıdır, değiştirilmez.
func renderJoin(joins []string) (string, bool) {
	if len(joins) == 0 {
		return "", false
	}
	return strings.Join(joins, " "), true
}

// renderLimitOffset, okuma yolu için "LIMIT n OFFSET m" üretir.
// limit 0 sınırsız demektir; offset yalnızca pozitif limit ile yazılır.
func renderLimitOffset(limit, offset int) (string, bool) {
	if limit <= 0 {
		return "", false
	}
	return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset), true
}

// renderLimitForDelete, DELETE için yalnızca "LIMIT n" üretir.
func renderLimitForDelete(limit int) (string, bool) {
	if limit <= 0 {
		return "", false
	}
	return fmt.Sprintf("LIMIT %d", limit), true
}

// clauses, var olan parçaları tek boşlukla birleştirip ";" ile bitirir.
type clauses []string

func (c *clauses) add(part string, ok bool) {
	if ok {
		*c = append(*c, part)
	}
}

func (c clauses) statement() string {
	return strings.Join(c, " ") + ";"
}

// compileSelect, SELECT statement'ını state'ten üretir.
func compileSelect(st *statementState, g Grammar) (string, error) {
	table, err := st.fromClause(g)
	if err != nil {
		return "", err
	}

	columns := "*"
	if len(st.columns) > 0 {
		columns = strings.Join(st.columns, ", ")
	}

	var c clauses
	c.add("SELECT "+columns+" FROM "+table, true)
	c.add(renderJoin(st.joins))
	c.add(renderWhere(st.predicates, st.orPredicates))
	c.add(renderGroupBy(st.groupBy))
	c.add(renderHaving(st.having))
	c.add(renderOrderBy(st.orderings))
	c.add(renderLimitOffset(st.limit, st.offset))
	return c.statement(), nil
}

// compileInsert, INSERT statement'ını üretir. Kolonlar her zaman sarılır.
func compileInsert(st *statementState, g Grammar) (string, error) {
	table, err := g.Wrap(st.table)
	if err != nil {
		return "", fmt.Errorf("table wrap error: %w", err)
	}

	columns, err := WrapMultiple(g, st.insertColumns)
	if err != nil {
		return "", fmt.Errorf("column wrap error: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);",
		table,
		strings.Join(columns, ", "),
		placeholders,
	), nil
}

// compileUpdate, UPDATE statement'ını üretir. SET placeholder'ları WHERE
// placeholder'larından önce gelir; ledger bu sırayı ReplaceAll ile izler.
func compileUpdate(st *statementState, g Grammar, setColumns []string) (string, error) {
	table, err := g.Wrap(st.table)
	if err != nil {
		return "", fmt.Errorf("table wrap error: %w", err)
	}

	sets, err := WrapMultiple(g, setColumns)
	if err != nil {
		return "", fmt.Errorf("column wrap error: %w", err)
	}
	for i := range sets {
		sets[i] += " = ?"
	}

	var c clauses
	c.add("UPDATE "+table, true)
	c.add(renderJoin(st.joins))
	c.add("SET "+strings.Join(sets, ", "), true)
	c.add(renderWhere(st.predicates, st.orPredicates))
	c.add(renderOrderBy(st.orderings))
	c.add(renderLimitOffset(st.limit, st.offset))
	return c.statement(), nil
}

// compileDelete, DELETE statement'ını üretir. Çok tablolu delete (kolon
// listesi verilmiş) ile satır limitli delete birbirini dışlar.
func compileDelete(st *statementState, g Grammar) (string, error) {
	table, err := g.Wrap(st.table)
	if err != nil {
		return "", fmt.Errorf("table wrap error: %w", err)
	}

	head := "DELETE FROM " + table
	if len(st.deleteColumns) > 0 {
		head = "DELETE " + strings.Join(st.deleteColumns, ", ") + " FROM " + table
	}

	var c clauses
	c.add(head, true)
	c.add(renderJoin(st.joins))
	c.add(renderWhere(st.predicates, st.orPredicates))
	c.add(renderOrderBy(st.orderings))
	if len(st.deleteColumns) == 0 {
		c.add(renderLimitForDelete(st.limit))
	}
	return c.statement(), nil
}
