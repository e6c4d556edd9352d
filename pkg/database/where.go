package database

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// -----------------------------------------------------------------------------
// WHERE OPERATIONS
// -----------------------------------------------------------------------------
// Bu dosya, WHERE / OR WHERE / HAVING koşullarını üreten metotları içerir.
//
// Her koşul mutasyon anında "kolon OP ?" fragment'ına render edilir ve değer(ler)
// aynı anda ledger'a eklenir. IN / NOT IN / BETWEEN değerleri tek atomik batch
// olarak eklenir; fragment ve ledger hiçbir zaman ayrışmaz.
//
// OR koşulları WHERE zincirinin sonuna tek bir disjunction olarak eklenir:
//
//	Where(a).Where(b).OrWhere(c) → WHERE a AND b OR c
//
// En az bir Where() yoksa OrWhere() etkisizdir.
// -----------------------------------------------------------------------------

var errBetweenArity = errors.New("database: BETWEEN requires exactly 2 values")

// Where, sorguya bir AND koşulu ekler.
//
//	qb.Where("status", database.OpEq, "active")
//	qb.Where("age", database.OpGt, 18)
//	qb.Where("id", database.OpIn, []int{1, 2, 3}) → `id` IN (?, ?, ?)
func (b *Builder) Where(column string, op Operator, value any) *Builder {
	return b.addPredicate(SectionWhere, column, op, value)
}

// OrWhere, WHERE zincirinin sonundaki OR grubuna bir koşul ekler.
//
//	qb.Where("role", database.OpEq, "admin").OrWhere("role", database.OpEq, "moderator")
//	→ WHERE role = ? OR role = ?
func (b *Builder) OrWhere(column string, op Operator, value any) *Builder {
	return b.addPredicate(SectionOrWhere, column, op, value)
}

// WhereNull, kolonun NULL olmasını şart koşar: `deleted_at` IS NULL.
func (b *Builder) WhereNull(column string) *Builder {
	return b.addRaw(SectionWhere, column, "%s IS NULL")
}

// WhereNotNull, kolonun NULL olmamasını şart koşar.
func (b *Builder) WhereNotNull(column string) *Builder {
	return b.addRaw(SectionWhere, column, "%s IS NOT NULL")
}

// WhereIn, kolonun değerlerden biri olmasını şart koşar.
//
//	qb.WhereIn("status", "active", "pending") → status IN (?, ?)
func (b *Builder) WhereIn(column string, values ...any) *Builder {
	return b.addIn(SectionWhere, column, "IN", values)
}

// WhereNotIn, kolonun değerlerin hiçbiri olmamasını şart koşar.
func (b *Builder) WhereNotIn(column string, values ...any) *Builder {
	return b.addIn(SectionWhere, column, "NOT IN", values)
}

// OrWhereIn, OR grubuna IN koşulu ekler.
func (b *Builder) OrWhereIn(column string, values ...any) *Builder {
	return b.addIn(SectionOrWhere, column, "IN", values)
}

// OrWhereNotIn, OR grubuna NOT IN koşulu ekler.
func (b *Builder) OrWhereNotIn(column string, values ...any) *Builder {
	return b.addIn(SectionOrWhere, column, "NOT IN", values)
}

// WhereBetween, kolonun iki değer arasında olmasını şart koşar.
//
//	qb.WhereBetween("age", 18, 65) → age BETWEEN ? AND ?
func (b *Builder) WhereBetween(column string, min, max any) *Builder {
	return b.addBetween(SectionWhere, column, "BETWEEN", min, max)
}

// WhereNotBetween, kolonun iki değer arasında olmamasını şart koşar.
func (b *Builder) WhereNotBetween(column string, min, max any) *Builder {
	return b.addBetween(SectionWhere, column, "NOT BETWEEN", min, max)
}

// WhereDate, DATE(kolon) = ? koşulu ekler (MySQL/SQLite).
//
//	qb.WhereDate("created_at", "2024-01-15") → DATE(created_at) = ?
func (b *Builder) WhereDate(column string, date string) *Builder {
	return b.addFunc(column, "DATE", date)
}

// WhereYear, YEAR(kolon) = ? koşulu ekler.
func (b *Builder) WhereYear(column string, year int) *Builder {
	return b.addFunc(column, "YEAR", year)
}

// WhereMonth, MONTH(kolon) = ? koşulu ekler.
func (b *Builder) WhereMonth(column string, month int) *Builder {
	return b.addFunc(column, "MONTH", month)
}

// WhereDay, DAY(kolon) = ? koşulu ekler.
func (b *Builder) WhereDay(column string, day int) *Builder {
	return b.addFunc(column, "DAY", day)
}

// predicates, bölüme göre hedef fragment listesini döndürür.
func (b *Builder) predicates(s Section) *[]RenderedPredicate {
	switch s {
	case SectionOrWhere:
		return &b.state.orPredicates
	case SectionHaving:
		return &b.state.having
	default:
		return &b.state.predicates
	}
}

// push, fragment'ı ve değerlerini aynı anda ekler.
func (b *Builder) push(s Section, sql string, values ...any) *Builder {
	list := b.predicates(s)
	*list = append(*list, RenderedPredicate{SQL: sql, Slots: len(values)})
	b.ledger.AppendMany(s, values...)
	return b
}

// addPredicate, "kolon OP ?" fragment'ını üretir. IN ve BETWEEN slice
// değerleri placeholder listesine genişletilir.
func (b *Builder) addPredicate(s Section, column string, op Operator, value any) *Builder {
	if op.IsZero() {
		return b.fail(fmt.Errorf("%w: empty operator for column %q", ErrUnsupportedOperator, column))
	}
	if err := validateColumnExpression(column, "column"); err != nil {
		return b.fail(err)
	}

	switch op {
	case OpIn:
		if values, ok := toSlice(value); ok {
			return b.addIn(s, column, "IN", values)
		}
	case OpBetween:
		values, ok := toSlice(value)
		if !ok || len(values) != 2 {
			return b.fail(fmt.Errorf("%w: column %q", errBetweenArity, column))
		}
		return b.addBetween(s, column, "BETWEEN", values[0], values[1])
	}

	return b.push(s, fmt.Sprintf("%s %s ?", b.grammar().Quote(column), op), value)
}

// addIn, "kolon IN (?, ?, ...)" üretir. Boş liste için IN her zaman yanlış,
// NOT IN her zaman doğru olan sabit koşula dönüşür; "IN ()" geçersiz SQL'dir.
func (b *Builder) addIn(s Section, column, keyword string, values []any) *Builder {
	if err := validateColumnExpression(column, "column"); err != nil {
		return b.fail(err)
	}

	if len(values) == 0 {
		if keyword == "IN" {
			return b.push(s, "0 = 1")
		}
		return b.push(s, "1 = 1")
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	sql := fmt.Sprintf("%s %s (%s)", b.grammar().Quote(column), keyword, placeholders)
	return b.push(s, sql, values...)
}

func (b *Builder) addBetween(s Section, column, keyword string, min, max any) *Builder {
	if err := validateColumnExpression(column, "column"); err != nil {
		return b.fail(err)
	}
	sql := fmt.Sprintf("%s %s ? AND ?", b.grammar().Quote(column), keyword)
	return b.push(s, sql, min, max)
}

// addRaw, değer almayan bir koşul (IS NULL gibi) ekler.
func (b *Builder) addRaw(s Section, column, format string) *Builder {
	if err := validateColumnExpression(column, "column"); err != nil {
		return b.fail(err)
	}
	return b.push(s, fmt.Sprintf(format, b.grammar().Quote(column)))
}

func (b *Builder) addFunc(column, fn string, value any) *Builder {
	if err := validateIdentifier(column, "column"); err != nil {
		return b.fail(err)
	}
	return b.push(SectionWhere, fmt.Sprintf("%s(%s) = ?", fn, b.grammar().Quote(column)), value)
}

// toSlice, []byte dışındaki herhangi bir slice/array değerini []any'e çevirir.
func toSlice(value any) ([]any, bool) {
	if values, ok := value.([]any); ok {
		return values, true
	}
	if _, ok := value.([]byte); ok {
		return nil, false
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
