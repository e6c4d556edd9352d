// -----------------------------------------------------------------------------
// Database Types - SQL Builder İçin Yardımcı Tipler
// -----------------------------------------------------------------------------
// Bu dosya, Builder'ın kullandığı enum-benzeri tipleri içerir: operatörler,
// sıralama yönleri, join türleri, sorgu türleri ve INSERT/UPDATE verisi için
// sıralı Assignments listesi.
//
// Operator bir struct olduğu için paket dışından yalnızca tanımlı değerler
// kullanılabilir; string elinde olan çağıran ParseOperator ile dönüştürür.
// -----------------------------------------------------------------------------

package database

import (
	"fmt"
	"sort"
	"strings"
)

// Operator, where/orWhere/having/join için izin verilen karşılaştırma operatörüdür.
type Operator struct {
	sql string
}

// String, operatörün SQL karşılığını döndürür.
func (o Operator) String() string {
	return o.sql
}

// IsZero, operatörün tanımsız (sıfır değer) olup olmadığını bildirir.
func (o Operator) IsZero() bool {
	return o.sql == ""
}

var (
	OpEq      = Operator{"="}
	OpGt      = Operator{">"}
	OpGte     = Operator{">="}
	OpNeq     = Operator{"!="}
	OpNotEq   = Operator{"<>"}
	OpLt      = Operator{"<"}
	OpLte     = Operator{"<="}
	OpBetween = Operator{"BETWEEN"}
	OpLike    = Operator{"LIKE"}
	OpIn      = Operator{"IN"}
	OpAll     = Operator{"ALL"}
	OpAnd     = Operator{"AND"}
	OpAny     = Operator{"ANY"}
	OpExists  = Operator{"EXISTS"}
	OpNot     = Operator{"NOT"}
	OpOr      = Operator{"OR"}
	OpSome    = Operator{"SOME"}
)

var operatorsBySQL = map[string]Operator{
	"=":       OpEq,
	">":       OpGt,
	">=":      OpGte,
	"!=":      OpNeq,
	"<>":      OpNotEq,
	"<":       OpLt,
	"<=":      OpLte,
	"BETWEEN": OpBetween,
	"LIKE":    OpLike,
	"IN":      OpIn,
	"ALL":     OpAll,
	"AND":     OpAnd,
	"ANY":     OpAny,
	"EXISTS":  OpExists,
	"NOT":     OpNot,
	"OR":      OpOr,
	"SOME":    OpSome,
}

// ParseOperator, string operatörü whitelist'e göre Operator'a çevirir.
//
// Örnek:
//
//	op, err := ParseOperator("like") // OpLike
//	_, err = ParseOperator("; DROP") // ErrUnsupportedOperator
func ParseOperator(s string) (Operator, error) {
	op, ok := operatorsBySQL[strings.ToUpper(strings.TrimSpace(s))]
	if !ok {
		return Operator{}, fmt.Errorf("%w: %q", ErrUnsupportedOperator, s)
	}
	return op, nil
}

// OrderDirection, ORDER BY için izin verilen yönleri temsil eder.
type OrderDirection string

const (
	OrderAsc  OrderDirection = "ASC"
	OrderDesc OrderDirection = "DESC"
)

// JoinType, JOIN tiplerini temsil eden enum-like yapıdır.
type JoinType string

const (
	InnerJoin JoinType = "INNER"
	LeftJoin  JoinType = "LEFT"
	RightJoin JoinType = "RIGHT"
	CrossJoin JoinType = "CROSS"
)

// QueryKind, dört DML statement türünü temsil eder.
type QueryKind string

const (
	KindSelect QueryKind = "SELECT"
	KindInsert QueryKind = "INSERT"
	KindUpdate QueryKind = "UPDATE"
	KindDelete QueryKind = "DELETE"
)

// Assignment, INSERT/UPDATE için tek bir kolon = değer çiftidir.
type Assignment struct {
	Column string
	Value  any
}

// Set, bir Assignment oluşturur.
//
//	qb.Create(ctx, database.Assignments{
//	    database.Set("name", "John"),
//	    database.Set("email", "john@example.com"),
//	})
func Set(column string, value any) Assignment {
	return Assignment{Column: column, Value: value}
}

// Assignments, kolon sırası korunmuş veri listesidir. Go map'leri sırasız
// olduğundan INSERT kolon sırası çağıranın verdiği sıra olsun diye slice kullanılır.
type Assignments []Assignment

// FromMap, map'i kolon adına göre sıralanmış Assignments'a çevirir.
// Sıralama, aynı map için her zaman aynı SQL'in üretilmesini sağlar.
func FromMap(data map[string]any) Assignments {
	columns := make([]string, 0, len(data))
	for column := range data {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	out := make(Assignments, 0, len(columns))
	for _, column := range columns {
		out = append(out, Set(column, data[column]))
	}
	return out
}

// Columns, kolon adlarını sırasıyla döndürür.
func (a Assignments) Columns() []string {
	columns := make([]string, len(a))
	for i, item := range a {
		columns[i] = item.Column
	}
	return columns
}

// Values, değerleri sırasıyla döndürür.
func (a Assignments) Values() []any {
	values := make([]any, len(a))
	for i, item := range a {
		values[i] = item.Value
	}
	return values
}
