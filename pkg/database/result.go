package database

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// RESULT HELPERS
// -----------------------------------------------------------------------------
// Driver çıktısını (satır kümesi, etkilenen satır sayısı, son eklenen id) tek
// bir Result yapısına normalize eder. Satırlar generic Row map'leridir; typed
// domain nesnelerine hydration bu paketin işi değildir.
// -----------------------------------------------------------------------------

// Row, tek bir sonuç satırıdır: kolon adı → değer.
type Row map[string]any

// Has, kolonun satırda olup olmadığını bildirir.
func (r Row) Has(column string) bool {
	_, ok := r[column]
	return ok
}

// String, kolon değerini string olarak döndürür. NULL için "" döner.
func (r Row) String(column string) string {
	switch v := r[column].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Int64, kolon değerini int64'e çevirir.
func (r Row) Int64(column string) (int64, error) {
	return toInt64(r[column])
}

// Decimal, DECIMAL/NUMERIC kolonlarını float kaybı olmadan okur.
func (r Row) Decimal(column string) (decimal.Decimal, error) {
	switch v := r[column].(type) {
	case nil:
		return decimal.Zero, nil
	case string:
		return decimal.NewFromString(v)
	case []byte:
		return decimal.NewFromString(string(v))
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	default:
		return decimal.NewFromString(fmt.Sprint(v))
	}
}

// Result, normalize edilmiş statement sonucudur.
type Result struct {
	RowCount     int
	Items        []Row
	RowsAffected int64
	LastInsertID int64
}

// HasItems, sonuçta satır olup olmadığını bildirir.
func (r *Result) HasItems() bool {
	return r.RowCount > 0
}

// ToArray, satırları serileştirmeye uygun düz map'lere çevirir.
func (r *Result) ToArray() []map[string]any {
	out := make([]map[string]any, len(r.Items))
	for i, row := range r.Items {
		m := make(map[string]any, len(row))
		for k, v := range row {
			m[k] = v
		}
		out[i] = m
	}
	return out
}

// newRowsResult, satır kümesinden Result üretir.
func newRowsResult(items []Row) *Result {
	if items == nil {
		items = []Row{}
	}
	return &Result{RowCount: len(items), Items: items}
}

// newExecResult, sql.Result'tan Result üretir. LastInsertId desteklemeyen
// driver'larda (PostgreSQL) LastInsertID 0 kalır.
func newExecResult(res sql.Result) *Result {
	out := &Result{}
	if n, err := res.RowsAffected(); err == nil {
		out.RowsAffected = n
	}
	if id, err := res.LastInsertId(); err == nil {
		out.LastInsertID = id
	}
	return out
}

// scanRows, sql.Rows'ı []Row biçimine dönüştürür. Metin kolonlarından gelen
// []byte değerleri string'e çevrilir.
func scanRows(rows *sql.Rows) ([]Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	res := make([]Row, 0)
	for rows.Next() {
		columns := make([]any, len(cols))
		columnPointers := make([]any, len(cols))
		for i := range columns {
			columnPointers[i] = &columns[i]
		}

		if err := rows.Scan(columnPointers...); err != nil {
			return nil, err
		}

		row := make(Row, len(cols))
		for i, colName := range cols {
			if b, ok := columns[i].([]byte); ok {
				row[colName] = string(b)
				continue
			}
			row[colName] = columns[i]
		}
		res = append(res, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// toInt64, driver'ın döndürebileceği sayısal tipleri int64'e çevirir.
func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case nil:
		return 0, nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint64:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	default:
		return 0, fmt.Errorf("database: cannot convert %T to int64", value)
	}
}
