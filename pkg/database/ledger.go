package database

import (
	"time"

	"github.com/samber/lo"
)

// -----------------------------------------------------------------------------
// PARAMETER LEDGER
// -----------------------------------------------------------------------------
// Ledger, SQL'e render edilen "?" placeholder'larına bağlanacak değerlerin
// sıralı listesidir. Değerler mutasyon anında (Where, WhereIn, Having ...)
// eklenir, render sırasında dokunulmaz.
//
// Ledger clause bölümlerine ayrılmıştır. Snapshot, bölümleri statement'ın
// render sırasına göre birleştirir; böylece Having() Where()'den önce
// çağrılsa bile değerler placeholder sırasıyla eşleşir.
// -----------------------------------------------------------------------------

// BindingKind, ledger'daki bir değerin etiketidir.
type BindingKind int

const (
	KindNull BindingKind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindBytes
	KindTime
	KindOther
)

// Binding, etiketlenmiş tek bir bind değeridir.
type Binding struct {
	Kind  BindingKind
	Value any
}

// Bind, değerin tipine göre etiketli Binding üretir.
func Bind(value any) Binding {
	switch value.(type) {
	case nil:
		return Binding{Kind: KindNull}
	case bool:
		return Binding{Kind: KindBool, Value: value}
	case int, int8, int16, int32, int64:
		return Binding{Kind: KindInt, Value: value}
	case uint, uint8, uint16, uint32, uint64:
		return Binding{Kind: KindUint, Value: value}
	case float32, float64:
		return Binding{Kind: KindFloat, Value: value}
	case string:
		return Binding{Kind: KindString, Value: value}
	case []byte:
		return Binding{Kind: KindBytes, Value: value}
	case time.Time:
		return Binding{Kind: KindTime, Value: value}
	default:
		return Binding{Kind: KindOther, Value: value}
	}
}

// Section, ledger içindeki clause bölümüdür. Sıra, render sırasıdır.
type Section int

const (
	SectionValues Section = iota // INSERT VALUES
	SectionSet                   // UPDATE SET
	SectionWhere
	SectionOrWhere
	SectionHaving
	sectionCount
)

// Ledger, bölümlere ayrılmış, yalnızca büyüyen bind değer listesidir.
type Ledger struct {
	sections [sectionCount][]Binding
}

// NewLedger, boş bir ledger oluşturur.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append, bölüme tek bir değer ekler.
func (l *Ledger) Append(s Section, value any) {
	l.sections[s] = append(l.sections[s], Bind(value))
}

// AppendMany, IN/NOT IN/BETWEEN değerlerini tek bir atomik batch olarak ekler.
func (l *Ledger) AppendMany(s Section, values ...any) {
	batch := lo.Map(values, func(v any, _ int) Binding { return Bind(v) })
	l.sections[s] = append(l.sections[s], batch...)
}

// ReplaceAll, UPDATE için SET değerlerini mevcut predicate değerlerinin
// önüne yerleştirir. Önceki SET değerleri tamamen değiştirilir.
func (l *Ledger) ReplaceAll(values []any) {
	l.sections[SectionSet] = lo.Map(values, func(v any, _ int) Binding { return Bind(v) })
}

// setValues, INSERT değerlerini VALUES bölümüne yazar.
func (l *Ledger) setValues(values []any) {
	l.sections[SectionValues] = lo.Map(values, func(v any, _ int) Binding { return Bind(v) })
}

// Len, tüm bölümlerdeki toplam değer sayısını döndürür.
func (l *Ledger) Len() int {
	n := 0
	for _, s := range l.sections {
		n += len(s)
	}
	return n
}

// Bindings, statement türü için etiketli değerleri render sırasıyla döndürür.
//
// OR-WHERE değerleri yalnızca en az bir WHERE değeri ya da predicate'i varsa
// dahil edilir; hasWhere bunu çağıran bildirir.
func (l *Ledger) Bindings(kind QueryKind, hasWhere bool) []Binding {
	var order []Section
	switch kind {
	case KindInsert:
		order = []Section{SectionValues}
	case KindUpdate:
		order = []Section{SectionSet, SectionWhere, SectionOrWhere}
	case KindDelete:
		order = []Section{SectionWhere, SectionOrWhere}
	default:
		order = []Section{SectionWhere, SectionOrWhere, SectionHaving}
	}

	out := make([]Binding, 0, l.Len())
	for _, s := range order {
		if s == SectionOrWhere && !hasWhere {
			continue
		}
		out = append(out, l.sections[s]...)
	}
	return out
}

// Snapshot, driver'a verilecek değerleri render sırasıyla döndürür.
func (l *Ledger) Snapshot(kind QueryKind, hasWhere bool) []any {
	return lo.Map(l.Bindings(kind, hasWhere), func(b Binding, _ int) any { return b.Value })
}

// clone, ledger'ın derin kopyasını döndürür.
func (l *Ledger) clone() *Ledger {
	c := &Ledger{}
	for i, s := range l.sections {
		if s != nil {
			c.sections[i] = append([]Binding(nil), s...)
		}
	}
	return c
}
