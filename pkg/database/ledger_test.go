package database

import (
	"reflect"
	"testing"
	"time"
)

func TestLedger_SnapshotOrder(t *testing.T) {
	l := NewLedger()
	l.Append(SectionHaving, "h")
	l.Append(SectionOrWhere, "o")
	l.AppendMany(SectionWhere, 1, 2, 3)
	l.ReplaceAll([]any{"s1", "s2"})
	l.setValues([]any{"v"})

	tests := []struct {
		kind     QueryKind
		hasWhere bool
		expected []any
	}{
		{KindSelect, true, []any{1, 2, 3, "o", "h"}},
		{KindSelect, false, []any{1, 2, 3, "h"}},
		{KindUpdate, true, []any{"s1", "s2", 1, 2, 3, "o"}},
		{KindDelete, true, []any{1, 2, 3, "o"}},
		{KindDelete, false, []any{1, 2, 3}},
		{KindInsert, true, []any{"v"}},
	}

	for _, tt := range tests {
		got := l.Snapshot(tt.kind, tt.hasWhere)
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("Snapshot(%s, %v) = %v, want %v", tt.kind, tt.hasWhere, got, tt.expected)
		}
	}

	if l.Len() != 8 {
		t.Errorf("Len() = %d, want 8", l.Len())
	}
	// Temel predicate yokken DELETE yalnızca WHERE bölümünü taşır.
	if got := l.Bindings(KindDelete, false); len(got) != 3 {
		t.Errorf("Bindings(DELETE, false) has %d values, want 3", len(got))
	}
}

func TestLedger_ReplaceAll(t *testing.T) {
	l := NewLedger()
	l.Append(SectionWhere, 5)
	l.ReplaceAll([]any{"a", "b"})
	l.ReplaceAll([]any{"c"})

	if got := l.Snapshot(KindUpdate, true); !reflect.DeepEqual(got, []any{"c", 5}) {
		t.Errorf("Snapshot after ReplaceAll = %v", got)
	}
}

func TestLedger_Clone(t *testing.T) {
	l := NewLedger()
	l.Append(SectionWhere, 1)

	c := l.clone()
	c.Append(SectionWhere, 2)

	if l.Len() != 1 || c.Len() != 2 {
		t.Errorf("clone is not independent: original %d, clone %d", l.Len(), c.Len())
	}
}

func TestBind_Kinds(t *testing.T) {
	now := time.Now()

	tests := []struct {
		value any
		kind  BindingKind
	}{
		{nil, KindNull},
		{true, KindBool},
		{42, KindInt},
		{int64(42), KindInt},
		{uint8(1), KindUint},
		{3.14, KindFloat},
		{"text", KindString},
		{[]byte("raw"), KindBytes},
		{now, KindTime},
		{struct{}{}, KindOther},
	}

	for _, tt := range tests {
		if got := Bind(tt.value); got.Kind != tt.kind {
			t.Errorf("Bind(%#v).Kind = %v, want %v", tt.value, got.Kind, tt.kind)
		}
	}
}

func TestLedger_BindingsKeepKinds(t *testing.T) {
	l := NewLedger()
	l.AppendMany(SectionWhere, "a", 1, nil)

	got := l.Bindings(KindSelect, true)
	want := []BindingKind{KindString, KindInt, KindNull}
	for i, b := range got {
		if b.Kind != want[i] {
			t.Errorf("binding %d kind = %v, want %v", i, b.Kind, want[i])
		}
	}
}
