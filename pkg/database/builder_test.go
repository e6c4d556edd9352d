// -----------------------------------------------------------------------------
// Builder Compile Tests
// -----------------------------------------------------------------------------
// Builder'ın SELECT/INSERT/UPDATE/DELETE çıktısını, clause sırasını ve bind
// değerlerinin placeholder sırasıyla eşleştiğini doğrular. Hiçbir test
// veritabanına gitmez; builder nil executor ile açılır.
// -----------------------------------------------------------------------------

package database

import (
	"errors"
	"reflect"
	"testing"
)

func mysqlBuilder() *Builder {
	return NewBuilder(nil, NewMySQLGrammar())
}

func TestToSQL_Select(t *testing.T) {
	tests := []struct {
		name     string
		build    func() *Builder
		expected string
		args     []any
	}{
		{
			name:     "select all",
			build:    func() *Builder { return mysqlBuilder().Table("users") },
			expected: "SELECT * FROM `users`;",
			args:     []any{},
		},
		{
			name:     "selected columns",
			build:    func() *Builder { return mysqlBuilder().Table("users").Select("id", "name") },
			expected: "SELECT id, name FROM `users`;",
			args:     []any{},
		},
		{
			name:     "select replaces previous selection",
			build:    func() *Builder { return mysqlBuilder().Table("users").Select("id").Select("email") },
			expected: "SELECT email FROM `users`;",
			args:     []any{},
		},
		{
			name:     "table alias",
			build:    func() *Builder { return mysqlBuilder().Table("users as u").Select("u.id") },
			expected: "SELECT u.id FROM `users` AS `u`;",
			args:     []any{},
		},
		{
			name:     "as method",
			build:    func() *Builder { return mysqlBuilder().Table("users").As("u") },
			expected: "SELECT * FROM `users` AS `u`;",
			args:     []any{},
		},
		{
			name: "where order limit offset",
			build: func() *Builder {
				return mysqlBuilder().
					Table("users").
					Where("age", OpGt, 18).
					OrderBy("name", "").
					OrderBy("created_at", "desc").
					Limit(10).
					Offset(5)
			},
			expected: "SELECT * FROM `users` WHERE age > ? ORDER BY name ASC, created_at DESC LIMIT 10 OFFSET 5;",
			args:     []any{18},
		},
		{
			name:     "offset without limit is dropped",
			build:    func() *Builder { return mysqlBuilder().Table("users").Offset(20) },
			expected: "SELECT * FROM `users`;",
			args:     []any{},
		},
		{
			name:     "negative limit is unlimited",
			build:    func() *Builder { return mysqlBuilder().Table("users").Limit(-3) },
			expected: "SELECT * FROM `users`;",
			args:     []any{},
		},
		{
			name: "invalid direction defaults to ASC",
			build: func() *Builder {
				return mysqlBuilder().Table("users").OrderBy("id", "sideways")
			},
			expected: "SELECT * FROM `users` ORDER BY id ASC;",
			args:     []any{},
		},
		{
			name: "reserved order column",
			build: func() *Builder {
				return mysqlBuilder().Table("items").OrderBy("order.position", "DESC")
			},
			expected: "SELECT * FROM `items` ORDER BY `order`.`position` DESC;",
			args:     []any{},
		},
		{
			name: "having declared before where",
			build: func() *Builder {
				return mysqlBuilder().
					Table("orders").
					Select("status", "COUNT(*) AS total").
					GroupBy("status").
					Having("COUNT(*)", OpGt, 5).
					Where("year", OpEq, 2024)
			},
			expected: "SELECT status, COUNT(*) AS total FROM `orders` WHERE year = ? GROUP BY status HAVING COUNT(*) > ?;",
			args:     []any{2024, 5},
		},
		{
			name: "group by replaces previous",
			build: func() *Builder {
				return mysqlBuilder().Table("users").GroupBy("country").GroupBy("country", "city")
			},
			expected: "SELECT * FROM `users` GROUP BY country, city;",
			args:     []any{},
		},
		{
			name: "join keeps insertion order",
			build: func() *Builder {
				return mysqlBuilder().
					Table("users").
					Select("users.name", "posts.title").
					LeftJoin("posts", "users.id", OpEq, "posts.user_id").
					Join("comments c", "c.post_id", OpEq, "posts.id", InnerJoin).
					Where("posts.status", OpEq, "published")
			},
			expected: "SELECT users.name, posts.title FROM `users` LEFT JOIN `posts` ON users.id = posts.user_id INNER JOIN `comments` AS `c` ON c.post_id = posts.id WHERE posts.status = ?;",
			args:     []any{"published"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.build().ToSQL()
			if err != nil {
				t.Fatalf("Failed to compile SQL: %v", err)
			}
			if sql != tt.expected {
				t.Errorf("Expected:\n%s\nGot:\n%s", tt.expected, sql)
			}
			if !reflect.DeepEqual(args, tt.args) {
				t.Errorf("Expected args %#v, got %#v", tt.args, args)
			}
		})
	}
}

func TestToSQL_MissingTable(t *testing.T) {
	_, _, err := mysqlBuilder().Where("id", OpEq, 1).ToSQL()
	if !errors.Is(err, ErrMissingTable) {
		t.Errorf("Expected ErrMissingTable, got: %v", err)
	}
}

func TestToSQL_Idempotent(t *testing.T) {
	qb := mysqlBuilder().Table("users").WhereIn("id", 1, 2).Having("COUNT(*)", OpGt, 1)

	first, firstArgs, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	second, secondArgs, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	if first != second || !reflect.DeepEqual(firstArgs, secondArgs) {
		t.Errorf("Repeated compile differs:\n%s %v\n%s %v", first, firstArgs, second, secondArgs)
	}
}

func TestCountSQL(t *testing.T) {
	qb := mysqlBuilder().
		Table("users").
		Where("active", OpEq, 1).
		OrderBy("name", "ASC").
		Limit(10).
		Offset(30)

	sql, args, err := qb.CountSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	expected := "SELECT COUNT(*) AS count FROM `users` WHERE active = ?;"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
	if want := []any{1}; !reflect.DeepEqual(args, want) {
		t.Errorf("Expected args %v, got %v", want, args)
	}

	// CountSQL builder'ın kendi select/order/limit state'ine dokunmaz.
	sql, _, _ = qb.ToSQL()
	if want := "SELECT * FROM `users` WHERE active = ? ORDER BY name ASC LIMIT 10 OFFSET 30;"; sql != want {
		t.Errorf("Expected:\n%s\nGot:\n%s", want, sql)
	}
}

func TestCopy_Independent(t *testing.T) {
	base := mysqlBuilder().Table("users").Where("active", OpEq, 1)
	branch := base.Copy().Where("age", OpGt, 30).Limit(5)

	baseSQL, baseArgs, _ := base.ToSQL()
	branchSQL, branchArgs, _ := branch.ToSQL()

	if want := "SELECT * FROM `users` WHERE active = ?;"; baseSQL != want {
		t.Errorf("Base builder changed:\n%s", baseSQL)
	}
	if len(baseArgs) != 1 {
		t.Errorf("Base args changed: %v", baseArgs)
	}
	if want := "SELECT * FROM `users` WHERE active = ? AND age > ? LIMIT 5 OFFSET 0;"; branchSQL != want {
		t.Errorf("Expected:\n%s\nGot:\n%s", want, branchSQL)
	}
	if want := []any{1, 30}; !reflect.DeepEqual(branchArgs, want) {
		t.Errorf("Expected args %v, got %v", want, branchArgs)
	}
}

func TestInsertSQL(t *testing.T) {
	qb := mysqlBuilder().Table("users")

	sql, args, err := qb.InsertSQL(Assignments{Set("name", "a"), Set("email", "b")})
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	expected := "INSERT INTO `users` (`name`, `email`) VALUES (?, ?);"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
	if want := []any{"a", "b"}; !reflect.DeepEqual(args, want) {
		t.Errorf("Expected args %v, got %v", want, args)
	}

	// Tekrar çağrı önceki VALUES değerlerinin yerini alır.
	_, args, err = qb.InsertSQL(Assignments{Set("name", "c")})
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	if want := []any{"c"}; !reflect.DeepEqual(args, want) {
		t.Errorf("Expected args %v, got %v", want, args)
	}
}

func TestInsertSQL_FromMapIsSorted(t *testing.T) {
	sql, args, err := mysqlBuilder().Table("users").InsertSQL(FromMap(map[string]any{
		"name":  "John",
		"email": "john@example.com",
		"age":   40,
	}))
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	expected := "INSERT INTO `users` (`age`, `email`, `name`) VALUES (?, ?, ?);"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
	if want := []any{40, "john@example.com", "John"}; !reflect.DeepEqual(args, want) {
		t.Errorf("Expected args %v, got %v", want, args)
	}
}

func TestInsertSQL_Errors(t *testing.T) {
	if _, _, err := mysqlBuilder().Table("users").InsertSQL(nil); !errors.Is(err, ErrEmptyData) {
		t.Errorf("Expected ErrEmptyData, got: %v", err)
	}

	_, _, err := mysqlBuilder().Table("users").InsertSQL(Assignments{Set("name`; DROP", "x")})
	if !errors.Is(err, ErrInvalidIdentifier) {
		t.Errorf("Expected ErrInvalidIdentifier, got: %v", err)
	}
}

func TestUpdateSQL_SetBeforeWhere(t *testing.T) {
	qb := mysqlBuilder().
		Table("users").
		Where("id", OpEq, 5).
		OrWhere("email", OpEq, "x@example.com")

	sql, args, err := qb.UpdateSQL(Assignments{Set("name", "Jane"), Set("age", 31)})
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	expected := "UPDATE `users` SET `name` = ?, `age` = ? WHERE id = ? OR email = ?;"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
	if want := []any{"Jane", 31, 5, "x@example.com"}; !reflect.DeepEqual(args, want) {
		t.Errorf("Expected args %v, got %v", want, args)
	}

	// İkinci çağrıda SET değerleri değişir, WHERE değerleri korunur.
	_, args, err = qb.UpdateSQL(Assignments{Set("name", "Janet")})
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	if want := []any{"Janet", 5, "x@example.com"}; !reflect.DeepEqual(args, want) {
		t.Errorf("Expected args %v, got %v", want, args)
	}
}

func TestUpdateSQL_OrderLimit(t *testing.T) {
	sql, _, err := mysqlBuilder().
		Table("jobs").
		Where("status", OpEq, "queued").
		OrderBy("id", "ASC").
		Limit(100).
		UpdateSQL(Assignments{Set("status", "running")})
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	expected := "UPDATE `jobs` SET `status` = ? WHERE status = ? ORDER BY id ASC LIMIT 100 OFFSET 0;"
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
}

func TestDeleteSQL(t *testing.T) {
	tests := []struct {
		name     string
		build    func() *Builder
		columns  []string
		expected string
		args     []any
	}{
		{
			name:     "simple delete",
			build:    func() *Builder { return mysqlBuilder().Table("users").Where("id", OpEq, 5) },
			expected: "DELETE FROM `users` WHERE id = ?;",
			args:     []any{5},
		},
		{
			name: "delete with order and limit",
			build: func() *Builder {
				return mysqlBuilder().Table("logs").Where("level", OpEq, "debug").OrderBy("id", "ASC").Limit(1000).Offset(5)
			},
			expected: "DELETE FROM `logs` WHERE level = ? ORDER BY id ASC LIMIT 1000;",
			args:     []any{"debug"},
		},
		{
			name: "multi-table delete ignores limit",
			build: func() *Builder {
				return mysqlBuilder().
					Table("users").
					LeftJoin("posts", "users.id", OpEq, "posts.user_id").
					Where("users.id", OpEq, 9).
					Limit(10)
			},
			columns:  []string{"users", "posts"},
			expected: "DELETE `users`, `posts` FROM `users` LEFT JOIN `posts` ON users.id = posts.user_id WHERE users.id = ?;",
			args:     []any{9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.build().DeleteSQL(tt.columns...)
			if err != nil {
				t.Fatalf("Failed to compile SQL: %v", err)
			}
			if sql != tt.expected {
				t.Errorf("Expected:\n%s\nGot:\n%s", tt.expected, sql)
			}
			if !reflect.DeepEqual(args, tt.args) {
				t.Errorf("Expected args %v, got %v", tt.args, args)
			}
		})
	}
}

func TestJoin_Errors(t *testing.T) {
	qb := mysqlBuilder().Table("users").Join("posts", "users.id", Operator{}, "posts.user_id", InnerJoin)
	if !errors.Is(qb.Err(), ErrUnsupportedOperator) {
		t.Errorf("Expected ErrUnsupportedOperator, got: %v", qb.Err())
	}

	qb = mysqlBuilder().Table("users").Join("posts", "users.id", OpEq, "posts.user_id", JoinType("FULL OUTER"))
	if qb.Err() == nil {
		t.Error("Expected error for unsupported join type")
	}
}

func TestPostgresRebind(t *testing.T) {
	qb := NewBuilder(nil, NewPostgresGrammar()).
		Table("users").
		Where("a", OpEq, 1).
		WhereIn("b", 2, 3).
		Having("COUNT(*)", OpGt, 4)

	sql, args, err := qb.ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	expected := `SELECT * FROM "users" WHERE a = $1 AND b IN ($2, $3) HAVING COUNT(*) > $4;`
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
	if want := []any{1, 2, 3, 4}; !reflect.DeepEqual(args, want) {
		t.Errorf("Expected args %v, got %v", want, args)
	}
}

func TestPostgresUpdateNumbering(t *testing.T) {
	sql, _, err := NewBuilder(nil, NewPostgresGrammar()).
		Table("users").
		Where("id", OpEq, 5).
		UpdateSQL(Assignments{Set("name", "Jane"), Set("age", 31)})
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	expected := `UPDATE "users" SET "name" = $1, "age" = $2 WHERE id = $3;`
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
}

func TestSQLiteGrammar(t *testing.T) {
	sql, _, err := NewBuilder(nil, NewSQLiteGrammar()).
		Table("users").
		Where("order", OpEq, 1).
		ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}

	expected := `SELECT * FROM "users" WHERE "order" = ?;`
	if sql != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, sql)
	}
}

func TestNewBuilder_DefaultsToMySQL(t *testing.T) {
	sql, _, err := NewBuilder(nil, nil).Table("users").ToSQL()
	if err != nil {
		t.Fatalf("Failed to compile SQL: %v", err)
	}
	if want := "SELECT * FROM `users`;"; sql != want {
		t.Errorf("Expected:\n%s\nGot:\n%s", want, sql)
	}
}

func TestBindingMismatch(t *testing.T) {
	qb := mysqlBuilder().Table("users").Where("id", OpEq, 1)
	qb.ledger.Append(SectionWhere, 2)

	if _, _, err := qb.ToSQL(); !errors.Is(err, ErrBindingMismatch) {
		t.Errorf("Expected ErrBindingMismatch, got: %v", err)
	}
}

// BenchmarkToSQL benchmarks compiling a typical select.
func BenchmarkToSQL(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _, _ = mysqlBuilder().
			Table("users").
			Select("id", "name", "email").
			Where("active", OpEq, 1).
			WhereIn("role", "admin", "editor").
			OrderBy("created_at", "DESC").
			Limit(20).
			ToSQL()
	}
}
