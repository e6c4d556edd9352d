package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/fluent-query/pkg/database"
	dbtest "github.com/biyonik/fluent-query/pkg/testing"
)

// -----------------------------------------------------------------------------
// In-memory SQLite üzerinde uçtan uca testler.
// -----------------------------------------------------------------------------

func seedUsers(t *testing.T, conn *database.Connection) {
	t.Helper()

	dbtest.Seed(t, conn, "users",
		dbtest.UserFactory().Make(map[string]any{"name": "Charlie", "email": "charlie@example.com", "age": 41}),
		dbtest.UserFactory().Make(map[string]any{"name": "Alice", "email": "alice@example.com", "age": 29}),
		dbtest.UserFactory().Make(map[string]any{"name": "Bob", "email": "bob@example.com", "age": 35, "active": false}),
	)
}

func TestIntegration_SelectOrdered(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.RefreshDatabase(t, dbtest.UsersSchema)
	seedUsers(t, conn)

	res, err := conn.Table("users").
		Where("age", database.OpGt, 18).
		OrderBy("name", "ASC").
		Limit(10).
		Offset(0).
		Get(ctx, "*")
	require.NoError(t, err)
	require.Equal(t, 3, res.RowCount)
	require.True(t, res.HasItems())

	names := make([]string, 0, res.RowCount)
	for _, row := range res.Items {
		names = append(names, row.String("name"))
	}
	assert.Equal(t, []string{"Alice", "Bob", "Charlie"}, names)

	page, err := conn.Table("users").OrderBy("name", "ASC").Limit(1).Offset(1).Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, page.RowCount)
	assert.Equal(t, "Bob", page.Items[0].String("name"))
}

func TestIntegration_Predicates(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.RefreshDatabase(t, dbtest.UsersSchema)
	seedUsers(t, conn)

	tests := []struct {
		name     string
		builder  *database.Builder
		expected int64
	}{
		{"where", conn.Table("users").Where("age", database.OpGt, 30), 2},
		{"where in", conn.Table("users").WhereIn("name", "Alice", "Bob"), 2},
		{"empty where in", conn.Table("users").WhereIn("name"), 0},
		{"empty where not in", conn.Table("users").WhereNotIn("name"), 3},
		{"between", conn.Table("users").WhereBetween("age", 30, 40), 1},
		{"or where", conn.Table("users").Where("name", database.OpEq, "Alice").OrWhere("name", database.OpEq, "Bob"), 2},
		{"or where alone is ignored", conn.Table("users").OrWhere("name", database.OpEq, "Alice"), 3},
		{"like", conn.Table("users").Where("email", database.OpLike, "%@example.com"), 3},
		{"null", conn.Table("users").WhereNull("created_at"), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := tt.builder.Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, n)
		})
	}
}

func TestIntegration_GroupByHaving(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.RefreshDatabase(t, dbtest.UsersSchema, dbtest.PostsSchema)

	dbtest.Seed(t, conn, "posts",
		dbtest.PostFactory().Make(map[string]any{"user_id": 1, "title": "a"}),
		dbtest.PostFactory().Make(map[string]any{"user_id": 1, "title": "b"}),
		dbtest.PostFactory().Make(map[string]any{"user_id": 2, "title": "c"}),
		dbtest.PostFactory().Make(map[string]any{"user_id": 1, "title": "d", "status": "draft"}),
	)

	res, err := conn.Table("posts").
		Select("user_id", "COUNT(*) AS total").
		GroupBy("user_id").
		Having("COUNT(*)", database.OpGt, 1).
		Where("status", database.OpEq, "published").
		Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, res.RowCount)

	total, err := res.Items[0].Int64("total")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestIntegration_Join(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.RefreshDatabase(t, dbtest.UsersSchema, dbtest.PostsSchema)
	seedUsers(t, conn)

	dbtest.Seed(t, conn, "posts",
		dbtest.PostFactory().Make(map[string]any{"user_id": 2, "title": "Hello"}),
		dbtest.PostFactory().Make(map[string]any{"user_id": 2, "title": "Draft", "status": "draft"}),
		dbtest.PostFactory().Make(map[string]any{"user_id": 1, "title": "World"}),
	)

	res, err := conn.Table("users").
		Select("users.name", "posts.title").
		InnerJoin("posts", "users.id", database.OpEq, "posts.user_id").
		Where("posts.status", database.OpEq, "published").
		OrderBy("posts.title", "ASC").
		Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, res.RowCount)

	assert.Equal(t, "Alice", res.Items[0].String("name"))
	assert.Equal(t, "Hello", res.Items[0].String("title"))
	assert.Equal(t, "Charlie", res.Items[1].String("name"))
}

func TestIntegration_Writes(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.RefreshDatabase(t, dbtest.UsersSchema)

	id, err := conn.Table("users").CreateGetID(ctx, dbtest.UserFactory().Make(nil))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
	dbtest.AssertDatabaseHas(t, conn, "users", "email", "test@example.com")

	n, err := conn.Table("users").Where("id", database.OpEq, id).Update(ctx, database.Assignments{
		database.Set("email", "changed@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	dbtest.AssertDatabaseHas(t, conn, "users", "email", "changed@example.com")
	dbtest.AssertDatabaseMissing(t, conn, "users", "email", "test@example.com")

	n, err = conn.Table("users").Where("id", database.OpEq, id).Delete(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	dbtest.AssertDatabaseCount(t, conn, "users", 0)
}

func TestIntegration_ExecuteError(t *testing.T) {
	conn := dbtest.RefreshDatabase(t, dbtest.UsersSchema)

	_, err := conn.Table("no_such_table").Get(context.Background())

	var execErr *database.ExecuteError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, execErr.Query, `"no_such_table"`)
}

func TestIntegration_Model(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.RefreshDatabase(t, dbtest.UsersSchema)
	users := conn.Model("users", "id").WithTimestamps()

	id, err := users.CreateGetID(ctx, database.Assignments{
		database.Set("name", "John"),
		database.Set("email", "john@example.com"),
	})
	require.NoError(t, err)

	row, err := users.Find(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Equal(t, "John", row.String("name"))
	assert.NotNil(t, row["created_at"])
	assert.NotNil(t, row["updated_at"])

	_, err = users.Update(ctx, id, database.Assignments{database.Set("name", "Johnny")})
	require.NoError(t, err)
	dbtest.AssertDatabaseHas(t, conn, "users", "name", "Johnny")

	count, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = users.Destroy(ctx, id)
	require.NoError(t, err)

	row, err = users.Find(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, row)

	exists, err := users.Exists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestIntegration_Transaction(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.RefreshDatabase(t, dbtest.UsersSchema)
	boom := errors.New("boom")

	err := conn.Transaction(ctx, func(tx *database.Transaction) error {
		_, err := tx.Table("users").Create(ctx, dbtest.UserFactory().Make(nil))
		return err
	})
	require.NoError(t, err)
	dbtest.AssertDatabaseCount(t, conn, "users", 1)

	err = conn.Transaction(ctx, func(tx *database.Transaction) error {
		if _, err := tx.Table("users").Create(ctx, dbtest.UserFactory().Make(map[string]any{"email": "rolled@back.dev"})); err != nil {
			return err
		}
		n, err := tx.Table("users").Count(ctx)
		if err != nil {
			return err
		}
		assert.Equal(t, int64(2), n, "transaction sees its own write")
		return boom
	})
	require.ErrorIs(t, err, boom)
	dbtest.AssertDatabaseCount(t, conn, "users", 1)
	dbtest.AssertDatabaseMissing(t, conn, "users", "email", "rolled@back.dev")
}

func TestIntegration_DatabaseTransactionHelper(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.RefreshDatabase(t, dbtest.UsersSchema)

	dbtest.DatabaseTransaction(t, conn, func(tx *database.Transaction) {
		_, err := tx.Table("users").Create(ctx, dbtest.UserFactory().Make(nil))
		require.NoError(t, err)
	})

	dbtest.AssertDatabaseCount(t, conn, "users", 0)
}

func TestIntegration_RawQueries(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.RefreshDatabase(t, dbtest.UsersSchema)

	id, err := conn.CreateRaw(ctx, "INSERT INTO users (name, email) VALUES (?, ?)", "Raw", "raw@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	res, err := conn.SelectRaw(ctx, "SELECT name FROM users WHERE id = ?", id)
	require.NoError(t, err)
	require.Equal(t, 1, res.RowCount)
	assert.Equal(t, "Raw", res.Items[0].String("name"))

	n, err := conn.UpdateRaw(ctx, "UPDATE users SET age = ? WHERE id = ?", 50, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = conn.DeleteRaw(ctx, "DELETE FROM users WHERE id = ?", id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = conn.CreateRaw(ctx, "SELECT * FROM users")
	require.ErrorIs(t, err, database.ErrInvalidRawQuery)
}

func TestIntegration_RememberUsesCache(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.RefreshDatabase(t, dbtest.UsersSchema)
	seedUsers(t, conn)

	spy := dbtest.NewCacheSpy()
	cached := database.NewConnection("cached", conn.DB(), conn.Grammar(), database.WithResultCache(spy, "test:"))

	query := func() *database.Builder {
		return cached.Table("users").OrderBy("name", "ASC").Remember(time.Minute)
	}

	first, err := query().Get(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, first.RowCount)

	gets, hits, sets := spy.Counts()
	assert.Equal(t, []int{1, 0, 1}, []int{gets, hits, sets})

	// Cache atlanarak yazılan satır, TTL dolana kadar cache'li sonuçta görünmez.
	dbtest.Seed(t, conn, "users", dbtest.UserFactory().Make(map[string]any{"name": "Dave"}))

	second, err := query().Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, second.RowCount)
	assert.Equal(t, "Alice", second.Items[0].String("name"))

	age, err := second.Items[0].Int64("age")
	require.NoError(t, err)
	assert.Equal(t, int64(29), age)

	gets, hits, sets = spy.Counts()
	assert.Equal(t, []int{2, 1, 1}, []int{gets, hits, sets})

	fresh, err := cached.Table("users").Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, fresh.RowCount)
}

func TestIntegration_AssertSQL(t *testing.T) {
	conn := dbtest.RefreshDatabase(t)

	dbtest.AssertSQL(t,
		conn.Table("users").Where("age", database.OpGte, 18).OrderBy("name", "DESC").Limit(10),
		`SELECT * FROM "users" WHERE age >= ? ORDER BY name DESC LIMIT 10 OFFSET 0;`,
		18,
	)
	dbtest.AssertSQL(t, conn.Table("users"), `SELECT * FROM "users";`)
}
