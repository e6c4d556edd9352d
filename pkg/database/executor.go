package database

import (
	"context"
	"database/sql"
)

/*
*
// QueryExecutor, Go'nun 'database/sql' paketindeki
// hem *sql.DB (havuz) hem de *sql.Tx (transaction) tarafından
// örtük olarak uygulanan metodları tanımlayan bir arayüzdür.
//
// Builder *sql.DB'ye kilitlenmek yerine bu arayüze kilitlenir.
// Böylece aynı builder hem normal sorgularda hem de transaction
// içinde çalışabilir. Tüm metotlar context alır; iptal ve timeout
// driver'a kadar taşınır.
*/
type QueryExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

var (
	_ QueryExecutor = (*sql.DB)(nil)
	_ QueryExecutor = (*sql.Tx)(nil)
)
