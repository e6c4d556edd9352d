package database

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// -----------------------------------------------------------------------------
// DATABASE ERRORS
// -----------------------------------------------------------------------------
// Builder ve connection katmanının ürettiği hata taksonomisi.
//
// Sentinel hatalar errors.Is ile, tipli hatalar errors.As ile ayırt edilir.
// Hiçbir hata yutulmaz; log kanalı yalnızca best-effort çalışır.
// -----------------------------------------------------------------------------

var (
	// ErrUnsupportedOperator, izin verilen operatör kümesi dışındaki bir
	// operatör where/orWhere/having/join'e verildiğinde döner.
	ErrUnsupportedOperator = errors.New("database: unsupported operator")

	// ErrInvalidRawQuery, raw escape hatch'e beklenen türde olmayan SQL geldiğinde döner.
	ErrInvalidRawQuery = errors.New("database: invalid raw query")

	// ErrInvalidIdentifier, güvensiz karakter içeren tablo/kolon adı için döner.
	ErrInvalidIdentifier = errors.New("database: invalid identifier")

	// ErrBindingMismatch, render edilen placeholder sayısı ledger uzunluğu ile
	// eşleşmediğinde döner. Normal kullanımda oluşmamalıdır.
	ErrBindingMismatch = errors.New("database: placeholder/binding count mismatch")

	// ErrMissingTable, Table() çağrılmadan terminal metot çalıştırıldığında döner.
	ErrMissingTable = errors.New("database: no table selected")

	// ErrEmptyData, Create/Update boş veri ile çağrıldığında döner.
	ErrEmptyData = errors.New("database: empty data")
)

// ExecuteError, executor (driver) seviyesinde oluşan hatayı sarar.
//
// Query alanı hataya sebep olan SQL'i, Code alanı ise driver'a özgü hata
// kodunu taşır (MySQL: "1062", PostgreSQL: "23505" gibi). Kod çıkarılamazsa boştur.
type ExecuteError struct {
	Query string
	Code  string
	Err   error
}

func (e *ExecuteError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("database: execute failed [%s]: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("database: execute failed: %v", e.Err)
}

func (e *ExecuteError) Unwrap() error {
	return e.Err
}

// newExecuteError, driver hatasını ExecuteError içine sarar ve kodunu çıkarır.
func newExecuteError(query string, err error) *ExecuteError {
	return &ExecuteError{Query: query, Code: driverErrorCode(err), Err: err}
}

// driverErrorCode, bilinen driver hata tiplerinden hata kodunu okur.
func driverErrorCode(err error) string {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return fmt.Sprintf("%d", myErr.Number)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}

	return ""
}

// ConnectionError, registry'de bulunmayan ya da açılamayan bağlantıyı bildirir.
type ConnectionError struct {
	Name string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database: connection %q: %v", e.Name, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
