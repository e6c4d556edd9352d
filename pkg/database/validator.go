package database

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// -----------------------------------------------------------------------------
// QUERY-TYPE VALIDATOR
// -----------------------------------------------------------------------------
// Raw escape hatch'lerin (SelectRaw, CreateRaw, UpdateRaw, DeleteRaw) yanlış
// türde SQL çalıştırmasını engelleyen kaba, sözcüksel bir kontrol.
//
// Bir parser değildir: anahtar kelime string'in herhangi bir yerinde geçerse
// reddedilir. "updated_at" kolonu ya da 'xDELETEx' literal'i de buna dahildir.
// Güvenlik sınırı değil, bir emniyet ağıdır; değerler yine bind edilmelidir.
// -----------------------------------------------------------------------------

var dmlKeywords = []QueryKind{KindSelect, KindInsert, KindUpdate, KindDelete}

// ValidateQuery, SQL'in beklenen türle başladığını ve başka bir DML anahtar
// kelimesi içermediğini doğrular.
//
//	ValidateQuery("SELECT * FROM x", KindInsert)       // ErrInvalidRawQuery
//	ValidateQuery("INSERT INTO x VALUES (?)", KindInsert) // nil
func ValidateQuery(query string, kind QueryKind) error {
	if !lo.Contains(dmlKeywords, kind) {
		return fmt.Errorf("%w: unknown query kind %q", ErrInvalidRawQuery, kind)
	}

	upper := strings.ToUpper(strings.TrimSpace(query))
	fields := strings.Fields(upper)
	if len(fields) == 0 || strings.TrimRight(fields[0], "(;") != string(kind) {
		return fmt.Errorf("%w: expected %s statement", ErrInvalidRawQuery, kind)
	}

	for _, other := range dmlKeywords {
		if other == kind {
			continue
		}
		if strings.Contains(upper, string(other)) {
			return fmt.Errorf("%w: %s statement contains %s", ErrInvalidRawQuery, kind, other)
		}
	}
	return nil
}

