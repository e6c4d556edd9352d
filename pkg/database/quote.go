package database

import (
	"fmt"
	"regexp"
	"strings"
)

// -----------------------------------------------------------------------------
// IDENTIFIER QUOTING & VALIDATION
// -----------------------------------------------------------------------------
// İki ayrı sarmalama stratejisi vardır:
//
//   - Quote: Sadece rezerve kelimeyle çakışan path'leri sarar. Select, where,
//     order ve join kolonlarında kullanılır; "COUNT(*) AS count" gibi ifadeleri
//     bozmaz.
//   - Grammar.Wrap: Her segmenti sarar ve doğrular. Tablo adları ile
//     INSERT/UPDATE kolon listelerinde kullanılır.
//
// Validation fonksiyonları panic yerine error döner;
// Builder bu hatayı sticky olarak saklar.
// -----------------------------------------------------------------------------

// reservedWords, sarmalanmadan kolon adı olarak kullanılamayan kelimelerdir.
// Karşılaştırma büyük/küçük harf duyarlıdır.
var reservedWords = map[string]struct{}{
	"order":  {},
	"group":  {},
	"select": {},
	"from":   {},
	"where":  {},
	"limit":  {},
	"offset": {},
	"join":   {},
	"inner":  {},
	"outer":  {},
	"left":   {},
	"right":  {},
	"on":     {},
	"desc":   {},
	"asc":    {},
}

// validIdentifierRegex, tek bir identifier segmentinin güvenli pattern'idir.
var validIdentifierRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// IsReservedPath, nokta ile ayrılmış path'in herhangi bir segmenti rezerve
// kelime ise true döner.
//
//	IsReservedPath("order.customerNumber")     // true
//	IsReservedPath("customers.CustomerNumber") // false
func IsReservedPath(column string) bool {
	for _, segment := range strings.Split(column, ".") {
		if _, ok := reservedWords[segment]; ok {
			return true
		}
	}
	return false
}

// Quote, MySQL backtick'leri ile rezerve path'leri sarar.
//
//	Quote("order.customerNumber")     // "`order`.`customerNumber`"
//	Quote("customers.CustomerNumber") // "customers.CustomerNumber"
func Quote(column string) string {
	return quoteWith(column, "`", "`")
}

// quoteWith, rezerve path'in her segmentini verilen delimiter'larla sarar.
func quoteWith(column, open, close string) string {
	if !IsReservedPath(column) {
		return column
	}

	segments := strings.Split(column, ".")
	for i, segment := range segments {
		segments[i] = open + segment + close
	}
	return strings.Join(segments, ".")
}

// WrapMultiple, birden fazla identifier'ı verilen lehçeyle sarar. İlk
// geçersiz identifier'da durur.
//
//	WrapMultiple(NewMySQLGrammar(), []string{"id", "users.name"}) // [`id` `users`.`name`]
func WrapMultiple(g Grammar, values []string) ([]string, error) {
	wrapped := make([]string, len(values))
	for i, value := range values {
		w, err := g.Wrap(value)
		if err != nil {
			return nil, fmt.Errorf("failed to wrap '%s': %w", value, err)
		}
		wrapped[i] = w
	}
	return wrapped, nil
}

// wrapSegments, identifier'ın her segmentini doğrulayıp sarar. Wildcard "*"
// olduğu gibi geçer; "users.*" gibi path'lerde son segment de sarılmaz.
func wrapSegments(value, open, close string) (string, error) {
	if value == "*" {
		return value, nil
	}

	segments := strings.Split(value, ".")
	for i, segment := range segments {
		if segment == "*" && i == len(segments)-1 && i > 0 {
			continue
		}
		if !validIdentifierRegex.MatchString(segment) {
			return "", fmt.Errorf("%w: %q (contains unsafe characters)", ErrInvalidIdentifier, value)
		}
		segments[i] = open + segment + close
	}
	return strings.Join(segments, "."), nil
}

// validateIdentifier, tablo ya da kolon adını doğrular.
//
// İzin verilenler: harf, rakam, underscore ve en fazla bir nokta
// (table.column). Wildcard "*" ve "table.*" geçerlidir.
func validateIdentifier(identifier, context string) error {
	if identifier == "*" {
		return nil
	}

	if strings.TrimSpace(identifier) == "" {
		return fmt.Errorf("%w: empty %s name", ErrInvalidIdentifier, context)
	}

	parts := strings.Split(identifier, ".")
	if len(parts) > 2 {
		return fmt.Errorf("%w: %s %q (too many dots)", ErrInvalidIdentifier, context, identifier)
	}

	for i, part := range parts {
		if part == "*" && i == 1 {
			continue
		}
		if !validIdentifierRegex.MatchString(part) {
			return fmt.Errorf("%w: %s %q (contains unsafe characters)", ErrInvalidIdentifier, context, identifier)
		}
	}
	return nil
}

// validateColumnExpression, select/where/having kolonlarını doğrular.
//
// Düz identifier'lar validateIdentifier'dan geçer. Parantez içeren ifadeler
// (COUNT(*), DATE(created_at)) ve "expr AS alias" kalıbı geliştirici tarafından
// yazıldığı varsayımıyla kabul edilir, ancak ";" ve "--" içeremez.
func validateColumnExpression(expr, context string) error {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return fmt.Errorf("%w: empty %s name", ErrInvalidIdentifier, context)
	}

	if strings.Contains(trimmed, "(") && strings.Contains(trimmed, ")") {
		if strings.Contains(trimmed, ";") || strings.Contains(trimmed, "--") {
			return fmt.Errorf("%w: %s expression %q (suspicious content)", ErrInvalidIdentifier, context, expr)
		}
		return nil
	}

	lower := strings.ToLower(trimmed)
	if idx := strings.Index(lower, " as "); idx > 0 {
		if err := validateIdentifier(strings.TrimSpace(trimmed[:idx]), context); err != nil {
			return err
		}
		return validateIdentifier(strings.TrimSpace(trimmed[idx+4:]), context+" alias")
	}

	return validateIdentifier(trimmed, context)
}
