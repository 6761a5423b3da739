// Package validate contains the input validation rules applied before
// any SQL is sent to Snowflake.
//
// All functions are pure: they inspect their arguments and either
// return nil or an error wrapping ErrValidation. Nothing here touches
// the network or the driver.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrValidation is the sentinel for every rule in this package.
// Check with errors.Is().
var ErrValidation = errors.New("validation failed")

// MaxIdentifierLength bounds database identifiers (Snowflake's own
// limit for unquoted identifiers).
const MaxIdentifierLength = 255

// dangerousKeywords are rejected in queries unless DDL is explicitly
// allowed. Matching is case-insensitive on the whole query text.
var dangerousKeywords = []string{
	"DROP", "DELETE", "TRUNCATE", "ALTER", "CREATE", "INSERT", "UPDATE",
	"GRANT", "REVOKE", "EXEC", "EXECUTE", "CALL", "MERGE",
}

// dangerousPatterns catch injection-style constructs regardless of the
// DDL flag: statement chaining into a mutating keyword, UNION SELECT,
// comment markers and EXEC calls.
var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i);\s*DROP\s+`),
	regexp.MustCompile(`(?i);\s*DELETE\s+`),
	regexp.MustCompile(`(?i);\s*TRUNCATE\s+`),
	regexp.MustCompile(`(?i);\s*ALTER\s+`),
	regexp.MustCompile(`(?i);\s*CREATE\s+`),
	regexp.MustCompile(`(?i);\s*INSERT\s+`),
	regexp.MustCompile(`(?i);\s*UPDATE\s+`),
	regexp.MustCompile(`(?i)UNION\s+SELECT`),
	regexp.MustCompile(`--`),
	regexp.MustCompile(`/\*.*\*/`),
	regexp.MustCompile(`(?i)EXEC\s*\(`),
	regexp.MustCompile(`(?i)EXECUTE\s*\(`),
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Query checks a SQL query for safety. When allowDDL is false, queries
// containing any mutating keyword are rejected; the injection patterns
// are rejected unconditionally.
func Query(query string, allowDDL bool) error {
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: query cannot be empty", ErrValidation)
	}

	upper := strings.ToUpper(strings.TrimSpace(query))

	if !allowDDL {
		for _, kw := range dangerousKeywords {
			if strings.Contains(upper, kw) {
				return fmt.Errorf("%w: query contains potentially dangerous keyword: %s", ErrValidation, kw)
			}
		}
	}

	for _, pat := range dangerousPatterns {
		if pat.MatchString(upper) {
			return fmt.Errorf("%w: query contains potentially dangerous pattern: %s", ErrValidation, pat.String())
		}
	}

	return nil
}

// Identifier checks a database identifier (table name, column name,
// parameter name, ...). kind names the identifier in error messages.
func Identifier(value, kind string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrValidation, kind)
	}
	if len(value) > MaxIdentifierLength {
		return fmt.Errorf("%w: %s too long: %s", ErrValidation, kind, value)
	}
	if !identifierPattern.MatchString(value) {
		return fmt.Errorf("%w: invalid %s: %s", ErrValidation, kind, value)
	}
	return nil
}

// Params checks query parameters: keys must be valid identifiers and
// values must be nil or a primitive scalar. Returns a normalized copy.
func Params(params map[string]any) (map[string]any, error) {
	if params == nil {
		return map[string]any{}, nil
	}

	validated := make(map[string]any, len(params))
	for key, value := range params {
		if err := Identifier(key, "parameter name"); err != nil {
			return nil, err
		}

		switch value.(type) {
		case nil, string, bool,
			int, int8, int16, int32, int64,
			uint, uint8, uint16, uint32, uint64,
			float32, float64:
			validated[key] = value
		default:
			return nil, fmt.Errorf("%w: invalid parameter value type for %q: %T", ErrValidation, key, value)
		}
	}

	return validated, nil
}

// accountPattern and userPattern restrict the connection fields that
// end up in the DSN.
var (
	accountPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	userPattern    = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
)

// Account checks the Snowflake account identifier format.
func Account(account string) error {
	if !accountPattern.MatchString(account) {
		return fmt.Errorf("%w: invalid account format", ErrValidation)
	}
	return nil
}

// User checks the Snowflake user name format.
func User(user string) error {
	if !userPattern.MatchString(user) {
		return fmt.Errorf("%w: invalid user format", ErrValidation)
	}
	return nil
}
