// Package redact provides utilities for redacting sensitive information from strings
// before they are logged or returned in error responses. This package helps prevent
// the accidental leakage of credentials, connection strings, file paths, and other
// sensitive data that might be included in error messages.
package redact

import "regexp"

// Constants for redaction placeholders
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
)

// rule pairs a pattern with its replacement. Replacements may reference
// capture groups so that the non-sensitive shape of a match (for example the
// statement and table of a SQL query) survives redaction.
type rule struct {
	pattern     *regexp.Regexp
	replacement string
}

// rules are applied in order; earlier rules may consume text that later
// rules would otherwise match.
var rules = []rule{
	// Database connection strings
	{regexp.MustCompile(`(?i)(postgres|mysql|mongodb|db|database|connection)://[^@]+@`), RedactedCredentialPlaceholder},

	// Credentials and tokens
	{regexp.MustCompile(`(?i)(password|passwd|pwd)([=:\s]?['"]?)[^'"&\s]{3,}`), RedactedCredentialPlaceholder},
	{regexp.MustCompile(`(?i)(api[_-]?key|token|secret|key|access|auth)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`), RedactedKeyPlaceholder},
	{regexp.MustCompile(`(AKIA|AccessKey(Id)?)([^a-zA-Z0-9])?[A-Z0-9]{8,}`), RedactedKeyPlaceholder},
	// JWT token pattern - matches the standard three-part base64url-encoded JWT token format
	{regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`), "[REDACTED_JWT]"},

	// File paths
	{regexp.MustCompile(`(/[\w.-]+){2,}`), RedactedPathPlaceholder},
	{regexp.MustCompile(`[A-Za-z]:\\[^\\]+(\\[^\\]+)+`), RedactedPathPlaceholder},

	// Stack trace fragments
	{regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`), "[STACK_TRACE_REDACTED]"},

	// Email addresses
	{regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`), "[REDACTED_EMAIL]"},

	// SQL statements. The contingency approach keeps the statement shape
	// (verb, table, column list) while dropping values and filter
	// conditions, so logs stay debuggable without leaking row contents.
	{regexp.MustCompile(`(?i)(INSERT\s+INTO\s+[\w.]+\s*(?:\([^)]*\))?\s*VALUES\s*)\(.*\)`), "${1}[SQL_VALUES_REDACTED]"},
	{regexp.MustCompile(`(?i)(UPDATE\s+[\w.]+\s+SET\s+).*`), "${1}[SQL_VALUES_REDACTED]"},
	{regexp.MustCompile(`(?i)(DELETE\s+FROM\s+[\w.]+\s+)WHERE\s+.*`), "${1}[SQL_WHERE_REDACTED]"},
	{regexp.MustCompile(`(?i)SELECT\s+.*?\s+FROM\s+.*`), "SELECT FROM... [SQL_VALUES_REDACTED]"},

	// UUIDs identify learners, collections and items; they never belong in logs
	{regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`), "[REDACTED_UUID]"},

	// Additional sensitive patterns
	{regexp.MustCompile(`(?:at )?line ?\d+`), "[REDACTED_LINE_NUMBER]"},
	{regexp.MustCompile(`(?i)syntax error|syntax problem|parse error`), "[REDACTED_SYNTAX_ERROR]"},
	{regexp.MustCompile(`\b(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}(?::\d{1,5})?\b`), "[REDACTED_HOST]"},
	{regexp.MustCompile(`(?i)(?:no such file|file not found|can't open|cannot open|file error)`), "[REDACTED_FILE_ERROR]"},
}

// String redacts sensitive information from the input string
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.replacement)
	}

	return result
}

// Error redacts sensitive information from an error's Error() output
func Error(err error) string {
	if err == nil {
		return ""
	}

	return String(err.Error())
}
