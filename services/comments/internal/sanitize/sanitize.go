// Package sanitize validates free-text search input before it reaches the
// query builder. Inputs that look like injection or XSS attempts are rejected
// outright; nothing in this package ever "cleans and continues".
package sanitize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// RejectedMessage is the exact error string returned for flagged input.
const RejectedMessage = "Invalid search query detected"

// Patterns that mark a query as a probable injection attempt. Matching is
// case-insensitive and deliberately coarse: a false positive costs the caller
// a rephrase, a false negative reaches the data store.
var hostilePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*/?\s*[a-z][^>]*>`),              // any markup tag, <script>, <img onerror=...>
	regexp.MustCompile(`(?i)\b(drop|truncate|alter|create)\s+table\b`),
	regexp.MustCompile(`(?i)\bunion\s+(all\s+)?select\b`),
	regexp.MustCompile(`(?i)\bdelete\s+from\b`),
	regexp.MustCompile(`(?i)\binsert\s+into\b`),
	regexp.MustCompile(`;\s*--`),
	regexp.MustCompile(`(?i)javascript\s*:`),
}

// SecurityError reports a rejected query. SanitizedQuery echoes the input
// with the offending substrings stripped, for client-side diagnostics; the
// original input is never executed.
type SecurityError struct {
	SanitizedQuery string
}

func (e *SecurityError) Error() string { return RejectedMessage }

// ValidationError is an ordinary input problem (too short, too long, empty).
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Sanitizer carries the configured query length bounds.
type Sanitizer struct {
	MinQueryLen int
	MaxQueryLen int
}

func New(minLen, maxLen int) *Sanitizer {
	return &Sanitizer{MinQueryLen: minLen, MaxQueryLen: maxLen}
}

// Query validates a free-text search query and returns the trimmed clean
// form. Rejections are *SecurityError; length problems are *ValidationError.
func (s *Sanitizer) Query(raw string) (string, error) {
	for _, p := range hostilePatterns {
		if p.MatchString(raw) {
			return "", &SecurityError{SanitizedQuery: Strip(raw)}
		}
	}

	clean := strings.TrimSpace(raw)
	if clean == "" {
		return "", &ValidationError{Message: "Search query is required"}
	}
	// Bounds are in characters, not bytes, so multibyte input counts once.
	if utf8.RuneCountInString(clean) < s.MinQueryLen {
		return "", &ValidationError{Message: fmt.Sprintf("Search query must be at least %d characters", s.MinQueryLen)}
	}
	if utf8.RuneCountInString(clean) > s.MaxQueryLen {
		return "", &ValidationError{Message: fmt.Sprintf("Search query too long. Maximum allowed: %d characters", s.MaxQueryLen)}
	}
	return clean, nil
}

// Strip removes every hostile substring from the input. Used only for the
// sanitized_query echo on rejection, never to launder a query into execution.
func Strip(raw string) string {
	out := raw
	for _, p := range hostilePatterns {
		out = p.ReplaceAllString(out, "")
	}
	return strings.Join(strings.Fields(out), " ")
}
