package sanitize

import (
	"errors"
	"strings"
	"testing"
)

func newSanitizer() *Sanitizer { return New(3, 100) }

func TestQuery_Accepts(t *testing.T) {
	cases := []struct{ in, want string }{
		{"great product", "great product"},
		{"  padded  ", "padded"},
		{"#hashtag mentions @brand", "#hashtag mentions @brand"},
		{`"exact phrase"`, `"exact phrase"`},
		{"price < 100 and rating > 4", "price < 100 and rating > 4"},
	}
	for _, tc := range cases {
		got, err := newSanitizer().Query(tc.in)
		if err != nil {
			t.Fatalf("Query(%q): unexpected error %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Query(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestQuery_RejectsHostileInput(t *testing.T) {
	cases := []string{
		`<script>alert(1)</script>`,
		`hello <img src=x onerror=alert(1)>`,
		`'; DROP TABLE comments; --`,
		`nice UNION SELECT * FROM users`,
		`DELETE FROM comments`,
		`insert into comments values (1)`,
		`javascript:alert(document.cookie)`,
	}
	for _, in := range cases {
		_, err := newSanitizer().Query(in)
		var sec *SecurityError
		if !errors.As(err, &sec) {
			t.Fatalf("Query(%q): expected SecurityError, got %v", in, err)
		}
		if err.Error() != RejectedMessage {
			t.Fatalf("Query(%q): wrong message %q", in, err.Error())
		}
		if strings.Contains(sec.SanitizedQuery, "<script>") || strings.Contains(strings.ToUpper(sec.SanitizedQuery), "DROP TABLE") {
			t.Fatalf("Query(%q): sanitized echo still contains offending substring: %q", in, sec.SanitizedQuery)
		}
	}
}

func TestQuery_LengthBounds(t *testing.T) {
	s := newSanitizer()

	if _, err := s.Query(""); err == nil || err.Error() != "Search query is required" {
		t.Fatalf("empty query: got %v", err)
	}
	if _, err := s.Query("   "); err == nil || err.Error() != "Search query is required" {
		t.Fatalf("blank query: got %v", err)
	}
	if _, err := s.Query("ab"); err == nil || err.Error() != "Search query must be at least 3 characters" {
		t.Fatalf("short query: got %v", err)
	}
	var ve *ValidationError
	if _, err := s.Query(strings.Repeat("a", 101)); !errors.As(err, &ve) {
		t.Fatalf("long query: expected ValidationError, got %v", err)
	}
	if _, err := s.Query("abc"); err != nil {
		t.Fatalf("3-char query should pass: %v", err)
	}
}

func TestQuery_LengthBoundsCountRunes(t *testing.T) {
	s := newSanitizer()

	// "€" is one character in three bytes; still below the minimum.
	if _, err := s.Query("€"); err == nil || err.Error() != "Search query must be at least 3 characters" {
		t.Fatalf("single-rune query: got %v", err)
	}
	if _, err := s.Query("日本"); err == nil || err.Error() != "Search query must be at least 3 characters" {
		t.Fatalf("two-rune query: got %v", err)
	}

	// 40 CJK characters are 120 bytes but well under the 100-character cap.
	if _, err := s.Query(strings.Repeat("日", 40)); err != nil {
		t.Fatalf("40-rune query should pass: %v", err)
	}
	if _, err := s.Query(strings.Repeat("日", 100)); err != nil {
		t.Fatalf("100-rune query should pass: %v", err)
	}
	var ve *ValidationError
	if _, err := s.Query(strings.Repeat("日", 101)); !errors.As(err, &ve) {
		t.Fatalf("101-rune query: expected ValidationError, got %v", err)
	}
}

func TestStrip(t *testing.T) {
	got := Strip(`find <script>alert(1)</script> me; -- now`)
	if strings.Contains(got, "<script>") || strings.Contains(got, "; --") {
		t.Fatalf("strip left hostile content: %q", got)
	}
	if !strings.Contains(got, "find") || !strings.Contains(got, "me") {
		t.Fatalf("strip removed benign content: %q", got)
	}
}
