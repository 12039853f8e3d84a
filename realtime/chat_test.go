package realtime

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	cases := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short string untouched", "hello", 120, "hello"},
		{"ascii cut at limit", "abcdef", 3, "abc"},
		{"two-byte rune not split", "héllo", 2, "h"},
		{"three-byte rune not split", strings.Repeat("あ", 5), 4, "あ"},
		{"limit on a boundary keeps whole runes", strings.Repeat("あ", 5), 6, "ああ"},
	}
	for _, c := range cases {
		got := truncate(c.in, c.n)
		if got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, got, c.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("%s: produced invalid UTF-8 %q", c.name, got)
		}
		if len(got) > c.n {
			t.Errorf("%s: %d bytes exceeds limit %d", c.name, len(got), c.n)
		}
	}
}
