package utils

import (
	"strings"
	"testing"
)

func TestGenerateRandomString(t *testing.T) {
	s := GenerateRandomString(10)
	if len(s) != 10 {
		t.Errorf("expected length 10, got %d", len(s))
	}
	if s == GenerateRandomString(10) && s == GenerateRandomString(10) {
		t.Error("three identical random strings in a row is suspicious")
	}
}

func TestGenerateRandomDigitString(t *testing.T) {
	s := GenerateRandomDigitString(6)
	if len(s) != 6 {
		t.Fatalf("expected length 6, got %d", len(s))
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			t.Errorf("expected only digits, got %q", s)
			break
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd":  "passwd",
		"photo 1 (new).png": "photo_1__new_.png",
		"normal.jpg":        "normal.jpg",
	}
	for in, want := range cases {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
	if got := SanitizeFilename("///"); got == "" || strings.Contains(got, "/") {
		t.Errorf("degenerate name must not stay empty or keep slashes, got %q", got)
	}
}
