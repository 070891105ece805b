package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Jane Doe", "Jane Doe"},
		{"surrounding whitespace", "  Jane Doe  ", "Jane Doe"},
		{"internal runs collapse", "Jane \t\t Doe", "Jane Doe"},
		{"control characters dropped", "Jane\x00Doe", "JaneDoe"},
		{"only whitespace", "   \t  ", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.in); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeFreeText(t *testing.T) {
	if got := NormalizeFreeText("  hello   world  ", 50); got != "hello world" {
		t.Errorf("got %q", got)
	}
	if got := NormalizeFreeText("abcdef", 3); got != "abc" {
		t.Errorf("truncation: got %q, want %q", got, "abc")
	}
	if got := NormalizeFreeText("abcdef", 0); got != "abcdef" {
		t.Errorf("zero maxLen should not truncate, got %q", got)
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"e164 passthrough", "+919876543210", "+919876543210"},
		{"national indian number", "9876543210", "+919876543210"},
		{"formatted with separators", "+91-98765-43210", "+919876543210"},
		{"us number", "+16502530000", "+16502530000"},
		{"garbage", "not-a-phone", ""},
		{"too short", "123", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.in); got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
