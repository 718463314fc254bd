package sanitizer

import "testing"

func TestNormalizeIdentity(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already canonical", "user@example.com", "user@example.com"},
		{"uppercase", "USER@EXAMPLE.COM", "user@example.com"},
		{"mixed case with padding", "  User@Example.COM  ", "user@example.com"},
		{"tabs and newlines", "\tuser@example.com\n", "user@example.com"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeIdentity(tt.input); got != tt.want {
				t.Errorf("NormalizeIdentity(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Grand Prize", "Grand Prize"},
		{"surrounding space", "  Grand Prize  ", "Grand Prize"},
		{"internal runs collapse", "Grand   Prize", "Grand Prize"},
		{"mixed whitespace", "Grand\t \nPrize", "Grand Prize"},
		{"empty", "", ""},
		{"case preserved", "GRAND prize", "GRAND prize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
