package util

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"spaces to underscores", "Building Great Apps", "Building_Great_Apps"},
		{"path separators", `a/b\c`, "a_b_c"},
		{"punctuation collapsed", "What's new in Swift?", "What_s_new_in_Swift"},
		{"underscore runs collapsed", "a  -  b", "a_-_b"},
		{"leading and trailing junk trimmed", "..._session_...", "session"},
		{"colons and quotes", `Meet "Core ML": deep dive`, "Meet_Core_ML_deep_dive"},
		{"already clean", "session_10144", "session_10144"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.input); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
