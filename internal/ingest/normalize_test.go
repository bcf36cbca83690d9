package ingest

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"inter-\nnational", "international"},
		{"пере-\n  носи", "переноси"},
		{"a b", "a b"},
		{"  a \n\t b  ", "a b"},
		{"already clean", "already clean"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsGarbage(t *testing.T) {
	garbage := []string{
		"abc",        // too short
		"1234567",    // digits only (bare page number)
		"© Publisher 2020",
		"Visit www.example.com for more",
		"ISBN 966-7047-91-9",
		"Всі права захищені.",
		"All rights reserved worldwide",
	}
	for _, s := range garbage {
		if !IsGarbage(s) {
			t.Errorf("IsGarbage(%q) = false, want true", s)
		}
	}
	keep := []string{
		"Energy is the capacity to do work.",
		"Розглянемо основні визначення.",
	}
	for _, s := range keep {
		if IsGarbage(s) {
			t.Errorf("IsGarbage(%q) = true, want false", s)
		}
	}
}

func TestIsGarbageRuneLength(t *testing.T) {
	// 4 Cyrillic letters are 8 bytes but still below the 5-character minimum.
	if !IsGarbage("міст") {
		t.Error("length must be counted in runes, not bytes")
	}
}
