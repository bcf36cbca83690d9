package main

import "testing"

func TestBuildQuestion(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"when", "was", "it", "founded"}, "when was it founded"},
		{[]string{"single"}, "single"},
		{[]string{" padded "}, "padded"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := buildQuestion(tt.args); got != tt.want {
			t.Errorf("buildQuestion(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestIsExitWord(t *testing.T) {
	for _, word := range []string{"exit", "quit", "EXIT", "Quit", "вихід"} {
		if !isExitWord(word) {
			t.Errorf("isExitWord(%q) = false", word)
		}
	}
	for _, word := range []string{"", "why", "exit now"} {
		if isExitWord(word) {
			t.Errorf("isExitWord(%q) = true", word)
		}
	}
}
