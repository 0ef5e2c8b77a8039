package scene

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestWrapper_Measure(t *testing.T) {
	w := NewWrapper(580, FontSize)
	if got := w.Measure(""); got != 0 {
		t.Errorf("Measure(\"\") = %v, want 0", got)
	}
	short, long := w.Measure("ab"), w.Measure("abcd")
	if short <= 0 || long <= short {
		t.Errorf("Measure() not increasing: ab=%v abcd=%v", short, long)
	}
}

func TestWrapper_Wrap(t *testing.T) {
	w := NewWrapper(100, FontSize)

	tests := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"blank", "   ", 0},
		{"fits", "one two", 1},
		{"long word alone", strings.Repeat("x", 80), 1},
		{"many words", strings.Repeat("lorem ipsum ", 20), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := w.Wrap(tt.in)
			if tt.name == "many words" {
				if len(got) < tt.want {
					t.Errorf("Wrap() = %d lines, want at least %d", len(got), tt.want)
				}
				return
			}
			if len(got) != tt.want {
				t.Errorf("Wrap() = %q, want %d lines", got, tt.want)
			}
		})
	}
}

func TestWrapper_WrapCollapsesWhitespace(t *testing.T) {
	w := NewWrapper(1000, FontSize)
	got := w.Wrap("a \t b\n c")
	if len(got) != 1 || got[0] != "a b c" {
		t.Errorf("Wrap() = %q, want [\"a b c\"]", got)
	}
}

func TestWrapper_WrapProperties(t *testing.T) {
	w := NewWrapper(200, FontSize)
	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SliceOf(rapid.StringMatching(`[a-zA-Z0-9]{1,12}`)).Draw(t, "words")
		lines := w.Wrap(strings.Join(words, " "))

		var rejoined []string
		for _, line := range lines {
			if len(strings.Fields(line)) > 1 && w.Measure(line) > w.Width() {
				t.Fatalf("line %q wider than %v", line, w.Width())
			}
			rejoined = append(rejoined, strings.Fields(line)...)
		}
		if strings.Join(rejoined, " ") != strings.Join(words, " ") {
			t.Fatalf("Wrap() lost words: %q -> %q", words, lines)
		}
	})
}
