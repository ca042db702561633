package roomname

import (
	"slices"
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	for i := 0; i < 100; i++ {
		name := Generate()
		parts := strings.Split(name, "-")
		if len(parts) != 3 {
			t.Fatalf("Generate() = %q, want three words", name)
		}
		if !slices.Contains(colors, parts[0]) && !slices.Contains(moods, parts[0]) {
			t.Errorf("first word %q not from color or mood lists", parts[0])
		}
		if !slices.Contains(animals, parts[1]) || !slices.Contains(things, parts[2]) {
			t.Errorf("unexpected words in %q", name)
		}
	}
}
