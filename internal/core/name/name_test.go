package name

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                        "",
		"   ":                     "",
		"  Brian   NGUYEN ":       "brian nguyen",
		"O'Neil, Mary-Kate":       "oneil mary-kate",
		"Alejandro\tÁvila":        "alejandro vila",
		"Jean\n\nPaul  II":        "jean paul ii",
		"#1 Employee!!":           "1 employee",
		"dr. colin p. christian ": "dr colin p christian",
	}

	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "Normalize(%q)", in)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"Brian N.",
		"  Colin   Prafullchandra  Christian",
		"ÉLODIE d'Arc",
		"--- 123 ---",
		"a b",
	}

	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestWordsSimilar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want bool
	}{
		{"jon", "john", true},
		{"Jon", "John", true},
		{"al", "bob", false},
		{"chris", "christopher", true},
		{"dmitry", "dmytro", true},
		{"mark", "mary", true},
		{"mark", "mike", false},
		{"katherine", "catherina", true},
		{"smith", "jones", false},
		{"", "anna", false},
		{"", "", true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, WordsSimilar(tt.a, tt.b), "WordsSimilar(%q, %q)", tt.a, tt.b)
	}
}

func TestNamesSimilar(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"initial last name", "Brian N", "Brian Nguyen", true},
		{"initial mismatch", "Brian N", "Brian Smith", false},
		{"middle name inserted", "Colin Christian", "Colin Prafullchandra Christian", true},
		{"typo in both names", "Dmitry Benz", "Dmytro Brovko Benz", true},
		{"exact after normalize", "JAMIE  smith", "jamie smith", true},
		{"first name gate", "Anna Smith", "Brian Smith", false},
		{"single tokens", "Madonna", "madona", true},
		{"reordered tokens", "Jose Luis Rodriguez", "Jose Rodriguez Luis", true},
		{"different surname", "Ana Maria Perez", "Ana Perez Gomez", false},
		{"empty input", "", "Brian Nguyen", false},
		{"punctuation only", "...", "...", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NamesSimilar(tt.a, tt.b))
			assert.Equal(t, tt.want, NamesSimilar(tt.b, tt.a), "symmetry")
		})
	}
}

func TestNamesSimilar_EqualTokenCountUsesSecondName(t *testing.T) {
	t.Parallel()

	// 同じトークン数なら b 側の有意トークンが a 側にすべて含まれる必要があります。
	assert.False(t, NamesSimilar("Jon Ab Ab", "Jon Ab Cd"))
	assert.True(t, NamesSimilar("Jon Ab Cd", "Jon Ab Ab"))

	assert.False(t, significantTokensCovered([]string{"jon", "ab", "ab"}, []string{"jon", "ab", "cd"}))
	assert.True(t, significantTokensCovered([]string{"jon", "ab", "cd"}, []string{"jon", "ab", "ab"}))
}
