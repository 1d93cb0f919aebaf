package pilot_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/pilot"
	"github.com/stretchr/testify/assert"
)

func TestPlainText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "no markup", input: "Plan de formation", want: "Plan de formation"},
		{name: "tags become spaces", input: "<p>un</p><p>deux</p>", want: " un deux "},
		{name: "whitespace collapsed", input: "a \n\t  b", want: "a b"},
		{name: "attributes removed", input: `<a href="/x">lien</a>`, want: " lien "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, pilot.PlainText(tt.input))
		})
	}
}

func TestExcerpt(t *testing.T) {
	t.Parallel()

	t.Run("empty content returns empty string", func(t *testing.T) {
		t.Parallel()

		assert.Empty(t, pilot.Excerpt("", "opco", 10))
	})

	t.Run("clips both ends around the match", func(t *testing.T) {
		t.Parallel()

		content := "0123456789OPCO0123456789"

		got := pilot.Excerpt(content, "opco", 5)

		assert.Equal(t, "...56789OPCO01234...", got)
	})

	t.Run("no prefix when match is near the start", func(t *testing.T) {
		t.Parallel()

		got := pilot.Excerpt("OPCO et branches professionnelles", "opco", 3)

		assert.Equal(t, "OPCO et...", got)
	})

	t.Run("no suffix when match is near the end", func(t *testing.T) {
		t.Parallel()

		got := pilot.Excerpt("financement par les OPCO", "opco", 4)

		assert.Equal(t, "...les OPCO", got)
	})

	t.Run("not found returns leading text with ellipsis", func(t *testing.T) {
		t.Parallel()

		got := pilot.Excerpt("abcdefghijklmnop", "zz", 3)

		assert.Equal(t, "abcdef...", got)
	})

	t.Run("not found on short text keeps it whole", func(t *testing.T) {
		t.Parallel()

		got := pilot.Excerpt("<p>court</p>", "zz", 100)

		assert.Equal(t, " court ...", got)
	})

	t.Run("counts accented characters as one", func(t *testing.T) {
		t.Parallel()

		got := pilot.Excerpt("ééééé médico éééé", "médico", 2)

		assert.Equal(t, "...é médico é...", got)
	})

	t.Run("window never exceeds query plus context", func(t *testing.T) {
		t.Parallel()

		content := strings.Repeat("x", 500) + "qualiopi" + strings.Repeat("y", 500)

		got := pilot.Excerpt(content, "QUALIOPI", pilot.DefaultExcerptLength)

		assert.Equal(t, len("...")*2+len("qualiopi")+2*pilot.DefaultExcerptLength, len(got))
		assert.Contains(t, got, "qualiopi")
	})
}
