package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"  Leading and Trailing  ", "leading-and-trailing"},
		{"Multiple   Spaces\tand tabs", "multiple-spaces-and-tabs"},
		{"UPPERCASE", "uppercase"},
		{"already-hyphenated title", "already-hyphenated-title"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.title), "title: %q", tc.title)
	}
}

func TestSlugifyDeterministic(t *testing.T) {
	// 同一标题永远生成同一 slug
	assert.Equal(t, Slugify("My First Post"), Slugify("My First Post"))
}
