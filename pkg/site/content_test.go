package site

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadContent(t *testing.T) {
	c, err := LoadContent()
	require.NoError(t, err)

	assert.Len(t, c.Cabins, 2)
	assert.Len(t, c.Attractions, 4)
	assert.Len(t, c.Posts, 6)
	assert.NotEmpty(t, c.Hero)

	for _, p := range Properties {
		cb := c.Cabin(p)
		require.NotNil(t, cb, p.ID())
		assert.Len(t, cb.Images, 3)
		assert.Len(t, cb.Features, 4)
		assert.NotEmpty(t, cb.BookingURL)
	}

	post, err := c.Post("7")
	require.NoError(t, err)
	assert.Equal(t, "Sarah Peak", post.Author)

	_, err = c.Post("2")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestParseContentErrors(t *testing.T) {
	_, err := parseContent(`hero = "x"`)
	assert.ErrorContains(t, err, "missing cabin")

	_, err = parseContent(`colour = "green"`)
	assert.ErrorContains(t, err, "unknown content keys")
}

func TestDefaultImages(t *testing.T) {
	c, err := LoadContent()
	require.NoError(t, err)

	refs := c.DefaultImages(AngelRise, []string{"/photos/angelrise/_/deck@x2048_1.jpg"})
	require.Len(t, refs, 4)
	assert.Equal(t, "/photos/angelrise/_/deck@x2048_1.jpg", string(refs[0]))
	assert.Equal(t, c.Cabin(AngelRise).Images[0], string(refs[1]))
}

func TestParagraphs(t *testing.T) {
	tests := []struct {
		in   string
		want []Paragraph
	}{
		{"", []Paragraph{}},
		{"one\n\ntwo", []Paragraph{{Text: "one"}, {Text: "two"}}},
		{"**Fall**\nLeaves.", []Paragraph{{Heading: "Fall", Text: "Leaves."}}},
		{"**Just a heading**", []Paragraph{{Heading: "Just a heading"}}},
		{"a **bold** word", []Paragraph{{Text: "a **bold** word"}}},
		{"\n\n\nspaced\n\n\n\n", []Paragraph{{Text: "spaced"}}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Paragraphs(tc.in), tc.in)
	}
}
