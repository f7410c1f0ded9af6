package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenres(t *testing.T) {
	list := Genres()
	assert.Len(t, list, 7)
	assert.Equal(t, NamedOption{Key: "magical_adventure", Name: "Magical Adventure"}, list[0])
	assert.Equal(t, "Fantasy Kingdom", list[6].Name)
}

func TestLookupGenre(t *testing.T) {
	for _, in := range []string{"space_journey", "Space Journey", "SPACE-JOURNEY", " space journey "} {
		key, g, ok := LookupGenre(in)
		assert.True(t, ok, in)
		assert.Equal(t, "space_journey", key)
		assert.Equal(t, "Space Journey", g.Name)
	}

	_, _, ok := LookupGenre("western")
	assert.False(t, ok)
	_, _, ok = LookupGenre("")
	assert.False(t, ok)
}

func TestGenreFallbacks(t *testing.T) {
	assert.Equal(t, "Magical Adventure", GenreName("unknown"))
	assert.Equal(t, "Underwater World", GenreName("underwater_world"))
	assert.Contains(t, GenreStyle("space_journey"), "sci-fi")
	assert.Contains(t, GenreStyle(""), "storybook")
}
