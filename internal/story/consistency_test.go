package story

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProtagonist(t *testing.T) {
	assert.Equal(t, "blue dragon", Protagonist("The blue dragon from the reference image flies over a city"))
	assert.Equal(t, "cat", Protagonist("  The Cat from the reference image naps"))
	assert.Empty(t, Protagonist("A dragon flies"))
}

func TestDriftingScenes(t *testing.T) {
	doc := Document{Scenes: []Scene{
		{Description: "The blue dragon from the reference image wakes up"},
		{Description: "The Blue Dragon from the reference image eats"},
		{Description: "A knight rides into town"},
		{Description: "The blue dragon from the reference image sleeps"},
	}}
	assert.Equal(t, []int{2}, DriftingScenes(doc))

	assert.Nil(t, DriftingScenes(Document{}))
	assert.Nil(t, DriftingScenes(Document{Scenes: []Scene{{Description: "no lead phrase"}, {Description: "x"}}}))
}
