package pack

import (
	"archive/zip"
	"bytes"
	"image"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cartoon-story-bot/internal/story"
)

func sampleDoc(k int) story.Document {
	doc := story.Document{
		Title:        "The Blue Dragon",
		Introduction: "A dragon lived on a hill.",
		Conclusion:   "And it flew home.",
	}
	for i := 0; i < k; i++ {
		doc.Scenes = append(doc.Scenes, story.Scene{
			Description: "The blue dragon from the reference image",
			Narrative:   "Narrative " + string(rune('A'+i)),
		})
	}
	return doc
}

// widthImages returns images whose widths encode their position.
func widthImages(k int) []image.Image {
	out := make([]image.Image, k)
	for i := range out {
		out[i] = image.NewRGBA(image.Rect(0, 0, i+1, 2))
	}
	return out
}

func TestStoryText(t *testing.T) {
	text := StoryText(sampleDoc(2))
	want := "# The Blue Dragon\n\nA dragon lived on a hill.\n\n" +
		"\n## Scene 1\n\nNarrative A\n" +
		"\n## Scene 2\n\nNarrative B\n" +
		"\n\nAnd it flew home.\n"
	assert.Equal(t, want, text)
}

func TestStoryTextBlankFields(t *testing.T) {
	text := StoryText(story.Document{Scenes: []story.Scene{{}}})
	assert.Equal(t, "# \n\n\n\n\n## Scene 1\n\n\n\n\n\n", text)
}

func TestBuildLayout(t *testing.T) {
	for _, k := range []int{1, 3, 7} {
		data, err := Build(sampleDoc(k), widthImages(k))
		require.NoError(t, err)

		zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)
		require.Len(t, zr.File, k+1)

		assert.Equal(t, StoryEntry, zr.File[0].Name)
		rc, err := zr.File[0].Open()
		require.NoError(t, err)
		text, err := io.ReadAll(rc)
		require.NoError(t, err)
		_ = rc.Close()
		assert.Equal(t, StoryText(sampleDoc(k)), string(text))

		for n := 1; n <= k; n++ {
			f := zr.File[n]
			assert.Equal(t, SceneEntry(n), f.Name)
			assert.Equal(t, zip.Deflate, f.Method)

			rc, err := f.Open()
			require.NoError(t, err)
			img, err := png.Decode(rc)
			require.NoError(t, err)
			_ = rc.Close()
			assert.Equal(t, n, img.Bounds().Dx(), "entry %s holds the wrong scene", f.Name)
		}
	}
}

func TestBuildRejectsMismatchedCounts(t *testing.T) {
	_, err := Build(sampleDoc(3), widthImages(2))
	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, err.Error(), "2 images for 3 scenes")
}

func TestBuildRejectsNilImage(t *testing.T) {
	images := widthImages(2)
	images[1] = nil
	_, err := Build(sampleDoc(2), images)
	var pe *Error
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, err.Error(), "scene_2.png")
}

func TestSceneEntry(t *testing.T) {
	assert.Equal(t, "scene_1.png", SceneEntry(1))
	assert.Equal(t, "scene_10.png", SceneEntry(10))
}
