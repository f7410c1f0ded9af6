// Package pack bundles a finished story into a downloadable zip archive.
package pack

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"

	"cartoon-story-bot/internal/story"
)

const (
	FileName    = "cartoon_story.zip"
	ContentType = "application/zip"
	StoryEntry  = "story.txt"
)

// Error reports an archive that could not be assembled.
type Error struct {
	Err error
}

func (e *Error) Error() string { return "story package: " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// SceneEntry names the image of the 1-based scene n.
func SceneEntry(n int) string {
	return fmt.Sprintf("scene_%d.png", n)
}

// StoryText renders the document as plain text with one "Scene N"
// heading per scene. Blank fields stay as blank lines.
func StoryText(doc story.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\n", doc.Title, doc.Introduction)
	for i, s := range doc.Scenes {
		fmt.Fprintf(&b, "\n## Scene %d\n\n%s\n", i+1, s.Narrative)
	}
	fmt.Fprintf(&b, "\n\n%s\n", doc.Conclusion)
	return b.String()
}

// Build writes story.txt followed by scene_1.png..scene_K.png. images[i]
// must belong to doc.Scenes[i].
func Build(doc story.Document, images []image.Image) ([]byte, error) {
	if len(images) != len(doc.Scenes) {
		return nil, &Error{Err: fmt.Errorf("have %d images for %d scenes", len(images), len(doc.Scenes))}
	}

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)

	w, err := zw.CreateHeader(&zip.FileHeader{Name: StoryEntry, Method: zip.Deflate})
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("create %s: %w", StoryEntry, err)}
	}
	if _, err := w.Write([]byte(StoryText(doc))); err != nil {
		return nil, &Error{Err: fmt.Errorf("write %s: %w", StoryEntry, err)}
	}

	for i, img := range images {
		name := SceneEntry(i + 1)
		if img == nil {
			return nil, &Error{Err: fmt.Errorf("%s: image is nil", name)}
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return nil, &Error{Err: fmt.Errorf("create %s: %w", name, err)}
		}
		if err := png.Encode(w, img); err != nil {
			return nil, &Error{Err: fmt.Errorf("encode %s: %w", name, err)}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, &Error{Err: fmt.Errorf("close archive: %w", err)}
	}
	return buf.Bytes(), nil
}
