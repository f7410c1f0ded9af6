package handlers

import (
	"fmt"
	"strings"

	"cartoon-story-bot/internal/pipeline"
	"cartoon-story-bot/internal/settings"
	"cartoon-story-bot/internal/story"
)

const startText = "🎨 Cartoon Story Bot\n\n" +
	"Send me a photo or drawing and I will turn it into an illustrated short story, " +
	"with one picture per scene starring your character.\n\n" +
	"Commands:\n" +
	"/genres - choose a story genre\n" +
	"/settings - show or change story settings\n" +
	"/reset - restore default settings\n" +
	"/help - how it works"

var helpText = "📖 How it works\n\n" +
	"1. Send a photo. Add a caption with your story idea if you like.\n" +
	"2. I analyze the picture, write the story and illustrate every scene.\n" +
	"3. You get the pages here plus a zip with the text and all images.\n\n" +
	"Caption or /settings options:\n" +
	fmt.Sprintf("  scenes=N (%d-%d)\n", settings.MinScenes, settings.MaxScenes) +
	fmt.Sprintf("  words=N per page (%d-%d)\n", settings.MinWords, settings.MaxWords) +
	"  genre=space_journey\n" +
	fmt.Sprintf("  style=N (%g-%g)\n", settings.MinStyleStrength, settings.MaxStyleStrength) +
	fmt.Sprintf("  detail=N (%d-%d)\n", settings.MinDetailLevel, settings.MaxDetailLevel) +
	"  enhance=on|off\n\n" +
	"Example caption: scenes=4 genre=forest_friends a lost kitten finds her way home"

const (
	photoPromptText = "Send me a photo to start a story. Your caption becomes the story idea."
	sendAsPhotoText = "Please send the picture as a photo, not as a file."
	busyText        = "⏳ Your previous story is still being created. Please wait for it to finish."
)

func settingsText(o settings.Options) string {
	enhance := "off"
	if o.Enhance {
		enhance = "on"
	}
	return fmt.Sprintf("⚙️ Story settings\n\n"+
		"Scenes: %d\n"+
		"Words per page: %d\n"+
		"Genre: %s\n"+
		"Style strength: %g\n"+
		"Detail level: %d\n"+
		"Enhanced prompts: %s",
		o.NumScenes, o.WordsPerPage, settings.GenreName(o.Genre), o.StyleStrength, o.DetailLevel, enhance)
}

func progressText(o settings.Options) string {
	text := fmt.Sprintf("✨ Creating a %d-scene %s story. This can take a few minutes...", o.NumScenes, settings.GenreName(o.Genre))
	if o.Idea != "" {
		text += "\n\nIdea: " + o.Idea
	}
	return text
}

func openingText(doc story.Document) string {
	return fmt.Sprintf("📖 %s\n\n%s", doc.Title, doc.Introduction)
}

func sceneCaption(n int, scene story.Scene) string {
	return fmt.Sprintf("Scene %d\n\n%s", n, scene.Narrative)
}

func closingText(doc story.Document) string {
	return "🌟 " + doc.Conclusion + "\n\nThe End"
}

func failuresText(failures []pipeline.SceneFailure) string {
	if len(failures) == 0 {
		return ""
	}
	scenes := make([]string, len(failures))
	for i, f := range failures {
		scenes[i] = fmt.Sprint(f.Scene)
	}
	return fmt.Sprintf("⚠️ Some illustrations could not be drawn (scene %s). A placeholder was used instead.", strings.Join(scenes, ", "))
}
