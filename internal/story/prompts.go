package story

import (
	"fmt"
	"strings"
)

const storytellerPersona = "You are an expert storyteller and creative writer. " +
	"Create engaging, coherent stories that can be visualized effectively. " +
	"Always respond with valid JSON format."

const promptEngineerPersona = "You are an expert at writing prompts for AI image generation models. " +
	"Focus on visual consistency and artistic quality."

// SceneDescriptionLead is the phrase every scene description must open with.
const SceneDescriptionLead = "from the reference image"

const (
	storyMaxTokens   = 2000
	enhanceMaxTokens = 300
)

func buildStoryPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the following image analysis, create a compelling %s story with exactly %d scenes.\n\n",
		strings.ToLower(req.Genre), req.NumScenes)
	b.WriteString("Image Analysis:\n")
	b.WriteString(req.Analysis)
	b.WriteString("\n\n")
	if idea := strings.TrimSpace(req.Idea); idea != "" {
		fmt.Fprintf(&b, "Story direction: %s\n\n", idea)
	}

	writeSection(&b, "CRITICAL REQUIREMENTS FOR CHARACTER CONSISTENCY", []string{
		"IDENTIFY the main character/subject from the image analysis (animal, person, object)",
		"This SAME character must be the protagonist in EVERY scene without exception",
		"Each scene description must explicitly mention this character by name/type",
		"The character keeps the same appearance, colors and species throughout",
		fmt.Sprintf("Each narrative should be approximately %d words", req.WordsPerPage),
	})

	writeSection(&b, "Story Structure Requirements", []string{
		"Create a story title featuring the main character",
		"Write a brief introduction establishing the main character",
		fmt.Sprintf("Generate exactly %d connected scenes; each description STARTS with the main character name/type and includes specific visual details of the character, and each narrative follows the character's journey", req.NumScenes),
		"Provide a conclusion featuring the same character",
		"Maintain logical story flow and character development",
	})

	fmt.Fprintf(&b, "Genre: %s\n\n", req.Genre)
	fmt.Fprintf(&b, "IMPORTANT: Every scene description must begin with \"The [character type/name] %s\" to ensure visual consistency in generated images.\n\n", SceneDescriptionLead)

	b.WriteString("Respond with a JSON object in this exact format:\n")
	fmt.Fprintf(&b, `{
  "title": "Story Title",
  "introduction": "Introduction paragraph",
  "scenes": [
    {
      "description": "Brief visual description for image generation that includes the main character",
      "narrative": "Story narrative for this scene (approximately %d words)"
    }
  ],
  "conclusion": "Conclusion paragraph"
}`, req.WordsPerPage)
	return b.String()
}

func buildEnhancePrompt(description, digest, style string) string {
	var b strings.Builder
	b.WriteString("Enhance this scene description for image generation while keeping it visually consistent.\n\n")
	fmt.Fprintf(&b, "Original scene: %s\n\n", description)
	fmt.Fprintf(&b, "Visual consistency requirements:\n%s\n\n", digest)
	fmt.Fprintf(&b, "Desired style: %s\n\n", style)
	writeSection(&b, "The enhanced prompt must", []string{
		"Keep the original scene's essence",
		"Incorporate the visual consistency elements",
		"Name the desired artistic style",
		"Suit an image generation model",
		"Be concise but descriptive (under 200 words)",
	})
	b.WriteString("Return only the enhanced prompt text.")
	return b.String()
}

func writeSection(b *strings.Builder, title string, lines []string) {
	b.WriteString(title)
	b.WriteString(":\n")
	for i, line := range lines {
		fmt.Fprintf(b, "%d. %s\n", i+1, line)
	}
	b.WriteString("\n")
}
