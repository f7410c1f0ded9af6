package vision

const analysisPrompt = `Analyze this image in detail so it can seed an illustrated story.
Describe:
1. Main subjects or characters and their appearance
2. Setting, environment and atmosphere
3. Colors, lighting and mood
4. Visual style and artistic elements
5. Story themes or narrative directions the image suggests
6. Key visual elements that must stay the same across illustrations
Give a thorough analysis that can guide both the story and visual consistency.`

const featurePrompt = `Extract the visual elements of this image that must stay consistent across a series of generated illustrations.
Focus on:
- Character appearance details (if any)
- Art style and rendering approach
- Color palette and lighting style
- Composition elements
Be specific and concrete so the text can be reused as a conditioning prompt.`

const (
	analysisMaxTokens = 800
	featureMaxTokens  = 500
)
