package illustrate

import (
	"fmt"
	"strings"
)

// DigestPrefixRunes bounds how much of the feature digest enters a prompt.
const DigestPrefixRunes = 200

// DeviationForPosition keeps the opening scene closest to the reference,
// lets interior scenes diverge the most and brings the closing scene
// partway back.
func DeviationForPosition(index, total int) float64 {
	switch {
	case index == 0:
		return 0.6
	case index == total-1:
		return 0.7
	default:
		return 0.8
	}
}

// ScenePrompt builds the synthesis prompt for one scene.
func ScenePrompt(description, digest string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Based on the uploaded reference image style and main character: %s. ", strings.TrimSpace(description))
	b.WriteString("Important: Feature the exact same main character/subject from the reference image ")
	b.WriteString("(same species, appearance, colors, and visual style). ")
	b.WriteString("Maintain identical art style, lighting, and composition approach as the reference. ")
	fmt.Fprintf(&b, "Visual consistency elements: %s. ", prefixRunes(digest, DigestPrefixRunes))
	b.WriteString("High quality, detailed, consistent character design.")
	return b.String()
}

func prefixRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
