package story

import "strings"

// Protagonist extracts the subject phrase from a description shaped like
// "The blue dragon from the reference image ...". It returns "" when the
// description does not follow that shape.
func Protagonist(description string) string {
	lower := strings.ToLower(strings.TrimSpace(description))
	idx := strings.Index(lower, SceneDescriptionLead)
	if idx < 0 {
		return ""
	}
	subject := strings.TrimSpace(lower[:idx])
	subject = strings.TrimPrefix(subject, "the ")
	return strings.TrimSpace(subject)
}

// DriftingScenes returns the zero-based indices of scenes whose description
// does not mention the protagonist named by the first scene. It is a soft
// signal for logging; a story is never rejected because of it.
func DriftingScenes(doc Document) []int {
	if len(doc.Scenes) == 0 {
		return nil
	}
	subject := Protagonist(doc.Scenes[0].Description)
	if subject == "" {
		return nil
	}

	var out []int
	for i, s := range doc.Scenes[1:] {
		if !strings.Contains(strings.ToLower(s.Description), subject) {
			out = append(out, i+1)
		}
	}
	return out
}
