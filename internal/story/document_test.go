package story

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storyJSON(t *testing.T, scenes int, mutate func(m map[string]any)) string {
	t.Helper()
	list := make([]any, scenes)
	for i := range list {
		list[i] = map[string]any{
			"description": fmt.Sprintf("The blue dragon from the reference image in scene %d", i+1),
			"narrative":   fmt.Sprintf("Narrative %d", i+1),
		}
	}
	m := map[string]any{
		"title":        "Blue Dragon in Space",
		"introduction": "Once upon a time.",
		"scenes":       list,
		"conclusion":   "The end.",
	}
	if mutate != nil {
		mutate(m)
	}
	b, err := json.Marshal(m)
	require.NoError(t, err)
	return string(b)
}

func TestValidateAccepts(t *testing.T) {
	doc, err := Validate([]byte(storyJSON(t, 3, nil)), 3)
	require.NoError(t, err)
	assert.Equal(t, "Blue Dragon in Space", doc.Title)
	require.Len(t, doc.Scenes, 3)
	assert.Equal(t, "Narrative 2", doc.Scenes[1].Narrative)
	assert.Equal(t, []string{
		"The blue dragon from the reference image in scene 1",
		"The blue dragon from the reference image in scene 2",
		"The blue dragon from the reference image in scene 3",
	}, doc.Descriptions())
}

func TestValidateStripsCodeFences(t *testing.T) {
	raw := "```json\n" + storyJSON(t, 1, nil) + "\n```"
	doc, err := Validate([]byte(raw), 1)
	require.NoError(t, err)
	assert.Len(t, doc.Scenes, 1)
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		scenes int
		reason string
	}{
		{
			name:   "missing conclusion",
			raw:    storyJSON(t, 3, func(m map[string]any) { delete(m, "conclusion") }),
			scenes: 3,
			reason: "missing required field: conclusion",
		},
		{
			name:   "missing title",
			raw:    storyJSON(t, 3, func(m map[string]any) { delete(m, "title") }),
			scenes: 3,
			reason: "missing required field: title",
		},
		{
			name:   "scenes not a list",
			raw:    storyJSON(t, 3, func(m map[string]any) { m["scenes"] = map[string]any{"description": "x"} }),
			scenes: 3,
			reason: "scenes must be a list",
		},
		{
			name:   "scenes null",
			raw:    storyJSON(t, 3, func(m map[string]any) { m["scenes"] = nil }),
			scenes: 3,
			reason: "scenes must be a list",
		},
		{
			name:   "one scene short",
			raw:    storyJSON(t, 2, nil),
			scenes: 3,
			reason: "expected 3 scenes, got 2",
		},
		{
			name:   "one scene too many",
			raw:    storyJSON(t, 4, nil),
			scenes: 3,
			reason: "expected 3 scenes, got 4",
		},
		{
			name: "scene without narrative",
			raw: storyJSON(t, 2, func(m map[string]any) {
				m["scenes"].([]any)[1] = map[string]any{"description": "The dragon from the reference image"}
			}),
			scenes: 2,
			reason: "scene 2 missing required fields",
		},
		{
			name: "scene not an object",
			raw: storyJSON(t, 2, func(m map[string]any) {
				m["scenes"].([]any)[0] = "just text"
			}),
			scenes: 2,
			reason: "scene 1 is not an object",
		},
		{
			name:   "title not a string",
			raw:    storyJSON(t, 1, func(m map[string]any) { m["title"] = 42 }),
			scenes: 1,
			reason: "field title must be a string",
		},
		{
			name:   "array reply",
			raw:    `[1,2,3]`,
			scenes: 1,
			reason: "not a JSON object",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate([]byte(tt.raw), tt.scenes)
			var se *SchemaError
			require.ErrorAs(t, err, &se)
			assert.Contains(t, se.Reason, tt.reason)
		})
	}
}

func TestValidateMalformedJSON(t *testing.T) {
	for _, raw := range []string{"", "{", `{"title": "x",}`, "Sure! Here is your story"} {
		_, err := Validate([]byte(raw), 3)
		var pe *ParseError
		assert.ErrorAs(t, err, &pe, "raw=%q", raw)
	}
}

func TestValidateSceneCountProperty(t *testing.T) {
	for requested := 1; requested <= 10; requested++ {
		for produced := 0; produced <= 11; produced++ {
			doc, err := Validate([]byte(storyJSON(t, produced, nil)), requested)
			if produced == requested {
				require.NoError(t, err)
				assert.Len(t, doc.Scenes, requested)
				continue
			}
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), "expected"), err.Error())
		}
	}
}

func TestValidateAllowsNullText(t *testing.T) {
	doc, err := Validate([]byte(storyJSON(t, 1, func(m map[string]any) { m["introduction"] = nil })), 1)
	require.NoError(t, err)
	assert.Empty(t, doc.Introduction)
}
