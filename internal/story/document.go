package story

import (
	"bytes"
	"encoding/json"
	"strings"
)

type Document struct {
	Title        string  `json:"title"`
	Introduction string  `json:"introduction"`
	Scenes       []Scene `json:"scenes"`
	Conclusion   string  `json:"conclusion"`
}

type Scene struct {
	Description string `json:"description"`
	Narrative   string `json:"narrative"`
}

// Descriptions returns the scene descriptions in order.
func (d Document) Descriptions() []string {
	out := make([]string, len(d.Scenes))
	for i, s := range d.Scenes {
		out[i] = s.Description
	}
	return out
}

var requiredFields = []string{"title", "introduction", "scenes", "conclusion"}

// Validate decodes a model reply into a Document. It never coerces: a
// reply with the wrong number of scenes or a missing field is rejected.
func Validate(raw []byte, numScenes int) (Document, error) {
	raw = bytes.TrimSpace([]byte(stripCodeFences(string(raw))))
	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return Document{}, &ParseError{Err: err}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Document{}, schemaErrorf("reply is not a JSON object")
	}

	for _, name := range requiredFields {
		if _, ok := fields[name]; !ok {
			return Document{}, schemaErrorf("missing required field: %s", name)
		}
	}

	var doc Document
	texts := []struct {
		name string
		dst  *string
	}{
		{"title", &doc.Title},
		{"introduction", &doc.Introduction},
		{"conclusion", &doc.Conclusion},
	}
	for _, f := range texts {
		if err := decodeText(fields[f.name], f.dst); err != nil {
			return Document{}, schemaErrorf("field %s must be a string", f.name)
		}
	}

	rawScenes := bytes.TrimSpace(fields["scenes"])
	if len(rawScenes) == 0 || rawScenes[0] != '[' {
		return Document{}, schemaErrorf("scenes must be a list")
	}

	var items []json.RawMessage
	if err := json.Unmarshal(rawScenes, &items); err != nil {
		return Document{}, schemaErrorf("scenes must be a list")
	}
	if len(items) != numScenes {
		return Document{}, schemaErrorf("expected %d scenes, got %d", numScenes, len(items))
	}

	doc.Scenes = make([]Scene, len(items))
	for i, item := range items {
		var sceneFields map[string]json.RawMessage
		if err := json.Unmarshal(item, &sceneFields); err != nil {
			return Document{}, schemaErrorf("scene %d is not an object", i+1)
		}
		desc, hasDesc := sceneFields["description"]
		narr, hasNarr := sceneFields["narrative"]
		if !hasDesc || !hasNarr {
			return Document{}, schemaErrorf("scene %d missing required fields (description, narrative)", i+1)
		}
		if err := decodeText(desc, &doc.Scenes[i].Description); err != nil {
			return Document{}, schemaErrorf("scene %d description must be a string", i+1)
		}
		if err := decodeText(narr, &doc.Scenes[i].Narrative); err != nil {
			return Document{}, schemaErrorf("scene %d narrative must be a string", i+1)
		}
	}

	return doc, nil
}

// decodeText accepts a JSON string or null.
func decodeText(raw json.RawMessage, dst *string) error {
	var v *string
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
	return nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSpace(s)
	return strings.TrimSuffix(s, "```")
}
