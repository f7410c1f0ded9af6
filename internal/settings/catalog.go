package settings

import "strings"

type NamedOption struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Genre pairs a display name with the art direction used when scene
// descriptions are enhanced.
type Genre struct {
	Name  string
	Style string
}

const DefaultGenre = "magical_adventure"

var genreOrder = []string{
	"magical_adventure",
	"funny_friends",
	"space_journey",
	"underwater_world",
	"forest_friends",
	"city_adventures",
	"fantasy_kingdom",
}

var genres = map[string]Genre{
	"magical_adventure": {
		Name:  "Magical Adventure",
		Style: "whimsical storybook illustration, soft glowing light, sparkles and warm pastel colors",
	},
	"funny_friends": {
		Name:  "Funny Friends",
		Style: "bright cartoon style, bold outlines, exaggerated cheerful expressions",
	},
	"space_journey": {
		Name:  "Space Journey",
		Style: "colorful sci-fi cartoon, starry backgrounds, rim lighting from nearby planets",
	},
	"underwater_world": {
		Name:  "Underwater World",
		Style: "aquatic cartoon, caustic light rays, teal and coral palette, floating bubbles",
	},
	"forest_friends": {
		Name:  "Forest Friends",
		Style: "cozy woodland picture book, dappled sunlight, earthy greens and browns",
	},
	"city_adventures": {
		Name:  "City Adventures",
		Style: "vibrant urban cartoon, busy streets, clean shapes and saturated signage colors",
	},
	"fantasy_kingdom": {
		Name:  "Fantasy Kingdom",
		Style: "fairytale illustration, castles and banners, rich jewel tones, golden hour light",
	},
}

func Genres() []NamedOption {
	out := make([]NamedOption, 0, len(genreOrder))
	for _, key := range genreOrder {
		out = append(out, NamedOption{Key: key, Name: genres[key].Name})
	}
	return out
}

// LookupGenre accepts a key ("space_journey") or a display name
// ("Space Journey") in any case.
func LookupGenre(value string) (string, Genre, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return "", Genre{}, false
	}
	if g, ok := genres[v]; ok {
		return v, g, true
	}
	key := strings.NewReplacer(" ", "_", "-", "_").Replace(v)
	if g, ok := genres[key]; ok {
		return key, g, true
	}
	return "", Genre{}, false
}

// GenreName falls back to the default genre for unknown keys.
func GenreName(key string) string {
	if _, g, ok := LookupGenre(key); ok {
		return g.Name
	}
	return genres[DefaultGenre].Name
}

func GenreStyle(key string) string {
	if _, g, ok := LookupGenre(key); ok {
		return g.Style
	}
	return genres[DefaultGenre].Style
}
