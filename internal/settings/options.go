// Package settings holds the user-tunable story options, their ranges and
// the genre catalog shared by the web and bot surfaces.
package settings

import (
	"math"
	"strconv"
	"strings"
)

const (
	MinScenes     = 3
	MaxScenes     = 10
	DefaultScenes = 5

	MinWords     = 20
	MaxWords     = 200
	DefaultWords = 50
	wordsStep    = 10

	MinStyleStrength     = 5.0
	MaxStyleStrength     = 20.0
	DefaultStyleStrength = 7.5

	MinDetailLevel     = 20
	MaxDetailLevel     = 50
	DefaultDetailLevel = 30
)

type Options struct {
	NumScenes     int     `json:"num_scenes"`
	WordsPerPage  int     `json:"words_per_page"`
	Genre         string  `json:"genre"`
	Idea          string  `json:"story_idea,omitempty"`
	StyleStrength float64 `json:"style_strength"`
	DetailLevel   int     `json:"detail_level"`
	Enhance       bool    `json:"enhance"`
}

func Defaults() Options {
	return Options{
		NumScenes:     DefaultScenes,
		WordsPerPage:  DefaultWords,
		Genre:         DefaultGenre,
		StyleStrength: DefaultStyleStrength,
		DetailLevel:   DefaultDetailLevel,
	}
}

// Normalize clamps every value into its range. Zero values take defaults
// and unknown genres fall back to DefaultGenre.
func (o Options) Normalize() Options {
	if o.NumScenes == 0 {
		o.NumScenes = DefaultScenes
	}
	o.NumScenes = clampInt(o.NumScenes, MinScenes, MaxScenes)

	if o.WordsPerPage == 0 {
		o.WordsPerPage = DefaultWords
	}
	o.WordsPerPage = clampInt(roundTo(o.WordsPerPage, wordsStep), MinWords, MaxWords)

	if o.StyleStrength == 0 || math.IsNaN(o.StyleStrength) {
		o.StyleStrength = DefaultStyleStrength
	}
	o.StyleStrength = math.Max(MinStyleStrength, math.Min(MaxStyleStrength, math.Round(o.StyleStrength*2)/2))

	if o.DetailLevel == 0 {
		o.DetailLevel = DefaultDetailLevel
	}
	o.DetailLevel = clampInt(o.DetailLevel, MinDetailLevel, MaxDetailLevel)

	if key, _, ok := LookupGenre(o.Genre); ok {
		o.Genre = key
	} else {
		o.Genre = DefaultGenre
	}
	o.Idea = strings.TrimSpace(o.Idea)
	return o
}

// ParseArgs reads "key=value" tokens and bare genre keys from raw.
// Everything else is kept, in order, as the story idea.
//
//	scenes=6 words=80 genre=space_journey style=9 detail=40 enhance=on
func ParseArgs(raw string, defaults Options) Options {
	opts := defaults
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return opts
	}

	var idea []string
	for _, tok := range strings.Fields(raw) {
		orig := tok
		tok = strings.ToLower(tok)

		if key, value, ok := strings.Cut(tok, "="); ok && Apply(&opts, key, value) {
			continue
		}
		if key, _, ok := LookupGenre(tok); ok && strings.Contains(tok, "_") {
			opts.Genre = key
			continue
		}
		idea = append(idea, orig)
	}

	if len(idea) > 0 {
		opts.Idea = strings.Join(idea, " ")
	}
	return opts
}

// Apply sets one option by name. It reports false for unknown names or
// unparsable values, leaving opts untouched.
func Apply(opts *Options, key, value string) bool {
	value = strings.TrimSpace(value)
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "scenes", "num_scenes":
		n, err := strconv.Atoi(value)
		if err != nil {
			return false
		}
		opts.NumScenes = n
	case "words", "words_per_page", "length":
		n, err := strconv.Atoi(value)
		if err != nil {
			return false
		}
		opts.WordsPerPage = n
	case "genre":
		k, _, ok := LookupGenre(value)
		if !ok {
			return false
		}
		opts.Genre = k
	case "style", "style_strength":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return false
		}
		opts.StyleStrength = f
	case "detail", "detail_level":
		n, err := strconv.Atoi(value)
		if err != nil {
			return false
		}
		opts.DetailLevel = n
	case "enhance":
		b, ok := parseBool(value)
		if !ok {
			return false
		}
		opts.Enhance = b
	default:
		return false
	}
	return true
}

func parseBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundTo(v, step int) int {
	return ((v + step/2) / step) * step
}
