package moderation

import (
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Moderator masks censored words in chat content. Matching is case
// insensitive and replaces each matched rune with the censor character.
type Moderator struct {
	matcher      *goahocorasick.Machine
	censoredChar rune
}

// NewModerator builds the automaton for words. It returns nil when no word is
// configured.
func NewModerator(words []string, censoredChar rune) (*Moderator, error) {
	var patterns [][]rune
	for _, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		patterns = append(patterns, lowerRunes([]rune(word)))
	}
	if len(patterns) == 0 {
		return nil, nil
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Moderator{matcher: m, censoredChar: censoredChar}, nil
}

func (m *Moderator) Censor(content string) string {
	if m == nil || content == "" {
		return content
	}

	original := []rune(content)
	terms := m.matcher.MultiPatternSearch(lowerRunes(original), false)
	if len(terms) == 0 {
		return content
	}

	for _, term := range terms {
		end := term.Pos + len(term.Word)
		if term.Pos < 0 || end > len(original) {
			continue
		}
		for i := term.Pos; i < end; i++ {
			original[i] = m.censoredChar
		}
	}
	return string(original)
}

func lowerRunes(in []rune) []rune {
	out := make([]rune, len(in))
	for i, r := range in {
		out[i] = unicode.ToLower(r)
	}
	return out
}
