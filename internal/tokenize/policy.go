// Package tokenize splits target-language text into the tokens that vocabulary gating compares.
//
// One Policy is selected per target language and used for both the available vocabulary
// and the phrases checked against it.
package tokenize

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/at-ishikawa/legogate/internal/textnorm"
)

// Policy names accepted in configuration.
const (
	PolicyWhitespace = "whitespace"
	PolicyCharacter  = "character"
	PolicyMorpheme   = "morpheme"
)

// Policy tokenizes target-language text.
type Policy interface {
	Name() string
	// Tokenize returns tokens in text order, duplicates included.
	Tokenize(text string) []string
	// Join concatenates LEGO targets the way the script writes them.
	Join(parts []string) string
}

// Punctuation is stripped from text before tokenization.
const Punctuation = `.,;:!?¿¡"'()[]{}…«»“”‘’„` + "。，、！？：；「」『』（）《》〈〉・"

var punctuationSet = func() map[rune]struct{} {
	set := make(map[rune]struct{})
	for _, r := range Punctuation {
		set[r] = struct{}{}
	}
	return set
}()

// StripPunctuation removes every rune of Punctuation from text.
func StripPunctuation(text string) string {
	return strings.Map(func(r rune) rune {
		if _, ok := punctuationSet[r]; ok {
			return -1
		}
		return r
	}, text)
}

// WhitespacePolicy tokenizes scripts that separate words with whitespace.
type WhitespacePolicy struct{}

func (WhitespacePolicy) Name() string {
	return PolicyWhitespace
}

func (WhitespacePolicy) Tokenize(text string) []string {
	var tokens []string
	for _, field := range strings.Fields(textnorm.Lower(StripPunctuation(text))) {
		if isWord(field) {
			tokens = append(tokens, field)
		}
	}
	return tokens
}

// isWord reports whether token has a letter, mark or digit. Dashes and other symbols standing
// alone are not vocabulary.
func isWord(token string) bool {
	return strings.IndexFunc(token, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsNumber(r)
	}) >= 0
}

func (WhitespacePolicy) Join(parts []string) string {
	return strings.Join(parts, " ")
}

// CharacterPolicy treats every non-space character as one token.
type CharacterPolicy struct{}

func (CharacterPolicy) Name() string {
	return PolicyCharacter
}

func (CharacterPolicy) Tokenize(text string) []string {
	var tokens []string
	for _, r := range textnorm.Lower(StripPunctuation(text)) {
		if unicode.IsSpace(r) || !isWord(string(r)) {
			continue
		}
		tokens = append(tokens, string(r))
	}
	return tokens
}

func (CharacterPolicy) Join(parts []string) string {
	return strings.Join(parts, "")
}

var (
	_ Policy = WhitespacePolicy{}
	_ Policy = CharacterPolicy{}
	_ Policy = (*MorphemePolicy)(nil)
)

// New constructs a policy by name.
func New(name string) (Policy, error) {
	switch name {
	case PolicyWhitespace:
		return WhitespacePolicy{}, nil
	case PolicyCharacter:
		return CharacterPolicy{}, nil
	case PolicyMorpheme:
		policy, err := NewMorphemePolicy()
		if err != nil {
			return nil, fmt.Errorf("NewMorphemePolicy() > %w", err)
		}
		return policy, nil
	}
	return nil, fmt.Errorf("unknown tokenization policy %q, valid values are %q, %q or %q",
		name, PolicyWhitespace, PolicyCharacter, PolicyMorpheme)
}

// IsPolicyName reports whether name is a known policy.
func IsPolicyName(name string) bool {
	switch name {
	case PolicyWhitespace, PolicyCharacter, PolicyMorpheme:
		return true
	}
	return false
}

// Scripts without whitespace word boundaries, keyed by primary language subtag.
var unsegmentedLanguages = map[string]struct{}{
	"zh":  {},
	"cmn": {},
	"yue": {},
	"wuu": {},
	"ja":  {},
	"th":  {},
	"lo":  {},
	"km":  {},
	"my":  {},
	"bo":  {},
}

// PolicyNameForLanguage returns the policy name for a BCP 47 language tag.
// An override keyed by the full tag wins over one keyed by the primary subtag.
func PolicyNameForLanguage(lang string, overrides map[string]string) string {
	tag := strings.ToLower(strings.TrimSpace(lang))
	tag = strings.ReplaceAll(tag, "_", "-")
	primary, _, _ := strings.Cut(tag, "-")

	if name, ok := overrides[tag]; ok {
		return name
	}
	if name, ok := overrides[primary]; ok {
		return name
	}
	if _, ok := unsegmentedLanguages[primary]; ok {
		return PolicyCharacter
	}
	return PolicyWhitespace
}

// ForLanguage constructs the policy for a target language.
func ForLanguage(lang string, overrides map[string]string) (Policy, error) {
	name := PolicyNameForLanguage(lang, overrides)
	policy, err := New(name)
	if err != nil {
		return nil, fmt.Errorf("New(%s) for language %s > %w", name, lang, err)
	}
	return policy, nil
}
