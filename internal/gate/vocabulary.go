// Package gate checks that practice phrases only use vocabulary taught at or before their LEGO.
package gate

import (
	"sort"

	"github.com/at-ishikawa/legogate/internal/dedup"
	"github.com/at-ishikawa/legogate/internal/tokenize"
)

// Vocabulary records the canonical position at which each token first became available.
// It is read-only once built, so it can be shared by concurrent validations.
type Vocabulary struct {
	first     map[string]int
	positions int
}

// BuildVocabulary scans the LEGOs once in canonical order. A LEGO contributes the tokens of its
// target and, when molecular, of each component target, all at its own position.
func BuildVocabulary(legos []dedup.AnnotatedLego, policy tokenize.Policy) *Vocabulary {
	vocabulary := &Vocabulary{
		first:     make(map[string]int),
		positions: len(legos),
	}
	for _, lego := range legos {
		vocabulary.add(policy.Tokenize(lego.Lego.Target), lego.Position)
		if !lego.Lego.IsMolecular() {
			continue
		}
		for _, component := range lego.Lego.Components {
			vocabulary.add(policy.Tokenize(component.Target), lego.Position)
		}
	}
	return vocabulary
}

func (v *Vocabulary) add(tokens []string, position int) {
	for _, token := range tokens {
		if first, ok := v.first[token]; ok && first <= position {
			continue
		}
		v.first[token] = position
	}
}

// AvailableAt reports whether token is taught at or before position.
func (v *Vocabulary) AvailableAt(token string, position int) bool {
	first, ok := v.first[token]
	return ok && first <= position
}

// FirstPosition returns where token is first taught.
func (v *Vocabulary) FirstPosition(token string) (int, bool) {
	first, ok := v.first[token]
	return first, ok
}

// At returns the sorted set of tokens available at position.
func (v *Vocabulary) At(position int) []string {
	var tokens []string
	for token, first := range v.first {
		if first <= position {
			tokens = append(tokens, token)
		}
	}
	sort.Strings(tokens)
	return tokens
}

// Len returns the number of distinct tokens across the whole sequence.
func (v *Vocabulary) Len() int {
	return len(v.first)
}
