package tokenize

import (
	"fmt"
	"strings"

	"github.com/at-ishikawa/legogate/internal/textnorm"
	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// MorphemePolicy segments Japanese text into surface morphemes with kagome's IPA dictionary.
type MorphemePolicy struct {
	t *tokenizer.Tokenizer
}

// NewMorphemePolicy loads the IPA dictionary. This takes a noticeable moment, so build one per run.
func NewMorphemePolicy() (*MorphemePolicy, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("tokenizer.New() > %w", err)
	}
	return &MorphemePolicy{t: t}, nil
}

func (p *MorphemePolicy) Name() string {
	return PolicyMorpheme
}

func (p *MorphemePolicy) Tokenize(text string) []string {
	var tokens []string
	for _, token := range p.t.Tokenize(StripPunctuation(text)) {
		if token.Class == tokenizer.DUMMY {
			continue
		}
		surface := strings.TrimSpace(token.Surface)
		if !isWord(surface) {
			continue
		}
		tokens = append(tokens, textnorm.Lower(surface))
	}
	return tokens
}

func (p *MorphemePolicy) Join(parts []string) string {
	return strings.Join(parts, "")
}
