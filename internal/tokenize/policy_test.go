package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhitespacePolicy_Tokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "simple", text: "quiero hablar", want: []string{"quiero", "hablar"}},
		{name: "punctuation stripped", text: "¿Quiero hablar, ahora?", want: []string{"quiero", "hablar", "ahora"}},
		{name: "repeated whitespace", text: "  quiero \t comer  ", want: []string{"quiero", "comer"}},
		{name: "apostrophe removed inside word", text: "I don't know", want: []string{"i", "dont", "know"}},
		{name: "spaced dashes dropped", text: "quiero - no – hablar — ahora", want: []string{"quiero", "no", "hablar", "ahora"}},
		{name: "hyphenated word kept", text: "bien-estar", want: []string{"bien-estar"}},
		{name: "digits kept", text: "tengo 2 gatos", want: []string{"tengo", "2", "gatos"}},
		{name: "empty", text: "", want: nil},
	}

	policy := WhitespacePolicy{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Tokenize(tt.text))
		})
	}
}

func TestCharacterPolicy_Tokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "chinese", text: "我可以", want: []string{"我", "可", "以"}},
		{name: "cjk punctuation stripped", text: "我能，说。", want: []string{"我", "能", "说"}},
		{name: "spaces dropped", text: "我 能", want: []string{"我", "能"}},
		{name: "latin letters are single tokens", text: "Wi", want: []string{"w", "i"}},
		{name: "dashes dropped", text: "我—能-说", want: []string{"我", "能", "说"}},
	}

	policy := CharacterPolicy{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.Tokenize(tt.text))
		})
	}
}

func TestPolicy_Join(t *testing.T) {
	assert.Equal(t, "quiero hablar", WhitespacePolicy{}.Join([]string{"quiero", "hablar"}))
	assert.Equal(t, "我想说", CharacterPolicy{}.Join([]string{"我", "想", "说"}))
}

func TestPolicyNameForLanguage(t *testing.T) {
	tests := []struct {
		name      string
		lang      string
		overrides map[string]string
		want      string
	}{
		{name: "spanish", lang: "es", want: PolicyWhitespace},
		{name: "mandarin", lang: "zh", want: PolicyCharacter},
		{name: "mandarin region tag", lang: "zh-Hans-CN", want: PolicyCharacter},
		{name: "underscore tag", lang: "zh_TW", want: PolicyCharacter},
		{name: "cantonese", lang: "yue", want: PolicyCharacter},
		{name: "japanese default", lang: "ja", want: PolicyCharacter},
		{name: "korean uses spaces", lang: "ko", want: PolicyWhitespace},
		{name: "unknown language", lang: "xx", want: PolicyWhitespace},
		{name: "primary override", lang: "ja-JP", overrides: map[string]string{"ja": PolicyMorpheme}, want: PolicyMorpheme},
		{name: "full tag override wins", lang: "zh-tw", overrides: map[string]string{"zh": PolicyWhitespace, "zh-tw": PolicyCharacter}, want: PolicyCharacter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PolicyNameForLanguage(tt.lang, tt.overrides))
		})
	}
}

func TestNew(t *testing.T) {
	policy, err := New(PolicyWhitespace)
	require.NoError(t, err)
	assert.Equal(t, PolicyWhitespace, policy.Name())

	policy, err = ForLanguage("cmn", nil)
	require.NoError(t, err)
	assert.Equal(t, PolicyCharacter, policy.Name())

	_, err = New("bigram")
	assert.ErrorContains(t, err, `unknown tokenization policy "bigram"`)
	assert.True(t, IsPolicyName(PolicyMorpheme))
	assert.False(t, IsPolicyName("bigram"))
}

func TestMorphemePolicy_Tokenize(t *testing.T) {
	policy, err := NewMorphemePolicy()
	require.NoError(t, err)

	assert.Equal(t, PolicyMorpheme, policy.Name())
	assert.Equal(t, []string{"私", "は", "学生", "です"}, policy.Tokenize("私は学生です。"))
	assert.Equal(t, "私は", policy.Join([]string{"私", "は"}))
}
