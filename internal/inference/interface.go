package inference

import (
	"context"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client generates practice phrases for a LEGO
type Client interface {
	GeneratePhrases(ctx context.Context, params GeneratePhrasesRequest) (GeneratePhrasesResponse, error)
}

// GeneratePhrasesRequest describes one LEGO and the vocabulary a learner knows at its position
type GeneratePhrasesRequest struct {
	LegoID         string `json:"lego_id"`
	Known          string `json:"known"`
	Target         string `json:"target"`
	KnownLanguage  string `json:"known_language"`
	TargetLanguage string `json:"target_language"`
	// Vocabulary is every target token available at the LEGO's position, sorted
	Vocabulary []string `json:"vocabulary"`
	Count      int      `json:"count"`
}

type GeneratePhrasesResponse struct {
	Phrases []GeneratedPhrase `json:"phrases"`
}

// GeneratedPhrase is untrusted model output. WordCount is whatever the model claims.
type GeneratedPhrase struct {
	Known     string `json:"known"`
	Target    string `json:"target"`
	WordCount int    `json:"word_count,omitempty"`
}

const (
	DefaultMaxRetryAttempts = 3
)
