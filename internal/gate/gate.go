package gate

import (
	"context"
	"fmt"
	"sort"

	"github.com/at-ishikawa/legogate/internal/course"
	"github.com/at-ishikawa/legogate/internal/dedup"
	"github.com/at-ishikawa/legogate/internal/tokenize"
	"golang.org/x/sync/errgroup"
)

// Violation is a phrase using at least one token that is not yet taught.
type Violation struct {
	Index  int    `json:"index" yaml:"index"`
	Known  string `json:"known" yaml:"known"`
	Target string `json:"target" yaml:"target"`
	// Tokens are the offending tokens in phrase order, without repeats.
	Tokens []string `json:"tokens" yaml:"tokens"`
	// TokenCount is recomputed by the policy; the phrase's own word count is ignored.
	TokenCount int `json:"token_count" yaml:"token_count"`
}

// LegoReport is the result for one basket.
type LegoReport struct {
	LegoID     course.LegoID `json:"lego_id" yaml:"lego_id"`
	SeedID     course.SeedID `json:"seed_id" yaml:"seed_id"`
	Position   int           `json:"position" yaml:"position"`
	Phrases    int           `json:"phrases" yaml:"phrases"`
	Violations []Violation   `json:"violations,omitempty" yaml:"violations,omitempty"`
}

// SeedSummary aggregates the baskets of one seed.
type SeedSummary struct {
	SeedID     course.SeedID `json:"seed_id" yaml:"seed_id"`
	Phrases    int           `json:"phrases" yaml:"phrases"`
	Violations int           `json:"violations" yaml:"violations"`
	Rate       float64       `json:"rate" yaml:"rate"`
}

// Report is the complete GATE result. Nothing is truncated.
type Report struct {
	Policy     string        `json:"policy" yaml:"policy"`
	Legos      []LegoReport  `json:"legos" yaml:"legos"`
	Seeds      []SeedSummary `json:"seeds" yaml:"seeds"`
	Phrases    int           `json:"phrases" yaml:"phrases"`
	Violations int           `json:"violations" yaml:"violations"`
	Rate       float64       `json:"rate" yaml:"rate"`

	// StrayBaskets belong to duplicate LEGOs, which reuse their original's basket.
	StrayBaskets []course.LegoID `json:"stray_baskets,omitempty" yaml:"stray_baskets,omitempty"`
	// UnknownBaskets belong to LEGO IDs absent from the sequence.
	UnknownBaskets []course.LegoID `json:"unknown_baskets,omitempty" yaml:"unknown_baskets,omitempty"`
	// MissingBaskets are new LEGOs without any basket.
	MissingBaskets []course.LegoID `json:"missing_baskets,omitempty" yaml:"missing_baskets,omitempty"`
}

// HasViolations reports whether any phrase failed.
func (r Report) HasViolations() bool {
	return r.Violations > 0
}

// Validate checks every basket of a new LEGO against the vocabulary available at its position.
// Baskets are never modified.
func Validate(legos []dedup.AnnotatedLego, baskets course.Baskets, policy tokenize.Policy) Report {
	vocabulary := BuildVocabulary(legos, policy)
	targets := basketLegos(legos, baskets)

	reports := make([]LegoReport, len(targets))
	for i, lego := range targets {
		reports[i] = check(vocabulary, policy, lego, baskets[lego.Lego.ID])
	}
	return assemble(policy, legos, baskets, reports)
}

// ValidateConcurrently produces the same report as Validate using up to workers goroutines.
// Validation starts only after the whole vocabulary is built in canonical order.
func ValidateConcurrently(
	ctx context.Context,
	legos []dedup.AnnotatedLego,
	baskets course.Baskets,
	policy tokenize.Policy,
	workers int,
) (Report, error) {
	if workers < 1 {
		workers = 1
	}
	vocabulary := BuildVocabulary(legos, policy)
	targets := basketLegos(legos, baskets)
	reports := make([]LegoReport, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, lego := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i] = check(vocabulary, policy, lego, baskets[lego.Lego.ID])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, fmt.Errorf("errgroup.Wait() > %w", err)
	}
	return assemble(policy, legos, baskets, reports), nil
}

func basketLegos(legos []dedup.AnnotatedLego, baskets course.Baskets) []dedup.AnnotatedLego {
	var targets []dedup.AnnotatedLego
	for _, lego := range legos {
		if !lego.New {
			continue
		}
		if _, ok := baskets[lego.Lego.ID]; !ok {
			continue
		}
		targets = append(targets, lego)
	}
	return targets
}

func check(vocabulary *Vocabulary, policy tokenize.Policy, lego dedup.AnnotatedLego, phrases []course.Phrase) LegoReport {
	report := LegoReport{
		LegoID:   lego.Lego.ID,
		SeedID:   lego.SeedID,
		Position: lego.Position,
		Phrases:  len(phrases),
	}
	for i, phrase := range phrases {
		tokens := policy.Tokenize(phrase.Target)
		offending := offendingTokens(vocabulary, tokens, lego.Position)
		if len(offending) == 0 {
			continue
		}
		report.Violations = append(report.Violations, Violation{
			Index:      i,
			Known:      phrase.Known,
			Target:     phrase.Target,
			Tokens:     offending,
			TokenCount: len(tokens),
		})
	}
	return report
}

func offendingTokens(vocabulary *Vocabulary, tokens []string, position int) []string {
	var offending []string
	seen := make(map[string]bool)
	for _, token := range tokens {
		if vocabulary.AvailableAt(token, position) || seen[token] {
			continue
		}
		seen[token] = true
		offending = append(offending, token)
	}
	return offending
}

func assemble(policy tokenize.Policy, legos []dedup.AnnotatedLego, baskets course.Baskets, reports []LegoReport) Report {
	report := Report{
		Policy: policy.Name(),
		Legos:  reports,
	}

	summaries := make(map[course.SeedID]*SeedSummary)
	known := make(map[course.LegoID]bool, len(legos))
	for _, lego := range legos {
		known[lego.Lego.ID] = true
		if _, ok := summaries[lego.SeedID]; !ok {
			summaries[lego.SeedID] = &SeedSummary{SeedID: lego.SeedID}
			report.Seeds = append(report.Seeds, SeedSummary{SeedID: lego.SeedID})
		}
		_, hasBasket := baskets[lego.Lego.ID]
		switch {
		case !lego.New && hasBasket:
			report.StrayBaskets = append(report.StrayBaskets, lego.Lego.ID)
		case lego.New && !hasBasket:
			report.MissingBaskets = append(report.MissingBaskets, lego.Lego.ID)
		}
	}

	for _, r := range reports {
		summary := summaries[r.SeedID]
		summary.Phrases += r.Phrases
		summary.Violations += len(r.Violations)
		report.Phrases += r.Phrases
		report.Violations += len(r.Violations)
	}
	for i := range report.Seeds {
		summary := summaries[report.Seeds[i].SeedID]
		summary.Rate = rate(summary.Violations, summary.Phrases)
		report.Seeds[i] = *summary
	}
	report.Rate = rate(report.Violations, report.Phrases)

	for id := range baskets {
		if !known[id] {
			report.UnknownBaskets = append(report.UnknownBaskets, id)
		}
	}
	sort.Slice(report.UnknownBaskets, func(i, j int) bool {
		return report.UnknownBaskets[i] < report.UnknownBaskets[j]
	})
	return report
}

func rate(violations, phrases int) float64 {
	if phrases == 0 {
		return 0
	}
	return float64(violations) / float64(phrases)
}
