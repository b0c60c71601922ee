// Package pipeline runs every stage over one course and assembles a single report.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/at-ishikawa/legogate/internal/corpus"
	"github.com/at-ishikawa/legogate/internal/course"
	"github.com/at-ishikawa/legogate/internal/dedup"
	"github.com/at-ishikawa/legogate/internal/gate"
	"github.com/at-ishikawa/legogate/internal/lut"
	"github.com/at-ishikawa/legogate/internal/sequence"
	"github.com/at-ishikawa/legogate/internal/tokenize"
	"github.com/google/uuid"
)

var fingerprintNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/at-ishikawa/legogate/report"))

// Input is the course under validation.
type Input struct {
	Seeds   []course.Seed
	Baskets course.Baskets
	// Registry pre-seeds deduplication. It is never modified.
	Registry *dedup.Registry
}

// Options control a run.
type Options struct {
	Policy tokenize.Policy
	// LutBound limits the LUT scan to seeds at or below it. Empty scans everything.
	LutBound course.SeedID
	// Workers above 1 validate baskets in parallel.
	Workers int
	// Schema is optional. When set, missing or invalid fields are reported as warnings.
	Schema *corpus.SchemaChecker
}

// Annotate builds the canonical sequence and deduplicates it.
// A fatal structural error is returned as err. Ordering errors, which only exclude their seed,
// are returned as structural alongside the result of the remaining seeds.
func Annotate(seeds []course.Seed, registry *dedup.Registry) (result dedup.Result, structural *sequence.BuildError, err error) {
	refs, err := sequence.Build(seeds)
	if err != nil {
		var buildErr *sequence.BuildError
		if !errors.As(err, &buildErr) || buildErr.Fatal() {
			return dedup.Result{}, nil, fmt.Errorf("sequence.Build() > %w", err)
		}
		structural = buildErr
	}
	return dedup.Deduplicate(refs, registry), structural, nil
}

// Run validates one course. The report depends only on the input and options, so two runs over
// the same course encode to identical bytes.
func Run(ctx context.Context, in Input, opts Options) (*Report, error) {
	if opts.Policy == nil {
		return nil, errors.New("a tokenization policy is required")
	}

	fingerprint, err := Fingerprint(in, opts)
	if err != nil {
		return nil, fmt.Errorf("Fingerprint() > %w", err)
	}
	report := &Report{
		Fingerprint: fingerprint,
		Policy:      opts.Policy.Name(),
		Seeds:       len(in.Seeds),
	}

	result, structural, err := Annotate(in.Seeds, in.Registry)
	if err != nil {
		return nil, fmt.Errorf("Annotate() > %w", err)
	}
	for _, finding := range StructuralFindings(structural) {
		report.AddError(finding)
	}
	slog.Debug("built canonical sequence",
		slog.Int("legos", len(result.Legos)),
		slog.Int("structuralErrors", len(report.Errors)),
	)

	for _, v := range sequence.CheckReconstruction(in.Seeds, opts.Policy) {
		location := string(v.SeedID)
		if v.LegoID != "" {
			location = string(v.LegoID)
		}
		report.AddWarning(Finding{Stage: StageReconstruction, Location: location, Message: v.String()})
	}
	if opts.Schema != nil {
		for _, v := range opts.Schema.Check(in.Seeds, in.Baskets) {
			report.AddWarning(Finding{Stage: StageSchema, Location: v.Location, Message: v.Message})
		}
	}

	report.Legos = len(result.Legos)
	report.Dedup = Summarize(result)

	if opts.Workers > 1 {
		report.Gate, err = gate.ValidateConcurrently(ctx, result.Legos, in.Baskets, opts.Policy, opts.Workers)
		if err != nil {
			return nil, fmt.Errorf("gate.ValidateConcurrently() > %w", err)
		}
	} else {
		report.Gate = gate.Validate(result.Legos, in.Baskets, opts.Policy)
	}
	slog.Debug("validated baskets",
		slog.Int("phrases", report.Gate.Phrases),
		slog.Int("violations", report.Gate.Violations),
	)

	report.Lut, err = lut.Validate(result.Legos, opts.LutBound)
	if err != nil {
		return nil, fmt.Errorf("lut.Validate(%s) > %w", opts.LutBound, err)
	}
	slog.Debug("scanned lut", slog.Int("collisions", len(report.Lut.Collisions)))

	return report, nil
}

// StructuralFindings converts the errors of a non-fatal build into error findings.
func StructuralFindings(buildErr *sequence.BuildError) []Finding {
	if buildErr == nil {
		return nil
	}
	findings := make([]Finding, len(buildErr.Errors))
	for i, err := range buildErr.Errors {
		findings[i] = structuralFinding(err)
	}
	return findings
}

func structuralFinding(err error) Finding {
	finding := Finding{Stage: StageSequence, Message: err.Error(), Severity: "error"}

	var ordering *sequence.MalformedLegoOrderingError
	var identifier *sequence.MalformedIdentifierError
	switch {
	case errors.As(err, &ordering):
		finding.Location = string(ordering.SeedID)
	case errors.As(err, &identifier):
		finding.Location = identifier.ID
	}
	return finding
}

// Summarize condenses a deduplication result for reporting.
func Summarize(result dedup.Result) DedupSummary {
	newCount := result.NewCount()
	summary := DedupSummary{
		Legos:      len(result.Legos),
		New:        newCount,
		Duplicates: len(result.Legos) - newCount,
		Registry:   result.Registry.Len(),
		Groups:     result.Groups(),
		Progress:   result.Progress,
	}
	if summary.Groups == nil {
		summary.Groups = []dedup.DuplicateGroup{}
	}
	return summary
}

// fingerprintSource is everything a report depends on.
type fingerprintSource struct {
	Seeds    []course.Seed  `json:"seeds"`
	Baskets  course.Baskets `json:"baskets"`
	Registry []string       `json:"registry,omitempty"`
	Policy   string         `json:"policy"`
	LutBound course.SeedID  `json:"lut_bound,omitempty"`
}

// Fingerprint identifies the input of a run. Equal inputs give equal fingerprints.
func Fingerprint(in Input, opts Options) (string, error) {
	source := fingerprintSource{
		Seeds:    in.Seeds,
		Baskets:  in.Baskets,
		LutBound: opts.LutBound,
	}
	if in.Registry != nil {
		for _, key := range in.Registry.Keys() {
			seedID, _ := in.Registry.Lookup(key)
			source.Registry = append(source.Registry, key+"="+string(seedID))
		}
	}
	if opts.Policy != nil {
		source.Policy = opts.Policy.Name()
	}

	content, err := json.Marshal(source)
	if err != nil {
		return "", fmt.Errorf("json.Marshal() > %w", err)
	}
	return uuid.NewSHA1(fingerprintNamespace, content).String(), nil
}
