package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/at-ishikawa/legogate/internal/course"
	"github.com/at-ishikawa/legogate/internal/dedup"
	"github.com/at-ishikawa/legogate/internal/gate"
	"github.com/at-ishikawa/legogate/internal/inference"
	"github.com/at-ishikawa/legogate/internal/pipeline"
	"github.com/at-ishikawa/legogate/internal/remediation"
	"github.com/at-ishikawa/legogate/internal/sequence"
)

// ErrStructuralErrors stops a command from writing course files built from a partial sequence.
var ErrStructuralErrors = errors.New("the course has structural errors")

// Annotate builds the canonical sequence and deduplicates it. Structural errors that leave
// seeds out of the sequence are printed to output and returned alongside the result.
func (c *Course) Annotate(output io.Writer) (dedup.Result, *sequence.BuildError, error) {
	result, structural, err := pipeline.Annotate(c.Seeds(), nil)
	if err != nil {
		return dedup.Result{}, nil, fmt.Errorf("pipeline.Annotate() > %w", err)
	}
	NewReportPrinter(output).PrintFindings(pipeline.StructuralFindings(structural), nil)
	return result, structural, nil
}

func refuseWrite(structural *sequence.BuildError, force bool) error {
	if structural == nil || force {
		return nil
	}
	return fmt.Errorf("%w: %d seed(s) are missing from the sequence, fix them or use --force", ErrStructuralErrors, len(structural.Errors))
}

type DedupOptions struct {
	Write bool
	// Force writes even when seeds were left out of the sequence
	Force bool
}

// Deduplicate prints the recomputed new/ref annotations and, with Write, stores them and the
// cumulative LEGO counts back into the seed files.
func Deduplicate(c *Course, opts DedupOptions, output io.Writer) (dedup.Result, error) {
	seeds := c.Seeds()
	result, structural, err := c.Annotate(output)
	if err != nil {
		return dedup.Result{}, err
	}
	NewReportPrinter(output).PrintDedup(pipeline.Summarize(result))

	if !opts.Write {
		return result, nil
	}
	if err := refuseWrite(structural, opts.Force); err != nil {
		return result, err
	}
	if err := c.seedSet.Replace(dedup.Apply(seeds, result)); err != nil {
		return dedup.Result{}, fmt.Errorf("seedSet.Replace() > %w", err)
	}
	if err := c.seedSet.Save(); err != nil {
		return dedup.Result{}, fmt.Errorf("seedSet.Save() > %w", err)
	}
	fmt.Fprintf(output, "Updated %s\n", strings.Join(c.seedSet.Paths(), ", "))
	return result, nil
}

type FixOptions struct {
	DryRun      bool
	DropStray   bool
	DropUnknown bool
	Force       bool
}

// Fix removes GATE-violating phrases from the baskets file.
func Fix(ctx context.Context, c *Course, opts FixOptions, output io.Writer) (remediation.Result, error) {
	result, structural, err := c.Annotate(output)
	if err != nil {
		return remediation.Result{}, err
	}
	report, err := gate.ValidateConcurrently(ctx, result.Legos, c.baskets, c.policy, c.cfg.Validation.Workers)
	if err != nil {
		return remediation.Result{}, fmt.Errorf("gate.ValidateConcurrently() > %w", err)
	}

	pruned, removed := remediation.PruneViolations(c.baskets, report, remediation.Options{
		DropStrayBaskets:   opts.DropStray,
		DropUnknownBaskets: opts.DropUnknown,
	})
	NewReportPrinter(output).PrintRemovals(removed)

	if opts.DryRun || !removed.Changed() {
		return removed, nil
	}
	if err := refuseWrite(structural, opts.Force); err != nil {
		return removed, err
	}
	if err := c.saveBaskets(pruned); err != nil {
		return remediation.Result{}, fmt.Errorf("saveBaskets() > %w", err)
	}
	fmt.Fprintf(output, "Updated %s\n", c.cfg.Course.BasketsPath)
	return removed, nil
}

type GenerateOptions struct {
	// LegoID limits generation to one LEGO
	LegoID    course.LegoID
	Count     int
	Overwrite bool
	Force     bool
}

// GenerateBaskets asks the client for phrases for every new LEGO without a basket.
// Generated phrases are stored as they are, except that word counts are recomputed with the
// course's tokenization policy. Run validation afterwards to find phrases that break GATE.
func GenerateBaskets(ctx context.Context, c *Course, client inference.Client, opts GenerateOptions, output io.Writer) (int, error) {
	result, structural, err := c.Annotate(output)
	if err != nil {
		return 0, err
	}
	// Vocabulary of excluded seeds would be missing from every request.
	if err := refuseWrite(structural, opts.Force); err != nil {
		return 0, err
	}
	vocabulary := gate.BuildVocabulary(result.Legos, c.policy)

	var targets []dedup.AnnotatedLego
	for _, lego := range result.Legos {
		if opts.LegoID != "" && lego.Lego.ID != opts.LegoID {
			continue
		}
		if !lego.New {
			if opts.LegoID != "" {
				return 0, fmt.Errorf("%s is a duplicate of a LEGO in %s and uses its basket", opts.LegoID, lego.Ref)
			}
			continue
		}
		if _, ok := c.baskets[lego.Lego.ID]; ok && !opts.Overwrite {
			continue
		}
		targets = append(targets, lego)
	}
	if opts.LegoID != "" && len(targets) == 0 {
		if _, ok := c.baskets[opts.LegoID]; ok {
			return 0, fmt.Errorf("%s already has a basket, use --overwrite to replace it", opts.LegoID)
		}
		return 0, fmt.Errorf("%s is not in the canonical sequence", opts.LegoID)
	}

	baskets := c.baskets.Clone()
	if baskets == nil {
		baskets = course.Baskets{}
	}
	generated := 0
	var generateErr error
	for _, lego := range targets {
		response, err := client.GeneratePhrases(ctx, inference.GeneratePhrasesRequest{
			LegoID:         string(lego.Lego.ID),
			Known:          lego.Lego.Known,
			Target:         lego.Lego.Target,
			KnownLanguage:  c.cfg.Course.KnownLanguage,
			TargetLanguage: c.cfg.Course.TargetLanguage,
			Vocabulary:     vocabulary.At(lego.Position),
			Count:          opts.Count,
		})
		if err != nil {
			generateErr = fmt.Errorf("client.GeneratePhrases(%s) > %w", lego.Lego.ID, err)
			break
		}

		phrases := c.toPhrases(response.Phrases)
		baskets[lego.Lego.ID] = phrases
		generated++
		slog.Info("generated phrases",
			slog.String("legoID", string(lego.Lego.ID)),
			slog.Int("phrases", len(phrases)),
		)
	}

	// Keep what was generated before a failure.
	if generated > 0 {
		if err := c.saveBaskets(baskets); err != nil {
			return generated, errors.Join(generateErr, fmt.Errorf("saveBaskets() > %w", err))
		}
	}
	return generated, generateErr
}

func (c *Course) toPhrases(generated []inference.GeneratedPhrase) []course.Phrase {
	phrases := make([]course.Phrase, 0, len(generated))
	for _, g := range generated {
		target := strings.TrimSpace(g.Target)
		if target == "" {
			continue
		}
		phrases = append(phrases, course.Phrase{
			Known:     strings.TrimSpace(g.Known),
			Target:    target,
			WordCount: len(c.policy.Tokenize(target)),
		})
	}
	return phrases
}

func legoIDStrings(ids []course.LegoID) []string {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = string(id)
	}
	return strs
}
