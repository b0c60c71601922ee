package cli

import (
	"fmt"
	"log/slog"

	"github.com/at-ishikawa/legogate/internal/config"
	"github.com/at-ishikawa/legogate/internal/corpus"
	"github.com/at-ishikawa/legogate/internal/course"
	"github.com/at-ishikawa/legogate/internal/pipeline"
	"github.com/at-ishikawa/legogate/internal/tokenize"
)

// Course is the seeds, baskets and tokenization policy named by a configuration
type Course struct {
	cfg     *config.Config
	seedSet *corpus.SeedSet
	baskets course.Baskets
	policy  tokenize.Policy
}

func LoadCourse(cfg *config.Config) (*Course, error) {
	seedSet, err := corpus.LoadSeeds(cfg.Course.SeedsPath)
	if err != nil {
		return nil, fmt.Errorf("corpus.LoadSeeds(%s) > %w", cfg.Course.SeedsPath, err)
	}
	baskets, err := corpus.LoadBaskets(cfg.Course.BasketsPath)
	if err != nil {
		return nil, fmt.Errorf("corpus.LoadBaskets(%s) > %w", cfg.Course.BasketsPath, err)
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, fmt.Errorf("cfg.Policy() > %w", err)
	}

	slog.Debug("loaded course",
		slog.Int("files", len(seedSet.Paths())),
		slog.Int("seeds", len(seedSet.Seeds())),
		slog.Int("baskets", len(baskets)),
		slog.String("policy", policy.Name()),
	)
	return &Course{
		cfg:     cfg,
		seedSet: seedSet,
		baskets: baskets,
		policy:  policy,
	}, nil
}

func (c *Course) Seeds() []course.Seed {
	return c.seedSet.Seeds()
}

func (c *Course) Baskets() course.Baskets {
	return c.baskets
}

func (c *Course) Policy() tokenize.Policy {
	return c.policy
}

func (c *Course) Input() pipeline.Input {
	return pipeline.Input{Seeds: c.Seeds(), Baskets: c.baskets}
}

// PipelineOptions returns the options configured for a full run, with schema checks enabled
func (c *Course) PipelineOptions() (pipeline.Options, error) {
	schema, err := corpus.NewSchemaChecker()
	if err != nil {
		return pipeline.Options{}, fmt.Errorf("corpus.NewSchemaChecker() > %w", err)
	}
	return pipeline.Options{
		Policy:   c.policy,
		LutBound: course.SeedID(c.cfg.Validation.LutBound),
		Workers:  c.cfg.Validation.Workers,
		Schema:   schema,
	}, nil
}

func (c *Course) saveBaskets(baskets course.Baskets) error {
	if err := corpus.SaveBaskets(c.cfg.Course.BasketsPath, baskets); err != nil {
		return fmt.Errorf("corpus.SaveBaskets() > %w", err)
	}
	c.baskets = baskets
	return nil
}
