// Package lut finds known-language chunks taught with more than one target-language chunk.
// A learner cannot tell which target is meant when the same known text has two answers.
package lut

import (
	"fmt"
	"sort"

	"github.com/at-ishikawa/legogate/internal/course"
	"github.com/at-ishikawa/legogate/internal/dedup"
	"github.com/at-ishikawa/legogate/internal/sequence"
	"github.com/at-ishikawa/legogate/internal/textnorm"
)

// Variant is one target taught for a known text, at its first occurrence.
type Variant struct {
	Target   string        `json:"target" yaml:"target"`
	SeedID   course.SeedID `json:"seed_id" yaml:"seed_id"`
	LegoID   course.LegoID `json:"lego_id" yaml:"lego_id"`
	Position int           `json:"position" yaml:"position"`
}

// Collision is a known text with more than one distinct target.
// Variants are sorted by first seed, so the first one is the candidate to keep.
type Collision struct {
	Known    string    `json:"known" yaml:"known"`
	Variants []Variant `json:"variants" yaml:"variants"`
}

// Keep returns the earliest variant.
func (c Collision) Keep() Variant {
	return c.Variants[0]
}

// Remove returns the variants to chunk up or remove.
func (c Collision) Remove() []Variant {
	return c.Variants[1:]
}

// Report lists every collision within the bound.
type Report struct {
	Bound      course.SeedID `json:"bound,omitempty" yaml:"bound,omitempty"`
	Scanned    int           `json:"scanned" yaml:"scanned"`
	Collisions []Collision   `json:"collisions" yaml:"collisions"`
}

// HasCollisions reports whether any collision was found.
func (r Report) HasCollisions() bool {
	return len(r.Collisions) > 0
}

type group struct {
	known    string
	variants map[string]*Variant
}

// Validate scans new LEGOs of seeds numerically at or below bound (every seed when bound is empty).
// Known and target texts are compared case-insensitively with whitespace collapsed.
func Validate(legos []dedup.AnnotatedLego, bound course.SeedID) (Report, error) {
	limit := -1
	if bound != "" {
		number, err := course.ParseSeedID(string(bound))
		if err != nil {
			return Report{}, &sequence.MalformedIdentifierError{ID: string(bound), Reason: err.Error()}
		}
		limit = number
	}

	report := Report{Bound: bound}
	groups := make(map[string]*group)
	var order []string
	for _, lego := range legos {
		if !lego.New {
			continue
		}
		if limit >= 0 && lego.SeedID.Number() > limit {
			continue
		}
		report.Scanned++

		knownKey := textnorm.Fold(lego.Lego.Known)
		g, ok := groups[knownKey]
		if !ok {
			g = &group{known: textnorm.CollapseSpace(lego.Lego.Known), variants: make(map[string]*Variant)}
			groups[knownKey] = g
			order = append(order, knownKey)
		}

		variant := Variant{
			Target:   textnorm.CollapseSpace(lego.Lego.Target),
			SeedID:   lego.SeedID,
			LegoID:   lego.Lego.ID,
			Position: lego.Position,
		}
		targetKey := textnorm.Fold(lego.Lego.Target)
		existing, ok := g.variants[targetKey]
		if !ok || earlier(variant, *existing) {
			g.variants[targetKey] = &variant
		}
	}

	for _, key := range order {
		g := groups[key]
		if len(g.variants) < 2 {
			continue
		}
		collision := Collision{Known: g.known}
		for _, variant := range g.variants {
			collision.Variants = append(collision.Variants, *variant)
		}
		sort.Slice(collision.Variants, func(i, j int) bool {
			return earlier(collision.Variants[i], collision.Variants[j])
		})
		report.Collisions = append(report.Collisions, collision)
	}

	sort.SliceStable(report.Collisions, func(i, j int) bool {
		a, b := report.Collisions[i].Keep(), report.Collisions[j].Keep()
		if a.SeedID != b.SeedID || a.Position != b.Position {
			return earlier(a, b)
		}
		return report.Collisions[i].Known < report.Collisions[j].Known
	})
	return report, nil
}

func earlier(a, b Variant) bool {
	na, nb := a.SeedID.Number(), b.SeedID.Number()
	if na != nb {
		return na < nb
	}
	return a.Position < b.Position
}

// SeedBound returns the ID of the n-th distinct seed in canonical order,
// or the last seed when there are fewer than n.
func SeedBound(legos []dedup.AnnotatedLego, n int) (course.SeedID, error) {
	if n < 1 {
		return "", fmt.Errorf("seed count must be positive, got %d", n)
	}
	var last course.SeedID
	count := 0
	for _, lego := range legos {
		if lego.SeedID == last {
			continue
		}
		last = lego.SeedID
		count++
		if count == n {
			return last, nil
		}
	}
	return last, nil
}
