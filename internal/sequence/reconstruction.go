package sequence

import (
	"fmt"
	"sort"

	"github.com/at-ishikawa/legogate/internal/course"
	"github.com/at-ishikawa/legogate/internal/textnorm"
)

// Joiner concatenates target texts in the convention of the target script.
type Joiner interface {
	Join(parts []string) string
}

// ReconstructionViolation is a seed (or molecular LEGO) whose parts do not join back into its target.
// LegoID is empty for seed-level violations.
type ReconstructionViolation struct {
	SeedID        course.SeedID `json:"seed_id" yaml:"seed_id"`
	LegoID        course.LegoID `json:"lego_id,omitempty" yaml:"lego_id,omitempty"`
	Expected      string        `json:"expected" yaml:"expected"`
	Reconstructed string        `json:"reconstructed" yaml:"reconstructed"`
}

func (v ReconstructionViolation) String() string {
	subject := "seed " + string(v.SeedID)
	if v.LegoID != "" {
		subject = "lego " + string(v.LegoID)
	}
	return fmt.Sprintf("lossless reconstruction violation in %s: expected %q, reconstructed %q",
		subject, v.Expected, v.Reconstructed)
}

// CheckReconstruction reports every seed whose LEGO targets do not join into the seed target,
// and every molecular LEGO whose component targets do not join into the LEGO target.
// Comparison is exact after trimming and collapsing whitespace.
func CheckReconstruction(seeds []course.Seed, joiner Joiner) []ReconstructionViolation {
	ordered := append([]course.Seed(nil), seeds...)
	sort.SliceStable(ordered, func(i, j int) bool {
		ni, nj := ordered[i].ID.Number(), ordered[j].ID.Number()
		if ni != nj {
			return ni < nj
		}
		return ordered[i].ID < ordered[j].ID
	})

	var violations []ReconstructionViolation
	for _, seed := range ordered {
		targets := make([]string, len(seed.Legos))
		for i, lego := range seed.Legos {
			targets[i] = lego.Target
		}
		if v, ok := compare(seed.Target, targets, joiner); !ok {
			violations = append(violations, ReconstructionViolation{
				SeedID:        seed.ID,
				Expected:      textnorm.CollapseSpace(seed.Target),
				Reconstructed: v,
			})
		}

		for _, lego := range seed.Legos {
			if !lego.IsMolecular() || len(lego.Components) == 0 {
				continue
			}
			parts := make([]string, len(lego.Components))
			for i, component := range lego.Components {
				parts[i] = component.Target
			}
			if v, ok := compare(lego.Target, parts, joiner); !ok {
				violations = append(violations, ReconstructionViolation{
					SeedID:        seed.ID,
					LegoID:        lego.ID,
					Expected:      textnorm.CollapseSpace(lego.Target),
					Reconstructed: v,
				})
			}
		}
	}
	return violations
}

func compare(expected string, parts []string, joiner Joiner) (string, bool) {
	trimmed := make([]string, len(parts))
	for i, part := range parts {
		trimmed[i] = textnorm.CollapseSpace(part)
	}
	reconstructed := textnorm.CollapseSpace(joiner.Join(trimmed))
	return reconstructed, reconstructed == textnorm.CollapseSpace(expected)
}
