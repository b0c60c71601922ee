// Package sequence establishes the canonical order of LEGOs: seed order, then LEGO-within-seed order.
// Every "taught so far" question in the pipeline is answered relative to this order.
package sequence

import (
	"fmt"
	"sort"

	"github.com/at-ishikawa/legogate/internal/course"
)

// LegoRef is a LEGO at its canonical position.
type LegoRef struct {
	Position int           `json:"position" yaml:"position"`
	SeedID   course.SeedID `json:"seed_id" yaml:"seed_id"`
	Ordinal  int           `json:"ordinal" yaml:"ordinal"`
	Lego     course.Lego   `json:"lego" yaml:"lego"`
}

type orderedSeed struct {
	number int
	seed   course.Seed
}

// Build orders the LEGOs of every seed by numeric seed ID, then ordinal.
//
// All structural errors are collected into a *BuildError. When any ID is malformed no
// sequence is returned. Seeds with bad ordinals are left out and the rest is returned
// along with the error.
func Build(seeds []course.Seed) ([]LegoRef, error) {
	var errs []error
	seen := make(map[course.SeedID]bool, len(seeds))
	valid := make([]orderedSeed, 0, len(seeds))

	for _, seed := range seeds {
		number, err := course.ParseSeedID(string(seed.ID))
		if err != nil {
			errs = append(errs, &MalformedIdentifierError{ID: string(seed.ID), Reason: err.Error()})
			continue
		}
		if seen[seed.ID] {
			errs = append(errs, &MalformedIdentifierError{ID: string(seed.ID), Reason: "seed id appears more than once"})
			continue
		}
		seen[seed.ID] = true

		legoErrs := checkLegoIDs(seed)
		if len(legoErrs) > 0 {
			errs = append(errs, legoErrs...)
			continue
		}
		if err := checkOrdinals(seed); err != nil {
			errs = append(errs, err)
			continue
		}
		valid = append(valid, orderedSeed{number: number, seed: seed})
	}

	buildErr := &BuildError{Errors: errs}
	if buildErr.Fatal() {
		return nil, buildErr
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return valid[i].number < valid[j].number
	})

	var refs []LegoRef
	for _, s := range valid {
		for i, lego := range s.seed.Legos {
			refs = append(refs, LegoRef{
				Position: len(refs),
				SeedID:   s.seed.ID,
				Ordinal:  i + 1,
				Lego:     lego,
			})
		}
	}

	if len(errs) > 0 {
		return refs, buildErr
	}
	return refs, nil
}

func checkLegoIDs(seed course.Seed) []error {
	var errs []error
	seen := make(map[course.LegoID]bool, len(seed.Legos))
	for _, lego := range seed.Legos {
		if seen[lego.ID] {
			errs = append(errs, &MalformedIdentifierError{ID: string(lego.ID), Reason: "lego id appears more than once"})
			continue
		}
		seen[lego.ID] = true

		seedID, _, err := course.ParseLegoID(string(lego.ID))
		if err != nil {
			errs = append(errs, &MalformedIdentifierError{ID: string(lego.ID), Reason: err.Error()})
			continue
		}
		if seedID != seed.ID {
			errs = append(errs, &MalformedIdentifierError{
				ID:     string(lego.ID),
				Reason: fmt.Sprintf("lego id must be prefixed by its seed id %s", seed.ID),
			})
		}
	}
	return errs
}

func checkOrdinals(seed course.Seed) error {
	ordinals := make([]int, len(seed.Legos))
	contiguous := true
	for i, lego := range seed.Legos {
		// IDs were validated by checkLegoIDs.
		_, ordinal, _ := course.ParseLegoID(string(lego.ID))
		ordinals[i] = ordinal
		if ordinal != i+1 {
			contiguous = false
		}
	}
	if contiguous {
		return nil
	}
	return &MalformedLegoOrderingError{SeedID: seed.ID, Ordinals: ordinals}
}

// SeedIDs returns the distinct seed IDs of refs in canonical order.
func SeedIDs(refs []LegoRef) []course.SeedID {
	var ids []course.SeedID
	for i, ref := range refs {
		if i == 0 || refs[i-1].SeedID != ref.SeedID {
			ids = append(ids, ref.SeedID)
		}
	}
	return ids
}
