package dedup

import (
	"github.com/at-ishikawa/legogate/internal/course"
	"github.com/at-ishikawa/legogate/internal/sequence"
)

// AnnotatedLego is a LEGO in canonical order with recomputed new/ref annotations.
// The embedded Lego carries the same recomputed values, never the stored ones.
type AnnotatedLego struct {
	sequence.LegoRef
	Key string        `json:"-" yaml:"-"`
	New bool          `json:"new" yaml:"new"`
	Ref course.SeedID `json:"ref,omitempty" yaml:"ref,omitempty"`
}

// SeedProgress counts LEGOs per seed.
type SeedProgress struct {
	SeedID          course.SeedID `json:"seed_id" yaml:"seed_id"`
	Legos           int           `json:"legos" yaml:"legos"`
	NewLegos        int           `json:"new_legos" yaml:"new_legos"`
	CumulativeLegos int           `json:"cumulative_legos" yaml:"cumulative_legos"`
}

// DuplicateGroup lists every LEGO that shares a key, first occurrence first.
type DuplicateGroup struct {
	Known      string          `json:"known" yaml:"known"`
	Target     string          `json:"target" yaml:"target"`
	Original   course.LegoID   `json:"original" yaml:"original"`
	Duplicates []course.LegoID `json:"duplicates" yaml:"duplicates"`
}

// Result is the output of one deduplication pass.
type Result struct {
	Legos    []AnnotatedLego
	Progress []SeedProgress
	Registry *Registry
}

// Deduplicate walks refs in canonical order. The first LEGO with a given key is new and claims
// the key in the registry; later ones reference the claiming seed.
//
// registry may be nil. It is cloned, so the caller's registry is never modified, and the updated
// copy is returned in Result.Registry. Stored new/ref annotations on the input are ignored.
func Deduplicate(refs []sequence.LegoRef, registry *Registry) Result {
	reg := registry.Clone()
	legos := make([]AnnotatedLego, 0, len(refs))
	var progress []SeedProgress
	cumulative := 0

	for _, ref := range refs {
		key := Key(ref.Lego.Target, ref.Lego.Known)
		owner, isNew := reg.claim(key, ref.SeedID)

		annotated := AnnotatedLego{LegoRef: ref, Key: key, New: isNew}
		if !isNew {
			annotated.Ref = owner
		}
		annotated.Lego.New = annotated.New
		annotated.Lego.Ref = annotated.Ref
		annotated.Lego.Components = append([]course.Component(nil), ref.Lego.Components...)
		legos = append(legos, annotated)

		if len(progress) == 0 || progress[len(progress)-1].SeedID != ref.SeedID {
			progress = append(progress, SeedProgress{SeedID: ref.SeedID})
		}
		current := &progress[len(progress)-1]
		current.Legos++
		if isNew {
			current.NewLegos++
			cumulative++
		}
		current.CumulativeLegos = cumulative
	}

	return Result{Legos: legos, Progress: progress, Registry: reg}
}

// NewCount returns the number of new LEGOs.
func (r Result) NewCount() int {
	count := 0
	for _, lego := range r.Legos {
		if lego.New {
			count++
		}
	}
	return count
}

// Groups returns every key taught more than once within this pass, ordered by first occurrence.
// Keys first claimed by a pre-seeded registry have no original in this pass and are grouped
// under an empty Original.
func (r Result) Groups() []DuplicateGroup {
	index := make(map[string]int)
	var groups []DuplicateGroup
	for _, lego := range r.Legos {
		i, ok := index[lego.Key]
		if !ok {
			i = len(groups)
			index[lego.Key] = i
			groups = append(groups, DuplicateGroup{Known: lego.Lego.Known, Target: lego.Lego.Target})
		}
		if lego.New {
			groups[i].Original = lego.Lego.ID
			continue
		}
		groups[i].Duplicates = append(groups[i].Duplicates, lego.Lego.ID)
	}

	var duplicated []DuplicateGroup
	for _, group := range groups {
		if len(group.Duplicates) > 0 {
			duplicated = append(duplicated, group)
		}
	}
	return duplicated
}

// Apply writes the recomputed annotations and cumulative counts back onto a copy of seeds.
// Seeds and LEGOs absent from the result are copied unchanged.
func Apply(seeds []course.Seed, r Result) []course.Seed {
	annotations := make(map[course.LegoID]AnnotatedLego, len(r.Legos))
	for _, lego := range r.Legos {
		annotations[lego.Lego.ID] = lego
	}
	cumulative := make(map[course.SeedID]int, len(r.Progress))
	for _, p := range r.Progress {
		cumulative[p.SeedID] = p.CumulativeLegos
	}

	updated := make([]course.Seed, len(seeds))
	for i, seed := range seeds {
		seed.Legos = append([]course.Lego(nil), seed.Legos...)
		if count, ok := cumulative[seed.ID]; ok {
			seed.CumulativeLegos = count
		}
		for j, lego := range seed.Legos {
			annotated, ok := annotations[lego.ID]
			if !ok {
				continue
			}
			seed.Legos[j].New = annotated.New
			seed.Legos[j].Ref = annotated.Ref
		}
		updated[i] = seed
	}
	return updated
}
