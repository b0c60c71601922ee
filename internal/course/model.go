// Package course defines the seed, LEGO and practice basket model shared by every stage of the pipeline.
package course

// LegoType distinguishes indivisible LEGOs from ones composed of sub-chunks.
type LegoType string

const (
	LegoTypeAtomic    LegoType = "atomic"
	LegoTypeMolecular LegoType = "molecular"
)

// Seed is a sentence pair anchoring one unit of course content.
type Seed struct {
	ID     SeedID `json:"seed_id" yaml:"seed_id" validate:"required"`
	Known  string `json:"known" yaml:"known" validate:"required"`
	Target string `json:"target" yaml:"target" validate:"required"`
	Legos  []Lego `json:"legos" yaml:"legos" validate:"dive"`

	// CumulativeLegos is the stored running count of new LEGOs.
	// It is written back by the dedup command and never read by the pipeline.
	CumulativeLegos int `json:"cumulative_legos,omitempty" yaml:"cumulative_legos,omitempty"`
}

// Lego is a minimal teaching chunk extracted from one seed.
type Lego struct {
	ID         LegoID      `json:"id" yaml:"id" validate:"required"`
	Type       LegoType    `json:"type" yaml:"type" validate:"required,oneof=atomic molecular"`
	Known      string      `json:"known" yaml:"known" validate:"required"`
	Target     string      `json:"target" yaml:"target" validate:"required"`
	Components []Component `json:"components,omitempty" yaml:"components,omitempty" validate:"required_if=Type molecular,dive"`

	// New and Ref are the annotations found in the stored corpus.
	// Deduplication recomputes both and does not read them.
	New bool   `json:"new" yaml:"new"`
	Ref SeedID `json:"ref,omitempty" yaml:"ref,omitempty"`
}

// IsMolecular reports whether the LEGO is composed of components.
func (l Lego) IsMolecular() bool {
	return l.Type == LegoTypeMolecular
}

// Component is one known/target sub-chunk of a molecular LEGO.
type Component struct {
	Known  string `json:"known" yaml:"known" validate:"required"`
	Target string `json:"target" yaml:"target" validate:"required"`
}

// Phrase is a generated practice phrase.
// WordCount is whatever the generator claimed and is informational only.
type Phrase struct {
	Known     string `json:"known" yaml:"known" validate:"required"`
	Target    string `json:"target" yaml:"target" validate:"required"`
	WordCount int    `json:"word_count,omitempty" yaml:"word_count,omitempty"`
}

// Baskets maps a LEGO to its practice phrases.
type Baskets map[LegoID][]Phrase

// Clone returns a deep copy of the baskets.
func (b Baskets) Clone() Baskets {
	if b == nil {
		return nil
	}
	cloned := make(Baskets, len(b))
	for id, phrases := range b {
		cloned[id] = append([]Phrase(nil), phrases...)
	}
	return cloned
}
