package pipeline

import (
	"fmt"

	"github.com/at-ishikawa/legogate/internal/dedup"
	"github.com/at-ishikawa/legogate/internal/gate"
	"github.com/at-ishikawa/legogate/internal/lut"
)

// Stage names the pipeline stage that produced a finding.
type Stage string

const (
	StageSequence       Stage = "sequence"
	StageReconstruction Stage = "reconstruction"
	StageSchema         Stage = "schema"
)

// Finding is one structural error or warning.
type Finding struct {
	Stage    Stage  `json:"stage" yaml:"stage"`
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	Message  string `json:"message" yaml:"message"`
	Severity string `json:"severity" yaml:"severity"` // "error" or "warning"
}

func (f Finding) String() string {
	if f.Location == "" {
		return fmt.Sprintf("[%s] %s", f.Stage, f.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", f.Stage, f.Location, f.Message)
}

// DedupSummary is the deduplication part of a report.
type DedupSummary struct {
	Legos      int                    `json:"legos" yaml:"legos"`
	New        int                    `json:"new" yaml:"new"`
	Duplicates int                    `json:"duplicates" yaml:"duplicates"`
	Registry   int                    `json:"registry" yaml:"registry"`
	Groups     []dedup.DuplicateGroup `json:"groups" yaml:"groups"`
	Progress   []dedup.SeedProgress   `json:"progress" yaml:"progress"`
}

// Report is the result of one run.
type Report struct {
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
	Policy      string `json:"policy" yaml:"policy"`
	Seeds       int    `json:"seeds" yaml:"seeds"`
	Legos       int    `json:"legos" yaml:"legos"`

	Errors   []Finding `json:"errors" yaml:"errors"`
	Warnings []Finding `json:"warnings" yaml:"warnings"`

	Dedup DedupSummary `json:"dedup" yaml:"dedup"`
	Gate  gate.Report  `json:"gate" yaml:"gate"`
	Lut   lut.Report   `json:"lut" yaml:"lut"`
}

func (r *Report) AddError(f Finding) {
	f.Severity = "error"
	r.Errors = append(r.Errors, f)
}

func (r *Report) AddWarning(f Finding) {
	f.Severity = "warning"
	r.Warnings = append(r.Warnings, f)
}

// HasErrors reports structural errors, which always fail a run.
func (r *Report) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasFindings reports anything worth fixing, including advisory content findings.
func (r *Report) HasFindings() bool {
	return r.HasErrors() || len(r.Warnings) > 0 || r.Gate.HasViolations() || r.Lut.HasCollisions()
}
