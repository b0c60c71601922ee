// Package remediation applies the fixes a GATE report asks for. It runs after validation and
// never inside it.
package remediation

import (
	"sort"

	"github.com/at-ishikawa/legogate/internal/course"
	"github.com/at-ishikawa/legogate/internal/gate"
)

// Options controls what PruneViolations removes besides violating phrases.
type Options struct {
	DropStrayBaskets   bool
	DropUnknownBaskets bool
}

// Removal is one removed phrase.
type Removal struct {
	LegoID course.LegoID `json:"lego_id" yaml:"lego_id"`
	Phrase course.Phrase `json:"phrase" yaml:"phrase"`
	Tokens []string      `json:"tokens" yaml:"tokens"`
}

// Result describes what was removed.
type Result struct {
	Removed        []Removal       `json:"removed" yaml:"removed"`
	DroppedBaskets []course.LegoID `json:"dropped_baskets,omitempty" yaml:"dropped_baskets,omitempty"`
}

// Changed reports whether anything was removed.
func (r Result) Changed() bool {
	return len(r.Removed) > 0 || len(r.DroppedBaskets) > 0
}

// PruneViolations returns a copy of baskets without the phrases the report flagged.
// Phrases are matched by index and target text, so a report from different baskets removes nothing it
// cannot match.
func PruneViolations(baskets course.Baskets, report gate.Report, opts Options) (course.Baskets, Result) {
	pruned := baskets.Clone()
	if pruned == nil {
		pruned = course.Baskets{}
	}
	var result Result

	for _, legoReport := range report.Legos {
		phrases, ok := pruned[legoReport.LegoID]
		if !ok || len(legoReport.Violations) == 0 {
			continue
		}
		drop := make(map[int][]string, len(legoReport.Violations))
		for _, violation := range legoReport.Violations {
			if violation.Index < len(phrases) && phrases[violation.Index].Target == violation.Target {
				drop[violation.Index] = violation.Tokens
			}
		}

		kept := make([]course.Phrase, 0, len(phrases))
		for i, phrase := range phrases {
			tokens, remove := drop[i]
			if !remove {
				kept = append(kept, phrase)
				continue
			}
			result.Removed = append(result.Removed, Removal{LegoID: legoReport.LegoID, Phrase: phrase, Tokens: tokens})
		}
		pruned[legoReport.LegoID] = kept
	}

	var dropped []course.LegoID
	if opts.DropStrayBaskets {
		dropped = append(dropped, report.StrayBaskets...)
	}
	if opts.DropUnknownBaskets {
		dropped = append(dropped, report.UnknownBaskets...)
	}
	sort.Slice(dropped, func(i, j int) bool { return dropped[i] < dropped[j] })
	for _, id := range dropped {
		if _, ok := pruned[id]; !ok {
			continue
		}
		delete(pruned, id)
		result.DroppedBaskets = append(result.DroppedBaskets, id)
	}
	return pruned, result
}
