// Package dedup marks the first occurrence of every (target, known) pair as new and the rest as references to it.
package dedup

import (
	"sort"
	"strings"

	"github.com/at-ishikawa/legogate/internal/course"
	"github.com/at-ishikawa/legogate/internal/textnorm"
)

const keyDelimiter = "\x00"

// Key is the normalized identity of a LEGO: lowercased, trimmed target and known joined by NUL.
func Key(target, known string) string {
	return normalize(target) + keyDelimiter + normalize(known)
}

func normalize(s string) string {
	return textnorm.Lower(strings.TrimSpace(s))
}

// Registry records which seed first taught each key.
// First occurrence wins; entries are never overwritten.
type Registry struct {
	first map[string]course.SeedID
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{first: make(map[string]course.SeedID)}
}

// Lookup returns the seed that first taught key.
func (r *Registry) Lookup(key string) (course.SeedID, bool) {
	if r == nil {
		return "", false
	}
	seedID, ok := r.first[key]
	return seedID, ok
}

// Len returns the number of distinct keys.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.first)
}

// Keys returns every key in sorted order.
func (r *Registry) Keys() []string {
	if r == nil {
		return nil
	}
	keys := make([]string, 0, len(r.first))
	for key := range r.first {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy. A nil registry clones to an empty one.
func (r *Registry) Clone() *Registry {
	cloned := NewRegistry()
	if r == nil {
		return cloned
	}
	for key, seedID := range r.first {
		cloned.first[key] = seedID
	}
	return cloned
}

// claim records key for seedID unless it is already present, and returns the owning seed.
func (r *Registry) claim(key string, seedID course.SeedID) (course.SeedID, bool) {
	if owner, ok := r.first[key]; ok {
		return owner, false
	}
	r.first[key] = seedID
	return seedID, true
}
