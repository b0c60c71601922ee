package course

import (
	"fmt"
	"regexp"
	"strconv"
)

// SeedID identifies a seed, e.g. S0001.
type SeedID string

// LegoID identifies a LEGO as its seed ID plus a two-digit ordinal, e.g. S0001L01.
type LegoID string

var (
	seedIDPattern = regexp.MustCompile(`^S(\d{4})$`)
	legoIDPattern = regexp.MustCompile(`^(S\d{4})L(\d{2})$`)
)

// ParseSeedID returns the numeric part of a seed ID.
func ParseSeedID(id string) (int, error) {
	matches := seedIDPattern.FindStringSubmatch(id)
	if matches == nil {
		return 0, fmt.Errorf("seed id %q does not match S####", id)
	}
	number, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, fmt.Errorf("strconv.Atoi(%s) > %w", matches[1], err)
	}
	return number, nil
}

// ParseLegoID splits a LEGO ID into its parent seed ID and ordinal.
func ParseLegoID(id string) (SeedID, int, error) {
	matches := legoIDPattern.FindStringSubmatch(id)
	if matches == nil {
		return "", 0, fmt.Errorf("lego id %q does not match S####L##", id)
	}
	ordinal, err := strconv.Atoi(matches[2])
	if err != nil {
		return "", 0, fmt.Errorf("strconv.Atoi(%s) > %w", matches[2], err)
	}
	return SeedID(matches[1]), ordinal, nil
}

// Number returns the numeric part of the seed ID, or -1 when it is malformed.
func (id SeedID) Number() int {
	number, err := ParseSeedID(string(id))
	if err != nil {
		return -1
	}
	return number
}

// Valid reports whether the ID has the S#### shape.
func (id SeedID) Valid() bool {
	return seedIDPattern.MatchString(string(id))
}

// Seed returns the parent seed ID, or an empty ID when the LEGO ID is malformed.
func (id LegoID) Seed() SeedID {
	seedID, _, err := ParseLegoID(string(id))
	if err != nil {
		return ""
	}
	return seedID
}

// NewLegoID formats a LEGO ID from a seed ID and an ordinal.
func NewLegoID(seedID SeedID, ordinal int) LegoID {
	return LegoID(fmt.Sprintf("%sL%02d", seedID, ordinal))
}
