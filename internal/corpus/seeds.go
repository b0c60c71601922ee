package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"slices"

	"github.com/at-ishikawa/legogate/internal/course"
)

// SeedsFile is the on-disk shape of a seed file.
type SeedsFile struct {
	Seeds []course.Seed `json:"seeds" yaml:"seeds"`
}

// SeedSet is every seed file under a path, kept per file so updates can be written back in place.
type SeedSet struct {
	files []corpusFile[SeedsFile]
}

// LoadSeeds reads one seed file, or every .json/.yml/.yaml file under a directory.
func LoadSeeds(path string) (*SeedSet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("os.Stat(%s) > %w", path, err)
	}
	if !info.IsDir() {
		contents, err := readFile[SeedsFile](path)
		if err != nil {
			return nil, fmt.Errorf("readFile(%s) > %w", path, err)
		}
		return &SeedSet{files: []corpusFile[SeedsFile]{{path: path, contents: contents}}}, nil
	}

	files, err := loadFiles[SeedsFile](path, isCorpusFile)
	if err != nil {
		return nil, fmt.Errorf("loadFiles(%s) > %w", path, err)
	}
	return &SeedSet{files: files}, nil
}

// NewSeedSet wraps in-memory seeds to be saved at path.
func NewSeedSet(path string, seeds []course.Seed) *SeedSet {
	return &SeedSet{files: []corpusFile[SeedsFile]{{path: path, contents: SeedsFile{Seeds: seeds}}}}
}

// Seeds returns the seeds of every file in file order.
func (s *SeedSet) Seeds() []course.Seed {
	var seeds []course.Seed
	for _, file := range s.files {
		seeds = append(seeds, file.contents.Seeds...)
	}
	return seeds
}

// Paths returns the file paths in the set.
func (s *SeedSet) Paths() []string {
	paths := make([]string, len(s.files))
	for i, file := range s.files {
		paths[i] = file.path
	}
	return paths
}

// Replace swaps in updated seeds, matched to their file by position.
// updated must be the same length as Seeds().
func (s *SeedSet) Replace(updated []course.Seed) error {
	total := 0
	for _, file := range s.files {
		total += len(file.contents.Seeds)
	}
	if total != len(updated) {
		return fmt.Errorf("expected %d seeds, got %d", total, len(updated))
	}

	offset := 0
	for i := range s.files {
		n := len(s.files[i].contents.Seeds)
		s.files[i].contents.Seeds = append([]course.Seed(nil), updated[offset:offset+n]...)
		offset += n
	}
	return nil
}

// Save writes every file back to its path.
func (s *SeedSet) Save() error {
	for _, file := range s.files {
		if err := WriteFile(file.path, file.contents); err != nil {
			return fmt.Errorf("WriteFile(%s) > %w", file.path, err)
		}
	}
	return nil
}

// LoadBaskets reads a basket file. A missing file yields empty baskets because generation may not
// have run yet.
func LoadBaskets(path string) (course.Baskets, error) {
	baskets, err := readFile[course.Baskets](path)
	if errors.Is(err, fs.ErrNotExist) {
		return course.Baskets{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("readFile(%s) > %w", path, err)
	}
	if baskets == nil {
		baskets = course.Baskets{}
	}
	return baskets, nil
}

// SaveBaskets writes baskets to path.
func SaveBaskets(path string, baskets course.Baskets) error {
	if err := WriteFile(path, baskets); err != nil {
		return fmt.Errorf("WriteFile(%s) > %w", path, err)
	}
	return nil
}

func sortedLegoIDs(baskets course.Baskets) []course.LegoID {
	return slices.Sorted(maps.Keys(baskets))
}
