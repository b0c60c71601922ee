// Package testutil provides shared test helpers for creating config files and course fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/at-ishikawa/legogate/internal/corpus"
	"github.com/at-ishikawa/legogate/internal/course"
	"github.com/stretchr/testify/require"
)

const (
	SeedsFileName   = "seeds.json"
	BasketsFileName = "baskets.json"
)

// SetupTestConfig creates a config file pointing at seeds and baskets files under tmpDir.
// The course files themselves are not created; see WriteCourse.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "reports"), 0755))

	configContent := fmt.Sprintf(`course:
  seeds_path: %s
  baskets_path: %s
  known_language: en
  target_language: es
validation:
  workers: 2
outputs:
  report_directory: %s
`,
		filepath.Join(tmpDir, SeedsFileName),
		filepath.Join(tmpDir, BasketsFileName),
		filepath.Join(tmpDir, "reports"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// SetupTestConfigWithAPIKey creates a config file with a fake OpenAI API key for tests
// that require API key validation to pass.
func SetupTestConfigWithAPIKey(t *testing.T, tmpDir string) string {
	t.Helper()
	cfgPath := SetupTestConfig(t, tmpDir)

	content, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	content = append(content, []byte("openai:\n  api_key: fake-key-for-testing\n  model: gpt-4o-mini\n")...)
	require.NoError(t, os.WriteFile(cfgPath, content, 0644))
	return cfgPath
}

// SetupBrokenConfigFile writes a config file that viper cannot parse.
func SetupBrokenConfigFile(t *testing.T) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("course: [unclosed"), 0644))
	return cfgPath
}

// Atomic returns an atomic LEGO.
func Atomic(id, known, target string) course.Lego {
	return course.Lego{ID: course.LegoID(id), Type: course.LegoTypeAtomic, Known: known, Target: target}
}

// SpanishSeeds returns three seeds where S0002L01 repeats S0001L01 and S0003L02 is molecular.
// The stored new/ref annotations are deliberately stale.
func SpanishSeeds() []course.Seed {
	return []course.Seed{
		{
			ID: "S0001", Known: "I want to speak", Target: "quiero hablar",
			Legos: []course.Lego{Atomic("S0001L01", "I want", "quiero"), Atomic("S0001L02", "to speak", "hablar")},
		},
		{
			ID: "S0002", Known: "I want to eat", Target: "quiero comer",
			Legos: []course.Lego{
				func() course.Lego {
					lego := Atomic("S0002L01", "I want", "quiero")
					lego.New = true
					return lego
				}(),
				Atomic("S0002L02", "to eat", "comer"),
			},
			CumulativeLegos: 99,
		},
		{
			ID: "S0003", Known: "I want to speak Spanish now", Target: "quiero hablar español ahora",
			Legos: []course.Lego{
				Atomic("S0003L01", "I want", "quiero"),
				{
					ID: "S0003L02", Type: course.LegoTypeMolecular, Known: "to speak Spanish", Target: "hablar español",
					Components: []course.Component{{Known: "to speak", Target: "hablar"}, {Known: "Spanish", Target: "español"}},
				},
				Atomic("S0003L03", "now", "ahora"),
			},
		},
	}
}

// SpanishBaskets returns baskets for SpanishSeeds with one GATE violation on S0002L02
// and one stray basket on the duplicate S0002L01.
func SpanishBaskets() course.Baskets {
	return course.Baskets{
		"S0001L02": {{Known: "I want to speak", Target: "quiero hablar"}},
		"S0002L01": {{Known: "I want", Target: "quiero"}},
		"S0002L02": {
			{Known: "I want to eat", Target: "quiero comer"},
			{Known: "I want to eat now", Target: "quiero comer ahora"},
		},
		"S0003L02": {{Known: "I want to speak Spanish", Target: "quiero hablar español"}},
	}
}

// WriteCourse writes seeds and baskets under dir with the file names SetupTestConfig uses.
func WriteCourse(t *testing.T, dir string, seeds []course.Seed, baskets course.Baskets) {
	t.Helper()
	require.NoError(t, corpus.NewSeedSet(filepath.Join(dir, SeedsFileName), seeds).Save())
	if baskets != nil {
		require.NoError(t, corpus.SaveBaskets(filepath.Join(dir, BasketsFileName), baskets))
	}
}
