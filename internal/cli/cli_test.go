package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/at-ishikawa/legogate/internal/config"
	"github.com/at-ishikawa/legogate/internal/corpus"
	"github.com/at-ishikawa/legogate/internal/course"
	"github.com/at-ishikawa/legogate/internal/inference"
	mock_inference "github.com/at-ishikawa/legogate/internal/mocks/inference"
	"github.com/at-ishikawa/legogate/internal/testutil"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func loadTestCourse(t *testing.T, dir string, baskets course.Baskets) *Course {
	t.Helper()
	return loadCourseWithSeeds(t, dir, testutil.SpanishSeeds(), baskets)
}

func loadCourseWithSeeds(t *testing.T, dir string, seeds []course.Seed, baskets course.Baskets) *Course {
	t.Helper()
	testutil.WriteCourse(t, dir, seeds, baskets)

	loader, err := config.NewConfigLoader(testutil.SetupTestConfig(t, dir))
	require.NoError(t, err)
	cfg, err := loader.Load()
	require.NoError(t, err)

	c, err := LoadCourse(cfg)
	require.NoError(t, err)
	return c
}

func TestLoadCourse(t *testing.T) {
	c := loadTestCourse(t, t.TempDir(), testutil.SpanishBaskets())

	assert.Len(t, c.Seeds(), 3)
	assert.Equal(t, testutil.SpanishBaskets(), c.Baskets())
	assert.Equal(t, "whitespace", c.Policy().Name())

	opts, err := c.PipelineOptions()
	require.NoError(t, err)
	assert.Equal(t, 2, opts.Workers)
	assert.NotNil(t, opts.Schema)
	assert.Empty(t, opts.LutBound)
}

func TestLoadCourse_MissingSeeds(t *testing.T) {
	dir := t.TempDir()
	loader, err := config.NewConfigLoader(testutil.SetupTestConfig(t, dir))
	require.NoError(t, err)
	cfg, err := loader.Load()
	require.NoError(t, err)

	_, err = LoadCourse(cfg)
	assert.ErrorContains(t, err, "corpus.LoadSeeds")
}

func TestDeduplicate(t *testing.T) {
	t.Run("dry run leaves the seed file alone", func(t *testing.T) {
		dir := t.TempDir()
		c := loadTestCourse(t, dir, nil)
		before, err := os.ReadFile(filepath.Join(dir, testutil.SeedsFileName))
		require.NoError(t, err)

		var output bytes.Buffer
		result, err := Deduplicate(c, DedupOptions{}, &output)
		require.NoError(t, err)
		assert.Equal(t, 5, result.NewCount())
		assert.Contains(t, output.String(), "LEGOs: 7, new: 5, duplicates: 2")
		assert.Contains(t, output.String(), "quiero = I want: S0001L01 <- S0002L01, S0003L01")

		after, err := os.ReadFile(filepath.Join(dir, testutil.SeedsFileName))
		require.NoError(t, err)
		assert.Equal(t, string(before), string(after))
	})

	t.Run("write stores annotations", func(t *testing.T) {
		dir := t.TempDir()
		c := loadTestCourse(t, dir, nil)

		var output bytes.Buffer
		_, err := Deduplicate(c, DedupOptions{Write: true}, &output)
		require.NoError(t, err)
		assert.Contains(t, output.String(), "Updated ")

		seedSet, err := corpus.LoadSeeds(filepath.Join(dir, testutil.SeedsFileName))
		require.NoError(t, err)
		seeds := seedSet.Seeds()
		require.Len(t, seeds, 3)

		assert.Equal(t, 2, seeds[0].CumulativeLegos)
		assert.True(t, seeds[0].Legos[0].New)
		assert.Equal(t, 3, seeds[1].CumulativeLegos)
		assert.False(t, seeds[1].Legos[0].New)
		assert.Equal(t, course.SeedID("S0001"), seeds[1].Legos[0].Ref)
		assert.Equal(t, 5, seeds[2].CumulativeLegos)
		assert.True(t, seeds[2].Legos[1].New)
	})
}

func TestFix(t *testing.T) {
	tests := []struct {
		name        string
		opts        FixOptions
		wantRemoved int
		wantDropped []course.LegoID
		wantOutput  []string
		wantBaskets func() course.Baskets
	}{
		{
			name:        "dry run",
			opts:        FixOptions{DryRun: true, DropStray: true},
			wantRemoved: 1,
			wantDropped: []course.LegoID{"S0002L01"},
			wantOutput:  []string{"S0002L02: quiero comer ahora (ahora)", "Dropped baskets: S0002L01"},
			wantBaskets: testutil.SpanishBaskets,
		},
		{
			name:        "prune violations only",
			opts:        FixOptions{},
			wantRemoved: 1,
			wantOutput:  []string{"Removed 1 phrase(s) and 0 basket(s)", "Updated "},
			wantBaskets: func() course.Baskets {
				baskets := testutil.SpanishBaskets()
				baskets["S0002L02"] = baskets["S0002L02"][:1]
				return baskets
			},
		},
		{
			name:        "prune and drop stray baskets",
			opts:        FixOptions{DropStray: true},
			wantRemoved: 1,
			wantDropped: []course.LegoID{"S0002L01"},
			wantOutput:  []string{"Removed 1 phrase(s) and 1 basket(s)"},
			wantBaskets: func() course.Baskets {
				baskets := testutil.SpanishBaskets()
				baskets["S0002L02"] = baskets["S0002L02"][:1]
				delete(baskets, "S0002L01")
				return baskets
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			c := loadTestCourse(t, dir, testutil.SpanishBaskets())

			var output bytes.Buffer
			result, err := Fix(context.Background(), c, tt.opts, &output)
			require.NoError(t, err)
			assert.Len(t, result.Removed, tt.wantRemoved)
			assert.Equal(t, tt.wantDropped, result.DroppedBaskets)
			for _, want := range tt.wantOutput {
				assert.Contains(t, output.String(), want)
			}

			saved, err := corpus.LoadBaskets(filepath.Join(dir, testutil.BasketsFileName))
			require.NoError(t, err)
			assert.Equal(t, tt.wantBaskets(), saved)
		})
	}
}

func TestFix_NothingToRemove(t *testing.T) {
	baskets := testutil.SpanishBaskets()
	baskets["S0002L02"] = baskets["S0002L02"][:1]
	c := loadTestCourse(t, t.TempDir(), baskets)

	var output bytes.Buffer
	result, err := Fix(context.Background(), c, FixOptions{}, &output)
	require.NoError(t, err)
	assert.False(t, result.Changed())
	assert.Contains(t, output.String(), "Nothing to remove.")
}

func TestGenerateBaskets(t *testing.T) {
	dir := t.TempDir()
	c := loadTestCourse(t, dir, testutil.SpanishBaskets())

	ctrl := gomock.NewController(t)
	client := mock_inference.NewMockClient(ctrl)
	gomock.InOrder(
		client.EXPECT().GeneratePhrases(gomock.Any(), inference.GeneratePhrasesRequest{
			LegoID: "S0001L01", Known: "I want", Target: "quiero",
			KnownLanguage: "en", TargetLanguage: "es",
			Vocabulary: []string{"quiero"},
			Count:      2,
		}).Return(inference.GeneratePhrasesResponse{Phrases: []inference.GeneratedPhrase{
			{Known: "I want", Target: "Quiero", WordCount: 7},
			{Known: "empty", Target: "  "},
		}}, nil),
		client.EXPECT().GeneratePhrases(gomock.Any(), inference.GeneratePhrasesRequest{
			LegoID: "S0003L03", Known: "now", Target: "ahora",
			KnownLanguage: "en", TargetLanguage: "es",
			Vocabulary: []string{"ahora", "comer", "español", "hablar", "quiero"},
			Count:      2,
		}).Return(inference.GeneratePhrasesResponse{Phrases: []inference.GeneratedPhrase{
			{Known: "I want to eat now", Target: "quiero comer ahora"},
		}}, nil),
	)

	generated, err := GenerateBaskets(context.Background(), c, client, GenerateOptions{Count: 2}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 2, generated)

	saved, err := corpus.LoadBaskets(filepath.Join(dir, testutil.BasketsFileName))
	require.NoError(t, err)
	assert.Equal(t, []course.Phrase{{Known: "I want", Target: "Quiero", WordCount: 1}}, saved["S0001L01"])
	assert.Equal(t, []course.Phrase{{Known: "I want to eat now", Target: "quiero comer ahora", WordCount: 3}}, saved["S0003L03"])
	assert.Equal(t, testutil.SpanishBaskets()["S0002L02"], saved["S0002L02"])
}

func TestGenerateBaskets_SingleLego(t *testing.T) {
	tests := []struct {
		name      string
		legoID    course.LegoID
		overwrite bool
		wantCall  bool
		wantErr   string
	}{
		{name: "lego without a basket", legoID: "S0003L03", wantCall: true},
		{name: "existing basket is kept", legoID: "S0002L02", wantErr: "already has a basket"},
		{name: "existing basket is overwritten", legoID: "S0002L02", overwrite: true, wantCall: true},
		{name: "duplicate lego", legoID: "S0002L01", wantErr: "is a duplicate of a LEGO in S0001"},
		{name: "unknown lego", legoID: "S0009L01", wantErr: "is not in the canonical sequence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := loadTestCourse(t, t.TempDir(), testutil.SpanishBaskets())
			client := mock_inference.NewMockClient(gomock.NewController(t))
			if tt.wantCall {
				client.EXPECT().GeneratePhrases(gomock.Any(), gomock.Any()).Return(inference.GeneratePhrasesResponse{
					Phrases: []inference.GeneratedPhrase{{Known: "now", Target: "ahora"}},
				}, nil)
			}

			generated, err := GenerateBaskets(context.Background(), c, client, GenerateOptions{
				LegoID: tt.legoID, Count: 1, Overwrite: tt.overwrite,
			}, io.Discard)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, generated)
			assert.Equal(t, []course.Phrase{{Known: "now", Target: "ahora", WordCount: 1}}, c.Baskets()[tt.legoID])
		})
	}
}

func TestGenerateBaskets_KeepsPartialProgress(t *testing.T) {
	dir := t.TempDir()
	c := loadTestCourse(t, dir, testutil.SpanishBaskets())

	client := mock_inference.NewMockClient(gomock.NewController(t))
	gomock.InOrder(
		client.EXPECT().GeneratePhrases(gomock.Any(), gomock.Any()).Return(inference.GeneratePhrasesResponse{
			Phrases: []inference.GeneratedPhrase{{Known: "I want", Target: "quiero"}},
		}, nil),
		client.EXPECT().GeneratePhrases(gomock.Any(), gomock.Any()).Return(inference.GeneratePhrasesResponse{}, errors.New("rate limited")),
	)

	generated, err := GenerateBaskets(context.Background(), c, client, GenerateOptions{Count: 1}, io.Discard)
	require.Error(t, err)
	assert.ErrorContains(t, err, "rate limited")
	assert.Equal(t, 1, generated)

	saved, err := corpus.LoadBaskets(filepath.Join(dir, testutil.BasketsFileName))
	require.NoError(t, err)
	assert.Contains(t, saved, course.LegoID("S0001L01"))
	assert.NotContains(t, saved, course.LegoID("S0003L03"))
}

// gappedCourse leaves S0001 out of the sequence because its ordinals skip L02.
// Without S0001, "quiero" looks untaught in the S0002L01 basket.
func gappedCourse(t *testing.T, dir string) *Course {
	t.Helper()
	seeds := []course.Seed{
		{
			ID: "S0001", Known: "I want to speak", Target: "quiero hablar",
			Legos: []course.Lego{testutil.Atomic("S0001L01", "I want", "quiero"), testutil.Atomic("S0001L03", "to speak", "hablar")},
		},
		{
			ID: "S0002", Known: "to eat", Target: "comer",
			Legos: []course.Lego{testutil.Atomic("S0002L01", "to eat", "comer")},
		},
	}
	baskets := course.Baskets{"S0002L01": {{Known: "I want to eat", Target: "quiero comer"}}}
	return loadCourseWithSeeds(t, dir, seeds, baskets)
}

func TestStructuralErrorsBlockWrites(t *testing.T) {
	const wantFinding = "[sequence] S0001: malformed lego ordering in seed S0001: ordinals [01 03]"

	readFile := func(t *testing.T, path string) string {
		t.Helper()
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		return string(content)
	}

	t.Run("fix", func(t *testing.T) {
		dir := t.TempDir()
		c := gappedCourse(t, dir)
		basketsPath := filepath.Join(dir, testutil.BasketsFileName)
		before := readFile(t, basketsPath)

		var output bytes.Buffer
		_, err := Fix(context.Background(), c, FixOptions{}, &output)
		assert.ErrorIs(t, err, ErrStructuralErrors)
		assert.Contains(t, output.String(), "Structural errors (1)")
		assert.Contains(t, output.String(), wantFinding)
		assert.NotContains(t, output.String(), "Updated")
		assert.Equal(t, before, readFile(t, basketsPath))
	})

	t.Run("fix dry run reports the errors", func(t *testing.T) {
		c := gappedCourse(t, t.TempDir())

		var output bytes.Buffer
		_, err := Fix(context.Background(), c, FixOptions{DryRun: true}, &output)
		require.NoError(t, err)
		assert.Contains(t, output.String(), wantFinding)
	})

	t.Run("fix with force", func(t *testing.T) {
		dir := t.TempDir()
		c := gappedCourse(t, dir)

		var output bytes.Buffer
		result, err := Fix(context.Background(), c, FixOptions{Force: true}, &output)
		require.NoError(t, err)
		assert.Len(t, result.Removed, 1)
		assert.Contains(t, output.String(), wantFinding)

		saved, err := corpus.LoadBaskets(filepath.Join(dir, testutil.BasketsFileName))
		require.NoError(t, err)
		assert.Empty(t, saved["S0002L01"])
	})

	t.Run("dedup write", func(t *testing.T) {
		dir := t.TempDir()
		c := gappedCourse(t, dir)
		seedsPath := filepath.Join(dir, testutil.SeedsFileName)
		before := readFile(t, seedsPath)

		var output bytes.Buffer
		_, err := Deduplicate(c, DedupOptions{Write: true}, &output)
		assert.ErrorIs(t, err, ErrStructuralErrors)
		assert.Contains(t, output.String(), wantFinding)
		assert.Equal(t, before, readFile(t, seedsPath))
	})

	t.Run("generate", func(t *testing.T) {
		c := gappedCourse(t, t.TempDir())
		client := mock_inference.NewMockClient(gomock.NewController(t))

		var output bytes.Buffer
		generated, err := GenerateBaskets(context.Background(), c, client, GenerateOptions{Count: 1}, &output)
		assert.ErrorIs(t, err, ErrStructuralErrors)
		assert.Equal(t, 0, generated)
		assert.Contains(t, output.String(), wantFinding)
	})
}
