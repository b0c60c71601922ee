package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/at-ishikawa/legogate/internal/course"
	"github.com/at-ishikawa/legogate/internal/testutil"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func setConfigFile(t *testing.T, path string) {
	t.Helper()
	oldConfigFile := configFile
	configFile = path
	t.Cleanup(func() {
		configFile = oldConfigFile
	})
}

// setupCourse writes the Spanish fixture course with a config pointing at it
func setupCourse(t *testing.T, baskets course.Baskets) string {
	t.Helper()
	color.NoColor = true
	tmpDir := t.TempDir()
	testutil.WriteCourse(t, tmpDir, testutil.SpanishSeeds(), baskets)
	setConfigFile(t, testutil.SetupTestConfig(t, tmpDir))
	return tmpDir
}

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		debugMode bool
		wantLevel slog.Level
	}{
		{
			name:      "debug mode enabled",
			debugMode: true,
			wantLevel: slog.LevelDebug,
		},
		{
			name:      "debug mode disabled",
			debugMode: false,
			wantLevel: slog.LevelInfo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupLogger(tt.debugMode)
			logger := slog.Default()
			assert.NotNil(t, logger)
			assert.Equal(t, tt.wantLevel <= slog.LevelDebug, logger.Enabled(nil, slog.LevelDebug))
		})
	}
}

func TestNewRootCommand(t *testing.T) {
	cmd := newRootCommand()

	assert.Equal(t, "legogate", cmd.Use)
	assert.True(t, cmd.SilenceUsage)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.Equal(t, "false", cmd.PersistentFlags().Lookup("debug").DefValue)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"sequence", "dedup", "gate", "lut", "validate", "fix", "generate"}, names)
}

func TestNewSequenceCommand(t *testing.T) {
	setupCourse(t, nil)

	cmd := newSequenceCommand()
	assert.Equal(t, "sequence", cmd.Use)

	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetArgs([]string{})
	assert.NoError(t, cmd.Execute())
	assert.Contains(t, output.String(), "S0003L02")
	assert.Contains(t, output.String(), "7 LEGO(s) in 3 seed(s)")
}

func TestNewSequenceCommand_InvalidConfig(t *testing.T) {
	setConfigFile(t, testutil.SetupBrokenConfigFile(t))

	cmd := newSequenceCommand()
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "configuration")
}

func TestNewDedupCommand(t *testing.T) {
	setupCourse(t, nil)

	cmd := newDedupCommand()
	assert.Equal(t, "dedup", cmd.Use)
	writeFlag := cmd.Flags().Lookup("write")
	assert.NotNil(t, writeFlag)
	assert.Equal(t, "false", writeFlag.DefValue)
	assert.Equal(t, "false", cmd.Flags().Lookup("force").DefValue)

	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetArgs([]string{})
	assert.NoError(t, cmd.Execute())
	assert.Contains(t, output.String(), "LEGOs: 7, new: 5, duplicates: 2")
	assert.NotContains(t, output.String(), "Updated")
}
