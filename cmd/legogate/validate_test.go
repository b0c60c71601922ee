package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/at-ishikawa/legogate/internal/cli"
	"github.com/at-ishikawa/legogate/internal/testutil"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFlag(t *testing.T) {
	tests := []struct {
		value   string
		want    FormatFlag
		wantErr bool
	}{
		{value: "text", want: FormatFlag(cli.ReportFormatText)},
		{value: "json", want: FormatFlag(cli.ReportFormatJSON)},
		{value: "yaml", want: FormatFlag(cli.ReportFormatYAML)},
		{value: "markdown", want: FormatFlag(cli.ReportFormatMarkdown)},
		{value: "html", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			var f FormatFlag
			err := f.Set(tt.value)
			if tt.wantErr {
				assert.ErrorContains(t, err, "valid values are text, json, yaml, markdown")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
			assert.Equal(t, tt.value, f.String())
		})
	}
}

func TestNewValidateCommand(t *testing.T) {
	cmd := newValidateCommand()

	assert.Equal(t, "validate", cmd.Use)
	assert.NotNil(t, cmd.RunE)
	assert.Equal(t, "text", cmd.Flags().Lookup("format").DefValue)
	assert.Equal(t, "false", cmd.Flags().Lookup("strict").DefValue)
	assert.Equal(t, "false", cmd.Flags().Lookup("pdf").DefValue)
	assert.Equal(t, "", cmd.Flags().Lookup("output").DefValue)
}

func TestNewValidateCommand_RunE(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantErr    string
		wantOutput []string
	}{
		{
			name:       "content findings pass without strict",
			args:       []string{},
			wantOutput: []string{"=== GATE (whitespace) ===", "GATE violations: 1"},
		},
		{
			name:    "strict fails on GATE violations",
			args:    []string{"--strict"},
			wantErr: "1 GATE violation(s)",
		},
		{
			name:       "json to stdout",
			args:       []string{"--format", "json"},
			wantOutput: []string{`"policy": "whitespace"`},
		},
		{
			name:    "pdf requires markdown",
			args:    []string{"--pdf"},
			wantErr: "markdown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCourse(t, testutil.SpanishBaskets())

			cmd := newValidateCommand()
			var output bytes.Buffer
			cmd.SetOut(&output)
			cmd.SetArgs(tt.args)
			err := cmd.Execute()
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.wantOutput {
				assert.Contains(t, output.String(), want)
			}
		})
	}
}

func TestNewValidateCommand_OutputFile(t *testing.T) {
	tmpDir := setupCourse(t, testutil.SpanishBaskets())
	outputPath := filepath.Join(tmpDir, "report.json")

	cmd := newValidateCommand()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetArgs([]string{"--format", "json", "--output", outputPath})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, output.String(), "Report written to "+outputPath)

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal(content, &report))
	assert.Equal(t, float64(7), report["legos"])
}

func TestNewValidateCommand_StructuralError(t *testing.T) {
	tmpDir := t.TempDir()
	seeds := testutil.SpanishSeeds()
	seeds[1].Legos[1].ID = "S0002L05"
	testutil.WriteCourse(t, tmpDir, seeds, testutil.SpanishBaskets())
	setConfigFile(t, testutil.SetupTestConfig(t, tmpDir))

	cmd := newValidateCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	assert.ErrorContains(t, err, "validation failed with 1 structural error(s)")
}

func TestNewGateCommand(t *testing.T) {
	setupCourse(t, testutil.SpanishBaskets())

	cmd := newGateCommand()
	assert.Equal(t, "gate", cmd.Use)

	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, output.String(), "S0002L02")
	assert.Contains(t, output.String(), "Baskets on duplicate LEGOs (1): S0002L01")

	strict := newGateCommand()
	strict.SetOut(&bytes.Buffer{})
	strict.SetArgs([]string{"--strict"})
	assert.ErrorContains(t, strict.Execute(), "1 GATE violation(s)")
}

func TestNewLutCommand(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantErr    string
		wantOutput string
	}{
		{name: "all seeds", args: []string{}, wantOutput: "=== LUT (all seeds) ==="},
		{name: "through a seed", args: []string{"--through", "S0002"}, wantOutput: "=== LUT (through S0002) ==="},
		{name: "first seeds", args: []string{"--seeds", "1"}, wantOutput: "=== LUT (through S0001) ==="},
		{name: "both bounds", args: []string{"--through", "S0002", "--seeds", "1"}, wantErr: "cannot be used together"},
		{name: "malformed bound", args: []string{"--through", "S2"}, wantErr: "lut.Validate()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupCourse(t, nil)

			cmd := newLutCommand()
			var output bytes.Buffer
			cmd.SetOut(&output)
			cmd.SetArgs(tt.args)
			err := cmd.Execute()
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, output.String(), tt.wantOutput)
			assert.Contains(t, output.String(), "collisions: 0")
		})
	}
}

func TestStructuralErrorsFailGateAndLut(t *testing.T) {
	tests := []struct {
		name       string
		newCommand func() *cobra.Command
		wantOutput string
	}{
		{name: "gate", newCommand: newGateCommand, wantOutput: "=== GATE (whitespace) ==="},
		{name: "lut", newCommand: newLutCommand, wantOutput: "=== LUT (all seeds) ==="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			color.NoColor = true
			tmpDir := t.TempDir()
			seeds := testutil.SpanishSeeds()
			seeds[0].Legos[1].ID = "S0001L03"
			testutil.WriteCourse(t, tmpDir, seeds, testutil.SpanishBaskets())
			setConfigFile(t, testutil.SetupTestConfig(t, tmpDir))

			cmd := tt.newCommand()
			var output bytes.Buffer
			cmd.SetOut(&output)
			cmd.SetArgs([]string{})
			err := cmd.Execute()
			assert.ErrorContains(t, err, "1 structural error(s)")
			assert.Contains(t, output.String(), "[sequence] S0001: malformed lego ordering in seed S0001")
			assert.Contains(t, output.String(), tt.wantOutput)
		})
	}
}
