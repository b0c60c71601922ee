package main

import (
	"fmt"
	"strings"

	"github.com/at-ishikawa/legogate/internal/cli"
	"github.com/at-ishikawa/legogate/internal/course"
	"github.com/at-ishikawa/legogate/internal/gate"
	"github.com/at-ishikawa/legogate/internal/lut"
	"github.com/at-ishikawa/legogate/internal/pipeline"
	"github.com/at-ishikawa/legogate/internal/sequence"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type FormatFlag cli.ReportFormat

// Set implements pflag.Value.
func (f *FormatFlag) Set(v string) error {
	for _, format := range cli.ReportFormats {
		if v == string(format) {
			*f = FormatFlag(format)
			return nil
		}
	}
	names := make([]string, len(cli.ReportFormats))
	for i, format := range cli.ReportFormats {
		names[i] = string(format)
	}
	return fmt.Errorf("invalid value %q, valid values are %s", v, strings.Join(names, ", "))
}

// String implements pflag.Value.
func (f *FormatFlag) String() string {
	if f == nil {
		return ""
	}
	return string(*f)
}

// Type implements pflag.Value.
func (f *FormatFlag) Type() string {
	return "FormatFlag"
}

var (
	_ pflag.Value = (*FormatFlag)(nil)
)

func newValidateCommand() *cobra.Command {
	format := FormatFlag(cli.ReportFormatText)
	var outputPath string
	var generatePDF bool
	var strict bool

	command := &cobra.Command{
		Use:   "validate",
		Short: "Run every check over the course and report the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, c, err := loadCourse()
			if err != nil {
				return err
			}

			report, err := c.Validate(cmd.Context())
			if err != nil {
				return fmt.Errorf("course.Validate() > %w", err)
			}

			if outputPath == "" && !generatePDF {
				if err := cli.WriteReport(cmd.OutOrStdout(), report, cli.ReportFormat(format), cfg.Outputs.ReportTemplate); err != nil {
					return fmt.Errorf("cli.WriteReport() > %w", err)
				}
			} else {
				path, err := c.SaveReport(report, cli.ReportFormat(format), outputPath, generatePDF)
				if err != nil {
					return fmt.Errorf("course.SaveReport() > %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
			}

			return reportExitError(report, strict || cfg.Validation.Strict)
		},
	}

	flags := command.Flags()
	flags.Var(&format, "format", "Report format. Options: text, json, yaml, markdown")
	flags.StringVarP(&outputPath, "output", "o", "", "Write the report to a file instead of stdout")
	flags.BoolVar(&generatePDF, "pdf", false, "Also convert the markdown report to PDF")
	flags.BoolVar(&strict, "strict", false, "Fail on warnings, GATE violations and LUT collisions too")

	return command
}

func reportExitError(report *pipeline.Report, strict bool) error {
	if report.HasErrors() {
		return fmt.Errorf("validation failed with %d structural error(s)", len(report.Errors))
	}
	if strict && report.HasFindings() {
		return fmt.Errorf("validation failed: %d warning(s), %d GATE violation(s), %d LUT collision(s)",
			len(report.Warnings), report.Gate.Violations, len(report.Lut.Collisions))
	}
	return nil
}

// structuralExitError fails a command whose report covers only part of the course.
func structuralExitError(structural *sequence.BuildError) error {
	if structural == nil {
		return nil
	}
	return fmt.Errorf("%d structural error(s), the report leaves out the affected seeds", len(structural.Errors))
}

func newGateCommand() *cobra.Command {
	var strict bool

	command := &cobra.Command{
		Use:   "gate",
		Short: "Check that basket phrases only use vocabulary taught so far",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, c, err := loadCourse()
			if err != nil {
				return err
			}
			result, structural, err := c.Annotate(cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("course.Annotate() > %w", err)
			}
			report, err := gate.ValidateConcurrently(cmd.Context(), result.Legos, c.Baskets(), c.Policy(), cfg.Validation.Workers)
			if err != nil {
				return fmt.Errorf("gate.ValidateConcurrently() > %w", err)
			}

			cli.NewReportPrinter(cmd.OutOrStdout()).PrintGate(report)
			if err := structuralExitError(structural); err != nil {
				return err
			}
			if (strict || cfg.Validation.Strict) && report.HasViolations() {
				return fmt.Errorf("%d GATE violation(s)", report.Violations)
			}
			return nil
		},
	}

	command.Flags().BoolVar(&strict, "strict", false, "Fail when any phrase violates GATE")

	return command
}

func newLutCommand() *cobra.Command {
	var through string
	var seeds int
	var strict bool

	command := &cobra.Command{
		Use:   "lut",
		Short: "Find known phrases taught with more than one target",
		RunE: func(cmd *cobra.Command, args []string) error {
			if through != "" && seeds > 0 {
				return fmt.Errorf("--through and --seeds cannot be used together")
			}
			cfg, c, err := loadCourse()
			if err != nil {
				return err
			}
			result, structural, err := c.Annotate(cmd.OutOrStdout())
			if err != nil {
				return fmt.Errorf("course.Annotate() > %w", err)
			}

			bound := course.SeedID(cfg.Validation.LutBound)
			if through != "" {
				bound = course.SeedID(through)
			}
			if seeds > 0 {
				if bound, err = lut.SeedBound(result.Legos, seeds); err != nil {
					return fmt.Errorf("lut.SeedBound() > %w", err)
				}
			}

			report, err := lut.Validate(result.Legos, bound)
			if err != nil {
				return fmt.Errorf("lut.Validate() > %w", err)
			}
			cli.NewReportPrinter(cmd.OutOrStdout()).PrintLut(report)
			if err := structuralExitError(structural); err != nil {
				return err
			}
			if (strict || cfg.Validation.Strict) && report.HasCollisions() {
				return fmt.Errorf("%d LUT collision(s)", len(report.Collisions))
			}
			return nil
		},
	}

	flags := command.Flags()
	flags.StringVar(&through, "through", "", "Only scan seeds up to and including this seed ID")
	flags.IntVar(&seeds, "seeds", 0, "Only scan the first N seeds")
	flags.BoolVar(&strict, "strict", false, "Fail when any collision is found")

	return command
}
