package main

import (
	"errors"
	"fmt"

	"github.com/at-ishikawa/legogate/internal/cli"
	"github.com/at-ishikawa/legogate/internal/pipeline"
	"github.com/at-ishikawa/legogate/internal/sequence"
	"github.com/spf13/cobra"
)

func newSequenceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sequence",
		Short: "Print the canonical LEGO sequence",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := loadCourse()
			if err != nil {
				return err
			}

			printer := cli.NewReportPrinter(cmd.OutOrStdout())
			refs, err := sequence.Build(c.Seeds())
			var buildErr *sequence.BuildError
			if err != nil && (!errors.As(err, &buildErr) || buildErr.Fatal()) {
				return fmt.Errorf("sequence.Build() > %w", err)
			}
			printer.PrintSequence(refs)
			if buildErr != nil {
				printer.PrintFindings(pipeline.StructuralFindings(buildErr), nil)
				return fmt.Errorf("%d seed(s) were left out of the sequence", len(buildErr.Errors))
			}
			return nil
		},
	}
}

func newDedupCommand() *cobra.Command {
	var opts cli.DedupOptions

	command := &cobra.Command{
		Use:   "dedup",
		Short: "Recompute which LEGOs are new and which repeat an earlier one",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := loadCourse()
			if err != nil {
				return err
			}
			if _, err := cli.Deduplicate(c, opts, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("cli.Deduplicate() > %w", err)
			}
			return nil
		},
	}

	flags := command.Flags()
	flags.BoolVar(&opts.Write, "write", false, "Write the new/ref annotations and cumulative counts back to the seed files")
	flags.BoolVar(&opts.Force, "force", false, "Write even when seeds are left out of the sequence by structural errors")

	return command
}
