package main

import (
	"fmt"

	"github.com/at-ishikawa/legogate/internal/cli"
	"github.com/spf13/cobra"
)

func newFixCommand() *cobra.Command {
	var opts cli.FixOptions

	command := &cobra.Command{
		Use:   "fix",
		Short: "Remove basket phrases that violate GATE",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, c, err := loadCourse()
			if err != nil {
				return err
			}
			if opts.DryRun {
				fmt.Fprintln(cmd.OutOrStdout(), "Dry run, the baskets file is not changed.")
			}
			if _, err := cli.Fix(cmd.Context(), c, opts, cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("cli.Fix() > %w", err)
			}
			return nil
		},
	}

	flags := command.Flags()
	flags.BoolVar(&opts.DryRun, "dry-run", false, "Show what would be removed without writing")
	flags.BoolVar(&opts.DropStray, "drop-stray", false, "Also remove baskets of duplicate LEGOs")
	flags.BoolVar(&opts.DropUnknown, "drop-unknown", false, "Also remove baskets of LEGOs missing from the sequence")
	flags.BoolVar(&opts.Force, "force", false, "Write even when seeds are left out of the sequence by structural errors")

	return command
}
