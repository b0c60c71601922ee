package main

import (
	"fmt"

	"github.com/at-ishikawa/legogate/internal/cli"
	"github.com/at-ishikawa/legogate/internal/course"
	"github.com/at-ishikawa/legogate/internal/inference"
	"github.com/at-ishikawa/legogate/internal/inference/openai"
	"github.com/spf13/cobra"
)

func newGenerateCommand() *cobra.Command {
	var legoID string
	var count int
	var overwrite bool
	var force bool

	command := &cobra.Command{
		Use:   "generate",
		Short: "Generate basket phrases for new LEGOs with OpenAI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, c, err := loadCourse()
			if err != nil {
				return err
			}
			if cfg.OpenAI.APIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY environment variable is required")
			}
			if count == 0 {
				count = cfg.OpenAI.PhrasesPerLego
			}

			client := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, inference.DefaultMaxRetryAttempts)
			defer func() {
				_ = client.Close()
			}()

			generated, err := cli.GenerateBaskets(cmd.Context(), c, client, cli.GenerateOptions{
				LegoID:    course.LegoID(legoID),
				Count:     count,
				Overwrite: overwrite,
				Force:     force,
			}, cmd.OutOrStdout())
			fmt.Fprintf(cmd.OutOrStdout(), "Generated baskets for %d LEGO(s)\n", generated)
			if err != nil {
				return fmt.Errorf("cli.GenerateBaskets() > %w", err)
			}
			return nil
		},
	}

	flags := command.Flags()
	flags.StringVar(&legoID, "lego", "", "Only generate the basket of this LEGO ID")
	flags.IntVar(&count, "count", 0, "Phrases per LEGO. Defaults to openai.phrases_per_lego")
	flags.BoolVar(&overwrite, "overwrite", false, "Replace existing baskets")
	flags.BoolVar(&force, "force", false, "Generate even when seeds are left out of the sequence by structural errors")

	return command
}
