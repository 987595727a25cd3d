package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/sentence-embed/v1/sentence"
)

type batchOutput struct {
	Results []sentence.BatchResult `json:"results"`
}

func (a *app) batchCommand() *cobra.Command {
	var source, compare []string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Score every source sentence against the compared sentences",
		Long:  `Score each source sentence on its own against all compared sentences. The pipeline runs once per source sentence.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, client Embedder) error {
				results, err := client.BatchSimilarity(ctx, source, compare)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), batchOutput{Results: results})
			})
		},
	}

	cmd.Flags().StringArrayVar(&source, "source", nil, "Source sentence (repeatable)")
	cmd.Flags().StringArrayVar(&compare, "compare", nil, "Compared sentence (repeatable)")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("compare")
	return cmd
}
