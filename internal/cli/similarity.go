package cli

import (
	"context"

	"github.com/spf13/cobra"
)

type similarityOutput struct {
	Scores         []float64 `json:"scores"`
	EmbeddingShape []int     `json:"embedding_shape"`
}

func (a *app) similarityCommand() *cobra.Command {
	var source, compare []string

	cmd := &cobra.Command{
		Use:   "similarity",
		Short: "Compute sentence similarity",
		Example: `  sentence-embed similarity --source "吃完海鲜可以喝牛奶吗?" \
    --compare "不可以，早晨喝牛奶不科学" --compare "吃了海鲜后是不能再喝牛奶的"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, client Embedder) error {
				res, err := client.Similarity(ctx, source, compare)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), similarityOutput{
					Scores:         res.Scores,
					EmbeddingShape: res.TextEmbedding.Shape(),
				})
			})
		},
	}

	cmd.Flags().StringArrayVar(&source, "source", nil, "Source sentence (repeatable)")
	cmd.Flags().StringArrayVar(&compare, "compare", nil, "Compared sentence (repeatable)")
	_ = cmd.MarkFlagRequired("source")
	_ = cmd.MarkFlagRequired("compare")
	return cmd
}
