package cli

import (
	"context"

	"github.com/spf13/cobra"
)

type encodeOutput struct {
	EmbeddingShape []int `json:"embedding_shape"`
}

func (a *app) encodeCommand() *cobra.Command {
	var text []string

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode sentence(s) into embeddings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, client Embedder) error {
				emb, err := client.Encode(ctx, text)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), encodeOutput{EmbeddingShape: emb.Shape()})
			})
		},
	}

	cmd.Flags().StringArrayVar(&text, "text", nil, "Sentence to encode (repeatable)")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}
