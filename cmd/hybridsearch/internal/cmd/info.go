package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amancerp/hybridsearch/vectorindex"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <name>",
		Short: "Print dimension, count, embedder id, and distance kind for a saved index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args[0], cmd.OutOrStdout())
		},
	}
	return cmd
}

func runInfo(name string, out interface {
	Write(p []byte) (int, error)
}) error {
	idx, err := vectorindex.Load(name, "")
	if err != nil {
		return fmt.Errorf("loading index %q: %w", name, err)
	}

	fmt.Fprintf(out, "dimension:   %d\n", idx.Dimension())
	fmt.Fprintf(out, "count:       %d\n", idx.Count())
	fmt.Fprintf(out, "embedder_id: %s\n", idx.EmbedderID())
	fmt.Fprintf(out, "distance:    %s\n", idx.DistanceKind())
	return nil
}
