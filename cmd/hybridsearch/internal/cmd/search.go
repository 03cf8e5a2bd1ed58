package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/amancerp/hybridsearch/cmd/hybridsearch/internal/cliout"
	"github.com/amancerp/hybridsearch/config"
	"github.com/amancerp/hybridsearch/embed"
	"github.com/amancerp/hybridsearch/internal/textcache"
	"github.com/amancerp/hybridsearch/lexical"
	"github.com/amancerp/hybridsearch/orchestrator"
	"github.com/amancerp/hybridsearch/vectorindex"
)

func newSearchCmd() *cobra.Command {
	var k int

	cmd := &cobra.Command{
		Use:   "search <name> <query>",
		Short: "Search a saved index and print its INITIAL results (no quality embedder is configured, so no REFINED phase is produced)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd.Context(), args[0], args[1], k, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&k, "k", 10, "number of results to return")
	return cmd
}

func runSearch(ctx context.Context, name, queryText string, k int, out interface {
	Write(p []byte) (int, error)
}) error {
	idx, err := vectorindex.Load(name, "")
	if err != nil {
		return fmt.Errorf("loading index %q: %w", name, err)
	}

	fast := embed.NewHashEmbedder(idx.Dimension())

	cache, err := textcache.Open(name + ".textcache.db")
	if err != nil {
		return fmt.Errorf("opening text cache: %w", err)
	}
	defer cache.Close()

	entries, err := cache.All(ctx)
	if err != nil {
		return fmt.Errorf("listing cached documents: %w", err)
	}
	docs := make([]lexical.Document, len(entries))
	for i, e := range entries {
		docs[i] = lexical.Document{DocID: e.DocID, Text: e.Text}
	}
	lexBackend, err := lexical.NewBleveBackend(docs)
	if err != nil {
		return fmt.Errorf("rebuilding lexical backend: %w", err)
	}
	defer lexBackend.Close()

	cfg, warnings, err := config.Load(".")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	for _, w := range warnings {
		slog.Warn("config_out_of_range", slog.String("detail", w.String()))
		fmt.Fprintln(out, w.String())
	}

	slog.Info("search_start", slog.String("name", name), slog.Int("k", k), slog.Int("documents", len(entries)))

	o := orchestrator.New(idx, fast,
		orchestrator.WithConfig(cfg),
		orchestrator.WithTextResolver(cache.Get),
		orchestrator.WithLexicalBackend(lexBackend),
	)

	seq, err := o.Search(ctx, queryText, k)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	printer := cliout.NewPrinter(out)
	for {
		result, ok := seq.Next(ctx)
		if !ok {
			break
		}
		printer.PhaseHeader(result.Phase.String())
		for i, hit := range result.Hits {
			printer.Hit(i+1, hit.DocID, hit.RRFScore)
		}
	}

	return nil
}
