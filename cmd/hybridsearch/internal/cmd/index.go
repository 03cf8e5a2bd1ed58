package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/amancerp/hybridsearch/canon"
	"github.com/amancerp/hybridsearch/embed"
	"github.com/amancerp/hybridsearch/internal/textcache"
	"github.com/amancerp/hybridsearch/vectorindex"
)

func newIndexCmd() *cobra.Command {
	var dimension int

	cmd := &cobra.Command{
		Use:   "index <name>",
		Short: "Build a vector index and a text cache from documents read on standard input, one per line (no lexical index is saved; search rebuilds it from the text cache)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd.Context(), args[0], dimension, cmd.InOrStdin())
		},
	}

	cmd.Flags().IntVar(&dimension, "dimension", 256, "hash embedder output dimension")
	return cmd
}

func runIndex(ctx context.Context, name string, dimension int, stdin io.Reader) error {
	slog.Info("index_start", slog.String("name", name), slog.Int("dimension", dimension))
	embedder := embed.NewHashEmbedder(dimension)

	idx, err := vectorindex.New(dimension, embedder.ModelID(), vectorindex.Cosine)
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	cache, err := textcache.Open(name + ".textcache.db")
	if err != nil {
		return fmt.Errorf("opening text cache: %w", err)
	}
	defer cache.Close()

	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	row := 0
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		docID := strconv.Itoa(row)
		row++

		canonText := canon.Canonicalize(line)

		vec, err := embedder.Embed(ctx, canonText)
		if err != nil {
			return fmt.Errorf("embedding document %s: %w", docID, err)
		}
		if err := idx.Add(docID, []float32(vec)); err != nil {
			return fmt.Errorf("adding document %s: %w", docID, err)
		}
		if err := cache.Put(ctx, docID, canonText); err != nil {
			return fmt.Errorf("caching text for %s: %w", docID, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading standard input: %w", err)
	}

	if err := idx.Save(name); err != nil {
		return fmt.Errorf("saving index: %w", err)
	}

	slog.Info("index_complete", slog.String("name", name), slog.Int("documents", row))
	fmt.Fprintf(os.Stdout, "indexed %d documents under %q\n", row, name)
	return nil
}
