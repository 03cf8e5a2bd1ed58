// Package orchestrator implements the two-tier staged search producer: it
// emits an INITIAL SearchResult computed from a fast embedder and lexical
// backend fused by RRF, then — unless suppressed — a REFINED SearchResult
// that re-scores the top candidates with a quality embedder and blends the
// two signals.
package orchestrator

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amancerp/hybridsearch/canon"
	"github.com/amancerp/hybridsearch/embed"
	"github.com/amancerp/hybridsearch/fusion"
	"github.com/amancerp/hybridsearch/internal/errkind"
	"github.com/amancerp/hybridsearch/lexical"
	"github.com/amancerp/hybridsearch/query"
	"github.com/amancerp/hybridsearch/vectorindex"
)

// Phase names a SearchResult's position in the two-tier sequence.
type Phase int

const (
	Initial Phase = iota
	Refined
)

func (p Phase) String() string {
	if p == Refined {
		return "REFINED"
	}
	return "INITIAL"
}

// RankedHit is one scored document in a SearchResult.
type RankedHit = fusion.RankedHit

// SearchResult is one emission of the orchestrator's sequence.
type SearchResult struct {
	Phase Phase
	Hits  []RankedHit
}

// Config is the two-tier configuration controlling RRF and blend behavior.
type Config struct {
	QualityWeight      float64
	RRFK               float64
	CandidateMultiplier int
	FastOnly           bool
	QualityTimeout     time.Duration
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		QualityWeight:       0.7,
		RRFK:                60.0,
		CandidateMultiplier: 3,
		FastOnly:            false,
		QualityTimeout:      500 * time.Millisecond,
	}
}

// Reranker is a reserved extension point; an implementer must not
// introduce a third phase unless a caller supplies one.
type Reranker interface {
	ScorePairs(ctx context.Context, query string, documents []string) ([]float64, error)
}

// TextResolver supplies the canonical text for a doc_id, used by the
// REFINED phase when a candidate's stored vector was not produced by the
// quality embedder.
type TextResolver func(ctx context.Context, docID string) (string, error)

// Orchestrator drives the two-tier search for one vector index.
type Orchestrator struct {
	vectorIdx      *vectorindex.Index
	fastEmbedder   embed.Embedder
	qualityEmbedder embed.Embedder
	lexicalBackend lexical.Backend
	resolveText    TextResolver
	reranker       Reranker
	config         Config
}

// Option configures an Orchestrator at construction.
type Option func(*Orchestrator)

// WithQualityEmbedder enables the REFINED phase.
func WithQualityEmbedder(e embed.Embedder) Option {
	return func(o *Orchestrator) { o.qualityEmbedder = e }
}

// WithLexicalBackend enables the lexical side of fusion.
func WithLexicalBackend(b lexical.Backend) Option {
	return func(o *Orchestrator) { o.lexicalBackend = b }
}

// WithTextResolver registers the callback used to fetch a candidate's
// canonical text when its stored vector cannot be reused for REFINED.
func WithTextResolver(r TextResolver) Option {
	return func(o *Orchestrator) { o.resolveText = r }
}

// WithReranker registers the reserved reranker extension point. Supplying
// one does not introduce a third phase; it is available for a caller's own
// post-processing of REFINED hits.
func WithReranker(r Reranker) Option {
	return func(o *Orchestrator) { o.reranker = r }
}

// WithConfig overrides the default two-tier configuration.
func WithConfig(cfg Config) Option {
	return func(o *Orchestrator) { o.config = cfg }
}

// New constructs an Orchestrator over a vector index and fast embedder.
func New(idx *vectorindex.Index, fastEmbedder embed.Embedder, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		vectorIdx:    idx,
		fastEmbedder: fastEmbedder,
		config:       DefaultConfig(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Sequence is the pull-based, at-most-two-emission producer returned by
// Search. Next delivers INITIAL on its first call; a second call blocks
// (respecting ctx and the quality deadline) for REFINED, returning ok=false
// if REFINED is suppressed, times out, or the sequence is cancelled.
type Sequence struct {
	initial    SearchResult
	refinedCh  <-chan refinedOutcome
	delivered  int
}

type refinedOutcome struct {
	result SearchResult
	ok     bool
}

// Next returns the next SearchResult in the sequence.
func (s *Sequence) Next(ctx context.Context) (SearchResult, bool) {
	switch s.delivered {
	case 0:
		s.delivered = 1
		return s.initial, true
	case 1:
		s.delivered = 2
		if s.refinedCh == nil {
			return SearchResult{}, false
		}
		select {
		case outcome := <-s.refinedCh:
			return outcome.result, outcome.ok
		case <-ctx.Done():
			return SearchResult{}, false
		}
	default:
		return SearchResult{}, false
	}
}

// Search canonicalizes and classifies the query, runs the parallel fast
// path (fast-embed + vector top-k, lexical top-k) and fuses by RRF to
// produce INITIAL; it then starts the REFINED computation, if applicable,
// on a background goroutine, returning a Sequence the caller pulls from.
func (o *Orchestrator) Search(ctx context.Context, rawQuery string, k int) (*Sequence, error) {
	canonQuery := canon.Canonicalize(rawQuery)
	class := query.Classify(canonQuery)

	if class == query.Empty {
		return &Sequence{initial: SearchResult{Phase: Initial, Hits: []RankedHit{}}}, nil
	}

	weights := query.WeightsFor(class)
	candidateK := k * o.config.CandidateMultiplier

	var lexicalHits []lexical.Hit
	var vectorHits []vectorindex.Hit

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vec, err := o.fastEmbedder.Embed(gctx, canonQuery)
		if err != nil {
			return errkind.Wrap(errkind.ErrEmbedder, err)
		}
		hits, err := o.vectorIdx.Search(vec, candidateK)
		if err != nil {
			return err
		}
		vectorHits = hits
		return nil
	})
	if o.lexicalBackend != nil {
		g.Go(func() error {
			hits, err := o.lexicalBackend.Search(gctx, canonQuery, candidateK)
			if err != nil {
				return err
			}
			lexicalHits = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lexCandidates := toLexicalCandidates(lexicalHits)
	vecCandidates := toVectorCandidates(vectorHits)

	fused := fusion.New(o.config.RRFK).Fuse(lexCandidates, vecCandidates, fusion.Weights(weights))
	if len(fused) > k {
		fused = fused[:k]
	}

	result := &Sequence{initial: SearchResult{Phase: Initial, Hits: fused}}

	if o.config.FastOnly || o.qualityEmbedder == nil {
		return result, nil
	}

	ch := make(chan refinedOutcome, 1)
	result.refinedCh = ch
	go o.computeRefined(ctx, canonQuery, fused, ch)

	return result, nil
}

func (o *Orchestrator) computeRefined(ctx context.Context, canonQuery string, initial []RankedHit, out chan<- refinedOutcome) {
	deadlineCtx, cancel := context.WithTimeout(ctx, o.config.QualityTimeout)
	defer cancel()

	result, ok := o.refine(deadlineCtx, canonQuery, initial)
	select {
	case out <- refinedOutcome{result: result, ok: ok}:
	case <-ctx.Done():
	}
}

func (o *Orchestrator) refine(ctx context.Context, canonQuery string, initial []RankedHit) (SearchResult, bool) {
	if ctx.Err() != nil {
		return SearchResult{}, false
	}

	queryVec, err := o.qualityEmbedder.Embed(ctx, canonQuery)
	if err != nil {
		return SearchResult{}, false
	}

	toReEmbed := make([]string, 0, len(initial))
	reEmbedIdx := make([]int, 0, len(initial))

	inputs := make([]fusion.BlendInput, len(initial))
	quality := make([]embed.Vector, len(initial))
	haveQuality := make([]bool, len(initial))

	for i, hit := range initial {
		inputs[i] = fusion.BlendInput{
			DocID:        hit.DocID,
			FastScore:    hit.RRFScore,
			LexicalScore: hit.LexicalScore,
			InBoth:       hit.InBoth,
		}
		if stored, ok := o.vectorIdx.VectorFor(hit.DocID); ok && o.vectorIdx.EmbedderID() == o.qualityEmbedder.ModelID() {
			quality[i] = toVector(stored)
			haveQuality[i] = true
			continue
		}
		toReEmbed = append(toReEmbed, hit.DocID)
		reEmbedIdx = append(reEmbedIdx, i)
	}

	if len(toReEmbed) > 0 {
		if o.resolveText == nil {
			return SearchResult{}, false
		}
		texts := make([]string, len(toReEmbed))
		for i, docID := range toReEmbed {
			text, err := o.resolveText(ctx, docID)
			if err != nil {
				return SearchResult{}, false
			}
			texts[i] = canon.Canonicalize(text)
		}
		if ctx.Err() != nil {
			return SearchResult{}, false
		}
		vecs, err := o.qualityEmbedder.EmbedBatch(ctx, texts)
		if err != nil {
			return SearchResult{}, false
		}
		for j, idx := range reEmbedIdx {
			quality[idx] = vecs[j]
			haveQuality[idx] = true
		}
	}

	if ctx.Err() != nil {
		return SearchResult{}, false
	}

	for i := range inputs {
		if !haveQuality[i] {
			return SearchResult{}, false
		}
		inputs[i].QualityScore = cosineOrDot(queryVec, quality[i], o.vectorIdx.DistanceKind())
	}

	blended := fusion.Blend(inputs, o.config.QualityWeight)
	return SearchResult{Phase: Refined, Hits: blended}, true
}

func toVector(v []float32) embed.Vector {
	out := make(embed.Vector, len(v))
	copy(out, v)
	return out
}

func cosineOrDot(a, b embed.Vector, distance vectorindex.Distance) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	if distance == vectorindex.Dot {
		return dot
	}
	var normA, normB float64
	for i := range a {
		normA += float64(a[i]) * float64(a[i])
	}
	for i := range b {
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func toLexicalCandidates(hits []lexical.Hit) []fusion.Candidate {
	out := make([]fusion.Candidate, len(hits))
	for i, h := range hits {
		out[i] = fusion.Candidate{DocID: h.DocID, Score: h.Score}
	}
	return out
}

func toVectorCandidates(hits []vectorindex.Hit) []fusion.Candidate {
	out := make([]fusion.Candidate, len(hits))
	for i, h := range hits {
		out[i] = fusion.Candidate{DocID: h.DocID, Score: h.Score}
	}
	return out
}
