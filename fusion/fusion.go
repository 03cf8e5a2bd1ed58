// Package fusion implements Reciprocal Rank Fusion over a lexical and a
// vector ranked list, and the two-tier score blend used by the REFINED
// phase.
package fusion

import "sort"

// DefaultRRFConstant is the standard RRF smoothing parameter.
const DefaultRRFConstant = 60.0

// Weights selects how much each side contributes to the RRF sum.
type Weights struct {
	Lexical  float64
	Semantic float64
}

// Candidate is one source-list entry: a doc_id with its native score, in
// rank order.
type Candidate struct {
	DocID string
	Score float64
}

// RankedHit is a document after fusion: its combined score plus the
// provenance needed by the tie-break cascade.
type RankedHit struct {
	DocID        string
	RRFScore     float64
	LexicalScore float64
	VectorScore  float64
	InBoth       bool
}

// RRF combines a lexical and a vector ranked list (both already truncated
// to the candidate window by the caller) into a single deterministic
// ordering.
type RRF struct {
	K float64
}

// New constructs an RRF fuser with the given smoothing constant. A
// non-positive k falls back to DefaultRRFConstant.
func New(k float64) *RRF {
	if k <= 0 {
		k = DefaultRRFConstant
	}
	return &RRF{K: k}
}

// Fuse combines lexical and vector candidate lists using weights selected
// by the query class. Returns candidates sorted by the tie-break cascade:
// RRF score desc, in_both beats in_one, lexical raw score desc, doc_id asc.
func (f *RRF) Fuse(lexical, vector []Candidate, weights Weights) []RankedHit {
	scores := make(map[string]*RankedHit, len(lexical)+len(vector))

	getOrCreate := func(id string) *RankedHit {
		if r, ok := scores[id]; ok {
			return r
		}
		r := &RankedHit{DocID: id}
		scores[id] = r
		return r
	}

	for rank, c := range lexical {
		r := getOrCreate(c.DocID)
		r.LexicalScore = c.Score
		r.RRFScore += weights.Lexical / (f.K + float64(rank+1))
	}

	presentInLexical := make(map[string]bool, len(lexical))
	for _, c := range lexical {
		presentInLexical[c.DocID] = true
	}

	for rank, c := range vector {
		r := getOrCreate(c.DocID)
		r.VectorScore = c.Score
		r.RRFScore += weights.Semantic / (f.K + float64(rank+1))
		if presentInLexical[c.DocID] {
			r.InBoth = true
		}
	}

	out := make([]RankedHit, 0, len(scores))
	for _, r := range scores {
		out = append(out, *r)
	}
	sortHits(out)
	return out
}

func sortHits(hits []RankedHit) {
	sort.Slice(hits, func(i, j int) bool { return less(hits[i], hits[j]) })
}

// less implements the tie-break cascade: higher RRF score wins; then
// in_both beats in_one; then higher lexical raw score; then
// lexicographically smaller doc_id.
func less(a, b RankedHit) bool {
	if a.RRFScore != b.RRFScore {
		return a.RRFScore > b.RRFScore
	}
	if a.InBoth != b.InBoth {
		return a.InBoth
	}
	if a.LexicalScore != b.LexicalScore {
		return a.LexicalScore > b.LexicalScore
	}
	return a.DocID < b.DocID
}
