package fusion

// BlendInput is one REFINED-phase candidate: its fast-path score (the
// INITIAL RRF score) and its freshly computed quality score.
type BlendInput struct {
	DocID        string
	FastScore    float64
	QualityScore float64
	LexicalScore float64
	InBoth       bool
}

// Blend computes the REFINED-phase blended score for each candidate:
// quality_weight * norm(quality_score) + (1 - quality_weight) * norm(fast_score),
// where norm is min-max normalization across the candidate set. A
// constant set (max == min) normalizes to 0.5 for that side. The returned
// hits are sorted under the same tie-break cascade as RRF, using the
// blended value in place of the RRF sum.
func Blend(candidates []BlendInput, qualityWeight float64) []RankedHit {
	if len(candidates) == 0 {
		return nil
	}

	fast := make([]float64, len(candidates))
	quality := make([]float64, len(candidates))
	for i, c := range candidates {
		fast[i] = c.FastScore
		quality[i] = c.QualityScore
	}

	normFast := minMaxNormalize(fast)
	normQuality := minMaxNormalize(quality)

	out := make([]RankedHit, len(candidates))
	for i, c := range candidates {
		blended := qualityWeight*normQuality[i] + (1-qualityWeight)*normFast[i]
		out[i] = RankedHit{
			DocID:        c.DocID,
			RRFScore:     blended,
			LexicalScore: c.LexicalScore,
			VectorScore:  c.QualityScore,
			InBoth:       c.InBoth,
		}
	}

	sortHits(out)
	return out
}

func minMaxNormalize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}

	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	if max == min {
		for i := range out {
			out[i] = 0.5
		}
		return out
	}

	for i, v := range values {
		out[i] = (v - min) / (max - min)
	}
	return out
}
