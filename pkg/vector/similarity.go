package vector

import (
	"math"
	"sort"

	"github.com/knolhq/knol/pkg/knowledge"
)

// Normalize returns v scaled to unit length. Cosine similarity between
// unit vectors reduces to a dot product, so drivers normalise once at
// insertion and once per query. A zero vector is returned unchanged.
func Normalize(v []float32) []float32 {
	var mag float64
	for _, x := range v {
		mag += float64(x) * float64(x)
	}
	mag = math.Sqrt(mag)

	if mag == 0 {
		return v
	}

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / mag)
	}
	return out
}

// Dot returns the dot product of two index-aligned vectors.
func Dot(a, b []float32) float32 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return float32(sum)
}

// RankResults applies the shared ordering contract to scored results:
// filter by threshold, sort by descending score with ties broken by chunk
// sequence (earlier chunk wins, then document ID for cross-document ties),
// truncate to topK and assign ranks. A zero threshold disables filtering.
func RankResults(results []knowledge.SearchResult, topK int, scoreThreshold float32) []knowledge.SearchResult {
	filtered := results[:0:0]
	for _, r := range results {
		if scoreThreshold > 0 && r.Score < scoreThreshold {
			continue
		}
		filtered = append(filtered, r)
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Score != filtered[j].Score {
			return filtered[i].Score > filtered[j].Score
		}
		if filtered[i].Chunk.Seq != filtered[j].Chunk.Seq {
			return filtered[i].Chunk.Seq < filtered[j].Chunk.Seq
		}
		return filtered[i].Chunk.DocumentID < filtered[j].Chunk.DocumentID
	})

	if topK > 0 && len(filtered) > topK {
		filtered = filtered[:topK]
	}

	for i := range filtered {
		filtered[i].Rank = i
	}

	return filtered
}
