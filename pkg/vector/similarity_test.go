package vector_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/knolhq/knol/pkg/knowledge"
	"github.com/knolhq/knol/pkg/vector"
)

func TestVector(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Vector Suite")
}

var _ = Describe("Normalize", func() {
	It("scales a vector to unit length", func() {
		out := vector.Normalize([]float32{3, 4})
		Expect(out[0]).To(BeNumerically("~", 0.6, 1e-6))
		Expect(out[1]).To(BeNumerically("~", 0.8, 1e-6))
	})

	It("leaves the zero vector unchanged", func() {
		out := vector.Normalize([]float32{0, 0, 0})
		Expect(out).To(Equal([]float32{0, 0, 0}))
	})
})

var _ = Describe("Dot", func() {
	It("computes the dot product", func() {
		Expect(vector.Dot([]float32{1, 2, 3}, []float32{4, 5, 6})).
			To(BeNumerically("~", 32, 1e-6))
	})
})

var _ = Describe("RankResults", func() {
	result := func(docID string, seq int, score float32) knowledge.SearchResult {
		return knowledge.SearchResult{
			Chunk: knowledge.Chunk{DocumentID: docID, Seq: seq},
			Score: score,
		}
	}

	It("orders by descending score and assigns ranks", func() {
		ranked := vector.RankResults([]knowledge.SearchResult{
			result("a", 0, 0.2),
			result("a", 1, 0.9),
			result("a", 2, 0.5),
		}, 0, 0)

		Expect(ranked).To(HaveLen(3))
		Expect(ranked[0].Score).To(Equal(float32(0.9)))
		Expect(ranked[1].Score).To(Equal(float32(0.5)))
		Expect(ranked[2].Score).To(Equal(float32(0.2)))
		for i, r := range ranked {
			Expect(r.Rank).To(Equal(i))
		}
	})

	It("breaks score ties by chunk sequence", func() {
		ranked := vector.RankResults([]knowledge.SearchResult{
			result("a", 5, 0.7),
			result("a", 1, 0.7),
		}, 0, 0)

		Expect(ranked[0].Chunk.Seq).To(Equal(1))
		Expect(ranked[1].Chunk.Seq).To(Equal(5))
	})

	It("breaks full ties by document ID", func() {
		ranked := vector.RankResults([]knowledge.SearchResult{
			result("doc-b", 2, 0.7),
			result("doc-a", 2, 0.7),
		}, 0, 0)

		Expect(ranked[0].Chunk.DocumentID).To(Equal("doc-a"))
		Expect(ranked[1].Chunk.DocumentID).To(Equal("doc-b"))
	})

	It("truncates to topK after sorting", func() {
		ranked := vector.RankResults([]knowledge.SearchResult{
			result("a", 0, 0.1),
			result("a", 1, 0.9),
			result("a", 2, 0.5),
		}, 2, 0)

		Expect(ranked).To(HaveLen(2))
		Expect(ranked[0].Score).To(Equal(float32(0.9)))
		Expect(ranked[1].Score).To(Equal(float32(0.5)))
	})

	It("filters below the threshold even when fewer than topK remain", func() {
		ranked := vector.RankResults([]knowledge.SearchResult{
			result("a", 0, 0.1),
			result("a", 1, 0.9),
		}, 5, 0.5)

		Expect(ranked).To(HaveLen(1))
		Expect(ranked[0].Score).To(Equal(float32(0.9)))
	})

	It("disables filtering for a zero threshold", func() {
		ranked := vector.RankResults([]knowledge.SearchResult{
			result("a", 0, -0.3),
			result("a", 1, 0.2),
		}, 0, 0)

		Expect(ranked).To(HaveLen(2))
	})

	It("returns empty for no input", func() {
		Expect(vector.RankResults(nil, 3, 0)).To(BeEmpty())
	})
})

var _ = Describe("Preview", func() {
	It("truncates long text by runes", func() {
		long := make([]rune, vector.PreviewLen+50)
		for i := range long {
			long[i] = 'あ'
		}
		out := vector.Preview(string(long))
		Expect([]rune(out)).To(HaveLen(vector.PreviewLen))
	})

	It("returns short text unchanged", func() {
		Expect(vector.Preview("short")).To(Equal("short"))
	})
})
