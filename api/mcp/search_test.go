package mcp

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/knolhq/knol/pkg/knowledge"
)

var _ = Describe("Search tool", func() {
	Describe("buildSearchResult", func() {
		It("maps a retrieval result onto the tool schema", func() {
			result := buildSearchResult(knowledge.SearchResult{
				Chunk: knowledge.Chunk{
					ID:         "doc-1:2",
					DocumentID: "doc-1",
					Seq:        2,
					Text:       "Expense reports are due monthly.",
				},
				Filename: "policy.txt",
				Score:    0.87,
				Rank:     0,
			})

			Expect(result.ChunkID).To(Equal("doc-1:2"))
			Expect(result.DocumentID).To(Equal("doc-1"))
			Expect(result.Filename).To(Equal("policy.txt"))
			Expect(result.Score).To(Equal(float32(0.87)))
			Expect(result.Text).To(Equal("Expense reports are due monthly."))
		})
	})
})
