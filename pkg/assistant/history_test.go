package assistant_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/knolhq/knol/pkg/assistant"
	"github.com/knolhq/knol/pkg/knowledge"
)

var _ = Describe("History", func() {
	var h *assistant.History

	BeforeEach(func() {
		h = assistant.NewHistory()
	})

	It("starts empty", func() {
		Expect(h.Records()).To(BeEmpty())
	})

	It("returns records in append order", func() {
		h.Append(knowledge.AnswerRecord{Question: "first"})
		h.Append(knowledge.AnswerRecord{Question: "second"})

		records := h.Records()
		Expect(records).To(HaveLen(2))
		Expect(records[0].Question).To(Equal("first"))
		Expect(records[1].Question).To(Equal("second"))
	})

	It("hands out copies, not the internal slice", func() {
		h.Append(knowledge.AnswerRecord{Question: "original"})

		records := h.Records()
		records[0].Question = "mutated"

		Expect(h.Records()[0].Question).To(Equal("original"))
	})

	It("clears all records", func() {
		h.Append(knowledge.AnswerRecord{Question: "q"})
		h.Clear()
		Expect(h.Records()).To(BeEmpty())
	})
})
