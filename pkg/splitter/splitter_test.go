package splitter_test

import (
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/knolhq/knol/pkg/splitter"
)

func TestSplitter(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Splitter Suite")
}

var _ = Describe("Splitter", func() {
	Describe("New", func() {
		It("applies the default chunk size", func() {
			s, err := splitter.New(splitter.Config{})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.ChunkSize()).To(Equal(splitter.DefaultChunkSize))
			Expect(s.Overlap()).To(Equal(0))
		})

		It("rejects a negative overlap", func() {
			_, err := splitter.New(splitter.Config{ChunkSize: 100, Overlap: -1})
			Expect(err).To(HaveOccurred())
		})

		It("rejects an overlap as large as the chunk size", func() {
			_, err := splitter.New(splitter.Config{ChunkSize: 100, Overlap: 100})
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Split", func() {
		It("returns no chunks for empty text", func() {
			s, err := splitter.New(splitter.Config{ChunkSize: 50})
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Split("doc", "")).To(BeEmpty())
		})

		It("returns a single chunk for text shorter than the chunk size", func() {
			s, err := splitter.New(splitter.Config{ChunkSize: 50})
			Expect(err).NotTo(HaveOccurred())

			chunks := s.Split("doc", "short text")
			Expect(chunks).To(HaveLen(1))
			Expect(chunks[0].Text).To(Equal("short text"))
			Expect(chunks[0].Seq).To(Equal(0))
			Expect(chunks[0].Start).To(Equal(0))
			Expect(chunks[0].End).To(Equal(10))
			Expect(chunks[0].ID).To(Equal("doc:0"))
			Expect(chunks[0].DocumentID).To(Equal("doc"))
		})

		It("reconstructs the original text without overlap", func() {
			s, err := splitter.New(splitter.Config{ChunkSize: 40})
			Expect(err).NotTo(HaveOccurred())

			text := "First sentence here. Second sentence follows. Third one is a bit longer than the rest. Fourth closes it out."
			chunks := s.Split("doc", text)
			Expect(len(chunks)).To(BeNumerically(">", 1))

			var b strings.Builder
			for _, c := range chunks {
				b.WriteString(c.Text)
			}
			Expect(b.String()).To(Equal(text))
		})

		It("keeps every chunk within the size limit", func() {
			s, err := splitter.New(splitter.Config{ChunkSize: 30})
			Expect(err).NotTo(HaveOccurred())

			text := strings.Repeat("A sentence that repeats. ", 20)
			for _, c := range s.Split("doc", text) {
				Expect(len([]rune(c.Text))).To(BeNumerically("<=", 30))
			}
		})

		It("prefers cutting after sentence boundaries", func() {
			s, err := splitter.New(splitter.Config{ChunkSize: 30})
			Expect(err).NotTo(HaveOccurred())

			text := "One short sentence. Another short one. And yet another here."
			chunks := s.Split("doc", text)
			Expect(len(chunks)).To(BeNumerically(">", 1))

			// All chunks except the last end right after a sentence ender.
			for _, c := range chunks[:len(chunks)-1] {
				trimmed := strings.TrimRight(c.Text, " ")
				Expect(strings.HasSuffix(trimmed, ".")).To(BeTrue(),
					"chunk %q should end at a sentence boundary", c.Text)
			}
		})

		It("prefers paragraph breaks over sentence boundaries", func() {
			s, err := splitter.New(splitter.Config{ChunkSize: 40})
			Expect(err).NotTo(HaveOccurred())

			text := "First paragraph. More text.\n\nSecond paragraph starts here and goes on."
			chunks := s.Split("doc", text)
			Expect(len(chunks)).To(BeNumerically(">", 1))
			Expect(chunks[0].Text).To(HaveSuffix("\n\n"))
			Expect(chunks[1].Text).To(HavePrefix("Second paragraph"))
		})

		It("hard-cuts text with no boundaries", func() {
			s, err := splitter.New(splitter.Config{ChunkSize: 10})
			Expect(err).NotTo(HaveOccurred())

			text := strings.Repeat("x", 25)
			chunks := s.Split("doc", text)
			Expect(chunks).To(HaveLen(3))
			Expect(chunks[0].Text).To(Equal(strings.Repeat("x", 10)))
			Expect(chunks[1].Text).To(Equal(strings.Repeat("x", 10)))
			Expect(chunks[2].Text).To(Equal(strings.Repeat("x", 5)))
		})

		It("is deterministic", func() {
			s, err := splitter.New(splitter.Config{ChunkSize: 35, Overlap: 5})
			Expect(err).NotTo(HaveOccurred())

			text := "Some repeated content. With sentences. And more content to split over several chunks."
			first := s.Split("doc", text)
			second := s.Split("doc", text)
			Expect(second).To(Equal(first))
		})

		It("assigns sequential IDs and offsets", func() {
			s, err := splitter.New(splitter.Config{ChunkSize: 20})
			Expect(err).NotTo(HaveOccurred())

			text := strings.Repeat("word. ", 20)
			chunks := s.Split("doc-1", text)
			for i, c := range chunks {
				Expect(c.Seq).To(Equal(i))
				Expect(c.ID).To(Equal("doc-1:" + string(rune('0'+i))))
				if i > 0 {
					Expect(c.Start).To(Equal(chunks[i-1].End))
				}
			}
			Expect(chunks[len(chunks)-1].End).To(Equal(len([]rune(text))))
		})

		It("duplicates overlap into the head of the next chunk", func() {
			s, err := splitter.New(splitter.Config{ChunkSize: 20, Overlap: 5})
			Expect(err).NotTo(HaveOccurred())

			text := strings.Repeat("y", 40)
			chunks := s.Split("doc", text)
			Expect(len(chunks)).To(BeNumerically(">", 1))

			for i := 1; i < len(chunks); i++ {
				prev := []rune(chunks[i-1].Text)
				cur := []rune(chunks[i].Text)
				Expect(string(cur[:5])).To(Equal(string(prev[len(prev)-5:])))
				Expect(chunks[i].Start).To(Equal(chunks[i-1].End - 5))
			}
		})

		It("counts multibyte runes, not bytes", func() {
			s, err := splitter.New(splitter.Config{ChunkSize: 10})
			Expect(err).NotTo(HaveOccurred())

			text := strings.Repeat("あ", 25)
			chunks := s.Split("doc", text)
			Expect(chunks).To(HaveLen(3))
			Expect([]rune(chunks[0].Text)).To(HaveLen(10))
		})
	})
})
