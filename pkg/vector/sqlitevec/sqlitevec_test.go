package sqlitevec_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/knolhq/knol/pkg/knowledge"
	"github.com/knolhq/knol/pkg/vector/sqlitevec"
)

func TestSQLiteVec(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SQLiteVec Driver Suite")
}

var _ = Describe("Driver", func() {
	var (
		driver *sqlitevec.Driver
		dbPath string
		ctx    context.Context
	)

	chunk := func(docID string, seq int, embedding []float32) knowledge.Chunk {
		return knowledge.Chunk{
			ID:         docID + ":" + string(rune('0'+seq)),
			DocumentID: docID,
			Seq:        seq,
			Text:       "chunk text",
			Start:      seq * 10,
			End:        seq*10 + 10,
			Embedding:  embedding,
		}
	}

	doc := func(id, filename string) knowledge.Document {
		return knowledge.Document{
			ID:         id,
			Filename:   filename,
			Format:     knowledge.FormatTXT,
			Text:       "document text",
			IngestedAt: time.Now().UTC(),
		}
	}

	BeforeEach(func() {
		dbPath = filepath.Join(GinkgoT().TempDir(), "index.db")
		var err error
		driver, err = sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     dbPath,
			Dimensions: 3,
			ModelID:    "test/model",
		}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
	})

	AfterEach(func() {
		if driver != nil {
			driver.Close()
		}
	})

	Describe("NewDriver", func() {
		It("requires a database path", func() {
			_, err := sqlitevec.NewDriver(sqlitevec.Config{Dimensions: 3, ModelID: "m"}, zap.NewNop())
			Expect(err).To(HaveOccurred())
		})

		It("requires dimensions", func() {
			_, err := sqlitevec.NewDriver(sqlitevec.Config{DBPath: ":memory:", ModelID: "m"}, zap.NewNop())
			Expect(err).To(HaveOccurred())
		})

		It("requires a model identity", func() {
			_, err := sqlitevec.NewDriver(sqlitevec.Config{DBPath: ":memory:", Dimensions: 3}, zap.NewNop())
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("model identity pinning", func() {
		It("rejects reopening with a different model", func() {
			Expect(driver.Add(ctx, doc("d1", "a.txt"), []knowledge.Chunk{
				chunk("d1", 0, []float32{1, 0, 0}),
			})).To(Succeed())
			Expect(driver.Close()).To(Succeed())
			driver = nil

			_, err := sqlitevec.NewDriver(sqlitevec.Config{
				DBPath:     dbPath,
				Dimensions: 3,
				ModelID:    "other/model",
			}, zap.NewNop())
			Expect(err).To(MatchError(knowledge.ErrIndexCorrupt))
		})

		It("rejects reopening with different dimensions", func() {
			Expect(driver.Close()).To(Succeed())
			driver = nil

			_, err := sqlitevec.NewDriver(sqlitevec.Config{
				DBPath:     dbPath,
				Dimensions: 4,
				ModelID:    "test/model",
			}, zap.NewNop())
			Expect(err).To(MatchError(knowledge.ErrIndexCorrupt))
		})

		It("reopens cleanly with the same embedder", func() {
			Expect(driver.Add(ctx, doc("d1", "a.txt"), []knowledge.Chunk{
				chunk("d1", 0, []float32{1, 0, 0}),
			})).To(Succeed())
			Expect(driver.Close()).To(Succeed())

			var err error
			driver, err = sqlitevec.NewDriver(sqlitevec.Config{
				DBPath:     dbPath,
				Dimensions: 3,
				ModelID:    "test/model",
			}, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())

			infos, err := driver.Documents(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(infos).To(HaveLen(1))
			Expect(infos[0].Filename).To(Equal("a.txt"))
		})
	})

	Describe("Add and Query", func() {
		BeforeEach(func() {
			Expect(driver.Add(ctx, doc("d1", "a.txt"), []knowledge.Chunk{
				chunk("d1", 0, []float32{1, 0, 0}),
				chunk("d1", 1, []float32{0, 1, 0}),
			})).To(Succeed())
		})

		It("returns results by descending similarity", func() {
			results, err := driver.Query(ctx, []float32{1, 0, 0}, 10, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(len(results)).To(BeNumerically(">=", 1))
			Expect(results[0].Chunk.Seq).To(Equal(0))
			Expect(results[0].Score).To(BeNumerically("~", 1.0, 1e-4))
			Expect(results[0].Filename).To(Equal("a.txt"))
			Expect(results[0].Rank).To(Equal(0))
		})

		It("drops results below the score threshold", func() {
			results, err := driver.Query(ctx, []float32{1, 0, 0}, 10, 0.5)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(1))
			Expect(results[0].Chunk.Seq).To(Equal(0))
		})

		It("rejects a batch containing a wrong-dimension chunk", func() {
			err := driver.Add(ctx, doc("d2", "b.txt"), []knowledge.Chunk{
				chunk("d2", 0, []float32{1, 0}),
			})
			Expect(err).To(MatchError(knowledge.ErrIndexCorrupt))

			infos, err := driver.Documents(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(infos).To(HaveLen(1))
		})

		It("rejects a query of the wrong dimension", func() {
			_, err := driver.Query(ctx, []float32{1, 0}, 10, 0)
			Expect(err).To(MatchError(knowledge.ErrIndexCorrupt))
		})
	})

	Describe("RemoveDocument", func() {
		It("removes the document and its chunks", func() {
			Expect(driver.Add(ctx, doc("d1", "a.txt"), []knowledge.Chunk{
				chunk("d1", 0, []float32{1, 0, 0}),
			})).To(Succeed())
			Expect(driver.Add(ctx, doc("d2", "b.txt"), []knowledge.Chunk{
				chunk("d2", 0, []float32{0, 1, 0}),
			})).To(Succeed())

			Expect(driver.RemoveDocument(ctx, "d1")).To(Succeed())

			infos, err := driver.Documents(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(infos).To(HaveLen(1))
			Expect(infos[0].ID).To(Equal("d2"))

			results, err := driver.Query(ctx, []float32{1, 0, 0}, 10, 0)
			Expect(err).NotTo(HaveOccurred())
			for _, r := range results {
				Expect(r.Chunk.DocumentID).NotTo(Equal("d1"))
			}
		})
	})

	Describe("Reset", func() {
		It("clears the index and keeps it usable", func() {
			Expect(driver.Add(ctx, doc("d1", "a.txt"), []knowledge.Chunk{
				chunk("d1", 0, []float32{1, 0, 0}),
			})).To(Succeed())

			Expect(driver.Reset(ctx)).To(Succeed())

			infos, err := driver.Documents(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(infos).To(BeEmpty())

			Expect(driver.Add(ctx, doc("d2", "b.txt"), []knowledge.Chunk{
				chunk("d2", 0, []float32{0, 1, 0}),
			})).To(Succeed())
		})
	})

	Describe("Documents", func() {
		It("reports chunk counts and previews", func() {
			Expect(driver.Add(ctx, doc("d1", "a.txt"), []knowledge.Chunk{
				chunk("d1", 0, []float32{1, 0, 0}),
				chunk("d1", 1, []float32{0, 1, 0}),
			})).To(Succeed())

			infos, err := driver.Documents(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(infos).To(HaveLen(1))
			Expect(infos[0].Chunks).To(Equal(2))
			Expect(infos[0].Preview).To(Equal("document text"))
			Expect(infos[0].Format).To(Equal(knowledge.FormatTXT))
		})
	})
})
