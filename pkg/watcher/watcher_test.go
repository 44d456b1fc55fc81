package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/knolhq/knol/pkg/knowledge"
	"github.com/knolhq/knol/pkg/watcher"
)

func TestWatcher(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Watcher Suite")
}

// captureIngestor records ingested filenames.
type captureIngestor struct {
	mu    sync.Mutex
	files []string
	fail  bool
}

func (c *captureIngestor) Ingest(_ context.Context, filename string, _ []byte) (knowledge.IngestResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files = append(c.files, filename)
	if c.fail {
		return knowledge.IngestResult{Filename: filename}, knowledge.ErrUnreadableDocument
	}
	return knowledge.IngestResult{Filename: filename, Chunks: 1}, nil
}

func (c *captureIngestor) ingested() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.files))
	copy(out, c.files)
	return out
}

var _ = Describe("Watcher", func() {
	var (
		dir      string
		ingestor *captureIngestor
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		ingestor = &captureIngestor{}
	})

	Describe("New", func() {
		It("rejects a missing directory", func() {
			_, err := watcher.New(ingestor, filepath.Join(dir, "missing"), zap.NewNop())
			Expect(err).To(HaveOccurred())
		})

		It("rejects a file path", func() {
			path := filepath.Join(dir, "file.txt")
			Expect(os.WriteFile(path, []byte("x"), 0o600)).To(Succeed())

			_, err := watcher.New(ingestor, path, zap.NewNop())
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Run", func() {
		runWatcher := func(ctx context.Context) chan error {
			w, err := watcher.New(ingestor, dir, zap.NewNop())
			Expect(err).NotTo(HaveOccurred())

			done := make(chan error, 1)
			go func() {
				done <- w.Run(ctx)
			}()
			return done
		}

		It("ingests existing supported files and skips the rest", func() {
			Expect(os.WriteFile(filepath.Join(dir, "a.txt"), []byte("first"), 0o600)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(dir, "b.md"), []byte("second"), 0o600)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(dir, "c.png"), []byte("image"), 0o600)).To(Succeed())
			Expect(os.Mkdir(filepath.Join(dir, "sub"), 0o755)).To(Succeed())

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			done := runWatcher(ctx)

			Eventually(ingestor.ingested, "5s").Should(ConsistOf("a.txt", "b.md"))

			cancel()
			Eventually(done, "5s").Should(Receive(MatchError(context.Canceled)))
		})

		It("ingests files created after startup once they settle", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			done := runWatcher(ctx)

			// Give the watch loop time to register before creating the file.
			time.Sleep(200 * time.Millisecond)
			Expect(os.WriteFile(filepath.Join(dir, "late.txt"), []byte("late content"), 0o600)).To(Succeed())

			Eventually(ingestor.ingested, "5s").Should(ContainElement("late.txt"))

			cancel()
			Eventually(done, "5s").Should(Receive())
		})

		It("keeps watching when an ingestion fails", func() {
			ingestor.fail = true
			Expect(os.WriteFile(filepath.Join(dir, "bad.txt"), []byte("broken"), 0o600)).To(Succeed())

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			done := runWatcher(ctx)

			Eventually(ingestor.ingested, "5s").Should(ContainElement("bad.txt"))

			cancel()
			Eventually(done, "5s").Should(Receive(MatchError(context.Canceled)))
		})
	})
})
