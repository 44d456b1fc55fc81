package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/knolhq/knol/api"
	"github.com/knolhq/knol/pkg/assistant"
	"github.com/knolhq/knol/pkg/knowledge"
	"github.com/knolhq/knol/pkg/loader"
	"github.com/knolhq/knol/pkg/rag"
	"github.com/knolhq/knol/pkg/retriever"
	"github.com/knolhq/knol/pkg/splitter"
	testutils "github.com/knolhq/knol/pkg/utils/test"
	"github.com/knolhq/knol/pkg/vector/memory"
)

func TestAPI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Suite")
}

var _ = Describe("Server", func() {
	var (
		server    *api.Server
		generator *testutils.MockGenerator
	)

	BeforeEach(func() {
		logger := zap.NewNop()
		embedder := testutils.NewHashEmbedder(64)

		split, err := splitter.New(splitter.Config{ChunkSize: 100})
		Expect(err).NotTo(HaveOccurred())

		driver, err := memory.NewDriver(memory.Config{Dimensions: 64}, logger)
		Expect(err).NotTo(HaveOccurred())

		generator = testutils.NewMockGenerator("The handbook says 25 days (handbook.txt).")

		service := rag.New(
			loader.NewDefaultRegistry(),
			split,
			embedder,
			driver,
			retriever.New(embedder, driver, retriever.Config{TopK: 3}, logger),
			assistant.New(generator, logger),
			testutils.NewCapturePublisher(),
			logger,
		)

		server = api.NewServer(api.Config{ListenAddr: ":0"}, service, nil, logger)
	})

	jsonBody := func(resp *http.Response, out any) {
		data, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(data, out)).To(Succeed())
	}

	upload := func(files map[string]string) *http.Response {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for name, content := range files {
			part, err := w.CreateFormFile("files", name)
			Expect(err).NotTo(HaveOccurred())
			_, err = part.Write([]byte(content))
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(w.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())

		resp, err := server.App().Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	ask := func(question string) *http.Response {
		body := strings.NewReader(`{"question": ` + quoteJSON(question) + `}`)
		req := httptest.NewRequest(http.MethodPost, "/ask", body)
		req.Header.Set("Content-Type", "application/json")

		resp, err := server.App().Test(req, -1)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	Describe("GET /ping", func() {
		It("responds", func() {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			resp, err := server.App().Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
		})
	})

	Describe("POST /documents", func() {
		It("ingests uploaded files and reports per-file results", func() {
			resp := upload(map[string]string{
				"handbook.txt": "Employees receive 25 days of annual leave.",
				"image.png":    "not a document",
			})
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body api.UploadResponse
			jsonBody(resp, &body)
			Expect(body.Count).To(Equal(2))
			Expect(body.Results).To(HaveLen(2))

			byName := map[string]knowledge.IngestResult{}
			for _, r := range body.Results {
				byName[r.Filename] = r
			}
			Expect(byName["handbook.txt"].Document).NotTo(BeNil())
			Expect(byName["handbook.txt"].Chunks).To(BeNumerically(">", 0))
			Expect(byName["image.png"].Error).NotTo(BeEmpty())
		})

		It("rejects requests without files", func() {
			var buf bytes.Buffer
			w := multipart.NewWriter(&buf)
			Expect(w.Close()).To(Succeed())

			req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
			req.Header.Set("Content-Type", w.FormDataContentType())

			resp, err := server.App().Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /documents", func() {
		It("lists ingested documents", func() {
			upload(map[string]string{"a.txt": "first document content"})

			req := httptest.NewRequest(http.MethodGet, "/documents", nil)
			resp, err := server.App().Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var body struct {
				Count     int                      `json:"count"`
				Documents []knowledge.DocumentInfo `json:"documents"`
			}
			jsonBody(resp, &body)
			Expect(body.Count).To(Equal(1))
			Expect(body.Documents[0].Filename).To(Equal("a.txt"))
		})
	})

	Describe("DELETE /documents/:id", func() {
		It("removes a document", func() {
			resp := upload(map[string]string{"a.txt": "content to remove"})
			var uploaded api.UploadResponse
			jsonBody(resp, &uploaded)
			id := uploaded.Results[0].Document.ID

			req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
			resp, err := server.App().Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			req = httptest.NewRequest(http.MethodGet, "/documents", nil)
			resp, err = server.App().Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			var body struct {
				Count int `json:"count"`
			}
			jsonBody(resp, &body)
			Expect(body.Count).To(Equal(0))
		})
	})

	Describe("POST /ask", func() {
		It("requires a question", func() {
			resp := ask("")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("returns a grounded answer record", func() {
			upload(map[string]string{"handbook.txt": "Employees receive 25 days of annual leave."})

			resp := ask("how many days of annual leave do employees receive?")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var record knowledge.AnswerRecord
			jsonBody(resp, &record)
			Expect(record.Grounded).To(BeTrue())
			Expect(record.Answer).To(ContainSubstring("25 days"))
			Expect(record.Sources).NotTo(BeEmpty())
		})

		It("returns an ungrounded record when nothing matches", func() {
			resp := ask("anything?")
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var record knowledge.AnswerRecord
			jsonBody(resp, &record)
			Expect(record.Grounded).To(BeFalse())
			Expect(record.Answer).To(Equal(assistant.NoRelevantDocuments))
		})

		It("maps generation failures to bad gateway", func() {
			upload(map[string]string{"a.txt": "some content"})
			generator.Fail = true

			resp := ask("what is in the content?")
			Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))
		})
	})

	Describe("GET /history and POST /reset", func() {
		It("records exchanges and clears them on reset", func() {
			ask("first question?")

			req := httptest.NewRequest(http.MethodGet, "/history", nil)
			resp, err := server.App().Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			var body struct {
				Count int `json:"count"`
			}
			jsonBody(resp, &body)
			Expect(body.Count).To(Equal(1))

			req = httptest.NewRequest(http.MethodPost, "/reset", nil)
			resp, err = server.App().Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			req = httptest.NewRequest(http.MethodGet, "/history", nil)
			resp, err = server.App().Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			jsonBody(resp, &body)
			Expect(body.Count).To(Equal(0))
		})
	})
})

// quoteJSON JSON-quotes a string for request bodies.
func quoteJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
