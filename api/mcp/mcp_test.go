package mcp_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/knolhq/knol/api/mcp"
	"github.com/knolhq/knol/pkg/knowledge"
)

func TestMCP(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "MCP Suite")
}

type stubSearcher struct{}

func (stubSearcher) RetrieveN(context.Context, string, int) ([]knowledge.SearchResult, error) {
	return nil, nil
}

type stubAsker struct{}

func (stubAsker) Ask(_ context.Context, question string) (knowledge.AnswerRecord, error) {
	return knowledge.AnswerRecord{Question: question}, nil
}

var _ = Describe("MCP Server", func() {
	var (
		searcher stubSearcher
		asker    stubAsker
	)

	Describe("NewServer", func() {
		It("returns an error when searcher is nil", func() {
			_, err := mcp.NewServer(mcp.Config{
				Asker:  asker,
				Logger: zap.NewNop(),
			})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("searcher is required"))
		})

		It("returns an error when asker is nil", func() {
			_, err := mcp.NewServer(mcp.Config{
				Searcher: searcher,
				Logger:   zap.NewNop(),
			})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("asker is required"))
		})

		It("returns an error when logger is nil", func() {
			_, err := mcp.NewServer(mcp.Config{
				Searcher: searcher,
				Asker:    asker,
			})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("logger is required"))
		})

		It("creates a server with valid config", func() {
			server, err := mcp.NewServer(mcp.Config{
				Searcher: searcher,
				Asker:    asker,
				Logger:   zap.NewNop(),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(server).NotTo(BeNil())
			Expect(server.Handler()).NotTo(BeNil())
		})

		It("skips dependency checks in noop mode", func() {
			server, err := mcp.NewServer(mcp.Config{Noop: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(server).NotTo(BeNil())
		})
	})
})
