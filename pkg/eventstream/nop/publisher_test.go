package nop_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/knolhq/knol/pkg/eventstream"
	"github.com/knolhq/knol/pkg/eventstream/nop"
)

func TestNop(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Nop Publisher Suite")
}

var _ = Describe("Publisher", func() {
	var p *nop.Publisher

	BeforeEach(func() {
		p = nop.NewPublisher()
	})

	It("accepts events and does nothing", func() {
		ctx := context.Background()
		Expect(p.PublishDocumentIngested(ctx, &eventstream.DocumentIngestedEvent{EventID: "e1"})).To(Succeed())
		Expect(p.PublishQuestionAnswered(ctx, &eventstream.QuestionAnsweredEvent{EventID: "e2"})).To(Succeed())
		Expect(p.Close()).To(Succeed())
	})

	It("rejects nil events", func() {
		ctx := context.Background()
		Expect(p.PublishDocumentIngested(ctx, nil)).To(MatchError(eventstream.ErrNilEvent))
		Expect(p.PublishQuestionAnswered(ctx, nil)).To(MatchError(eventstream.ErrNilEvent))
	})
})
