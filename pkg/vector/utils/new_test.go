package vectorutils_test

import (
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	vectorutils "github.com/knolhq/knol/pkg/vector/utils"
)

func TestVectorUtils(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Vector Utils Suite")
}

var _ = Describe("NewVectorDriver", func() {
	It("builds the in-memory driver", func() {
		driver, err := vectorutils.NewVectorDriver(context.Background(), &vectorutils.NewVectorDriverOpts{
			ProviderType: "memory",
			Dimensions:   8,
			Logger:       zap.NewNop(),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(driver).NotTo(BeNil())
		Expect(driver.Close()).To(Succeed())
	})

	It("rejects unknown providers", func() {
		_, err := vectorutils.NewVectorDriver(context.Background(), &vectorutils.NewVectorDriverOpts{
			ProviderType: "chroma",
		})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("unsupported vector store provider"))
	})
})
