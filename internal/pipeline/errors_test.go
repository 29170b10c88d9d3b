package pipeline_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fairyhunter13/product-description-generator/internal/pipeline"
)

var _ = Describe("Errors", func() {
	It("prefixes transport failures with the operation", func() {
		cause := errors.New("connection refused")
		err := pipeline.NewErrTransport("fetch products", cause)

		Expect(err.Op).To(Equal("fetch products"))
		Expect(err.Error()).To(Equal("fetch products: connection refused"))
		Expect(errors.Is(err, cause)).To(BeTrue())
	})

	It("formats rejected updates with the product title", func() {
		err := pipeline.NewErrUpdateRejected("p2", "Lamp", []string{"descriptionHtml"}, "Description is too long")

		Expect(err.Error()).To(Equal("failed to update product Lamp: Description is too long"))
		Expect(err.ProductID).To(Equal("p2"))
		Expect(err.Field).To(Equal([]string{"descriptionHtml"}))
	})

	It("keeps the first failure's message and chain when a batch aborts", func() {
		cause := pipeline.NewErrUpdateRejected("p2", "Lamp", nil, "Title can't be blank")
		err := pipeline.NewErrBatchAborted(cause, []string{"p1"})

		Expect(err.Error()).To(Equal(cause.Error()))
		Expect(err.Written).To(Equal([]string{"p1"}))

		var rejected *pipeline.ErrUpdateRejected
		Expect(errors.As(err, &rejected)).To(BeTrue())
		Expect(rejected).To(BeIdenticalTo(cause))

		var transport *pipeline.ErrTransport
		Expect(errors.As(err, &transport)).To(BeFalse())
	})
})
