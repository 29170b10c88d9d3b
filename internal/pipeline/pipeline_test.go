package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fairyhunter13/product-description-generator/internal/generation"
	"github.com/fairyhunter13/product-description-generator/internal/model"
	"github.com/fairyhunter13/product-description-generator/internal/pipeline"
)

// seedEcho answers every completion with the seed it was given.
type seedEcho struct{}

func (seedEcho) Complete(_ context.Context, _ model.GenerationRequest, seed string) (string, error) {
	return seed, nil
}

var _ = Describe("Pipeline", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	Describe("Run", func() {
		It("returns one outcome per fetched product in fetch order", func() {
			c := newFakeCatalog("Desk Lamp", "Chair", "Rug", "Mug", "Vase")
			c.delays["gid://shopify/Product/1"] = 40 * time.Millisecond
			c.delays["gid://shopify/Product/3"] = 20 * time.Millisecond

			res, err := pipeline.New(c, titleDescriber{}).Run(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Products).To(HaveLen(5))
			Expect(res.Message).To(Equal("Successfully updated 5 products with new descriptions"))
			for i, o := range res.Products {
				Expect(o.ProductID).To(Equal(fmt.Sprintf("gid://shopify/Product/%d", i+1)))
				Expect(o.Description).To(Equal("About " + c.products[i].Title))
			}
			Expect(c.Writes()).To(HaveLen(5))
		})

		It("succeeds with an empty list when the page has no products", func() {
			c := newFakeCatalog()

			res, err := pipeline.New(c, titleDescriber{}).Run(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Products).NotTo(BeNil())
			Expect(res.Products).To(BeEmpty())
			Expect(res.Message).To(Equal("Successfully updated 0 products with new descriptions"))
		})

		It("fetches exactly one page of the configured size", func() {
			titles := make([]string, 15)
			for i := range titles {
				titles[i] = fmt.Sprintf("Item %d", i)
			}
			c := newFakeCatalog(titles...)

			res, err := pipeline.New(c, titleDescriber{}).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Products).To(HaveLen(pipeline.DefaultPageSize))

			res, err = pipeline.New(c, titleDescriber{}, pipeline.WithPageSize(3)).Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Products).To(HaveLen(3))
		})

		It("writes an empty fallback description as an empty string", func() {
			c := newFakeCatalog("Bamboo Bath Towel Set")

			res, err := pipeline.New(c, titleDescriber{empty: true}).Run(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(c.Writes()).To(ConsistOf(write{ID: "gid://shopify/Product/1", Description: ""}))
			Expect(res.Products[0].Description).To(Equal(""))
		})

		DescribeTable("fails fast when the second write reports a user error",
			func(d1, d2, d3 time.Duration) {
				c := newFakeCatalog("Desk Lamp", "Untitled Chair", "Rug")
				c.userErrors["gid://shopify/Product/2"] = "Title can't be blank"
				c.delays["gid://shopify/Product/1"] = d1
				c.delays["gid://shopify/Product/2"] = d2
				c.delays["gid://shopify/Product/3"] = d3

				res, err := pipeline.New(c, titleDescriber{}).Run(ctx)

				Expect(res).To(BeNil())
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("Title can't be blank"))
				Expect(err.Error()).To(ContainSubstring("Untitled Chair"))

				var rejected *pipeline.ErrUpdateRejected
				Expect(errors.As(err, &rejected)).To(BeTrue())
				Expect(rejected.ProductID).To(Equal("gid://shopify/Product/2"))
				Expect(rejected.Title).To(Equal("Untitled Chair"))
				Expect(rejected.Message).To(Equal("Title can't be blank"))
				Expect(rejected.Field).To(Equal([]string{"title"}))
			},
			Entry("all immediate", time.Duration(0), time.Duration(0), time.Duration(0)),
			Entry("failure completes first", 30*time.Millisecond, time.Duration(0), 30*time.Millisecond),
			Entry("failure completes last", time.Duration(0), 30*time.Millisecond, time.Duration(0)),
			Entry("failure in the middle", 10*time.Millisecond, 20*time.Millisecond, 40*time.Millisecond),
		)

		It("reports writes that were applied before the failure", func() {
			c := newFakeCatalog("Desk Lamp", "Untitled Chair")
			c.userErrors["gid://shopify/Product/2"] = "Title can't be blank"
			c.delays["gid://shopify/Product/2"] = 50 * time.Millisecond

			_, err := pipeline.New(c, titleDescriber{}).Run(ctx)

			var aborted *pipeline.ErrBatchAborted
			Expect(errors.As(err, &aborted)).To(BeTrue())
			Expect(aborted.Written).To(ConsistOf("gid://shopify/Product/1"))
			Expect(c.Writes()).To(HaveLen(1))
		})

		It("cancels in-flight siblings after the first failure", func() {
			c := newFakeCatalog("Desk Lamp", "Untitled Chair")
			c.userErrors["gid://shopify/Product/2"] = "Title can't be blank"
			c.delays["gid://shopify/Product/1"] = 5 * time.Second

			start := time.Now()
			_, err := pipeline.New(c, titleDescriber{}).Run(ctx)

			Expect(err).To(HaveOccurred())
			Expect(time.Since(start)).To(BeNumerically("<", 2*time.Second))
			Expect(c.Writes()).To(BeEmpty())
			var rejected *pipeline.ErrUpdateRejected
			Expect(errors.As(err, &rejected)).To(BeTrue())
		})

		It("fails with a transport error when the fetch fails", func() {
			c := newFakeCatalog("Desk Lamp")
			c.fetchErr = errConnRefused

			res, err := pipeline.New(c, titleDescriber{}).Run(ctx)

			Expect(res).To(BeNil())
			var transport *pipeline.ErrTransport
			Expect(errors.As(err, &transport)).To(BeTrue())
			Expect(transport.Op).To(Equal("fetch products"))
			Expect(errors.Is(err, errConnRefused)).To(BeTrue())
			Expect(c.Writes()).To(BeEmpty())
		})

		It("fails with a transport error when a write cannot be completed", func() {
			c := newFakeCatalog("Desk Lamp", "Chair")
			c.writeErr["gid://shopify/Product/2"] = errConnRefused

			_, err := pipeline.New(c, titleDescriber{}).Run(ctx)

			var transport *pipeline.ErrTransport
			Expect(errors.As(err, &transport)).To(BeTrue())
			Expect(transport.Op).To(Equal("update product"))
			Expect(err.Error()).To(ContainSubstring("connection refused"))
		})

		It("caps concurrent writes when a limit is set", func() {
			titles := make([]string, 8)
			for i := range titles {
				titles[i] = fmt.Sprintf("Item %d", i)
			}
			c := newFakeCatalog(titles...)
			for _, p := range c.products {
				c.delays[p.ID] = 10 * time.Millisecond
			}

			res, err := pipeline.New(c, titleDescriber{}, pipeline.WithMaxConcurrency(2)).Run(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Products).To(HaveLen(8))
			Expect(c.peak.Load()).To(BeNumerically("<=", 2))
		})

		It("reports state transitions to the observer", func() {
			var states []model.RunState
			c := newFakeCatalog("Desk Lamp")
			_, err := pipeline.New(c, titleDescriber{}).RunObserved(ctx, func(s model.RunState) {
				states = append(states, s)
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(states).To(Equal([]model.RunState{
				model.RunStateFetching, model.RunStateGenerating, model.RunStateSucceeded,
			}))

			states = nil
			c.fetchErr = errConnRefused
			_, err = pipeline.New(c, titleDescriber{}).RunObserved(ctx, func(s model.RunState) {
				states = append(states, s)
			})
			Expect(err).To(HaveOccurred())
			Expect(states).To(Equal([]model.RunState{model.RunStateFetching, model.RunStateFailed}))
		})

		It("draws fresh descriptions on every run", func() {
			titles := make([]string, 10)
			for i := range titles {
				titles[i] = fmt.Sprintf("Item %d", i)
			}
			c := newFakeCatalog(titles...)
			s := generation.NewSynthesizer(seedEcho{}, generation.WithRand(rand.New(rand.NewPCG(11, 13))))
			p := pipeline.New(c, s)

			first, err := p.Run(ctx)
			Expect(err).NotTo(HaveOccurred())
			second, err := p.Run(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(first.Products).To(HaveLen(10))
			Expect(second.Products).To(HaveLen(10))
			Expect(second.Products).NotTo(Equal(first.Products))
		})
	})

	Describe("UpdateOne", func() {
		It("falls back to the requested id and text when the platform omits the product", func() {
			c := &bareCatalog{}
			out, err := pipeline.New(c, titleDescriber{}).UpdateOne(ctx, model.Product{ID: "p9", Title: "Stool"})
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(model.UpdateOutcome{ProductID: "p9", Title: "Stool", Description: "About Stool"}))
		})
	})
})

// bareCatalog answers writes with neither a product nor user errors.
type bareCatalog struct{}

func (bareCatalog) FetchProducts(context.Context, int) ([]model.Product, error) { return nil, nil }

func (bareCatalog) UpdateDescription(context.Context, string, string) (*model.ProductUpdate, error) {
	return &model.ProductUpdate{}, nil
}
