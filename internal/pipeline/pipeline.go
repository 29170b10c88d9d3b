// Package pipeline regenerates product descriptions in bulk: it fetches one
// catalog page, synthesizes a description per product concurrently and
// writes each one back.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/product-description-generator/internal/metrics"
	"github.com/fairyhunter13/product-description-generator/internal/model"
	"github.com/fairyhunter13/product-description-generator/internal/obs"
)

// DefaultPageSize is the number of products (and variants per product)
// fetched by one run.
const DefaultPageSize = 10

// Catalog is the commerce platform as seen by the pipeline.
type Catalog interface {
	FetchProducts(ctx context.Context, pageSize int) ([]model.Product, error)
	UpdateDescription(ctx context.Context, productID, descriptionHTML string) (*model.ProductUpdate, error)
}

// Describer produces a description for a title; "" means none was produced.
type Describer interface {
	Synthesize(ctx context.Context, title string) string
}

// Observer is told about every state transition of a run.
type Observer func(model.RunState)

// Pipeline is safe for concurrent use; runs share no state.
type Pipeline struct {
	catalog        Catalog
	describer      Describer
	pageSize       int
	maxConcurrency int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPageSize overrides DefaultPageSize.
func WithPageSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.pageSize = n
		}
	}
}

// WithMaxConcurrency caps in-flight product updates. Zero or less means all
// products of a page are processed at once.
func WithMaxConcurrency(n int) Option {
	return func(p *Pipeline) {
		p.maxConcurrency = n
	}
}

// New returns a Pipeline reading and writing through c.
func New(c Catalog, d Describer, opts ...Option) *Pipeline {
	p := &Pipeline{catalog: c, describer: d, pageSize: DefaultPageSize}
	for _, o := range opts {
		o(p)
	}
	return p
}

// UpdateOne synthesizes a description for product and writes it. An empty
// description is written as-is.
func (p *Pipeline) UpdateOne(ctx context.Context, product model.Product) (model.UpdateOutcome, error) {
	description := p.describer.Synthesize(ctx, product.Title)

	res, err := p.catalog.UpdateDescription(ctx, product.ID, description)
	if err != nil {
		metrics.IncreaseUpdatesTotal(metrics.UpdateFailed)
		return model.UpdateOutcome{}, NewErrTransport("update product", err)
	}
	if len(res.UserErrors) > 0 {
		metrics.IncreaseUpdatesTotal(metrics.UpdateRejected)
		ue := res.UserErrors[0]
		return model.UpdateOutcome{}, NewErrUpdateRejected(product.ID, product.Title, ue.Field, ue.Message)
	}

	metrics.IncreaseUpdatesTotal(metrics.UpdateSucceeded)
	outcome := model.UpdateOutcome{ProductID: product.ID, Title: product.Title, Description: description}
	if res.Product != nil {
		outcome.ProductID = res.Product.ID
		outcome.Description = res.Product.Description
	}
	obs.Named("pipeline").Infow("product_updated", "product_id", outcome.ProductID, "title", product.Title)
	return outcome, nil
}

// Run executes one batch. It fails as a whole on the first transport or
// domain failure; there is no partial result.
func (p *Pipeline) Run(ctx context.Context) (*model.RunResult, error) {
	return p.RunObserved(ctx, nil)
}

// RunObserved is Run reporting state transitions to observe.
func (p *Pipeline) RunObserved(ctx context.Context, observe Observer) (*model.RunResult, error) {
	if observe == nil {
		observe = func(model.RunState) {}
	}
	log := obs.Named("pipeline")
	start := time.Now()

	observe(model.RunStateFetching)
	products, err := p.catalog.FetchProducts(ctx, p.pageSize)
	if err != nil {
		observe(model.RunStateFailed)
		metrics.ObserveRun(string(model.RunStateFailed), time.Since(start))
		err = NewErrBatchAborted(NewErrTransport("fetch products", err), nil)
		log.Errorw("run_failed", "stage", "fetch", "error", err)
		return nil, err
	}
	metrics.AddProductsFetched(len(products))
	log.Infow("products_fetched", "count", len(products))

	observe(model.RunStateGenerating)
	outcomes, written, err := p.fanOut(ctx, products)
	if err != nil {
		observe(model.RunStateFailed)
		metrics.ObserveRun(string(model.RunStateFailed), time.Since(start))
		if len(written) > 0 {
			log.Warnw("batch_partially_applied", "written", written, "error", err)
		}
		log.Errorw("run_failed", "stage", "update", "error", err)
		return nil, NewErrBatchAborted(err, written)
	}

	observe(model.RunStateSucceeded)
	metrics.ObserveRun(string(model.RunStateSucceeded), time.Since(start))
	result := &model.RunResult{
		Products: outcomes,
		Message:  fmt.Sprintf("Successfully updated %d products with new descriptions", len(outcomes)),
	}
	log.Infow("run_succeeded", "updated", len(outcomes), "duration", time.Since(start))
	return result, nil
}

// fanOut updates every product concurrently. Outcomes keep input order. The
// first failure cancels the remaining calls and is returned.
func (p *Pipeline) fanOut(ctx context.Context, products []model.Product) ([]model.UpdateOutcome, []string, error) {
	outcomes := make([]model.UpdateOutcome, len(products))
	var (
		mu      sync.Mutex
		written []string
	)

	g, gctx := errgroup.WithContext(ctx)
	if p.maxConcurrency > 0 {
		g.SetLimit(p.maxConcurrency)
	}
	for i, product := range products {
		g.Go(func() error {
			// A sibling may already have failed while this one waited for a slot.
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome, err := p.UpdateOne(gctx, product)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			mu.Lock()
			written = append(written, outcome.ProductID)
			mu.Unlock()
			return nil
		})
	}
	err := g.Wait()
	return outcomes, written, err
}
