// Package bootstrap assembles the pipeline from configuration.
package bootstrap

import (
	"github.com/fairyhunter13/product-description-generator/internal/catalog"
	"github.com/fairyhunter13/product-description-generator/internal/config"
	"github.com/fairyhunter13/product-description-generator/internal/generation"
	"github.com/fairyhunter13/product-description-generator/internal/obs"
	"github.com/fairyhunter13/product-description-generator/internal/pipeline"
)

// NewPipeline builds the catalog client, the generation client and the
// pipeline using them. Upstream settings are not validated here.
func NewPipeline(cfg config.Config) *pipeline.Pipeline {
	cat := catalog.New(cfg.Commerce)
	synth := generation.NewSynthesizer(generation.NewOpenAICompleter(cfg.Generation))

	obs.Named("bootstrap").Infow("pipeline_configured",
		"endpoint", catalog.Endpoint(cfg.Commerce.ShopDomain, cfg.Commerce.APIVersion),
		"model", cfg.Generation.Model,
		"page_size", cfg.PageSize,
		"max_concurrency", cfg.MaxConcurrency,
	)
	return pipeline.New(cat, synth,
		pipeline.WithPageSize(cfg.PageSize),
		pipeline.WithMaxConcurrency(cfg.MaxConcurrency),
	)
}
