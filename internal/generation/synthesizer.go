package generation

import (
	"context"

	"github.com/fairyhunter13/product-description-generator/internal/metrics"
	"github.com/fairyhunter13/product-description-generator/internal/model"
	"github.com/fairyhunter13/product-description-generator/internal/obs"
)

// Completer asks a text-generation service for one completion.
// An empty string with a nil error means the service produced no content.
type Completer interface {
	Complete(ctx context.Context, req model.GenerationRequest, seed string) (string, error)
}

// Synthesizer turns a product title into a description. It never fails:
// missing content or a failed call degrade to the empty string.
type Synthesizer struct {
	completer Completer
	rng       Rand
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithRand replaces the unseeded default source. Draws are serialized, so a
// plain *rand.Rand can be shared by concurrent Synthesize calls.
func WithRand(r Rand) Option {
	return func(s *Synthesizer) {
		s.rng = &lockedRand{r: r}
	}
}

// NewSynthesizer returns a Synthesizer backed by completer.
func NewSynthesizer(completer Completer, opts ...Option) *Synthesizer {
	s := &Synthesizer{completer: completer, rng: globalRand{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Synthesize returns a generated description for title or "" when none was
// produced.
func (s *Synthesizer) Synthesize(ctx context.Context, title string) string {
	seed := Seed(s.rng, title)
	req := model.GenerationRequest{Title: title, StylePrompt: StylePrompt}
	log := obs.Named("synthesizer")

	text, err := s.completer.Complete(ctx, req, seed)
	if err != nil {
		metrics.IncreaseGenerationTotal(metrics.GenerationFailed)
		log.Warnw("generation_failed", "title", title, "error", err)
		return ""
	}
	if text == "" {
		metrics.IncreaseGenerationTotal(metrics.GenerationEmpty)
		log.Warnw("generation_empty", "title", title)
		return ""
	}
	metrics.IncreaseGenerationTotal(metrics.GenerationGenerated)
	log.Debugw("generation_complete", "title", title, "text", text)
	return text
}
