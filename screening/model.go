package screening

import (
	"log/slog"
	"time"

	"github.com/JoshPattman/jpf"
)

// ModelBuilder builds LLM models.
type ModelBuilder interface {
	// BuildScreeningModel builds a model for resume screening, using the specified logger.
	BuildScreeningModel(*slog.Logger) jpf.Model
}

// ModelOptions configure the model chain used for screening.
type ModelOptions struct {
	APIKey string
	Model  string
	// CachePath is the file model responses are persisted to. Empty disables caching.
	CachePath      string
	MaxConcurrency int
	Retries        int
	RetryDelay     time.Duration
}

func (o ModelOptions) withDefaults() ModelOptions {
	if o.Model == "" {
		o.Model = "gpt-4o-mini"
	}
	if o.MaxConcurrency < 1 {
		o.MaxConcurrency = 1
	}
	if o.Retries < 0 {
		o.Retries = 0
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 5 * time.Second
	}
	return o
}

// NewModelBuilder creates a ModelBuilder. Every model it builds shares one concurrency limiter
// and one response cache, so parallel repeats and applicants stay within MaxConcurrency.
func NewModelBuilder(opts ModelOptions) (ModelBuilder, error) {
	opts = opts.withDefaults()
	mb := &screeningModelBuilder{
		opts:        opts,
		concLimiter: jpf.NewMaxConcurrentLimiter(opts.MaxConcurrency),
	}
	if opts.CachePath != "" {
		cache, err := jpf.NewFilePersistCache(opts.CachePath)
		if err != nil {
			return nil, err
		}
		mb.cache = cache
	}
	return mb, nil
}

type screeningModelBuilder struct {
	opts        ModelOptions
	concLimiter jpf.ConcurrentLimiter
	cache       jpf.ModelResponseCache
}

func (mb *screeningModelBuilder) BuildScreeningModel(logger *slog.Logger) jpf.Model {
	logger = logger.With("model", mb.opts.Model)
	model := jpf.NewOpenAIModel(mb.opts.APIKey, mb.opts.Model, jpf.WithTemperature{X: 0})
	model = jpf.NewLoggingModel(model, jpf.NewSlogModelLogger(logger.Debug, false))
	if mb.opts.Retries > 0 {
		model = jpf.NewRetryModel(model, mb.opts.Retries, jpf.WithDelay{X: mb.opts.RetryDelay})
	}
	model = jpf.NewConcurrentLimitedModel(model, mb.concLimiter)
	if mb.cache != nil {
		model = jpf.NewCachedModel(model, mb.cache)
	}
	return model
}
