package research

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/prospect-intel/internal/cache"
	"github.com/sells-group/prospect-intel/internal/model"
	"github.com/sells-group/prospect-intel/internal/registry"
)

// defaultMaxConcurrent bounds in-flight backend calls. Third-party research
// APIs typically rate-limit hard above this range.
const defaultMaxConcurrent = 3

// cachedPayload is what the orchestrator stores per query hash.
type cachedPayload struct {
	Content   string
	Citations []string
}

// Orchestrator fans research queries out to the backend under a bounded
// concurrency limit, with cache-first lookup per domain.
type Orchestrator struct {
	backend       Backend
	cache         cache.Cache
	maxConcurrent int
	limiter       *rate.Limiter
	now           func() time.Time
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithMaxConcurrent overrides the in-flight call bound.
func WithMaxConcurrent(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxConcurrent = n
		}
	}
}

// WithRateLimit throttles backend calls to rps requests per second, shared
// across all concurrent runs using this orchestrator.
func WithRateLimit(rps float64) Option {
	return func(o *Orchestrator) {
		if rps > 0 {
			o.limiter = rate.NewLimiter(rate.Limit(rps), max(int(rps), 1))
		}
	}
}

// WithNow sets a fixed clock for testing.
func WithNow(now func() time.Time) Option {
	return func(o *Orchestrator) {
		o.now = now
	}
}

// New creates an Orchestrator. A nil cache disables caching.
func New(backend Backend, c cache.Cache, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		backend:       backend,
		cache:         c,
		maxConcurrent: defaultMaxConcurrent,
		now:           time.Now,
	}
	if o.cache == nil {
		o.cache = cache.NewNop()
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Enrich researches a contact across the given domains (default: all
// registered domains) and aggregates the per-domain results. Individual
// domain failures never abort sibling queries and never surface as an
// error; the aggregate succeeds when at least one domain succeeded. An
// error is returned only when the orchestration machinery itself is
// unusable.
func (o *Orchestrator) Enrich(ctx context.Context, contact model.Contact, domains ...model.Domain) (*model.EnrichmentResult, error) {
	if o.backend == nil {
		return nil, eris.New("research: no backend configured")
	}

	cctx := model.NewContactContext(contact)

	var queries []model.EnrichmentQuery
	if len(domains) == 0 {
		queries = registry.All()
	} else {
		queries = registry.ForDomains(domains)
	}

	log := zap.L().With(
		zap.String("contact_id", contact.ID),
		zap.String("company", cctx.Company),
	)
	log.Info("research: starting enrichment", zap.Int("domains", len(queries)))

	start := o.now()

	var mu sync.Mutex
	results := make(map[model.Domain]model.QueryResult, len(queries))

	// Queries arrive priority-sorted from the registry, so higher-priority
	// domains acquire permits first when the pool is saturated.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxConcurrent)

	for _, q := range queries {
		g.Go(func() error {
			qr := o.runQuery(gctx, q, cctx)
			mu.Lock()
			results[q.Domain] = qr
			mu.Unlock()
			return nil // domain failures are recorded, never propagated
		})
	}
	// Workers always return nil; Wait only orders the aggregation below.
	_ = g.Wait()

	result := &model.EnrichmentResult{
		ContactID:      contact.ID,
		QueryResults:   results,
		TotalLatencyMS: o.now().Sub(start).Milliseconds(),
		EnrichedAt:     o.now().UTC(),
	}
	for _, qr := range results {
		if qr.Success {
			result.Success = true
		}
		if qr.Cached {
			result.QueriesCached++
		} else {
			result.QueriesExecuted++
		}
	}
	result.SynthesizedData = Synthesize(results)

	log.Info("research: enrichment complete",
		zap.Bool("success", result.Success),
		zap.Int("executed", result.QueriesExecuted),
		zap.Int("cached", result.QueriesCached),
		zap.Int64("total_latency_ms", result.TotalLatencyMS),
	)
	return result, nil
}

// runQuery executes a single domain query: cache first, then a backend call
// under the query's own timeout. All failure modes resolve to a failed
// QueryResult.
func (o *Orchestrator) runQuery(ctx context.Context, q model.EnrichmentQuery, cctx model.ContactContext) model.QueryResult {
	text := registry.Format(q, cctx)
	key := cache.Key(text)

	if v, ok := o.cache.Get(key, q.TTL()); ok {
		if payload, ok := v.(cachedPayload); ok {
			zap.L().Debug("research: cache hit",
				zap.String("domain", string(q.Domain)),
				zap.String("key", key[:12]),
			)
			return model.QueryResult{
				Domain:    q.Domain,
				Success:   true,
				Content:   payload.Content,
				Citations: payload.Citations,
				Cached:    true,
			}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, q.Timeout())
	defer cancel()

	if o.limiter != nil {
		if err := o.limiter.Wait(callCtx); err != nil {
			return model.QueryResult{
				Domain:  q.Domain,
				Success: false,
				Error:   eris.Wrap(err, "research: rate limit wait").Error(),
			}
		}
	}

	callStart := time.Now()
	res, err := o.backend.Research(callCtx, text, q.SystemPrompt)
	latency := time.Since(callStart).Milliseconds()

	if err != nil {
		zap.L().Warn("research: domain query failed",
			zap.String("domain", string(q.Domain)),
			zap.Int64("latency_ms", latency),
			zap.Error(err),
		)
		return model.QueryResult{
			Domain:    q.Domain,
			Success:   false,
			LatencyMS: latency,
			Error:     err.Error(),
		}
	}

	o.cache.Set(key, cachedPayload{Content: res.Content, Citations: res.Citations})

	return model.QueryResult{
		Domain:    q.Domain,
		Success:   true,
		Content:   res.Content,
		Citations: res.Citations,
		LatencyMS: latency,
	}
}
