package model

import "time"

// Domain identifies one category of research query.
type Domain string

const (
	DomainCompany  Domain = "company"
	DomainPerson   Domain = "person"
	DomainIndustry Domain = "industry"
	DomainNews     Domain = "news"
	DomainOpen     Domain = "open"
)

// AllDomains lists every registered research domain.
var AllDomains = []Domain{
	DomainCompany,
	DomainPerson,
	DomainIndustry,
	DomainNews,
	DomainOpen,
}

// Valid reports whether d is a registered domain.
func (d Domain) Valid() bool {
	switch d {
	case DomainCompany, DomainPerson, DomainIndustry, DomainNews, DomainOpen:
		return true
	}
	return false
}

// EnrichmentQuery is a static research-query definition for one domain.
// Defined at process start and never mutated at runtime.
type EnrichmentQuery struct {
	Domain       Domain   `json:"domain"`
	Template     string   `json:"template"`
	Fields       []string `json:"fields"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
	TTLHours     int      `json:"ttl_hours"`
	Priority     int      `json:"priority"`
	TimeoutSecs  int      `json:"timeout_secs"`
}

// TTL returns the cache TTL as a duration.
func (q EnrichmentQuery) TTL() time.Duration {
	return time.Duration(q.TTLHours) * time.Hour
}

// Timeout returns the per-call timeout as a duration.
func (q EnrichmentQuery) Timeout() time.Duration {
	return time.Duration(q.TimeoutSecs) * time.Second
}

// QueryResult is the outcome of executing one EnrichmentQuery for one
// contact. Immutable after creation.
type QueryResult struct {
	Domain    Domain   `json:"domain"`
	Success   bool     `json:"success"`
	Content   string   `json:"content,omitempty"`
	Citations []string `json:"citations,omitempty"`
	LatencyMS int64    `json:"latency_ms"`
	Cached    bool     `json:"cached"`
	Error     string   `json:"error,omitempty"`
}

// SynthesizedEntry is the merged view of one successful domain result.
type SynthesizedEntry struct {
	Content   string   `json:"content"`
	Citations []string `json:"citations,omitempty"`
	LatencyMS int64    `json:"latency_ms"`
}

// EnrichmentResult aggregates all per-domain results for one contact in one
// pipeline run. Success is true when at least one domain succeeded.
type EnrichmentResult struct {
	ContactID       string                      `json:"contact_id"`
	Success         bool                        `json:"success"`
	QueryResults    map[Domain]QueryResult      `json:"query_results"`
	SynthesizedData map[Domain]SynthesizedEntry `json:"synthesized_data"`
	TotalLatencyMS  int64                       `json:"total_latency_ms"`
	QueriesExecuted int                         `json:"queries_executed"`
	QueriesCached   int                         `json:"queries_cached"`
	EnrichedAt      time.Time                   `json:"enriched_at"`
}

// DomainContent returns the synthesized content for a domain, or "" when the
// domain failed or was not queried.
func (r *EnrichmentResult) DomainContent(d Domain) string {
	if r == nil {
		return ""
	}
	if entry, ok := r.SynthesizedData[d]; ok {
		return entry.Content
	}
	return ""
}

// Run is a stored enrichment run record.
type Run struct {
	ID        string            `json:"id"`
	ContactID string            `json:"contact_id"`
	Status    RunStatus         `json:"status"`
	Result    *EnrichmentResult `json:"result,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// RunStatus tracks the lifecycle of an enrichment run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)
