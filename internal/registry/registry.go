// Package registry holds the static catalog of research-query templates,
// one per knowledge domain, and the formatter that binds contact fields
// into them.
package registry

import (
	"sort"

	"github.com/sells-group/prospect-intel/internal/model"
)

// queries is the process-wide query catalog. Read-only after init; safe for
// unsynchronized concurrent reads.
var queries = map[model.Domain]model.EnrichmentQuery{
	model.DomainCompany: {
		Domain: model.DomainCompany,
		Template: "Provide a business overview of {company}: what the company does, " +
			"its main products or services, approximate size (employees and revenue), " +
			"funding history, and key differentiators.",
		Fields:       []string{"overview", "products", "size", "funding", "differentiators"},
		SystemPrompt: "You are a B2B sales research assistant. Be factual and concise. Cite sources.",
		TTLHours:     168, // company fundamentals move slowly
		Priority:     1,
		TimeoutSecs:  30,
	},
	model.DomainPerson: {
		Domain: model.DomainPerson,
		Template: "Research {full_name}, {title} at {company}. Summarize their professional " +
			"background, tenure, areas of responsibility, and any public speaking, writing, " +
			"or social activity relevant to a sales conversation.",
		Fields:       []string{"background", "tenure", "responsibilities", "public_activity"},
		SystemPrompt: "You are a B2B sales research assistant. Be factual and concise. Cite sources.",
		TTLHours:     72,
		Priority:     2,
		TimeoutSecs:  30,
	},
	model.DomainIndustry: {
		Domain: model.DomainIndustry,
		Template: "Summarize the current state of the {industry} industry: major trends, " +
			"common challenges companies like {company} face, and the competitive landscape.",
		Fields:       []string{"trends", "challenges", "competitors"},
		SystemPrompt: "You are a B2B sales research assistant. Be factual and concise. Cite sources.",
		TTLHours:     336, // industry analysis is the most stable domain
		Priority:     3,
		TimeoutSecs:  30,
	},
	model.DomainNews: {
		Domain: model.DomainNews,
		Template: "Find recent news about {company} from the last 90 days: funding rounds, " +
			"leadership changes, product launches, expansions, or layoffs.",
		Fields:       []string{"recent_news", "buying_signals"},
		SystemPrompt: "You are a B2B sales research assistant. Prioritize recency. Cite sources.",
		TTLHours:     24, // news goes stale fast
		Priority:     1,
		TimeoutSecs:  30,
	},
	model.DomainOpen: {
		Domain: model.DomainOpen,
		Template: "Act as a sales intelligence analyst. For {full_name}, {title} at {company} " +
			"in the {industry} industry, identify likely pain points, budget signals, and the " +
			"best angle for an outbound conversation.",
		Fields:       []string{"pain_points", "budget_signals", "outreach_angle"},
		SystemPrompt: "You are a senior sales strategist. Give actionable, specific guidance.",
		TTLHours:     48,
		Priority:     4,
		TimeoutSecs:  45,
	},
}

// Get returns the query definition for a domain.
func Get(d model.Domain) (model.EnrichmentQuery, bool) {
	q, ok := queries[d]
	return q, ok
}

// All returns every registered query, ordered by priority then domain for
// deterministic permit acquisition when the pool is saturated.
func All() []model.EnrichmentQuery {
	return ForDomains(model.AllDomains)
}

// ForDomains returns the queries for the given domains, ordered by priority
// then domain. Unknown domains are skipped.
func ForDomains(domains []model.Domain) []model.EnrichmentQuery {
	var out []model.EnrichmentQuery
	seen := make(map[model.Domain]bool)
	for _, d := range domains {
		if seen[d] {
			continue
		}
		seen[d] = true
		if q, ok := queries[d]; ok {
			out = append(out, q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Domain < out[j].Domain
	})
	return out
}
