package registry

import (
	"strings"

	"github.com/sells-group/prospect-intel/internal/model"
)

// Neutral fallbacks for missing contact fields. Substitution degrades
// gracefully instead of erroring, so formatting never fails.
const (
	fallbackName     = "this contact"
	fallbackTitle    = "Executive"
	fallbackCompany  = "their company"
	fallbackIndustry = "their industry"
)

// Format binds the contact context into the query template. Pure function;
// safe to call concurrently and repeatedly.
func Format(q model.EnrichmentQuery, ctx model.ContactContext) string {
	r := strings.NewReplacer(
		"{first_name}", orDefault(ctx.FirstName, fallbackName),
		"{last_name}", orDefault(ctx.LastName, ""),
		"{full_name}", orDefault(ctx.FullName, fallbackName),
		"{title}", orDefault(ctx.Title, fallbackTitle),
		"{company}", orDefault(ctx.Company, fallbackCompany),
		"{industry}", orDefault(ctx.Industry, fallbackIndustry),
		"{email}", ctx.Email,
		"{linkedin_url}", ctx.LinkedInURL,
	)
	return r.Replace(q.Template)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
