// Package scoring implements the deterministic qualification engine: fuzzy
// ideal-client-profile matching and weighted-component framework scoring.
// Every function here is pure; identical inputs always produce identical
// results.
package scoring

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospect-intel/internal/model"
)

// MatchICP scores a contact against an ICP on a 0-100 scale. Each configured
// criterion contributes its weight to the attainable maximum; matched
// criteria contribute the same weight to the score. The final value is the
// percentage of attainable weight earned, so an ICP defining a single
// criterion can still yield 100 from that one match. Unconfigured criteria
// are excluded from both sides, never penalized. An ICP with no usable
// criteria scores 0.
func MatchICP(cctx model.ContactContext, icp model.ICPCriteria) int {
	score := 0
	maxScore := 0

	if icp.IndustryWeight > 0 && len(icp.Industries) > 0 {
		maxScore += icp.IndustryWeight
		if matchAny(cctx.Industry, icp.Industries) {
			score += icp.IndustryWeight
		}
	}

	if icp.PersonaWeight > 0 && len(icp.Personas) > 0 {
		maxScore += icp.PersonaWeight
		if matchAny(cctx.Title, icp.Personas) {
			score += icp.PersonaWeight
		}
	}

	if icp.SizeWeight > 0 && (icp.CompanySizeMin > 0 || icp.CompanySizeMax > 0) {
		// An unparsable or missing headcount drops the criterion from both
		// numerator and denominator: dirty data is not a mismatch.
		if size, ok := ParseCompanySize(cctx.CompanySize); ok {
			maxScore += icp.SizeWeight
			if sizeInRange(size.Value(), icp.CompanySizeMin, icp.CompanySizeMax) {
				score += icp.SizeWeight
			}
		}
	}

	if maxScore == 0 {
		return 0
	}
	return clampScore(int(math.Round(float64(score) / float64(maxScore) * 100)))
}

// ValidateICP checks an externally supplied ICP for internal consistency.
// A failing ICP is still scoreable (MatchICP degrades to 0); validation
// exists so callers can surface configuration mistakes early.
func ValidateICP(icp model.ICPCriteria) error {
	var errs []string

	if icp.IndustryWeight < 0 || icp.PersonaWeight < 0 || icp.SizeWeight < 0 {
		errs = append(errs, "criterion weights must be >= 0")
	}
	if sum := icp.WeightSum(); sum > 100 {
		errs = append(errs, "criterion weights must sum to at most 100")
	}
	if icp.CompanySizeMax > 0 && icp.CompanySizeMax < icp.CompanySizeMin {
		errs = append(errs, "company_size_max must be >= company_size_min")
	}
	if icp.WeightSum() == 0 {
		errs = append(errs, "at least one criterion must carry weight")
	}

	if len(errs) > 0 {
		return eris.Errorf("scoring: icp validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// matchAny reports whether the contact value matches any target using, in
// order: case-insensitive equality, substring containment in either
// direction, then token-set intersection.
func matchAny(value string, targets []string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return false
	}

	for _, target := range targets {
		t := strings.ToLower(strings.TrimSpace(target))
		if t == "" {
			continue
		}
		if v == t {
			return true
		}
		if strings.Contains(v, t) || strings.Contains(t, v) {
			return true
		}
		if tokensOverlap(v, t) {
			return true
		}
	}
	return false
}

// stopTokens are connective words that must not count as an overlap on
// their own.
var stopTokens = map[string]bool{
	"and": true, "the": true, "of": true, "for": true, "inc": true, "llc": true,
}

// tokensOverlap reports whether two strings share at least one meaningful word.
func tokensOverlap(a, b string) bool {
	aTokens := tokenize(a)
	if len(aTokens) == 0 {
		return false
	}
	for tok := range tokenize(b) {
		if aTokens[tok] {
			return true
		}
	}
	return false
}

func tokenize(s string) map[string]bool {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	tokens := make(map[string]bool, len(fields))
	for _, f := range fields {
		if len(f) < 3 || stopTokens[f] {
			continue
		}
		tokens[f] = true
	}
	return tokens
}

func sizeInRange(value float64, minSize, maxSize int) bool {
	if minSize > 0 && value < float64(minSize) {
		return false
	}
	if maxSize > 0 && value > float64(maxSize) {
		return false
	}
	return true
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
