package scoring

import (
	"strconv"
	"strings"
)

// CompanySize is a parsed headcount figure. Hi is zero when the input gave
// only a lower bound (e.g. "50+").
type CompanySize struct {
	Lo float64
	Hi float64
}

// Value returns the representative headcount: the midpoint for closed
// ranges, the lower bound otherwise.
func (c CompanySize) Value() float64 {
	if c.Hi > 0 {
		return (c.Lo + c.Hi) / 2
	}
	return c.Lo
}

// ParseCompanySize parses headcount strings as they appear in CRM exports:
// "250", "1,200 employees", "50+", "50-200". Returns false for anything it
// cannot read; callers treat that as "criterion absent", never an error.
func ParseCompanySize(s string) (CompanySize, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, noise := range []string{"employees", "employee", "people", "staff", ","} {
		s = strings.ReplaceAll(s, noise, "")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return CompanySize{}, false
	}

	// "N+" — lower bound only.
	if strings.HasSuffix(s, "+") {
		n, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "+")), 64)
		if err != nil || n < 0 {
			return CompanySize{}, false
		}
		return CompanySize{Lo: n}, true
	}

	// "N-M" — closed range.
	if lo, hi, found := strings.Cut(s, "-"); found {
		loN, loErr := strconv.ParseFloat(strings.TrimSpace(lo), 64)
		hiN, hiErr := strconv.ParseFloat(strings.TrimSpace(hi), 64)
		if loErr != nil || hiErr != nil || loN < 0 || hiN < loN {
			return CompanySize{}, false
		}
		return CompanySize{Lo: loN, Hi: hiN}, true
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n < 0 {
		return CompanySize{}, false
	}
	return CompanySize{Lo: n, Hi: n}, true
}
