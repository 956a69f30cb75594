package scoring

import (
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/prospect-intel/internal/model"
)

// Thresholds map a framework total to a tier.
type Thresholds struct {
	HotMin  int `json:"hot_min" yaml:"hot_min" mapstructure:"hot_min"`
	WarmMin int `json:"warm_min" yaml:"warm_min" mapstructure:"warm_min"`
}

// DefaultThresholds returns the standard tier boundaries.
func DefaultThresholds() Thresholds {
	return Thresholds{HotMin: 71, WarmMin: 40}
}

// TierFor assigns the qualification tier for a total score.
func TierFor(score int, t Thresholds) model.Tier {
	switch {
	case score >= t.HotMin:
		return model.TierHot
	case score >= t.WarmMin:
		return model.TierWarm
	default:
		return model.TierCold
	}
}

// Component is one scored dimension of a qualification framework. Baseline
// components award their full points unconditionally, covering dimensions
// that cannot be derived from available data. Conditional components award
// a fraction of their points decided by the named evaluator.
type Component struct {
	Name      string `yaml:"name"`
	Points    int    `yaml:"points"`
	Baseline  bool   `yaml:"baseline,omitempty"`
	Evaluator string `yaml:"evaluator,omitempty"`
}

// FrameworkDef is a qualification framework as configuration: an ordered
// component list whose points sum to at most 100.
type FrameworkDef struct {
	Name       string      `yaml:"name"`
	Components []Component `yaml:"components"`
}

// Evaluator scores one conditional component, returning a fraction in
// [0, 1] of the component's points. Missing or malformed input data must
// yield 0, never an error.
type Evaluator func(cctx model.ContactContext, enrichment *model.EnrichmentResult) float64

// evaluators is the registry of conditional component evaluators, keyed by
// the name a FrameworkDef component references.
var evaluators = map[string]Evaluator{
	"authority": evalAuthority,
	"budget":    evalBudget,
	"need":      evalNeed,
	"timing":    evalTiming,
	"interest":  evalInterest,
}

// BANT returns the four-component Budget/Authority/Need/Timing framework.
// Timing is a baseline dimension: a buying window cannot be confirmed from
// research data alone, so it gets benefit of the doubt.
func BANT() FrameworkDef {
	return FrameworkDef{
		Name: "BANT",
		Components: []Component{
			{Name: "budget", Points: 30, Evaluator: "budget"},
			{Name: "authority", Points: 30, Evaluator: "authority"},
			{Name: "need", Points: 25, Evaluator: "need"},
			{Name: "timing", Points: 15, Baseline: true},
		},
	}
}

// FAINT returns the five-component Funds/Authority/Interest/Need/Timing
// framework for situational qualification. Interest is baseline: without
// engagement data every prospect starts neutral.
func FAINT() FrameworkDef {
	return FrameworkDef{
		Name: "FAINT",
		Components: []Component{
			{Name: "funds", Points: 25, Evaluator: "budget"},
			{Name: "authority", Points: 20, Evaluator: "authority"},
			{Name: "interest", Points: 20, Baseline: true},
			{Name: "need", Points: 20, Evaluator: "need"},
			{Name: "timing", Points: 15, Evaluator: "timing"},
		},
	}
}

// DefaultFrameworks returns the frameworks scored for every contact.
func DefaultFrameworks() []FrameworkDef {
	return []FrameworkDef{BANT(), FAINT()}
}

// ScoreFramework scores one contact against one framework definition.
// Totals are absolute sums of component points (not renormalized), clamped
// to [0, 100]. The computation is deterministic and side-effect free.
func ScoreFramework(def FrameworkDef, cctx model.ContactContext, enrichment *model.EnrichmentResult, t Thresholds) model.ScoreResult {
	breakdown := make(map[string]int, len(def.Components))
	total := 0

	for _, c := range def.Components {
		points := 0
		switch {
		case c.Baseline:
			points = c.Points
		case c.Evaluator != "":
			eval, ok := evaluators[c.Evaluator]
			if !ok {
				zap.L().Warn("scoring: unknown evaluator, component scores zero",
					zap.String("framework", def.Name),
					zap.String("component", c.Name),
					zap.String("evaluator", c.Evaluator),
				)
				break
			}
			frac := eval(cctx, enrichment)
			if frac < 0 {
				frac = 0
			}
			if frac > 1 {
				frac = 1
			}
			points = int(math.Round(float64(c.Points) * frac))
		}
		breakdown[c.Name] = points
		total += points
	}

	total = clampScore(total)
	return model.ScoreResult{
		Framework: def.Name,
		Total:     total,
		Breakdown: breakdown,
		Tier:      TierFor(total, t),
	}
}

// ScoreAll runs the ICP matcher and every framework for one contact,
// returning the ICP score plus one ScoreResult per framework.
func ScoreAll(cctx model.ContactContext, enrichment *model.EnrichmentResult, icp model.ICPCriteria, t Thresholds) (int, []model.ScoreResult) {
	icpScore := MatchICP(cctx, icp)
	frameworks := DefaultFrameworks()
	results := make([]model.ScoreResult, 0, len(frameworks))
	for _, def := range frameworks {
		results = append(results, ScoreFramework(def, cctx, enrichment, t))
	}
	return icpScore, results
}

// seniorityTiers orders title keywords from highest signal to lowest. First
// match wins.
var seniorityTiers = []struct {
	keywords []string
	frac     float64
}{
	{[]string{"owner", "founder", "ceo", "president", "chief", "cfo", "coo", "cto", "cmo", "cro"}, 1.0},
	{[]string{"vp", "vice president", "head of", "director", "partner", "principal"}, 0.75},
	{[]string{"manager", "lead", "senior"}, 0.5},
}

// evalAuthority scores decision-making power from the contact's title.
func evalAuthority(cctx model.ContactContext, _ *model.EnrichmentResult) float64 {
	title := strings.ToLower(cctx.Title)
	if title == "" {
		return 0
	}
	for _, tier := range seniorityTiers {
		for _, kw := range tier.keywords {
			if strings.Contains(title, kw) {
				return tier.frac
			}
		}
	}
	return 0.25
}

// evalBudget scores spending capacity from company headcount. An unparsable
// headcount contributes nothing rather than erroring.
func evalBudget(cctx model.ContactContext, _ *model.EnrichmentResult) float64 {
	size, ok := ParseCompanySize(cctx.CompanySize)
	if !ok {
		return 0
	}
	switch v := size.Value(); {
	case v >= 200:
		return 1.0
	case v >= 50:
		return 0.75
	case v >= 10:
		return 0.5
	case v > 0:
		return 0.25
	default:
		return 0
	}
}

// evalNeed scores problem fit from the research record: the open-ended
// sales-intelligence and industry domains carry the pain-point analysis.
func evalNeed(_ model.ContactContext, enrichment *model.EnrichmentResult) float64 {
	if enrichment == nil {
		return 0
	}
	open := enrichment.DomainContent(model.DomainOpen) != ""
	industry := enrichment.DomainContent(model.DomainIndustry) != ""
	switch {
	case open && industry:
		return 1.0
	case open || industry:
		return 0.6
	case enrichment.DomainContent(model.DomainCompany) != "":
		return 0.3
	default:
		return 0
	}
}

// evalTiming scores buying-window signals from recent company news.
func evalTiming(_ model.ContactContext, enrichment *model.EnrichmentResult) float64 {
	if enrichment == nil {
		return 0
	}
	if enrichment.DomainContent(model.DomainNews) != "" {
		return 1.0
	}
	return 0
}

// evalInterest scores engagement signals from the person research domain.
func evalInterest(_ model.ContactContext, enrichment *model.EnrichmentResult) float64 {
	if enrichment == nil {
		return 0
	}
	if enrichment.DomainContent(model.DomainPerson) != "" {
		return 1.0
	}
	return 0
}
