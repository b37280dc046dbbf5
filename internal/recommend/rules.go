package recommend

import (
	"fmt"
	"strings"
)

// Factor names one component of the recommendation score.
type Factor string

const (
	FactorDistance     Factor = "distance"
	FactorCategory     Factor = "category"
	FactorAvailability Factor = "availability"
	FactorWorkload     Factor = "workload"
	FactorPerformance  Factor = "performance"
)

// ruleInput is what a justification message may refer to.
type ruleInput struct {
	factors  Factors
	category string
	counters counterView
}

type counterView struct {
	availableResponders int
	activeIncidents     int
}

// Rule attaches a reason to a recommendation when its predicate holds for the
// factor score. Rules for one factor are checked in order and the first match wins.
type Rule struct {
	Factor  Factor
	Applies func(score float64) bool
	Message func(in ruleInput) string
}

func above(threshold float64) func(float64) bool {
	return func(score float64) bool { return score > threshold }
}

func equals(value float64) func(float64) bool {
	return func(score float64) bool { return score == value }
}

func static(msg string) func(ruleInput) string {
	return func(ruleInput) string { return msg }
}

// DefaultRules is the justification table used by the recommender.
var DefaultRules = []Rule{
	{Factor: FactorDistance, Applies: above(20), Message: static("very close to incident")},
	{Factor: FactorDistance, Applies: above(10), Message: static("within short range")},
	{Factor: FactorCategory, Applies: equals(categoryExactScore), Message: func(in ruleInput) string {
		return fmt.Sprintf("specialized in %s response", strings.ReplaceAll(in.category, "_", " "))
	}},
	{Factor: FactorCategory, Applies: equals(categoryFallbackScore), Message: static("disaster management coverage")},
	{Factor: FactorAvailability, Applies: above(10), Message: func(in ruleInput) string {
		return fmt.Sprintf("%d responders available", in.counters.availableResponders)
	}},
	{Factor: FactorWorkload, Applies: above(10), Message: static("low current workload")},
	{Factor: FactorPerformance, Applies: above(7), Message: static("fast average response time")},
}

func justify(rules []Rule, in ruleInput) []string {
	reasons := make([]string, 0, len(rules))
	matched := make(map[Factor]bool, 5)
	for _, r := range rules {
		if matched[r.Factor] {
			continue
		}
		if r.Applies(in.factors.score(r.Factor)) {
			matched[r.Factor] = true
			reasons = append(reasons, r.Message(in))
		}
	}
	return reasons
}
