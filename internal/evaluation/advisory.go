package evaluation

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// Advisory flags a generator-supplied number outside its documented range.
// Values are passed through unchanged; advisories are informational only.
type Advisory struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type rangeRule struct {
	field   string
	expr    string
	message string
	value   func(*Result) float64
}

func riskRule(c RiskCategory) rangeRule {
	return rangeRule{
		field:   "risks." + string(c) + ".score",
		expr:    "value >= 1.0 && value <= 10.0",
		message: c.Label() + " risk score should be an integer from 1 to 10",
		value: func(r *Result) float64 {
			a, _ := r.Risks.Get(c)
			return float64(a.Score)
		},
	}
}

func defaultRules() []rangeRule {
	rules := []rangeRule{{
		field:   "successRate",
		expr:    "value >= 0.0 && value <= 100.0",
		message: "success rate should be a percentage from 0 to 100",
		value:   func(r *Result) float64 { return r.SuccessRate },
	}}
	for _, c := range RiskCategories {
		rules = append(rules, riskRule(c))
	}
	return rules
}

type compiledRule struct {
	rangeRule
	prog cel.Program
}

// Advisor checks parsed results against range rules compiled once.
type Advisor struct {
	rules []compiledRule
}

// NewAdvisor compiles the default range rules.
func NewAdvisor() (*Advisor, error) {
	env, err := cel.NewEnv(cel.Variable("value", cel.DoubleType))
	if err != nil {
		return nil, fmt.Errorf("evaluation: create CEL environment: %w", err)
	}
	a := &Advisor{}
	for _, r := range defaultRules() {
		ast, issues := env.Compile(r.expr)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("evaluation: compile rule %s: %w", r.field, issues.Err())
		}
		prog, err := env.Program(ast, cel.CostLimit(10000))
		if err != nil {
			return nil, fmt.Errorf("evaluation: program for rule %s: %w", r.field, err)
		}
		a.rules = append(a.rules, compiledRule{rangeRule: r, prog: prog})
	}
	return a, nil
}

// Check returns one advisory per rule the result does not satisfy.
// A nil Advisor reports nothing.
func (a *Advisor) Check(r *Result) []Advisory {
	if a == nil || r == nil {
		return nil
	}
	var out []Advisory
	for _, rule := range a.rules {
		v := rule.value(r)
		val, _, err := rule.prog.Eval(map[string]any{"value": v})
		if err != nil {
			out = append(out, Advisory{Field: rule.field, Message: fmt.Sprintf("could not check value %v: %v", v, err)})
			continue
		}
		if ok, isBool := val.Value().(bool); isBool && ok {
			continue
		}
		out = append(out, Advisory{Field: rule.field, Message: fmt.Sprintf("%s (got %v)", rule.message, v)})
	}
	return out
}
