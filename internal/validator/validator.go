// Package validator scores generated text against declarative rules.
package validator

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule types.
const (
	TypeContains    = "contains"
	TypeNotContains = "not_contains"
	TypeMinLength   = "min_length"
	TypeMaxLength   = "max_length"
)

// Value is a rule operand. It accepts strings and numbers.
type Value string

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("validator: rule value must be a scalar, got %v", node.Tag)
	}
	*v = Value(node.Value)
	return nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Value(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("validator: rule value must be a string or number")
	}
	*v = Value(n.String())
	return nil
}

// Rule is a single predicate over the text.
type Rule struct {
	Type    string `yaml:"type" json:"type"`
	Value   Value  `yaml:"value" json:"value"`
	Message string `yaml:"message,omitempty" json:"message,omitempty"`
}

// Rules partitions rules by severity. Primary rules decide Passed; secondary
// rules only affect Score.
type Rules struct {
	Primary   map[string]Rule `yaml:"primary" json:"primary"`
	Secondary map[string]Rule `yaml:"secondary" json:"secondary"`
}

// Len is the total number of rules.
func (r Rules) Len() int { return len(r.Primary) + len(r.Secondary) }

// Result is the outcome of Validate.
type Result struct {
	Passed          bool            `json:"passed"`
	Score           float64         `json:"score"`
	CriteriaResults map[string]bool `json:"criteria_results"`
	Suggestions     []string        `json:"suggestions"`
}

// ParseRules decodes a YAML rule block. Empty input yields no rules.
func ParseRules(data []byte) (Rules, error) {
	var r Rules
	if strings.TrimSpace(string(data)) == "" {
		return r, nil
	}
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("validator: parse rules: %w", err)
	}
	return r, nil
}

// Substitute returns a copy of r with every {name} in values and messages
// replaced by vars[name]. Replacement is a single pass over sorted names, so
// a value that itself contains {other} is kept verbatim.
func Substitute(r Rules, vars map[string]string) Rules {
	names := make([]string, 0, len(vars))
	for k := range vars {
		names = append(names, k)
	}
	sort.Strings(names)
	pairs := make([]string, 0, 2*len(names))
	for _, k := range names {
		pairs = append(pairs, "{"+k+"}", vars[k])
	}
	replace := strings.NewReplacer(pairs...).Replace
	sub := func(in map[string]Rule) map[string]Rule {
		if in == nil {
			return nil
		}
		out := make(map[string]Rule, len(in))
		for name, rule := range in {
			rule.Value = Value(replace(string(rule.Value)))
			rule.Message = replace(rule.Message)
			out[name] = rule
		}
		return out
	}
	return Rules{Primary: sub(r.Primary), Secondary: sub(r.Secondary)}
}

// Validate checks text against rules. Rules are evaluated in name order,
// primary before secondary. Score is the fraction of passing rules, or 1
// with no rules. Unknown rule types pass.
func Validate(text string, rules Rules) Result {
	res := Result{
		Passed:          true,
		CriteriaResults: make(map[string]bool, rules.Len()),
		Suggestions:     []string{},
	}
	passing := 0
	for _, name := range sortedNames(rules.Primary) {
		rule := rules.Primary[name]
		ok := rule.check(text)
		res.CriteriaResults[name] = ok
		if ok {
			passing++
			continue
		}
		res.Passed = false
		res.Suggestions = append(res.Suggestions, "Primary Fail: "+rule.describe(name))
	}
	for _, name := range sortedNames(rules.Secondary) {
		rule := rules.Secondary[name]
		ok := rule.check(text)
		if _, dup := res.CriteriaResults[name]; !dup {
			res.CriteriaResults[name] = ok
		}
		if ok {
			passing++
			continue
		}
		res.Suggestions = append(res.Suggestions, "Secondary Hint: "+rule.describe(name))
	}

	res.Score = 1
	if total := rules.Len(); total > 0 {
		res.Score = float64(passing) / float64(total)
	}
	return res
}

func (r Rule) describe(name string) string {
	if r.Message != "" {
		return r.Message
	}
	return name
}

func (r Rule) check(text string) bool {
	switch r.Type {
	case TypeContains:
		return strings.Contains(strings.ToLower(text), strings.ToLower(string(r.Value)))
	case TypeNotContains:
		return !strings.Contains(strings.ToLower(text), strings.ToLower(string(r.Value)))
	case TypeMinLength, TypeMaxLength:
		limit, err := strconv.Atoi(strings.TrimSpace(string(r.Value)))
		if err != nil {
			return false
		}
		words := len(strings.Fields(text))
		if r.Type == TypeMinLength {
			return words >= limit
		}
		return words <= limit
	default:
		return true
	}
}

func sortedNames(m map[string]Rule) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
