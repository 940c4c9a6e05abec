// Package matcher resolves the category of a transaction from its
// description and an ordered set of categorization rules.
//
// Everything here is pure: no I/O, no logging and no shared state, so the
// functions are safe for concurrent use and return identical results for
// identical inputs.
package matcher

import (
	"sort"
	"strings"

	"finance-ledger/internal/models"

	"github.com/google/uuid"
)

// SkippedRule records a rule that could not be evaluated
type SkippedRule struct {
	RuleID  uuid.UUID
	Pattern string
	Err     error
}

// Result is the outcome of evaluating a description against a rule set
type Result struct {
	CategoryID *uuid.UUID
	RuleID     *uuid.UUID
	Skipped    []SkippedRule
}

// Matched reports whether any rule matched
func (r Result) Matched() bool {
	return r.CategoryID != nil
}

// Match returns the category of the first rule matching description, or nil.
// Rules must already be filtered to enabled ones and ordered with SortRules.
func Match(description string, rules []models.CategorizationRule) *uuid.UUID {
	return Evaluate(description, rules).CategoryID
}

// Evaluate walks rules in order and stops at the first match. Regex rules
// whose pattern does not compile are reported in Skipped and never match.
func Evaluate(description string, rules []models.CategorizationRule) Result {
	var result Result
	lowered := strings.ToLower(description)

	for i := range rules {
		rule := &rules[i]

		matched, err := matches(rule, description, lowered)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedRule{
				RuleID:  rule.ID,
				Pattern: rule.Pattern,
				Err:     err,
			})
			continue
		}

		if matched {
			categoryID := rule.CategoryID
			ruleID := rule.ID
			result.CategoryID = &categoryID
			result.RuleID = &ruleID
			return result
		}
	}

	return result
}

func matches(rule *models.CategorizationRule, description, lowered string) (bool, error) {
	if rule.IsRegex {
		re, err := models.CompileRulePattern(rule.Pattern)
		if err != nil {
			return false, err
		}
		return re.MatchString(description), nil
	}

	if rule.Pattern == "" {
		return false, nil
	}
	return strings.Contains(lowered, strings.ToLower(rule.Pattern)), nil
}

// SortRules orders rules by priority descending, then creation time
// ascending, then id, giving a total order independent of storage order.
func SortRules(rules []models.CategorizationRule) {
	sort.SliceStable(rules, func(i, j int) bool {
		return Less(&rules[i], &rules[j])
	})
}

// Less reports whether a evaluates before b
func Less(a, b *models.CategorizationRule) bool {
	if a.Priority != b.Priority {
		return a.Priority > b.Priority
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return strings.Compare(a.ID.String(), b.ID.String()) < 0
}

// EnabledOnly returns the enabled rules in their original order
func EnabledOnly(rules []models.CategorizationRule) []models.CategorizationRule {
	enabled := make([]models.CategorizationRule, 0, len(rules))
	for _, r := range rules {
		if r.IsEnabled {
			enabled = append(enabled, r)
		}
	}
	return enabled
}
