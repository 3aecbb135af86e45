// Package validation implements the rule-based checks applied to the
// checkout form fields.
package validation

import "strings"

// Rule is a predicate over a trimmed field value and the message shown
// when the predicate fails.
type Rule struct {
	Check   func(value string) bool
	Message string
}

// Result is the outcome of validating one field.
type Result struct {
	Valid   bool
	Message string
}

// Validate trims value and evaluates rules in order. The first failing rule
// wins and its message is returned; a value passing every rule is valid with
// no message.
func Validate(value string, rules []Rule) Result {
	v := strings.TrimSpace(value)
	for _, r := range rules {
		if !r.Check(v) {
			return Result{Valid: false, Message: r.Message}
		}
	}
	return Result{Valid: true}
}
