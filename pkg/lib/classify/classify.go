// Package classify maps free-form tool output to structured outcomes through
// an ordered list of rules. The first matching rule wins, so callers extend
// behavior by inserting rules rather than branching on text.
package classify

import (
	"regexp"
	"strings"
)

// Predicate reports whether text matches.
type Predicate func(text string) bool

// Rule pairs a predicate with the outcome it yields.
type Rule[T any] struct {
	Name    string
	Match   Predicate
	Outcome T
}

// Rules is an ordered rule list.
type Rules[T any] []Rule[T]

// Classify returns the outcome of the first rule matching text.
func (rs Rules[T]) Classify(text string) (T, bool) {
	for _, r := range rs {
		if r.Match != nil && r.Match(text) {
			return r.Outcome, true
		}
	}
	var zero T
	return zero, false
}

// Prepend returns a new list with extra evaluated before rs.
func (rs Rules[T]) Prepend(extra ...Rule[T]) Rules[T] {
	out := make(Rules[T], 0, len(extra)+len(rs))
	out = append(out, extra...)
	return append(out, rs...)
}

// Contains matches when text contains any of phrases, ignoring case.
func Contains(phrases ...string) Predicate {
	lowered := make([]string, len(phrases))
	for i, p := range phrases {
		lowered[i] = strings.ToLower(p)
	}
	return func(text string) bool {
		t := strings.ToLower(text)
		for _, p := range lowered {
			if p != "" && strings.Contains(t, p) {
				return true
			}
		}
		return false
	}
}

// Regexp matches when text matches pattern. It panics on an invalid pattern,
// like regexp.MustCompile.
func Regexp(pattern string) Predicate {
	re := regexp.MustCompile(pattern)
	return re.MatchString
}

// Any matches when any of preds matches.
func Any(preds ...Predicate) Predicate {
	return func(text string) bool {
		for _, p := range preds {
			if p(text) {
				return true
			}
		}
		return false
	}
}
