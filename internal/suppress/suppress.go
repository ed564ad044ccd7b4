// Package suppress decides which warnings are dropped before reporting.
//
// There are two tiers. Global kinds are handed to the checker as its own
// ignore list, so they are never emitted. Rules drop warnings of one kind
// whose enclosing symbol matches a pattern, after attribution.
package suppress

import (
	"fmt"
	"regexp"
	"slices"

	"lintrun/internal/config"
	"lintrun/internal/warning"
)

// Rule matches a warning with a symbol, the exact Kind and a symbol matching
// the Symbol pattern anywhere.
type Rule struct {
	Symbol *regexp.Regexp
	Kind   string
	// when is an optional compiled condition; nil means always.
	when *condition
}

// Matches reports whether r suppresses w.
func (r Rule) Matches(w warning.Warning) bool {
	if !w.HasSymbol || w.Kind != r.Kind || !r.Symbol.MatchString(w.Symbol) {
		return false
	}
	return r.when == nil || r.when.eval(w)
}

// Filter holds both suppression tiers. The zero value suppresses nothing.
type Filter struct {
	global   []string
	rules    []Rule
	disabled bool
}

// New returns a filter for the given global kinds and rules.
func New(global []string, rules []Rule) *Filter {
	g := slices.DeleteFunc(slices.Clone(global), func(k string) bool { return k == "" })
	slices.Sort(g)
	g = slices.Compact(g)
	return &Filter{global: g, rules: append([]Rule(nil), rules...)}
}

// Disabled returns a filter that lets everything through.
func Disabled() *Filter {
	return &Filter{disabled: true}
}

// Compile builds a Filter from configuration.
func Compile(cfg config.Suppress) (*Filter, error) {
	if cfg.Disabled {
		return Disabled(), nil
	}
	rules := make([]Rule, 0, len(cfg.Rules))
	for i, rc := range cfg.Rules {
		re, err := regexp.Compile(rc.Symbol)
		if err != nil {
			return nil, fmt.Errorf("suppress rule #%d: symbol pattern: %w", i+1, err)
		}
		r := Rule{Symbol: re, Kind: rc.Kind}
		if rc.When != "" {
			r.when = &condition{source: rc.When, label: fmt.Sprintf("rule #%d", i+1)}
		}
		rules = append(rules, r)
	}
	return New(cfg.Global, rules), nil
}

// Global returns the kinds the checker should ignore itself, sorted.
func (f *Filter) Global() []string {
	if f == nil || f.disabled {
		return nil
	}
	return append([]string(nil), f.global...)
}

// Suppressed reports whether w should be dropped from the report.
func (f *Filter) Suppressed(w warning.Warning) bool {
	if f == nil || f.disabled || !w.HasSymbol {
		return false
	}
	for _, r := range f.rules {
		if r.Matches(w) {
			return true
		}
	}
	return false
}

// IsDisabled reports whether both tiers are off.
func (f *Filter) IsDisabled() bool {
	return f != nil && f.disabled
}
