// Package rules evaluates license assignments against a data-driven rule
// set. SKU groups come from configuration; each rule is a named predicate
// over the user's matched-group memberships, so adding a rule never touches
// the evaluator.
package rules

import (
	"sort"

	"tenant-reports/internal/domain/license"
)

// Membership is the view of one user a rule predicate sees: which of the
// user's tracked SKUs fall into which group.
type Membership struct {
	matched map[string][]string
}

// CountIn returns how many of the user's matched SKUs are in the group.
func (m Membership) CountIn(group string) int {
	return len(m.matched[group])
}

// HasAny reports whether any matched SKU is in the group.
func (m Membership) HasAny(group string) bool {
	return len(m.matched[group]) > 0
}

// Outside returns the user's matched SKUs from group that are absent from
// allowedGroup.
func (m Membership) Outside(group, allowedGroup string) []string {
	allowed := make(map[string]struct{}, len(m.matched[allowedGroup]))
	for _, sku := range m.matched[allowedGroup] {
		allowed[sku] = struct{}{}
	}
	var out []string
	for _, sku := range m.matched[group] {
		if _, ok := allowed[sku]; !ok {
			out = append(out, sku)
		}
	}
	return out
}

// Rule is one named overprovisioning check.
type Rule struct {
	Name    string
	Applies func(Membership) bool
}

// AtLeast flags users holding n or more SKUs from a group.
func AtLeast(group string, n int) func(Membership) bool {
	return func(m Membership) bool {
		return m.CountIn(group) >= n
	}
}

// PairedOutside flags users holding any baseGroup SKU together with a
// withGroup SKU that is not in allowedGroup. Fires once no matter how many
// offending SKUs the user holds.
func PairedOutside(baseGroup, withGroup, allowedGroup string) func(Membership) bool {
	return func(m Membership) bool {
		return m.HasAny(baseGroup) && len(m.Outside(withGroup, allowedGroup)) > 0
	}
}

// Engine applies an ordered rule list to users. The tracked set is the
// union of all group SKUs; users holding no tracked SKU do not participate.
type Engine struct {
	groups  map[string]map[string]struct{}
	tracked map[string]struct{}
	names   map[string]string
	rules   []Rule
}

// NewEngine builds an engine from SKU groups, SKU display names and the
// rule list.
func NewEngine(groups map[string][]string, skuNames map[string]string, ruleList []Rule) *Engine {
	e := &Engine{
		groups:  make(map[string]map[string]struct{}, len(groups)),
		tracked: make(map[string]struct{}),
		names:   skuNames,
		rules:   ruleList,
	}
	for name, skus := range groups {
		set := make(map[string]struct{}, len(skus))
		for _, sku := range skus {
			set[sku] = struct{}{}
			e.tracked[sku] = struct{}{}
		}
		e.groups[name] = set
	}
	return e
}

// membership intersects the user's SKUs with the tracked set, per group.
func (e *Engine) membership(u license.UserRecord) (Membership, []string) {
	m := Membership{matched: make(map[string][]string)}
	var matchedSKUs []string
	for _, sku := range u.SKUIDs {
		if _, ok := e.tracked[sku]; !ok {
			continue
		}
		matchedSKUs = append(matchedSKUs, sku)
		for group, set := range e.groups {
			if _, ok := set[sku]; ok {
				m.matched[group] = append(m.matched[group], sku)
			}
		}
	}
	return m, matchedSKUs
}

// skuName resolves a SKU GUID to its display name, falling back to the
// GUID itself.
func (e *Engine) skuName(sku string) string {
	if name, ok := e.names[sku]; ok && name != "" {
		return name
	}
	return sku
}

// HoldsTracked reports whether the user participates in the audit at all.
func (e *Engine) HoldsTracked(u license.UserRecord) bool {
	_, matched := e.membership(u)
	return len(matched) > 0
}

// Evaluate runs every rule against one user. The second result is false
// when the user holds no tracked SKU or violates nothing.
func (e *Engine) Evaluate(u license.UserRecord) (license.Violation, bool) {
	m, matched := e.membership(u)
	if len(matched) == 0 {
		return license.Violation{}, false
	}

	var violated []string
	for _, rule := range e.rules {
		if rule.Applies(m) {
			violated = append(violated, rule.Name)
		}
	}
	if len(violated) == 0 {
		return license.Violation{}, false
	}

	names := make([]string, 0, len(matched))
	for _, sku := range matched {
		names = append(names, e.skuName(sku))
	}
	sort.Strings(names)

	return license.Violation{
		DisplayName:     u.DisplayName,
		PrincipalName:   u.PrincipalName,
		Enabled:         u.Enabled,
		MatchedLicenses: names,
		Rules:           violated,
	}, true
}

// EvaluateAll folds Evaluate over a user list, preserving input order.
func (e *Engine) EvaluateAll(users []license.UserRecord) []license.Violation {
	var out []license.Violation
	for _, u := range users {
		if v, ok := e.Evaluate(u); ok {
			out = append(out, v)
		}
	}
	return out
}

// Names of the built-in rules.
const (
	RuleMultiplePremium = "Multiple premium"
	RuleF3Conflict      = "F3 conflict"
)

// DefaultRules assembles the built-in rule list against the configured
// group names.
func DefaultRules(premiumGroup, f3Group, f3AllowedGroup string) []Rule {
	return []Rule{
		{Name: RuleMultiplePremium, Applies: AtLeast(premiumGroup, 2)},
		{Name: RuleF3Conflict, Applies: PairedOutside(f3Group, premiumGroup, f3AllowedGroup)},
	}
}
