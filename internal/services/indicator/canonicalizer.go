// Package indicator maps free-text calendar titles onto canonical indicator
// names through an ordered, first-match-wins regex table.
package indicator

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"MacroPulse/internal/domain/models"
)

// Rule pairs a canonical name with the pattern that recognises it.
type Rule struct {
	Canonical string
	Pattern   *regexp.Regexp
}

// RuleSpec is the uncompiled form of a Rule, as written in code or YAML.
type RuleSpec struct {
	Canonical string `yaml:"canonical"`
	Pattern   string `yaml:"pattern"`
}

// Compile turns specs into rules, keeping their order. Patterns are matched
// case-insensitively.
func Compile(specs []RuleSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for i, s := range specs {
		if strings.TrimSpace(s.Canonical) == "" {
			return nil, fmt.Errorf("rule %d: empty canonical name", i)
		}
		re, err := regexp.Compile("(?i)" + s.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, s.Canonical, err)
		}
		rules = append(rules, Rule{Canonical: s.Canonical, Pattern: re})
	}
	return rules, nil
}

// MustCompile is Compile for tables known to be valid.
func MustCompile(specs []RuleSpec) []Rule {
	rules, err := Compile(specs)
	if err != nil {
		panic(err)
	}
	return rules
}

// LoadRules reads an ordered rule table from a YAML file:
//
//	rules:
//	  - canonical: CPI YoY
//	    pattern: '\bCPI\b.*\bYoY\b'
func LoadRules(path string) ([]Rule, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var doc struct {
		Rules []RuleSpec `yaml:"rules"`
	}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if len(doc.Rules) == 0 {
		return nil, fmt.Errorf("rules file %s has no rules", path)
	}
	return Compile(doc.Rules)
}

// Canonicalizer resolves titles against an immutable rule table. It is safe
// for concurrent use.
type Canonicalizer struct {
	rules []Rule
}

// New builds a Canonicalizer over rules. A nil or empty table falls back to
// DefaultRules.
func New(rules []Rule) *Canonicalizer {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return &Canonicalizer{rules: cp}
}

// Canonicalize returns the canonical name of the first rule matching title.
func (c *Canonicalizer) Canonicalize(title string) (string, bool) {
	for _, r := range c.rules {
		if r.Pattern.MatchString(title) {
			return r.Canonical, true
		}
	}
	return "", false
}

// Rules returns a copy of the table in priority order.
func (c *Canonicalizer) Rules() []Rule {
	cp := make([]Rule, len(c.rules))
	copy(cp, c.rules)
	return cp
}

// SeedIndicators derives one Indicator row per canonical name in the table.
// Releases where a rise is bad news (unemployment, claims) get inverted
// polarity; everything else defaults to bullish with zero tolerance.
func (c *Canonicalizer) SeedIndicators() []models.Indicator {
	seen := make(map[string]struct{}, len(c.rules))
	out := make([]models.Indicator, 0, len(c.rules))
	for _, r := range c.rules {
		if _, ok := seen[r.Canonical]; ok {
			continue
		}
		seen[r.Canonical] = struct{}{}
		ind := models.DefaultIndicator(r.Canonical)
		ind.PositiveIsBullish = !isInverted(r.Canonical)
		ind.SurpriseTolerance = decimal.Zero
		out = append(out, ind)
	}
	return out
}

func isInverted(name string) bool {
	lower := strings.ToLower(name)
	for _, kw := range invertedKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
