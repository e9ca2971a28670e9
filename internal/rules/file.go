// Package rules loads YAML categorization rules into the database and
// applies them to uncategorized transactions.
package rules

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rumor-ml/commons.systems/finledger/internal/domain"
	"github.com/rumor-ml/commons.systems/finledger/internal/store"
)

//go:embed rules.yaml
var embeddedRules []byte

// FileRule is a single rule as it appears in a YAML rules file.
type FileRule struct {
	Pattern  string `yaml:"pattern"`
	Category string `yaml:"category"`
}

// RuleSet represents the top-level YAML structure.
type RuleSet struct {
	Rules []FileRule `yaml:"rules"`
}

// ParseRuleSet parses and validates YAML rule data.
func ParseRuleSet(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("failed to parse YAML rules (check syntax, indentation, and field names): %w", err)
	}

	for i, rule := range rs.Rules {
		if strings.TrimSpace(rule.Pattern) == "" {
			return nil, fmt.Errorf("rule %d: pattern cannot be empty", i)
		}
		if strings.TrimSpace(rule.Category) == "" {
			return nil, fmt.Errorf("rule %d (%s): category cannot be empty", i, rule.Pattern)
		}
	}

	return &rs, nil
}

// LoadEmbedded parses the embedded starter rules.yaml.
func LoadEmbedded() (*RuleSet, error) {
	rs, err := ParseRuleSet(embeddedRules)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded rules (possible binary corruption): %w", err)
	}
	return rs, nil
}

// LoadFromFile parses a rules file from a filesystem path.
func LoadFromFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	rs, err := ParseRuleSet(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %q: %w", path, err)
	}
	return rs, nil
}

// Seed writes a rule set into the database. Categories are created on
// first reference and rules whose pattern already exists are left
// untouched, so seeding the same file twice is a no-op. Returns the
// number of rules actually inserted.
func Seed(ctx context.Context, s *store.Store, rs *RuleSet) (int, error) {
	loaded := 0
	err := s.WithTx(ctx, func(tx *store.Tx) error {
		for _, fr := range rs.Rules {
			categoryID, err := tx.EnsureCategory(ctx, fr.Category)
			if err != nil {
				return fmt.Errorf("failed to ensure category %q: %w", fr.Category, err)
			}
			rule, err := domain.NewRule(fr.Pattern, categoryID)
			if err != nil {
				return err
			}
			inserted, err := tx.InsertRule(ctx, rule)
			if err != nil {
				return fmt.Errorf("failed to insert rule %q: %w", fr.Pattern, err)
			}
			if inserted {
				loaded++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return loaded, nil
}
