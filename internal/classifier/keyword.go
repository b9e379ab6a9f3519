package classifier

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/kiribu/budget-buddy/internal/ledger/model"
)

//go:embed rules.yaml
var defaultRules []byte

type Rule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

type Rules struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads rules from a YAML file, or the built-in table when path is
// empty.
func LoadRules(path string) (*Rules, error) {
	var rules Rules
	if path == "" {
		if err := cleanenv.ParseYAML(bytes.NewReader(defaultRules), &rules); err != nil {
			return nil, fmt.Errorf("failed to parse default rules: %w", err)
		}
		return &rules, nil
	}

	if err := cleanenv.ReadConfig(path, &rules); err != nil {
		return nil, fmt.Errorf("failed to read rules from %s: %w", path, err)
	}
	return &rules, nil
}

type keywordRule struct {
	category model.Category
	keywords []string
}

// Keyword assigns the category of the first rule with a keyword contained in
// the description.
type Keyword struct {
	rules []keywordRule
}

func NewKeyword(rules *Rules) (*Keyword, error) {
	k := &Keyword{}
	for i, rule := range rules.Rules {
		category, err := model.ParseCategory(rule.Category)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}

		compiled := keywordRule{category: category}
		for _, keyword := range rule.Keywords {
			keyword = strings.ToLower(strings.TrimSpace(keyword))
			if keyword != "" {
				compiled.keywords = append(compiled.keywords, keyword)
			}
		}
		k.rules = append(k.rules, compiled)
	}
	return k, nil
}

func (k *Keyword) Classify(description string) (model.Category, bool) {
	description = strings.ToLower(description)
	for _, rule := range k.rules {
		for _, keyword := range rule.keywords {
			if strings.Contains(description, keyword) {
				return rule.category, true
			}
		}
	}
	return "", false
}
