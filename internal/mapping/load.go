package mapping

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// ruleFile is the on-disk shape of a rule file.
type ruleFile struct {
	Rules []Rule `json:"rules" yaml:"rules"`
}

// Load reads a rule file (.yaml/.yml or .json) and returns the
// validated set. The file replaces the default set entirely; use
// LoadOver to layer a partial file on top of the defaults.
func Load(path string) (*RuleSet, error) {
	rules, err := readRules(path)
	if err != nil {
		return nil, err
	}
	rs, err := NewRuleSet(rules)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// LoadOver reads a rule file and overlays it on base: file rules
// replace same-named base rules and add new fields.
func LoadOver(path string, base *RuleSet) (*RuleSet, error) {
	overlay, err := readRules(path)
	if err != nil {
		return nil, err
	}
	replaced := make(map[string]bool, len(overlay))
	for _, r := range overlay {
		replaced[r.Field] = true
	}
	var merged []Rule
	for _, r := range base.Rules() {
		if !replaced[r.Field] {
			merged = append(merged, *r)
		}
	}
	merged = append(merged, overlay...)
	rs, err := NewRuleSet(merged)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

func readRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	var rf ruleFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &rf); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &rf); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported rule file extension: %s", filepath.Ext(path))
	}
	if len(rf.Rules) == 0 {
		return nil, fmt.Errorf("%s: no rules declared", path)
	}
	return rf.Rules, nil
}
