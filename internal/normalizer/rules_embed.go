package normalizer

import (
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed data/route_patterns.yaml
var routePatternsYAML []byte

// PatternRule một rule trong bảng pattern (tên + regex)
type PatternRule struct {
	Name  string `yaml:"name"`
	Regex string `yaml:"regex"`
}

// NumericFallbackRule cấu hình chọn số nhà khi không có dạng xx/yy
type NumericFallbackRule struct {
	Regex             string `yaml:"regex"`
	MinLength         int    `yaml:"min_length"`
	MaxLength         int    `yaml:"max_length"`
	MinValueExclusive int    `yaml:"min_value_exclusive"`
	MaxValueExclusive int    `yaml:"max_value_exclusive"`
	PreferredLength   int    `yaml:"preferred_length"`
}

// RulesConfig chứa bảng rules được load từ YAML
type RulesConfig struct {
	AddressPatterns []PatternRule       `yaml:"address_patterns"`
	NumericFallback NumericFallbackRule `yaml:"numeric_fallback"`
	RoutePatterns   []PatternRule       `yaml:"route_patterns"`
	RouteFallback   PatternRule         `yaml:"route_fallback"`
}

// compiledRule rule đã compile, giữ nguyên thứ tự của bảng
type compiledRule struct {
	name string
	re   *regexp.Regexp
}

// LoadRulesConfig load bảng rules từ embedded YAML
func LoadRulesConfig() (*RulesConfig, error) {
	return ParseRulesConfig(routePatternsYAML)
}

// ParseRulesConfig parse bảng rules từ YAML bytes
func ParseRulesConfig(data []byte) (*RulesConfig, error) {
	config := &RulesConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse route patterns: %w", err)
	}
	if len(config.AddressPatterns) == 0 {
		return nil, fmt.Errorf("route patterns: address_patterns is empty")
	}
	if len(config.RoutePatterns) == 0 {
		return nil, fmt.Errorf("route patterns: route_patterns is empty")
	}
	return config, nil
}

func compileRules(rules []PatternRule) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		re, err := regexp.Compile(r.Regex)
		if err != nil {
			return nil, fmt.Errorf("compile rule %q: %w", r.Name, err)
		}
		compiled = append(compiled, compiledRule{name: r.Name, re: re})
	}
	return compiled, nil
}
