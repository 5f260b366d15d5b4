package entities

import (
	"fmt"
	"strings"
)

// SelectorStrategy tells the engine how to interpret a selector value
type SelectorStrategy string

const (
	StrategyCSS   SelectorStrategy = "css"
	StrategyXPath SelectorStrategy = "xpath"
)

const xpathPrefix = "xpath="

// Selector identifies target DOM nodes. The strategy is explicit so engines
// never have to sniff the value.
type Selector struct {
	Strategy SelectorStrategy `yaml:"type" json:"type"`
	Value    string           `yaml:"value" json:"value"`
}

// CSS builds a css selector
func CSS(value string) Selector {
	return Selector{Strategy: StrategyCSS, Value: value}
}

// XPath builds an xpath selector
func XPath(value string) Selector {
	return Selector{Strategy: StrategyXPath, Value: value}
}

// ParseSelector - tags a raw selector string. An "xpath=" prefix or a leading
// "/" or "(/" marks an xpath expression; everything else is css.
func ParseSelector(raw string) Selector {
	trimmed := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(trimmed, xpathPrefix):
		return XPath(strings.TrimPrefix(trimmed, xpathPrefix))
	case strings.HasPrefix(trimmed, "/"), strings.HasPrefix(trimmed, "(/"):
		return XPath(trimmed)
	default:
		return CSS(trimmed)
	}
}

// Validate checks the strategy is known and the value is not empty
func (s Selector) Validate() error {
	if strings.TrimSpace(s.Value) == "" {
		return fmt.Errorf("selector value is empty")
	}
	switch s.Strategy {
	case StrategyCSS, StrategyXPath:
		return nil
	default:
		return fmt.Errorf("unknown selector strategy %q", s.Strategy)
	}
}

// String renders the selector in the prefixed form used in logs and by playwright
func (s Selector) String() string {
	if s.Strategy == StrategyXPath {
		return xpathPrefix + s.Value
	}
	return s.Value
}

// OptionWithText returns an xpath matching a listbox option whose text contains text
func OptionWithText(text string) Selector {
	return XPath(fmt.Sprintf("//div[@role='option'][contains(normalize-space(.), %s)]", XPathLiteral(text)))
}

// XPathLiteral quotes s as an xpath string literal, falling back to concat()
// when s holds both quote kinds
func XPathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	quoted := make([]string, 0, len(parts)*2)
	for i, p := range parts {
		if i > 0 {
			quoted = append(quoted, `"'"`)
		}
		quoted = append(quoted, "'"+p+"'")
	}
	return "concat(" + strings.Join(quoted, ", ") + ")"
}
