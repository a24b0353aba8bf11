package browser

import (
	"fmt"
	"strings"
)

// Strategy is one way of interpreting a locator string. The interpreter
// tries them in a fixed precedence order, so a human-friendly label is
// preferred over a raw XPath when both would match.
type Strategy int

const (
	// StrategyPlaceholder matches an input by its placeholder attribute.
	StrategyPlaceholder Strategy = iota
	// StrategyLabeledInput matches an input whose sibling label carries
	// the locator text.
	StrategyLabeledInput
	// StrategyText matches any element by exact text content.
	StrategyText
	// StrategyPartialText matches any element containing the text.
	StrategyPartialText
	// StrategyTitle matches by the title attribute.
	StrategyTitle
	// StrategyID matches by the id attribute.
	StrategyID
	// StrategyName matches by the name attribute.
	StrategyName
	// StrategyClass matches by a single class name.
	StrategyClass
	// StrategyXPath treats the locator as a raw XPath expression.
	StrategyXPath
)

func (s Strategy) String() string {
	switch s {
	case StrategyPlaceholder:
		return "placeholder"
	case StrategyLabeledInput:
		return "labeled-input"
	case StrategyText:
		return "text"
	case StrategyPartialText:
		return "partial-text"
	case StrategyTitle:
		return "title"
	case StrategyID:
		return "id"
	case StrategyName:
		return "name"
	case StrategyClass:
		return "class"
	case StrategyXPath:
		return "xpath"
	default:
		return "unknown"
	}
}

// selector renders a strategy and locator value into an XPath expression.
func selector(strategy Strategy, value string) (string, error) {
	switch strategy {
	case StrategyPlaceholder:
		return fmt.Sprintf("//input[@placeholder=%s]", xpathLiteral(value)), nil
	case StrategyLabeledInput:
		return fmt.Sprintf("//label[text()=%s]/../input", xpathLiteral(value)), nil
	case StrategyText:
		return fmt.Sprintf("//*[text()=%s]", xpathLiteral(value)), nil
	case StrategyPartialText:
		return fmt.Sprintf("//*[contains(text(), %s)]", xpathLiteral(value)), nil
	case StrategyTitle:
		return fmt.Sprintf("//*[@title=%s]", xpathLiteral(value)), nil
	case StrategyID:
		return fmt.Sprintf("//*[@id=%s]", xpathLiteral(value)), nil
	case StrategyName:
		return fmt.Sprintf("//*[@name=%s]", xpathLiteral(value)), nil
	case StrategyClass:
		// Class attributes are whitespace-separated lists; match the
		// one class exactly rather than as a substring.
		padded := xpathLiteral(" " + value + " ")
		return fmt.Sprintf("//*[contains(concat(' ', normalize-space(@class), ' '), %s)]", padded), nil
	case StrategyXPath:
		return value, nil
	default:
		return "", fmt.Errorf("unknown locator strategy %d", strategy)
	}
}

// xpathLiteral quotes a string for use inside an XPath expression. XPath 1.0
// has no escaping, so a value containing both quote kinds is assembled with
// concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	var b strings.Builder
	b.WriteString("concat(")
	for i, part := range parts {
		if i > 0 {
			b.WriteString(`, "'", `)
		}
		b.WriteString("'" + part + "'")
	}
	b.WriteString(")")
	return b.String()
}
