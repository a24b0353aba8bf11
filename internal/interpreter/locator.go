package interpreter

import (
	"context"
	"errors"
	"time"

	"github.com/xkilldash9x/terrier-cli/internal/browser"
	"github.com/xkilldash9x/terrier-cli/internal/script"
)

// locateBudgets are the wait budgets for the three resolution passes. A pass
// gives its budget to the first strategy only; the rest get a single
// immediate attempt each.
var locateBudgets = []time.Duration{0, 5 * time.Second, 10 * time.Second}

// strategyOrder is the resolution precedence within one pass.
var strategyOrder = []browser.Strategy{
	browser.StrategyPlaceholder,
	browser.StrategyLabeledInput,
	browser.StrategyText,
	browser.StrategyPartialText,
	browser.StrategyTitle,
	browser.StrategyID,
	browser.StrategyName,
	browser.StrategyClass,
	browser.StrategyXPath,
}

// locate resolves a locator to an element and brings it into focus. Each
// pass tries every strategy in precedence order; strategy errors count as
// misses so that, for example, a locator that is not valid XPath still gets
// matched by the other strategies.
func (i *Interpreter) locate(ctx context.Context, p script.CmdParam, scrollIntoView bool) error {
	locator, err := i.resolve(p)
	if err != nil {
		return err
	}

	for _, budget := range locateBudgets {
		for n, strategy := range strategyOrder {
			wait := time.Duration(0)
			if n == 0 {
				wait = budget
			}

			el, err := i.browser.Query(ctx, strategy, locator, wait)
			if err != nil {
				if !errors.Is(err, browser.ErrNotFound) && ctx.Err() != nil {
					return err
				}
				continue
			}
			return i.setFocus(ctx, el, scrollIntoView)
		}
	}

	return i.failf("Could not locate the element")
}
