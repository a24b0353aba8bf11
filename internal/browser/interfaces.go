// Package browser provides the capability surface the interpreter drives:
// a managed Chrome process, per-script tab sessions, and element handles.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports that a query matched nothing within its wait budget.
var ErrNotFound = errors.New("no matching element")

// Element is a live handle to one DOM node. Handles can go stale when the
// document is replaced; operations then return errors and the caller
// re-resolves via Browser.Query.
type Element interface {
	ScrollIntoView(ctx context.Context) error
	Click(ctx context.Context) error
	Clear(ctx context.Context) error
	SendKeys(ctx context.Context, text string) error
	Text(ctx context.Context) (string, error)
	TagName(ctx context.Context) (string, error)
	Parent(ctx context.Context) (Element, error)
}

// SelectControl is an Element wrapped as an HTML select.
type SelectControl interface {
	// SelectByVisibleText chooses the option whose trimmed visible text
	// equals text exactly.
	SelectByVisibleText(ctx context.Context, text string) error
}

// Browser is one page/tab the interpreter executes against.
type Browser interface {
	Navigate(ctx context.Context, url string) error
	Refresh(ctx context.Context) error

	// Query resolves the first element matching one locator strategy.
	// With wait == 0 it makes a single attempt; otherwise it retries at
	// one-second granularity until the budget is spent, then returns
	// ErrNotFound.
	Query(ctx context.Context, strategy Strategy, value string, wait time.Duration) (Element, error)

	// Screenshot captures the current viewport as PNG bytes.
	Screenshot(ctx context.Context) ([]byte, error)

	// ExecuteScript calls a JavaScript function declaration with el bound
	// as `this`.
	ExecuteScript(ctx context.Context, fnDecl string, el Element) error

	// DragAndDrop drags the source element onto the target element.
	DragAndDrop(ctx context.Context, source, target Element) error

	// WrapSelect adapts el into a SelectControl, failing when el is not
	// a select element.
	WrapSelect(ctx context.Context, el Element) (SelectControl, error)

	// Close releases the tab. Safe to call more than once.
	Close(ctx context.Context) error
}
