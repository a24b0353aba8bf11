package interpreter

import (
	"context"
	"errors"
	"time"

	"github.com/xkilldash9x/terrier-cli/internal/browser"
)

// elemKey addresses a fake element by the strategy and locator value that
// find it.
type elemKey struct {
	strategy browser.Strategy
	value    string
}

type queryRecord struct {
	strategy browser.Strategy
	value    string
	wait     time.Duration
}

// fakeElement is a scriptable element handle.
type fakeElement struct {
	tag     string
	text    string
	parent  *fakeElement
	options []string

	clickErr error
	clearErr error
	keysErr  error
	// clickFailures makes the next N clicks fail, then succeed.
	clickFailures int

	clicks  int
	clears  int
	sent    []string
	scrolls int
}

func (e *fakeElement) ScrollIntoView(ctx context.Context) error {
	e.scrolls++
	return nil
}

func (e *fakeElement) Click(ctx context.Context) error {
	if e.clickErr != nil {
		return e.clickErr
	}
	if e.clickFailures > 0 {
		e.clickFailures--
		return errors.New("click intercepted")
	}
	e.clicks++
	return nil
}

func (e *fakeElement) Clear(ctx context.Context) error {
	if e.clearErr != nil {
		return e.clearErr
	}
	e.clears++
	return nil
}

func (e *fakeElement) SendKeys(ctx context.Context, text string) error {
	if e.keysErr != nil {
		return e.keysErr
	}
	e.sent = append(e.sent, text)
	return nil
}

func (e *fakeElement) Text(ctx context.Context) (string, error) { return e.text, nil }

func (e *fakeElement) TagName(ctx context.Context) (string, error) { return e.tag, nil }

func (e *fakeElement) Parent(ctx context.Context) (browser.Element, error) {
	if e.parent == nil {
		return nil, browser.ErrNotFound
	}
	return e.parent, nil
}

// fakeBrowser is a scriptable Browser with full call recording.
type fakeBrowser struct {
	elements  map[elemKey]*fakeElement
	failFirst map[elemKey]int

	queries     []queryRecord
	navigations []string
	refreshes   int
	screenshots int
	scripts     []string
	drags       [][2]browser.Element
	selections  []string
	closes      int

	navErr        error
	screenshotErr error
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{
		elements:  make(map[elemKey]*fakeElement),
		failFirst: make(map[elemKey]int),
	}
}

// addElement registers el so Query finds it under the given strategy.
func (b *fakeBrowser) addElement(strategy browser.Strategy, value string, el *fakeElement) {
	b.elements[elemKey{strategy, value}] = el
}

func (b *fakeBrowser) Navigate(ctx context.Context, url string) error {
	if b.navErr != nil {
		return b.navErr
	}
	b.navigations = append(b.navigations, url)
	return nil
}

func (b *fakeBrowser) Refresh(ctx context.Context) error {
	b.refreshes++
	return nil
}

func (b *fakeBrowser) Query(ctx context.Context, strategy browser.Strategy, value string, wait time.Duration) (browser.Element, error) {
	b.queries = append(b.queries, queryRecord{strategy, value, wait})
	key := elemKey{strategy, value}
	if n := b.failFirst[key]; n > 0 {
		b.failFirst[key] = n - 1
		return nil, browser.ErrNotFound
	}
	if el, ok := b.elements[key]; ok {
		return el, nil
	}
	return nil, browser.ErrNotFound
}

func (b *fakeBrowser) Screenshot(ctx context.Context) ([]byte, error) {
	if b.screenshotErr != nil {
		return nil, b.screenshotErr
	}
	b.screenshots++
	return []byte("png"), nil
}

func (b *fakeBrowser) ExecuteScript(ctx context.Context, fnDecl string, el browser.Element) error {
	b.scripts = append(b.scripts, fnDecl)
	return nil
}

func (b *fakeBrowser) DragAndDrop(ctx context.Context, source, target browser.Element) error {
	b.drags = append(b.drags, [2]browser.Element{source, target})
	return nil
}

func (b *fakeBrowser) WrapSelect(ctx context.Context, el browser.Element) (browser.SelectControl, error) {
	fe, ok := el.(*fakeElement)
	if !ok || fe.tag != "select" {
		return nil, errors.New("not a select element")
	}
	return &fakeSelect{browser: b, el: fe}, nil
}

func (b *fakeBrowser) Close(ctx context.Context) error {
	b.closes++
	return nil
}

type fakeSelect struct {
	browser *fakeBrowser
	el      *fakeElement
}

func (s *fakeSelect) SelectByVisibleText(ctx context.Context, text string) error {
	for _, opt := range s.el.options {
		if opt == text {
			s.browser.selections = append(s.browser.selections, text)
			return nil
		}
	}
	return errors.New("no such option")
}
