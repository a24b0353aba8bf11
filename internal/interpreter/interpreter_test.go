package interpreter

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/terrier-cli/internal/browser"
	"github.com/xkilldash9x/terrier-cli/internal/script"
)

// runScript executes src against the fake with pacing disabled.
func runScript(t *testing.T, b *fakeBrowser, src string) (*Interpreter, bool) {
	t.Helper()
	stmts, err := script.Parse(src)
	require.NoError(t, err)

	interp := New(b, stmts, Options{})
	failed, err := interp.Interpret(context.Background(), false)
	require.NoError(t, err)
	return interp, failed
}

func TestInterpret_HappyPath(t *testing.T) {
	b := newFakeBrowser()
	input := &fakeElement{tag: "input"}
	b.addElement(browser.StrategyPlaceholder, "Search", input)

	interp, failed := runScript(t, b, `
url "https://example.com"
locate "Search" and type "cats" and press "Enter"
screenshot
`)

	assert.False(t, failed)
	assert.Equal(t, []string{"https://example.com"}, b.navigations)
	assert.Equal(t, 1, input.clears)
	assert.Equal(t, []string{"cats", "\r"}, input.sent)
	assert.Equal(t, 1, input.scrolls)
	require.Len(t, interp.Screenshots(), 1)
}

func TestInterpret_LogFormat(t *testing.T) {
	b := newFakeBrowser()
	interp, failed := runScript(t, b, "# start\nurl \"https://a\"\nlocate \"missing\"\n")

	assert.True(t, failed)
	lines := strings.Split(strings.TrimRight(interp.Log(), "\n"), "\n")
	assert.Equal(t, []string{
		"Info: # start",
		`Info: url "https://a"`,
		`Info: locate "missing"`,
		"Error: Could not locate the element",
	}, lines)
}

func TestInterpret_UnhandledErrorSkipsToEnd(t *testing.T) {
	b := newFakeBrowser()
	_, failed := runScript(t, b, `
locate "missing" and click
url "https://never"
`)

	assert.True(t, failed)
	// Statements after the failure are skipped, not executed.
	assert.Empty(t, b.navigations)
}

func TestInterpret_CatchErrorRecovers(t *testing.T) {
	b := newFakeBrowser()
	interp, failed := runScript(t, b, `
locate "missing"
url "https://skipped"
catch-error: screenshot
url "https://after"
`)

	assert.False(t, failed)
	// The skipped navigation never ran; the recovery and the statements
	// after the boundary did.
	assert.Equal(t, []string{"https://after"}, b.navigations)
	assert.Equal(t, 1, b.screenshots)
	// Skipped statements do not appear in the report.
	assert.NotContains(t, interp.Log(), "https://skipped")
}

func TestInterpret_CatchErrorIgnoredWithoutError(t *testing.T) {
	b := newFakeBrowser()
	_, failed := runScript(t, b, `
url "https://a"
catch-error: screenshot
url "https://b"
`)

	assert.False(t, failed)
	assert.Equal(t, 0, b.screenshots)
	assert.Equal(t, []string{"https://a", "https://b"}, b.navigations)
}

func TestInterpret_TryAgainReplaysInScriptOrder(t *testing.T) {
	b := newFakeBrowser()
	btn := &fakeElement{tag: "button"}
	b.addElement(browser.StrategyText, "Submit", btn)
	// All three passes of the first locate miss; the replayed locate hits.
	b.failFirst[elemKey{browser.StrategyText, "Submit"}] = 3

	_, failed := runScript(t, b, `
url "one"
url "two"
locate "Submit" and click
catch-error: try-again
`)

	assert.False(t, failed)
	// The replay re-executes everything since the start in original
	// order, so the navigation sequence repeats.
	assert.Equal(t, []string{"one", "two", "one", "two"}, b.navigations)
	assert.Equal(t, 1, btn.clicks)
}

func TestInterpret_RelocateReplacesFocus(t *testing.T) {
	b := newFakeBrowser()
	search := &fakeElement{tag: "input"}
	b.addElement(browser.StrategyPlaceholder, "Search", search)

	_, failed := runScript(t, b, `
locate "Search" and type "cats"
locate "Search" and type "dogs"
`)

	assert.False(t, failed)
	// The second locate re-resolves; type clears again and sends to the
	// fresh focus.
	assert.Equal(t, 2, search.clears)
	assert.Equal(t, []string{"cats", "dogs"}, search.sent)
}

func TestInterpret_RecoveryChainThenRetry(t *testing.T) {
	b := newFakeBrowser()
	buy := &fakeElement{tag: "button", clickFailures: 1}
	b.addElement(browser.StrategyText, "Buy", buy)

	interp, failed := runScript(t, b, `
url "https://shop"
locate "Buy" and click
catch-error: screenshot and refresh and try-again
`)

	assert.False(t, failed)
	// Recovery ran once: one screenshot, one refresh, then one replay
	// during which the click succeeded.
	assert.Equal(t, 1, b.screenshots)
	assert.Equal(t, 1, b.refreshes)
	assert.Equal(t, 1, buy.clicks)
	assert.Equal(t, []string{"https://shop", "https://shop"}, b.navigations)
	assert.Contains(t, interp.Log(), "Error: Error clicking element")
}

func TestInterpret_SecondFailureDuringRetryIsFatal(t *testing.T) {
	b := newFakeBrowser()
	_, failed := runScript(t, b, `
locate "missing" and click
catch-error: try-again
url "https://never"
`)

	assert.True(t, failed)
	// The retry failed too, ending the run before the final statement.
	assert.Empty(t, b.navigations)
}

func TestInterpret_RetrySucceedingClearsRetryMode(t *testing.T) {
	b := newFakeBrowser()
	link := &fakeElement{tag: "a"}
	b.addElement(browser.StrategyText, "Next", link)
	b.failFirst[elemKey{browser.StrategyText, "Next"}] = 3

	// After the successful retry a later failure must be recoverable
	// again, so the second boundary still fires.
	_, failed := runScript(t, b, `
locate "Next" and click
catch-error: try-again
locate "missing"
catch-error: screenshot
`)

	assert.False(t, failed)
	assert.Equal(t, 1, b.screenshots)
}

func TestInterpret_ConditionalRunsWhenProbeSucceeds(t *testing.T) {
	b := newFakeBrowser()
	banner := &fakeElement{tag: "div"}
	b.addElement(browser.StrategyText, "Accept Cookies", banner)

	_, failed := runScript(t, b, `if locate "Accept Cookies" then click and refresh`)

	assert.False(t, failed)
	assert.Equal(t, 1, banner.clicks)
	assert.Equal(t, 1, b.refreshes)
}

func TestInterpret_ConditionalSkipsWhenProbeFails(t *testing.T) {
	b := newFakeBrowser()
	_, failed := runScript(t, b, `
if locate "Accept Cookies" then click
url "https://after"
`)

	// A failed probe is not a script error.
	assert.False(t, failed)
	assert.Equal(t, []string{"https://after"}, b.navigations)
}

func TestInterpret_VariablesRoundTrip(t *testing.T) {
	b := newFakeBrowser()
	label := &fakeElement{tag: "span", text: "hello world"}
	field := &fakeElement{tag: "input"}
	b.addElement(browser.StrategyID, "greeting", label)
	b.addElement(browser.StrategyName, "copy", field)

	_, failed := runScript(t, b, `
locate "greeting" and read-to message
locate "copy" and type message
`)

	assert.False(t, failed)
	assert.Equal(t, []string{"hello world"}, field.sent)
}

func TestInterpret_SaveStatement(t *testing.T) {
	b := newFakeBrowser()
	field := &fakeElement{tag: "input"}
	b.addElement(browser.StrategyName, "user", field)

	_, failed := runScript(t, b, `
save "Jimmy" as name
locate "user" and type name
`)

	assert.False(t, failed)
	assert.Equal(t, []string{"Jimmy"}, field.sent)
}

func TestInterpret_UndefinedVariable(t *testing.T) {
	b := newFakeBrowser()
	field := &fakeElement{tag: "input"}
	b.addElement(browser.StrategyName, "user", field)

	interp, failed := runScript(t, b, `locate "user" and type name`)

	assert.True(t, failed)
	assert.Contains(t, interp.Log(), "Error: Variable name is not yet defined")
}

func TestInterpret_CommandsRequireFocus(t *testing.T) {
	b := newFakeBrowser()
	interp, failed := runScript(t, b, "click")

	assert.True(t, failed)
	assert.Contains(t, interp.Log(), "No element currently located")
}

func TestInterpret_ChillRejectsNonInteger(t *testing.T) {
	b := newFakeBrowser()
	interp, failed := runScript(t, b, `chill "soon"`)

	assert.True(t, failed)
	assert.Contains(t, interp.Log(), "Could not parse time to wait as integer.")
}

func TestInterpret_PressUnsupportedKey(t *testing.T) {
	b := newFakeBrowser()
	field := &fakeElement{tag: "input"}
	b.addElement(browser.StrategyName, "user", field)

	interp, failed := runScript(t, b, `locate "user" and press "Tab"`)

	assert.True(t, failed)
	assert.Contains(t, interp.Log(), "Unsupported Key")
}

func TestInterpret_SelectByVisibleText(t *testing.T) {
	b := newFakeBrowser()
	sel := &fakeElement{tag: "select", options: []string{"Red", "Green"}}
	b.addElement(browser.StrategyName, "color", sel)

	_, failed := runScript(t, b, `locate "color" and select "Green"`)

	assert.False(t, failed)
	assert.Equal(t, []string{"Green"}, b.selections)
}

func TestInterpret_SelectRefocusesParentOfOption(t *testing.T) {
	b := newFakeBrowser()
	sel := &fakeElement{tag: "select", options: []string{"Red", "Green"}}
	opt := &fakeElement{tag: "option", parent: sel}
	b.addElement(browser.StrategyText, "Red", opt)

	_, failed := runScript(t, b, `locate "Red" and select "Green"`)

	assert.False(t, failed)
	assert.Equal(t, []string{"Green"}, b.selections)
}

func TestInterpret_SelectOnNonSelectFails(t *testing.T) {
	b := newFakeBrowser()
	div := &fakeElement{tag: "div"}
	b.addElement(browser.StrategyText, "thing", div)

	interp, failed := runScript(t, b, `locate "thing" and select "Green"`)

	assert.True(t, failed)
	assert.Contains(t, interp.Log(), "Element is not a <select> element")
}

func TestInterpret_DragTo(t *testing.T) {
	b := newFakeBrowser()
	src := &fakeElement{tag: "div"}
	dst := &fakeElement{tag: "div"}
	b.addElement(browser.StrategyID, "card", src)
	b.addElement(browser.StrategyID, "column", dst)

	_, failed := runScript(t, b, `locate "card" and drag-to "column"`)

	assert.False(t, failed)
	require.Len(t, b.drags, 1)
	assert.Same(t, src, b.drags[0][0].(*fakeElement))
	assert.Same(t, dst, b.drags[0][1].(*fakeElement))
}

func TestInterpret_Upload(t *testing.T) {
	b := newFakeBrowser()
	input := &fakeElement{tag: "input"}
	b.addElement(browser.StrategyName, "avatar", input)

	_, failed := runScript(t, b, `locate "avatar" and upload "/tmp/cat.png"`)

	assert.False(t, failed)
	assert.Equal(t, []string{"/tmp/cat.png"}, input.sent)
}

func TestInterpret_DemoHighlightsFocus(t *testing.T) {
	b := newFakeBrowser()
	first := &fakeElement{tag: "a"}
	second := &fakeElement{tag: "a"}
	b.addElement(browser.StrategyText, "one", first)
	b.addElement(browser.StrategyText, "two", second)

	stmts, err := script.Parse("locate \"one\"\nlocate \"two\"\n")
	require.NoError(t, err)
	interp := New(b, stmts, Options{Demo: true})
	failed, err := interp.Interpret(context.Background(), false)
	require.NoError(t, err)

	assert.False(t, failed)
	// Highlight on each focus, unhighlight of the previous one.
	require.Len(t, b.scripts, 3)
	assert.Contains(t, b.scripts[0], "5px solid purple")
	assert.Contains(t, b.scripts[1], "5px solid purple")
	assert.Contains(t, b.scripts[2], "border = 'none'")
}

func TestInterpret_CloseSession(t *testing.T) {
	b := newFakeBrowser()
	stmts, err := script.Parse(`url "https://a"`)
	require.NoError(t, err)

	interp := New(b, stmts, Options{})
	_, err = interp.Interpret(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, b.closes)
}

func TestInterpret_ContextCancellationAborts(t *testing.T) {
	b := newFakeBrowser()
	stmts, err := script.Parse(`chill "60"`)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	interp := New(b, stmts, Options{})
	_, err = interp.Interpret(ctx, false)
	require.ErrorIs(t, err, context.Canceled)
}
