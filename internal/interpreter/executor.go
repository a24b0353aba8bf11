package interpreter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/xkilldash9x/terrier-cli/internal/script"
)

// enterKey is the raw keystroke sent for "press Enter".
const enterKey = "\r"

// executeCmd runs a single leaf command after the pacing delay.
func (i *Interpreter) executeCmd(ctx context.Context, cmd script.Cmd) error {
	if i.pacing > 0 {
		if err := sleepCtx(ctx, i.pacing); err != nil {
			return err
		}
	}

	switch c := cmd.(type) {
	case *script.LocateCmd:
		return i.locate(ctx, c.Locator, true)
	case *script.LocateNoScrollCmd:
		return i.locate(ctx, c.Locator, false)
	case *script.TypeCmd:
		return i.typeInto(ctx, c.Text)
	case *script.ClickCmd:
		return i.click(ctx)
	case *script.RefreshCmd:
		return i.refresh(ctx)
	case *script.TryAgainCmd:
		i.tryAgain()
		return nil
	case *script.ScreenshotCmd:
		return i.screenshot(ctx)
	case *script.ReadToCmd:
		return i.readTo(ctx, c.Name)
	case *script.URLCmd:
		return i.navigate(ctx, c.URL)
	case *script.PressCmd:
		return i.press(ctx, c.Key)
	case *script.ChillCmd:
		return i.chill(ctx, c.Seconds)
	case *script.SelectCmd:
		return i.selectOption(ctx, c.Option)
	case *script.DragToCmd:
		return i.dragTo(ctx, c.Target)
	case *script.UploadCmd:
		return i.upload(ctx, c.Path)
	default:
		return fmt.Errorf("unhandled command type %T", cmd)
	}
}

// navigate loads the resolved URL.
func (i *Interpreter) navigate(ctx context.Context, p script.CmdParam) error {
	url, err := i.resolve(p)
	if err != nil {
		return err
	}
	if err := i.browser.Navigate(ctx, url); err != nil {
		return i.failf("Error navigating to page.")
	}
	return nil
}

// typeInto clears the focused element then sends the resolved text.
func (i *Interpreter) typeInto(ctx context.Context, p script.CmdParam) error {
	txt, err := i.resolve(p)
	if err != nil {
		return err
	}
	el, err := i.focusedElem()
	if err != nil {
		return err
	}
	if err := el.Clear(ctx); err != nil {
		return i.failf("Error clearing element")
	}
	if err := el.SendKeys(ctx, txt); err != nil {
		return i.failf("Error typing into element")
	}
	return nil
}

// click clicks the focused element.
func (i *Interpreter) click(ctx context.Context) error {
	el, err := i.focusedElem()
	if err != nil {
		return err
	}
	if err := el.Click(ctx); err != nil {
		return i.failf("Error clicking element")
	}
	return nil
}

// refresh reloads the page.
func (i *Interpreter) refresh(ctx context.Context) error {
	if err := i.browser.Refresh(ctx); err != nil {
		return i.failf("Error refreshing page")
	}
	return nil
}

// screenshot captures the page into the screenshot buffer.
func (i *Interpreter) screenshot(ctx context.Context) error {
	i.logInfo("Taking a screenshot")
	png, err := i.browser.Screenshot(ctx)
	if err != nil {
		return i.failf("Error taking screenshot.")
	}
	i.screenshots = append(i.screenshots, png)
	return nil
}

// readTo stores the focused element's visible text in a variable.
func (i *Interpreter) readTo(ctx context.Context, name string) error {
	el, err := i.focusedElem()
	if err != nil {
		return err
	}
	txt, err := el.Text(ctx)
	if err != nil {
		return i.failf("Error getting text from element")
	}
	i.env.Set(name, txt)
	return nil
}

// press sends a named key to the focused element. Only Enter is supported.
func (i *Interpreter) press(ctx context.Context, p script.CmdParam) error {
	key, err := i.resolve(p)
	if err != nil {
		return err
	}
	if key != "Enter" {
		return i.failf("Unsupported Key")
	}
	el, err := i.focusedElem()
	if err != nil {
		return err
	}
	if err := el.SendKeys(ctx, enterKey); err != nil {
		return i.failf("Error pressing key. Make sure you have an element in focus first.")
	}
	return nil
}

// chill pauses the script for the resolved number of seconds.
func (i *Interpreter) chill(ctx context.Context, p script.CmdParam) error {
	raw, err := i.resolve(p)
	if err != nil {
		return err
	}
	secs, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return i.failf("Could not parse time to wait as integer.")
	}
	return sleepCtx(ctx, time.Duration(secs)*time.Second)
}

// selectOption picks an option of the focused select element by its exact
// visible text. When the focused element is an option, focus is first moved
// to its parent select, since users often locate a closed dropdown by the
// text of its default option.
func (i *Interpreter) selectOption(ctx context.Context, p script.CmdParam) error {
	optionText, err := i.resolve(p)
	if err != nil {
		return err
	}

	el, err := i.focusedElem()
	if err != nil {
		return err
	}
	tag, err := el.TagName(ctx)
	if err != nil {
		return i.failf("Error getting element tag name")
	}
	if tag == "option" {
		parent, err := el.Parent(ctx)
		if err != nil {
			return i.failf("Error getting parent select. Try locating the select element directly")
		}
		if err := i.setFocus(ctx, parent, false); err != nil {
			return err
		}
		el = parent
	}

	sel, err := i.browser.WrapSelect(ctx, el)
	if err != nil {
		return i.failf("Element is not a <select> element")
	}
	if err := sel.SelectByVisibleText(ctx, optionText); err != nil {
		return i.failf("Could not select text %s", optionText)
	}
	return nil
}

// dragTo drags the focused element onto the element matched by the target
// locator, which becomes the new focus.
func (i *Interpreter) dragTo(ctx context.Context, p script.CmdParam) error {
	source, err := i.focusedElem()
	if err != nil {
		return err
	}
	if err := i.locate(ctx, p, false); err != nil {
		return err
	}
	target, err := i.focusedElem()
	if err != nil {
		return err
	}
	if err := i.browser.DragAndDrop(ctx, source, target); err != nil {
		return i.failf("Error dragging element.")
	}
	return nil
}

// upload sends a file path to the focused file input. Driving a file input
// is key entry under the hood, but script authors shouldn't need to know
// that.
func (i *Interpreter) upload(ctx context.Context, p script.CmdParam) error {
	path, err := i.resolve(p)
	if err != nil {
		return err
	}
	el, err := i.focusedElem()
	if err != nil {
		return err
	}
	if err := el.SendKeys(ctx, path); err != nil {
		return i.failf("Error uploading file")
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
