package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xkilldash9x/terrier-cli/internal/config"
)

// Session is one browser tab, exposed to the interpreter as the Browser
// capability. All operations respect both the session lifetime and the
// caller's context.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger

	navigationTimeout time.Duration
	pollInterval      time.Duration

	onClose   func()
	closeOnce sync.Once
}

var _ Browser = (*Session)(nil)

func newSession(ctx context.Context, cancel context.CancelFunc, cfg config.BrowserConfig, logger *zap.Logger, onClose func()) *Session {
	id := uuid.New().String()

	navTimeout := cfg.NavigationTimeout
	if navTimeout <= 0 {
		navTimeout = 90 * time.Second
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = time.Second
	}

	return &Session{
		id:                id,
		ctx:               ctx,
		cancel:            cancel,
		logger:            logger.Named("session").With(zap.String("session_id", id)),
		navigationTimeout: navTimeout,
		pollInterval:      pollInterval,
		onClose:           onClose,
	}
}

// run executes chromedp actions under both the session lifetime and the
// caller's context.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := combineContext(s.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads the URL and waits for the document to become ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating.", zap.String("url", url))

	navCtx, cancel := context.WithTimeout(ctx, s.navigationTimeout)
	defer cancel()

	err := s.run(navCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		if navCtx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("navigation timed out after %s: %w", s.navigationTimeout, err)
		}
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// Refresh reloads the current page.
func (s *Session) Refresh(ctx context.Context) error {
	if err := s.run(ctx, chromedp.Reload(), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("page reload failed: %w", err)
	}
	return nil
}

// Query resolves a single element with one strategy. With a zero wait budget
// it makes a single attempt; otherwise it polls until the budget runs out.
func (s *Session) Query(ctx context.Context, strategy Strategy, value string, wait time.Duration) (Element, error) {
	sel, err := selector(strategy, value)
	if err != nil {
		return nil, err
	}

	deadline := time.Now().Add(wait)
	for {
		var nodes []*cdp.Node
		err := s.run(ctx, chromedp.Nodes(sel, &nodes, chromedp.BySearch, chromedp.AtLeast(0)))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// A malformed expression (raw XPath strategy) or a transient
			// CDP failure counts as a miss for this strategy.
			s.logger.Debug("Element query failed.", zap.Stringer("strategy", strategy), zap.Error(err))
			return nil, ErrNotFound
		}
		if len(nodes) > 0 {
			return &element{sess: s, node: nodes[0]}, nil
		}
		if wait <= 0 || !time.Now().Before(deadline) {
			return nil, ErrNotFound
		}
		if err := sleepCtx(ctx, s.pollInterval); err != nil {
			return nil, err
		}
	}
}

// Screenshot captures the viewport as PNG bytes.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := s.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("screenshot capture failed: %w", err)
	}
	return buf, nil
}

// ExecuteScript calls a JavaScript function declaration with el bound as
// `this`.
func (s *Session) ExecuteScript(ctx context.Context, fnDecl string, el Element) error {
	elem, err := asElement(el)
	if err != nil {
		return err
	}
	return s.run(ctx, chromedp.ActionFunc(func(c context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(elem.node.NodeID).Do(c)
		if err != nil {
			return fmt.Errorf("could not resolve element for script execution: %w", err)
		}
		_, exc, err := runtime.CallFunctionOn(fnDecl).WithObjectID(obj.ObjectID).Do(c)
		if err != nil {
			return fmt.Errorf("script execution failed: %w", err)
		}
		if exc != nil {
			return fmt.Errorf("script threw: %s", exc.Text)
		}
		return nil
	}))
}

// DragAndDrop performs a pointer-driven drag from the source element's
// center to the target element's center.
func (s *Session) DragAndDrop(ctx context.Context, source, target Element) error {
	src, err := asElement(source)
	if err != nil {
		return err
	}
	dst, err := asElement(target)
	if err != nil {
		return err
	}

	return s.run(ctx, chromedp.ActionFunc(func(c context.Context) error {
		fromX, fromY, err := nodeCenter(c, src.node.NodeID)
		if err != nil {
			return fmt.Errorf("could not measure drag source: %w", err)
		}
		toX, toY, err := nodeCenter(c, dst.node.NodeID)
		if err != nil {
			return fmt.Errorf("could not measure drag target: %w", err)
		}

		steps := []chromedp.Action{
			chromedp.MouseEvent(input.MouseMoved, fromX, fromY),
			chromedp.MouseEvent(input.MousePressed, fromX, fromY, chromedp.Button("left")),
			chromedp.MouseEvent(input.MouseMoved, (fromX+toX)/2, (fromY+toY)/2, chromedp.Button("left")),
			chromedp.MouseEvent(input.MouseMoved, toX, toY, chromedp.Button("left")),
			chromedp.MouseEvent(input.MouseReleased, toX, toY, chromedp.Button("left")),
		}
		for _, step := range steps {
			if err := step.Do(c); err != nil {
				return fmt.Errorf("drag gesture failed: %w", err)
			}
		}
		return nil
	}))
}

// WrapSelect adapts el into a SelectControl, verifying it is a <select>.
func (s *Session) WrapSelect(ctx context.Context, el Element) (SelectControl, error) {
	elem, err := asElement(el)
	if err != nil {
		return nil, err
	}
	tag, err := elem.TagName(ctx)
	if err != nil {
		return nil, err
	}
	if tag != "select" {
		return nil, fmt.Errorf("element <%s> is not a select element", tag)
	}
	return &selectControl{sess: s, elem: elem}, nil
}

// Close releases the tab.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.logger.Debug("Closing session.")
		s.cancel()
		if s.onClose != nil {
			s.onClose()
		}
	})
	return nil
}

// -- selectControl --

// selectOptionJS picks the option whose visible text equals the argument
// exactly, then fires a change event so page listeners observe it.
const selectOptionJS = `function(text) {
	for (const opt of this.options) {
		if (opt.textContent.trim() === text) {
			this.value = opt.value;
			this.dispatchEvent(new Event('change', { bubbles: true }));
			return true;
		}
	}
	return false;
}`

type selectControl struct {
	sess *Session
	elem *element
}

func (sc *selectControl) SelectByVisibleText(ctx context.Context, text string) error {
	arg, err := json.Marshal(text)
	if err != nil {
		return err
	}

	var found bool
	err = sc.sess.run(ctx, chromedp.ActionFunc(func(c context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(sc.elem.node.NodeID).Do(c)
		if err != nil {
			return fmt.Errorf("could not resolve select element: %w", err)
		}
		res, exc, err := runtime.CallFunctionOn(selectOptionJS).
			WithObjectID(obj.ObjectID).
			WithArguments([]*runtime.CallArgument{{Value: arg}}).
			Do(c)
		if err != nil {
			return fmt.Errorf("option selection failed: %w", err)
		}
		if exc != nil {
			return fmt.Errorf("option selection threw: %s", exc.Text)
		}
		if err := json.Unmarshal(res.Value, &found); err != nil {
			return fmt.Errorf("unexpected option selection result: %w", err)
		}
		return nil
	}))
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no option with text %q", text)
	}
	return nil
}

// -- helpers --

func asElement(el Element) (*element, error) {
	elem, ok := el.(*element)
	if !ok {
		return nil, errors.New("element handle does not belong to this session")
	}
	return elem, nil
}

// nodeCenter computes the centroid of a node's content box.
func nodeCenter(ctx context.Context, id cdp.NodeID) (float64, float64, error) {
	box, err := dom.GetBoxModel().WithNodeID(id).Do(ctx)
	if err != nil {
		return 0, 0, err
	}
	if box == nil || len(box.Content) < 8 {
		return 0, 0, errors.New("element has no geometry")
	}
	// Content is [x0, y0, x1, y1, x2, y2, x3, y3].
	x := (box.Content[0] + box.Content[2] + box.Content[4] + box.Content[6]) / 4
	y := (box.Content[1] + box.Content[3] + box.Content[5] + box.Content[7]) / 4
	return x, y, nil
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

// combineContext derives a context canceled when either parent is canceled.
func combineContext(primary, secondary context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(primary)
	go func() {
		select {
		case <-secondary.Done():
			cancel()
		case <-combined.Done():
		}
	}()
	return combined, cancel
}
