package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
)

// element is a live handle to one DOM node in a Session's tab. Handles go
// stale when the document is replaced; operations on a stale handle fail and
// the caller re-resolves.
type element struct {
	sess *Session
	node *cdp.Node
}

var _ Element = (*element)(nil)

func (e *element) ids() []cdp.NodeID {
	return []cdp.NodeID{e.node.NodeID}
}

func (e *element) ScrollIntoView(ctx context.Context) error {
	if err := e.sess.run(ctx, chromedp.ScrollIntoView(e.ids(), chromedp.ByNodeID)); err != nil {
		return fmt.Errorf("scroll into view failed: %w", err)
	}
	return nil
}

func (e *element) Click(ctx context.Context) error {
	if err := e.sess.run(ctx, chromedp.MouseClickNode(e.node)); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func (e *element) Clear(ctx context.Context) error {
	if err := e.sess.run(ctx, chromedp.Clear(e.ids(), chromedp.ByNodeID)); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}
	return nil
}

func (e *element) SendKeys(ctx context.Context, text string) error {
	if err := e.sess.run(ctx, chromedp.SendKeys(e.ids(), text, chromedp.ByNodeID)); err != nil {
		return fmt.Errorf("send keys failed: %w", err)
	}
	return nil
}

func (e *element) Text(ctx context.Context) (string, error) {
	var out string
	if err := e.sess.run(ctx, chromedp.Text(e.ids(), &out, chromedp.ByNodeID)); err != nil {
		return "", fmt.Errorf("reading element text failed: %w", err)
	}
	return out, nil
}

func (e *element) TagName(ctx context.Context) (string, error) {
	return strings.ToLower(e.node.NodeName), nil
}

// Parent resolves the element's parent node by querying its full XPath with
// a parent step appended.
func (e *element) Parent(ctx context.Context) (Element, error) {
	xpath := e.node.FullXPath() + "/.."
	var nodes []*cdp.Node
	err := e.sess.run(ctx, chromedp.Nodes(xpath, &nodes, chromedp.BySearch, chromedp.AtLeast(0)))
	if err != nil {
		return nil, fmt.Errorf("parent lookup failed: %w", err)
	}
	if len(nodes) == 0 {
		return nil, ErrNotFound
	}
	return &element{sess: e.sess, node: nodes[0]}, nil
}
