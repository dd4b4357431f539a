package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"golang.org/x/net/html"
)

// Element is a live handle on a DOM node. Handles stay valid until the
// document mutates underneath them; stale handles fail on the next CDP
// call and the caller is expected to re-query.
type Element struct {
	page *Page
	node *cdp.Node
	sel  string
}

// NodeID exposes the raw CDP node id.
func (e *Element) NodeID() cdp.NodeID { return e.node.NodeID }

// Attr returns an attribute value captured at query time.
func (e *Element) Attr(name string) string {
	return e.node.AttributeValue(name)
}

// OuterHTML fetches the element's serialized subtree.
func (e *Element) OuterHTML(ctx context.Context) (string, error) {
	ctx, cancel := e.page.session.timeout(ctx)
	defer cancel()

	var out string
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		out, err = dom.GetOuterHTML().WithNodeID(e.node.NodeID).Do(ctx)
		return err
	}))
	if err != nil {
		return "", fmt.Errorf("outer html of %q: %w", e.sel, err)
	}
	return out, nil
}

// Text returns the element's text content with whitespace collapsed.
// Derived from the serialized markup, so content hidden by CSS is
// included; only script and style subtrees are stripped.
func (e *Element) Text(ctx context.Context) (string, error) {
	raw, err := e.OuterHTML(ctx)
	if err != nil {
		return "", err
	}
	return CollapseText(raw), nil
}

// Find resolves sel to one element inside this element's subtree.
func (e *Element) Find(ctx context.Context, sel string) (*Element, error) {
	ctx, cancel := e.page.session.timeout(ctx)
	defer cancel()

	var nodes []*cdp.Node
	if err := chromedp.Run(ctx, chromedp.Nodes(sel, &nodes, chromedp.ByQuery, chromedp.FromNode(e.node))); err != nil {
		return nil, fmt.Errorf("locating %q in %q: %w", sel, e.sel, err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("no element matches %q in %q", sel, e.sel)
	}
	return &Element{page: e.page, node: nodes[0], sel: sel}, nil
}

// FindAll resolves sel to all elements inside this element's subtree.
func (e *Element) FindAll(ctx context.Context, sel string) ([]*Element, error) {
	ctx, cancel := e.page.session.timeout(ctx)
	defer cancel()

	var nodes []*cdp.Node
	if err := chromedp.Run(ctx, chromedp.Nodes(sel, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0), chromedp.FromNode(e.node))); err != nil {
		return nil, fmt.Errorf("locating %q in %q: %w", sel, e.sel, err)
	}
	els := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, &Element{page: e.page, node: n, sel: sel})
	}
	return els, nil
}

// Click dispatches a real mouse click at the element's center. With
// HumanInput enabled the pointer approaches the target on a bezier path
// with natural timing first.
func (e *Element) Click(ctx context.Context) error {
	ctx, cancel := e.page.session.timeout(ctx)
	defer cancel()

	if err := clickNode(ctx, e.node.NodeID, e.page.session.opts.HumanInput); err != nil {
		return fmt.Errorf("clicking %q: %w", e.sel, err)
	}
	return nil
}

// CollapseText strips markup from an HTML fragment and collapses all
// whitespace runs to single spaces.
func CollapseText(fragment string) string {
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return strings.Join(strings.Fields(b.String()), " ")
}
