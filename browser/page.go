package browser

import (
	"context"
	"fmt"

	"github.com/chromedp/cdproto/cdp"
	cdppage "github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Page is a single browser tab. All blocking calls take a context that
// must be the page context (or derived from it) so chromedp can route the
// CDP traffic to the right target.
type Page struct {
	id      string
	ctx     context.Context
	cancel  context.CancelFunc
	session *Session
	console *consoleBuffer
}

// ID is the stable identifier used for page leases.
func (p *Page) ID() string { return p.id }

// Context returns the CDP context for this tab.
func (p *Page) Context() context.Context { return p.ctx }

// Navigate loads url and waits for the document to be ready.
func (p *Page) Navigate(ctx context.Context, url string) error {
	ctx, cancel := p.session.timeout(ctx)
	defer cancel()

	if err := chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// URL returns the current document location.
func (p *Page) URL(ctx context.Context) (string, error) {
	ctx, cancel := p.session.timeout(ctx)
	defer cancel()

	var loc string
	if err := chromedp.Run(ctx, chromedp.Location(&loc)); err != nil {
		return "", fmt.Errorf("reading location: %w", err)
	}
	return loc, nil
}

// Title returns the document title.
func (p *Page) Title(ctx context.Context) (string, error) {
	ctx, cancel := p.session.timeout(ctx)
	defer cancel()

	var title string
	if err := chromedp.Run(ctx, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("reading title: %w", err)
	}
	return title, nil
}

// WaitVisible blocks until the selector matches a visible element.
func (p *Page) WaitVisible(ctx context.Context, sel string) error {
	ctx, cancel := p.session.timeout(ctx)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.WaitVisible(sel, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("waiting for %q: %w", sel, err)
	}
	return nil
}

// Element resolves sel to exactly one element. Missing elements surface as
// a context deadline from the CDP layer; there are no retries here.
func (p *Page) Element(ctx context.Context, sel string) (*Element, error) {
	ctx, cancel := p.session.timeout(ctx)
	defer cancel()

	var nodes []*cdp.Node
	if err := chromedp.Run(ctx, chromedp.Nodes(sel, &nodes, chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("locating %q: %w", sel, err)
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("no element matches %q", sel)
	}
	return &Element{page: p, node: nodes[0], sel: sel}, nil
}

// Elements resolves sel to all matching elements. Zero matches is not an
// error; callers that require at least one should check the length.
func (p *Page) Elements(ctx context.Context, sel string) ([]*Element, error) {
	ctx, cancel := p.session.timeout(ctx)
	defer cancel()

	var nodes []*cdp.Node
	if err := chromedp.Run(ctx, chromedp.Nodes(sel, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("locating %q: %w", sel, err)
	}
	els := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, &Element{page: p, node: n, sel: sel})
	}
	return els, nil
}

// ClickNavigate clicks an element that triggers a navigation and blocks
// until the destination document fired its load event. The listener is
// registered before the click so the event cannot be missed.
func (p *Page) ClickNavigate(ctx context.Context, el *Element) error {
	ctx, cancel := p.session.timeout(ctx)
	defer cancel()

	loaded := make(chan struct{}, 1)
	lctx, lcancel := context.WithCancel(ctx)
	defer lcancel()
	chromedp.ListenTarget(lctx, func(ev interface{}) {
		if _, ok := ev.(*cdppage.EventLoadEventFired); ok {
			select {
			case loaded <- struct{}{}:
			default:
			}
		}
	})

	if err := el.Click(ctx); err != nil {
		return err
	}

	select {
	case <-loaded:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for navigation after click: %w", ctx.Err())
	}
}

// Eval runs a JavaScript expression in the page, discarding the result.
func (p *Page) Eval(ctx context.Context, expr string) error {
	ctx, cancel := p.session.timeout(ctx)
	defer cancel()

	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, nil)); err != nil {
		return fmt.Errorf("evaluating %q: %w", expr, err)
	}
	return nil
}

// Screenshot captures the full viewport as PNG bytes.
func (p *Page) Screenshot(ctx context.Context) ([]byte, error) {
	ctx, cancel := p.session.timeout(ctx)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("capturing screenshot: %w", err)
	}
	return buf, nil
}

// DumpScreenshot captures the viewport and stores it as an artifact,
// returning the file path. Intended for use from test failure paths.
func (p *Page) DumpScreenshot(ctx context.Context, prefix string) (string, error) {
	buf, err := p.Screenshot(ctx)
	if err != nil {
		return "", err
	}
	return p.session.SaveArtifact(prefix, buf)
}

// ConsoleTail returns the most recent console output of the page.
func (p *Page) ConsoleTail() string {
	return p.console.String()
}

// Close closes the tab.
func (p *Page) Close() {
	p.cancel()
}
