// Package po holds the page objects for the analysis-result UI: the
// result page itself, its forensics table and the destination pages
// reached from table links.
package po

import (
	"context"
	"fmt"

	"github.com/jonesbusy/warnings-ng-plugin/browser"
)

// forensicsTabSelector is the container holding the table and its caption.
const forensicsTabSelector = "#forensics-tab"

// ResultPage is the analysis-result page. It is the parent collaborator
// of every table accessor: navigation clicks go through it so the
// resulting page object is created in one place.
type ResultPage struct {
	page *browser.Page
	url  string
}

// NewResultPage binds a result page object to a browser tab.
func NewResultPage(page *browser.Page, url string) *ResultPage {
	return &ResultPage{page: page, url: url}
}

// Page exposes the underlying browser tab.
func (r *ResultPage) Page() *browser.Page { return r.page }

// URL returns the address this page object was bound to.
func (r *ResultPage) URL() string { return r.url }

// Open navigates to the result page and waits for the forensics tab to
// render.
func (r *ResultPage) Open(ctx context.Context) error {
	if err := r.page.Navigate(ctx, r.url); err != nil {
		return err
	}
	return r.page.WaitVisible(ctx, forensicsTabSelector)
}

// Reload re-opens the current page.
func (r *ResultPage) Reload(ctx context.Context) error {
	return r.Open(ctx)
}

// ForensicsTab returns the container element of the forensics tab.
func (r *ResultPage) ForensicsTab(ctx context.Context) (*browser.Element, error) {
	return r.page.Element(ctx, forensicsTabSelector)
}

// ForensicsTable constructs the table accessor for the forensics tab.
func (r *ResultPage) ForensicsTable(ctx context.Context, kind RowKind) (*Table, error) {
	tab, err := r.ForensicsTab(ctx)
	if err != nil {
		return nil, err
	}
	return NewTable(ctx, tab, r, kind)
}

// OpenLink clicks a link on the page and returns the typed page object of
// the destination, built by factory once the navigation settled.
func OpenLink[T any](ctx context.Context, r *ResultPage, link *browser.Element, factory func(*browser.Page) T) (T, error) {
	var zero T
	if err := r.page.ClickNavigate(ctx, link); err != nil {
		return zero, fmt.Errorf("destination page did not render: %w", err)
	}
	return factory(r.page), nil
}

// OpenFilterLink clicks a link that opens a filtered view of this result
// and returns the page object for it.
func (r *ResultPage) OpenFilterLink(ctx context.Context, link *browser.Element) (*ResultPage, error) {
	if err := r.page.ClickNavigate(ctx, link); err != nil {
		return nil, fmt.Errorf("filtered result did not render: %w", err)
	}
	if err := r.page.WaitVisible(ctx, forensicsTabSelector); err != nil {
		return nil, err
	}
	url, err := r.page.URL(ctx)
	if err != nil {
		return nil, err
	}
	return NewResultPage(r.page, url), nil
}

// SourceView is the page shown after following a file link: the rendered
// source of one affected file.
type SourceView struct {
	page *browser.Page
}

// NewSourceView binds a source-view page object to a browser tab. Matches
// the factory signature OpenLink expects.
func NewSourceView(page *browser.Page) *SourceView {
	return &SourceView{page: page}
}

// FileName returns the heading of the source view.
func (s *SourceView) FileName(ctx context.Context) (string, error) {
	h, err := s.page.Element(ctx, "h1")
	if err != nil {
		return "", err
	}
	return h.Text(ctx)
}

// SourceCode returns the displayed file content.
func (s *SourceView) SourceCode(ctx context.Context) (string, error) {
	pre, err := s.page.Element(ctx, "pre")
	if err != nil {
		return "", err
	}
	return pre.Text(ctx)
}
