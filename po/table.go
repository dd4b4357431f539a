package po

import (
	"context"
	"errors"
	"fmt"

	"github.com/agnivade/levenshtein"

	"github.com/jonesbusy/warnings-ng-plugin/browser"
)

// ErrRowKindMismatch is wrapped when a typed row access names a variant
// the table was not constructed with.
var ErrRowKindMismatch = errors.New("row kind mismatch")

const (
	tableSelector   = "table#forensics"
	captionSelector = "#forensics_info"
)

// Table is the accessor for the forensics table on a result page. Headers
// are captured once at construction; rows mirror the DOM as of the last
// Refresh. Not safe for concurrent use.
type Table struct {
	result    *ResultPage
	container *browser.Element
	tableEl   *browser.Element
	kind      RowKind
	headers   []string
	rows      []Row
}

// NewTable binds a table accessor to the container element holding the
// table, captures the header texts and performs the initial row refresh.
func NewTable(ctx context.Context, container *browser.Element, result *ResultPage, kind RowKind) (*Table, error) {
	tableEl, err := container.Find(ctx, tableSelector)
	if err != nil {
		return nil, fmt.Errorf("table not found: %w", err)
	}

	raw, err := tableEl.OuterHTML(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := parseTableHTML(raw)
	if err != nil {
		return nil, err
	}

	t := &Table{
		result:    result,
		container: container,
		tableEl:   tableEl,
		kind:      kind,
		headers:   snap.Headers,
	}
	if err := t.Refresh(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Refresh rebuilds the row collection from the current DOM, discarding
// the previous rows. Needed after anything that mutates the table, such
// as toggling a details row or paging.
func (t *Table) Refresh(ctx context.Context) error {
	// Re-resolve the table element; the old handle may be stale after a
	// DOM update.
	tableEl, err := t.container.Find(ctx, tableSelector)
	if err != nil {
		return fmt.Errorf("table not found on refresh: %w", err)
	}
	t.tableEl = tableEl

	raw, err := tableEl.OuterHTML(ctx)
	if err != nil {
		return err
	}
	snap, err := parseTableHTML(raw)
	if err != nil {
		return err
	}

	rowEls, err := tableEl.FindAll(ctx, "tbody tr")
	if err != nil {
		return err
	}
	if len(rowEls) != len(snap.Rows) {
		return fmt.Errorf("table changed during refresh: %d row elements, %d parsed rows", len(rowEls), len(snap.Rows))
	}

	rows := make([]Row, 0, len(rowEls))
	for i, el := range rowEls {
		rows = append(rows, newRow(t, el, snap.Rows[i]))
	}
	t.rows = rows
	return nil
}

// TotalCount reads the "Showing X to Y of N entries" caption next to the
// table and returns N. A malformed caption is an error.
func (t *Table) TotalCount(ctx context.Context) (int, error) {
	info, err := t.container.Find(ctx, captionSelector)
	if err != nil {
		return 0, fmt.Errorf("info caption not found: %w", err)
	}
	text, err := info.Text(ctx)
	if err != nil {
		return 0, err
	}
	return parseTotal(text)
}

// HeaderCount returns the number of header cells captured at construction.
func (t *Table) HeaderCount() int { return len(t.headers) }

// RowCount returns the number of rows as of the last refresh.
func (t *Table) RowCount() int { return len(t.rows) }

// Headers returns the header texts in document order.
func (t *Table) Headers() []string { return t.headers }

// Rows returns the row collection as of the last refresh.
func (t *Table) Rows() []Row { return t.rows }

// Kind returns the row variant this table produces.
func (t *Table) Kind() RowKind { return t.kind }

// Column returns the index of the named header. Unknown names report the
// closest existing header, which catches most test typos on the spot.
func (t *Table) Column(name string) (int, error) {
	best := -1
	bestDist := 0
	for i, h := range t.headers {
		if h == name {
			return i, nil
		}
		d := levenshtein.ComputeDistance(name, h)
		if best == -1 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best == -1 {
		return 0, fmt.Errorf("unknown column %q: table has no headers", name)
	}
	return 0, fmt.Errorf("unknown column %q (did you mean %q?)", name, t.headers[best])
}

// RowAs returns the row at index typed as the expected variant. The
// variant must match the kind the table was constructed with.
func RowAs[T Row](t *Table, index int) (T, error) {
	var zero T
	if index < 0 || index >= len(t.rows) {
		return zero, fmt.Errorf("row index %d out of range (%d rows)", index, len(t.rows))
	}
	row := t.rows[index]
	typed, ok := row.(T)
	if !ok {
		return zero, fmt.Errorf("%w: row %d is %s", ErrRowKindMismatch, index, row.Kind())
	}
	return typed, nil
}

// ClickLink clicks a link on the table and returns the page object of the
// destination. Pure delegation to the parent result page.
func ClickLink[T any](ctx context.Context, t *Table, link *browser.Element, factory func(*browser.Page) T) (T, error) {
	return OpenLink(ctx, t.result, link, factory)
}

// ClickFilterLink clicks a filter link and returns the filtered result
// page. Pure delegation to the parent result page.
func (t *Table) ClickFilterLink(ctx context.Context, link *browser.Element) (*ResultPage, error) {
	return t.result.OpenFilterLink(ctx, link)
}
