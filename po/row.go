package po

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jonesbusy/warnings-ng-plugin/browser"
)

// RowKind selects which row variant a table produces. It is fixed at
// table construction and applied to every row.
type RowKind int

const (
	// RowKindDefault produces ForensicsRow values.
	RowKindDefault RowKind = iota
	// RowKindDRY produces DRYRow values (duplicate-code results).
	RowKindDRY
)

func (k RowKind) String() string {
	switch k {
	case RowKindDefault:
		return "default"
	case RowKindDRY:
		return "dry"
	default:
		return fmt.Sprintf("RowKind(%d)", int(k))
	}
}

// Row is one table row: a live handle on the tr element plus its cell
// texts as of the last refresh.
type Row interface {
	Kind() RowKind
	Element() *browser.Element
	Cells() []string
}

// tableRow carries the state shared by all row variants.
type tableRow struct {
	table *Table
	el    *browser.Element
	cells []string
}

func (r *tableRow) Element() *browser.Element { return r.el }

func (r *tableRow) Cells() []string { return r.cells }

// cell returns the text of the cell under the named column.
func (r *tableRow) cell(column string) (string, error) {
	i, err := r.table.Column(column)
	if err != nil {
		return "", err
	}
	if i >= len(r.cells) {
		return "", fmt.Errorf("row has %d cells, column %q is index %d", len(r.cells), column, i)
	}
	return r.cells[i], nil
}

func (r *tableRow) intCell(column string) (int, error) {
	s, err := r.cell(column)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("column %q: %q is not a number", column, s)
	}
	return n, nil
}

// newRow builds the variant configured for the table.
func newRow(t *Table, el *browser.Element, cells []string) Row {
	base := tableRow{table: t, el: el, cells: cells}
	switch t.kind {
	case RowKindDRY:
		return &DRYRow{tableRow: base}
	default:
		return &ForensicsRow{tableRow: base}
	}
}

// ForensicsRow is the default row variant, showing repository statistics
// for one affected file.
type ForensicsRow struct {
	tableRow
}

func (r *ForensicsRow) Kind() RowKind { return RowKindDefault }

func (r *ForensicsRow) FileName() (string, error) { return r.cell("File") }

func (r *ForensicsRow) Age() (int, error) { return r.intCell("Age") }

func (r *ForensicsRow) AuthorCount() (int, error) { return r.intCell("#Authors") }

func (r *ForensicsRow) CommitCount() (int, error) { return r.intCell("#Commits") }

func (r *ForensicsRow) LastCommit() (string, error) { return r.cell("Last Commit") }

func (r *ForensicsRow) Added() (string, error) { return r.cell("Added") }

func (r *ForensicsRow) LOC() (int, error) { return r.intCell("#LOC") }

func (r *ForensicsRow) Churn() (int, error) { return r.intCell("Code Churn") }

// FileLink returns the source link inside the file cell, for use with
// ClickLink.
func (r *ForensicsRow) FileLink(ctx context.Context) (*browser.Element, error) {
	if r.el == nil {
		return nil, fmt.Errorf("row has no live element")
	}
	return r.el.Find(ctx, "a")
}

// DRYRow is the duplication row variant for duplicate-code results.
type DRYRow struct {
	tableRow
}

func (r *DRYRow) Kind() RowKind { return RowKindDRY }

func (r *DRYRow) FileName() (string, error) { return r.cell("File") }

func (r *DRYRow) Severity() (string, error) { return r.cell("Severity") }

func (r *DRYRow) LineCount() (int, error) { return r.intCell("#Lines") }

func (r *DRYRow) Age() (int, error) { return r.intCell("Age") }
