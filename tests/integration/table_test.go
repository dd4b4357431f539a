//go:build integration

package integration

import (
	"strings"
	"testing"

	"github.com/jonesbusy/warnings-ng-plugin/po"
)

func TestForensicsTableReads(t *testing.T) {
	h := startHarness(t)
	result := h.openResult(t, "/report")
	ctx := result.Page().Context()

	table, err := result.ForensicsTable(ctx, po.RowKindDefault)
	if err != nil {
		dumpFailure(t, result.Page())
		t.Fatal(err)
	}

	if table.HeaderCount() != 8 {
		t.Errorf("HeaderCount = %d, want 8", table.HeaderCount())
	}
	wantHeaders := []string{"File", "Age", "#Authors", "#Commits", "Last Commit", "Added", "#LOC", "Code Churn"}
	for i, h := range wantHeaders {
		if table.Headers()[i] != h {
			t.Errorf("header %d = %q, want %q", i, table.Headers()[i], h)
		}
	}

	if table.RowCount() != 10 {
		t.Errorf("RowCount = %d, want 10", table.RowCount())
	}

	total, err := table.TotalCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if total != 37 {
		t.Errorf("TotalCount = %d, want 37", total)
	}
}

func TestTotalCountCustom(t *testing.T) {
	h := startHarness(t)
	result := h.openResult(t, "/report?rows=5&total=123")
	ctx := result.Page().Context()

	table, err := result.ForensicsTable(ctx, po.RowKindDefault)
	if err != nil {
		t.Fatal(err)
	}

	total, err := table.TotalCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if total != 123 {
		t.Errorf("TotalCount = %d, want 123", total)
	}
}

func TestRefreshTracksDOM(t *testing.T) {
	h := startHarness(t)
	result := h.openResult(t, "/report?rows=6")
	ctx := result.Page().Context()

	table, err := result.ForensicsTable(ctx, po.RowKindDefault)
	if err != nil {
		t.Fatal(err)
	}
	if table.RowCount() != 6 {
		t.Fatalf("RowCount = %d, want 6", table.RowCount())
	}

	// Mutate the DOM under the accessor, then refresh.
	if err := result.Page().Eval(ctx, `document.querySelector("#forensics tbody tr").remove()`); err != nil {
		t.Fatal(err)
	}
	if err := table.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if table.RowCount() != 5 {
		t.Errorf("RowCount after refresh = %d, want 5", table.RowCount())
	}

	// First row is now the former second row.
	row, err := po.RowAs[*po.ForensicsRow](table, 0)
	if err != nil {
		t.Fatal(err)
	}
	name, err := row.FileName()
	if err != nil {
		t.Fatal(err)
	}
	if name != "file-1.c" {
		t.Errorf("FileName = %q, want %q", name, "file-1.c")
	}
}

func TestTypedRowAccess(t *testing.T) {
	h := startHarness(t)
	result := h.openResult(t, "/report?rows=4")
	ctx := result.Page().Context()

	table, err := result.ForensicsTable(ctx, po.RowKindDefault)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < table.RowCount(); i++ {
		row, err := po.RowAs[*po.ForensicsRow](table, i)
		if err != nil {
			t.Fatalf("RowAs(%d): %v", i, err)
		}
		name, err := row.FileName()
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasSuffix(name, ".c") {
			t.Errorf("row %d FileName = %q", i, name)
		}
		if _, err := row.LOC(); err != nil {
			t.Errorf("row %d LOC: %v", i, err)
		}
	}

	// Wrong variant must be rejected.
	if _, err := po.RowAs[*po.DRYRow](table, 0); err == nil {
		t.Error("expected kind mismatch for DRY row on default table")
	}
}

func TestDRYTable(t *testing.T) {
	h := startHarness(t)
	result := h.openResult(t, "/report?kind=dry&rows=3")
	ctx := result.Page().Context()

	table, err := result.ForensicsTable(ctx, po.RowKindDRY)
	if err != nil {
		t.Fatal(err)
	}

	row, err := po.RowAs[*po.DRYRow](table, 0)
	if err != nil {
		t.Fatal(err)
	}
	sev, err := row.Severity()
	if err != nil {
		t.Fatal(err)
	}
	if sev != "High" {
		t.Errorf("Severity = %q, want High", sev)
	}
}

func TestClickSourceLink(t *testing.T) {
	h := startHarness(t)
	result := h.openResult(t, "/report?rows=3")
	ctx := result.Page().Context()

	table, err := result.ForensicsTable(ctx, po.RowKindDefault)
	if err != nil {
		t.Fatal(err)
	}

	row, err := po.RowAs[*po.ForensicsRow](table, 0)
	if err != nil {
		t.Fatal(err)
	}
	link, err := row.FileLink(ctx)
	if err != nil {
		t.Fatal(err)
	}

	source, err := po.ClickLink(ctx, table, link, po.NewSourceView)
	if err != nil {
		dumpFailure(t, result.Page())
		t.Fatal(err)
	}

	name, err := source.FileName(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if name != "file-0.c" {
		t.Errorf("FileName = %q, want file-0.c", name)
	}

	code, err := source.SourceCode(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(code, "int main(void)") {
		t.Errorf("unexpected source content: %q", code)
	}
}

func TestClickFilterLink(t *testing.T) {
	h := startHarness(t)
	result := h.openResult(t, "/report?rows=5")
	ctx := result.Page().Context()

	table, err := result.ForensicsTable(ctx, po.RowKindDefault)
	if err != nil {
		t.Fatal(err)
	}

	link, err := result.Page().Element(ctx, "#filter-high")
	if err != nil {
		t.Fatal(err)
	}

	filtered, err := table.ClickFilterLink(ctx, link)
	if err != nil {
		dumpFailure(t, result.Page())
		t.Fatal(err)
	}
	if !strings.Contains(filtered.URL(), "filter=high") {
		t.Errorf("filtered URL = %q", filtered.URL())
	}

	// The filtered page carries its own, smaller table.
	filteredTable, err := filtered.ForensicsTable(ctx, po.RowKindDefault)
	if err != nil {
		t.Fatal(err)
	}
	total, err := filteredTable.TotalCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if total != 5 {
		t.Errorf("filtered TotalCount = %d, want 5", total)
	}
}

func TestPageLeases(t *testing.T) {
	h := startHarness(t)
	result := h.openResult(t, "/report")
	pageID := result.Page().ID()

	if err := h.session.Lease(pageID, t.Name(), 0); err != nil {
		t.Fatal(err)
	}
	if err := h.session.Lease(pageID, "someone-else", 0); err == nil {
		t.Error("expected lease conflict")
	}
	if err := h.session.Release(pageID, t.Name()); err != nil {
		t.Fatal(err)
	}
}
