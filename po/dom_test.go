package po

import (
	"strings"
	"testing"
)

func TestParseTotal(t *testing.T) {
	tests := []struct {
		name    string
		caption string
		want    int
		wantErr bool
	}{
		{"plain", "Showing 1 to 10 of 37 entries", 37, false},
		{"filtered", "Showing 1 to 10 of 60 entries (filtered from 137 total entries)", 60, false},
		{"thousands", "Showing 1 to 10 of 1,234 entries", 1234, false},
		{"no of", "Showing 10 entries", 0, true},
		{"of at end", "Showing 1 to 10 of ", 0, true},
		{"not a number", "Showing 1 to 10 of many entries", 0, true},
		{"empty", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTotal(tt.caption)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseTotal: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestParseTableHTML(t *testing.T) {
	raw := `
<table id="forensics">
  <thead>
    <tr><th>File</th><th>Age</th><th>#Authors</th></tr>
  </thead>
  <tbody>
    <tr><td><a href="/source/a.c">a.c</a></td><td>1</td><td>2</td></tr>
    <tr><td>b.c</td><td>3</td><td>1</td></tr>
  </tbody>
</table>`

	snap, err := parseTableHTML(raw)
	if err != nil {
		t.Fatal(err)
	}

	wantHeaders := []string{"File", "Age", "#Authors"}
	if len(snap.Headers) != len(wantHeaders) {
		t.Fatalf("got %d headers, want %d", len(snap.Headers), len(wantHeaders))
	}
	for i, h := range wantHeaders {
		if snap.Headers[i] != h {
			t.Errorf("header %d = %q, want %q", i, snap.Headers[i], h)
		}
	}

	if len(snap.Rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(snap.Rows))
	}
	if snap.Rows[0][0] != "a.c" {
		t.Errorf("link cell text = %q, want %q", snap.Rows[0][0], "a.c")
	}
	if snap.Rows[1][1] != "3" {
		t.Errorf("cell = %q, want %q", snap.Rows[1][1], "3")
	}
}

func TestParseTableHTMLWholeDocument(t *testing.T) {
	// The parser is fed the table's outer HTML, but must cope with a full
	// page too (the fixture tests do exactly that).
	raw := `<html><body><h1>Results</h1>
<table id="forensics"><thead><tr><th>File</th></tr></thead>
<tbody><tr><td>x.c</td></tr></tbody></table>
</body></html>`

	snap, err := parseTableHTML(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Headers) != 1 || snap.Headers[0] != "File" {
		t.Errorf("headers = %v", snap.Headers)
	}
	if len(snap.Rows) != 1 || snap.Rows[0][0] != "x.c" {
		t.Errorf("rows = %v", snap.Rows)
	}
}

func TestParseTableHTMLMessyCells(t *testing.T) {
	raw := `
<table>
  <thead><tr><th>  File
  </th><th><span>Code</span> <span>Churn</span></th></tr></thead>
  <tbody>
    <tr><td>
      <a href="#"><strong>a.c</strong></a>
    </td><td>12</td></tr>
    <tr></tr>
  </tbody>
</table>`

	snap, err := parseTableHTML(raw)
	if err != nil {
		t.Fatal(err)
	}
	if snap.Headers[0] != "File" {
		t.Errorf("header 0 = %q, want collapsed %q", snap.Headers[0], "File")
	}
	if snap.Headers[1] != "Code Churn" {
		t.Errorf("header 1 = %q, want %q", snap.Headers[1], "Code Churn")
	}
	if snap.Rows[0][0] != "a.c" {
		t.Errorf("cell = %q, want %q", snap.Rows[0][0], "a.c")
	}
	// A tr without td is still a row; DataTables renders empty detail rows.
	if len(snap.Rows) != 2 {
		t.Errorf("got %d rows, want 2", len(snap.Rows))
	}
	if len(snap.Rows[1]) != 0 {
		t.Errorf("empty row has %d cells", len(snap.Rows[1]))
	}
}

func TestParseTableHTMLNoTable(t *testing.T) {
	_, err := parseTableHTML("<div>nothing here</div>")
	if err == nil {
		t.Fatal("expected error for fragment without table")
	}
	if !strings.Contains(err.Error(), "no table") {
		t.Errorf("unexpected error: %v", err)
	}
}
