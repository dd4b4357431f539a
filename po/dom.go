package po

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// tableSnapshot is the parsed state of a table element: header texts in
// document order and cell texts per body row. Parsed from one outer-HTML
// fetch so a refresh costs a fixed number of CDP round-trips regardless of
// row count.
type tableSnapshot struct {
	Headers []string
	Rows    [][]string
}

// parseTableHTML extracts headers (thead th) and row cells (tbody tr td)
// from a serialized table element.
func parseTableHTML(fragment string) (*tableSnapshot, error) {
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("parsing table html: %w", err)
	}

	table := findFirst(root, "table")
	if table == nil {
		return nil, fmt.Errorf("no table element in fragment")
	}

	snap := &tableSnapshot{}

	if thead := findFirst(table, "thead"); thead != nil {
		for _, th := range findAll(thead, "th") {
			snap.Headers = append(snap.Headers, nodeText(th))
		}
	}

	if tbody := findFirst(table, "tbody"); tbody != nil {
		for _, tr := range findAll(tbody, "tr") {
			var cells []string
			for _, td := range findAll(tr, "td") {
				cells = append(cells, nodeText(td))
			}
			snap.Rows = append(snap.Rows, cells)
		}
	}

	return snap, nil
}

// parseTotal extracts N from an info caption of the form
// "Showing 1 to 10 of 37 entries". Anything else is an error; the caller
// treats that as fatal.
func parseTotal(caption string) (int, error) {
	_, after, ok := strings.Cut(caption, "of ")
	if !ok {
		return 0, fmt.Errorf("caption %q has no \"of <n>\" part", caption)
	}
	fields := strings.Fields(after)
	if len(fields) == 0 {
		return 0, fmt.Errorf("caption %q has nothing after \"of\"", caption)
	}
	n, err := strconv.Atoi(strings.ReplaceAll(fields[0], ",", ""))
	if err != nil {
		return 0, fmt.Errorf("caption %q: total %q is not a number", caption, fields[0])
	}
	return n, nil
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// findAll collects direct and nested elements of the given tag, but does
// not descend into a match (a td containing a nested table yields one td).
func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			out = append(out, c)
			continue
		}
		out = append(out, findAll(c, tag)...)
	}
	return out
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
