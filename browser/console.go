package browser

import (
	"fmt"
	"strings"
	"sync"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

const consoleBufferSize = 16 * 1024

// consoleBuffer keeps the tail of a page's console output for failure
// diagnostics. Writes past max drop the oldest bytes.
type consoleBuffer struct {
	mu   sync.Mutex
	data []byte
	max  int
}

func newConsoleBuffer(max int) *consoleBuffer {
	return &consoleBuffer{max: max, data: make([]byte, 0, max)}
}

func (cb *consoleBuffer) Write(p []byte) (int, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.data = append(cb.data, p...)
	if len(cb.data) > cb.max {
		cb.data = cb.data[len(cb.data)-cb.max:]
	}
	return len(p), nil
}

func (cb *consoleBuffer) String() string {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return string(cb.data)
}

// captureConsole mirrors the tab's console API calls into the buffer.
func (p *Page) captureConsole() {
	chromedp.ListenTarget(p.ctx, func(ev interface{}) {
		e, ok := ev.(*runtime.EventConsoleAPICalled)
		if !ok {
			return
		}
		fmt.Fprintf(p.console, "[%s] %s\n", e.Type, formatConsoleArgs(e.Args))
	})
}

func formatConsoleArgs(args []*runtime.RemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		switch {
		case a == nil:
			continue
		case a.Value != nil:
			parts = append(parts, strings.Trim(string(a.Value), `"`))
		case a.Description != "":
			parts = append(parts, a.Description)
		default:
			parts = append(parts, string(a.Type))
		}
	}
	return strings.Join(parts, " ")
}
