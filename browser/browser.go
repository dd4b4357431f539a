// Package browser drives a headless Chrome through the DevTools protocol
// and exposes the small element API the page objects are built on.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
)

// Options controls how the Chrome instance is launched.
type Options struct {
	ExecPath     string // path to the Chrome binary, empty for auto-detect
	Headless     bool
	WindowWidth  int
	WindowHeight int
	NavTimeout   time.Duration // per-operation deadline for blocking CDP calls
	ArtifactsDir string        // where failure screenshots are written
	HumanInput   bool          // dispatch clicks with natural mouse movement
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.WindowWidth == 0 {
		out.WindowWidth = 1400
	}
	if out.WindowHeight == 0 {
		out.WindowHeight = 1000
	}
	if out.NavTimeout == 0 {
		out.NavTimeout = 30 * time.Second
	}
	return out
}

// Session owns one Chrome process. Pages share the process; each page is a
// separate tab with its own CDP context.
type Session struct {
	opts Options

	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc

	leases *leaseManager
}

// Start launches Chrome and connects to it. The returned session must be
// closed with Close.
func Start(parent context.Context, opts Options) (*Session, error) {
	opts = opts.withDefaults()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	// Force the browser to actually start so a bad ExecPath fails here,
	// not on the first page operation.
	if err := chromedp.Run(ctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("starting chrome: %w", err)
	}

	slog.Info("browser started", "headless", opts.Headless, "window", fmt.Sprintf("%dx%d", opts.WindowWidth, opts.WindowHeight))

	return &Session{
		opts:        opts,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		ctx:         ctx,
		cancel:      cancel,
		leases:      newLeaseManager(),
	}, nil
}

// NewPage opens a new tab and navigates it to url.
func (s *Session) NewPage(url string) (*Page, error) {
	ctx, cancel := chromedp.NewContext(s.ctx)

	p := &Page{
		id:      uuid.NewString(),
		ctx:     ctx,
		cancel:  cancel,
		session: s,
		console: newConsoleBuffer(consoleBufferSize),
	}
	p.captureConsole()

	if url != "" {
		if err := p.Navigate(p.Context(), url); err != nil {
			cancel()
			return nil, err
		}
	}
	return p, nil
}

// Lease marks a page as owned by a test for at most ttl. A second owner
// acquiring the same page fails until the lease is released or expires.
func (s *Session) Lease(pageID, owner string, ttl time.Duration) error {
	return s.leases.Acquire(pageID, owner, ttl)
}

// Release gives up a lease. Releasing an unleased page is a no-op.
func (s *Session) Release(pageID, owner string) error {
	return s.leases.Release(pageID, owner)
}

// CheckAccess reports whether owner may use the page right now.
func (s *Session) CheckAccess(pageID, owner string) error {
	return s.leases.Check(pageID, owner)
}

// SaveArtifact writes data into the artifacts directory under a unique
// name and returns the path. Used for failure screenshots.
func (s *Session) SaveArtifact(prefix string, data []byte) (string, error) {
	dir := s.opts.ArtifactsDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating artifacts dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.png", prefix, uuid.NewString()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing artifact: %w", err)
	}
	slog.Info("artifact saved", "path", path)
	return path, nil
}

// Close shuts the browser down.
func (s *Session) Close() {
	s.cancel()
	s.allocCancel()
}

// timeout derives the per-operation deadline from an outer context.
func (s *Session) timeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.NavTimeout)
}
