//go:build integration

package integration

import (
	"context"
	"net/http/httptest"
	"os"
	"os/exec"
	"testing"

	"github.com/jonesbusy/warnings-ng-plugin/browser"
	"github.com/jonesbusy/warnings-ng-plugin/internal/config"
	"github.com/jonesbusy/warnings-ng-plugin/internal/fixture"
	"github.com/jonesbusy/warnings-ng-plugin/po"
)

// chromeCandidates are probed when no explicit path is configured.
var chromeCandidates = []string{
	"google-chrome",
	"google-chrome-stable",
	"chromium",
	"chromium-browser",
	"headless-shell",
}

func findChrome(t *testing.T) string {
	t.Helper()
	if path := os.Getenv("WARNINGS_UI_BROWSER_CHROME_PATH"); path != "" {
		return path
	}
	for _, c := range chromeCandidates {
		if path, err := exec.LookPath(c); err == nil {
			return path
		}
	}
	t.Skip("no Chrome binary found, skipping integration tests")
	return ""
}

// harness bundles the fixture server and a browser session for one test.
type harness struct {
	srv     *httptest.Server
	session *browser.Session
}

func startHarness(t *testing.T) *harness {
	t.Helper()

	chrome := findChrome(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	srv := httptest.NewServer(fixture.New().Handler())
	t.Cleanup(srv.Close)

	session, err := browser.Start(context.Background(), browser.Options{
		ExecPath:     chrome,
		Headless:     cfg.Browser.Headless,
		WindowWidth:  cfg.Browser.WindowWidth,
		WindowHeight: cfg.Browser.WindowHeight,
		NavTimeout:   cfg.Browser.NavTimeout,
		ArtifactsDir: cfg.Artifacts.Dir,
		HumanInput:   cfg.Browser.HumanInput,
	})
	if err != nil {
		t.Fatalf("starting browser: %v", err)
	}
	t.Cleanup(session.Close)

	return &harness{srv: srv, session: session}
}

// openResult opens the fixture report at path and returns the page object.
func (h *harness) openResult(t *testing.T, path string) *po.ResultPage {
	t.Helper()

	page, err := h.session.NewPage("")
	if err != nil {
		t.Fatalf("opening page: %v", err)
	}
	t.Cleanup(page.Close)

	result := po.NewResultPage(page, h.srv.URL+path)
	if err := result.Open(page.Context()); err != nil {
		dumpFailure(t, page)
		t.Fatalf("opening result page: %v", err)
	}
	return result
}

// dumpFailure saves a screenshot and logs the console tail so a red CI
// run leaves something to look at.
func dumpFailure(t *testing.T, page *browser.Page) {
	t.Helper()
	if path, err := page.DumpScreenshot(page.Context(), t.Name()); err == nil {
		t.Logf("screenshot: %s", path)
	}
	if tail := page.ConsoleTail(); tail != "" {
		t.Logf("console tail:\n%s", tail)
	}
}
