// Command fixture runs the report-page fixture server standalone, for
// poking at the page objects against a live browser.
package main

import (
	"flag"
	"log/slog"
	"net/http"
	"os"

	"github.com/jonesbusy/warnings-ng-plugin/internal/fixture"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	srv := fixture.New()
	slog.Info("fixture server listening", "addr", *addr)
	if err := http.ListenAndServe(*addr, srv.Handler()); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}
