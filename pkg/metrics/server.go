package metrics

import (
	"fmt"
	"net/http"
	"time"
)

// NewServer returns the metrics HTTP server; the caller runs and shuts it
// down.
func NewServer(port int, handler http.Handler) *http.Server {
	if handler == nil {
		handler = Handler()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><body><h1>Query Engine Metrics</h1><p><a href="/metrics">/metrics</a></p></body></html>`)
	})

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}
