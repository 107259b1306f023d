package remote

import (
	"net/http"
	"os"
	"strconv"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// ServeOpts configures ListenAndServe.
type ServeOpts struct {
	// Addr is the address to listen on.
	// If not passed, looks for the PORT env var or defaults to port 8080.
	Addr string

	// ServeAll hosts the server on all addresses (vs localhost) if Addr is unspecified.
	ServeAll bool

	// Handler is the handler to serve.
	// If nil, uses [http.DefaultServeMux].
	Handler http.Handler
}

// addr must be called on a non-nil ServeOpts.
func (opts *ServeOpts) addr() string {
	if opts.Addr != "" {
		return opts.Addr
	}

	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port <= 0 {
		port = 8080
	}

	host := "localhost"
	if opts.ServeAll {
		host = ""
	}
	return host + ":" + strconv.Itoa(port)
}

// Handler wraps the given http.Handler such that it also serves unencrypted h2 traffic.
func Handler(h http.Handler) http.Handler {
	if h == nil {
		// h2c requires this to be passed
		h = http.DefaultServeMux
	}
	return h2c.NewHandler(h, &http2.Server{})
}

// ListenAndServe serves a store's handlers, supporting h2c.
func ListenAndServe(opts *ServeOpts) error {
	if opts == nil {
		opts = &ServeOpts{}
	}

	s := http.Server{Addr: opts.addr(), Handler: Handler(opts.Handler)}
	return s.ListenAndServe()
}
