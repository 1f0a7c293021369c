package ports

import "net/http"

// HTTPClient is the part of *http.Client the gateway transport uses.
// *http.Client satisfies it; tests pass a recording fake.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

var _ HTTPClient = (*http.Client)(nil)
