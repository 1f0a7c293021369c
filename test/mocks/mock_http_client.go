package mocks

import (
	"bytes"
	"io"
	"net/http"
	"sync"

	"github.com/kevin07696/realex-gateway/internal/adapters/ports"
)

// DefaultGatewayReply is returned when no DoFunc is set
const DefaultGatewayReply = `<response timestamp="20240501100000"><result>00</result><message>Authorised</message></response>`

// RecordedRequest is what the mock saw of one outgoing request
type RecordedRequest struct {
	Method      string
	URL         string
	ContentType string
	Body        string
}

// MockHTTPClient records gateway exchanges and answers them with DoFunc
type MockHTTPClient struct {
	DoFunc func(req *http.Request) (*http.Response, error)

	mu    sync.Mutex
	Calls []RecordedRequest
}

var _ ports.HTTPClient = (*MockHTTPClient)(nil)

// NewMockHTTPClient creates a mock. A nil doFunc answers every request with DefaultGatewayReply.
func NewMockHTTPClient(doFunc func(req *http.Request) (*http.Response, error)) *MockHTTPClient {
	return &MockHTTPClient{DoFunc: doFunc}
}

// Do records the request and returns DoFunc's answer
func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	recorded := RecordedRequest{
		Method:      req.Method,
		URL:         req.URL.String(),
		ContentType: req.Header.Get("Content-Type"),
	}
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		recorded.Body = string(body)
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	m.mu.Lock()
	m.Calls = append(m.Calls, recorded)
	m.mu.Unlock()

	if m.DoFunc != nil {
		return m.DoFunc(req)
	}
	return XMLResponse(http.StatusOK, DefaultGatewayReply), nil
}

// XMLResponse builds a gateway reply with the given status
func XMLResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     http.Header{"Content-Type": []string{"text/xml"}},
	}
}
