package testutil

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fastreact/console/internal/mockgateway"
)

// StartGateway runs a mock gateway on a loopback listener for the duration
// of the test. It returns the server and the WebSocket base URL, without
// a session segment.
func StartGateway(t *testing.T, opts ...mockgateway.Option) (*mockgateway.Server, string) {
	t.Helper()

	gw := mockgateway.New(opts...)
	srv := httptest.NewServer(gw.Handler())
	t.Cleanup(srv.Close)

	base := "ws" + strings.TrimPrefix(srv.URL, "http") + strings.TrimSuffix(mockgateway.PathPrefix, "/")
	return gw, base
}
