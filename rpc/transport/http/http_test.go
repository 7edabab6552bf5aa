package http

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/dTX/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestServer starts an httptest server with the routes of the server transport
func newTestServer(t *testing.T, config common.ServerConfig, handler func([]byte) []byte) *httptest.Server {
	t.Helper()
	srv := &httpServerTransport{config: config}
	srv.RegisterHandler(handler)
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)
	return ts
}

func newTestClient(t *testing.T, config common.ClientConfig) *httpClientTransport {
	t.Helper()
	c := &httpClientTransport{}
	require.NoError(t, c.Connect(config))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestEcho(t *testing.T) {
	ts := newTestServer(t, common.ServerConfig{}, func(req []byte) []byte {
		return bytes.ToUpper(req)
	})
	c := newTestClient(t, common.ClientConfig{Endpoints: []string{ts.URL}, TimeoutSecond: 2, RetryCount: 1})

	resp, err := c.Send(context.Background(), []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, []byte("HELLO"), resp)
}

func TestBareHostEndpoint(t *testing.T) {
	ts := newTestServer(t, common.ServerConfig{}, func(req []byte) []byte { return req })
	host := strings.TrimPrefix(ts.URL, "http://")
	c := newTestClient(t, common.ClientConfig{Endpoints: []string{host}, TimeoutSecond: 2})

	resp, err := c.Send(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), resp)
}

func TestOnlyPostRPCIsRouted(t *testing.T) {
	ts := newTestServer(t, common.ServerConfig{}, func(req []byte) []byte { return req })

	r, err := http.Get(ts.URL + RPCPath)
	require.NoError(t, err)
	_ = r.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, r.StatusCode)

	r, err = http.Post(ts.URL+"/other", "application/octet-stream", nil)
	require.NoError(t, err)
	_ = r.Body.Close()
	assert.Equal(t, http.StatusNotFound, r.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, common.ServerConfig{MetricsPath: "/metrics"}, func(req []byte) []byte { return req })

	// one request so the counter shows up
	pr, err := http.Post(ts.URL+RPCPath, "application/octet-stream", strings.NewReader("x"))
	require.NoError(t, err)
	_ = pr.Body.Close()

	r, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, r.StatusCode)
	assert.Contains(t, string(body), "dtx_http_requests_total")

	// disabled without a path
	ts2 := newTestServer(t, common.ServerConfig{}, func(req []byte) []byte { return req })
	r2, err := http.Get(ts2.URL + "/metrics")
	require.NoError(t, err)
	_ = r2.Body.Close()
	assert.Equal(t, http.StatusNotFound, r2.StatusCode)
}

func TestRetryOnOtherEndpoint(t *testing.T) {
	var calls atomic.Int32
	good := newTestServer(t, common.ServerConfig{}, func(req []byte) []byte {
		calls.Add(1)
		return req
	})

	// a closed server refuses connections
	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	c := newTestClient(t, common.ClientConfig{
		Endpoints:     []string{deadURL, good.URL},
		TimeoutSecond: 2,
		RetryCount:    2,
	})

	for i := 0; i < 4; i++ {
		resp, err := c.Send(context.Background(), []byte("ping"))
		require.NoError(t, err)
		assert.Equal(t, []byte("ping"), resp)
	}
	assert.Equal(t, int32(4), calls.Load())
}

func TestNoRetryAfterDelivery(t *testing.T) {
	var calls atomic.Int32
	ts := newTestServer(t, common.ServerConfig{}, func(req []byte) []byte {
		if calls.Add(1) == 1 {
			time.Sleep(1500 * time.Millisecond)
		}
		return req
	})

	c := newTestClient(t, common.ClientConfig{Endpoints: []string{ts.URL}, TimeoutSecond: 1, RetryCount: 3})

	// the server got the request, a timeout must not send it again
	_, err := c.Send(context.Background(), []byte("transfer"))
	assert.Error(t, err)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())

	// error status codes are not retried either
	var statusCalls atomic.Int32
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		statusCalls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	c2 := newTestClient(t, common.ClientConfig{Endpoints: []string{failing.URL}, TimeoutSecond: 2, RetryCount: 3})
	_, err = c2.Send(context.Background(), []byte("transfer"))
	assert.Error(t, err)
	assert.Equal(t, int32(1), statusCalls.Load())
}

func TestSendHonorsContext(t *testing.T) {
	block := make(chan struct{})
	ts := newTestServer(t, common.ServerConfig{}, func(req []byte) []byte {
		<-block
		return req
	})
	defer close(block)

	c := newTestClient(t, common.ClientConfig{Endpoints: []string{ts.URL}, TimeoutSecond: 10, RetryCount: 3})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Send(ctx, []byte("x"))
	assert.Error(t, err)
}

func TestSendWithoutConnect(t *testing.T) {
	c := &httpClientTransport{}
	_, err := c.Send(context.Background(), []byte("x"))
	assert.Error(t, err)
}

func TestConnectWithoutEndpoints(t *testing.T) {
	c := &httpClientTransport{}
	assert.Error(t, c.Connect(common.ClientConfig{}))
}
