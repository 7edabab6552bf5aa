package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dTX/rpc/common"
	"github.com/ValentinKolb/dTX/rpc/transport"
	"github.com/pkg/errors"
)

func NewHttpClientTransport() transport.IRPCClientTransport {
	return &httpClientTransport{}
}

type httpClientTransport struct {
	serverURLs []*url.URL
	client     *http.Client
	counter    uint32
	retryCount int
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCClientTransport)
// --------------------------------------------------------------------------

func (transport *httpClientTransport) Connect(config common.ClientConfig) error {
	if len(config.Endpoints) == 0 {
		return fmt.Errorf("no endpoints configured")
	}

	// Parse each server URL, a bare host:port gets http:// prepended
	parsedURLs := make([]*url.URL, len(config.Endpoints))
	for i, server := range config.Endpoints {
		if !strings.Contains(server, "://") {
			server = "http://" + server
		}
		parsedURL, err := url.Parse(server)
		if err != nil {
			return errors.Wrapf(err, "invalid endpoint %q", server)
		}
		parsedURLs[i] = parsedURL.JoinPath(RPCPath)
	}

	transport.client = &http.Client{
		Timeout: time.Duration(config.TimeoutSecond) * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	transport.serverURLs = parsedURLs
	transport.counter = 0
	transport.retryCount = max(1, config.RetryCount)

	return nil
}

func (transport *httpClientTransport) Send(ctx context.Context, req []byte) (resp []byte, err error) {
	if transport.client == nil {
		return nil, fmt.Errorf("http transport not initialized")
	}

	// Send the request, every attempt goes to the next server via round-robin.
	// Requests are not idempotent, so only attempts that never wrote a byte are retried.
	for i := 0; i < transport.retryCount; i++ {
		idx := atomic.AddUint32(&transport.counter, 1) % uint32(len(transport.serverURLs))
		var sent bool
		resp, sent, err = transport.post(ctx, transport.serverURLs[idx].String(), req)
		if err == nil || sent || ctx.Err() != nil {
			break
		}
		Logger.Debugf("request to %s not delivered, trying next endpoint: %v", transport.serverURLs[idx], err)
	}
	return resp, err
}

func (transport *httpClientTransport) Close() error {
	if transport.client != nil {
		transport.client.CloseIdleConnections()
	}

	transport.client = nil
	transport.serverURLs = nil

	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// post sends a single request and reads the whole response body.
// sent reports whether the request was (at least partly) written to a server.
func (transport *httpClientTransport) post(ctx context.Context, requestURL string, req []byte) (resp []byte, sent bool, err error) {
	var wrote atomic.Bool
	ctx = httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
		WroteHeaders: func() { wrote.Store(true) },
	})

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(req))
	if err != nil {
		return nil, false, err
	}
	httpRequest.Header.Set("Content-Type", "application/octet-stream")

	httpResponse, err := transport.client.Do(httpRequest)
	if err != nil {
		return nil, wrote.Load(), err
	}
	defer func() {
		if err := httpResponse.Body.Close(); err != nil {
			Logger.Errorf("Failed to close response body: %v", err)
		}
	}()

	if httpResponse.StatusCode != http.StatusOK {
		return nil, true, fmt.Errorf("http error: %s", httpResponse.Status)
	}

	resp, err = io.ReadAll(httpResponse.Body)
	return resp, true, err
}
