package http

import (
	"io"
	"net/http"
	"time"

	"github.com/ValentinKolb/dTX/rpc/common"
	"github.com/ValentinKolb/dTX/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport/rpc")

// RPCPath is the path all rpc requests are posted to
const RPCPath = "/rpc"

// maxBodyBytes bounds the size of a single request
const maxBodyBytes = 1 << 20

var (
	requestsTotal   = metrics.NewCounter(`dtx_http_requests_total`)
	requestErrors   = metrics.NewCounter(`dtx_http_request_errors_total`)
	requestDuration = metrics.NewHistogram(`dtx_http_request_duration_seconds`)
)

func NewHttpServerTransport() transport.IRPCServerTransport {
	return &httpServerTransport{}
}

type httpServerTransport struct {
	handler transport.ServerHandleFunc
	config  common.ServerConfig
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IRPCServerTransport)
// --------------------------------------------------------------------------

func (t *httpServerTransport) RegisterHandler(handler transport.ServerHandleFunc) {
	t.handler = handler
}

func (t *httpServerTransport) Listen(config common.ServerConfig) error {
	t.config = config

	srv := &http.Server{
		Addr:              t.config.Endpoint,
		Handler:           t.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	Logger.Infof("Starting HTTP server on %s", t.config.Endpoint)
	return srv.ListenAndServe()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// routes builds the mux of the server
func (t *httpServerTransport) routes() http.Handler {
	mux := http.NewServeMux()

	if t.config.LogLevel == "debug" {
		mux.HandleFunc("POST "+RPCPath, loggerMiddleware(t.handleRequest))
	} else {
		mux.HandleFunc("POST "+RPCPath, t.handleRequest)
	}

	if t.config.MetricsPath != "" {
		mux.HandleFunc("GET "+t.config.MetricsPath, func(w http.ResponseWriter, r *http.Request) {
			metrics.WritePrometheus(w, true)
		})
	}

	return mux
}

// handleRequest handles incoming HTTP requests and writes the response to the writer
func (t *httpServerTransport) handleRequest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestsTotal.Inc()
	defer requestDuration.UpdateDuration(start)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()

	if err != nil {
		requestErrors.Inc()
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	if t.handler == nil {
		requestErrors.Inc()
		http.Error(w, "No handler registered", http.StatusServiceUnavailable)
		return
	}

	resp := t.handler(body)

	if _, err = w.Write(resp); err != nil {
		requestErrors.Inc()
		Logger.Warningf("Failed to write response: %v", err)
	}
}

// --------------------------------------------------------------------------
// Middleware (logging)
// --------------------------------------------------------------------------

// responseWriter is a custom ResponseWriter that captures status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code before writing it
func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggerMiddleware is a middleware that logs HTTP requests
func loggerMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r)

		Logger.Debugf("%s %s => %d took %s", r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	}
}
