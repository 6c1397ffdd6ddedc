// Package gateway forwards requests to a single upstream target and
// enforces the CORS policy on the way through. Preflights are answered
// here and never reach the upstream; everything else is forwarded, with
// CORS headers merged into the upstream response only when the policy
// allows the requesting origin.
package gateway

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/corsairproxy/corsair/internal/cors"
	"github.com/corsairproxy/corsair/internal/metrics"
)

type Gateway struct {
	client   *http.Client
	logger   *zap.Logger
	target   *url.URL
	policies *cors.Store
	upgrader websocket.Upgrader
}

// New builds a gateway forwarding to targetURL. policies supplies the
// CORS policy snapshot per request, so configuration reloads take effect
// without restarting the gateway.
func New(logger *zap.Logger, targetURL string, policies *cors.Store, insecureUpstream bool) (*Gateway, error) {
	target, err := url.Parse(targetURL)
	if err != nil {
		return nil, err
	}

	g := &Gateway{
		client: &http.Client{
			Transport: newTransport(insecureUpstream),
			Timeout:   60 * time.Second,
		},
		logger:   logger,
		target:   target,
		policies: policies,
	}
	g.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// WebSocket upgrades go through the same origin policy as every
		// other request.
		CheckOrigin: func(r *http.Request) bool {
			d, _ := cors.Evaluate(g.policies.Load(), cors.Request{
				Origin: r.Header.Get("Origin"),
				Method: r.Method,
			})
			return d.Allowed
		},
	}
	return g, nil
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	policy := g.policies.Load()
	creq := cors.ParseRequest(r)
	decision, shortCircuit := cors.Evaluate(policy, creq)
	metrics.RecordDecision(creq.IsPreflight, decision.Allowed)

	if creq.Origin != "" {
		w.Header().Add("Vary", "Origin")
	}

	if shortCircuit {
		// Preflights are answered here, allowed or denied. A denied
		// preflight is simply a 204 without permissive headers; the
		// browser does the blocking.
		w.Header().Add("Vary", "Access-Control-Request-Method")
		w.Header().Add("Vary", "Access-Control-Request-Headers")
		decision.Apply(w.Header())
		w.WriteHeader(http.StatusNoContent)
		return
	}

	setSecurityHeaders(w.Header())
	if decision.Allowed {
		decision.Apply(w.Header())
	}

	start := time.Now()
	requestID := uuid.New().String()

	logger := g.logger.With(
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("url", r.URL.String()),
		zap.String("remote_addr", r.RemoteAddr),
	)
	if creq.Origin != "" {
		logger = logger.With(
			zap.String("origin", creq.Origin),
			zap.Bool("cors_allowed", decision.Allowed),
		)
	}
	logger.Info("received request")

	targetURL := *g.target
	targetURL.Path = r.URL.Path
	targetURL.RawQuery = r.URL.RawQuery

	upstreamReq, err := http.NewRequestWithContext(r.Context(), r.Method, targetURL.String(), r.Body)
	if err != nil {
		metrics.UpstreamErrorsTotal.Inc()
		logger.Error("failed to create upstream request", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	for header, values := range r.Header {
		for _, value := range values {
			upstreamReq.Header.Add(header, value)
		}
	}
	upstreamReq.Header.Set("X-Request-ID", requestID)
	upstreamReq.Header.Set("X-Forwarded-For", r.RemoteAddr)
	upstreamReq.Header.Set("X-Forwarded-Host", r.Host)

	if isWebSocketRequest(r) {
		g.handleWebSocket(w, r, upstreamReq, logger)
		return
	}

	resp, err := g.client.Do(upstreamReq)
	if err != nil {
		metrics.UpstreamErrorsTotal.Inc()
		logger.Error("failed to send upstream request", zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for header, values := range resp.Header {
		// The engine owns CORS headers; drop whatever the upstream set
		// so the policy can't be widened from behind the gateway.
		if strings.HasPrefix(http.CanonicalHeaderKey(header), "Access-Control-") {
			continue
		}
		for _, value := range values {
			w.Header().Add(header, value)
		}
	}

	w.WriteHeader(resp.StatusCode)

	copied, err := io.Copy(w, resp.Body)
	if err != nil {
		logger.Error("error copying response", zap.Error(err))
	}

	elapsed := time.Since(start)
	metrics.RecordRequest(r.Method, resp.StatusCode, elapsed.Seconds())

	logger.Info("completed request",
		zap.Int("status_code", resp.StatusCode),
		zap.Int64("bytes_copied", copied),
		zap.Int64("latency_ms", elapsed.Milliseconds()),
	)
}

func isWebSocketRequest(r *http.Request) bool {
	return strings.ToLower(r.Header.Get("Upgrade")) == "websocket" &&
		strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade")
}
