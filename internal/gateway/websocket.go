package gateway

import (
	"net/http"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const wsMaxMessageSize = 512 * 1024

// handleWebSocket bridges an upgraded client connection to the upstream.
// The upgrader's CheckOrigin has already run the origin through the CORS
// policy by the time this is called.
func (g *Gateway) handleWebSocket(w http.ResponseWriter, r *http.Request, upstreamReq *http.Request, logger *zap.Logger) {
	scheme := "ws"
	if g.target.Scheme == "https" || g.target.Scheme == "wss" {
		scheme = "wss"
	}
	targetURL := url.URL{
		Scheme:   scheme,
		Host:     g.target.Host,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
	}

	logger.Info("initiating websocket connection", zap.String("target_url", targetURL.String()))

	header := upstreamReq.Header.Clone()
	// The dialer sets its own handshake headers.
	for _, k := range []string{"Upgrade", "Connection", "Sec-Websocket-Key", "Sec-Websocket-Version", "Sec-Websocket-Extensions"} {
		header.Del(k)
	}

	upstreamConn, resp, err := websocket.DefaultDialer.Dial(targetURL.String(), header)
	if err != nil {
		statusCode := http.StatusBadGateway
		if resp != nil {
			statusCode = resp.StatusCode
		}
		logger.Error("failed to connect to upstream websocket",
			zap.Error(err),
			zap.Int("status_code", statusCode),
		)
		http.Error(w, "WebSocket connection failed", statusCode)
		return
	}
	defer upstreamConn.Close()

	clientConn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("failed to upgrade client connection", zap.Error(err))
		return
	}
	defer clientConn.Close()

	upstreamConn.SetReadLimit(wsMaxMessageSize)
	clientConn.SetReadLimit(wsMaxMessageSize)

	var wg sync.WaitGroup
	wg.Add(2)
	errc := make(chan error, 2)

	go func() {
		defer wg.Done()
		if err := pumpMessages(clientConn, upstreamConn, "client_to_upstream", logger); err != nil {
			errc <- err
		}
	}()
	go func() {
		defer wg.Done()
		if err := pumpMessages(upstreamConn, clientConn, "upstream_to_client", logger); err != nil {
			errc <- err
		}
	}()

	go func() {
		wg.Wait()
		close(errc)
	}()

	for err := range errc {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
			logger.Error("websocket error", zap.Error(err))
		}
	}

	logger.Info("websocket connection closed")
}

func pumpMessages(src, dst *websocket.Conn, direction string, logger *zap.Logger) error {
	for {
		messageType, message, err := src.ReadMessage()
		if err != nil {
			return err
		}

		logger.Debug("websocket message",
			zap.String("direction", direction),
			zap.Int("message_type", messageType),
			zap.Int("message_size", len(message)),
		)

		if err := dst.WriteMessage(messageType, message); err != nil {
			logger.Error("failed to write websocket message",
				zap.String("direction", direction),
				zap.Error(err),
			)
			return err
		}
	}
}
