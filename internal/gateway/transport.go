package gateway

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

func newTransport(insecureUpstream bool) *http.Transport {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if insecureUpstream {
		// Local development against self-signed upstreams only.
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return t
}
