package main

import (
	"crypto/tls"
	"flag"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/quic-go/quic-go/http3"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"

	"github.com/corsairproxy/corsair/internal/config"
	"github.com/corsairproxy/corsair/internal/cors"
	"github.com/corsairproxy/corsair/internal/gateway"
	"github.com/corsairproxy/corsair/internal/logger"
	"github.com/corsairproxy/corsair/internal/metrics"
)

func main() {
	configPath := flag.String("config", "", "Path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logger.New(cfg.Log.Level, cfg.Log.Paths)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	policy, err := cfg.Policy()
	if err != nil {
		logger.Fatal("Invalid CORS policy", zap.Error(err))
	}
	store := cors.NewStore(policy)

	// Edits to the config file swap in a fresh policy snapshot; in-flight
	// requests finish against the snapshot they started with.
	if *configPath != "" {
		err := config.Watch(*configPath,
			func(next *config.Config) {
				p, err := next.Policy()
				if err != nil {
					metrics.PolicyReloadsTotal.WithLabelValues("error").Inc()
					logger.Error("reloaded config has invalid CORS policy", zap.Error(err))
					return
				}
				store.Swap(p)
				metrics.PolicyReloadsTotal.WithLabelValues("success").Inc()
				logger.Info("cors policy reloaded", zap.String("config", *configPath))
			},
			func(err error) {
				metrics.PolicyReloadsTotal.WithLabelValues("error").Inc()
				logger.Error("config reload failed", zap.Error(err))
			},
		)
		if err != nil {
			logger.Fatal("Failed to watch config file", zap.Error(err))
		}
	}

	gw, err := gateway.New(logger, cfg.Server.Target, store, cfg.Server.InsecureUpstream)
	if err != nil {
		logger.Fatal("Failed to create gateway", zap.Error(err))
	}

	mux := http.NewServeMux()
	mux.Handle("/", gw)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", gateway.HealthHandler)

	if !cfg.Server.TLS.Enabled {
		logger.Info("starting HTTP server",
			zap.String("addr", cfg.Server.HTTPListen),
			zap.String("target", cfg.Server.Target),
		)
		if err := http.ListenAndServe(cfg.Server.HTTPListen, mux); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
		return
	}

	var tlsConfig *tls.Config
	if cfg.Server.TLS.SelfSigned {
		cert, err := gateway.GenerateSelfSignedCert(cfg.Server.Domain)
		if err != nil {
			logger.Fatal("Failed to generate certificate", zap.Error(err))
		}
		tlsConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			NextProtos:   []string{"h3"},
		}
	} else {
		certManager := autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(cfg.Server.Domain),
			Cache:      autocert.DirCache(cfg.Server.TLS.CertDir),
		}
		tlsConfig = &tls.Config{
			GetCertificate: certManager.GetCertificate,
			NextProtos:     []string{"h3"},
		}

		go func() {
			logger.Info("starting HTTP-01 challenge server", zap.String("addr", cfg.Server.HTTPListen))
			if err := http.ListenAndServe(cfg.Server.HTTPListen, certManager.HTTPHandler(nil)); err != nil {
				logger.Fatal("HTTP-01 server failed", zap.Error(err))
			}
		}()
	}

	h3server := http3.Server{
		Addr:      cfg.Server.Listen,
		Handler:   mux,
		TLSConfig: tlsConfig,
	}

	go func() {
		server := &http.Server{
			Addr:      cfg.Server.Listen,
			Handler:   mux,
			TLSConfig: tlsConfig,
		}
		logger.Info("starting HTTPS server",
			zap.String("addr", cfg.Server.Listen),
			zap.String("target", cfg.Server.Target),
		)
		if err := server.ListenAndServeTLS("", ""); err != nil {
			logger.Fatal("HTTPS server failed", zap.Error(err))
		}
	}()

	logger.Info("starting HTTP/3 server",
		zap.String("addr", cfg.Server.Listen),
		zap.String("domain", cfg.Server.Domain),
	)
	if err := h3server.ListenAndServe(); err != nil {
		logger.Fatal("HTTP/3 server failed", zap.Error(err))
	}
}
