// Package config loads and validates the gateway's YAML configuration.
// File values override the documented defaults; a missing file yields the
// defaults unchanged.
package config

import (
	"fmt"
	"net/url"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/corsairproxy/corsair/internal/cors"
)

// Config is the full configuration surface of the gateway.
type Config struct {
	Server Server `koanf:"server"`
	Log    Log    `koanf:"log"`
}

// Server configures the listeners, the upstream target, and CORS.
type Server struct {
	// Listen is the HTTPS/HTTP3 address. HTTPListen serves plain HTTP,
	// used for the ACME HTTP-01 challenge when TLS is enabled and as the
	// only listener when it is not.
	Listen     string `koanf:"listen"`
	HTTPListen string `koanf:"http_listen"`
	Domain     string `koanf:"domain"`
	Target     string `koanf:"target"`

	// InsecureUpstream skips TLS verification when dialing the upstream.
	// Local development only.
	InsecureUpstream bool `koanf:"insecure_upstream"`

	TLS  TLS  `koanf:"tls"`
	CORS CORS `koanf:"cors"`
}

// TLS configures certificate provisioning for the public listeners.
type TLS struct {
	Enabled bool `koanf:"enabled"`
	// SelfSigned generates a throwaway certificate instead of using ACME.
	SelfSigned bool   `koanf:"self_signed"`
	CertDir    string `koanf:"cert_dir"`
}

// CORS mirrors the server.cors configuration surface.
type CORS struct {
	AllowAnyOrigin   bool     `koanf:"allow_any_origin"`
	Origins          []string `koanf:"origins"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	AllowHeaders     []string `koanf:"allow_headers"`
	Methods          []string `koanf:"methods"`
	ExposeHeaders    []string `koanf:"expose_headers"`
	MaxAge           int      `koanf:"max_age"`
}

// Log configures the zap logger.
type Log struct {
	Level string   `koanf:"level"`
	Paths []string `koanf:"paths"`
}

// Default returns the configuration used when no file (or an empty file)
// is provided.
func Default() *Config {
	corsDefaults := cors.Default()
	return &Config{
		Server: Server{
			Listen:     "0.0.0.0:443",
			HTTPListen: "0.0.0.0:80",
			Domain:     "localhost",
			Target:     "http://localhost:4000",
			TLS: TLS{
				CertDir: "certs",
			},
			CORS: CORS{
				Origins:      corsDefaults.Origins,
				AllowHeaders: corsDefaults.AllowHeaders,
				Methods:      corsDefaults.Methods,
			},
		},
		Log: Log{
			Level: "info",
			Paths: []string{"stdout"},
		},
	}
}

// Load reads the YAML file at path on top of the defaults and validates
// the result. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		k := koanf.New(".")
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
		if err := k.Unmarshal("", cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Target == "" {
		return fmt.Errorf("config: server.target is required")
	}
	u, err := url.Parse(c.Server.Target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: server.target %q is not a valid URL", c.Server.Target)
	}
	// Surface CORS policy errors at load time rather than at serve time.
	if _, err := c.Policy(); err != nil {
		return err
	}
	return nil
}

// Policy builds the immutable CORS policy snapshot from the loaded
// configuration.
func (c *Config) Policy() (*cors.Policy, error) {
	return cors.NewPolicy(cors.Config{
		AllowAnyOrigin:   c.Server.CORS.AllowAnyOrigin,
		Origins:          c.Server.CORS.Origins,
		AllowCredentials: c.Server.CORS.AllowCredentials,
		AllowHeaders:     c.Server.CORS.AllowHeaders,
		Methods:          c.Server.CORS.Methods,
		ExposeHeaders:    c.Server.CORS.ExposeHeaders,
		MaxAge:           c.Server.CORS.MaxAge,
	})
}

// Watch re-loads the file whenever it changes and hands the result to
// apply. Load errors are reported to onErr and the previous configuration
// stays in effect; readers only ever see complete snapshots.
func Watch(path string, apply func(*Config), onErr func(error)) error {
	f := file.Provider(path)
	return f.Watch(func(_ interface{}, err error) {
		if err != nil {
			onErr(fmt.Errorf("watch config file %s: %w", path, err))
			return
		}
		cfg, err := Load(path)
		if err != nil {
			onErr(err)
			return
		}
		apply(cfg)
	})
}
