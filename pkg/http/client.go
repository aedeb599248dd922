package http

import (
	"net"
	"net/http"
	"time"
)

type TransportFunc func(http.RoundTripper) http.RoundTripper

// Timeouts groups the client deadline and the transport deadlines.
// Zero fields keep the defaults.
type Timeouts struct {
	Request        time.Duration
	Connect        time.Duration
	KeepAlive      time.Duration
	TLSHandshake   time.Duration
	ResponseHeader time.Duration
	IdleConn       time.Duration
}

type httpConfig struct {
	timeouts            Timeouts
	maxIdleConns        int
	maxIdleConnsPerHost int
	transports          []TransportFunc
}

func defaultHTTPConfig() *httpConfig {
	return &httpConfig{
		timeouts: Timeouts{
			Request:        30 * time.Second,
			Connect:        30 * time.Second,
			KeepAlive:      90 * time.Second,
			TLSHandshake:   10 * time.Second,
			ResponseHeader: 10 * time.Second,
			IdleConn:       90 * time.Second,
		},
		maxIdleConns:        100,
		maxIdleConnsPerHost: 10,
	}
}

// NewClient builds an http.Client with the connector's transport stack.
// Provider SDKs that accept a custom client reuse it to get the same timeouts and logging.
func NewClient(opts ...HttpOpts) *http.Client {
	cfg := defaultHTTPConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	dialer := &net.Dialer{
		Timeout:   cfg.timeouts.Connect,
		KeepAlive: cfg.timeouts.KeepAlive,
	}

	var transport http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          cfg.maxIdleConns,
		MaxIdleConnsPerHost:   cfg.maxIdleConnsPerHost,
		TLSHandshakeTimeout:   cfg.timeouts.TLSHandshake,
		ResponseHeaderTimeout: cfg.timeouts.ResponseHeader,
		IdleConnTimeout:       cfg.timeouts.IdleConn,
	}

	// First registered wrapper ends up closest to the network
	for _, wrap := range cfg.transports {
		transport = wrap(transport)
	}

	return &http.Client{
		Timeout:   cfg.timeouts.Request,
		Transport: transport,
	}
}
