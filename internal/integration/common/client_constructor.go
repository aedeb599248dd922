package common

import (
	"github.com/futig/notes-backend/internal/config"
	pkgHTTP "github.com/futig/notes-backend/pkg/http"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

func httpOptions(cfg config.HTTPClientConfig) []pkgHTTP.HttpOpts {
	return []pkgHTTP.HttpOpts{
		pkgHTTP.WithTimeouts(pkgHTTP.Timeouts{
			Request:        cfg.RequestTimeout,
			Connect:        cfg.ConnTimeout,
			KeepAlive:      cfg.KeepAlive,
			TLSHandshake:   cfg.TLSHandshakeTimeout,
			ResponseHeader: cfg.ResponseHeaderTimeout,
			IdleConn:       cfg.IdleConnTimeout,
		}),
		pkgHTTP.WithConnectionPool(cfg.MaxIdleConns, cfg.MaxIdleConnsPerHost),
		pkgHTTP.WithRequestLogging(),
	}
}

// NewBaseConnector builds a JSON connector for provider endpoints the SDK does not cover
func NewBaseConnector(cfg config.OpenAIConfig, logger *zap.Logger) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: cfg.Url,
	}

	opts := append(httpOptions(cfg.HTTPClientConfig), pkgHTTP.WithAuth(cfg.APIKey, cfg.Organization))
	return pkgHTTP.NewConnector(connCfg, opts...)
}

// NewOpenAIClient builds an SDK client on top of the shared transport stack.
// The SDK sets the Authorization header itself.
func NewOpenAIClient(cfg config.OpenAIConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.OrgID = cfg.Organization
	if cfg.Url != "" {
		clientCfg.BaseURL = cfg.Url
	}
	clientCfg.HTTPClient = pkgHTTP.NewClient(httpOptions(cfg.HTTPClientConfig)...)

	return openai.NewClientWithConfig(clientCfg)
}
