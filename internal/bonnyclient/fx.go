package bonnyclient

import (
	"github.com/pantrysense/pantrysense/internal/clock"
	"github.com/pantrysense/pantrysense/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("bonny.client",
	fx.Provide(provideTokenStore),
	fx.Provide(provideClient),
)

func provideTokenStore(cfg config.Config) *TokenStore {
	return NewTokenStore(cfg.TokenFile)
}

func provideClient(cfg config.Config, tokens *TokenStore, clk clock.Clock, log *zap.Logger) *Client {
	return New(Config{
		BaseURL:   cfg.RetailAPIBaseURL,
		UserAgent: cfg.RetailAPIUserAgent,
	}, tokens, clk, log)
}
