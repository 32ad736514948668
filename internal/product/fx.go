package product

import (
	"github.com/pantrysense/pantrysense/internal/clock"
	"github.com/pantrysense/pantrysense/internal/config"
	"github.com/pantrysense/pantrysense/internal/product/repository"
	"github.com/pantrysense/pantrysense/internal/product/service"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("product",
	fx.Provide(repository.Provide),
	fx.Provide(provideClient),
	fx.Provide(func(c *Client) service.Catalog { return c }),
	fx.Provide(service.New),
)

func provideClient(cfg config.Config, clk clock.Clock, log *zap.Logger) *Client {
	return NewClient(ClientConfig{
		BaseURL:   cfg.RetailAPIBaseURL,
		UserAgent: cfg.RetailAPIUserAgent,
	}, clk, log)
}
