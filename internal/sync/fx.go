package sync

import (
	"github.com/pantrysense/pantrysense/internal/bonnyclient"
	"go.uber.org/fx"
)

var Module = fx.Module("sync.service",
	fx.Provide(func(client *bonnyclient.Client) ReceiptSource { return client }),
	fx.Provide(New),
)
