package receipt

import (
	"github.com/pantrysense/pantrysense/internal/receipt/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("receipt",
	fx.Provide(repository.Provide),
)
