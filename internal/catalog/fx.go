package catalog

import (
	"context"

	"github.com/greenmandi/storefront/internal/catalog/repository"
	"github.com/greenmandi/storefront/internal/catalog/service"
	"github.com/greenmandi/storefront/internal/catalog/store"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog",
	fx.Provide(repository.Provide),
	fx.Provide(store.New),
	fx.Provide(service.New),
	fx.Invoke(func(lc fx.Lifecycle, s *store.Store) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return s.Initialize(ctx)
			},
		})
	}),
)
