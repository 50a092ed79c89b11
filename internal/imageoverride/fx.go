package imageoverride

import (
	"context"

	"github.com/greenmandi/storefront/internal/imageoverride/domain"
	"github.com/greenmandi/storefront/internal/imageoverride/objectstore"
	"github.com/greenmandi/storefront/internal/imageoverride/repository"
	"github.com/greenmandi/storefront/internal/imageoverride/service"
	"go.uber.org/fx"
)

var Module = fx.Module("imageoverride",
	fx.Provide(repository.Provide),
	fx.Provide(func(disk *objectstore.Disk) domain.ObjectStore { return disk }),
	fx.Provide(objectstore.NewDisk),
	fx.Provide(service.New),
	fx.Invoke(func(lc fx.Lifecycle, s *service.Service) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return s.Initialize(ctx)
			},
		})
	}),
)
