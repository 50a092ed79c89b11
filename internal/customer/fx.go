package customer

import (
	"context"

	"github.com/greenmandi/storefront/internal/customer/domain"
	"github.com/greenmandi/storefront/internal/customer/repository"
	"github.com/greenmandi/storefront/internal/customer/service"
	"github.com/greenmandi/storefront/internal/mirror"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("customer",
	fx.Provide(repository.Provide),
	fx.Provide(mirror.NewTopic[domain.Customer]),
	fx.Provide(mirror.NewMirror[domain.Customer]),
	fx.Provide(service.New),
	fx.Invoke(runMirror),
	fx.Invoke(primeTopic),
)

func runMirror(lc fx.Lifecycle, m *mirror.Mirror[domain.Customer]) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go m.Run(ctx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func primeTopic(lc fx.Lifecycle, conn *gorm.DB, repo domain.Repository, topic *mirror.Topic[domain.Customer]) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			items, err := repo.FindAll(ctx, conn)
			if err != nil {
				return err
			}
			topic.Publish(items)
			return nil
		},
	})
}
