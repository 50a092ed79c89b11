package farmer

import (
	"context"

	"github.com/greenmandi/storefront/internal/farmer/domain"
	"github.com/greenmandi/storefront/internal/farmer/repository"
	"github.com/greenmandi/storefront/internal/farmer/service"
	"github.com/greenmandi/storefront/internal/mirror"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("farmer",
	fx.Provide(repository.Provide),
	fx.Provide(mirror.NewTopic[domain.Farmer]),
	fx.Provide(mirror.NewMirror[domain.Farmer]),
	fx.Provide(service.New),
	fx.Invoke(runMirror),
	fx.Invoke(primeTopic),
)

func runMirror(lc fx.Lifecycle, m *mirror.Mirror[domain.Farmer]) {
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

func primeTopic(lc fx.Lifecycle, conn *gorm.DB, repo domain.Repository, topic *mirror.Topic[domain.Farmer]) {
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
