package order

import (
	"context"

	"github.com/greenmandi/storefront/internal/mirror"
	"github.com/greenmandi/storefront/internal/order/domain"
	"github.com/greenmandi/storefront/internal/order/repository"
	"github.com/greenmandi/storefront/internal/order/service"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("order",
	fx.Provide(repository.Provide),
	fx.Provide(mirror.NewTopic[domain.Order]),
	fx.Provide(mirror.NewMirror[domain.Order]),
	fx.Provide(service.New),
	fx.Invoke(runMirror),
	fx.Invoke(primeTopic),
)

// runMirror keeps the local orders mirror applying snapshots for the
// lifetime of the app; teardown is bound to the fx stop hook.
func runMirror(lc fx.Lifecycle, m *mirror.Mirror[domain.Order]) {
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

// primeTopic publishes the initial snapshot so subscribers do not start from
// an empty mirror after a restart. An already-primed topic is left alone; its
// snapshot is at least as fresh as what a re-read would produce.
func primeTopic(lc fx.Lifecycle, conn *gorm.DB, repo domain.Repository, topic *mirror.Topic[domain.Order]) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if _, primed := topic.Latest(); primed {
				return nil
			}
			items, err := repo.FindAll(ctx, conn)
			if err != nil {
				return err
			}
			topic.Publish(items)
			return nil
		},
	})
}
