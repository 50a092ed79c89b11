package migration

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	catalogdomain "github.com/greenmandi/storefront/internal/catalog/domain"
	"github.com/greenmandi/storefront/internal/config"
	customerdomain "github.com/greenmandi/storefront/internal/customer/domain"
	farmerdomain "github.com/greenmandi/storefront/internal/farmer/domain"
	imagedomain "github.com/greenmandi/storefront/internal/imageoverride/domain"
	orderdomain "github.com/greenmandi/storefront/internal/order/domain"
	"github.com/greenmandi/storefront/internal/seed"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// SQLite and MySQL installs are dev/demo setups; let gorm
			// derive the schema from the models instead of maintaining
			// per-dialect migration files.
			if err := conn.AutoMigrate(
				&catalogdomain.Product{},
				&orderdomain.Order{},
				&customerdomain.Customer{},
				&farmerdomain.Farmer{},
				&imagedomain.Override{},
			); err != nil {
				return err
			}
		}

		if !cfg.SeedCatalog {
			return nil
		}
		if err := seed.EnsureCatalog(conn); err != nil {
			return err
		}
		return seed.EnsureFarmers(conn)
	}),
)
