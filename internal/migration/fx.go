package migration

import (
	productdomain "github.com/pantrysense/pantrysense/internal/product/domain"
	receiptdomain "github.com/pantrysense/pantrysense/internal/receipt/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB) error {
		if conn.Dialector.Name() == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			return RunMigrations(sqlDB)
		}

		// sqlite and mysql derive the schema from the models.
		return conn.AutoMigrate(
			&receiptdomain.Receipt{},
			&receiptdomain.ReceiptItem{},
			&receiptdomain.ReceiptDiscount{},
			&receiptdomain.ReceiptVAT{},
			&productdomain.CachedProduct{},
		)
	}),
)
