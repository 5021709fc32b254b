package db

import (
	"time"

	"maltiti/internal/config"
	"maltiti/internal/domain/model"

	"github.com/go-faster/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.PostgresConfig) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, errors.Wrap(err, "sql db")
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return gormDB, nil
}

// テーブル作成と、AutoMigrateでは作れない索引
func Migrate(gormDB *gorm.DB, log *zap.Logger) error {
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Verification{},
		&model.Product{},
		&model.Checkout{},
		&model.Cart{},
		&model.Cooperative{},
		&model.CooperativeMember{},
		&model.Notification{},
		&model.AuditLog{},
	); err != nil {
		return errors.Wrap(err, "auto migrate")
	}

	// 未注文の明細は（ユーザー, 商品）で1つだけ
	if err := gormDB.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_carts_open_user_product ON carts (user_id, product_id) WHERE checkout_id IS NULL`,
	).Error; err != nil {
		return errors.Wrap(err, "create open cart index")
	}

	log.Info("database migrated")
	return nil
}
