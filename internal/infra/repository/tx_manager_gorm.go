package repository

import (
	"context"

	repo "maltiti/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	checkouts     repo.CheckoutRepository
	carts         repo.CartRepository
	products      repo.ProductRepository
	users         repo.UserRepository
	verifications repo.VerificationRepository
	notifications repo.NotificationRepository
	auditLogs     repo.AuditLogRepository
}

func (r *txReposGorm) Checkouts() repo.CheckoutRepository         { return r.checkouts }
func (r *txReposGorm) Carts() repo.CartRepository                 { return r.carts }
func (r *txReposGorm) Products() repo.ProductRepository           { return r.products }
func (r *txReposGorm) Users() repo.UserRepository                 { return r.users }
func (r *txReposGorm) Verifications() repo.VerificationRepository { return r.verifications }
func (r *txReposGorm) Notifications() repo.NotificationRepository { return r.notifications }
func (r *txReposGorm) AuditLogs() repo.AuditLogRepository         { return r.auditLogs }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			checkouts:     NewCheckoutGormRepository(tx),
			carts:         NewCartGormRepository(tx),
			products:      NewProductGormRepository(tx),
			users:         NewUserGormRepository(tx),
			verifications: NewVerificationGormRepository(tx),
			notifications: NewNotificationGormRepository(tx),
			auditLogs:     NewAuditLogGormRepository(tx),
		}
		return fn(r)
	})
}
