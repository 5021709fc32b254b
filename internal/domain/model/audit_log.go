package model

import "time"

// 注文ステータス更新、商品の公開切替など。
type AuditAction string

const (
	//注文ステータスを更新した操作。
	AuditActionUpdateOrderStatus AuditAction = "UPDATE_ORDER_STATUS"
	//支払いステータスを更新した操作。
	AuditActionUpdatePaymentStatus AuditAction = "UPDATE_PAYMENT_STATUS"
	//商品の公開/非公開を切り替えた操作。
	AuditActionToggleProductStatus AuditAction = "TOGGLE_PRODUCT_STATUS"
	//商品を削除した操作。
	AuditActionDeleteProduct AuditAction = "DELETE_PRODUCT"
	AuditActionCreateProduct AuditAction = "CREATE_PRODUCT"
	//価格・在庫などを編集した操作。
	AuditActionUpdateProduct AuditAction = "UPDATE_PRODUCT"
	//ユーザーを強制ログアウトさせた操作。
	AuditActionForceLogout AuditAction = "FORCE_LOGOUT"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct AuditResourceType = "product"
	AuditResourceOrder   AuditResourceType = "order"
	AuditResourceUser    AuditResourceType = "user"
)

// 監査ログ（管理者操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作した管理者のID
	ActorUserID string `gorm:"type:uuid;not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	ResourceID string `gorm:"type:varchar(64);not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`
	AfterJSON  string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
