package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order status values. Transitions are directional:
// pending → {in_progress, cancelled}; in_progress → completed;
// completed and cancelled are terminal.
const (
	OrderPending    = "pending"
	OrderInProgress = "in_progress"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"
)

// Payment method values accepted at finalization.
const (
	PaymentCash         = "cash"
	PaymentCard         = "card"
	PaymentPix          = "pix"
	PaymentInstallments = "installments"
)

// ServiceOrder belongs to exactly one CashierSession, the one open at
// creation time. Finalization posts payment totals back onto that session.
type ServiceOrder struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderNumber string    `gorm:"uniqueIndex;not null"`
	FranchiseID uuid.UUID `gorm:"type:uuid;not null;index"`
	ClientID    uuid.UUID `gorm:"type:uuid;not null"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null"`
	SessionID   uuid.UUID `gorm:"type:uuid;not null;index"`

	Status      string          `gorm:"type:varchar(20);not null;default:'pending'"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	PaymentMethod    *string          `gorm:"type:varchar(20)"`
	CardInstallments *int
	CardInterest     *decimal.Decimal `gorm:"type:decimal(5,2)"`
	TotalPaid        decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	ProductDelivered bool             `gorm:"not null;default:false"`

	CancellationReason *string
	Description        *string
	Notes              *string

	CreatedAt time.Time
	UpdatedAt time.Time

	Items   []ServiceOrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Client  *Client            `gorm:"foreignKey:ClientID"`
	Session *CashierSession    `gorm:"foreignKey:SessionID"`
}

// ServiceOrderItem is owned exclusively by its order. Name and price are
// snapshots taken at creation; items are replaced wholesale on order update.
type ServiceOrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time
}
