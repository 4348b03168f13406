package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Receivable status values.
const (
	ReceivablePending = "pending"
	ReceivablePaid    = "paid"
	ReceivableOverdue = "overdue"
)

// CategoryInstallmentSales is the category stamped on receivables generated
// from installment orders at session close.
const CategoryInstallmentSales = "Vendas Parceladas"

// Receivable is a ledger entry derived from completed installment orders when
// their session closes: one row per installment, due dates 30 days apart.
// Generation happens exactly once per order because each order belongs to one
// session and a session closes once.
type Receivable struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FranchiseID uuid.UUID  `gorm:"type:uuid;not null;index"`
	OrderID     *uuid.UUID `gorm:"type:uuid;index"`
	SessionID   *uuid.UUID `gorm:"type:uuid;index"`

	Category    string          `gorm:"not null"`
	Description string          `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DueDate     time.Time       `gorm:"not null;index"`
	Status      string          `gorm:"type:varchar(10);not null;default:'pending'"`
	PaidAt      *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
