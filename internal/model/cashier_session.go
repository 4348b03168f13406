package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session status values.
const (
	SessionOpen   = "open"
	SessionClosed = "closed"
)

// CashierSession represents the lifecycle of a daily cash register session.
// At most one open session may exist per franchise, enforced by a partial
// unique index on (franchise_id) WHERE status='open' (see infra schema
// patches), not just by the pre-insert lookup.
type CashierSession struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionCode string    `gorm:"type:varchar(20);not null"`
	FranchiseID uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null"`

	InitialAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// FinalAmount and Difference are fixed once, at close.
	FinalAmount *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Difference  *decimal.Decimal `gorm:"type:decimal(12,2)"`

	// Running sales aggregates, mutated additively by order finalization.
	CashSales  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CardSales  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PixSales   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalSales decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`

	Status    string  `gorm:"type:varchar(10);not null;default:'open'"`
	Notes     *string
	OpenTime  time.Time
	CloseTime *time.Time

	Sangrias []CashierSangria `gorm:"foreignKey:SessionID"`
}

// CashierSangria is an append-only cash withdrawal record. Sangrias are never
// updated or deleted; they reduce the expected cash the client reconciles at
// close but are not folded into the session columns.
type CashierSangria struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description string          `gorm:"not null"`
	CreatedAt   time.Time
}
