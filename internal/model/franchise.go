package model

import (
	"time"

	"github.com/google/uuid"
)

// Franchise is the tenant boundary. Every cashier and order operation is
// scoped to exactly one franchise.
type Franchise struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	CNPJ      *string   `gorm:"type:varchar(18)"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
