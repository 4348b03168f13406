package model

import (
	"time"

	"github.com/google/uuid"
)

// Client is a franchise customer. Orders reference clients; the receipt
// worker mails the PDF when the client has an email address.
type Client struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	FranchiseID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"not null"`
	Email       *string
	Phone       *string `gorm:"type:varchar(20)"`
	Active      bool    `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
