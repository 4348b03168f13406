package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// OrderFilter is bound from query string of GET /v1/orders.
type OrderFilter struct {
	Date   string `form:"date"`   // YYYY-MM-DD; empty = today
	Status string `form:"status"` // pending | in_progress | completed | cancelled | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,min=1"`
}

type CreateOrderRequest struct {
	ClientID    string             `json:"client_id"   validate:"required,uuid"`
	Items       []OrderItemRequest `json:"items"       validate:"required,min=1,dive"`
	Description *string            `json:"description"`
	Notes       *string            `json:"notes"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress completed cancelled"`
}

type FinalizeOrderRequest struct {
	PaymentMethod      string           `json:"payment_method"      validate:"required,oneof=cash card pix installments"`
	CardInstallments   *int             `json:"card_installments"   validate:"omitempty,min=1,max=24"`
	CardInterest       *decimal.Decimal `json:"card_interest"`
	TotalPaid          decimal.Decimal  `json:"total_paid"          validate:"min=0"`
	ProductDelivered   bool             `json:"product_delivered"`
	Status             string           `json:"status"              validate:"required,oneof=completed cancelled"`
	CancellationReason *string          `json:"cancellation_reason"`
	Observations       *string          `json:"observations"`
}

// UpdateOrderRequest carries a typed partial update: nil fields are left
// untouched, a non-nil Items slice replaces every existing item row.
type UpdateOrderRequest struct {
	Description *string             `json:"description"`
	Notes       *string             `json:"notes"`
	Items       *[]OrderItemRequest `json:"items" validate:"omitempty,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OrderItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

type OrderResponse struct {
	ID                 string              `json:"id"`
	OrderNumber        string              `json:"order_number"`
	ClientID           string              `json:"client_id"`
	ClientName         string              `json:"client_name,omitempty"`
	EmployeeID         string              `json:"employee_id"`
	SessionID          string              `json:"session_id"`
	Status             string              `json:"status"`
	TotalAmount        decimal.Decimal     `json:"total_amount"`
	PaymentMethod      *string             `json:"payment_method"`
	CardInstallments   *int                `json:"card_installments"`
	CardInterest       *decimal.Decimal    `json:"card_interest"`
	TotalPaid          decimal.Decimal     `json:"total_paid"`
	ProductDelivered   bool                `json:"product_delivered"`
	CancellationReason *string             `json:"cancellation_reason"`
	Description        *string             `json:"description"`
	Notes              *string             `json:"notes"`
	Items              []OrderItemResponse `json:"items"`
	CreatedAt          string              `json:"created_at"`
}

type OrderListResponse struct {
	Data  []OrderResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
