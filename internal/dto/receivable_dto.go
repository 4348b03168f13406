package dto

import "github.com/shopspring/decimal"

type ReceivableFilter struct {
	Status string `form:"status"` // pending | paid | overdue | all
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ReceivableResponse struct {
	ID          string          `json:"id"`
	OrderID     *string         `json:"order_id"`
	SessionID   *string         `json:"session_id"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     string          `json:"due_date"`
	Status      string          `json:"status"`
	PaidAt      *string         `json:"paid_at"`
}

type ReceivableListResponse struct {
	Data  []ReceivableResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
