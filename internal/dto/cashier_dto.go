package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenSessionRequest struct {
	EmployeeID    string          `json:"employee_id"    validate:"required,uuid"`
	InitialAmount decimal.Decimal `json:"initial_amount" validate:"min=0"`
	Notes         *string         `json:"notes"`
}

type CloseSessionRequest struct {
	CashAmount decimal.Decimal `json:"cash_amount" validate:"min=0"`
	CardAmount decimal.Decimal `json:"card_amount" validate:"min=0"`
	PixAmount  decimal.Decimal `json:"pix_amount"  validate:"min=0"`
	Notes      *string         `json:"notes"`
}

type SangriaRequest struct {
	SessionID   string          `json:"session_id"  validate:"required,uuid"`
	Amount      decimal.Decimal `json:"amount"      validate:"required,gt=0"`
	Description string          `json:"description" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SessionResponse struct {
	ID            string           `json:"id"`
	SessionCode   string           `json:"session_code"`
	FranchiseID   string           `json:"franchise_id"`
	EmployeeID    string           `json:"employee_id"`
	InitialAmount decimal.Decimal  `json:"initial_amount"`
	FinalAmount   *decimal.Decimal `json:"final_amount"`
	Difference    *decimal.Decimal `json:"difference"`
	CashSales     decimal.Decimal  `json:"cash_sales"`
	CardSales     decimal.Decimal  `json:"card_sales"`
	PixSales      decimal.Decimal  `json:"pix_sales"`
	TotalSales    decimal.Decimal  `json:"total_sales"`
	Status        string           `json:"status"`
	Notes         *string          `json:"notes"`
	OpenTime      string           `json:"open_time"`
	CloseTime     *string          `json:"close_time"`
}

// CloseSessionResponse adds the close reconciliation figures to the session.
// SangriaTotal is informational: withdrawals reduce the cash the operator is
// expected to count but are not part of the difference formula.
type CloseSessionResponse struct {
	Session            SessionResponse `json:"session"`
	ExpectedTotal      decimal.Decimal `json:"expected_total"`
	CountedTotal       decimal.Decimal `json:"counted_total"`
	Difference         decimal.Decimal `json:"difference"`
	SangriaTotal       decimal.Decimal `json:"sangria_total"`
	ReceivablesCreated int             `json:"receivables_created"`
}

type SangriaResponse struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"session_id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   string          `json:"created_at"`
}

type SessionListResponse struct {
	Data  []SessionResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
