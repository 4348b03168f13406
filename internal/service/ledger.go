package service

import (
	"fmt"
	"time"

	"github.com/onnez7/lenzoocrm-sub000/internal/model"

	"github.com/shopspring/decimal"
)

// installmentSpacingDays separates consecutive due dates; the first
// installment falls due this many days after the session closes.
const installmentSpacingDays = 30

// splitInstallments divides total into n parts that sum to total exactly.
// Each part is total/n rounded to cents; the final part absorbs the rounding
// remainder, so R$ 100.00 in 3 becomes 33.33, 33.33, 33.34.
func splitInstallments(total decimal.Decimal, n int) []decimal.Decimal {
	if n <= 1 {
		return []decimal.Decimal{total}
	}
	base := total.DivRound(decimal.NewFromInt(int64(n)), 2)
	parts := make([]decimal.Decimal, n)
	running := decimal.Zero
	for i := 0; i < n-1; i++ {
		parts[i] = base
		running = running.Add(base)
	}
	parts[n-1] = total.Sub(running)
	return parts
}

// buildInstallmentReceivables derives the receivable rows for one completed
// installment order: one per installment, due dates 30 days apart starting
// 30 days after close, description "Parcela i/N - <order_number>".
func buildInstallmentReceivables(order *model.ServiceOrder, closeTime time.Time) []model.Receivable {
	n := 1
	if order.CardInstallments != nil && *order.CardInstallments > 1 {
		n = *order.CardInstallments
	}
	parts := splitInstallments(order.TotalAmount, n)

	orderID := order.ID
	sessionID := order.SessionID
	rows := make([]model.Receivable, 0, n)
	for i, amount := range parts {
		rows = append(rows, model.Receivable{
			FranchiseID: order.FranchiseID,
			OrderID:     &orderID,
			SessionID:   &sessionID,
			Category:    model.CategoryInstallmentSales,
			Description: fmt.Sprintf("Parcela %d/%d - %s", i+1, n, order.OrderNumber),
			Amount:      amount,
			DueDate:     closeTime.AddDate(0, 0, installmentSpacingDays*(i+1)),
			Status:      model.ReceivablePending,
		})
	}
	return rows
}
