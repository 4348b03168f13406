package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipt after an order is finalized as
// completed. Generates the PDF receipt and, when the client has an email
// address on file, enqueues an email job with the attachment.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/onnez7/lenzoocrm-sub000/internal/infra"
	"github.com/onnez7/lenzoocrm-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReceiptJob is the job envelope sent to QueueReceipt.
type ReceiptJob struct {
	OrderID string `json:"order_id"`
}

// ReceiptWorker generates PDF receipts for finalized orders.
type ReceiptWorker struct {
	orderRepo      repository.OrderRepository
	dispatcher     *Dispatcher
	pdfStoragePath string
	businessName   string
}

func NewReceiptWorker(
	orderRepo repository.OrderRepository,
	dispatcher *Dispatcher,
	pdfStoragePath string,
	businessName string,
) *ReceiptWorker {
	return &ReceiptWorker{
		orderRepo:      orderRepo,
		dispatcher:     dispatcher,
		pdfStoragePath: pdfStoragePath,
		businessName:   businessName,
	}
}

// Process handles a single receipt job:
//  1. Parse ReceiptJob from the job envelope
//  2. Fetch the order (with items and client) from DB
//  3. Generate the PDF receipt
//  4. Enqueue an email job if the client has an email address
//
// Malformed payloads are not retryable and return nil so the pool does not
// resubmit them.
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJob
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return nil
	}

	orderID, err := uuid.Parse(payload.OrderID)
	if err != nil {
		log.Error().Str("order_id", payload.OrderID).Msg("receipt_worker: invalid order_id")
		return nil
	}

	order, err := w.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Str("order_id", payload.OrderID).Msg("receipt_worker: order not found")
		return err
	}

	pdfPath, err := infra.GenerateOrderReceiptPDF(order, w.pdfStoragePath, w.businessName)
	if err != nil {
		log.Error().Err(err).Str("order_id", payload.OrderID).Msg("receipt_worker: PDF generation failed")
		return err
	}
	log.Info().Str("pdf", pdfPath).Str("order_number", order.OrderNumber).Msg("receipt_worker: PDF generated")

	if order.Client == nil || order.Client.Email == nil || *order.Client.Email == "" {
		return nil
	}

	emailJob := EmailJob{
		ToEmail: *order.Client.Email,
		Subject: fmt.Sprintf("Comprovante %s - Ordem %s", w.businessName, order.OrderNumber),
		Body: fmt.Sprintf("Olá, %s!\n\nSegue em anexo o comprovante da sua ordem de serviço %s.\nTotal: R$ %s\n\nObrigado pela preferência.",
			order.Client.Name, order.OrderNumber, order.TotalAmount.StringFixed(2)),
		PDFPath: pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		log.Warn().Err(err).Str("email", *order.Client.Email).Msg("receipt_worker: failed to enqueue email")
		return err
	}
	log.Info().Str("email", *order.Client.Email).Msg("receipt_worker: email job enqueued")
	return nil
}
