package worker

// email_worker.go
// Sends receipt emails from QueueEmail. SMTP calls go through a circuit
// breaker so a dead mail server fast-fails instead of stalling every worker.

import (
	"context"
	"encoding/json"

	"github.com/onnez7/lenzoocrm-sub000/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJob is the job envelope sent to QueueEmail.
type EmailJob struct {
	ToEmail string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	PDFPath string `json:"pdf_path,omitempty"`
}

// EmailWorker delivers receipt emails via SMTP.
type EmailWorker struct {
	mailer  *infra.Mailer
	breaker *infra.CircuitBreaker
}

func NewEmailWorker(mailer *infra.Mailer, breaker *infra.CircuitBreaker) *EmailWorker {
	return &EmailWorker{mailer: mailer, breaker: breaker}
}

// Process sends one email. Returning an error triggers the pool's retry and,
// after the last attempt, the DLQ.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJob
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return nil
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty recipient, discarding")
		return nil
	}

	err := w.breaker.Execute(func() error {
		return w.mailer.SendReceipt(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
	})
	if err != nil {
		log.Warn().Err(err).Str("email", payload.ToEmail).Msg("email_worker: send failed")
		return err
	}

	log.Info().Str("email", payload.ToEmail).Msg("email_worker: receipt sent")
	return nil
}
