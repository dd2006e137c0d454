package worker

// email_worker.go processes QueueEmail: customer receipts and low-stock
// alerts, sent through the SMTP mailer.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"inventorypos/internal/infra"

	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ToEmail        string `json:"to_email"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	AttachmentPath string `json:"attachment_path,omitempty"`
}

// MailSender is the part of infra.Mailer the worker needs.
type MailSender interface {
	Enabled() bool
	Send(msg infra.Message) error
}

type EmailWorker struct {
	mailer MailSender
}

func NewEmailWorker(mailer MailSender) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

// Process sends one e-mail, retrying transient SMTP failures. An open
// circuit is not retried: the job goes straight to the DLQ.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("email_worker: invalid payload: %w", err)
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email, skipping")
		return nil
	}
	if !w.mailer.Enabled() {
		log.Warn().Str("to", payload.ToEmail).Msg("email_worker: smtp not configured, skipping")
		return nil
	}

	msg := infra.Message{
		To:         payload.ToEmail,
		Subject:    payload.Subject,
		Body:       payload.Body,
		Attachment: payload.AttachmentPath,
	}
	err := withRetry(ctx, maxAttempts, func(attempt int) error {
		err := w.mailer.Send(msg)
		if err != nil && !errors.Is(err, infra.ErrCircuitOpen) {
			log.Warn().Err(err).Int("attempt", attempt+1).Str("to", payload.ToEmail).Msg("email_worker: send failed")
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("email_worker: send to %s: %w", payload.ToEmail, err)
	}
	log.Info().Str("to", payload.ToEmail).Str("subject", payload.Subject).Msg("email_worker: sent")
	return nil
}
