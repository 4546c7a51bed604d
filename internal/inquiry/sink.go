// Package inquiry implements the submission boundary behind the contact
// form: a notification leg (remote endpoint or direct SMTP) and a
// persistence leg (remote endpoint or Postgres). Failures are terminal;
// there is no retry or queueing, and in development mode failed calls
// degrade to logging so the site stays usable without a live backend.
package inquiry

import (
	"context"
	"log"

	"export-catalog-service/internal/domain"
)

// Ack is the acknowledgement returned by a successful sink operation.
type Ack struct {
	Success bool   `json:"success"`
	ID      int64  `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

// Sink is the capability the contact form submits through. Submit sends the
// human-facing notification; Persist records the inquiry durably. Callers
// treat any returned error as terminal and surface it as a single message.
type Sink interface {
	Submit(ctx context.Context, inquiry *domain.Inquiry) (*Ack, error)
	Persist(ctx context.Context, inquiry *domain.Inquiry) (*Ack, error)
}

// Notifier sends the notification leg of an inquiry. Implementations exist
// for direct SMTP and for a no-op used in tests.
type Notifier interface {
	Notify(ctx context.Context, inquiry *domain.Inquiry) error
}

// NoOpNotifier accepts every inquiry without delivering anything.
type NoOpNotifier struct{}

func (NoOpNotifier) Notify(ctx context.Context, inquiry *domain.Inquiry) error {
	return nil
}

// logInquiry writes the inquiry payload to the service log. It backs the
// development-mode fallback of every sink implementation.
func logInquiry(logger *log.Logger, op string, inq *domain.Inquiry) {
	product := inq.ProductName()
	if product == "" {
		product = "General"
	}
	logger.Printf("INFO: Development mode - inquiry %s fallback: product=%q from=%q <%s> country=%q message=%q",
		op, product, inq.Name, inq.Email, inq.Country, inq.Message)
}
