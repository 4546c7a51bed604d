package inquiry

import (
	"context"
	"errors"
	"log"
	"time"

	"export-catalog-service/internal/domain"
	"export-catalog-service/internal/store"
)

// Sentinel errors for sink operations that have no configured backend.
var (
	ErrNoNotifier = errors.New("inquiry: no notification channel configured")
	ErrNoArchive  = errors.New("inquiry: no persistence configured")
)

// ServiceSink drives the notification and persistence legs in-process
// instead of delegating to a remote backend: an SMTP notifier for Submit
// and an InquiryStorer for Persist. Either leg may be absent; a missing leg
// falls back to logging in development mode and fails otherwise, the same
// terminal-failure contract as the endpoint sink.
type ServiceSink struct {
	notifier    Notifier
	archive     store.InquiryStorer
	logger      *log.Logger
	devFallback bool
}

// NewServiceSink composes the configured legs. notifier and archive may each
// be nil.
func NewServiceSink(notifier Notifier, archive store.InquiryStorer, devFallback bool, logger *log.Logger) *ServiceSink {
	return &ServiceSink{
		notifier:    notifier,
		archive:     archive,
		logger:      logger,
		devFallback: devFallback,
	}
}

func (s *ServiceSink) Submit(ctx context.Context, inquiry *domain.Inquiry) (*Ack, error) {
	if s.notifier == nil {
		return s.fallback("submit", inquiry, ErrNoNotifier)
	}
	if err := s.notifier.Notify(ctx, inquiry); err != nil {
		return s.fallback("submit", inquiry, err)
	}
	return &Ack{Success: true}, nil
}

func (s *ServiceSink) Persist(ctx context.Context, inquiry *domain.Inquiry) (*Ack, error) {
	if s.archive == nil {
		return s.fallback("persist", inquiry, ErrNoArchive)
	}

	record := *inquiry
	if record.Status == "" {
		record.Status = domain.InquiryStatusPending
	}
	if record.Source == "" {
		record.Source = "website"
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	created, err := s.archive.CreateInquiry(ctx, &record)
	if err != nil {
		return s.fallback("persist", inquiry, err)
	}
	return &Ack{Success: true, ID: created.ID}, nil
}

func (s *ServiceSink) fallback(op string, inquiry *domain.Inquiry, err error) (*Ack, error) {
	if !s.devFallback {
		return nil, err
	}
	s.logger.Printf("WARN: Inquiry %s failed, falling back to log: %v", op, err)
	logInquiry(s.logger, op, inquiry)
	return &Ack{Success: true, Message: "inquiry " + op + " logged (development mode)"}, nil
}
