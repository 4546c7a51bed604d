package inquiry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"export-catalog-service/internal/config"
	"export-catalog-service/internal/domain"
)

// Email templates understood by the remote inquiry backend.
const (
	TemplateProductInquiry = "product-inquiry"
	TemplateGeneralInquiry = "general-inquiry"
)

// emailPayload is the body POSTed to the backend's send-email operation.
type emailPayload struct {
	Template string          `json:"template"`
	To       string          `json:"to"`
	Data     *domain.Inquiry `json:"data"`
}

// EndpointSink forwards inquiries to a remote HTTP backend: Submit POSTs to
// <base>/send-email, Persist POSTs to <base>/inquiries. When a call fails
// and the sink runs with the development fallback enabled, the payload is
// logged locally and a dev-mode acknowledgement is returned instead of an
// error, preserving the usable-without-backend behavior of the site.
type EndpointSink struct {
	baseURL     string
	sales       string
	support     string
	client      *http.Client
	logger      *log.Logger
	devFallback bool
}

// NewEndpointSink builds a sink against the configured inquiry backend.
func NewEndpointSink(cfg config.InquiryConfig, devFallback bool, logger *log.Logger) *EndpointSink {
	return &EndpointSink{
		baseURL:     strings.TrimRight(cfg.EndpointBaseURL, "/"),
		sales:       cfg.SalesRecipient,
		support:     cfg.SupportRecipient,
		client:      &http.Client{Timeout: cfg.Timeout},
		logger:      logger,
		devFallback: devFallback,
	}
}

func (s *EndpointSink) Submit(ctx context.Context, inquiry *domain.Inquiry) (*Ack, error) {
	payload := emailPayload{
		Template: TemplateGeneralInquiry,
		To:       s.support,
		Data:     inquiry,
	}
	if inquiry.IsProductInquiry() {
		payload.Template = TemplateProductInquiry
		payload.To = s.sales
	}

	ack, err := s.post(ctx, "/send-email", payload)
	if err != nil {
		return s.fallback("submit", inquiry, err)
	}
	return ack, nil
}

func (s *EndpointSink) Persist(ctx context.Context, inquiry *domain.Inquiry) (*Ack, error) {
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

	ack, err := s.post(ctx, "/inquiries", &record)
	if err != nil {
		return s.fallback("persist", inquiry, err)
	}
	return ack, nil
}

func (s *EndpointSink) post(ctx context.Context, path string, payload interface{}) (*Ack, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("inquiry: failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("inquiry: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inquiry: request to %s failed: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("inquiry: backend returned status %d for %s", res.StatusCode, path)
	}

	// An empty or non-JSON body still counts as success; the backend
	// contract only guarantees the status code.
	ack := &Ack{Success: true}
	if err := json.NewDecoder(res.Body).Decode(ack); err != nil {
		return &Ack{Success: true}, nil
	}
	return ack, nil
}

func (s *EndpointSink) fallback(op string, inquiry *domain.Inquiry, err error) (*Ack, error) {
	if !s.devFallback {
		return nil, err
	}
	s.logger.Printf("WARN: Inquiry %s against backend failed, falling back to log: %v", op, err)
	logInquiry(s.logger, op, inquiry)
	return &Ack{Success: true, Message: fmt.Sprintf("inquiry %s logged (development mode)", op)}, nil
}
