package store

import (
	"context"

	"export-catalog-service/internal/domain"
)

// ListInquiriesParams holds parameters for listing inquiries (pagination
// plus an optional status filter for the admin screen).
type ListInquiriesParams struct {
	Limit  int
	Offset int
	Status *string // pending, answered, closed; nil = all
}

// InquiryStorer defines the database operations for submitted inquiries.
type InquiryStorer interface {
	CreateInquiry(ctx context.Context, inquiry *domain.Inquiry) (*domain.Inquiry, error)
	GetInquiryByID(ctx context.Context, id int64) (*domain.Inquiry, error)
	ListInquiries(ctx context.Context, params ListInquiriesParams) ([]domain.Inquiry, int, error) // Returns inquiries and total count for pagination
	UpdateInquiryStatus(ctx context.Context, id int64, status string) (*domain.Inquiry, error)
}
