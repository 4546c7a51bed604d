package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/lib/pq"

	"export-catalog-service/internal/domain"
)

// Predefined errors for store operations
var (
	ErrInquiryNotFound = errors.New("store: inquiry not found")
	ErrInvalidStatus   = errors.New("store: invalid inquiry status")
)

var validStatuses = map[string]bool{
	domain.InquiryStatusPending:  true,
	domain.InquiryStatusAnswered: true,
	domain.InquiryStatusClosed:   true,
}

// PostgresStore implements the InquiryStorer interface using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgresStore instance.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const inquiryColumns = `id, name, email, phone, company, country, product_interest, custom_product, quantity, delivery_port, target_price, certifications, message, status, source, created_at`

func (s *PostgresStore) CreateInquiry(ctx context.Context, inquiry *domain.Inquiry) (*domain.Inquiry, error) {
	query := `
		INSERT INTO catalog.inquiries
			(name, email, phone, company, country, product_interest, custom_product, quantity, delivery_port, target_price, certifications, message, status, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, status, created_at;
	`
	status := inquiry.Status
	if status == "" {
		status = domain.InquiryStatusPending
	}
	source := inquiry.Source
	if source == "" {
		source = "website"
	}

	row := s.db.QueryRowContext(ctx, query,
		inquiry.Name, inquiry.Email, inquiry.Phone, inquiry.Company, inquiry.Country,
		inquiry.ProductInterest, inquiry.CustomProduct, inquiry.Quantity, inquiry.DeliveryPort,
		inquiry.TargetPrice, pq.Array(inquiry.Certifications), inquiry.Message, status, source,
	)

	created := *inquiry
	created.Source = source
	if err := row.Scan(&created.ID, &created.Status, &created.CreatedAt); err != nil {
		return nil, fmt.Errorf("store: CreateInquiry failed to scan row: %w", err)
	}
	return &created, nil
}

func (s *PostgresStore) GetInquiryByID(ctx context.Context, id int64) (*domain.Inquiry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM catalog.inquiries
		WHERE id = $1;
	`, inquiryColumns)

	inquiry, err := scanInquiry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInquiryNotFound
		}
		return nil, fmt.Errorf("store: GetInquiryByID failed to scan row: %w", err)
	}
	return inquiry, nil
}

// ListInquiries retrieves a paginated list of inquiries, newest first, with
// an optional status filter.
func (s *PostgresStore) ListInquiries(ctx context.Context, params ListInquiriesParams) ([]domain.Inquiry, int, error) {
	var queryArgs []interface{}
	whereCondition := ""
	if params.Status != nil {
		whereCondition = " WHERE status = $1"
		queryArgs = append(queryArgs, *params.Status)
	}

	countQuery := "SELECT COUNT(*) FROM catalog.inquiries" + whereCondition
	var totalCount int
	if err := s.db.QueryRowContext(ctx, countQuery, queryArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("store: ListInquiries failed to count inquiries: %w", err)
	}

	if totalCount == 0 {
		return []domain.Inquiry{}, 0, nil
	}

	argID := len(queryArgs) + 1
	dataQuery := fmt.Sprintf(`
		SELECT %s
		FROM catalog.inquiries%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d;
	`, inquiryColumns, whereCondition, argID, argID+1)
	queryArgs = append(queryArgs, params.Limit, params.Offset)

	rows, err := s.db.QueryContext(ctx, dataQuery, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListInquiries failed to query inquiries: %w", err)
	}
	defer rows.Close()

	inquiries := make([]domain.Inquiry, 0, params.Limit)
	for rows.Next() {
		inquiry, err := scanInquiry(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("store: ListInquiries failed to scan inquiry row: %w", err)
		}
		inquiries = append(inquiries, *inquiry)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: ListInquiries iteration error: %w", err)
	}

	return inquiries, totalCount, nil
}

func (s *PostgresStore) UpdateInquiryStatus(ctx context.Context, id int64, status string) (*domain.Inquiry, error) {
	if !validStatuses[strings.ToLower(status)] {
		return nil, ErrInvalidStatus
	}

	query := fmt.Sprintf(`
		UPDATE catalog.inquiries
		SET status = $1
		WHERE id = $2
		RETURNING %s;
	`, inquiryColumns)

	inquiry, err := scanInquiry(s.db.QueryRowContext(ctx, query, strings.ToLower(status), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInquiryNotFound
		}
		return nil, fmt.Errorf("store: UpdateInquiryStatus failed to scan row: %w", err)
	}
	return inquiry, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInquiry(row rowScanner) (*domain.Inquiry, error) {
	var inquiry domain.Inquiry
	var certifications pq.StringArray
	err := row.Scan(
		&inquiry.ID, &inquiry.Name, &inquiry.Email, &inquiry.Phone, &inquiry.Company,
		&inquiry.Country, &inquiry.ProductInterest, &inquiry.CustomProduct, &inquiry.Quantity,
		&inquiry.DeliveryPort, &inquiry.TargetPrice, &certifications, &inquiry.Message,
		&inquiry.Status, &inquiry.Source, &inquiry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	inquiry.Certifications = certifications
	return &inquiry, nil
}

func (s *PostgresStore) Close() error {
	if s.db != nil {
		log.Println("INFO: Closing database connection pool...")
		err := s.db.Close()
		if err != nil {
			log.Printf("ERROR: Failed to close database connection pool: %v", err)
			return err
		}
		log.Println("INFO: Database connection pool closed successfully.")
		return nil
	}
	return nil
}
