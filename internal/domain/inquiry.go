package domain

import "time"

// Inquiry statuses as recorded by the persistence layer.
const (
	InquiryStatusPending  = "pending"
	InquiryStatusAnswered = "answered"
	InquiryStatusClosed   = "closed"
)

// Inquiry is a structured request submitted through the contact form.
// ProductInterest is set when the visitor asks about a specific catalog
// product; "Custom" means the actual product name is in CustomProduct.
type Inquiry struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone,omitempty"`
	Company         string   `json:"company,omitempty"`
	Country         string   `json:"country,omitempty"`
	ProductInterest string   `json:"product_interest,omitempty"`
	CustomProduct   string   `json:"custom_product,omitempty"`
	Quantity        string   `json:"quantity,omitempty"`
	DeliveryPort    string   `json:"delivery_port,omitempty"`
	TargetPrice     string   `json:"target_price,omitempty"`
	Certifications  []string `json:"certifications,omitempty"`
	Message         string   `json:"message"`

	// Populated by the server, never by the form.
	ID        int64     `json:"id,omitempty"`
	Status    string    `json:"status,omitempty"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// IsProductInquiry reports whether the inquiry references a product and
// should be routed to the sales recipient rather than general support.
func (i *Inquiry) IsProductInquiry() bool {
	return i.ProductInterest != ""
}

// ProductName returns the product the inquiry is about, resolving the
// "Custom" sentinel to the free-text product name.
func (i *Inquiry) ProductName() string {
	if i.ProductInterest == "Custom" && i.CustomProduct != "" {
		return i.CustomProduct
	}
	return i.ProductInterest
}
