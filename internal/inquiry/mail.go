package inquiry

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"export-catalog-service/internal/config"
	"export-catalog-service/internal/domain"
)

// SMTPNotifier delivers inquiry notifications by mail. Product inquiries go
// to the sales recipient, everything else to support.
type SMTPNotifier struct {
	dialer  *gomail.Dialer
	from    string
	sales   string
	support string
}

// NewSMTPNotifier builds a notifier from the SMTP block of the config.
func NewSMTPNotifier(smtp config.SMTPConfig, inq config.InquiryConfig) *SMTPNotifier {
	return &SMTPNotifier{
		dialer:  gomail.NewDialer(smtp.Host, smtp.Port, smtp.Username, smtp.Password),
		from:    smtp.From,
		sales:   inq.SalesRecipient,
		support: inq.SupportRecipient,
	}
}

func (n *SMTPNotifier) Notify(ctx context.Context, inquiry *domain.Inquiry) error {
	to := n.support
	subject := "General Inquiry"
	if inquiry.IsProductInquiry() {
		to = n.sales
		subject = "Product Inquiry: " + inquiry.ProductName()
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", formatInquiryBody(inquiry))

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("inquiry: smtp delivery failed: %w", err)
	}
	return nil
}

func formatInquiryBody(inq *domain.Inquiry) string {
	var b strings.Builder
	write := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", label, value)
		}
	}
	write("Name", inq.Name)
	write("Email", inq.Email)
	write("Phone", inq.Phone)
	write("Company", inq.Company)
	write("Country", inq.Country)
	write("Product", inq.ProductName())
	write("Quantity", inq.Quantity)
	write("Delivery Port", inq.DeliveryPort)
	write("Target Price", inq.TargetPrice)
	write("Certifications", strings.Join(inq.Certifications, ", "))
	b.WriteString("\n")
	b.WriteString(inq.Message)
	b.WriteString("\n")
	return b.String()
}
