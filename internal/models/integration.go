package models

import "time"

// IntegrationType categorises an integration record.
type IntegrationType string

const (
	TypeInvoicingBilling  IntegrationType = "Invoicing & Billing"
	TypeSMSMessaging      IntegrationType = "SMS & Messaging"
	TypeChatMessaging     IntegrationType = "Chat & Instant Messaging"
	TypeMajorCRMs         IntegrationType = "Major CRMs"
	TypeEmailServices     IntegrationType = "Email Services"
	TypePaymentProcessors IntegrationType = "Payment Processors"
	TypeOther             IntegrationType = "other"
)

// AllowedIntegrationTypes lists the categories the AI prompt may return.
// "other" is a manual-entry escape hatch and is intentionally excluded.
var AllowedIntegrationTypes = []IntegrationType{
	TypeInvoicingBilling,
	TypeSMSMessaging,
	TypeChatMessaging,
	TypeMajorCRMs,
	TypeEmailServices,
	TypePaymentProcessors,
}

// Valid reports whether t is a known integration type.
func (t IntegrationType) Valid() bool {
	if t == TypeOther {
		return true
	}
	for _, allowed := range AllowedIntegrationTypes {
		if t == allowed {
			return true
		}
	}
	return false
}

// Integration is a catalog entry describing one third-party service integration.
type Integration struct {
	ID            string          `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Type          IntegrationType `db:"integration_type" json:"integration_type"`
	Supplier      string          `db:"supplier" json:"supplier"`
	Description   string          `db:"description" json:"description"`
	Tags          string          `db:"tags" json:"tags"`
	APIDocsURL    string          `db:"api_docs_url" json:"api_docs_url"`
	ConfigExample string          `db:"config_example" json:"config_example"`
	LogoURL       string          `db:"logo_url" json:"logo_url"`
	Author        string          `db:"author" json:"author"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// IntegrationFilter captures the list-view narrowing criteria. All fields are
// optional; the date range applies only when both bounds are present.
type IntegrationFilter struct {
	Type        *IntegrationType
	Supplier    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Search      string
	Page        int
	PageSize    int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
