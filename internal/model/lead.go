package model

import "time"

// ValuationLeadName is the lead name used for valuation requests submitted
// without a contact name. Admin views label such leads as valuations.
const ValuationLeadName = "Home Valuation Request"

// Lead is a captured inquiry. Leads are never updated once created.
type Lead struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	Phone      *string   `db:"phone" json:"phone"`
	Message    *string   `db:"message" json:"message"`
	PropertyID *string   `db:"property_id" json:"property_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// LeadWithProperty is a lead joined with the title and address of the
// listing it references, if any.
type LeadWithProperty struct {
	Lead
	PropertyTitle   *string `db:"property_title" json:"property_title,omitempty"`
	PropertyAddress *string `db:"property_address" json:"property_address,omitempty"`
}

// LeadKind is how the admin leads table labels a lead.
type LeadKind string

const (
	LeadKindProperty  LeadKind = "property"
	LeadKindValuation LeadKind = "valuation"
	LeadKindGeneral   LeadKind = "general"
)

// Kind labels the lead: a listing reference wins, then the valuation
// sentinel name, otherwise a general inquiry.
func (l *Lead) Kind() LeadKind {
	switch {
	case l.PropertyID != nil && *l.PropertyID != "":
		return LeadKindProperty
	case l.Name == ValuationLeadName:
		return LeadKindValuation
	default:
		return LeadKindGeneral
	}
}

// StringPtr returns nil for empty strings.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
