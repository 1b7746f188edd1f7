// Package lead captures popup enquiries and brochure-download requests.
package lead

import (
	"errors"
	"fmt"
	"time"
)

// Type distinguishes the two lead forms.
type Type string

const (
	TypePopup    Type = "popup"
	TypeBrochure Type = "brochure"
)

// ParseType maps a form_type value onto a Type. Anything other than
// "brochure" is a popup enquiry.
func ParseType(s string) Type {
	if s == string(TypeBrochure) {
		return TypeBrochure
	}
	return TypePopup
}

// Label returns the admin display name for the lead type.
func (t Type) Label() string {
	switch t {
	case TypeBrochure:
		return "Brochure Download"
	case TypePopup:
		return "Popup Enquiry"
	default:
		return string(t)
	}
}

// ErrNotFound is returned when a lead id does not exist.
var ErrNotFound = errors.New("lead not found")

// Lead is a stored enquiry.
type Lead struct {
	ID            int64     `db:"id" json:"id"`
	Type          Type      `db:"lead_type" json:"lead_type"`
	PropertyID    int64     `db:"property_id" json:"property_id"`
	PropertyTitle string    `db:"property_title" json:"property_title"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	Phone         string    `db:"phone" json:"phone"`
	Country       string    `db:"country" json:"country"`
	BrochureURL   string    `db:"brochure_url" json:"brochure_url,omitempty"`
	IPAddress     string    `db:"ip_address" json:"ip_address"`
	UserAgent     string    `db:"user_agent" json:"user_agent"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// DisplayTitle returns the property title, or "Property #<id>" when only
// the id was captured.
func (l *Lead) DisplayTitle() string {
	if l.PropertyTitle != "" {
		return l.PropertyTitle
	}
	if l.PropertyID > 0 {
		return fmt.Sprintf("Property #%d", l.PropertyID)
	}
	return ""
}

// User-facing messages. Internal detail never reaches the visitor.
const (
	MsgMissingFields  = "Please fill in your name, email, phone and country."
	MsgInvalidEmail   = "Please enter a valid email address."
	MsgCaptchaMissing = "Please verify the reCAPTCHA."
	MsgCaptchaFailed  = "reCAPTCHA verification failed. Please try again."
	MsgUnavailable    = "Enquiries are temporarily unavailable. Please try again later."
	MsgSaveFailed     = "We couldn't save your details right now. Please try again later."
)

// SuccessPath is where a visitor lands after a stored submission.
const SuccessPath = "/thankyou"

// Outcome is the result of a submission. Error is empty on success.
type Outcome struct {
	Redirect    string
	Error       string
	BrochureURL string
	Lead        *Lead
}

// OK reports whether the submission was stored.
func (o Outcome) OK() bool {
	return o.Error == ""
}
