package services

import (
	"strings"

	"github.com/vimmo/listingrank/internal/models"
)

// MaskedContact is the contact detail view of a lead, with phone and e-mail
// hidden until the lead has progressed far enough.
type MaskedContact struct {
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Revealed bool   `json:"revealed"`
}

// MaskLeadContact returns the lead's contact details, masked unless the
// lead reached a viewing or later stage.
func MaskLeadContact(lead *models.Lead) MaskedContact {
	if lead == nil {
		return MaskedContact{Phone: "***", Email: "***"}
	}

	phone := lead.Phone
	email := lead.Email

	if lead.ContactRevealed() {
		return MaskedContact{Phone: phone, Email: email, Revealed: true}
	}

	return MaskedContact{
		Phone: maskPhone(phone),
		Email: maskEmail(email),
	}
}

func maskPhone(phone string) string {
	if len(phone) < 9 {
		return "***"
	}
	return phone[:7] + " ** ** " + phone[len(phone)-2:]
}

func maskEmail(email string) string {
	user, domain, found := strings.Cut(email, "@")
	if !found {
		domain = "example.com"
	}
	if len(user) > 3 {
		user = user[:3]
	}
	return user + "***@" + domain
}
