package services

import (
	"fmt"
	"strings"

	"github.com/vimmo/listingrank/internal/models"
)

// AutoTemplate is a canned reply an owner can send with one click
type AutoTemplate struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Message             string `json:"message"`
	Icon                string `json:"icon"`
	PersonalizedMessage string `json:"personalized_message,omitempty"`
}

// AutoTemplates is the catalogue of auto-reply templates
var AutoTemplates = map[string]AutoTemplate{
	"instant": {
		ID:      "instant",
		Name:    "Snelle bevestiging",
		Message: "Dank voor je interesse! Ik neem zo snel mogelijk contact met je op.",
		Icon:    "⚡",
	},
	"viewing": {
		ID:      "viewing",
		Name:    "Bezichtiging voorstellen",
		Message: "Dank voor je bericht! Wanneer past een bezichtiging voor jou? Ik kan {{dagen}} beschikbaar zijn.",
		Icon:    "📅",
	},
	"info": {
		ID:      "info",
		Name:    "Extra info toesturen",
		Message: "Bedankt voor je interesse in {{pand}}! Ik stuur je zo extra informatie over de woning.",
		Icon:    "📋",
	},
	"price": {
		ID:      "price",
		Name:    "Prijs bespreekbaar",
		Message: "Dank je! De vraagprijs is {{prijs}}, maar deze is bespreekbaar. Laat maar weten als je vragen hebt.",
		Icon:    "💰",
	},
	"unavailable": {
		ID:      "unavailable",
		Name:    "Tijdelijk afwezig",
		Message: "Dank voor je bericht! Ik ben momenteel even afwezig maar neem zo snel mogelijk contact met je op.",
		Icon:    "🏖️",
	},
}

// PersonalizeTemplate fills the placeholders of a template with listing and
// lead data. The second return value is false for unknown template ids.
func PersonalizeTemplate(templateID string, listing *models.Listing, leadName string) (AutoTemplate, bool) {
	tpl, ok := AutoTemplates[templateID]
	if !ok {
		return AutoTemplate{}, false
	}

	name := "de woning"
	price := "op aanvraag"
	if listing != nil {
		if listing.Name != "" {
			name = listing.Name
		}
		if listing.Price > 0 {
			price = formatEuro(listing.Price)
		}
	}

	msg := tpl.Message
	msg = strings.ReplaceAll(msg, "{{pand}}", name)
	msg = strings.ReplaceAll(msg, "{{prijs}}", price)
	msg = strings.ReplaceAll(msg, "{{dagen}}", "maandag t/m vrijdag")
	if leadName != "" {
		msg = strings.ReplaceAll(msg, "{{naam}}", leadName)
	}

	tpl.PersonalizedMessage = msg
	return tpl, true
}

// formatEuro renders a price with Belgian thousands separators, e.g. €450.000
func formatEuro(price float64) string {
	n := int64(price)
	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, d := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	return "€" + b.String()
}
