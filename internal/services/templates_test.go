package services

import (
	"strings"
	"testing"

	"github.com/vimmo/listingrank/internal/models"
)

func TestPersonalizeTemplate_FillsPlaceholders(t *testing.T) {
	listing := &models.Listing{
		ID:    "listing-1",
		Name:  "Moderne Woning in Antwerpen",
		Price: 450000,
	}

	tpl, ok := PersonalizeTemplate("info", listing, "Jan")
	if !ok {
		t.Fatal("Expected info template to exist")
	}
	if !strings.Contains(tpl.PersonalizedMessage, "Moderne Woning in Antwerpen") {
		t.Errorf("Expected listing name substituted, got %q", tpl.PersonalizedMessage)
	}
	if strings.Contains(tpl.PersonalizedMessage, "{{") {
		t.Errorf("Expected all placeholders resolved, got %q", tpl.PersonalizedMessage)
	}

	tpl, ok = PersonalizeTemplate("price", listing, "")
	if !ok {
		t.Fatal("Expected price template to exist")
	}
	if !strings.Contains(tpl.PersonalizedMessage, "€450.000") {
		t.Errorf("Expected formatted price, got %q", tpl.PersonalizedMessage)
	}
}

func TestPersonalizeTemplate_NilListingFallsBack(t *testing.T) {
	tpl, ok := PersonalizeTemplate("price", nil, "")
	if !ok {
		t.Fatal("Expected price template to exist")
	}
	if !strings.Contains(tpl.PersonalizedMessage, "op aanvraag") {
		t.Errorf("Expected fallback price text, got %q", tpl.PersonalizedMessage)
	}

	tpl, _ = PersonalizeTemplate("info", nil, "")
	if !strings.Contains(tpl.PersonalizedMessage, "de woning") {
		t.Errorf("Expected fallback listing name, got %q", tpl.PersonalizedMessage)
	}
}

func TestPersonalizeTemplate_UnknownID(t *testing.T) {
	if _, ok := PersonalizeTemplate("bestaat-niet", nil, ""); ok {
		t.Error("Expected unknown template id to be rejected")
	}
}

func TestFormatEuro(t *testing.T) {
	tests := []struct {
		price float64
		want  string
	}{
		{450000, "€450.000"},
		{1250000, "€1.250.000"},
		{999, "€999"},
		{1000, "€1.000"},
	}

	for _, tt := range tests {
		if got := formatEuro(tt.price); got != tt.want {
			t.Errorf("formatEuro(%v): expected %s, got %s", tt.price, tt.want, got)
		}
	}
}
