package pages

import (
	_ "embed"
	"fmt"

	"quote_automation/domain/interfaces"
)

//go:embed locators.yaml
var landingLocators []byte

// Locator keys of the landing page
const (
	CountryDropdown     = "country_dropdown"
	TravelCountryOption = "travel_country_option"
	StartDateInput      = "start_date_input"
	EndDateInput        = "end_date_input"
	StartDate           = "start_date"
	EndDate             = "end_date"
	HomeCountryChange   = "home_country_change"
	HomeCountryDropdown = "home_country_dropdown"
	HomeCountryOption   = "home_country_option"
	VehicleChange       = "vehicle_change"
	VehicleDropdown     = "vehicle_dropdown"
	VehicleOption       = "vehicle_option"
	GetQuoteButton      = "get_quote_button"
	StateModalHeading   = "state_modal_heading"
	StateSearchInput    = "state_search_input"
	StateOption         = "state_option"
	FinalQuoteButton    = "final_quote_button"
	ConfirmationHeading = "confirmation_heading"
)

// LandingVars fills the placeholders of the landing page locators
type LandingVars struct {
	StartDate          string
	EndDate            string
	CurrentHomeCountry string
	HomeCountry        string
	Vehicle            string
	State              string
	Confirmation       string
}

// DefaultLandingVars matches the quote scenario
func DefaultLandingVars() LandingVars {
	return LandingVars{
		StartDate:          "September 25, 2025",
		EndDate:            "September 28, 2025",
		CurrentHomeCountry: "Australia",
		HomeCountry:        "United States",
		Vehicle:            "Car",
		State:              "California",
		Confirmation:       "Your protection",
	}
}

// NewLandingPage builds the landing page model from the embedded locator table
func NewLandingPage(page interfaces.Page, vars LandingVars) (*PageModel, error) {
	name, entries, err := LoadLocators(landingLocators, vars)
	if err != nil {
		return nil, fmt.Errorf("landing page locators: %w", err)
	}
	return New(name, page, entries)
}
