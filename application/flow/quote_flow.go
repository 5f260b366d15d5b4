package flow

import (
	"context"
	"time"

	"quote_automation/application/interactor"
	"quote_automation/application/pages"
	"quote_automation/application/scenario"
	"quote_automation/domain/entities"
	"quote_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// ScenarioName is the single scenario this flow implements
const ScenarioName = "RentalCover quote flow"

// Params are the values the quote flow selects and asserts
type Params struct {
	Country             string
	StartDay            string
	EndDay              string
	HomeCountry         string
	Vehicle             string
	State               string
	Confirmation        string
	ShortTimeout        time.Duration
	ConfirmationTimeout time.Duration
}

// DefaultParams returns the values of the reference quote
func DefaultParams() Params {
	return Params{
		Country:             "United States",
		StartDay:            "25",
		EndDay:              "28",
		HomeCountry:         "United States",
		Vehicle:             "Car",
		State:               "California",
		Confirmation:        "Your protection",
		ShortTimeout:        2 * time.Second,
		ConfirmationTimeout: 30 * time.Second,
	}
}

// QuoteFlow sequences landing page interactions into the quote scenario
type QuoteFlow struct {
	ui     *interactor.ElementInteractor
	page   *pages.PageModel
	logger *logrus.Logger
	params Params
}

// NewQuoteFlow - creates the flow over a landing page model
func NewQuoteFlow(ui *interactor.ElementInteractor, page *pages.PageModel, logger *logrus.Logger, params Params) *QuoteFlow {
	return &QuoteFlow{ui: ui, page: page, logger: logger, params: params}
}

// Scenario wraps Steps for the runner
func (f *QuoteFlow) Scenario(startURL string) scenario.Scenario {
	return scenario.Scenario{Name: ScenarioName, StartURL: startURL, Steps: f.Steps()}
}

// Steps returns the quote flow in execution order
func (f *QuoteFlow) Steps() []scenario.Step {
	return []scenario.Step{
		{Name: "SelectCountry", Run: f.SelectCountry},
		{Name: "OpenStartDatePicker", Run: f.OpenStartDatePicker},
		{Name: "SelectTravelStartDate", Run: f.SelectTravelStartDate},
		{Name: "OpenEndDatePicker", Run: f.OpenEndDatePicker},
		{Name: "SelectTravelEndDate", Run: f.SelectTravelEndDate},
		{Name: "ChangeCountryILiveIn", Run: f.ChangeCountryILiveIn},
		{Name: "AssertHomeCountry", Run: f.AssertHomeCountry},
		{Name: "ChangeVehicleIWantToRent", Run: f.ChangeVehicleIWantToRent},
		{Name: "ClickGetQuote", Run: f.ClickGetQuote},
		{Name: "WaitForStatePopup", Run: f.WaitForStatePopup},
		{Name: "SelectState", Run: f.SelectState},
		{Name: "AssertState", Run: f.AssertState},
		{Name: "ClickFinalQuote", Run: f.ClickFinalQuote},
		{Name: "AssertConfirmationPage", Run: f.AssertConfirmationPage},
	}
}

func (f *QuoteFlow) elements(keys ...string) ([]interfaces.Element, error) {
	out := make([]interfaces.Element, len(keys))
	for i, k := range keys {
		el, err := f.page.GetElement(k)
		if err != nil {
			return nil, err
		}
		out[i] = el
	}
	return out, nil
}

// SelectCountry picks the travel destination and asserts it is shown
func (f *QuoteFlow) SelectCountry(ctx context.Context) error {
	els, err := f.elements(pages.CountryDropdown, pages.TravelCountryOption)
	if err != nil {
		return err
	}
	dropdown, option := els[0], els[1]

	if err := f.ui.SafeClick(ctx, dropdown); err != nil {
		return err
	}
	if err := f.ui.WaitForElement(ctx, option, f.params.ShortTimeout); err != nil {
		return err
	}
	if err := f.ui.SafeClick(ctx, option); err != nil {
		return err
	}
	if err := f.ui.WaitForSettled(ctx); err != nil {
		return err
	}
	if err := f.ui.ExpectElementText(ctx, dropdown, f.params.Country, true); err != nil {
		return err
	}
	f.logger.Info("Selected travel country")
	return nil
}

// OpenStartDatePicker opens the calendar for the start date
func (f *QuoteFlow) OpenStartDatePicker(ctx context.Context) error {
	return f.openDatePicker(ctx, pages.StartDateInput, "Clicked on date picker")
}

// OpenEndDatePicker opens the calendar for the end date
func (f *QuoteFlow) OpenEndDatePicker(ctx context.Context) error {
	return f.openDatePicker(ctx, pages.EndDateInput, "Clicked on end date picker")
}

func (f *QuoteFlow) openDatePicker(ctx context.Context, key, done string) error {
	input, err := f.page.GetElement(key)
	if err != nil {
		return err
	}
	if err := f.ui.WaitForElement(ctx, input, f.params.ShortTimeout); err != nil {
		return err
	}
	if err := f.ui.DoubleClickElement(ctx, input); err != nil {
		return err
	}
	f.logger.Info(done)
	return nil
}

// SelectTravelStartDate clicks the start day after asserting its label
func (f *QuoteFlow) SelectTravelStartDate(ctx context.Context) error {
	return f.selectDay(ctx, pages.StartDate, f.params.StartDay, "Selected travel start date")
}

// SelectTravelEndDate clicks the end day after asserting its label
func (f *QuoteFlow) SelectTravelEndDate(ctx context.Context) error {
	return f.selectDay(ctx, pages.EndDate, f.params.EndDay, "Selected travel end date")
}

func (f *QuoteFlow) selectDay(ctx context.Context, key, day, done string) error {
	cell, err := f.page.GetElement(key)
	if err != nil {
		return err
	}
	if err := f.ui.ExpectElementText(ctx, cell, day, true); err != nil {
		return err
	}
	if err := f.ui.ClickElement(ctx, cell); err != nil {
		return err
	}
	if err := f.ui.WaitForSettled(ctx); err != nil {
		return err
	}
	f.logger.Info(done)
	return nil
}

// ChangeCountryILiveIn switches the country of residence
func (f *QuoteFlow) ChangeCountryILiveIn(ctx context.Context) error {
	els, err := f.elements(pages.HomeCountryChange, pages.HomeCountryDropdown, pages.HomeCountryOption)
	if err != nil {
		return err
	}
	change, dropdown, option := els[0], els[1], els[2]

	if err := f.ui.SafeClick(ctx, change); err != nil {
		return err
	}
	if err := f.ui.WaitForElement(ctx, dropdown, f.params.ShortTimeout); err != nil {
		return err
	}
	if err := f.ui.SafeClick(ctx, dropdown); err != nil {
		return err
	}
	if err := f.ui.WaitForElement(ctx, option, f.params.ShortTimeout); err != nil {
		return err
	}
	if err := f.ui.ClickElement(ctx, option); err != nil {
		return err
	}
	f.logger.Info("Changed country I live in")
	return f.ui.WaitForSettled(ctx)
}

// AssertHomeCountry checks the selected country of residence
func (f *QuoteFlow) AssertHomeCountry(ctx context.Context) error {
	option, err := f.page.GetElement(pages.HomeCountryOption)
	if err != nil {
		return err
	}
	return f.ui.ExpectElementText(ctx, option, f.params.HomeCountry, true)
}

// ChangeVehicleIWantToRent switches the vehicle type and asserts the choice
func (f *QuoteFlow) ChangeVehicleIWantToRent(ctx context.Context) error {
	els, err := f.elements(pages.VehicleChange, pages.VehicleDropdown, pages.VehicleOption)
	if err != nil {
		return err
	}
	change, dropdown, option := els[0], els[1], els[2]

	if err := f.ui.SafeClick(ctx, change); err != nil {
		return err
	}
	if err := f.ui.WaitForElement(ctx, dropdown, f.params.ShortTimeout); err != nil {
		return err
	}
	if err := f.ui.ClickElement(ctx, dropdown); err != nil {
		return err
	}
	if err := f.ui.WaitForElement(ctx, option, f.params.ShortTimeout); err != nil {
		return err
	}
	if err := f.ui.ClickElement(ctx, option); err != nil {
		return err
	}
	if err := f.ui.ExpectElementText(ctx, dropdown, f.params.Vehicle, true); err != nil {
		return err
	}
	f.logger.Info("Changed vehicle I want to rent")
	return f.ui.WaitForSettled(ctx)
}

// ClickGetQuote submits the landing form
func (f *QuoteFlow) ClickGetQuote(ctx context.Context) error {
	button, err := f.page.GetElement(pages.GetQuoteButton)
	if err != nil {
		return err
	}
	if err := f.ui.SafeClick(ctx, button); err != nil {
		return err
	}
	f.logger.Info("Clicked Get Quote button")
	return nil
}

// WaitForStatePopup waits for the state selection modal
func (f *QuoteFlow) WaitForStatePopup(ctx context.Context) error {
	heading, err := f.page.GetElement(pages.StateModalHeading)
	if err != nil {
		return err
	}
	if err := f.ui.WaitForElement(ctx, heading, 0); err != nil {
		return err
	}
	f.logger.Info("State selection modal appeared")
	return nil
}

// SelectState opens the state list and picks the configured state
func (f *QuoteFlow) SelectState(ctx context.Context) error {
	els, err := f.elements(pages.StateSearchInput, pages.StateOption)
	if err != nil {
		return err
	}
	search, option := els[0], els[1]

	if err := f.ui.ClickElement(ctx, search); err != nil {
		return err
	}
	if err := f.ui.WaitForElement(ctx, option, f.params.ShortTimeout); err != nil {
		return err
	}
	if err := f.ui.ClickElement(ctx, option); err != nil {
		return err
	}
	f.logger.Info("State selected")
	return nil
}

// AssertState checks the state shown in the modal
func (f *QuoteFlow) AssertState(ctx context.Context) error {
	search, err := f.page.GetElement(pages.StateSearchInput)
	if err != nil {
		return err
	}
	return f.ui.ExpectElementText(ctx, search, f.params.State, true)
}

// ClickFinalQuote submits the state modal
func (f *QuoteFlow) ClickFinalQuote(ctx context.Context) error {
	button, err := f.page.GetElement(pages.FinalQuoteButton)
	if err != nil {
		return err
	}
	if err := f.ui.SafeClick(ctx, button); err != nil {
		return err
	}
	f.logger.Info("Clicked Final Quote button")
	return nil
}

// AssertConfirmationPage waits for the confirmation heading and checks its text
func (f *QuoteFlow) AssertConfirmationPage(ctx context.Context) error {
	heading, err := f.page.GetElement(pages.ConfirmationHeading)
	if err != nil {
		return err
	}
	if err := f.ui.WaitForElement(ctx, heading, f.params.ConfirmationTimeout); err != nil {
		return err
	}

	visible, err := f.ui.ElementExists(ctx, heading)
	if err != nil {
		return err
	}
	if !visible {
		return &entities.AssertionError{Selector: heading.Selector().String(), Expected: f.params.Confirmation, Contains: true}
	}

	text, err := f.ui.GetText(ctx, heading)
	if err != nil {
		return err
	}
	f.logger.Infof("Confirmation text: %s", text)
	if err := f.ui.ExpectElementText(ctx, heading, f.params.Confirmation, true); err != nil {
		return err
	}
	f.logger.Info("RentalCover quote flow test completed successfully")
	return nil
}
