package pages

import (
	"context"
	"testing"
	"time"

	"quote_automation/domain/entities"
	"quote_automation/infrastructure/browser/fakebrowser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func testGetElementReturnsMappedSelector(t *rapid.T) {
	keys := rapid.SliceOfNDistinct(rapid.StringMatching(`[a-z][a-zA-Z0-9_]{0,20}`), 1, 30, rapid.ID[string]).Draw(t, "keys")
	entries := make([]Entry, len(keys))
	for i, k := range keys {
		strategy := rapid.SampledFrom([]entities.SelectorStrategy{entities.StrategyCSS, entities.StrategyXPath}).Draw(t, "strategy")
		value := rapid.StringMatching(`[#./a-z\[\]@='()0-9 -]{1,40}`).Filter(func(s string) bool {
			return s != "" && s[0] != ' ' && s[len(s)-1] != ' '
		}).Draw(t, "value")
		entries[i] = Entry{Key: k, Selector: entities.Selector{Strategy: strategy, Value: value}}
	}

	model, err := New("generated", fakebrowser.New(), entries)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, e := range entries {
		el, err := model.GetElement(e.Key)
		if err != nil {
			t.Fatalf("GetElement(%q): %v", e.Key, err)
		}
		if got := el.Selector(); got != e.Selector {
			t.Fatalf("GetElement(%q) selector mismatch: got=%+v want=%+v", e.Key, got, e.Selector)
		}
	}
	if len(model.Keys()) != len(entries) {
		t.Fatalf("Keys() = %d entries, want %d", len(model.Keys()), len(entries))
	}
}

func TestGetElement_ReturnsMappedSelector(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testGetElementReturnsMappedSelector)
}

func TestGetElement_UnknownKey(t *testing.T) {
	model, err := New("landing", fakebrowser.New(), []Entry{{Key: "a", Selector: entities.CSS("#a")}})
	require.NoError(t, err)

	_, err = model.GetElement("missing")
	require.ErrorIs(t, err, entities.ErrUnknownLocatorKey)
	var uk *entities.UnknownLocatorKeyError
	require.ErrorAs(t, err, &uk)
	assert.Equal(t, "missing", uk.Key)
	assert.Equal(t, "landing", uk.Page)
}

func TestNew_RejectsInvalidEntries(t *testing.T) {
	cases := map[string][]Entry{
		"duplicate": {{Key: "a", Selector: entities.CSS("#a")}, {Key: "a", Selector: entities.CSS("#b")}},
		"empty key": {{Key: "", Selector: entities.CSS("#a")}},
		"empty":     {{Key: "a", Selector: entities.CSS("")}},
		"strategy":  {{Key: "a", Selector: entities.Selector{Strategy: "id", Value: "a"}}},
	}
	for name, entries := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New("p", fakebrowser.New(), entries)
			assert.Error(t, err)
		})
	}
}

func TestLoadLocators(t *testing.T) {
	data := []byte(`
page: demo
locators:
  - key: title
    type: css
    value: "h1.title"
  - key: day
    type: xpath
    value: '//td[contains(@aria-label, "{{.Day}}")]'
`)
	name, entries, err := LoadLocators(data, struct{ Day string }{Day: "March 3, 2026"})
	require.NoError(t, err)
	assert.Equal(t, "demo", name)
	assert.Equal(t, []Entry{
		{Key: "title", Selector: entities.CSS("h1.title")},
		{Key: "day", Selector: entities.XPath(`//td[contains(@aria-label, "March 3, 2026")]`)},
	}, entries)
}

func TestLoadLocators_Errors(t *testing.T) {
	_, _, err := LoadLocators([]byte("page: [unterminated"), nil)
	assert.Error(t, err)

	_, _, err = LoadLocators([]byte("locators: []"), nil)
	assert.Error(t, err)

	_, _, err = LoadLocators([]byte("page: p\nlocators:\n  - key: a\n    type: css\n    value: '{{.Nope}}'\n"), struct{}{})
	assert.Error(t, err)
}

func TestNewLandingPage_DefinesEveryKey(t *testing.T) {
	model, err := NewLandingPage(fakebrowser.New(), DefaultLandingVars())
	require.NoError(t, err)
	assert.Equal(t, "rentalcover-landing", model.Name())

	for _, key := range []string{
		CountryDropdown, TravelCountryOption, StartDateInput, EndDateInput, StartDate, EndDate,
		HomeCountryChange, HomeCountryDropdown, HomeCountryOption, VehicleChange, VehicleDropdown,
		VehicleOption, GetQuoteButton, StateModalHeading, StateSearchInput, StateOption,
		FinalQuoteButton, ConfirmationHeading,
	} {
		sel, err := model.Selector(key)
		require.NoError(t, err, key)
		assert.NotContains(t, sel.Value, "{{", key)
	}
	assert.Len(t, model.Keys(), 18)

	start, err := model.Selector(StartDate)
	require.NoError(t, err)
	assert.Equal(t, entities.XPath(`//td[@role="button" and contains(@aria-label, 'September 25, 2025')]`), start)

	country, err := model.Selector(CountryDropdown)
	require.NoError(t, err)
	assert.Equal(t, entities.CSS("#destinationCountry"), country)
}

func TestNewLandingPage_QuotesValuesWithApostrophes(t *testing.T) {
	vars := DefaultLandingVars()
	vars.HomeCountry = "Côte d'Ivoire"
	vars.State = `Say "O'Hara"`

	model, err := NewLandingPage(fakebrowser.New(), vars)
	require.NoError(t, err)

	home, err := model.Selector(HomeCountryOption)
	require.NoError(t, err)
	assert.Equal(t, `(//div[contains(text(),"Côte d'Ivoire")])[2]`, home.Value)

	state, err := model.Selector(StateOption)
	require.NoError(t, err)
	assert.Equal(t,
		`//div[@data-test-id="state-selection-modal"]//div[normalize-space()=concat('Say "O', "'", 'Hara"')]`,
		state.Value)
}

func TestPageModel_Navigation(t *testing.T) {
	page := fakebrowser.New()
	model, err := New("p", page, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, model.Navigate(ctx, "https://example.test/en"))
	url, err := model.CurrentURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/en", url)

	_, err = model.Title(ctx)
	require.NoError(t, err)
	require.NoError(t, model.Reload(ctx))
	require.NoError(t, model.WaitForNavigation(ctx, time.Second))
	assert.Equal(t, []string{"navigate https://example.test/en", "reload", "idle"}, page.Events())
}
