package entities

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseSelector(t *testing.T) {
	cases := []struct {
		raw  string
		want Selector
	}{
		{"#destinationCountry", CSS("#destinationCountry")},
		{`xpath=//td[contains(@aria-label, "September 25")]`, XPath(`//td[contains(@aria-label, "September 25")]`)},
		{"//button[normalize-space()='change']", XPath("//button[normalize-space()='change']")},
		{"(//div[contains(text(),'Car')])[1]", XPath("(//div[contains(text(),'Car')])[1]")},
		{`[data-test-id="cor-change-button"]`, CSS(`[data-test-id="cor-change-button"]`)},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseSelector(tc.raw))
		})
	}
}

func TestSelectorString(t *testing.T) {
	assert.Equal(t, "#a", CSS("#a").String())
	assert.Equal(t, "xpath=//a", XPath("//a").String())
	assert.Equal(t, XPath("//a"), ParseSelector(XPath("//a").String()))
}

func TestSelectorValidate(t *testing.T) {
	require.NoError(t, CSS("#a").Validate())
	assert.Error(t, CSS("  ").Validate())
	assert.Error(t, Selector{Strategy: "id", Value: "a"}.Validate())
}

func TestOptionWithTextQuoting(t *testing.T) {
	assert.Equal(t, "//div[@role='option'][contains(normalize-space(.), 'Car')]", OptionWithText("Car").Value)
	assert.Contains(t, OptionWithText("Côte d'Ivoire").Value, `"Côte d'Ivoire"`)
	assert.Contains(t, OptionWithText(`a'b"c`).Value, `concat('a', "'", 'b"c')`)
}

func TestScreenshotLabel(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "click-1700000000123", ScreenshotLabel(ActionClick, "", at))
	assert.Equal(t, "type-hello_world-1700000000123", ScreenshotLabel(ActionTypeText, "hello world", at))
	assert.Equal(t, "select-United_States-1700000000123", ScreenshotLabel(ActionSelect, "United States", at))
	assert.NotContains(t, ScreenshotLabel(ActionTypeText, "../etc/passwd", at), "/")
}

func testLogRecordRoundTrip(t *rapid.T) {
	level := rapid.SampledFrom([]LogLevel{LogInfo, LogWarn, LogError, LogDebug}).Draw(t, "level")
	msg := rapid.StringMatching(`[a-zA-Z0-9 _:\-"./\[\]]{0,80}`).Draw(t, "message")
	ms := rapid.Int64Range(0, 4102444800000).Draw(t, "millis")

	rec := LogRecord{Level: level, Timestamp: time.UnixMilli(ms).UTC(), Message: msg}
	got, err := ParseLogRecord(rec.String() + "\n")
	if err != nil {
		t.Fatalf("ParseLogRecord(%q): %v", rec.String(), err)
	}
	if got.Level != rec.Level || got.Message != rec.Message || !got.Timestamp.Equal(rec.Timestamp) {
		t.Fatalf("round trip mismatch: got=%+v want=%+v", got, rec)
	}
}

func TestLogRecord_RoundTrip(t *testing.T) {
	t.Parallel()
	rapid.Check(t, testLogRecordRoundTrip)
}

func TestLogRecordFormat(t *testing.T) {
	rec := LogRecord{Level: LogWarn, Timestamp: time.Date(2025, 9, 25, 10, 4, 5, 6e6, time.UTC), Message: "hi"}
	assert.Equal(t, "[WARN] 2025-09-25T10:04:05.006Z - hi", rec.String())

	_, err := ParseLogRecord("[TRACE] 2025-09-25T10:04:05.006Z - hi")
	assert.Error(t, err)
}

func TestErrorTaxonomy(t *testing.T) {
	cause := errors.New("boom")
	timeout := fmt.Errorf("step: %w", &TimeoutError{Selector: "#a", State: "visible", Timeout: time.Second, Err: cause})
	assert.ErrorIs(t, timeout, ErrTimeout)
	assert.ErrorIs(t, timeout, cause)
	assert.NotErrorIs(t, timeout, ErrInteraction)

	var te *TimeoutError
	require.ErrorAs(t, timeout, &te)
	assert.Equal(t, "#a", te.Selector)

	assert.ErrorIs(t, &AssertionError{Expected: "a", Actual: "b"}, ErrAssertion)
	assert.ErrorIs(t, &InteractionError{Op: "click", Selector: "#a", Err: cause}, ErrInteraction)
	assert.ErrorIs(t, &UnknownLocatorKeyError{Key: "x"}, ErrUnknownLocatorKey)
	assert.True(t, strings.Contains((&AssertionError{Contains: true, Expected: "a"}).Error(), "to contain"))
}

func TestRunReportFailed(t *testing.T) {
	r := RunReport{Steps: []StepResult{{Name: "a", Status: StatusCompleted}, {Name: "b", Status: StatusFailed}, {Name: "c", Status: StatusSkipped}}}
	s, ok := r.Failed()
	require.True(t, ok)
	assert.Equal(t, "b", s.Name)
}
