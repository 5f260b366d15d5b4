package pages

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"text/template"
	"time"

	"quote_automation/domain/entities"
	"quote_automation/domain/interfaces"

	"gopkg.in/yaml.v3"
)

// Entry maps a symbolic key to a selector
type Entry struct {
	Key      string            `yaml:"key"`
	Selector entities.Selector `yaml:",inline"`
}

type locatorFile struct {
	Page     string  `yaml:"page"`
	Locators []Entry `yaml:"locators"`
}

// PageModel resolves symbolic keys to live element handles. The key set and
// selectors are fixed at construction.
type PageModel struct {
	name     string
	page     interfaces.Page
	locators map[string]entities.Selector
}

// New validates entries and builds a page model. Duplicate keys and invalid
// selectors are rejected.
func New(name string, page interfaces.Page, entries []Entry) (*PageModel, error) {
	locators := make(map[string]entities.Selector, len(entries))
	for _, e := range entries {
		if e.Key == "" {
			return nil, fmt.Errorf("page %s: locator with empty key", name)
		}
		if _, dup := locators[e.Key]; dup {
			return nil, fmt.Errorf("page %s: duplicate locator key %q", name, e.Key)
		}
		if err := e.Selector.Validate(); err != nil {
			return nil, fmt.Errorf("page %s: locator %q: %w", name, e.Key, err)
		}
		locators[e.Key] = e.Selector
	}
	return &PageModel{name: name, page: page, locators: locators}, nil
}

// LoadLocators parses a locator table and renders {{.Field}} placeholders in
// selector values from vars. Missing fields are an error. Inside xpath values
// use {{xpath .Field}} to emit a quoted literal.
func LoadLocators(data []byte, vars interface{}) (string, []Entry, error) {
	var file locatorFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return "", nil, fmt.Errorf("failed to parse locators: %w", err)
	}
	if file.Page == "" {
		return "", nil, fmt.Errorf("locator file has no page name")
	}

	entries := make([]Entry, 0, len(file.Locators))
	for _, e := range file.Locators {
		value, err := render(e.Key, e.Selector.Value, vars)
		if err != nil {
			return "", nil, err
		}
		e.Selector.Value = value
		entries = append(entries, e)
	}
	return file.Page, entries, nil
}

var locatorFuncs = template.FuncMap{"xpath": entities.XPathLiteral}

func render(key, value string, vars interface{}) (string, error) {
	tmpl, err := template.New(key).Funcs(locatorFuncs).Option("missingkey=error").Parse(value)
	if err != nil {
		return "", fmt.Errorf("locator %q: %w", key, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("locator %q: %w", key, err)
	}
	return buf.String(), nil
}

// Name returns the page name used in errors and logs
func (m *PageModel) Name() string { return m.name }

// GetElement returns a fresh handle for key, or *entities.UnknownLocatorKeyError
func (m *PageModel) GetElement(key string) (interfaces.Element, error) {
	sel, err := m.Selector(key)
	if err != nil {
		return nil, err
	}
	return m.page.Locator(sel), nil
}

// Selector returns the selector mapped to key
func (m *PageModel) Selector(key string) (entities.Selector, error) {
	sel, ok := m.locators[key]
	if !ok {
		return entities.Selector{}, &entities.UnknownLocatorKeyError{Page: m.name, Key: key}
	}
	return sel, nil
}

// Keys returns all locator keys in sorted order
func (m *PageModel) Keys() []string {
	keys := make([]string, 0, len(m.locators))
	for k := range m.locators {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Navigate - navigates to a specific URL
func (m *PageModel) Navigate(ctx context.Context, url string) error {
	return m.page.Navigate(ctx, url)
}

// CurrentURL - returns the current page URL
func (m *PageModel) CurrentURL(ctx context.Context) (string, error) {
	return m.page.URL(ctx)
}

// Title - returns the page title
func (m *PageModel) Title(ctx context.Context) (string, error) {
	return m.page.Title(ctx)
}

// Reload - refreshes the current page
func (m *PageModel) Reload(ctx context.Context) error {
	return m.page.Reload(ctx)
}

// WaitForNavigation - waits for the network to go idle after a navigation
func (m *PageModel) WaitForNavigation(ctx context.Context, timeout time.Duration) error {
	return m.page.WaitForIdle(ctx, timeout)
}
