// Package pages holds playwright page objects for the patient chart.
package pages

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// BiometricsAndVitalsPage is the vitals and biometrics page of a patient chart
type BiometricsAndVitalsPage struct {
	Page    playwright.Page
	baseURL string
}

// NewBiometricsAndVitalsPage creates a page object for the application at baseURL
func NewBiometricsAndVitalsPage(page playwright.Page, baseURL string) *BiometricsAndVitalsPage {
	return &BiometricsAndVitalsPage{
		Page:    page,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// URL returns the address of the patient's vitals page
func (p *BiometricsAndVitalsPage) URL(patientUUID string) string {
	return p.baseURL + "/patient/" + url.PathEscape(patientUUID) + "/chart/vitals-and-biometrics"
}

// GoTo navigates to the patient's vitals page
func (p *BiometricsAndVitalsPage) GoTo(patientUUID string) error {
	_, err := p.Page.Goto(p.URL(patientUUID))
	return err
}

// VitalsTable locates the table of recorded vitals
func (p *BiometricsAndVitalsPage) VitalsTable() playwright.Locator {
	return p.Page.Locator("#vitals-table")
}

// HeaderRow locates the table header row
func (p *BiometricsAndVitalsPage) HeaderRow() playwright.Locator {
	return p.VitalsTable().Locator("thead > tr")
}

// DataRow locates the table body rows
func (p *BiometricsAndVitalsPage) DataRow() playwright.Locator {
	return p.VitalsTable().Locator("tbody > tr")
}

// Field locates a numeric form input by its label, case-insensitively
func (p *BiometricsAndVitalsPage) Field(name string) playwright.Locator {
	return p.Page.GetByRole("spinbutton", playwright.PageGetByRoleOptions{Name: Pattern(name)})
}

// Notes locates the free-text notes input
func (p *BiometricsAndVitalsPage) Notes() playwright.Locator {
	return p.Page.GetByPlaceholder(Pattern("Type any additional notes here"))
}

// SaveAndClose submits the open workspace form
func (p *BiometricsAndVitalsPage) SaveAndClose() error {
	return p.Page.GetByRole("button", playwright.PageGetByRoleOptions{Name: Pattern("Save and close")}).Click()
}

// RowOptions opens the overflow menu of the nth table row
func (p *BiometricsAndVitalsPage) RowOptions(n int) error {
	return p.Page.GetByRole("button", playwright.PageGetByRoleOptions{Name: Pattern("options")}).Nth(n).Click()
}

// MenuItem locates an entry of the open overflow menu
func (p *BiometricsAndVitalsPage) MenuItem(name string) playwright.Locator {
	return p.Page.GetByRole("menuitem", playwright.PageGetByRoleOptions{Name: Pattern(name)})
}

// ConfirmDelete accepts the delete confirmation
func (p *BiometricsAndVitalsPage) ConfirmDelete() error {
	return p.Page.GetByRole("button", playwright.PageGetByRoleOptions{Name: Pattern("delete")}).Click()
}

// Text locates visible text matching s, case-insensitively
func (p *BiometricsAndVitalsPage) Text(s string) playwright.Locator {
	return p.Page.GetByText(Pattern(s))
}

// Pattern matches s literally, ignoring case
func Pattern(s string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(s))
}
