//go:build e2e

package e2e

import (
	"context"
	"testing"

	"github.com/playwright-community/playwright-go"

	"github.com/patientchart/vitals/internal/pages"
)

// TestVitals_AddEditDelete tests the vitals and biometrics workflow
// Feature: Vitals and biometrics
//
//	As a clinician
//	I want to record, correct and remove a patient's vital signs
//	So that the chart reflects the measurements taken during the visit
func TestVitals_AddEditDelete(t *testing.T) {
	ctx := context.Background()

	// Given a new patient with an active visit
	patient, err := api.GenerateRandomPatient(ctx)
	if err != nil {
		t.Fatalf("Failed to create patient: %v", err)
	}
	t.Cleanup(func() {
		if err := api.DeletePatient(ctx, patient.UUID); err != nil {
			t.Errorf("Failed to delete patient %s: %v", patient.UUID, err)
		}
	})

	visit, err := api.StartVisit(ctx, patient.UUID)
	if err != nil {
		t.Fatalf("Failed to start visit: %v", err)
	}
	// Cleanups run last-in first-out, so the visit ends before the patient is deleted
	t.Cleanup(func() {
		if err := api.EndVisit(ctx, visit); err != nil {
			t.Errorf("Failed to end visit %s: %v", visit.UUID, err)
		}
	})

	page, err := browser.NewPage()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { page.Close() })

	expect := playwright.NewPlaywrightAssertions()
	vitalsPage := pages.NewBiometricsAndVitalsPage(page, baseURL)
	headerRow := vitalsPage.HeaderRow()
	dataRow := vitalsPage.DataRow()

	expectRow := func(values ...string) error {
		for _, heading := range []string{"temp", "bp", "pulse", "r. rate", "SPO2"} {
			if err := expect.Locator(headerRow).ToContainText(pages.Pattern(heading)); err != nil {
				return err
			}
		}
		for _, v := range values {
			if err := expect.Locator(dataRow).ToContainText(v); err != nil {
				return err
			}
		}
		return nil
	}

	fill := func(field, value string) func() error {
		return func() error {
			return vitalsPage.Field(field).Fill(value)
		}
	}

	refill := func(field, value string) func() error {
		return func() error {
			if err := vitalsPage.Field(field).Clear(); err != nil {
				return err
			}
			return vitalsPage.Field(field).Fill(value)
		}
	}

	step(t, "When I visit the vitals and biometrics page", func() error {
		if err := vitalsPage.GoTo(patient.UUID); err != nil {
			return err
		}
		return expect.Locator(vitalsPage.Text("record vital signs")).ToBeVisible()
	})

	step(t, "And I click the record vital signs link to launch the form", func() error {
		return vitalsPage.Text("record vital signs").Click()
	})

	step(t, "Then I should see the Record Vitals and Biometrics form launch in the workspace", func() error {
		return expect.Locator(vitalsPage.Text("record vitals and biometrics")).ToBeVisible()
	})

	step(t, "When I fill 37 as the temperature", fill("temperature", "37"))
	step(t, "And I fill 120 as the systolic", fill("systolic", "120"))
	step(t, "And I fill 100 as the diastolic", fill("diastolic", "100"))
	step(t, "And I fill 65 as the pulse", fill("pulse", "65"))
	step(t, "And I fill 16 as the respiration rate", fill("respiration rate", "16"))
	step(t, "And I fill 98 as the oxygen saturation", fill("oxygen saturation", "98"))

	step(t, "And I add additional notes", func() error {
		return vitalsPage.Notes().Fill("Test notes")
	})

	step(t, "And I click on the Save and close button", vitalsPage.SaveAndClose)

	step(t, "Then I should see a success notification", func() error {
		return expect.Locator(vitalsPage.Text("vitals and biometrics saved")).ToBeVisible()
	})

	step(t, "And I should see the newly recorded vital signs on the page", func() error {
		return expectRow("37", "120 / 100", "65", "16", "98")
	})

	step(t, "When I click the overflow menu on the vitals row", func() error {
		return vitalsPage.RowOptions(0)
	})

	step(t, "And I click on the Edit button", func() error {
		return vitalsPage.MenuItem("edit").Click()
	})

	step(t, "Then I should see the Edit Vitals and Biometrics form launch in the workspace", func() error {
		if err := expect.Locator(vitalsPage.Text("edit vitals and biometrics")).ToBeVisible(); err != nil {
			return err
		}
		prefilled := []struct{ field, value string }{
			{"temperature", "37"},
			{"systolic", "120"},
			{"diastolic", "100"},
			{"pulse", "65"},
			{"respiration rate", "16"},
			{"oxygen saturation", "98"},
		}
		for _, p := range prefilled {
			if err := expect.Locator(vitalsPage.Field(p.field)).ToHaveValue(p.value); err != nil {
				return err
			}
		}
		return nil
	})

	step(t, "When I fill 38 as the temperature", refill("temperature", "38"))
	step(t, "And I fill 130 as the systolic", refill("systolic", "130"))
	step(t, "And I fill 110 as the diastolic", refill("diastolic", "110"))

	step(t, "And I click on the Save and close button", vitalsPage.SaveAndClose)

	step(t, "Then I should see a success notification", func() error {
		return expect.Locator(vitalsPage.Text("vitals and biometrics updated")).ToBeVisible()
	})

	step(t, "And I should see the updated vitals on the page", func() error {
		return expectRow("38", "130 / 110", "65", "16", "98")
	})

	step(t, "When I click the overflow menu on the vitals row", func() error {
		return vitalsPage.RowOptions(0)
	})

	step(t, "And I click on the Delete button", func() error {
		if err := vitalsPage.MenuItem("delete").Click(); err != nil {
			return err
		}
		return vitalsPage.ConfirmDelete()
	})

	step(t, "Then I should see a success notification", func() error {
		return expect.Locator(vitalsPage.Text("Vitals and biometrics deleted")).ToBeVisible()
	})

	step(t, "And the vitals table should be empty", func() error {
		return expect.Locator(vitalsPage.Text("There are no vital signs to display for this patient")).ToBeVisible()
	})
}
