package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Measurement identifies one numeric field of a vitals record
type Measurement string

// Measurements recorded with vitals
const (
	MeasurementTemperature      Measurement = "temperature"
	MeasurementSystolic         Measurement = "systolic"
	MeasurementDiastolic        Measurement = "diastolic"
	MeasurementPulse            Measurement = "pulse"
	MeasurementRespirationRate  Measurement = "respirationRate"
	MeasurementOxygenSaturation Measurement = "oxygenSaturation"
)

// Range is an inclusive absolute range for a measurement
type Range struct {
	Min  float64
	Max  float64
	Unit string
}

// MeasurementRanges holds the absolute ranges a recorded value must fall into
var MeasurementRanges = map[Measurement]Range{
	MeasurementTemperature:      {Min: 25, Max: 43, Unit: "°C"},
	MeasurementSystolic:         {Min: 0, Max: 250, Unit: "mmHg"},
	MeasurementDiastolic:        {Min: 0, Max: 150, Unit: "mmHg"},
	MeasurementPulse:            {Min: 0, Max: 230, Unit: "beats/min"},
	MeasurementRespirationRate:  {Min: 0, Max: 99, Unit: "breaths/min"},
	MeasurementOxygenSaturation: {Min: 0, Max: 100, Unit: "%"},
}

// MaxNotesLength bounds the free-text notes
const MaxNotesLength = 1000

// VitalsInput carries the values submitted through the vitals form.
// A nil measurement was left blank.
type VitalsInput struct {
	Temperature      *float64
	Systolic         *float64
	Diastolic        *float64
	Pulse            *float64
	RespirationRate  *float64
	OxygenSaturation *float64
	Notes            string
}

// Vitals is a set of vital sign observations recorded during a visit
type Vitals struct {
	ID               string
	PatientID        string
	VisitID          string
	Temperature      *float64
	Systolic         *float64
	Diastolic        *float64
	Pulse            *float64
	RespirationRate  *float64
	OxygenSaturation *float64
	Notes            string
	RecordedAt       time.Time
	UpdatedAt        time.Time
}

// Domain errors
var (
	ErrNoMeasurements          = errors.New("at least one measurement is required")
	ErrMeasurementOutOfRange   = errors.New("measurement out of range")
	ErrIncompleteBloodPressure = errors.New("systolic and diastolic must be recorded together")
	ErrNotesTooLong            = errors.New("notes are too long")
	ErrInvalidVisitID          = errors.New("visit id cannot be empty")
)

// NewVitals creates a vitals record for a patient's visit with validation
func NewVitals(patientID, visitID string, in VitalsInput) (*Vitals, error) {
	if patientID == "" {
		return nil, ErrInvalidPatientID
	}
	if visitID == "" {
		return nil, ErrInvalidVisitID
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	v := &Vitals{
		ID:         uuid.New().String(),
		PatientID:  patientID,
		VisitID:    visitID,
		RecordedAt: now,
		UpdatedAt:  now,
	}
	v.set(in)
	return v, nil
}

// Apply replaces the record's values with the submitted ones
func (v *Vitals) Apply(in VitalsInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	v.set(in)
	v.UpdatedAt = time.Now()
	return nil
}

func (v *Vitals) set(in VitalsInput) {
	v.Temperature = in.Temperature
	v.Systolic = in.Systolic
	v.Diastolic = in.Diastolic
	v.Pulse = in.Pulse
	v.RespirationRate = in.RespirationRate
	v.OxygenSaturation = in.OxygenSaturation
	v.Notes = strings.TrimSpace(in.Notes)
}

// Input returns the record's current values as form input
func (v *Vitals) Input() VitalsInput {
	return VitalsInput{
		Temperature:      v.Temperature,
		Systolic:         v.Systolic,
		Diastolic:        v.Diastolic,
		Pulse:            v.Pulse,
		RespirationRate:  v.RespirationRate,
		OxygenSaturation: v.OxygenSaturation,
		Notes:            v.Notes,
	}
}

// Validate checks the submitted values against the absolute ranges
func (in VitalsInput) Validate() error {
	values := in.Values()

	present := 0
	for _, m := range measurementOrder {
		value := values[m]
		if value == nil {
			continue
		}
		present++
		r := MeasurementRanges[m]
		if *value < r.Min || *value > r.Max {
			return fmt.Errorf("%w: %s must be between %s and %s %s",
				ErrMeasurementOutOfRange, m, FormatValue(r.Min), FormatValue(r.Max), r.Unit)
		}
	}
	if present == 0 {
		return ErrNoMeasurements
	}
	if (in.Systolic == nil) != (in.Diastolic == nil) {
		return ErrIncompleteBloodPressure
	}
	// Counted in characters after trimming, as the form's maxlength does.
	if utf8.RuneCountInString(strings.TrimSpace(in.Notes)) > MaxNotesLength {
		return ErrNotesTooLong
	}
	return nil
}

// Values returns the measurements keyed by name
func (in VitalsInput) Values() map[Measurement]*float64 {
	return map[Measurement]*float64{
		MeasurementTemperature:      in.Temperature,
		MeasurementSystolic:         in.Systolic,
		MeasurementDiastolic:        in.Diastolic,
		MeasurementPulse:            in.Pulse,
		MeasurementRespirationRate:  in.RespirationRate,
		MeasurementOxygenSaturation: in.OxygenSaturation,
	}
}

var measurementOrder = []Measurement{
	MeasurementTemperature,
	MeasurementSystolic,
	MeasurementDiastolic,
	MeasurementPulse,
	MeasurementRespirationRate,
	MeasurementOxygenSaturation,
}

// BloodPressure renders systolic over diastolic, e.g. "120 / 100"
func (v *Vitals) BloodPressure() string {
	if v.Systolic == nil || v.Diastolic == nil {
		return MissingValue
	}
	return FormatValue(*v.Systolic) + " / " + FormatValue(*v.Diastolic)
}

// MissingValue is displayed for measurements that were not recorded
const MissingValue = "--"

// FormatMeasurement renders a measurement without trailing zeros
func FormatMeasurement(value *float64) string {
	if value == nil {
		return MissingValue
	}
	return FormatValue(*value)
}

// FormatValue renders a number with the fewest digits that represent it
func FormatValue(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// Float returns a pointer to value
func Float(value float64) *float64 {
	return &value
}
