package prescription

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Sex of the patient as captured on the form.
type Sex string

const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
	SexOther  Sex = "Other"
)

var validSexes = map[Sex]bool{SexMale: true, SexFemale: true, SexOther: true}

// Valid reports whether s is one of the accepted values. Matching ignores case
// so "female" from a free-text field is accepted and normalized by Normalize.
func (s Sex) Valid() bool {
	return validSexes[s.Normalize()]
}

// Normalize maps case variants onto the canonical constants.
func (s Sex) Normalize() Sex {
	for v := range validSexes {
		if strings.EqualFold(string(v), strings.TrimSpace(string(s))) {
			return v
		}
	}
	return s
}

// Age is kept as entered. It decodes from either a JSON number or a string.
type Age string

func (a *Age) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Age(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("age must be a number or string: %w", err)
	}
	*a = Age(n.String())
	return nil
}

type Patient struct {
	Name string `json:"name"`
	Age  Age    `json:"age"`
	Sex  Sex    `json:"sex"`
}

// Vitals are free text as typed by the clinician. BloodPressure is expected in
// "systolic/diastolic" form.
type Vitals struct {
	Temperature   string `json:"temperature"`
	BloodPressure string `json:"bp"`
	Weight        string `json:"weight"`
	Pulse         string `json:"pulse"`
}

// MedicineEntry is one line of the prescription.
type MedicineEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
	Notes     string `json:"notes"`
}

// Prescription is the snapshot handed to an evaluator.
type Prescription struct {
	Patient   Patient         `json:"patient"`
	Vitals    Vitals          `json:"vitals"`
	Diagnosis string          `json:"diagnosis"`
	Medicines []MedicineEntry `json:"medicines"`
}

// Clone returns a copy that shares no memory with p.
func (p Prescription) Clone() Prescription {
	out := p
	if p.Medicines != nil {
		out.Medicines = make([]MedicineEntry, len(p.Medicines))
		copy(out.Medicines, p.Medicines)
	}
	return out
}

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
)

type Issue struct {
	Severity Severity `json:"type"`
	Message  string   `json:"message"`
}

type Rating string

const (
	RatingGood            Rating = "Good"
	RatingModerate        Rating = "Moderate"
	RatingNeedsCorrection Rating = "Needs Correction"
)

// RatingFor maps a clamped score onto its rating band.
func RatingFor(score int) Rating {
	switch {
	case score >= 80:
		return RatingGood
	case score >= 50:
		return RatingModerate
	default:
		return RatingNeedsCorrection
	}
}

// NotesPlaceholder stands in for empty notes in the structured output.
const NotesPlaceholder = "N/A"

type Meta struct {
	Timestamp time.Time `json:"timestamp"`
	Score     int       `json:"score"`
	Rating    Rating    `json:"rating"`
}

type StructuredMedicine struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
	Notes     string `json:"notes"`
}

// StructuredOutput is the normalized record persisted on finalize.
type StructuredOutput struct {
	Meta      Meta                 `json:"meta"`
	Patient   Patient              `json:"patient"`
	Vitals    Vitals               `json:"vitals"`
	Diagnosis string               `json:"diagnosis,omitempty"`
	Medicines []StructuredMedicine `json:"medicines"`
}

// EvaluationResult is what the local evaluator produces.
type EvaluationResult struct {
	Score            int              `json:"score"`
	Rating           Rating           `json:"rating"`
	Issues           []Issue          `json:"issues"`
	StructuredOutput StructuredOutput `json:"structuredOutput"`
}

// CriticalCount returns the number of critical issues.
func (r *EvaluationResult) CriticalCount() int {
	n := 0
	for _, is := range r.Issues {
		if is.Severity == SeverityCritical {
			n++
		}
	}
	return n
}

// SavedPrescription is a structured output after it was appended to the store.
type SavedPrescription struct {
	StructuredOutput
	ID   string    `json:"id"`
	Date time.Time `json:"date"`
}
