package prescription

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError blocks a prescription from being evaluated. Title and
// Message are shown to the clinician as is.
type ValidationError struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Title + ": " + e.Message
}

var ErrMedicineNameRequired = errors.New("medicine name is required")

// Form is a prescription being drafted. It is not safe for concurrent use.
type Form struct {
	Patient   Patient
	Vitals    Vitals
	Diagnosis string

	medicines []MedicineEntry
	ids       *IDSource
}

func NewForm(ids *IDSource) *Form {
	if ids == nil {
		ids = NewIDSource(nil)
	}
	return &Form{ids: ids}
}

// NewFormFrom loads a submitted prescription into a form. Entries keep their
// ids unless the id is blank or repeats an earlier entry.
func NewFormFrom(p Prescription, ids *IDSource) *Form {
	f := NewForm(ids)
	f.Patient = p.Patient
	f.Vitals = p.Vitals
	f.Diagnosis = p.Diagnosis

	seen := make(map[string]bool, len(p.Medicines))
	for _, m := range p.Medicines {
		m = trimEntry(m)
		if m.ID == "" || seen[m.ID] {
			m.ID = f.ids.Next()
		}
		seen[m.ID] = true
		f.medicines = append(f.medicines, m)
	}
	return f
}

func trimEntry(m MedicineEntry) MedicineEntry {
	m.Name = strings.TrimSpace(m.Name)
	m.Type = strings.TrimSpace(m.Type)
	m.Dosage = strings.TrimSpace(m.Dosage)
	m.Frequency = strings.TrimSpace(m.Frequency)
	m.Duration = strings.TrimSpace(m.Duration)
	m.Notes = strings.TrimSpace(m.Notes)
	return m
}

// AddMedicine appends entry under a fresh id and returns the stored entry.
func (f *Form) AddMedicine(entry MedicineEntry) (MedicineEntry, error) {
	entry = trimEntry(entry)
	if entry.Name == "" {
		return MedicineEntry{}, ErrMedicineNameRequired
	}
	entry.ID = f.ids.Next()
	f.medicines = append(f.medicines, entry)
	return entry, nil
}

// RemoveMedicine deletes the entry with id and reports whether it existed.
func (f *Form) RemoveMedicine(id string) bool {
	for i, m := range f.medicines {
		if m.ID == id {
			f.medicines = append(f.medicines[:i], f.medicines[i+1:]...)
			return true
		}
	}
	return false
}

// Medicines returns a copy of the current entries.
func (f *Form) Medicines() []MedicineEntry {
	out := make([]MedicineEntry, len(f.medicines))
	copy(out, f.medicines)
	return out
}

// Validate checks the fields required before evaluation, in the order the
// clinician fills them in. It returns a *ValidationError or nil.
func (f *Form) Validate() error {
	p := f.Patient
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(string(p.Age)) == "" || strings.TrimSpace(string(p.Sex)) == "" {
		return &ValidationError{
			Title:   "Missing Patient Info",
			Message: "Please fill in Name, Age, and Sex.",
		}
	}
	if !p.Sex.Valid() {
		return &ValidationError{
			Title:   "Invalid Patient Info",
			Message: fmt.Sprintf("Sex must be one of Male, Female or Other, got %q.", p.Sex),
		}
	}

	v := f.Vitals
	if blank(v.Temperature) || blank(v.BloodPressure) || blank(v.Weight) || blank(v.Pulse) {
		return &ValidationError{
			Title:   "Missing Vitals",
			Message: "Please fill in all medical measurements (Temp, BP, Weight, Pulse).",
		}
	}

	if len(f.medicines) == 0 {
		return &ValidationError{
			Title:   "Empty Prescription",
			Message: "Please add at least one medicine.",
		}
	}
	return nil
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// Snapshot returns the form as an immutable Prescription value.
func (f *Form) Snapshot() Prescription {
	p := Prescription{
		Patient:   f.Patient,
		Vitals:    f.Vitals,
		Diagnosis: strings.TrimSpace(f.Diagnosis),
		Medicines: f.Medicines(),
	}
	p.Patient.Name = strings.TrimSpace(p.Patient.Name)
	p.Patient.Sex = p.Patient.Sex.Normalize()
	return p
}
