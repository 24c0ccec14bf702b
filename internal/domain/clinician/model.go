package clinician

import "strings"

// Profile identifies the clinician and clinic printed on every prescription.
type Profile struct {
	DoctorName    string `json:"doctorName"`
	ClinicName    string `json:"clinicName"`
	ClinicAddress string `json:"clinicAddress"`
	ContactInfo   string `json:"contactInfo"`
}

// ValidationError is shown to the clinician as is.
type ValidationError struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Title + ": " + e.Message
}

// Normalize returns p with surrounding whitespace removed from every field.
func (p Profile) Normalize() Profile {
	return Profile{
		DoctorName:    strings.TrimSpace(p.DoctorName),
		ClinicName:    strings.TrimSpace(p.ClinicName),
		ClinicAddress: strings.TrimSpace(p.ClinicAddress),
		ContactInfo:   strings.TrimSpace(p.ContactInfo),
	}
}

// Validate requires the doctor and clinic names. Address and contact details
// are optional.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.DoctorName) == "" || strings.TrimSpace(p.ClinicName) == "" {
		return &ValidationError{
			Title:   "Missing Information",
			Message: "Please fill in at least the Doctor Name and Clinic Name.",
		}
	}
	return nil
}
