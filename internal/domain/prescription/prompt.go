package prescription

import (
	"fmt"
	"strings"
)

const notSpecified = "not specified"

func orNotSpecified(s string) string {
	if blank(s) {
		return notSpecified
	}
	return strings.TrimSpace(s)
}

// BuildPrompt renders p as the plain-text prescription the analysis backend
// reads: patient, vitals, diagnosis, then one line per medicine.
func BuildPrompt(p Prescription) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Patient: %s, Age: %s, Sex: %s\n",
		orNotSpecified(p.Patient.Name), orNotSpecified(string(p.Patient.Age)), orNotSpecified(string(p.Patient.Sex)))
	fmt.Fprintf(&b, "Vitals: Temperature %s, BP %s, Weight %s, Pulse %s\n",
		orNotSpecified(p.Vitals.Temperature), orNotSpecified(p.Vitals.BloodPressure),
		orNotSpecified(p.Vitals.Weight), orNotSpecified(p.Vitals.Pulse))
	fmt.Fprintf(&b, "Diagnosis: %s\n", orNotSpecified(p.Diagnosis))

	b.WriteString("Medicines:\n")
	if len(p.Medicines) == 0 {
		b.WriteString("none\n")
	}
	for i, m := range p.Medicines {
		name := orNotSpecified(m.Name)
		if !blank(m.Type) {
			name += " (" + strings.TrimSpace(m.Type) + ")"
		}
		fmt.Fprintf(&b, "%d. %s - Dosage: %s, Frequency: %s, Duration: %s",
			i+1, name, orNotSpecified(m.Dosage), orNotSpecified(m.Frequency), orNotSpecified(m.Duration))
		if !blank(m.Notes) {
			fmt.Fprintf(&b, ", Instructions: %s", strings.TrimSpace(m.Notes))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
