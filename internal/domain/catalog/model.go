package catalog

// Medicine types offered by the static catalog. TypeCustom marks an entry the
// clinician typed that matched nothing.
const (
	TypeTablet    = "Tablet"
	TypeCapsule   = "Capsule"
	TypeSyrup     = "Syrup"
	TypeInjection = "Injection"
	TypeOintment  = "Ointment"
	TypeDrops     = "Drops"
	TypeInhaler   = "Inhaler"
	TypeCustom    = "Custom"
)

// Where a suggestion list came from.
const (
	SourceLocal  = "local"
	SourceRemote = "remote"
)

// Medicine is one known medicine. Only Name is required; the remaining fields
// are filled from whichever dataset the entry was loaded from.
type Medicine struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type,omitempty"`
	Category     string `json:"category,omitempty"`
	Strength     string `json:"strength,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
}

// Match is a search hit. Score is 0 for an exact or substring match and grows
// toward 1 as the name diverges from the query.
type Match struct {
	Medicine
	Score float64 `json:"score"`
}

// SearchResult is the response of one autocomplete lookup. Custom is always
// present so the clinician can keep the name exactly as typed.
type SearchResult struct {
	Query   string   `json:"query"`
	Source  string   `json:"source"`
	Results []Match  `json:"results"`
	Custom  Medicine `json:"custom"`
}

// Options holds the picker values shown next to each medicine field.
type Options struct {
	Dosages      []string `json:"dosages"`
	Frequencies  []string `json:"frequencies"`
	Durations    []int    `json:"durations"`
	Instructions []string `json:"instructions"`
}

// CommonOptions returns a fresh copy of the built-in picker values.
func CommonOptions() Options {
	return Options{
		Dosages:      []string{"250mg", "500mg", "650mg", "1g", "5ml", "10ml", "15ml"},
		Frequencies:  []string{"1-0-1", "1-0-0", "0-1-0", "0-0-1", "1-1-1", "SOS", "1-1-0", "0-1-1"},
		Durations:    []int{3, 5, 7, 10, 15, 30},
		Instructions: []string{"After Food", "Before Food", "With Warm Water", "Before Sleep"},
	}
}
