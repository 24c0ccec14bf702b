package analysis

import "encoding/json"

// Report is the analysis document returned by POST /api/analyze-prescription.
type Report struct {
	StructuredPrescription []Medicine      `json:"structured_prescription"`
	Score                  int             `json:"score"`
	Evaluation             Evaluation      `json:"evaluation"`
	Summary                string          `json:"summary"`
	Recommendations        []string        `json:"recommendations"`
	DrugInteractions       []string        `json:"drug_interactions"`
	Raw                    json.RawMessage `json:"-"`
}

// MarshalJSON writes the document as the backend sent it when it is known,
// so fields this package does not model survive a round trip.
func (r Report) MarshalJSON() ([]byte, error) {
	if len(r.Raw) > 0 {
		return r.Raw, nil
	}
	type plain Report
	return json.Marshal(plain(r))
}

func (r *Report) UnmarshalJSON(data []byte) error {
	type plain Report
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Report(p)
	r.Raw = append(json.RawMessage(nil), data...)
	return nil
}

type Evaluation struct {
	Completeness  int    `json:"completeness"`
	Safety        int    `json:"safety"`
	Ambiguity     string `json:"ambiguity"`
	OverallRating string `json:"overall_rating"`
}

type Medicine struct {
	MedicineName string   `json:"medicine_name"`
	Formulation  string   `json:"formulation"`
	Strength     string   `json:"strength"`
	Frequency    string   `json:"frequency"`
	Timing       string   `json:"timing"`
	Duration     string   `json:"duration"`
	Warnings     []string `json:"warnings"`
}

// MedicineHit is one row of GET /api/medicines/search.
type MedicineHit struct {
	Name         string `json:"name"`
	Category     string `json:"category,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Strength     string `json:"strength,omitempty"`
}

// PDF is a decoded POST /api/generate-pdf response.
type PDF struct {
	FileName string
	Content  []byte
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type pdfResponse struct {
	PDFBase64 string `json:"pdf_base64"`
	FileName  string `json:"filename"`
}

// failureProbe picks up the error shapes the backend uses: a 200 body with
// {"error": true, "message": ...} and FastAPI's {"detail": ...}.
type failureProbe struct {
	Error   interface{} `json:"error"`
	Message string      `json:"message"`
	Detail  interface{} `json:"detail"`
}
