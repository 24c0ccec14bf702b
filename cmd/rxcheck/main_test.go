package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rxcheck/rxcheck/internal/config"
	"github.com/rxcheck/rxcheck/internal/platform/auth"
)

const janeDoe = `{
  "patient": {"name": "Jane Doe", "age": 30, "sex": "Female"},
  "vitals": {"temperature": "99", "bp": "150/95", "weight": "60", "pulse": "80"},
  "diagnosis": "Fever",
  "medicines": [
    {"name": "Paracetamol", "type": "Tablet", "dosage": "500mg", "frequency": "1-0-1", "duration": "5 days", "notes": "After Food"}
  ]
}`

// fakeBackend stands in for the analysis backend.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze-prescription", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"score": 72, "evaluation": {"overall_rating": "Moderate"}, "summary": "ok",
			"structured_prescription": [], "drug_interactions": [], "recommendations": []}`)
	})
	mux.HandleFunc("/api/generate-pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"pdf_base64": base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 test")),
			"filename":   "Prescription_Jane_Doe.pdf",
		})
	})
	mux.HandleFunc("/api/medicines/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[]`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(backendURL string) *config.Config {
	return &config.Config{
		Env:              "development",
		StoreBackend:     config.StoreMemory,
		DBSchema:         "public",
		AnalysisBaseURL:  backendURL,
		AnalysisTimeout:  5 * time.Second,
		Evaluator:        "local",
		RemoteSearch:     true,
		CORSOrigins:      []string{"*"},
		RateLimitRPS:     100,
		RateLimitBurst:   100,
		BodyLimit:        "1M",
		SentrySampleRate: 1,
		AuthIssuer:       "rxcheck",
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *app {
	t.Helper()
	a, err := newApp(context.Background(), cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(func() { a.Close(context.Background()) })
	return a
}

func call(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestServer_Health(t *testing.T) {
	e := newServer(newTestApp(t, testConfig("http://localhost:8000")))

	rec := call(e, http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["store"] != "memory" || body["evaluator"] != "local" {
		t.Errorf("unexpected health body %v", body)
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Error("expected a request id header")
	}
}

func TestServer_PrescriptionFlow(t *testing.T) {
	backend := fakeBackend(t)
	e := newServer(newTestApp(t, testConfig(backend.URL)))

	rec := call(e, http.MethodPut, "/api/v1/profile", `{"doctorName":"Dr. Rao","clinicName":"City Clinic"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("save profile: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = call(e, http.MethodPost, "/api/v1/prescriptions/evaluate", janeDoe, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("evaluate: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result struct {
		Score            int             `json:"score"`
		Rating           string          `json:"rating"`
		StructuredOutput json.RawMessage `json:"structuredOutput"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if result.Score != 95 || result.Rating != "Good" {
		t.Errorf("expected 95 Good, got %d %s", result.Score, result.Rating)
	}

	rec = call(e, http.MethodPost, "/api/v1/prescriptions/evaluate?strategy=remote", janeDoe, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("remote evaluate: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"score":72`) {
		t.Errorf("expected remote score in %s", rec.Body.String())
	}

	rec = call(e, http.MethodPost, "/api/v1/prescriptions", string(result.StructuredOutput), "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("finalize: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = call(e, http.MethodGet, "/api/v1/prescriptions", "", "")
	if !strings.Contains(rec.Body.String(), `"total":1`) {
		t.Errorf("expected one saved prescription, got %s", rec.Body.String())
	}

	rec = call(e, http.MethodPost, "/api/v1/reports", string(result.StructuredOutput), "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("export: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var exported struct {
		DownloadURL string `json:"download_url"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &exported); err != nil {
		t.Fatal(err)
	}

	rec = call(e, http.MethodGet, exported.DownloadURL, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("download: expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "%PDF-1.4 test" {
		t.Errorf("unexpected report content %q", rec.Body.String())
	}
}

func TestServer_RemoteFailure(t *testing.T) {
	e := newServer(newTestApp(t, testConfig("http://127.0.0.1:1")))

	rec := call(e, http.MethodPost, "/api/v1/prescriptions/evaluate?strategy=remote", janeDoe, "")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error":true`) {
		t.Errorf("expected error flag in %s", rec.Body.String())
	}

	rec = call(e, http.MethodGet, "/api/v1/medicines/search?q=para", "", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Paracetamol") {
		t.Errorf("expected local fallback search, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestServer_JWTAuth(t *testing.T) {
	cfg := testConfig("http://localhost:8000")
	cfg.Env = "production"
	cfg.AuthSigningKey = strings.Repeat("s", 32)
	e := newServer(newTestApp(t, cfg))

	if rec := call(e, http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Errorf("health must be public, got %d", rec.Code)
	}
	if rec := call(e, http.MethodGet, "/api/v1/profile", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	token, err := auth.IssueToken(auth.JWTConfig{Issuer: cfg.AuthIssuer, SigningKey: []byte(cfg.AuthSigningKey)},
		"tablet-1", []string{auth.RoleClinician}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if rec := call(e, http.MethodGet, "/api/v1/profile", "", token); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 before onboarding, got %d", rec.Code)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_Evaluate(t *testing.T) {
	t.Setenv("REMOTE_SEARCH", "false")
	path := filepath.Join(t.TempDir(), "rx.json")
	if err := os.WriteFile(path, []byte(janeDoe), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "evaluate", "--file", path, "--strategy", "local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `"score": 95`) || !strings.Contains(out, "High Blood Pressure detected (150/95)") {
		t.Errorf("unexpected output %s", out)
	}

	if _, err := runCLI(t, "evaluate", "--file", path, "--strategy", "magic"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestCLI_ProfileAndHistory(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STORE_BACKEND", "file")
	t.Setenv("STORE_FILE", filepath.Join(dir, "store.json"))
	t.Setenv("REMOTE_SEARCH", "false")

	if _, err := runCLI(t, "profile", "show"); err == nil {
		t.Error("expected error before onboarding")
	}
	if _, err := runCLI(t, "profile", "set", "--doctor", "Dr. Rao", "--clinic", "City Clinic"); err != nil {
		t.Fatalf("profile set: %v", err)
	}
	out, err := runCLI(t, "profile", "show")
	if err != nil || !strings.Contains(out, "City Clinic") {
		t.Fatalf("profile show: %v %s", err, out)
	}

	rx := filepath.Join(dir, "rx.json")
	if err := os.WriteFile(rx, []byte(janeDoe), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "evaluate", "--file", rx, "--save"); err != nil {
		t.Fatalf("evaluate --save: %v", err)
	}
	out, err = runCLI(t, "history")
	if err != nil || !strings.Contains(out, "1 saved prescription(s)") || !strings.Contains(out, "Jane Doe") {
		t.Fatalf("history: %v %s", err, out)
	}

	if _, err := runCLI(t, "profile", "reset"); err == nil {
		t.Error("expected reset to require --yes")
	}
	if _, err := runCLI(t, "profile", "reset", "--yes"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	out, _ = runCLI(t, "history")
	if !strings.Contains(out, "0 saved prescription(s)") {
		t.Errorf("expected empty history after reset, got %s", out)
	}
}

func TestCLI_Search(t *testing.T) {
	t.Setenv("REMOTE_SEARCH", "false")
	out, err := runCLI(t, "search", "amox")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "source: local") || !strings.Contains(out, "Amoxicillin") {
		t.Errorf("unexpected output %s", out)
	}
}

func TestCLI_Export(t *testing.T) {
	backend := fakeBackend(t)
	t.Setenv("ANALYSIS_BASE_URL", backend.URL)
	dir := t.TempDir()
	in := filepath.Join(dir, "result.json")
	if err := os.WriteFile(in, []byte(`{"score": 95, "rating": "Good"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	outPath := filepath.Join(dir, "report.pdf")

	if _, err := runCLI(t, "export", "--file", in, "--out", outPath); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := os.ReadFile(outPath)
	if err != nil || string(b) != "%PDF-1.4 test" {
		t.Errorf("unexpected report %q, %v", b, err)
	}
}

func TestCLI_Token(t *testing.T) {
	t.Setenv("AUTH_SIGNING_KEY", strings.Repeat("k", 32))
	out, err := runCLI(t, "token", "--subject", "tablet-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(strings.TrimSpace(out), ".") != 2 {
		t.Errorf("expected a JWT, got %q", out)
	}

	t.Setenv("AUTH_SIGNING_KEY", "")
	if _, err := runCLI(t, "token", "--subject", "tablet-1"); err == nil {
		t.Error("expected error without signing key")
	}
}
