package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadCSV(t *testing.T) {
	data := "Drug_Name, Category ,Strength,Manufacturer,Dosage Form,Price\n" +
		"Crocin,Analgesic,500mg,GSK,Tablet,30\n" +
		",Antibiotic,250mg,Cipla,Capsule,10\n" +
		"Azee,Antibiotic,,Cipla,Tablet\n"

	meds, err := LoadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meds) != 2 {
		t.Fatalf("expected 2 medicines (blank name skipped), got %d", len(meds))
	}
	want := Medicine{ID: "csv-1", Name: "Crocin", Type: "Tablet", Category: "Analgesic", Strength: "500mg", Manufacturer: "GSK"}
	if meds[0] != want {
		t.Errorf("got %+v, want %+v", meds[0], want)
	}
	if meds[1].Name != "Azee" || meds[1].Strength != "" || meds[1].ID != "csv-2" {
		t.Errorf("unexpected second row %+v", meds[1])
	}
}

func TestLoadCSV_NameColumnPreference(t *testing.T) {
	data := "brand_name,name\nDolo,Paracetamol\n"
	meds, err := LoadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meds) != 1 || meds[0].Name != "Paracetamol" {
		t.Errorf("expected the name column to win, got %+v", meds)
	}
}

func TestLoadCSV_NoNameColumn(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("category,strength\nAnalgesic,500mg\n"))
	if !errors.Is(err, ErrNoNameColumn) {
		t.Errorf("expected ErrNoNameColumn, got %v", err)
	}
}

func TestLoadCSV_Empty(t *testing.T) {
	if _, err := LoadCSV(strings.NewReader("")); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestLoadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medicines.csv")
	if err := os.WriteFile(path, []byte("medicine_name\nOndansetron\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	meds, err := LoadCSVFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(meds) != 1 || meds[0].Name != "Ondansetron" {
		t.Errorf("unexpected medicines %+v", meds)
	}

	if _, err := LoadCSVFile(filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}
