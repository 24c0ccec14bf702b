package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// nameColumns are the header names accepted for the medicine name, in order
// of preference.
var nameColumns = []string{"name", "drug_name", "medicine_name", "brand_name"}

var ErrNoNameColumn = errors.New("no medicine name column found")

// LoadCSV reads a medicine dataset. Headers are matched case-insensitively;
// category, strength, manufacturer and dosage form are kept when present and
// rows without a name are skipped.
func LoadCSV(r io.Reader) ([]Medicine, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}

	nameCol := -1
	for _, c := range nameColumns {
		if i, ok := cols[c]; ok {
			nameCol = i
			break
		}
	}
	if nameCol < 0 {
		return nil, ErrNoNameColumn
	}

	field := func(rec []string, col string) string {
		i, ok := cols[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var out []Medicine
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if nameCol >= len(rec) {
			continue
		}
		name := strings.TrimSpace(rec[nameCol])
		if name == "" {
			continue
		}
		out = append(out, Medicine{
			ID:           "csv-" + strconv.Itoa(len(out)+1),
			Name:         name,
			Type:         field(rec, "dosage form"),
			Category:     field(rec, "category"),
			Strength:     field(rec, "strength"),
			Manufacturer: field(rec, "manufacturer"),
		})
	}
	return out, nil
}

// LoadCSVFile opens path and reads it with LoadCSV.
func LoadCSVFile(path string) ([]Medicine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open medicine dataset: %w", err)
	}
	defer f.Close()
	meds, err := LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return meds, nil
}
